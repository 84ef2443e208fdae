package muzzle

import (
	"context"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mabhi256/jmuzzle/internal/classfile/classfiletest"
	"github.com/mabhi256/jmuzzle/internal/classpath"
	"github.com/mabhi256/jmuzzle/internal/jvm"
	"github.com/mabhi256/jmuzzle/internal/reference"
)

// spaceWith defines the given classes in a fresh in-memory space
func spaceWith(name string, classes ...*jvm.ClassDescriptor) *classpath.Space {
	locator := classpath.NewMemoryLocator(name)
	for _, c := range classes {
		locator.Define(jvm.ResourceName(c.Name), classfiletest.Build(c))
	}
	return classpath.NewSpace(name, nil, locator)
}

func serviceClass(methods ...jvm.MethodDescriptor) *jvm.ClassDescriptor {
	return &jvm.ClassDescriptor{
		Name:      "com.example.C",
		Access:    jvm.ACC_PUBLIC | jvm.ACC_SUPER,
		SuperName: "java.lang.Object",
		Methods:   methods,
	}
}

func moduleM(t *testing.T) *reference.Module {
	t.Helper()
	ref := buildRef(t, reference.NewBuilder("com.example.C").
		WithSource("Advice", 11).
		WithFlags(reference.FlagPublic).
		WithMethod(nil, nil, "m", "(Ljava/lang/String;)V"))
	return buildModule(t, "M", nil, ref)
}

func TestEndToEndAgainstClassFiles(t *testing.T) {
	gate := NewGate(classpath.NewResolver())
	require.NoError(t, gate.Register(moduleM(t)))

	s1 := spaceWith("s1", serviceClass(method("m", "(Ljava/lang/String;)V", jvm.ACC_PUBLIC)))
	s2 := spaceWith("s2", serviceClass(method("m", "(I)V", jvm.ACC_PUBLIC)))

	ok, err := gate.Matches("M", s1)
	require.NoError(t, err)
	assert.True(t, ok)

	mismatches, err := gate.Diagnose("M", s1)
	require.NoError(t, err)
	assert.Empty(t, mismatches)

	ok, err = gate.Matches("M", s2)
	require.NoError(t, err)
	assert.False(t, ok)

	mismatches, err = gate.Diagnose("M", s2)
	require.NoError(t, err)
	require.Len(t, mismatches, 1)
	assert.Equal(t, MissingMethod, mismatches[0].Kind)
	assert.Equal(t, "Missing method com.example.C#m(java.lang.String):void @ Advice:11", mismatches[0].String())
}

func TestEndToEndParentSpace(t *testing.T) {
	// the parent provides the class, the child only adds unrelated classes
	parent := spaceWith("boot", serviceClass(method("m", "(Ljava/lang/String;)V", jvm.ACC_PUBLIC)))
	child := classpath.NewSpace("app", parent, classpath.NewMemoryLocator("app"))

	rm := NewReferenceMatcher(moduleM(t), classpath.NewResolver())
	assert.True(t, rm.Matches(child))
	assert.Equal(t, 1, rm.Cache().Len())
}

func TestGateRegistry(t *testing.T) {
	gate := NewGate(newFakeResolver())

	require.NoError(t, gate.Register(buildModule(t, "zeta", nil)))
	require.NoError(t, gate.Register(buildModule(t, "alpha", nil)))
	assert.ErrorIs(t, gate.Register(buildModule(t, "alpha", nil)), ErrDuplicateModule)
	assert.Error(t, gate.Register(nil))

	assert.Equal(t, []string{"alpha", "zeta"}, gate.Modules())

	_, err := gate.Matches("missing", classpath.NewSpace("app", nil))
	assert.ErrorIs(t, err, ErrUnknownModule)
	_, err = gate.Diagnose("missing", classpath.NewSpace("app", nil))
	assert.ErrorIs(t, err, ErrUnknownModule)

	rm, ok := gate.Matcher("zeta")
	require.True(t, ok)
	assert.Equal(t, "zeta", rm.Module().Name())
}

func TestGateMatchAll(t *testing.T) {
	resolver := newFakeResolver(publicClass("com.example.Present", ""))
	gate := NewGate(resolver)

	present := buildRef(t, reference.NewBuilder("com.example.Present").WithFlags(reference.FlagPublic))
	absent := buildRef(t, reference.NewBuilder("com.example.Absent"))
	require.NoError(t, gate.Register(buildModule(t, "good", nil, present)))
	require.NoError(t, gate.Register(buildModule(t, "bad", nil, present, absent)))
	require.NoError(t, gate.Register(buildModule(t, "empty", nil)))

	results, err := gate.MatchAll(context.Background(), classpath.NewSpace("app", nil))
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"good": true, "bad": false, "empty": true}, results)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = gate.MatchAll(ctx, classpath.NewSpace("app", nil))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCacheDoesNotRetainSpaces(t *testing.T) {
	rm := NewReferenceMatcher(moduleM(t), classpath.NewResolver())

	func() {
		space := spaceWith("short-lived", serviceClass(method("m", "(Ljava/lang/String;)V", jvm.ACC_PUBLIC)))
		assert.True(t, rm.Matches(space))
	}()
	require.Equal(t, 1, rm.Cache().Len())

	assert.Eventually(t, func() bool {
		runtime.GC()
		return rm.Cache().Len() == 0
	}, 5*time.Second, 10*time.Millisecond)
}

func TestCacheIgnoresNilSpace(t *testing.T) {
	cache := NewResultCache()
	calls := 0
	compute := func() bool {
		calls++
		return true
	}

	assert.True(t, cache.GetOrCompute(nil, compute))
	assert.True(t, cache.GetOrCompute(nil, compute))
	assert.Equal(t, 2, calls)
	assert.Zero(t, cache.Len())

	_, ok := cache.Get(nil)
	assert.False(t, ok)
}
