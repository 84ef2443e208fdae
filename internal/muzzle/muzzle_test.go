package muzzle

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/mabhi256/jmuzzle/internal/classpath"
	"github.com/mabhi256/jmuzzle/internal/jvm"
	"github.com/mabhi256/jmuzzle/internal/reference"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// fakeResolver serves descriptors from a map and counts lookups per class
type fakeResolver struct {
	mu       sync.Mutex
	classes  map[string]*jvm.ClassDescriptor
	failures map[string]error
	calls    map[string]int
}

func newFakeResolver(classes ...*jvm.ClassDescriptor) *fakeResolver {
	r := &fakeResolver{
		classes:  make(map[string]*jvm.ClassDescriptor),
		failures: make(map[string]error),
		calls:    make(map[string]int),
	}
	for _, c := range classes {
		r.classes[c.Name] = c
	}
	return r
}

func (r *fakeResolver) Resolve(_ *classpath.Space, className string) classpath.Resolution {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.calls[className]++
	if err, ok := r.failures[className]; ok {
		return classpath.Failure(err)
	}
	if c, ok := r.classes[className]; ok {
		return classpath.Found(c, "fake")
	}
	return classpath.NotFound()
}

func (r *fakeResolver) callsFor(className string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls[className]
}

func publicClass(name, super string, interfaces ...string) *jvm.ClassDescriptor {
	return &jvm.ClassDescriptor{
		Name:       name,
		Access:     jvm.ACC_PUBLIC | jvm.ACC_SUPER,
		SuperName:  super,
		Interfaces: interfaces,
	}
}

func publicInterface(name string, extends ...string) *jvm.ClassDescriptor {
	return &jvm.ClassDescriptor{
		Name:       name,
		Access:     jvm.ACC_PUBLIC | jvm.ACC_INTERFACE | jvm.ACC_ABSTRACT,
		SuperName:  "java.lang.Object",
		Interfaces: extends,
	}
}

func method(name, descriptor string, access jvm.AccessFlags) jvm.MethodDescriptor {
	return jvm.MethodDescriptor{Name: name, Descriptor: descriptor, Access: access}
}

func field(name, descriptor string, access jvm.AccessFlags) jvm.FieldDescriptor {
	return jvm.FieldDescriptor{Name: name, Descriptor: descriptor, Access: access}
}

func buildRef(t *testing.T, b *reference.Builder) *reference.Reference {
	t.Helper()
	ref, err := b.Build()
	require.NoError(t, err)
	return ref
}

func buildModule(t *testing.T, name string, helpers []string, refs ...*reference.Reference) *reference.Module {
	t.Helper()
	module, err := reference.NewModule(name, refs, helpers)
	require.NoError(t, err)
	return module
}

func kinds(mismatches []Mismatch) []MismatchKind {
	out := make([]MismatchKind, len(mismatches))
	for i, m := range mismatches {
		out[i] = m.Kind
	}
	return out
}

var advice = []reference.Source{{Origin: "Advice", Line: 10}}

func TestMissingClassYieldsSingleMismatch(t *testing.T) {
	ref := buildRef(t, reference.NewBuilder("com.example.Gone").
		WithSource("Advice", 3).
		WithFlags(reference.FlagPublic).
		WithField(advice, nil, "count", "I").
		WithMethod(advice, nil, "run", "()V"))
	module := buildModule(t, "gone", nil, ref)

	rm := NewReferenceMatcher(module, newFakeResolver())
	space := classpath.NewSpace("empty", nil)

	assert.False(t, rm.Matches(space))

	mismatches := rm.Diagnose(space)
	require.Len(t, mismatches, 1)
	assert.Equal(t, MissingClass, mismatches[0].Kind)
	assert.Equal(t, "com.example.Gone", mismatches[0].Symbol)
	assert.Equal(t, []reference.Source{{Origin: "Advice", Line: 3}}, mismatches[0].Sources)
}

func TestEmptyModuleAlwaysMatches(t *testing.T) {
	module := buildModule(t, "empty", nil)
	rm := NewReferenceMatcher(module, newFakeResolver())

	assert.True(t, rm.Matches(classpath.NewSpace("a", nil)))
	assert.True(t, rm.Matches(nil))
	assert.Empty(t, rm.Diagnose(classpath.NewSpace("b", nil)))
}

func TestHelperClassesAreNeverChecked(t *testing.T) {
	helper := buildRef(t, reference.NewBuilder("io.jmuzzle.Helper").
		WithFlags(reference.FlagPublic).
		WithMethod(advice, nil, "help", "()V"))

	// a package-private helper without the method would fail every check
	resolver := newFakeResolver(&jvm.ClassDescriptor{Name: "io.jmuzzle.Helper"})
	module := buildModule(t, "helpers", []string{"io/jmuzzle/Helper"}, helper)
	rm := NewReferenceMatcher(module, resolver)

	space := classpath.NewSpace("app", nil)
	assert.True(t, rm.Matches(space))
	assert.Empty(t, rm.Diagnose(space))
	assert.Zero(t, resolver.callsFor("io.jmuzzle.Helper"))
}

func TestHelperClassesInInternalFormAreNeverChecked(t *testing.T) {
	helper := &reference.Reference{
		ClassName: "io/jmuzzle/Helper",
		Methods:   []reference.Method{{Name: "help", Descriptor: "()V"}},
	}
	module := buildModule(t, "helpers", []string{"io.jmuzzle.Helper"}, helper)
	resolver := newFakeResolver()
	rm := NewReferenceMatcher(module, resolver)

	space := classpath.NewSpace("app", nil)
	assert.True(t, rm.Matches(space))
	assert.Empty(t, rm.Diagnose(space))
	assert.Zero(t, resolver.callsFor("io/jmuzzle/Helper"))
	assert.Zero(t, resolver.callsFor("io.jmuzzle.Helper"))
}

func TestMatchesIsIdempotentAndComputedOnce(t *testing.T) {
	var resolves atomic.Int64
	gate := make(chan struct{})
	resolver := ResolverFunc(func(_ *classpath.Space, className string) classpath.Resolution {
		<-gate
		resolves.Add(1)
		return classpath.Found(publicClass(className, ""), "fake")
	})

	ref := buildRef(t, reference.NewBuilder("com.example.Service").WithFlags(reference.FlagPublic))
	rm := NewReferenceMatcher(buildModule(t, "svc", nil, ref), resolver)
	space := classpath.NewSpace("app", nil)

	const callers = 32
	results := make([]bool, callers)
	var wg sync.WaitGroup
	for i := range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = rm.Matches(space)
		}()
	}
	close(gate)
	wg.Wait()

	for _, ok := range results {
		assert.True(t, ok)
	}
	assert.True(t, rm.Matches(space))
	assert.Equal(t, int64(1), rm.Cache().Computations())
	assert.Equal(t, int64(1), resolves.Load())
	assert.Equal(t, 1, rm.Cache().Len())
}

func TestDiagnoseBypassesCache(t *testing.T) {
	resolver := newFakeResolver()
	ref := buildRef(t, reference.NewBuilder("com.example.Gone"))
	rm := NewReferenceMatcher(buildModule(t, "m", nil, ref), resolver)
	space := classpath.NewSpace("app", nil)

	assert.False(t, rm.Matches(space))
	assert.False(t, rm.Matches(space))
	assert.Len(t, rm.Diagnose(space), 1)
	assert.Len(t, rm.Diagnose(space), 1)

	assert.Equal(t, 3, resolver.callsFor("com.example.Gone"))
	assert.Equal(t, int64(1), rm.Cache().Computations())
}

func TestMatchesStopsAtFirstMismatch(t *testing.T) {
	resolver := newFakeResolver()
	first := buildRef(t, reference.NewBuilder("com.example.A"))
	second := buildRef(t, reference.NewBuilder("com.example.B"))
	rm := NewReferenceMatcher(buildModule(t, "m", nil, first, second), resolver)
	space := classpath.NewSpace("app", nil)

	assert.False(t, rm.Matches(space))
	assert.Equal(t, 1, resolver.callsFor("com.example.A"))
	assert.Zero(t, resolver.callsFor("com.example.B"))

	assert.Equal(t, []MismatchKind{MissingClass, MissingClass}, kinds(rm.Diagnose(space)))
}

func TestHierarchyWalkerInterfacesTwoLevelsAway(t *testing.T) {
	// C implements I1, I2; both extend J; J extends K; only K declares run
	k := publicInterface("com.example.K")
	k.Methods = []jvm.MethodDescriptor{method("run", "()V", jvm.ACC_PUBLIC|jvm.ACC_ABSTRACT)}
	resolver := newFakeResolver(
		publicClass("com.example.C", "java.lang.Object", "com.example.I1", "com.example.I2"),
		publicInterface("com.example.I1", "com.example.J"),
		publicInterface("com.example.I2", "com.example.J"),
		publicInterface("com.example.J", "com.example.K"),
		k,
		publicClass("java.lang.Object", ""),
	)
	space := classpath.NewSpace("app", nil)

	walker := NewHierarchyWalker(resolver, space)
	found, ok := walker.FindMethod(reference.Method{Name: "run", Descriptor: "()V"}, resolver.classes["com.example.C"])
	require.True(t, ok)
	assert.Equal(t, "com.example.K", found.Owner)
	assert.Equal(t, jvm.ACC_PUBLIC|jvm.ACC_ABSTRACT, found.Method.Access)

	assert.Equal(t, 1, resolver.callsFor("com.example.J"))
	assert.Equal(t, 1, resolver.callsFor("com.example.K"))

	ref := buildRef(t, reference.NewBuilder("com.example.C").
		WithMethod(advice, reference.Flags{reference.FlagNonStatic}, "run", "()V"))
	rm := NewReferenceMatcher(buildModule(t, "diamond", nil, ref), resolver)
	assert.True(t, rm.Matches(space))
	assert.Empty(t, rm.Diagnose(space))
}

func TestHierarchyWalkerSuperclassBeforeInterfaces(t *testing.T) {
	base := publicClass("com.example.Base", "")
	base.Methods = []jvm.MethodDescriptor{method("close", "()V", jvm.ACC_PUBLIC)}
	iface := publicInterface("com.example.Closeable")
	iface.Methods = []jvm.MethodDescriptor{method("close", "()V", jvm.ACC_PUBLIC|jvm.ACC_ABSTRACT)}
	child := publicClass("com.example.Child", "com.example.Base", "com.example.Closeable")

	resolver := newFakeResolver(base, iface, child)
	walker := NewHierarchyWalker(resolver, classpath.NewSpace("app", nil))

	found, ok := walker.FindMethod(reference.Method{Name: "close", Descriptor: "()V"}, child)
	require.True(t, ok)
	assert.Equal(t, "com.example.Base", found.Owner)
	assert.Zero(t, resolver.callsFor("com.example.Closeable"))
}

func TestHierarchyWalkerSkipsUnresolvedParents(t *testing.T) {
	iface := publicInterface("com.example.Named")
	iface.Fields = []jvm.FieldDescriptor{field("NAME", "Ljava/lang/String;", jvm.ACC_PUBLIC|jvm.ACC_STATIC|jvm.ACC_FINAL)}
	child := publicClass("com.example.Child", "com.example.MissingBase", "com.example.Broken", "com.example.Named")

	resolver := newFakeResolver(iface, child)
	resolver.failures["com.example.Broken"] = errors.New("truncated class file")
	walker := NewHierarchyWalker(resolver, classpath.NewSpace("app", nil))

	found, ok := walker.FindField(reference.Field{Name: "NAME", Descriptor: "Ljava/lang/String;"}, child)
	require.True(t, ok)
	assert.Equal(t, "com.example.Named", found.Owner)

	_, ok = walker.FindField(reference.Field{Name: "other", Descriptor: "I"}, child)
	assert.False(t, ok)
}

func TestHierarchyWalkerTerminatesOnCycles(t *testing.T) {
	a := publicClass("com.example.A", "com.example.B", "com.example.IA")
	b := publicClass("com.example.B", "com.example.A", "com.example.IA")
	ia := publicInterface("com.example.IA", "com.example.IA")
	resolver := newFakeResolver(a, b, ia)

	walker := NewHierarchyWalker(resolver, classpath.NewSpace("app", nil))
	_, ok := walker.FindMethod(reference.Method{Name: "x", Descriptor: "()V"}, a)
	assert.False(t, ok)
	assert.Equal(t, 1, resolver.callsFor("com.example.B"))
	assert.Equal(t, 1, resolver.callsFor("com.example.IA"))
	assert.Zero(t, resolver.callsFor("com.example.A"))
}

func TestHierarchyWalkerDepthBound(t *testing.T) {
	// L0 extends L1 extends ... extends L9, the method lives on L9
	var classes []*jvm.ClassDescriptor
	names := []string{"L0", "L1", "L2", "L3", "L4", "L5", "L6", "L7", "L8", "L9"}
	for i, name := range names {
		super := ""
		if i+1 < len(names) {
			super = names[i+1]
		}
		classes = append(classes, publicClass(name, super))
	}
	classes[9].Methods = []jvm.MethodDescriptor{method("deep", "()V", jvm.ACC_PUBLIC)}
	resolver := newFakeResolver(classes...)
	space := classpath.NewSpace("app", nil)
	deep := reference.Method{Name: "deep", Descriptor: "()V"}

	_, ok := NewHierarchyWalker(resolver, space).FindMethod(deep, classes[0])
	assert.True(t, ok)

	_, ok = NewHierarchyWalker(resolver, space, WithMaxDepth(3)).FindMethod(deep, classes[0])
	assert.False(t, ok)
}

func TestHierarchyWalkerRevisitsTypesReachedByShorterPath(t *testing.T) {
	// Child extends Mid extends Base implements Api, and Child implements
	// Api directly. Api extends Root, which declares the method. With a
	// bound of 3, Api is first met at depth 3 through the superclass chain
	// and must still be expanded when met again at depth 1.
	child := publicClass("com.example.Child", "com.example.Mid", "com.example.Api")
	mid := publicClass("com.example.Mid", "com.example.Base")
	base := publicClass("com.example.Base", "", "com.example.Api")
	api := publicInterface("com.example.Api", "com.example.Root")
	root := publicInterface("com.example.Root")
	root.Methods = []jvm.MethodDescriptor{method("run", "()V", jvm.ACC_PUBLIC|jvm.ACC_ABSTRACT)}
	resolver := newFakeResolver(child, mid, base, api, root)

	walker := NewHierarchyWalker(resolver, classpath.NewSpace("app", nil), WithMaxDepth(3))
	found, ok := walker.FindMethod(reference.Method{Name: "run", Descriptor: "()V"}, child)
	require.True(t, ok)
	assert.Equal(t, "com.example.Root", found.Owner)
	assert.Equal(t, 1, resolver.callsFor("com.example.Api"))
}

func TestFieldDescriptorMustMatchExactly(t *testing.T) {
	target := publicClass("com.example.Holder", "")
	target.Fields = []jvm.FieldDescriptor{field("value", "Ljava/lang/String;", jvm.ACC_PUBLIC)}
	resolver := newFakeResolver(target)

	// String is assignable to Object but the descriptors differ
	ref := buildRef(t, reference.NewBuilder("com.example.Holder").
		WithField(advice, nil, "value", "Ljava/lang/Object;"))
	mismatches := NewMatcher(resolver).CheckReferenceAgainstSpace(ref, classpath.NewSpace("app", nil))

	require.Len(t, mismatches, 1)
	assert.Equal(t, MissingField, mismatches[0].Kind)
	assert.Equal(t, "com.example.Holder#value:java.lang.Object", mismatches[0].Symbol)
	assert.Equal(t, advice, mismatches[0].Sources)
}

func TestMethodDescriptorMustMatchExactly(t *testing.T) {
	target := publicClass("com.example.Sink", "")
	target.Methods = []jvm.MethodDescriptor{method("accept", "(Ljava/lang/Object;)V", jvm.ACC_PUBLIC)}
	resolver := newFakeResolver(target)

	ref := buildRef(t, reference.NewBuilder("com.example.Sink").
		WithMethod(nil, nil, "accept", "(Ljava/lang/String;)V").
		WithSource("Advice", 7))
	mismatches := NewMatcher(resolver).CheckReferenceAgainstSpace(ref, classpath.NewSpace("app", nil))

	require.Len(t, mismatches, 1)
	assert.Equal(t, MissingMethod, mismatches[0].Kind)
	// no member sources, so the class sources are reported
	assert.Equal(t, []reference.Source{{Origin: "Advice", Line: 7}}, mismatches[0].Sources)
}

func TestClassFlagPackagePrivate(t *testing.T) {
	target := &jvm.ClassDescriptor{
		Name:    "com.example.Internal",
		Access:  jvm.ACC_SUPER,
		Methods: []jvm.MethodDescriptor{method("run", "()V", jvm.ACC_PUBLIC)},
	}
	resolver := newFakeResolver(target)

	ref := buildRef(t, reference.NewBuilder("com.example.Internal").
		WithFlags(reference.FlagPublic, reference.FlagNonInterface).
		WithMethod(advice, nil, "run", "()V"))
	mismatches := NewMatcher(resolver).CheckReferenceAgainstSpace(ref, classpath.NewSpace("app", nil))

	require.Len(t, mismatches, 1)
	assert.Equal(t, MissingFlag, mismatches[0].Kind)
	assert.Equal(t, reference.FlagPublic, mismatches[0].Expected)
	assert.Equal(t, jvm.ACC_SUPER, mismatches[0].Actual)
}

func TestMemberFlagsAreCheckedOnTheFoundMember(t *testing.T) {
	base := publicClass("com.example.Base", "")
	base.Methods = []jvm.MethodDescriptor{method("create", "()Lcom/example/Base;", jvm.ACC_PUBLIC)}
	base.Fields = []jvm.FieldDescriptor{field("secret", "I", jvm.ACC_PRIVATE|jvm.ACC_FINAL)}
	child := publicClass("com.example.Child", "com.example.Base")
	resolver := newFakeResolver(base, child)

	ref := buildRef(t, reference.NewBuilder("com.example.Child").
		WithMethod(advice, reference.Flags{reference.FlagStatic}, "create", "()Lcom/example/Base;").
		WithField(advice, reference.Flags{reference.FlagPackageOrHigher, reference.FlagNonFinal}, "secret", "I"))
	mismatches := NewMatcher(resolver).CheckReferenceAgainstSpace(ref, classpath.NewSpace("app", nil))

	// fields are checked before methods, every failing flag is reported
	assert.Equal(t, []MismatchKind{MissingFlag, MissingFlag, MissingFlag}, kinds(mismatches))
	assert.Equal(t, reference.FlagPackageOrHigher, mismatches[0].Expected)
	assert.Equal(t, reference.FlagNonFinal, mismatches[1].Expected)
	assert.Equal(t, reference.FlagStatic, mismatches[2].Expected)
	assert.Equal(t, "com.example.Child#create():com.example.Base", mismatches[2].Symbol)
}

func TestResolverFailuresBecomeResolutionErrors(t *testing.T) {
	cause := errors.New("bad constant pool")
	failing := newFakeResolver()
	failing.failures["com.example.Corrupt"] = cause

	tests := []struct {
		name     string
		resolver Resolver
	}{
		{"failed", failing},
		{"panic", ResolverFunc(func(*classpath.Space, string) classpath.Resolution {
			panic("resolver bug")
		})},
		{"nil descriptor", ResolverFunc(func(*classpath.Space, string) classpath.Resolution {
			return classpath.Resolution{Status: classpath.Resolved}
		})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ref := buildRef(t, reference.NewBuilder("com.example.Corrupt").WithMethod(advice, nil, "x", "()V"))
			rm := NewReferenceMatcher(buildModule(t, "m", nil, ref), tt.resolver)
			space := classpath.NewSpace("app", nil)

			assert.False(t, rm.Matches(space))
			mismatches := rm.Diagnose(space)
			require.Len(t, mismatches, 1)
			assert.Equal(t, ResolutionError, mismatches[0].Kind)
			assert.Error(t, mismatches[0].Cause)
		})
	}

	assert.ErrorIs(t, NewMatcher(failing).CheckReferenceAgainstSpace(
		buildRef(t, reference.NewBuilder("com.example.Corrupt")), nil)[0].Cause, cause)
}

func TestMismatchString(t *testing.T) {
	tests := []struct {
		mismatch Mismatch
		want     string
	}{
		{
			Mismatch{Kind: MissingClass, Symbol: "a.B", Sources: []reference.Source{{Origin: "Advice", Line: 1}, {Origin: "Other", Line: 2}}},
			"Missing class a.B @ Advice:1, Other:2",
		},
		{
			Mismatch{Kind: MissingFlag, Symbol: "a.B", Expected: reference.FlagPublic, Actual: 0},
			"Missing flag a.B: expected public, actual package-private (0x0000)",
		},
		{
			Mismatch{Kind: ResolutionError, Symbol: "a.B", Cause: errors.New("boom")},
			"Resolution error a.B: boom",
		},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.mismatch.String())
	}

	counts := CountByKind([]Mismatch{{Kind: MissingClass}, {Kind: MissingClass}, {Kind: MissingFlag}})
	assert.Equal(t, 2, counts[MissingClass])
	assert.Equal(t, 1, counts[MissingFlag])
	assert.Zero(t, counts[MissingMethod])
}
