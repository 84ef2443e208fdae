package classfile_test

import (
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mabhi256/jmuzzle/internal/classfile"
	"github.com/mabhi256/jmuzzle/internal/classfile/classfiletest"
	"github.com/mabhi256/jmuzzle/internal/jvm"
)

func sampleClass() *jvm.ClassDescriptor {
	return &jvm.ClassDescriptor{
		Name:         "com.example.Client",
		Access:       jvm.ACC_PUBLIC | jvm.ACC_SUPER,
		SuperName:    "com.example.AbstractClient",
		Interfaces:   []string{"java.io.Closeable", "com.example.Client$Callback"},
		MajorVersion: 55,
		Fields: []jvm.FieldDescriptor{
			{Name: "name", Descriptor: "Ljava/lang/String;", Access: jvm.ACC_PRIVATE | jvm.ACC_FINAL},
			{Name: "COUNT", Descriptor: "I", Access: jvm.ACC_PUBLIC | jvm.ACC_STATIC},
		},
		Methods: []jvm.MethodDescriptor{
			{Name: "<init>", Descriptor: "()V", Access: jvm.ACC_PUBLIC},
			{Name: "send", Descriptor: "(Ljava/lang/String;[B)Z", Access: jvm.ACC_PUBLIC},
			{Name: "close", Descriptor: "()V", Access: jvm.ACC_PUBLIC},
		},
	}
}

func TestParseRoundTrip(t *testing.T) {
	want := sampleClass()

	got, err := classfile.ParseBytes(classfiletest.Build(want))
	require.NoError(t, err)

	if diff := cmp.Diff(want, got, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("parsed class mismatch (-want +got):\n%s", diff)
	}
}

func TestParseJavaLangObject(t *testing.T) {
	object := &jvm.ClassDescriptor{
		Name:    "java.lang.Object",
		Access:  jvm.ACC_PUBLIC | jvm.ACC_SUPER,
		Methods: []jvm.MethodDescriptor{{Name: "hashCode", Descriptor: "()I", Access: jvm.ACC_PUBLIC | jvm.ACC_NATIVE}},
	}

	got, err := classfile.ParseBytes(classfiletest.Build(object))
	require.NoError(t, err)
	assert.Empty(t, got.SuperName)
	assert.Empty(t, got.Interfaces)
	assert.Equal(t, "Java 8", got.JavaVersion())
}

func TestParseNonASCIINames(t *testing.T) {
	class := &jvm.ClassDescriptor{
		Name:      "com.example.Größe",
		SuperName: "java.lang.Object",
		Fields:    []jvm.FieldDescriptor{{Name: "emoji😀", Descriptor: "I"}, {Name: "nul\x00", Descriptor: "J"}},
	}

	got, err := classfile.ParseBytes(classfiletest.Build(class))
	require.NoError(t, err)
	assert.Equal(t, "com.example.Größe", got.Name)
	assert.Equal(t, "emoji😀", got.Fields[0].Name)
	assert.Equal(t, "nul\x00", got.Fields[1].Name)
}

func TestParseBadMagic(t *testing.T) {
	_, err := classfile.ParseBytes([]byte{0xCA, 0xFE, 0xBA, 0xBF, 0, 0, 0, 52})
	assert.ErrorIs(t, err, classfile.ErrBadMagic)
}

func TestParseTruncated(t *testing.T) {
	data := classfiletest.Build(sampleClass())

	for _, cut := range []int{0, 3, 9, len(data) / 2, len(data) - 1} {
		_, err := classfile.Parse(bytes.NewReader(data[:cut]))
		assert.Error(t, err, "cut at %d", cut)
	}
}

func TestParseUnknownConstantTag(t *testing.T) {
	data := []byte{
		0xCA, 0xFE, 0xBA, 0xBE, // magic
		0, 0, 0, 52, // version
		0, 2, // constant_pool_count
		99, // bogus tag
	}

	_, err := classfile.ParseBytes(data)
	assert.ErrorIs(t, err, classfile.ErrMalformed)
}

func TestParseWrongConstantKind(t *testing.T) {
	data := []byte{
		0xCA, 0xFE, 0xBA, 0xBE,
		0, 0, 0, 52,
		0, 2, // one entry
		1, 0, 1, 'A', // Utf8 "A"
		0, 0x21, // access
		0, 1, // this_class points at a Utf8, not a Class
	}

	_, err := classfile.ParseBytes(data)
	assert.ErrorIs(t, err, classfile.ErrMalformed)
}

func TestEncodeModifiedUTF8(t *testing.T) {
	assert.Equal(t, []byte{0xC0, 0x80}, classfiletest.EncodeModifiedUTF8("\x00"))
	assert.Equal(t, []byte("plain"), classfiletest.EncodeModifiedUTF8("plain"))
	// U+1F600 becomes a surrogate pair, three bytes each
	assert.Len(t, classfiletest.EncodeModifiedUTF8("😀"), 6)
}
