// Package classfiletest encodes structural descriptors into class-file bytes
// so tests can exercise the parser and class-path resolution without a JDK.
package classfiletest

import (
	"bytes"
	"encoding/binary"
	"unicode/utf16"

	"github.com/mabhi256/jmuzzle/internal/jvm"
)

// Build encodes class as a version 52 class file unless a version is set.
// Every method gets a small Code attribute and the class a SourceFile
// attribute, so parsers have something to skip. A Long constant is added to
// exercise two-slot entries.
func Build(class *jvm.ClassDescriptor) []byte {
	e := &encoder{utf8: map[string]uint16{}, classes: map[string]uint16{}}

	major, minor := class.MajorVersion, class.MinorVersion
	if major == 0 {
		major = 52
	}

	thisIndex := e.class(class.Name)
	var superIndex uint16
	if class.SuperName != "" {
		superIndex = e.class(class.SuperName)
	}
	interfaces := make([]uint16, len(class.Interfaces))
	for i, name := range class.Interfaces {
		interfaces[i] = e.class(name)
	}
	e.long(0x1122334455667788)

	var body bytes.Buffer
	put16(&body, uint16(class.Access))
	put16(&body, thisIndex)
	put16(&body, superIndex)
	put16(&body, uint16(len(interfaces)))
	for _, idx := range interfaces {
		put16(&body, idx)
	}

	put16(&body, uint16(len(class.Fields)))
	for _, f := range class.Fields {
		put16(&body, uint16(f.Access))
		put16(&body, e.utf(f.Name))
		put16(&body, e.utf(f.Descriptor))
		put16(&body, 0)
	}

	codeName := e.utf("Code")
	put16(&body, uint16(len(class.Methods)))
	for _, m := range class.Methods {
		put16(&body, uint16(m.Access))
		put16(&body, e.utf(m.Name))
		put16(&body, e.utf(m.Descriptor))
		put16(&body, 1)
		put16(&body, codeName)
		code := []byte{0, 1, 0, 1, 0, 0, 0, 1, 0xB1, 0, 0, 0, 0} // max_stack, max_locals, return
		put32(&body, uint32(len(code)))
		body.Write(code)
	}

	put16(&body, 1)
	put16(&body, e.utf("SourceFile"))
	put32(&body, 2)
	put16(&body, e.utf("Generated.java"))

	var out bytes.Buffer
	put32(&out, 0xCAFEBABE)
	put16(&out, minor)
	put16(&out, major)
	put16(&out, e.next+1)
	out.Write(e.pool.Bytes())
	out.Write(body.Bytes())
	return out.Bytes()
}

type encoder struct {
	pool    bytes.Buffer
	next    uint16 // last used slot
	utf8    map[string]uint16
	classes map[string]uint16
}

func (e *encoder) utf(text string) uint16 {
	if idx, ok := e.utf8[text]; ok {
		return idx
	}
	data := EncodeModifiedUTF8(text)
	e.pool.WriteByte(1)
	put16(&e.pool, uint16(len(data)))
	e.pool.Write(data)
	e.next++
	e.utf8[text] = e.next
	return e.next
}

// class takes a binary name and stores it in internal form
func (e *encoder) class(name string) uint16 {
	if idx, ok := e.classes[name]; ok {
		return idx
	}
	nameIndex := e.utf(jvm.InternalName(name))
	e.pool.WriteByte(7)
	put16(&e.pool, nameIndex)
	e.next++
	e.classes[name] = e.next
	return e.next
}

func (e *encoder) long(v uint64) {
	e.pool.WriteByte(5)
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], v)
	e.pool.Write(buf[:])
	e.next += 2
}

// EncodeModifiedUTF8 is the inverse of the class-file string decoding
func EncodeModifiedUTF8(text string) []byte {
	var out []byte
	for _, unit := range utf16.Encode([]rune(text)) {
		switch {
		case unit != 0 && unit < 0x80:
			out = append(out, byte(unit))
		case unit < 0x800:
			out = append(out, 0xC0|byte(unit>>6), 0x80|byte(unit&0x3F))
		default:
			out = append(out, 0xE0|byte(unit>>12), 0x80|byte(unit>>6&0x3F), 0x80|byte(unit&0x3F))
		}
	}
	return out
}

func put16(buf *bytes.Buffer, v uint16) {
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], v)
	buf.Write(b[:])
}

func put32(buf *bytes.Buffer, v uint32) {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	buf.Write(b[:])
}
