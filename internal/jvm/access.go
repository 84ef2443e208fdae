package jvm

import (
	"fmt"
	"strings"
)

// AccessFlags is the raw u2 modifier bitmask found on classes, fields and methods
type AccessFlags uint16

const (
	ACC_PUBLIC       AccessFlags = 0x0001
	ACC_PRIVATE      AccessFlags = 0x0002
	ACC_PROTECTED    AccessFlags = 0x0004
	ACC_STATIC       AccessFlags = 0x0008
	ACC_FINAL        AccessFlags = 0x0010
	ACC_SUPER        AccessFlags = 0x0020 // classes only; ACC_SYNCHRONIZED on methods
	ACC_VOLATILE     AccessFlags = 0x0040 // fields only; ACC_BRIDGE on methods
	ACC_TRANSIENT    AccessFlags = 0x0080 // fields only; ACC_VARARGS on methods
	ACC_NATIVE       AccessFlags = 0x0100
	ACC_INTERFACE    AccessFlags = 0x0200
	ACC_ABSTRACT     AccessFlags = 0x0400
	ACC_STRICT       AccessFlags = 0x0800
	ACC_SYNTHETIC    AccessFlags = 0x1000
	ACC_ANNOTATION   AccessFlags = 0x2000
	ACC_ENUM         AccessFlags = 0x4000
	ACC_MODULE       AccessFlags = 0x8000
	ACC_SYNCHRONIZED             = ACC_SUPER
	ACC_BRIDGE                   = ACC_VOLATILE
	ACC_VARARGS                  = ACC_TRANSIENT
)

func (a AccessFlags) Has(flag AccessFlags) bool {
	return a&flag != 0
}

func (a AccessFlags) IsPublic() bool    { return a.Has(ACC_PUBLIC) }
func (a AccessFlags) IsPrivate() bool   { return a.Has(ACC_PRIVATE) }
func (a AccessFlags) IsProtected() bool { return a.Has(ACC_PROTECTED) }
func (a AccessFlags) IsStatic() bool    { return a.Has(ACC_STATIC) }
func (a AccessFlags) IsFinal() bool     { return a.Has(ACC_FINAL) }
func (a AccessFlags) IsInterface() bool { return a.Has(ACC_INTERFACE) }
func (a AccessFlags) IsAbstract() bool  { return a.Has(ACC_ABSTRACT) }

// IsPackagePrivate reports whether none of public, protected or private is set
func (a AccessFlags) IsPackagePrivate() bool {
	return a&(ACC_PUBLIC|ACC_PROTECTED|ACC_PRIVATE) == 0
}

// String renders the flags the way javap prints modifiers, plus the raw mask.
// Flags whose meaning depends on the member kind (super, volatile, ...) are
// left out of the keyword list.
func (a AccessFlags) String() string {
	var words []string

	switch {
	case a.IsPublic():
		words = append(words, "public")
	case a.IsProtected():
		words = append(words, "protected")
	case a.IsPrivate():
		words = append(words, "private")
	}

	keywords := []struct {
		flag AccessFlags
		word string
	}{
		{ACC_STATIC, "static"},
		{ACC_FINAL, "final"},
		{ACC_NATIVE, "native"},
		{ACC_ABSTRACT, "abstract"},
		{ACC_INTERFACE, "interface"},
		{ACC_SYNTHETIC, "synthetic"},
		{ACC_ANNOTATION, "annotation"},
		{ACC_ENUM, "enum"},
	}
	for _, kw := range keywords {
		if a.Has(kw.flag) {
			words = append(words, kw.word)
		}
	}

	if len(words) == 0 {
		return fmt.Sprintf("package-private (0x%04X)", uint16(a))
	}
	return fmt.Sprintf("%s (0x%04X)", strings.Join(words, " "), uint16(a))
}
