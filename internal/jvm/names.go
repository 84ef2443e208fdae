package jvm

import "strings"

// BinaryName converts an internal name (java/lang/String) to a binary name (java.lang.String)
func BinaryName(internalName string) string {
	return strings.ReplaceAll(internalName, "/", ".")
}

// InternalName converts a binary name (java.lang.String) to an internal name (java/lang/String)
func InternalName(binaryName string) string {
	return strings.ReplaceAll(binaryName, ".", "/")
}

// ResourceName is the class-path entry holding the named class
func ResourceName(className string) string {
	return InternalName(className) + ".class"
}

var primitiveTypes = map[byte]string{
	'B': "byte",
	'C': "char",
	'D': "double",
	'F': "float",
	'I': "int",
	'J': "long",
	'S': "short",
	'Z': "boolean",
	'V': "void",
}

// TypeName renders a single field type descriptor in source form.
// Ljava/lang/String; becomes java.lang.String and [[I becomes int[][].
// Malformed input is returned unchanged.
func TypeName(descriptor string) string {
	name, rest, ok := nextType(descriptor)
	if !ok || rest != "" {
		return descriptor
	}
	return name
}

// nextType decodes the leading type of a descriptor and returns the remainder
func nextType(s string) (string, string, bool) {
	dims := 0
	for dims < len(s) && s[dims] == '[' {
		dims++
	}
	if dims == len(s) {
		return "", s, false
	}

	var name, rest string
	switch c := s[dims]; c {
	case 'L':
		end := strings.IndexByte(s[dims:], ';')
		if end < 0 {
			return "", s, false
		}
		name = BinaryName(s[dims+1 : dims+end])
		rest = s[dims+end+1:]
	default:
		prim, ok := primitiveTypes[c]
		if !ok {
			return "", s, false
		}
		name = prim
		rest = s[dims+1:]
	}

	return name + strings.Repeat("[]", dims), rest, true
}

// ParseMethodDescriptor splits (Ljava/lang/String;I)V into source-form
// parameter types and return type
func ParseMethodDescriptor(descriptor string) (params []string, ret string, ok bool) {
	if !strings.HasPrefix(descriptor, "(") {
		return nil, "", false
	}
	end := strings.IndexByte(descriptor, ')')
	if end < 0 {
		return nil, "", false
	}

	args := descriptor[1:end]
	for args != "" {
		var name string
		name, args, ok = nextType(args)
		if !ok {
			return nil, "", false
		}
		params = append(params, name)
	}

	ret, rest, ok := nextType(descriptor[end+1:])
	if !ok || rest != "" {
		return nil, "", false
	}
	return params, ret, true
}

// FormatMethod renders name(java.lang.String):void, falling back to the raw
// descriptor when it does not parse
func FormatMethod(name, descriptor string) string {
	params, ret, ok := ParseMethodDescriptor(descriptor)
	if !ok {
		return name + descriptor
	}
	return name + "(" + strings.Join(params, ", ") + "):" + ret
}

// FormatField renders name:java.lang.String
func FormatField(name, descriptor string) string {
	return name + ":" + TypeName(descriptor)
}
