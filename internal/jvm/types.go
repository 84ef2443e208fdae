package jvm

import "fmt"

// ClassDescriptor is the declared shape of a type as read from its class file.
// Names are binary names (java.lang.String), descriptors keep the JVM encoding.
type ClassDescriptor struct {
	Name       string
	Access     AccessFlags
	SuperName  string // empty for java.lang.Object and module-info
	Interfaces []string
	Fields     []FieldDescriptor
	Methods    []MethodDescriptor

	MajorVersion uint16
	MinorVersion uint16
}

// FieldDescriptor is one declared field
type FieldDescriptor struct {
	Name       string
	Descriptor string // e.g. Ljava/lang/String;
	Access     AccessFlags
}

// MethodDescriptor is one declared method
type MethodDescriptor struct {
	Name       string
	Descriptor string // e.g. (Ljava/lang/String;)V
	Access     AccessFlags
}

// Field looks up a declared field by exact name and descriptor
func (c *ClassDescriptor) Field(name, descriptor string) (FieldDescriptor, bool) {
	for _, f := range c.Fields {
		if f.Name == name && f.Descriptor == descriptor {
			return f, true
		}
	}
	return FieldDescriptor{}, false
}

// Method looks up a declared method by exact name and descriptor
func (c *ClassDescriptor) Method(name, descriptor string) (MethodDescriptor, bool) {
	for _, m := range c.Methods {
		if m.Name == name && m.Descriptor == descriptor {
			return m, true
		}
	}
	return MethodDescriptor{}, false
}

// JavaVersion maps the class-file major version to the Java release
func (c *ClassDescriptor) JavaVersion() string {
	switch {
	case c.MajorVersion >= 49:
		return fmt.Sprintf("Java %d", c.MajorVersion-44)
	case c.MajorVersion >= 45:
		return fmt.Sprintf("Java 1.%d", c.MajorVersion-44)
	default:
		return fmt.Sprintf("unknown (major %d)", c.MajorVersion)
	}
}

func (f FieldDescriptor) String() string {
	return FormatField(f.Name, f.Descriptor)
}

func (m MethodDescriptor) String() string {
	return FormatMethod(m.Name, m.Descriptor)
}
