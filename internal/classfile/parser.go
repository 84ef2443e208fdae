package classfile

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/mabhi256/jmuzzle/internal/jvm"
)

/*
*	Class-file format described here
*	https://docs.oracle.com/javase/specs/jvms/se21/html/jvms-4.html
 */

const Magic uint32 = 0xCAFEBABE

var (
	ErrBadMagic  = errors.New("not a class file")
	ErrMalformed = errors.New("malformed class file")
)

// Parse decodes the declared structure of a class file. Code attributes and
// every other attribute are skipped, nothing is linked or executed.
func Parse(r io.Reader) (*jvm.ClassDescriptor, error) {
	reader := NewBinaryReader(r)

	class := &jvm.ClassDescriptor{}
	if err := parseHeader(reader, class); err != nil {
		return nil, err
	}

	pool, err := ParseConstantPool(reader)
	if err != nil {
		return nil, err
	}

	if err := parseClassInfo(reader, pool, class); err != nil {
		return nil, err
	}

	if class.Fields, err = parseFields(reader, pool); err != nil {
		return nil, err
	}

	if class.Methods, err = parseMethods(reader, pool); err != nil {
		return nil, err
	}

	if err := skipAttributes(reader); err != nil {
		return nil, fmt.Errorf("failed to skip class attributes: %w", err)
	}

	return class, nil
}

// ParseBytes is Parse over an in-memory class file
func ParseBytes(data []byte) (*jvm.ClassDescriptor, error) {
	return Parse(bytes.NewReader(data))
}

/*
parseHeader reads

	u4      magic (0xCAFEBABE)
	u2      minor_version
	u2      major_version
*/
func parseHeader(reader *BinaryReader, class *jvm.ClassDescriptor) error {
	magic, err := reader.ReadU4()
	if err != nil {
		return fmt.Errorf("unable to read magic: %w", err)
	}

	if magic != Magic {
		return fmt.Errorf("%w: magic 0x%08X", ErrBadMagic, magic)
	}

	if class.MinorVersion, err = reader.ReadU2(); err != nil {
		return fmt.Errorf("failed to read minor version: %w", err)
	}

	if class.MajorVersion, err = reader.ReadU2(); err != nil {
		return fmt.Errorf("failed to read major version: %w", err)
	}

	return nil
}

/*
parseClassInfo reads

	u2      access_flags
	u2      this_class
	u2      super_class (0 for java.lang.Object)
	u2      interfaces_count
	u2[]    interfaces
*/
func parseClassInfo(reader *BinaryReader, pool *ConstantPool, class *jvm.ClassDescriptor) error {
	access, err := reader.ReadU2()
	if err != nil {
		return fmt.Errorf("failed to read access flags: %w", err)
	}
	class.Access = jvm.AccessFlags(access)

	thisIndex, err := reader.ReadU2()
	if err != nil {
		return fmt.Errorf("failed to read this_class: %w", err)
	}
	if class.Name, err = pool.ClassName(thisIndex); err != nil {
		return fmt.Errorf("failed to resolve this_class: %w", err)
	}

	superIndex, err := reader.ReadU2()
	if err != nil {
		return fmt.Errorf("failed to read super_class: %w", err)
	}
	if superIndex != 0 {
		if class.SuperName, err = pool.ClassName(superIndex); err != nil {
			return fmt.Errorf("failed to resolve super_class: %w", err)
		}
	}

	count, err := reader.ReadU2()
	if err != nil {
		return fmt.Errorf("failed to read interfaces count: %w", err)
	}

	class.Interfaces = make([]string, 0, count)
	for i := 0; i < int(count); i++ {
		index, err := reader.ReadU2()
		if err != nil {
			return fmt.Errorf("failed to read interface %d: %w", i, err)
		}
		name, err := pool.ClassName(index)
		if err != nil {
			return fmt.Errorf("failed to resolve interface %d: %w", i, err)
		}
		class.Interfaces = append(class.Interfaces, name)
	}

	return nil
}

// member is the common layout of field_info and method_info
type member struct {
	access     jvm.AccessFlags
	name       string
	descriptor string
}

/*
parseMembers reads a fields or methods table

	u2                  count
	member_info[count]

	member_info:
	u2                  access_flags
	u2                  name_index
	u2                  descriptor_index
	u2                  attributes_count
	attribute_info[]    attributes (skipped)
*/
func parseMembers(reader *BinaryReader, pool *ConstantPool, kind string) ([]member, error) {
	count, err := reader.ReadU2()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s count: %w", kind, err)
	}

	members := make([]member, 0, count)
	for i := 0; i < int(count); i++ {
		access, err := reader.ReadU2()
		if err != nil {
			return nil, fmt.Errorf("failed to read %s %d access flags: %w", kind, i, err)
		}

		nameIndex, err := reader.ReadU2()
		if err != nil {
			return nil, fmt.Errorf("failed to read %s %d name index: %w", kind, i, err)
		}

		descriptorIndex, err := reader.ReadU2()
		if err != nil {
			return nil, fmt.Errorf("failed to read %s %d descriptor index: %w", kind, i, err)
		}

		name, err := pool.Utf8(nameIndex)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve %s %d name: %w", kind, i, err)
		}

		descriptor, err := pool.Utf8(descriptorIndex)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve %s %d descriptor: %w", kind, i, err)
		}

		if err := skipAttributes(reader); err != nil {
			return nil, fmt.Errorf("failed to skip attributes of %s %s: %w", kind, name, err)
		}

		members = append(members, member{
			access:     jvm.AccessFlags(access),
			name:       name,
			descriptor: descriptor,
		})
	}

	return members, nil
}

func parseFields(reader *BinaryReader, pool *ConstantPool) ([]jvm.FieldDescriptor, error) {
	members, err := parseMembers(reader, pool, "field")
	if err != nil {
		return nil, err
	}

	fields := make([]jvm.FieldDescriptor, len(members))
	for i, m := range members {
		fields[i] = jvm.FieldDescriptor{Name: m.name, Descriptor: m.descriptor, Access: m.access}
	}
	return fields, nil
}

func parseMethods(reader *BinaryReader, pool *ConstantPool) ([]jvm.MethodDescriptor, error) {
	members, err := parseMembers(reader, pool, "method")
	if err != nil {
		return nil, err
	}

	methods := make([]jvm.MethodDescriptor, len(members))
	for i, m := range members {
		methods[i] = jvm.MethodDescriptor{Name: m.name, Descriptor: m.descriptor, Access: m.access}
	}
	return methods, nil
}

/*
skipAttributes skips an attributes table

	u2          attributes_count
	attribute_info:
	u2          attribute_name_index
	u4          attribute_length
	u1[length]  info
*/
func skipAttributes(reader *BinaryReader) error {
	count, err := reader.ReadU2()
	if err != nil {
		return fmt.Errorf("failed to read attributes count: %w", err)
	}

	for i := 0; i < int(count); i++ {
		if _, err := reader.ReadU2(); err != nil {
			return fmt.Errorf("failed to read attribute %d name: %w", i, err)
		}

		length, err := reader.ReadU4()
		if err != nil {
			return fmt.Errorf("failed to read attribute %d length: %w", i, err)
		}

		if err := reader.Skip(int64(length)); err != nil {
			return fmt.Errorf("failed to skip attribute %d: %w", i, err)
		}
	}

	return nil
}
