package classfile

import (
	"fmt"

	"github.com/mabhi256/jmuzzle/internal/jvm"
)

type ConstantTag byte

const (
	CONSTANT_Utf8               ConstantTag = 1
	CONSTANT_Integer            ConstantTag = 3
	CONSTANT_Float              ConstantTag = 4
	CONSTANT_Long               ConstantTag = 5
	CONSTANT_Double             ConstantTag = 6
	CONSTANT_Class              ConstantTag = 7
	CONSTANT_String             ConstantTag = 8
	CONSTANT_Fieldref           ConstantTag = 9
	CONSTANT_Methodref          ConstantTag = 10
	CONSTANT_InterfaceMethodref ConstantTag = 11
	CONSTANT_NameAndType        ConstantTag = 12
	CONSTANT_MethodHandle       ConstantTag = 15
	CONSTANT_MethodType         ConstantTag = 16
	CONSTANT_Dynamic            ConstantTag = 17
	CONSTANT_InvokeDynamic      ConstantTag = 18
	CONSTANT_Module             ConstantTag = 19
	CONSTANT_Package            ConstantTag = 20
)

func (t ConstantTag) String() string {
	switch t {
	case CONSTANT_Utf8:
		return "Utf8"
	case CONSTANT_Integer:
		return "Integer"
	case CONSTANT_Float:
		return "Float"
	case CONSTANT_Long:
		return "Long"
	case CONSTANT_Double:
		return "Double"
	case CONSTANT_Class:
		return "Class"
	case CONSTANT_String:
		return "String"
	case CONSTANT_Fieldref:
		return "Fieldref"
	case CONSTANT_Methodref:
		return "Methodref"
	case CONSTANT_InterfaceMethodref:
		return "InterfaceMethodref"
	case CONSTANT_NameAndType:
		return "NameAndType"
	case CONSTANT_MethodHandle:
		return "MethodHandle"
	case CONSTANT_MethodType:
		return "MethodType"
	case CONSTANT_Dynamic:
		return "Dynamic"
	case CONSTANT_InvokeDynamic:
		return "InvokeDynamic"
	case CONSTANT_Module:
		return "Module"
	case CONSTANT_Package:
		return "Package"
	default:
		return fmt.Sprintf("ConstantTag(%d)", byte(t))
	}
}

// payloadSize is the fixed size of entries the verifier never needs to decode
func (t ConstantTag) payloadSize() int64 {
	switch t {
	case CONSTANT_Integer, CONSTANT_Float, CONSTANT_Fieldref, CONSTANT_Methodref,
		CONSTANT_InterfaceMethodref, CONSTANT_NameAndType, CONSTANT_Dynamic, CONSTANT_InvokeDynamic:
		return 4
	case CONSTANT_Long, CONSTANT_Double:
		return 8
	case CONSTANT_MethodHandle:
		return 3
	case CONSTANT_String, CONSTANT_MethodType, CONSTANT_Module, CONSTANT_Package:
		return 2
	default:
		return -1
	}
}

// ConstantPool keeps only what structural inspection needs: Utf8 text and
// Class name indexes. Other entries are skipped but their slots are tracked.
type ConstantPool struct {
	tags       []ConstantTag
	utf8       map[uint16]string
	classNames map[uint16]uint16 // Class index -> Utf8 index
}

/*
ParseConstantPool reads the constant pool:

	u2                  constant_pool_count
	cp_info[count-1]    entries, indexed from 1

	cp_info:
	u1                  tag
	[u1]*               tag-specific payload

Long and Double entries occupy two slots.
*/
func ParseConstantPool(reader *BinaryReader) (*ConstantPool, error) {
	count, err := reader.ReadU2()
	if err != nil {
		return nil, fmt.Errorf("failed to read constant pool count: %w", err)
	}

	pool := &ConstantPool{
		tags:       make([]ConstantTag, count),
		utf8:       make(map[uint16]string),
		classNames: make(map[uint16]uint16),
	}

	for slot := 1; slot < int(count); slot++ {
		i := uint16(slot)
		tagByte, err := reader.ReadU1()
		if err != nil {
			return nil, fmt.Errorf("failed to read tag of constant #%d: %w", i, err)
		}
		tag := ConstantTag(tagByte)
		pool.tags[i] = tag

		switch tag {
		case CONSTANT_Utf8:
			text, err := reader.ReadModifiedUTF8()
			if err != nil {
				return nil, fmt.Errorf("failed to read Utf8 constant #%d: %w", i, err)
			}
			pool.utf8[i] = text

		case CONSTANT_Class:
			nameIndex, err := reader.ReadU2()
			if err != nil {
				return nil, fmt.Errorf("failed to read Class constant #%d: %w", i, err)
			}
			pool.classNames[i] = nameIndex

		default:
			size := tag.payloadSize()
			if size < 0 {
				return nil, fmt.Errorf("%w: unknown constant tag %d at #%d", ErrMalformed, tagByte, i)
			}
			if err := reader.Skip(size); err != nil {
				return nil, fmt.Errorf("failed to skip %s constant #%d: %w", tag, i, err)
			}
			if tag == CONSTANT_Long || tag == CONSTANT_Double {
				slot++
			}
		}
	}

	return pool, nil
}

// Count is the constant_pool_count as stored in the file
func (cp *ConstantPool) Count() int {
	return len(cp.tags)
}

// Utf8 returns the text of a CONSTANT_Utf8 entry
func (cp *ConstantPool) Utf8(index uint16) (string, error) {
	text, ok := cp.utf8[index]
	if !ok {
		return "", fmt.Errorf("%w: constant #%d is not a Utf8 entry", ErrMalformed, index)
	}
	return text, nil
}

// ClassName resolves a CONSTANT_Class entry to a binary class name
func (cp *ConstantPool) ClassName(index uint16) (string, error) {
	nameIndex, ok := cp.classNames[index]
	if !ok {
		return "", fmt.Errorf("%w: constant #%d is not a Class entry", ErrMalformed, index)
	}

	internalName, err := cp.Utf8(nameIndex)
	if err != nil {
		return "", err
	}
	return jvm.BinaryName(internalName), nil
}
