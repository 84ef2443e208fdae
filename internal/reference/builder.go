package reference

import "github.com/mabhi256/jmuzzle/internal/jvm"

// Builder assembles a Reference at module registration time
type Builder struct {
	ref Reference
}

// NewBuilder accepts binary (a.b.C) or internal (a/b/C) class names
func NewBuilder(className string) *Builder {
	return &Builder{ref: Reference{ClassName: jvm.BinaryName(className)}}
}

func (b *Builder) WithSource(origin string, line int) *Builder {
	b.ref.Sources = mergeSources(b.ref.Sources, []Source{{Origin: origin, Line: line}})
	return b
}

func (b *Builder) WithFlags(flags ...Flag) *Builder {
	b.ref.Flags = b.ref.Flags.Union(flags)
	return b
}

func (b *Builder) WithSuperName(name string) *Builder {
	b.ref.SuperName = jvm.BinaryName(name)
	return b
}

func (b *Builder) WithInterface(name string) *Builder {
	b.ref.Interfaces = mergeNames(b.ref.Interfaces, []string{jvm.BinaryName(name)})
	return b
}

func (b *Builder) WithField(sources []Source, flags Flags, name, descriptor string) *Builder {
	b.ref.Fields = mergeField(b.ref.Fields, Field{
		Name:       name,
		Descriptor: descriptor,
		Flags:      flags,
		Sources:    sources,
	})
	return b
}

func (b *Builder) WithMethod(sources []Source, flags Flags, name, descriptor string) *Builder {
	b.ref.Methods = mergeMethod(b.ref.Methods, Method{
		Name:       name,
		Descriptor: descriptor,
		Flags:      flags,
		Sources:    sources,
	})
	return b
}

// Build validates and returns a copy, so the builder can keep being used
func (b *Builder) Build() (*Reference, error) {
	if err := b.ref.Validate(); err != nil {
		return nil, err
	}

	ref := b.ref
	ref.Flags = append(Flags(nil), b.ref.Flags...)
	ref.Sources = append([]Source(nil), b.ref.Sources...)
	ref.Interfaces = append([]string(nil), b.ref.Interfaces...)
	ref.Fields = append([]Field(nil), b.ref.Fields...)
	ref.Methods = append([]Method(nil), b.ref.Methods...)
	return &ref, nil
}
