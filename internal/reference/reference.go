package reference

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/mabhi256/jmuzzle/internal/jvm"
)

var ErrEmptyClassName = errors.New("reference class name is empty")

// Source records where a dependency was introduced (advice class and line)
type Source struct {
	Origin string
	Line   int
}

func (s Source) String() string {
	if s.Line <= 0 {
		return s.Origin
	}
	return s.Origin + ":" + strconv.Itoa(s.Line)
}

// ParseSource reads Origin:Line; the line part is optional
func ParseSource(text string) (Source, error) {
	idx := strings.LastIndexByte(text, ':')
	if idx < 0 {
		return Source{Origin: text}, nil
	}

	line, err := strconv.Atoi(text[idx+1:])
	if err != nil {
		return Source{}, fmt.Errorf("invalid source %q: %w", text, err)
	}
	return Source{Origin: text[:idx], Line: line}, nil
}

func (s Source) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Source) UnmarshalText(text []byte) error {
	parsed, err := ParseSource(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Field is a dependency on a field with an exact type descriptor
type Field struct {
	Name       string
	Descriptor string
	Flags      Flags
	Sources    []Source
}

func (f Field) String() string {
	return jvm.FormatField(f.Name, f.Descriptor)
}

// Method is a dependency on a method with an exact method descriptor
type Method struct {
	Name       string
	Descriptor string
	Flags      Flags
	Sources    []Source
}

func (m Method) String() string {
	return jvm.FormatMethod(m.Name, m.Descriptor)
}

// Reference is everything a module needs from one class. It is built once
// and only read afterwards.
type Reference struct {
	ClassName  string // binary name
	Flags      Flags
	Sources    []Source
	SuperName  string   // informational
	Interfaces []string // informational
	Fields     []Field
	Methods    []Method
}

func (r *Reference) String() string {
	return r.ClassName
}

// Validate checks the invariants a matcher relies on
func (r *Reference) Validate() error {
	if r.ClassName == "" {
		return ErrEmptyClassName
	}
	for _, f := range r.Fields {
		if f.Name == "" || f.Descriptor == "" {
			return fmt.Errorf("field reference in %s needs a name and a descriptor", r.ClassName)
		}
	}
	for _, m := range r.Methods {
		if m.Name == "" || !strings.HasPrefix(m.Descriptor, "(") {
			return fmt.Errorf("method reference %s in %s needs a name and a method descriptor", m.Name, r.ClassName)
		}
	}
	return nil
}

// Merge combines two references to the same class: sources are appended
// without duplicates, flags unioned, and fields and methods merged by name
// and descriptor. Neither input is modified.
func (r *Reference) Merge(other *Reference) (*Reference, error) {
	if r.ClassName != other.ClassName {
		return nil, fmt.Errorf("cannot merge reference to %s with reference to %s", r.ClassName, other.ClassName)
	}

	merged := &Reference{
		ClassName:  r.ClassName,
		Flags:      r.Flags.Union(other.Flags),
		Sources:    mergeSources(r.Sources, other.Sources),
		SuperName:  r.SuperName,
		Interfaces: mergeNames(r.Interfaces, other.Interfaces),
		Fields:     append([]Field(nil), r.Fields...),
		Methods:    append([]Method(nil), r.Methods...),
	}
	if merged.SuperName == "" {
		merged.SuperName = other.SuperName
	}

	for _, f := range other.Fields {
		merged.Fields = mergeField(merged.Fields, f)
	}
	for _, m := range other.Methods {
		merged.Methods = mergeMethod(merged.Methods, m)
	}

	return merged, nil
}

func mergeField(fields []Field, f Field) []Field {
	for i, existing := range fields {
		if existing.Name == f.Name && existing.Descriptor == f.Descriptor {
			fields[i].Flags = existing.Flags.Union(f.Flags)
			fields[i].Sources = mergeSources(existing.Sources, f.Sources)
			return fields
		}
	}
	f.Flags = Flags(nil).Union(f.Flags)
	f.Sources = mergeSources(nil, f.Sources)
	return append(fields, f)
}

func mergeMethod(methods []Method, m Method) []Method {
	for i, existing := range methods {
		if existing.Name == m.Name && existing.Descriptor == m.Descriptor {
			methods[i].Flags = existing.Flags.Union(m.Flags)
			methods[i].Sources = mergeSources(existing.Sources, m.Sources)
			return methods
		}
	}
	m.Flags = Flags(nil).Union(m.Flags)
	m.Sources = mergeSources(nil, m.Sources)
	return append(methods, m)
}

func mergeSources(a, b []Source) []Source {
	out := append([]Source(nil), a...)
	for _, s := range b {
		if !slices.Contains(out, s) {
			out = append(out, s)
		}
	}
	return out
}

func mergeNames(a, b []string) []string {
	out := append([]string(nil), a...)
	for _, name := range b {
		if !slices.Contains(out, name) {
			out = append(out, name)
		}
	}
	return out
}
