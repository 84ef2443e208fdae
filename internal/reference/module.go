package reference

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/mabhi256/jmuzzle/internal/jvm"
)

var ErrEmptyModuleName = errors.New("module name is empty")

// Module is the reference set of one instrumentation module plus the helper
// classes it injects itself. Helper classes never need to pre-exist.
type Module struct {
	name       string
	references []*Reference
	helpers    map[string]struct{}
}

// NewModule validates references, merges duplicates to the same class and
// normalises reference and helper names to binary form. The caller's
// references are not modified.
func NewModule(name string, references []*Reference, helperClasses []string) (*Module, error) {
	if name == "" {
		return nil, ErrEmptyModuleName
	}

	m := &Module{
		name:    name,
		helpers: make(map[string]struct{}, len(helperClasses)),
	}

	index := make(map[string]int)
	for i, ref := range references {
		if ref == nil {
			return nil, fmt.Errorf("module %s: reference #%d is nil", name, i+1)
		}

		ref = normalized(ref)
		if err := ref.Validate(); err != nil {
			return nil, fmt.Errorf("module %s: %w", name, err)
		}

		if i, ok := index[ref.ClassName]; ok {
			merged, err := m.references[i].Merge(ref)
			if err != nil {
				return nil, fmt.Errorf("module %s: %w", name, err)
			}
			m.references[i] = merged
			continue
		}

		index[ref.ClassName] = len(m.references)
		m.references = append(m.references, ref)
	}

	for _, helper := range helperClasses {
		m.helpers[jvm.BinaryName(helper)] = struct{}{}
	}

	return m, nil
}

// normalized returns ref with its class names in binary form, copying it
// only when something changes
func normalized(ref *Reference) *Reference {
	name := jvm.BinaryName(ref.ClassName)
	super := jvm.BinaryName(ref.SuperName)
	changed := name != ref.ClassName || super != ref.SuperName
	for _, iface := range ref.Interfaces {
		changed = changed || jvm.BinaryName(iface) != iface
	}
	if !changed {
		return ref
	}

	out := *ref
	out.ClassName = name
	out.SuperName = super
	out.Interfaces = make([]string, len(ref.Interfaces))
	for i, iface := range ref.Interfaces {
		out.Interfaces[i] = jvm.BinaryName(iface)
	}
	return &out
}

func (m *Module) Name() string {
	return m.name
}

// References returns the module's references in declaration order
func (m *Module) References() []*Reference {
	return m.references
}

// IsHelperClass accepts binary or internal names
func (m *Module) IsHelperClass(className string) bool {
	_, ok := m.helpers[jvm.BinaryName(className)]
	return ok
}

// HelperClasses returns helper class names, sorted
func (m *Module) HelperClasses() []string {
	names := make([]string, 0, len(m.helpers))
	for name := range m.helpers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// moduleFile is the YAML layout of a module definition
type moduleFile struct {
	Name       string          `yaml:"name"`
	Helpers    []string        `yaml:"helpers"`
	References []referenceFile `yaml:"references"`
}

type referenceFile struct {
	Class      string       `yaml:"class"`
	Flags      Flags        `yaml:"flags"`
	Sources    []Source     `yaml:"sources"`
	Super      string       `yaml:"super,omitempty"`
	Interfaces []string     `yaml:"interfaces,omitempty"`
	Fields     []memberFile `yaml:"fields"`
	Methods    []memberFile `yaml:"methods"`
}

type memberFile struct {
	Name       string   `yaml:"name"`
	Descriptor string   `yaml:"descriptor"`
	Flags      Flags    `yaml:"flags"`
	Sources    []Source `yaml:"sources"`
}

// ParseModule decodes a YAML module definition
func ParseModule(data []byte) (*Module, error) {
	var file moduleFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse module definition: %w", err)
	}

	refs := make([]*Reference, 0, len(file.References))
	for i, rf := range file.References {
		b := NewBuilder(rf.Class).WithFlags(rf.Flags...)
		for _, s := range rf.Sources {
			b.WithSource(s.Origin, s.Line)
		}
		if rf.Super != "" {
			b.WithSuperName(rf.Super)
		}
		for _, iface := range rf.Interfaces {
			b.WithInterface(iface)
		}
		for _, f := range rf.Fields {
			b.WithField(f.Sources, f.Flags, f.Name, f.Descriptor)
		}
		for _, mf := range rf.Methods {
			b.WithMethod(mf.Sources, mf.Flags, mf.Name, mf.Descriptor)
		}

		ref, err := b.Build()
		if err != nil {
			return nil, fmt.Errorf("invalid reference #%d in module %s: %w", i+1, file.Name, err)
		}
		refs = append(refs, ref)
	}

	return NewModule(file.Name, refs, file.Helpers)
}

// LoadModule reads a YAML module definition from disk
func LoadModule(path string) (*Module, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("unable to read module file: %w", err)
	}

	m, err := ParseModule(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// MarshalYAML writes the module back in the definition layout
func (m *Module) MarshalYAML() (interface{}, error) {
	file := moduleFile{Name: m.name, Helpers: m.HelperClasses()}
	for _, ref := range m.references {
		rf := referenceFile{
			Class:      ref.ClassName,
			Flags:      ref.Flags,
			Sources:    ref.Sources,
			Super:      ref.SuperName,
			Interfaces: ref.Interfaces,
		}
		for _, f := range ref.Fields {
			rf.Fields = append(rf.Fields, memberFile{Name: f.Name, Descriptor: f.Descriptor, Flags: f.Flags, Sources: f.Sources})
		}
		for _, mm := range ref.Methods {
			rf.Methods = append(rf.Methods, memberFile{Name: mm.Name, Descriptor: mm.Descriptor, Flags: mm.Flags, Sources: mm.Sources})
		}
		file.References = append(file.References, rf)
	}
	return file, nil
}
