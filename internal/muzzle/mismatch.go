package muzzle

import (
	"fmt"
	"strings"

	"github.com/mabhi256/jmuzzle/internal/jvm"
	"github.com/mabhi256/jmuzzle/internal/reference"
)

type MismatchKind int

const (
	MissingClass MismatchKind = iota
	MissingField
	MissingMethod
	MissingFlag
	ResolutionError
)

func (k MismatchKind) String() string {
	switch k {
	case MissingClass:
		return "MissingClass"
	case MissingField:
		return "MissingField"
	case MissingMethod:
		return "MissingMethod"
	case MissingFlag:
		return "MissingFlag"
	case ResolutionError:
		return "ResolutionError"
	default:
		return fmt.Sprintf("MismatchKind(%d)", int(k))
	}
}

// Label is the human heading for the kind
func (k MismatchKind) Label() string {
	switch k {
	case MissingClass:
		return "Missing class"
	case MissingField:
		return "Missing field"
	case MissingMethod:
		return "Missing method"
	case MissingFlag:
		return "Missing flag"
	case ResolutionError:
		return "Resolution error"
	default:
		return k.String()
	}
}

// AllMismatchKinds lists kinds in report order
var AllMismatchKinds = []MismatchKind{MissingClass, MissingField, MissingMethod, MissingFlag, ResolutionError}

// Mismatch is one way a reference is not satisfied by a symbol space
type Mismatch struct {
	Kind      MismatchKind
	ClassName string
	Symbol    string // class, Class#field:type or Class#method(params):ret
	Sources   []reference.Source

	Expected reference.Flag  // MissingFlag only
	Actual   jvm.AccessFlags // MissingFlag only
	Cause    error           // ResolutionError only
}

func (m Mismatch) String() string {
	var b strings.Builder
	b.WriteString(m.Kind.Label())
	b.WriteString(" ")
	b.WriteString(m.Symbol)

	switch m.Kind {
	case MissingFlag:
		fmt.Fprintf(&b, ": expected %s, actual %s", m.Expected, m.Actual)
	case ResolutionError:
		if m.Cause != nil {
			fmt.Fprintf(&b, ": %v", m.Cause)
		}
	}

	if len(m.Sources) > 0 {
		sources := make([]string, len(m.Sources))
		for i, s := range m.Sources {
			sources[i] = s.String()
		}
		b.WriteString(" @ ")
		b.WriteString(strings.Join(sources, ", "))
	}

	return b.String()
}

func missingClass(ref *reference.Reference) Mismatch {
	return Mismatch{Kind: MissingClass, ClassName: ref.ClassName, Symbol: ref.ClassName, Sources: ref.Sources}
}

func resolutionError(ref *reference.Reference, cause error) Mismatch {
	return Mismatch{Kind: ResolutionError, ClassName: ref.ClassName, Symbol: ref.ClassName, Sources: ref.Sources, Cause: cause}
}

func missingField(ref *reference.Reference, field reference.Field) Mismatch {
	return Mismatch{
		Kind:      MissingField,
		ClassName: ref.ClassName,
		Symbol:    ref.ClassName + "#" + field.String(),
		Sources:   memberSources(ref, field.Sources),
	}
}

func missingMethod(ref *reference.Reference, method reference.Method) Mismatch {
	return Mismatch{
		Kind:      MissingMethod,
		ClassName: ref.ClassName,
		Symbol:    ref.ClassName + "#" + method.String(),
		Sources:   memberSources(ref, method.Sources),
	}
}

func missingFlag(ref *reference.Reference, symbol string, sources []reference.Source, expected reference.Flag, actual jvm.AccessFlags) Mismatch {
	return Mismatch{
		Kind:      MissingFlag,
		ClassName: ref.ClassName,
		Symbol:    symbol,
		Sources:   sources,
		Expected:  expected,
		Actual:    actual,
	}
}

// memberSources falls back to the class sources when a member has none
func memberSources(ref *reference.Reference, sources []reference.Source) []reference.Source {
	if len(sources) == 0 {
		return ref.Sources
	}
	return sources
}

// CountByKind tallies mismatches per kind
func CountByKind(mismatches []Mismatch) map[MismatchKind]int {
	counts := make(map[MismatchKind]int, len(AllMismatchKinds))
	for _, m := range mismatches {
		counts[m.Kind]++
	}
	return counts
}
