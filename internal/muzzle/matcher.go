package muzzle

import (
	"go.uber.org/zap"

	"github.com/mabhi256/jmuzzle/internal/classpath"
	"github.com/mabhi256/jmuzzle/internal/jvm"
	"github.com/mabhi256/jmuzzle/internal/reference"
)

// Matcher checks single references against resolved classes
type Matcher struct {
	resolver Resolver
	opts     []Option
	logger   *zap.Logger
}

func NewMatcher(resolver Resolver, opts ...Option) *Matcher {
	o := newOptions(opts)
	return &Matcher{
		resolver: resolver,
		opts:     opts,
		logger:   o.logger,
	}
}

// CheckReferenceAgainstSpace resolves the referenced class first. A class
// that is missing or unreadable yields exactly one mismatch and its members
// are not examined.
func (m *Matcher) CheckReferenceAgainstSpace(ref *reference.Reference, space *classpath.Space) []Mismatch {
	res := safeResolve(m.resolver, space, ref.ClassName)

	switch res.Status {
	case classpath.Unresolved:
		m.logger.Debug("referenced class not found",
			zap.String("class", ref.ClassName),
			zap.Stringer("space", space))
		return []Mismatch{missingClass(ref)}

	case classpath.Failed:
		m.logger.Warn("failed to resolve referenced class",
			zap.String("class", ref.ClassName),
			zap.Stringer("space", space),
			zap.Error(res.Err))
		return []Mismatch{resolutionError(ref, res.Err)}
	}

	return m.checkReference(ref, res.Class, space)
}

// CheckReference checks class flags, fields and methods of ref against
// class, collecting every mismatch. Supertypes are looked up in space.
func (m *Matcher) CheckReference(ref *reference.Reference, class *jvm.ClassDescriptor, space *classpath.Space) []Mismatch {
	return m.checkReference(ref, class, space)
}

func (m *Matcher) checkReference(ref *reference.Reference, class *jvm.ClassDescriptor, space *classpath.Space) []Mismatch {
	var mismatches []Mismatch

	for _, flag := range ref.Flags {
		if !flag.Matches(class.Access) {
			mismatches = append(mismatches, missingFlag(ref, ref.ClassName, ref.Sources, flag, class.Access))
		}
	}

	walker := NewHierarchyWalker(m.resolver, space, m.opts...)

	for _, field := range ref.Fields {
		found, ok := walker.FindField(field, class)
		if !ok {
			mismatches = append(mismatches, missingField(ref, field))
			continue
		}

		symbol := ref.ClassName + "#" + field.String()
		for _, flag := range field.Flags {
			if !flag.Matches(found.Field.Access) {
				mismatches = append(mismatches, missingFlag(ref, symbol, memberSources(ref, field.Sources), flag, found.Field.Access))
			}
		}
	}

	for _, method := range ref.Methods {
		found, ok := walker.FindMethod(method, class)
		if !ok {
			mismatches = append(mismatches, missingMethod(ref, method))
			continue
		}

		symbol := ref.ClassName + "#" + method.String()
		for _, flag := range method.Flags {
			if !flag.Matches(found.Method.Access) {
				mismatches = append(mismatches, missingFlag(ref, symbol, memberSources(ref, method.Sources), flag, found.Method.Access))
			}
		}
	}

	return mismatches
}
