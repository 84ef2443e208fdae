package muzzle

import (
	"go.uber.org/zap"

	"github.com/mabhi256/jmuzzle/internal/classpath"
	"github.com/mabhi256/jmuzzle/internal/reference"
)

// ReferenceMatcher verifies one module's references against symbol spaces.
// Matches is the cached gate used on the hot path; Diagnose is the full,
// uncached report.
type ReferenceMatcher struct {
	module  *reference.Module
	matcher *Matcher
	cache   *ResultCache
	logger  *zap.Logger
}

func NewReferenceMatcher(module *reference.Module, resolver Resolver, opts ...Option) *ReferenceMatcher {
	o := newOptions(opts)
	return &ReferenceMatcher{
		module:  module,
		matcher: NewMatcher(resolver, opts...),
		cache:   NewResultCache(),
		logger:  o.logger.With(zap.String("module", module.Name())),
	}
}

func (rm *ReferenceMatcher) Module() *reference.Module {
	return rm.module
}

func (rm *ReferenceMatcher) References() []*reference.Reference {
	return rm.module.References()
}

func (rm *ReferenceMatcher) HelperClasses() []string {
	return rm.module.HelperClasses()
}

// Cache exposes the result cache for inspection
func (rm *ReferenceMatcher) Cache() *ResultCache {
	return rm.cache
}

// Matches reports whether every non-helper reference is satisfied by space.
// It stops at the first mismatch and remembers the answer for the space.
func (rm *ReferenceMatcher) Matches(space *classpath.Space) bool {
	return rm.cache.GetOrCompute(space, func() bool {
		mismatches := rm.collect(space, true)
		if len(mismatches) > 0 {
			rm.logger.Debug("module does not match",
				zap.Stringer("space", space),
				zap.Stringer("first", mismatches[0]))
			return false
		}
		return true
	})
}

// Diagnose returns every mismatch between the module and space
func (rm *ReferenceMatcher) Diagnose(space *classpath.Space) []Mismatch {
	return rm.collect(space, false)
}

func (rm *ReferenceMatcher) collect(space *classpath.Space, failFast bool) []Mismatch {
	var mismatches []Mismatch

	for _, ref := range rm.module.References() {
		if rm.module.IsHelperClass(ref.ClassName) {
			continue
		}

		found := rm.matcher.CheckReferenceAgainstSpace(ref, space)
		mismatches = append(mismatches, found...)

		if failFast && len(mismatches) > 0 {
			break
		}
	}

	return mismatches
}
