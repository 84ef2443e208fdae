// Package report renders diagnostic results for people: terminal text,
// JSON, a single-file HTML page and an interactive TUI.
package report

import (
	"time"

	"github.com/mabhi256/jmuzzle/internal/classpath"
	"github.com/mabhi256/jmuzzle/internal/muzzle"
)

// Report is the outcome of diagnosing one module against one space
type Report struct {
	Module        string
	Space         string
	Locators      []string
	References    int
	Checked       int // references that are not helper classes
	HelperClasses []string
	Mismatches    []muzzle.Mismatch
	Elapsed       time.Duration
	GeneratedAt   time.Time
}

// New runs the full diagnosis of rm against space
func New(rm *muzzle.ReferenceMatcher, space *classpath.Space) *Report {
	start := time.Now()
	mismatches := rm.Diagnose(space)

	var locators []string
	for s := space; s != nil; s = s.Parent() {
		for _, l := range s.Locators() {
			locators = append(locators, l.String())
		}
	}

	checked := 0
	for _, ref := range rm.References() {
		if !rm.Module().IsHelperClass(ref.ClassName) {
			checked++
		}
	}

	return &Report{
		Module:        rm.Module().Name(),
		Space:         space.String(),
		Locators:      locators,
		References:    len(rm.References()),
		Checked:       checked,
		HelperClasses: rm.HelperClasses(),
		Mismatches:    mismatches,
		Elapsed:       time.Since(start),
		GeneratedAt:   start,
	}
}

func (r *Report) Matched() bool {
	return len(r.Mismatches) == 0
}

// Counts tallies mismatches per kind
func (r *Report) Counts() map[muzzle.MismatchKind]int {
	return muzzle.CountByKind(r.Mismatches)
}

// ByKind returns mismatches of kind in report order
func (r *Report) ByKind(kind muzzle.MismatchKind) []muzzle.Mismatch {
	var out []muzzle.Mismatch
	for _, m := range r.Mismatches {
		if m.Kind == kind {
			out = append(out, m)
		}
	}
	return out
}

// FailingClasses is the number of distinct classes with at least one mismatch
func (r *Report) FailingClasses() int {
	seen := make(map[string]struct{})
	for _, m := range r.Mismatches {
		seen[m.ClassName] = struct{}{}
	}
	return len(seen)
}

// Severity maps a kind onto the shared severity palette
func Severity(kind muzzle.MismatchKind) string {
	switch kind {
	case muzzle.MissingClass, muzzle.ResolutionError:
		return "critical"
	case muzzle.MissingField, muzzle.MissingMethod:
		return "warning"
	default:
		return "info"
	}
}
