// Package muzzle checks, without loading anything, that the classes, fields,
// methods and modifiers an instrumentation module depends on exist with a
// compatible shape in a target symbol space.
//
// The hot path is ReferenceMatcher.Matches: fail-fast, cached once per symbol
// space, and never panics or returns an error. Diagnose walks the same
// references without stopping and without the cache, for human reports.
package muzzle
