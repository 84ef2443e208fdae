package muzzle

import (
	"fmt"

	"github.com/mabhi256/jmuzzle/internal/classpath"
)

// Resolver is the symbol-resolution capability of the host. It must only
// inspect declared structure; *classpath.Resolver is the standard
// implementation.
type Resolver interface {
	Resolve(space *classpath.Space, className string) classpath.Resolution
}

// ResolverFunc adapts a function to Resolver
type ResolverFunc func(space *classpath.Space, className string) classpath.Resolution

func (f ResolverFunc) Resolve(space *classpath.Space, className string) classpath.Resolution {
	return f(space, className)
}

var _ Resolver = (*classpath.Resolver)(nil)

// safeResolve turns a panicking resolver into a Failed resolution
func safeResolve(resolver Resolver, space *classpath.Space, className string) (res classpath.Resolution) {
	defer func() {
		if r := recover(); r != nil {
			res = classpath.Failure(fmt.Errorf("resolver panicked on %s: %v", className, r))
		}
	}()

	res = resolver.Resolve(space, className)
	if res.Status == classpath.Resolved && res.Class == nil {
		return classpath.Failure(fmt.Errorf("resolver returned no descriptor for %s", className))
	}
	return res
}
