package muzzle

import (
	"go.uber.org/zap"

	"github.com/mabhi256/jmuzzle/internal/classpath"
	"github.com/mabhi256/jmuzzle/internal/jvm"
	"github.com/mabhi256/jmuzzle/internal/reference"
)

// DefaultMaxDepth bounds hierarchy searches. Real hierarchies are shallow;
// the bound only matters for malformed, cyclic class files.
const DefaultMaxDepth = 64

// FoundField is a field located somewhere in a type hierarchy
type FoundField struct {
	Owner string
	Field jvm.FieldDescriptor
}

// FoundMethod is a method located somewhere in a type hierarchy
type FoundMethod struct {
	Owner  string
	Method jvm.MethodDescriptor
}

// HierarchyWalker resolves member references through a class's own
// declarations, its superclass chain and its interfaces, in that order.
// Matching is by exact name and descriptor, never by assignability.
type HierarchyWalker struct {
	resolver Resolver
	space    *classpath.Space
	maxDepth int
	logger   *zap.Logger
}

func NewHierarchyWalker(resolver Resolver, space *classpath.Space, opts ...Option) *HierarchyWalker {
	o := newOptions(opts)
	return &HierarchyWalker{
		resolver: resolver,
		space:    space,
		maxDepth: o.maxDepth,
		logger:   o.logger,
	}
}

// FindField searches class and its supertypes for an exact field match
func (w *HierarchyWalker) FindField(field reference.Field, class *jvm.ClassDescriptor) (FoundField, bool) {
	owner, f, ok := search(w.newSearch(class), class, func(c *jvm.ClassDescriptor) (jvm.FieldDescriptor, bool) {
		return c.Field(field.Name, field.Descriptor)
	})
	return FoundField{Owner: owner, Field: f}, ok
}

// FindMethod searches class and its supertypes for an exact method match
func (w *HierarchyWalker) FindMethod(method reference.Method, class *jvm.ClassDescriptor) (FoundMethod, bool) {
	owner, m, ok := search(w.newSearch(class), class, func(c *jvm.ClassDescriptor) (jvm.MethodDescriptor, bool) {
		return c.Method(method.Name, method.Descriptor)
	})
	return FoundMethod{Owner: owner, Method: m}, ok
}

// hierarchySearch is the state of one lookup. Each type is resolved at most
// once, and expanded again only when reached at a shallower depth than
// before, which keeps diamond interface graphs linear without letting the
// depth bound hide a type that is also reachable by a shorter path.
type hierarchySearch struct {
	walker   *HierarchyWalker
	depths   map[string]int
	resolved map[string]*jvm.ClassDescriptor
}

func (w *HierarchyWalker) newSearch(start *jvm.ClassDescriptor) *hierarchySearch {
	return &hierarchySearch{
		walker:   w,
		depths:   map[string]int{start.Name: 0},
		resolved: map[string]*jvm.ClassDescriptor{start.Name: start},
	}
}

// visit records name at depth and reports whether it still needs expanding
func (s *hierarchySearch) visit(name string, depth int) bool {
	if seen, ok := s.depths[name]; ok && seen <= depth {
		return false
	}
	s.depths[name] = depth
	return true
}

// resolve returns nil for anything that is not a usable descriptor.
// A missing parent is not an error: it simply contributes no members.
func (s *hierarchySearch) resolve(name string) *jvm.ClassDescriptor {
	if class, ok := s.resolved[name]; ok {
		return class
	}

	var class *jvm.ClassDescriptor
	res := safeResolve(s.walker.resolver, s.walker.space, name)
	switch res.Status {
	case classpath.Resolved:
		class = res.Class
	case classpath.Failed:
		s.walker.logger.Debug("skipping unreadable supertype",
			zap.String("class", name),
			zap.Error(res.Err))
	}
	s.resolved[name] = class
	return class
}

type queuedType struct {
	name  string
	depth int
}

func search[T any](s *hierarchySearch, start *jvm.ClassDescriptor, lookup func(*jvm.ClassDescriptor) (T, bool)) (string, T, bool) {
	return searchFrom(s, start, 0, lookup)
}

func searchFrom[T any](s *hierarchySearch, class *jvm.ClassDescriptor, depth int, lookup func(*jvm.ClassDescriptor) (T, bool)) (string, T, bool) {
	if member, ok := lookup(class); ok {
		return class.Name, member, true
	}

	var zero T
	if depth >= s.walker.maxDepth {
		s.walker.logger.Debug("hierarchy search depth exceeded", zap.String("class", class.Name))
		return "", zero, false
	}

	// superclass chain first, including the superclasses' own interfaces
	if class.SuperName != "" && s.visit(class.SuperName, depth+1) {
		if super := s.resolve(class.SuperName); super != nil {
			if owner, member, ok := searchFrom(s, super, depth+1, lookup); ok {
				return owner, member, true
			}
		}
	}

	// then declared interfaces, breadth first
	queue := make([]queuedType, 0, len(class.Interfaces))
	for _, name := range class.Interfaces {
		queue = append(queue, queuedType{name: name, depth: depth + 1})
	}

	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]

		if next.depth > s.walker.maxDepth || !s.visit(next.name, next.depth) {
			continue
		}

		iface := s.resolve(next.name)
		if iface == nil {
			continue
		}

		if member, ok := lookup(iface); ok {
			return iface.Name, member, true
		}

		for _, name := range iface.Interfaces {
			queue = append(queue, queuedType{name: name, depth: next.depth + 1})
		}
	}

	return "", zero, false
}
