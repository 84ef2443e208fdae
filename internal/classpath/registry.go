package classpath

import (
	"sort"
	"sync"
)

type ClassInfo struct {
	Resolution Resolution
	ClassName  string
	LoadOrder  int // Order in which the lookup completed
}

// ClassRegistry memoises resolution outcomes of one space, found or not.
// Failures are not recorded so a later lookup can retry.
type ClassRegistry struct {
	mu sync.RWMutex

	// Maps class name to class info
	classesByName map[string]*ClassInfo

	// Statistics
	loadOrder       int
	resolvedCount   int
	unresolvedCount int
}

func NewClassRegistry() *ClassRegistry {
	return &ClassRegistry{
		classesByName: make(map[string]*ClassInfo),
	}
}

// Add records the outcome unless another lookup got there first, and returns
// the outcome that is kept
func (cr *ClassRegistry) Add(className string, resolution Resolution) Resolution {
	cr.mu.Lock()
	defer cr.mu.Unlock()

	if existing, ok := cr.classesByName[className]; ok {
		return existing.Resolution
	}

	cr.loadOrder++
	cr.classesByName[className] = &ClassInfo{
		Resolution: resolution,
		ClassName:  className,
		LoadOrder:  cr.loadOrder,
	}

	if resolution.Status == Resolved {
		cr.resolvedCount++
	} else {
		cr.unresolvedCount++
	}

	return resolution
}

func (cr *ClassRegistry) GetByName(className string) (*ClassInfo, bool) {
	cr.mu.RLock()
	defer cr.mu.RUnlock()

	classInfo, exists := cr.classesByName[className]
	return classInfo, exists
}

func (cr *ClassRegistry) ResolvedCount() int {
	cr.mu.RLock()
	defer cr.mu.RUnlock()
	return cr.resolvedCount
}

func (cr *ClassRegistry) UnresolvedCount() int {
	cr.mu.RLock()
	defer cr.mu.RUnlock()
	return cr.unresolvedCount
}

// GetResolvedClasses lists found classes in lookup order
func (cr *ClassRegistry) GetResolvedClasses() []*ClassInfo {
	cr.mu.RLock()
	defer cr.mu.RUnlock()

	var resolved []*ClassInfo
	for _, classInfo := range cr.classesByName {
		if classInfo.Resolution.Status == Resolved {
			resolved = append(resolved, classInfo)
		}
	}

	sort.Slice(resolved, func(i, j int) bool {
		return resolved[i].LoadOrder < resolved[j].LoadOrder
	})
	return resolved
}
