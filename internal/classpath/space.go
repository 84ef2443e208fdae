package classpath

import (
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
)

// Space is a symbol space: the set of classes visible from one loader.
// Lookups go to the parent first, then to the space's own locators in order.
// A Space is immutable once created; its registry only memoises lookups.
type Space struct {
	id       string
	name     string
	parent   *Space
	locators []Locator
	registry *ClassRegistry
}

// NewSpace creates a space. parent may be nil.
func NewSpace(name string, parent *Space, locators ...Locator) *Space {
	return &Space{
		id:       uuid.NewString(),
		name:     name,
		parent:   parent,
		locators: locators,
		registry: NewClassRegistry(),
	}
}

// ID is a stable identity, unique for the process lifetime
func (s *Space) ID() string {
	return s.id
}

func (s *Space) Name() string {
	return s.name
}

func (s *Space) Parent() *Space {
	return s.parent
}

func (s *Space) Locators() []Locator {
	return s.locators
}

func (s *Space) Registry() *ClassRegistry {
	return s.registry
}

// open searches only this space's own locators
func (s *Space) open(resource string) (io.ReadCloser, Locator, error) {
	for _, l := range s.locators {
		rc, err := l.Open(resource)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, l, err
		}
		return rc, l, nil
	}
	return nil, nil, ErrNotFound
}

// Close releases archives held by this space (not its parent)
func (s *Space) Close() error {
	if err := closeLocators(s.locators); err != nil {
		return fmt.Errorf("failed to close space %s: %w", s.name, err)
	}
	return nil
}

func (s *Space) String() string {
	if s.parent != nil {
		return fmt.Sprintf("%s <- %s", s.name, s.parent)
	}
	return s.name
}
