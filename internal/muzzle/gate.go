package muzzle

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mabhi256/jmuzzle/internal/classpath"
	"github.com/mabhi256/jmuzzle/internal/reference"
)

var (
	ErrUnknownModule   = errors.New("unknown module")
	ErrDuplicateModule = errors.New("module already registered")
)

// Gate holds the matchers of every registered module
type Gate struct {
	mu       sync.RWMutex
	matchers map[string]*ReferenceMatcher

	resolver Resolver
	opts     []Option
	logger   *zap.Logger
}

func NewGate(resolver Resolver, opts ...Option) *Gate {
	o := newOptions(opts)
	return &Gate{
		matchers: make(map[string]*ReferenceMatcher),
		resolver: resolver,
		opts:     opts,
		logger:   o.logger,
	}
}

func (g *Gate) Register(module *reference.Module) error {
	if module == nil {
		return errors.New("failed to register module: module is nil")
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if _, exists := g.matchers[module.Name()]; exists {
		return fmt.Errorf("failed to register %s: %w", module.Name(), ErrDuplicateModule)
	}

	g.matchers[module.Name()] = NewReferenceMatcher(module, g.resolver, g.opts...)
	g.logger.Debug("registered module",
		zap.String("module", module.Name()),
		zap.Int("references", len(module.References())),
		zap.Int("helpers", len(module.HelperClasses())))
	return nil
}

// Matcher returns the matcher registered under name
func (g *Gate) Matcher(name string) (*ReferenceMatcher, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	rm, ok := g.matchers[name]
	return rm, ok
}

func (g *Gate) lookup(name string) (*ReferenceMatcher, error) {
	rm, ok := g.Matcher(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownModule, name)
	}
	return rm, nil
}

// Matches answers whether module name may be applied to space
func (g *Gate) Matches(name string, space *classpath.Space) (bool, error) {
	rm, err := g.lookup(name)
	if err != nil {
		return false, err
	}
	return rm.Matches(space), nil
}

func (g *Gate) Diagnose(name string, space *classpath.Space) ([]Mismatch, error) {
	rm, err := g.lookup(name)
	if err != nil {
		return nil, err
	}
	return rm.Diagnose(space), nil
}

// Modules returns the registered module names in sorted order
func (g *Gate) Modules() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()

	names := make([]string, 0, len(g.matchers))
	for name := range g.matchers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// MatchAll runs the gate for every registered module concurrently
func (g *Gate) MatchAll(ctx context.Context, space *classpath.Space) (map[string]bool, error) {
	names := g.Modules()
	results := make([]bool, len(names))

	eg, ctx := errgroup.WithContext(ctx)
	for i, name := range names {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			ok, err := g.Matches(name, space)
			if err != nil {
				return err
			}
			results[i] = ok
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, fmt.Errorf("failed to match modules: %w", err)
	}

	matched := make(map[string]bool, len(names))
	for i, name := range names {
		matched[name] = results[i]
	}
	return matched, nil
}
