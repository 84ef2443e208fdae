package classpath

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/mabhi256/jmuzzle/internal/classfile"
	"github.com/mabhi256/jmuzzle/internal/jvm"
)

var (
	ErrNilSpace     = errors.New("nil symbol space")
	ErrNameMismatch = errors.New("class file declares a different name")
)

// Resolver reads declared class structure out of a Space without loading or
// running anything. Outcomes other than failures are memoised per space.
type Resolver struct {
	logger *zap.Logger
}

type ResolverOption func(*Resolver)

func WithLogger(logger *zap.Logger) ResolverOption {
	return func(r *Resolver) {
		r.logger = logger
	}
}

func NewResolver(opts ...ResolverOption) *Resolver {
	r := &Resolver{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve looks className (binary form, a.b.C) up in space with parent-first
// delegation
func (r *Resolver) Resolve(space *Space, className string) Resolution {
	if space == nil {
		return Failure(ErrNilSpace)
	}

	if info, ok := space.registry.GetByName(className); ok {
		return info.Resolution
	}

	resolution := r.resolveUncached(space, className)

	switch resolution.Status {
	case Failed:
		r.logger.Warn("class resolution failed",
			zap.String("class", className),
			zap.String("space", space.name),
			zap.Error(resolution.Err))
		return resolution
	case Unresolved:
		r.logger.Debug("class not found",
			zap.String("class", className),
			zap.String("space", space.name))
	}

	return space.registry.Add(className, resolution)
}

func (r *Resolver) resolveUncached(space *Space, className string) Resolution {
	if space.parent != nil {
		if resolution := r.Resolve(space.parent, className); resolution.Status != Unresolved {
			return resolution
		}
	}

	rc, locator, err := space.open(jvm.ResourceName(className))
	if errors.Is(err, ErrNotFound) {
		return NotFound()
	}
	if err != nil {
		return Failure(err)
	}
	defer rc.Close()

	class, err := classfile.Parse(rc)
	if err != nil {
		return Failure(fmt.Errorf("failed to parse %s from %s: %w", className, locator, err))
	}

	if class.Name != className {
		return Failure(fmt.Errorf("%w: %s holds %s", ErrNameMismatch, locator, class.Name))
	}

	return Found(class, locator.String())
}
