package variant

import (
	"context"
	"fmt"
	"strings"

	"mathdrills/internal/domain"
)

// Factory builds a fresh strategy for one session. Stateful strategies such as
// file quizzes must not be shared between sessions.
type Factory func(ctx context.Context) (Strategy, error)

// Registry maps quiz type names to strategy factories, keeping registration order.
type Registry struct {
	order     []string
	factories map[string]Factory
}

func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Builtin returns a registry holding the arithmetic drills.
func Builtin() *Registry {
	r := NewRegistry()
	for _, build := range []func() *Arithmetic{
		Addition, Multiplication, SmallMultiplication, Subtraction, SubtractionTeens, Division,
	} {
		build := build
		r.Register(build().Name(), func(context.Context) (Strategy, error) { return build(), nil })
	}
	return r
}

// Register adds or replaces a factory.
func (r *Registry) Register(name string, factory Factory) {
	if _, ok := r.factories[name]; !ok {
		r.order = append(r.order, name)
	}
	r.factories[name] = factory
}

// Lookup builds the strategy registered under name. Matching is case-insensitive.
func (r *Registry) Lookup(ctx context.Context, name string) (Strategy, error) {
	factory, ok := r.factories[name]
	if !ok {
		for _, registered := range r.order {
			if strings.EqualFold(registered, name) {
				factory, ok = r.factories[registered], true
				break
			}
		}
	}
	if !ok || factory == nil {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownVariant, name)
	}
	return factory(ctx)
}

// Names lists registered quiz types in registration order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}
