// Package pipeline provides ordered composition of resource transformers.
package pipeline

import (
	"context"

	"github.com/mbellgrove/linkweaver/internal/resource"
)

// Transformer is one enrichment step. Implementations must be pure with
// respect to their input: a step that changes something returns a new
// resource derived from its input, and a step that does not apply
// returns the input unchanged.
type Transformer interface {
	Transform(ctx context.Context, r resource.Resource) (resource.Resource, error)
}

// Func adapts a plain function to the Transformer interface.
type Func func(ctx context.Context, r resource.Resource) (resource.Resource, error)

// Transform calls f.
func (f Func) Transform(ctx context.Context, r resource.Resource) (resource.Resource, error) {
	return f(ctx, r)
}

// Identity returns its input untouched.
var Identity Transformer = Func(func(_ context.Context, r resource.Resource) (resource.Resource, error) {
	return r, nil
})

type sequence struct {
	steps []Transformer
}

func (s sequence) Transform(ctx context.Context, r resource.Resource) (resource.Resource, error) {
	current := r
	for _, step := range s.steps {
		next, err := step.Transform(ctx, current)
		if err != nil {
			// No retry or suppression here; failures belong to the caller.
			return current, err
		}
		current = next
	}
	return current, nil
}

// Chain composes steps into a single transformer that invokes them
// strictly sequentially, threading each step's output into the next.
// Zero steps compose to the identity; one step delegates directly.
// Composition respects insertion order and is associative: chaining
// Chain(a, b) with c is equivalent to Chain(a, b, c).
func Chain(steps ...Transformer) Transformer {
	switch len(steps) {
	case 0:
		return Identity
	case 1:
		return steps[0]
	default:
		flat := make([]Transformer, 0, len(steps))
		for _, step := range steps {
			if inner, ok := step.(sequence); ok {
				flat = append(flat, inner.steps...)
				continue
			}
			flat = append(flat, step)
		}
		return sequence{steps: flat}
	}
}
