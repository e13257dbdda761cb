package flowz

import (
	"context"
)

// chained composes two stages into one; the first stage's output feeds the
// second stage's input.
type chained[A, B, C any] struct {
	first  Stage[A, B]
	second Stage[B, C]
}

// Chain composes two stages into a single Stage whose input type is the
// first stage's and whose output type is the second stage's. Chains of any
// length and shape are built by nesting.
//
// Example:
//
//	stage := flowz.Chain[string, flowz.Record, []flowz.Record](parse, batcher)
func Chain[A, B, C any](first Stage[A, B], second Stage[B, C]) Stage[A, C] {
	return &chained[A, B, C]{first: first, second: second}
}

func (c *chained[A, B, C]) Process(ctx context.Context, in <-chan Result[A]) <-chan Result[C] {
	return c.second.Process(ctx, c.first.Process(ctx, in))
}

func (c *chained[A, B, C]) Name() string {
	return c.first.Name() + ">" + c.second.Name()
}

// passthrough forwards every Result unchanged.
type passthrough[T any] struct{}

// Passthrough returns the identity stage. It is the empty stage chain and a
// convenient placeholder when a pipeline needs no transformation.
func Passthrough[T any]() Stage[T, T] {
	return passthrough[T]{}
}

func (passthrough[T]) Process(ctx context.Context, in <-chan Result[T]) <-chan Result[T] {
	out := make(chan Result[T])

	go func() {
		defer close(out)
		for item := range in {
			select {
			case out <- item:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out
}

func (passthrough[T]) Name() string { return "passthrough" }

// Stages composes an ordered list of same-type stages into one.
// With no arguments it returns the identity stage.
func Stages[T any](stages ...Stage[T, T]) Stage[T, T] {
	if len(stages) == 0 {
		return Passthrough[T]()
	}
	composed := stages[0]
	for _, next := range stages[1:] {
		composed = Chain(composed, next)
	}
	return composed
}
