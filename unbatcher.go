package flowz

import (
	"context"
)

// Unbatcher flattens batches back into individual items, preserving order.
// It is the inverse of Batcher: Batcher followed by Unbatcher reproduces the
// original sequence exactly.
type Unbatcher[T any] struct {
	name string
}

// NewUnbatcher creates a stage that emits each element of incoming batches
// as an individual item.
func NewUnbatcher[T any]() *Unbatcher[T] {
	return &Unbatcher[T]{name: "unbatcher"}
}

// WithName sets a custom name for this stage.
// If not set, defaults to "unbatcher".
func (u *Unbatcher[T]) WithName(name string) *Unbatcher[T] {
	u.name = name
	return u
}

func (u *Unbatcher[T]) Process(ctx context.Context, in <-chan Result[[]T]) <-chan Result[T] {
	out := make(chan Result[T])

	go func() {
		defer close(out)

		for item := range in {
			if item.IsError() {
				select {
				case out <- forwardError[[]T, T](item, u.name):
				case <-ctx.Done():
					return
				}
				continue
			}

			for i, v := range item.Value() {
				select {
				case out <- NewSuccess(v).WithSeq(item.Seq() + uint64(i)):
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out
}

// Name returns the stage name for error attribution and logging.
func (u *Unbatcher[T]) Name() string {
	return u.name
}
