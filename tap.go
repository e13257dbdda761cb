package flowz

import (
	"context"
)

// Tap observes items passing through a stream without modifying them.
// The observer is called for each successful value; errors pass through
// unobserved. Useful for logging, counting, and debugging mid-pipeline.
type Tap[T any] struct {
	name string
	fn   func(T)
}

// NewTap creates a pass-through stage that invokes fn for every successful
// item. The observer must not mutate the item.
func NewTap[T any](fn func(T)) *Tap[T] {
	return &Tap[T]{
		name: "tap",
		fn:   fn,
	}
}

// WithName sets a custom name for this stage.
// If not set, defaults to "tap".
func (t *Tap[T]) WithName(name string) *Tap[T] {
	t.name = name
	return t
}

func (t *Tap[T]) Process(ctx context.Context, in <-chan Result[T]) <-chan Result[T] {
	out := make(chan Result[T])

	go func() {
		defer close(out)

		for item := range in {
			if item.IsSuccess() {
				t.fn(item.Value())
			}
			select {
			case out <- item:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out
}

// Name returns the stage name for error attribution and logging.
func (t *Tap[T]) Name() string {
	return t.name
}
