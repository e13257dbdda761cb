package flowz

import (
	"context"
)

// Buffer adds a declared amount of buffering capacity to a stream. It
// decouples producer and consumer pacing without ever discarding items: once
// the buffer is full, backpressure applies upstream as usual. The capacity
// bounds how many items can be held between the adjacent stages.
type Buffer[T any] struct {
	name string
	size int
}

// NewBuffer creates a stage with a buffered output channel of the given
// capacity.
//
// Example:
//
//	// Absorb bursts of up to 1000 items
//	buffer := flowz.NewBuffer[Message](1000)
//	buffered := buffer.Process(ctx, messages)
func NewBuffer[T any](size int) *Buffer[T] {
	return &Buffer[T]{
		size: size,
		name: "buffer",
	}
}

// WithName sets a custom name for this stage.
// If not set, defaults to "buffer".
func (b *Buffer[T]) WithName(name string) *Buffer[T] {
	b.name = name
	return b
}

func (b *Buffer[T]) Process(ctx context.Context, in <-chan Result[T]) <-chan Result[T] {
	out := make(chan Result[T], b.size)

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

// Name returns the stage name for error attribution and logging.
func (b *Buffer[T]) Name() string {
	return b.name
}
