package flowz

import (
	"context"
	"errors"
)

// ErrEndOfSequence is returned by a Source when the sequence is exhausted.
var ErrEndOfSequence = errors.New("flowz: end of sequence")

// Source produces the items a pipeline consumes. Next returns the next item,
// ErrEndOfSequence when the sequence is exhausted, or any other error to
// abort the run. Next must honor context cancellation.
type Source[T any] interface {
	Next(ctx context.Context) (T, error)
}

// SliceSource produces items from a slice, in order.
// It is not safe for concurrent use; each run takes its own instance.
type SliceSource[T any] struct {
	items []T
	pos   int
}

// NewSliceSource creates a Source over the given items.
func NewSliceSource[T any](items ...T) *SliceSource[T] {
	return &SliceSource[T]{items: items}
}

func (s *SliceSource[T]) Next(ctx context.Context) (T, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, err
	}
	if s.pos >= len(s.items) {
		return zero, ErrEndOfSequence
	}
	item := s.items[s.pos]
	s.pos++
	return item, nil
}

// ChannelSource produces items from a channel. The sequence ends when the
// channel is closed, which makes it the natural adapter for unbounded or
// externally-driven producers.
type ChannelSource[T any] struct {
	ch <-chan T
}

// NewChannelSource creates a Source that reads from the given channel.
func NewChannelSource[T any](ch <-chan T) *ChannelSource[T] {
	return &ChannelSource[T]{ch: ch}
}

func (s *ChannelSource[T]) Next(ctx context.Context) (T, error) {
	var zero T
	select {
	case item, ok := <-s.ch:
		if !ok {
			return zero, ErrEndOfSequence
		}
		return item, nil
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

// FuncSource adapts a function to the Source interface.
type FuncSource[T any] struct {
	fn func(ctx context.Context) (T, error)
}

// NewFuncSource creates a Source from a function. The function should return
// ErrEndOfSequence when exhausted.
func NewFuncSource[T any](fn func(ctx context.Context) (T, error)) *FuncSource[T] {
	return &FuncSource[T]{fn: fn}
}

func (s *FuncSource[T]) Next(ctx context.Context) (T, error) {
	return s.fn(ctx)
}
