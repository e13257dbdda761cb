package flowz

import (
	"context"
	"sync"
)

// Sink consumes the items a pipeline produces.
//
// Push accepts one item and reports whether the caller may continue
// submitting without waiting. A false return is the sink's backpressure
// signal: the item has been accepted, but the caller must not push again
// until Drained signals. Push never discards the item it was given.
//
// Close finalizes the sink. It is called exactly once, on both the success
// and the failure path, so collaborators can release resources
// unconditionally.
type Sink[T any] interface {
	Push(ctx context.Context, item T) (bool, error)
	Drained() <-chan struct{}
	Close(ctx context.Context) error
}

// SliceSink collects items into a slice. It never exerts backpressure.
type SliceSink[T any] struct {
	mu    sync.Mutex
	items []T
}

// NewSliceSink creates a Sink that appends every item to an in-memory slice.
func NewSliceSink[T any]() *SliceSink[T] {
	return &SliceSink[T]{}
}

func (s *SliceSink[T]) Push(_ context.Context, item T) (bool, error) {
	s.mu.Lock()
	s.items = append(s.items, item)
	s.mu.Unlock()
	return true, nil
}

func (s *SliceSink[T]) Drained() <-chan struct{} {
	// Never signals; Push always reports ready.
	return nil
}

func (s *SliceSink[T]) Close(context.Context) error { return nil }

// Items returns the collected items.
func (s *SliceSink[T]) Items() []T {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]T, len(s.items))
	copy(out, s.items)
	return out
}

// ChannelSink delivers items to a channel. When the channel cannot accept an
// item immediately, Push holds it in a single pending slot, returns false,
// and signals Drained once the slot has been flushed. The pipeline runner's
// contract (no Push between a false return and a drain notification)
// guarantees the slot never holds more than one item.
type ChannelSink[T any] struct {
	ch      chan T
	drained chan struct{}
	pending sync.WaitGroup
}

// NewChannelSink creates a Sink that writes to the given channel.
// Close closes the channel after any pending item has been delivered.
func NewChannelSink[T any](ch chan T) *ChannelSink[T] {
	return &ChannelSink[T]{
		ch:      ch,
		drained: make(chan struct{}, 1),
	}
}

func (s *ChannelSink[T]) Push(ctx context.Context, item T) (bool, error) {
	select {
	case s.ch <- item:
		return true, nil
	default:
	}

	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		select {
		case s.ch <- item:
			select {
			case s.drained <- struct{}{}:
			default:
			}
		case <-ctx.Done():
		}
	}()
	return false, nil
}

func (s *ChannelSink[T]) Drained() <-chan struct{} {
	return s.drained
}

func (s *ChannelSink[T]) Close(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.pending.Wait()
		close(done)
	}()
	select {
	case <-done:
		close(s.ch)
		return nil
	case <-ctx.Done():
		// The pending delivery observes the same cancellation and exits.
		<-done
		close(s.ch)
		return ctx.Err()
	}
}

// DiscardSink drops every item. Useful for draining a pipeline whose effects
// happen in earlier stages.
type DiscardSink[T any] struct{}

// NewDiscardSink creates a Sink that accepts and discards all items.
func NewDiscardSink[T any]() *DiscardSink[T] {
	return &DiscardSink[T]{}
}

func (*DiscardSink[T]) Push(context.Context, T) (bool, error) { return true, nil }

func (*DiscardSink[T]) Drained() <-chan struct{} { return nil }

func (*DiscardSink[T]) Close(context.Context) error { return nil }
