package flowz

import (
	"context"
)

// Filter selectively passes items through a stream based on a predicate
// function. Only items for which the predicate returns true are emitted to
// the output channel; the rest are discarded. Output order is a subsequence
// of input order.
//
// Filter is one of the most fundamental stream processing operations,
// commonly used for:
//   - Data validation and quality control
//   - Business rule application
//   - Reducing downstream load by dropping irrelevant items
type Filter[T any] struct {
	name      string
	predicate func(T) bool
}

// NewFilter creates a stage that selectively passes items based on a predicate.
// Items for which the predicate returns true are forwarded unchanged.
// Items for which the predicate returns false are discarded.
//
// The predicate function should be pure (no side effects) and deterministic
// for consistent and predictable filtering behavior.
//
// Example:
//
//	// Keep positive numbers
//	positive := flowz.NewFilter(func(n int) bool {
//		return n > 0
//	})
//
//	// Keep records with a status field
//	withStatus := flowz.NewFilter(func(r flowz.Record) bool {
//		_, ok := r["status"]
//		return ok
//	})
func NewFilter[T any](predicate func(T) bool) *Filter[T] {
	return &Filter[T]{
		name:      "filter",
		predicate: predicate,
	}
}

// WithName sets a custom name for this stage.
// If not set, defaults to "filter".
func (f *Filter[T]) WithName(name string) *Filter[T] {
	f.name = name
	return f
}

// Process filters input items based on the predicate function.
// Errors pass through unchanged without applying the predicate.
func (f *Filter[T]) Process(ctx context.Context, in <-chan Result[T]) <-chan Result[T] {
	out := make(chan Result[T])

	go func() {
		defer close(out)

		for item := range in {
			if item.IsError() || f.predicate(item.Value()) {
				select {
				case out <- item:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out
}

// Name returns the stage name for error attribution and logging.
func (f *Filter[T]) Name() string {
	return f.name
}
