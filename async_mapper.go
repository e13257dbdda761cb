package flowz

import (
	"context"
	"sync"
)

// AsyncMapper runs a fallible transformation across a bounded pool of worker
// goroutines while preserving input order on the output. At most
// maxConcurrent transformations are in flight at once; when every worker is
// busy, the stage stops accepting input, which is the backpressure mechanism
// rather than a separate queue.
//
// Results are reordered to match input order using a sequence-keyed reorder
// buffer, so output order is identical to input order regardless of how
// individual transformations interleave.
type AsyncMapper[In, Out any] struct {
	name          string
	fn            func(context.Context, In) (Out, error)
	maxConcurrent int
}

// NewAsyncMapper creates a stage that executes transformations concurrently
// with ordered output. By default a single worker is used; raise the bound
// with WithMaxConcurrent.
//
// Example:
//
//	// Parallel enrichment with preserved order, at most 8 in flight
//	enrich := flowz.NewAsyncMapper(func(ctx context.Context, id string) (User, error) {
//		return fetchUser(ctx, id)
//	}).WithMaxConcurrent(8)
//
// The transformation function must be safe for concurrent use.
func NewAsyncMapper[In, Out any](fn func(context.Context, In) (Out, error)) *AsyncMapper[In, Out] {
	return &AsyncMapper[In, Out]{
		name:          "async-mapper",
		fn:            fn,
		maxConcurrent: 1,
	}
}

// WithMaxConcurrent sets the maximum number of in-flight transformations.
// Values below 1 are ignored.
func (a *AsyncMapper[In, Out]) WithMaxConcurrent(n int) *AsyncMapper[In, Out] {
	if n > 0 {
		a.maxConcurrent = n
	}
	return a
}

// WithName sets a custom name for this stage.
// If not set, defaults to "async-mapper".
func (a *AsyncMapper[In, Out]) WithName(name string) *AsyncMapper[In, Out] {
	a.name = name
	return a
}

// sequencedItem tracks an item with its position for reordering.
type sequencedItem[T any] struct {
	item T
	pos  uint64
}

// Process transforms input items across the worker pool and emits results in
// input order. Errors in the stream travel through the same sequencing path
// as data, so their relative position is preserved too.
func (a *AsyncMapper[In, Out]) Process(ctx context.Context, in <-chan Result[In]) <-chan Result[Out] {
	sequenced := make(chan sequencedItem[Result[In]])
	results := make(chan sequencedItem[Result[Out]], a.maxConcurrent)
	out := make(chan Result[Out])

	// Assign positions to incoming items. The unbuffered handoff plus the
	// worker count bounds how many items are in flight.
	go func() {
		defer close(sequenced)
		var pos uint64
		for item := range in {
			select {
			case sequenced <- sequencedItem[Result[In]]{item: item, pos: pos}:
				pos++
			case <-ctx.Done():
				return
			}
		}
	}()

	var wg sync.WaitGroup
	for i := 0; i < a.maxConcurrent; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for seqItem := range sequenced {
				var result Result[Out]

				if seqItem.item.IsError() {
					result = forwardError[In, Out](seqItem.item, a.name)
				} else if v, err := a.fn(ctx, seqItem.item.Value()); err != nil {
					result = NewError(v, err, a.name).WithSeq(seqItem.item.Seq())
				} else {
					result = NewSuccess(v).WithSeq(seqItem.item.Seq())
				}

				select {
				case results <- sequencedItem[Result[Out]]{item: result, pos: seqItem.pos}:
				case <-ctx.Done():
					return
				}
			}
		}()
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	// Reorder completed results back into input order.
	go func() {
		defer close(out)

		pending := make(map[uint64]Result[Out])
		var next uint64

		for result := range results {
			pending[result.pos] = result.item

			for {
				item, ok := pending[next]
				if !ok {
					break
				}
				delete(pending, next)
				next++

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
func (a *AsyncMapper[In, Out]) Name() string {
	return a.name
}
