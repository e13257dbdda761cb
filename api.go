// Package flowz provides type-safe, composable stream processing primitives
// built on Go channels: a small set of generic stages (filter, map, batch,
// throttle, bounded-concurrency map, aggregate, join) and a pipeline runner
// that wires an abstract item source through an ordered stage chain into an
// abstract sink with end-to-end backpressure and fail-fast error propagation.
//
// The core abstraction is the Stage interface, which transforms a channel of
// Result[In] into a channel of Result[Out]. Stages carry both successful
// values and errors in-band, so a single channel read yields either; the
// Pipeline runner aborts the whole run on the first error it observes.
//
// Basic usage:
//
//	source := flowz.NewSliceSource(1, -2, 3, -4, 5)
//	sink := flowz.NewSliceSink[[]int]()
//
//	positive := flowz.NewFilter(func(n int) bool { return n > 0 })
//	batches := flowz.NewBatcher[int](flowz.BatchConfig{MaxSize: 2}, flowz.RealClock)
//
//	pipeline := flowz.NewPipeline(source, flowz.Chain[int, int, []int](positive, batches), sink)
//	stats, err := pipeline.Run(context.Background())
//
// End-of-input is signalled by channel close: when a stage's input channel
// closes, the stage flushes any trailing state (a partial batch, pending
// aggregation groups) and closes its own output. Every stage instance belongs
// to exactly one run; none share state across runs.
package flowz

import (
	"context"
	"time"
)

// Stage is the core interface for stream processing components.
// It transforms an input channel of Result[In] to an output channel of
// Result[Out]. Stages should:
//   - Close the output channel when the input channel is closed
//   - Respect context cancellation
//   - Pass error Results through without transformation
//   - Preserve input order unless documented otherwise
type Stage[In, Out any] interface {
	// Process transforms the input channel to an output channel.
	// It must close the output channel when processing is complete.
	Process(ctx context.Context, in <-chan Result[In]) <-chan Result[Out]

	// Name returns a descriptive name for the stage, used in error
	// attribution and logging.
	Name() string
}

// BatchConfig configures batching behavior for the Batcher stage.
type BatchConfig struct {
	// MaxLatency is the maximum time to wait before emitting a partial batch.
	// If zero, batches are emitted on size alone.
	MaxLatency time.Duration

	// MaxSize is the maximum number of items in a batch.
	// A batch is emitted immediately when it reaches this size.
	MaxSize int
}
