package flowz

import (
	"context"
	"time"
)

// Batcher collects items from a stream and groups them into batches based on
// size or time constraints. A batch is emitted when it reaches MaxSize or,
// if MaxLatency is configured, when the oldest buffered item has waited that
// long. When the input ends, any non-empty remainder is flushed so no item is
// ever lost to a partial batch.
//
// Flattening the emitted batches reproduces the input sequence exactly.
type Batcher[T any] struct {
	config BatchConfig
	name   string
	clock  Clock
}

// NewBatcher creates a stage that groups items into batches.
// Batches are emitted when either the size limit is reached OR the time limit
// expires, whichever comes first. This dual-trigger approach balances
// throughput with latency.
//
// Example:
//
//	// Batch up to 100 items or 50ms, whichever comes first
//	batcher := flowz.NewBatcher[Event](flowz.BatchConfig{
//		MaxSize:    100,
//		MaxLatency: 50 * time.Millisecond,
//	}, flowz.RealClock)
func NewBatcher[T any](config BatchConfig, clock Clock) *Batcher[T] {
	return &Batcher[T]{
		config: config,
		name:   "batcher",
		clock:  clock,
	}
}

// WithName sets a custom name for this stage.
// If not set, defaults to "batcher".
func (b *Batcher[T]) WithName(name string) *Batcher[T] {
	b.name = name
	return b
}

// Process groups successful items into batches. An error Result flushes the
// pending batch first and then passes through, so relative order between
// data and errors is preserved.
func (b *Batcher[T]) Process(ctx context.Context, in <-chan Result[T]) <-chan Result[[]T] {
	out := make(chan Result[[]T])

	go func() {
		defer close(out)

		batch := make([]T, 0, b.config.MaxSize)
		var batchSeq uint64

		// An armed-on-demand timer; the hour placeholder never fires.
		timer := b.clock.NewTimer(time.Hour)
		timer.Stop()
		defer timer.Stop()

		emit := func() bool {
			timer.Stop()
			if len(batch) == 0 {
				return true
			}
			select {
			case out <- NewSuccess(batch).WithSeq(batchSeq):
				batch = make([]T, 0, b.config.MaxSize)
				return true
			case <-ctx.Done():
				return false
			}
		}

		for {
			select {
			case <-ctx.Done():
				return

			case item, ok := <-in:
				if !ok {
					emit()
					return
				}

				if item.IsError() {
					if !emit() {
						return
					}
					select {
					case out <- forwardError[T, []T](item, b.name):
					case <-ctx.Done():
						return
					}
					continue
				}

				if len(batch) == 0 {
					batchSeq = item.Seq()
					if b.config.MaxLatency > 0 {
						timer.Reset(b.config.MaxLatency)
					}
				}
				batch = append(batch, item.Value())

				if len(batch) >= b.config.MaxSize {
					if !emit() {
						return
					}
				}

			case <-timer.C():
				if !emit() {
					return
				}
			}
		}
	}()

	return out
}

// Name returns the stage name for error attribution and logging.
func (b *Batcher[T]) Name() string {
	return b.name
}
