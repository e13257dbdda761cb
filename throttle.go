package flowz

import (
	"context"
	"time"
)

// Throttle enforces a minimum inter-item emission interval derived from a
// target rate. Items are delayed, never dropped: when the upstream produces
// faster than the configured rate, channel backpressure holds items upstream
// until the next interval elapses.
type Throttle[T any] struct {
	name  string
	clock Clock
	rate  float64
}

// NewThrottle creates a stage that paces items at the given rate.
// The itemsPerSecond parameter specifies the maximum sustained emission rate.
//
// Example:
//
//	// Emit at most 10 items per second
//	throttle := flowz.NewThrottle[APIRequest](10.0, flowz.RealClock)
//	paced := throttle.Process(ctx, requests)
func NewThrottle[T any](itemsPerSecond float64, clock Clock) *Throttle[T] {
	return &Throttle[T]{
		rate:  itemsPerSecond,
		name:  "throttle",
		clock: clock,
	}
}

// WithName sets a custom name for this stage.
// If not set, defaults to "throttle".
func (t *Throttle[T]) WithName(name string) *Throttle[T] {
	t.name = name
	return t
}

// Process delays each successful item until the next rate interval.
// Errors bypass the pacing and pass through immediately.
func (t *Throttle[T]) Process(ctx context.Context, in <-chan Result[T]) <-chan Result[T] {
	out := make(chan Result[T])

	go func() {
		defer close(out)

		interval := time.Duration(float64(time.Second) / t.rate)
		ticker := t.clock.NewTicker(interval)
		defer ticker.Stop()

		for item := range in {
			if item.IsError() {
				select {
				case out <- item:
				case <-ctx.Done():
					return
				}
				continue
			}

			select {
			case <-ticker.C():
				select {
				case out <- item:
				case <-ctx.Done():
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	return out
}

// Name returns the stage name for error attribution and logging.
func (t *Throttle[T]) Name() string {
	return t.name
}
