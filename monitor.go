package flowz

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// StreamStats contains statistics about items flowing through a monitored
// stream since the previous report.
type StreamStats struct {
	// LastUpdate is the timestamp of this statistics snapshot.
	LastUpdate time.Time
	// Count is the number of successful items since the last report.
	Count int64
	// Errors is the number of error Results since the last report.
	Errors int64
	// Rate is the average items per second since the last report.
	Rate float64
}

// Monitor observes items passing through a stream and periodically reports
// statistics. It is a pass-through stage that does not modify the stream.
// Each Monitor owns a single ticker for its reporting interval, created from
// the injected Clock and stopped deterministically when the stage ends.
type Monitor[T any] struct {
	name     string
	interval time.Duration
	clock    Clock
	onStats  func(StreamStats)
	logger   zerolog.Logger
}

// NewMonitor creates a pass-through stage that reports throughput at the
// given interval. Reports go to the callback configured with WithOnStats
// and, if a logger is configured, to a structured debug event. A final
// report is emitted when the stream ends.
//
// Example:
//
//	monitor := flowz.NewMonitor[Event](time.Second, flowz.RealClock).
//		WithOnStats(func(stats flowz.StreamStats) {
//			if stats.Rate < 100 {
//				alertLowThroughput(stats)
//			}
//		})
func NewMonitor[T any](interval time.Duration, clock Clock) *Monitor[T] {
	return &Monitor[T]{
		name:     "monitor",
		interval: interval,
		clock:    clock,
		logger:   zerolog.Nop(),
	}
}

// WithOnStats sets the callback invoked with each statistics snapshot.
func (m *Monitor[T]) WithOnStats(fn func(StreamStats)) *Monitor[T] {
	m.onStats = fn
	return m
}

// WithLogger directs statistics snapshots to a structured logger.
func (m *Monitor[T]) WithLogger(logger zerolog.Logger) *Monitor[T] {
	m.logger = logger
	return m
}

// WithName sets a custom name for this stage.
// If not set, defaults to "monitor".
func (m *Monitor[T]) WithName(name string) *Monitor[T] {
	m.name = name
	return m
}

func (m *Monitor[T]) Process(ctx context.Context, in <-chan Result[T]) <-chan Result[T] {
	out := make(chan Result[T])

	go func() {
		defer close(out)

		ticker := m.clock.NewTicker(m.interval)
		defer ticker.Stop()

		var count, errs int64
		last := m.clock.Now()

		report := func() {
			now := m.clock.Now()
			elapsed := now.Sub(last).Seconds()
			rate := 0.0
			if elapsed > 0 {
				rate = float64(count) / elapsed
			}
			stats := StreamStats{
				Count:      count,
				Errors:     errs,
				Rate:       rate,
				LastUpdate: now,
			}
			if m.onStats != nil {
				m.onStats(stats)
			}
			m.logger.Debug().
				Str("stage", m.name).
				Int64("count", count).
				Int64("errors", errs).
				Float64("rate", rate).
				Msg("stream stats")
			count, errs = 0, 0
			last = now
		}

		for {
			select {
			case <-ctx.Done():
				report()
				return

			case item, ok := <-in:
				if !ok {
					report()
					return
				}

				if item.IsError() {
					errs++
				} else {
					count++
				}

				select {
				case out <- item:
				case <-ctx.Done():
					report()
					return
				}

			case <-ticker.C():
				report()
			}
		}
	}()

	return out
}

// Name returns the stage name for error attribution and logging.
func (m *Monitor[T]) Name() string {
	return m.name
}
