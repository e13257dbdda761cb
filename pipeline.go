package flowz

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Stats summarizes a successful pipeline run.
type Stats struct {
	// RunID uniquely identifies the run in logs and reports.
	RunID string

	// Items is the number of items delivered to the sink.
	Items int64

	// Errors is the number of error Results observed. Always zero on
	// success; on an aborted run it counts the error that triggered the
	// abort.
	Errors int64

	// StartedAt is when the run began.
	StartedAt time.Time

	// Duration is the elapsed wall time of the run.
	Duration time.Duration
}

// Pipeline wires a Source through a stage chain into a Sink and drives the
// whole run: it pumps items from the source, stamps each with its sequence
// position, delivers stage output to the sink honoring the sink's
// backpressure contract, and aborts fail-fast on the first error from any
// stage or collaborator.
//
// Items already delivered to the sink before an abort are not rolled back;
// the sink is opaque and may be partially written.
//
// A Pipeline instance is built for a single run; stages hold run-scoped
// state and must not be reused.
type Pipeline[In, Out any] struct {
	source Source[In]
	stage  Stage[In, Out]
	sink   Sink[Out]
	logger zerolog.Logger
	clock  Clock
	buffer int
}

// NewPipeline creates a runner over the given source, stage chain, and sink.
// Compose multiple stages into one with Chain or Stages.
//
// Example:
//
//	pipeline := flowz.NewPipeline(source, flowz.Stages(filter, throttle), sink).
//		WithLogger(logger).
//		WithBuffer(64)
//	stats, err := pipeline.Run(ctx)
func NewPipeline[In, Out any](source Source[In], stage Stage[In, Out], sink Sink[Out]) *Pipeline[In, Out] {
	return &Pipeline[In, Out]{
		source: source,
		stage:  stage,
		sink:   sink,
		logger: zerolog.Nop(),
		clock:  RealClock,
	}
}

// WithLogger sets the structured logger for run lifecycle events.
// If not set, logging is disabled.
func (p *Pipeline[In, Out]) WithLogger(logger zerolog.Logger) *Pipeline[In, Out] {
	p.logger = logger
	return p
}

// WithClock sets the clock used for run timing.
// If not set, defaults to RealClock.
func (p *Pipeline[In, Out]) WithClock(clock Clock) *Pipeline[In, Out] {
	p.clock = clock
	return p
}

// WithBuffer sets the capacity of the channel between the source pump and
// the first stage, bounding how many items the pump can run ahead.
// If not set, the handoff is unbuffered.
func (p *Pipeline[In, Out]) WithBuffer(size int) *Pipeline[In, Out] {
	if size > 0 {
		p.buffer = size
	}
	return p
}

// Run executes the pipeline until the source is exhausted, an error occurs,
// or the context is canceled. On success it returns run statistics and a nil
// error; on failure the returned *PipelineError identifies the stage and
// item sequence position that triggered the abort.
//
// Cancellation propagates to the source, every stage goroutine, and the
// sink. The sink's Close is invoked on every path.
func (p *Pipeline[In, Out]) Run(ctx context.Context) (Stats, error) {
	runID := uuid.NewString()
	start := p.clock.Now()
	stats := Stats{RunID: runID, StartedAt: start}

	logger := p.logger.With().Str("run_id", runID).Str("stage", p.stage.Name()).Logger()
	logger.Debug().Msg("pipeline started")

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	in := make(chan Result[In], p.buffer)
	go p.pump(runCtx, in)

	out := p.stage.Process(runCtx, in)

	var runErr *PipelineError

deliver:
	for res := range out {
		if res.IsError() {
			se := res.Error()
			runErr = &PipelineError{Stage: se.StageName, Seq: se.Seq, Err: se.Err}
			stats.Errors++
			cancel()
			break
		}

		ok, err := p.sink.Push(runCtx, res.Value())
		if err != nil {
			runErr = &PipelineError{Stage: "sink", Seq: res.Seq(), Err: &SinkError{Seq: res.Seq(), Err: err}}
			stats.Errors++
			cancel()
			break
		}
		stats.Items++

		if !ok {
			select {
			case <-p.sink.Drained():
			case <-runCtx.Done():
				runErr = &PipelineError{Stage: "sink", Seq: res.Seq(), Err: runCtx.Err()}
				break deliver
			}
		}
	}

	cancel()

	if err := p.sink.Close(context.WithoutCancel(ctx)); err != nil && runErr == nil {
		closeSeq := uint64(stats.Items)
		runErr = &PipelineError{Stage: "sink", Seq: closeSeq, Err: &SinkError{Seq: closeSeq, Err: err}}
		stats.Errors++
	}

	// External cancellation surfaces even when every stage wound down cleanly.
	if runErr == nil && ctx.Err() != nil {
		runErr = &PipelineError{Err: ctx.Err()}
	}

	stats.Duration = p.clock.Now().Sub(start)

	if runErr != nil {
		logger.Error().
			Err(runErr).
			Str("failed_stage", runErr.Stage).
			Uint64("seq", runErr.Seq).
			Int64("items", stats.Items).
			Dur("duration", stats.Duration).
			Msg("pipeline aborted")
		return stats, runErr
	}

	logger.Info().
		Int64("items", stats.Items).
		Dur("duration", stats.Duration).
		Msg("pipeline complete")
	return stats, nil
}

// pump drives the source into the stage chain, assigning each item its
// sequence position. A source failure is emitted in-band as an error Result
// so it aborts the run through the same path as a stage failure.
func (p *Pipeline[In, Out]) pump(ctx context.Context, in chan<- Result[In]) {
	defer close(in)

	var seq uint64
	for {
		item, err := p.source.Next(ctx)
		if err != nil {
			if errors.Is(err, ErrEndOfSequence) || errors.Is(err, context.Canceled) {
				return
			}
			res := Result[In]{
				err: &StreamError[In]{
					Item:      item,
					Err:       &SourceError{Seq: seq, Err: err},
					StageName: "source",
					Seq:       seq,
					Timestamp: time.Now(),
				},
				seq: seq,
			}
			select {
			case in <- res:
			case <-ctx.Done():
			}
			return
		}

		select {
		case in <- NewSuccess(item).WithSeq(seq):
			seq++
		case <-ctx.Done():
			return
		}
	}
}
