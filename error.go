package flowz

import (
	"fmt"
	"time"
)

// StreamError represents an error that occurred during stream processing.
// It captures the item that caused the error, its sequence position, and the
// stage that produced it, enabling precise failure attribution.
type StreamError[T any] struct {
	// Item is the original item that caused the processing error.
	Item T

	// Err is the underlying error that occurred during processing.
	Err error

	// StageName identifies which stage generated the error.
	StageName string

	// Seq is the sequence position of the offending item within its run.
	Seq uint64

	// Timestamp records when the error occurred.
	Timestamp time.Time
}

// NewStreamError creates a new StreamError with the current timestamp.
func NewStreamError[T any](item T, err error, stageName string) *StreamError[T] {
	return &StreamError[T]{
		Item:      item,
		Err:       err,
		StageName: stageName,
		Timestamp: time.Now(),
	}
}

// Error implements the error interface.
func (se *StreamError[T]) Error() string {
	return fmt.Sprintf("stage %q failed at item %d: %v (item: %v)",
		se.StageName, se.Seq, se.Err, se.Item)
}

// Unwrap returns the underlying error, enabling error wrapping chains.
func (se *StreamError[T]) Unwrap() error {
	return se.Err
}

// SourceError wraps a failure reported by the pipeline's Source collaborator.
type SourceError struct {
	Seq uint64
	Err error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("source failed at item %d: %v", e.Seq, e.Err)
}

func (e *SourceError) Unwrap() error { return e.Err }

// SinkError wraps a failure reported by the pipeline's Sink collaborator.
type SinkError struct {
	Seq uint64
	Err error
}

func (e *SinkError) Error() string {
	return fmt.Sprintf("sink failed at item %d: %v", e.Seq, e.Err)
}

func (e *SinkError) Unwrap() error { return e.Err }

// PipelineError is the terminal error returned by Pipeline.Run. It wraps
// whichever failure aborted the run and identifies the stage and the item
// sequence position that triggered it where known.
//
// Use errors.As to recover the underlying *SourceError, *SinkError, or
// stage-level cause.
type PipelineError struct {
	// Stage names the stage (or collaborator: "source", "sink") where the
	// failure originated.
	Stage string

	// Seq is the sequence position of the item being processed when the
	// failure occurred.
	Seq uint64

	// Err is the cause.
	Err error
}

func (e *PipelineError) Error() string {
	if e.Stage == "" {
		return fmt.Sprintf("pipeline aborted: %v", e.Err)
	}
	return fmt.Sprintf("pipeline aborted at stage %q (item %d): %v", e.Stage, e.Seq, e.Err)
}

func (e *PipelineError) Unwrap() error { return e.Err }
