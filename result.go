package flowz

// Result represents either a successful value or an error in stream
// processing, eliminating dual-channel patterns: every stage consumes and
// produces a single channel of Results.
//
// Each Result carries the sequence position assigned to the item when it
// entered the pipeline, so a failure can be attributed to a specific item
// even after several transformations.
type Result[T any] struct {
	value T
	err   *StreamError[T]
	seq   uint64
}

// NewSuccess creates a Result containing a successful value.
func NewSuccess[T any](value T) Result[T] {
	return Result[T]{value: value}
}

// NewError creates a Result containing an error.
func NewError[T any](item T, err error, stageName string) Result[T] {
	return Result[T]{err: NewStreamError(item, err, stageName)}
}

// IsError returns true if this Result contains an error.
func (r Result[T]) IsError() bool {
	return r.err != nil
}

// IsSuccess returns true if this Result contains a successful value.
func (r Result[T]) IsSuccess() bool {
	return r.err == nil
}

// Value returns the successful value.
// Panics if called on a Result containing an error - always check IsSuccess() first.
func (r Result[T]) Value() T {
	if r.err != nil {
		panic("called Value() on Result containing an error")
	}
	return r.value
}

// Error returns the StreamError.
// Returns nil if this Result contains a successful value.
func (r Result[T]) Error() *StreamError[T] {
	return r.err
}

// ValueOr returns the successful value if present, otherwise returns the fallback.
func (r Result[T]) ValueOr(fallback T) T {
	if r.err != nil {
		return fallback
	}
	return r.value
}

// Seq returns the item's sequence position within its pipeline run.
func (r Result[T]) Seq() uint64 {
	return r.seq
}

// WithSeq returns a copy of this Result stamped with a sequence position.
// For error Results the position is propagated onto the StreamError as well.
func (r Result[T]) WithSeq(seq uint64) Result[T] {
	r.seq = seq
	if r.err != nil {
		se := *r.err
		se.Seq = seq
		r.err = &se
	}
	return r
}

// Map applies a function to the value if this Result is successful.
// If this Result contains an error, it is returned unchanged.
func (r Result[T]) Map(fn func(T) T) Result[T] {
	if r.err != nil {
		return r
	}
	return Result[T]{value: fn(r.value), seq: r.seq}
}

// forwardError rewraps an error Result for a stage whose output type differs
// from its input type. The original StreamError becomes the cause, and the
// originating stage name and sequence position survive the type change: a
// failure stays attributed to the stage that produced it no matter how many
// stages it passes through afterwards.
func forwardError[In, Out any](r Result[In], stageName string) Result[Out] {
	se := r.Error()
	origin := se.StageName
	if origin == "" {
		origin = stageName
	}
	return Result[Out]{
		err: &StreamError[Out]{
			Err:       se,
			StageName: origin,
			Seq:       se.Seq,
			Timestamp: se.Timestamp,
		},
		seq: r.seq,
	}
}
