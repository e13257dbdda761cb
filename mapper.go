package flowz

import (
	"context"
)

// Mapper transforms each item in a stream from one type to another using a
// fallible mapping function, preserving order. A transformation error
// produces an error Result carrying the offending item and its sequence
// position; under the pipeline runner this aborts the run.
type Mapper[In, Out any] struct {
	fn   func(In) (Out, error)
	name string
}

// NewMapper creates a stage that transforms items from one type to another.
// This is the fundamental per-item transformation, used for type conversion,
// field extraction, parsing, and enrichment.
//
// Example:
//
//	// Parse raw lines into records
//	parse := flowz.NewMapper(func(line string) (flowz.Record, error) {
//		var r flowz.Record
//		if err := json.Unmarshal([]byte(line), &r); err != nil {
//			return nil, fmt.Errorf("malformed line: %w", err)
//		}
//		return r, nil
//	}).WithName("parse-json")
func NewMapper[In, Out any](fn func(In) (Out, error)) *Mapper[In, Out] {
	return &Mapper[In, Out]{
		fn:   fn,
		name: "mapper",
	}
}

// WithName sets a custom name for this stage.
// If not set, defaults to "mapper".
func (m *Mapper[In, Out]) WithName(name string) *Mapper[In, Out] {
	m.name = name
	return m
}

// Process transforms input items one at a time, preserving order.
// Errors already in the stream pass through; transformation failures become
// error Results attributed to this stage.
func (m *Mapper[In, Out]) Process(ctx context.Context, in <-chan Result[In]) <-chan Result[Out] {
	out := make(chan Result[Out])

	go func() {
		defer close(out)

		for item := range in {
			var res Result[Out]
			if item.IsError() {
				res = forwardError[In, Out](item, m.name)
			} else if v, err := m.fn(item.Value()); err != nil {
				res = NewError(v, err, m.name).WithSeq(item.Seq())
			} else {
				res = NewSuccess(v).WithSeq(item.Seq())
			}

			select {
			case out <- res:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out
}

// Name returns the stage name for error attribution and logging.
func (m *Mapper[In, Out]) Name() string {
	return m.name
}
