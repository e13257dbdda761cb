package flowz

import (
	"context"
	"errors"
)

// Join merges a primary stream against a fully materialized secondary
// sequence by key, with inner-join semantics: a primary item whose key is
// absent from the secondary index produces no output.
//
// On Process the stage starts loading the secondary Source into its index
// and holds primary items until loading completes; the index is never
// mutated afterwards. Duplicate secondary keys are resolved last-wins.
// Output order equals primary input order.
type Join[P, S, Out any, K comparable] struct {
	name         string
	secondary    Source[S]
	primaryKey   func(P) K
	secondaryKey func(S) K
	merge        func(P, S) Out
}

// NewJoin creates a stage that inner-joins primary items against the
// secondary sequence. The merge function builds the combined output from a
// primary item and its matching secondary record.
//
// Example:
//
//	// Enrich orders with customer names
//	join := flowz.NewJoin(customers,
//		func(o Order) string { return o.CustomerID },
//		func(c Customer) string { return c.ID },
//		func(o Order, c Customer) EnrichedOrder {
//			return EnrichedOrder{Order: o, CustomerName: c.Name}
//		},
//	)
func NewJoin[P, S, Out any, K comparable](
	secondary Source[S],
	primaryKey func(P) K,
	secondaryKey func(S) K,
	merge func(P, S) Out,
) *Join[P, S, Out, K] {
	return &Join[P, S, Out, K]{
		name:         "join",
		secondary:    secondary,
		primaryKey:   primaryKey,
		secondaryKey: secondaryKey,
		merge:        merge,
	}
}

// WithName sets a custom name for this stage.
// If not set, defaults to "join".
func (j *Join[P, S, Out, K]) WithName(name string) *Join[P, S, Out, K] {
	j.name = name
	return j
}

// Process loads the secondary sequence into the join index, then streams
// primary items against it. Primary items are not consumed while the index
// is loading; channel backpressure holds them upstream.
//
// A secondary load failure aborts the stream before any primary item is
// consumed, so the resulting error carries no primary sequence position:
// its Seq is zero regardless of where the primary stream stood.
func (j *Join[P, S, Out, K]) Process(ctx context.Context, in <-chan Result[P]) <-chan Result[Out] {
	out := make(chan Result[Out])

	index := make(map[K]S)
	ready := make(chan struct{})
	var loadErr error

	go func() {
		defer close(ready)
		for {
			item, err := j.secondary.Next(ctx)
			if errors.Is(err, ErrEndOfSequence) {
				return
			}
			if err != nil {
				loadErr = err
				return
			}
			index[j.secondaryKey(item)] = item
		}
	}()

	go func() {
		defer close(out)

		select {
		case <-ready:
		case <-ctx.Done():
			return
		}

		if loadErr != nil {
			res := Result[Out]{err: NewStreamError(*new(Out), &SourceError{Err: loadErr}, j.name)}
			select {
			case out <- res:
			case <-ctx.Done():
			}
			return
		}

		for item := range in {
			if item.IsError() {
				select {
				case out <- forwardError[P, Out](item, j.name):
				case <-ctx.Done():
					return
				}
				continue
			}

			match, ok := index[j.primaryKey(item.Value())]
			if !ok {
				continue
			}

			select {
			case out <- NewSuccess(j.merge(item.Value(), match)).WithSeq(item.Seq()):
			case <-ctx.Done():
				return
			}
		}
	}()

	return out
}

// Name returns the stage name for error attribution and logging.
func (j *Join[P, S, Out, K]) Name() string {
	return j.name
}

// NewRecordJoin creates an object-mode Join that matches primary and
// secondary records on the named field and emits the merged record, with the
// secondary record's fields winning on collision.
func NewRecordJoin(secondary Source[Record], key string) *Join[Record, Record, Record, any] {
	return NewJoin(secondary,
		func(r Record) any { return r[key] },
		func(r Record) any { return r[key] },
		func(p, s Record) Record { return p.Merge(s) },
	)
}
