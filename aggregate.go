package flowz

import (
	"context"
	"math"
)

// GroupSummary is the record an Aggregator emits for one group at end of
// input. Sum, Min, Max, and Avg are nil when no item in the group
// contributed a numeric value.
type GroupSummary[K comparable] struct {
	// Key is the group key derived by the key function.
	Key K

	// Count is the number of items that mapped to this group.
	Count int64

	// Sum is the total of contributed values.
	Sum *float64

	// Min is the smallest contributed value.
	Min *float64

	// Max is the largest contributed value.
	Max *float64

	// Avg is Sum divided by Count.
	Avg *float64
}

// groupState holds the running tally for one group. Min and max start at the
// infinity sentinels and are normalized to absent at emission when no value
// contributed.
type groupState struct {
	count  int64
	valued int64
	sum    float64
	min    float64
	max    float64
}

// Aggregator groups items by a derived key and emits one GroupSummary per
// group when the input ends. It never emits during processing; the group
// table is internal state scoped to a single run.
//
// Emission order is the insertion order of first-seen keys, so output is
// deterministic and reproducible given identical input order.
type Aggregator[T any, K comparable] struct {
	name  string
	key   func(T) K
	value func(T) (float64, bool)
}

// NewAggregator creates a stage that groups items by key and summarizes each
// group at end of input. Without a value function only Count is populated;
// configure one with WithValue to get Sum, Min, Max, and Avg.
//
// Example:
//
//	// Count and sum order amounts per customer
//	perCustomer := flowz.NewAggregator[Order, string](func(o Order) string {
//		return o.CustomerID
//	}).WithValue(func(o Order) (float64, bool) {
//		return o.Amount, true
//	})
func NewAggregator[T any, K comparable](key func(T) K) *Aggregator[T, K] {
	return &Aggregator[T, K]{
		name: "aggregate",
		key:  key,
	}
}

// WithValue configures the numeric value extractor used for Sum, Min, Max,
// and Avg. The second return value reports whether the item contributes a
// value at all.
func (a *Aggregator[T, K]) WithValue(fn func(T) (float64, bool)) *Aggregator[T, K] {
	a.value = fn
	return a
}

// WithName sets a custom name for this stage.
// If not set, defaults to "aggregate".
func (a *Aggregator[T, K]) WithName(name string) *Aggregator[T, K] {
	a.name = name
	return a
}

// Process consumes the entire input, updating group tallies, and emits one
// summary per group once the input channel closes. Errors pass through
// immediately without touching group state.
func (a *Aggregator[T, K]) Process(ctx context.Context, in <-chan Result[T]) <-chan Result[GroupSummary[K]] {
	out := make(chan Result[GroupSummary[K]])

	go func() {
		defer close(out)

		groups := make(map[K]*groupState)
		var order []K

		for item := range in {
			if item.IsError() {
				select {
				case out <- forwardError[T, GroupSummary[K]](item, a.name):
				case <-ctx.Done():
					return
				}
				continue
			}

			key := a.key(item.Value())
			state, ok := groups[key]
			if !ok {
				state = &groupState{min: math.Inf(1), max: math.Inf(-1)}
				groups[key] = state
				order = append(order, key)
			}
			state.count++

			if a.value != nil {
				if v, ok := a.value(item.Value()); ok {
					state.valued++
					state.sum += v
					state.min = math.Min(state.min, v)
					state.max = math.Max(state.max, v)
				}
			}

			select {
			case <-ctx.Done():
				return
			default:
			}
		}

		for i, key := range order {
			state := groups[key]
			summary := GroupSummary[K]{Key: key, Count: state.count}
			if state.valued > 0 {
				sum, mn, mx := state.sum, state.min, state.max
				avg := sum / float64(state.count)
				summary.Sum, summary.Min, summary.Max, summary.Avg = &sum, &mn, &mx, &avg
			}

			select {
			case out <- NewSuccess(summary).WithSeq(uint64(i)):
			case <-ctx.Done():
				return
			}
		}
	}()

	return out
}

// Name returns the stage name for error attribution and logging.
func (a *Aggregator[T, K]) Name() string {
	return a.name
}

// NewRecordAggregator creates an object-mode Aggregator that groups records
// by the named field and, when valueField is non-empty, summarizes that
// field's numeric values.
func NewRecordAggregator(groupField, valueField string) *Aggregator[Record, any] {
	a := NewAggregator[Record, any](func(r Record) any {
		return r[groupField]
	})
	if valueField != "" {
		a = a.WithValue(func(r Record) (float64, bool) {
			return r.Float(valueField)
		})
	}
	return a
}
