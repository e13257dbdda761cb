package flowz

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestJoin_Name(t *testing.T) {
	join := NewRecordJoin(NewSliceSource[Record](), "id")
	if join.Name() != "join" {
		t.Errorf("expected name 'join', got %q", join.Name())
	}
}

func TestJoin_InnerJoin(t *testing.T) {
	secondary := NewSliceSource(
		Record{"id": 2, "name": "X"},
	)
	join := NewRecordJoin(secondary, "id")

	in := make(chan Result[Record], 2)
	in <- NewSuccess(Record{"id": 1}).WithSeq(0)
	in <- NewSuccess(Record{"id": 2}).WithSeq(1)
	close(in)

	out := join.Process(context.Background(), in)

	var results []Record
	for result := range out {
		if result.IsError() {
			t.Fatalf("unexpected error: %v", result.Error())
		}
		results = append(results, result.Value())
	}

	// id=1 has no match and produces nothing.
	if len(results) != 1 {
		t.Fatalf("expected exactly 1 joined record, got %d", len(results))
	}
	if results[0]["id"] != 2 || results[0]["name"] != "X" {
		t.Errorf("expected merged record for id=2 with name X, got %v", results[0])
	}
}

func TestJoin_DuplicateSecondaryKeysLastWins(t *testing.T) {
	secondary := NewSliceSource(
		Record{"id": 1, "name": "old"},
		Record{"id": 1, "name": "new"},
	)
	join := NewRecordJoin(secondary, "id")

	in := make(chan Result[Record], 1)
	in <- NewSuccess(Record{"id": 1})
	close(in)

	out := join.Process(context.Background(), in)

	result := <-out
	if result.Value()["name"] != "new" {
		t.Errorf("expected later secondary record to win, got %v", result.Value())
	}
}

func TestJoin_PrimaryHeldUntilSecondaryLoaded(t *testing.T) {
	gate := make(chan struct{})
	served := false
	secondary := NewFuncSource(func(ctx context.Context) (Record, error) {
		if served {
			return nil, ErrEndOfSequence
		}
		select {
		case <-gate:
			served = true
			return Record{"id": 1, "name": "X"}, nil
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	})

	join := NewRecordJoin(secondary, "id")

	in := make(chan Result[Record], 1)
	in <- NewSuccess(Record{"id": 1})
	close(in)

	out := join.Process(context.Background(), in)

	// While the secondary is loading, no primary output may appear.
	select {
	case unexpected := <-out:
		t.Fatalf("output before secondary loaded: %v", unexpected)
	case <-time.After(20 * time.Millisecond):
	}

	close(gate)

	select {
	case result := <-out:
		if result.IsError() || result.Value()["name"] != "X" {
			t.Fatalf("expected joined record after load, got %v", result)
		}
	case <-time.After(time.Second):
		t.Fatal("join never released held primary items")
	}
}

func TestJoin_SecondaryLoadFailure(t *testing.T) {
	loadErr := errors.New("secondary unavailable")
	secondary := NewFuncSource(func(context.Context) (Record, error) {
		return nil, loadErr
	})

	join := NewRecordJoin(secondary, "id")

	in := make(chan Result[Record], 1)
	in <- NewSuccess(Record{"id": 1})
	close(in)

	out := join.Process(context.Background(), in)

	result := <-out
	if !result.IsError() {
		t.Fatal("expected error result when secondary load fails")
	}
	var srcErr *SourceError
	if !errors.As(result.Error().Err, &srcErr) || !errors.Is(srcErr.Err, loadErr) {
		t.Errorf("expected SourceError wrapping %v, got %v", loadErr, result.Error().Err)
	}
	// No primary item was consumed before the failure, so no primary
	// position is attributed.
	if result.Seq() != 0 || result.Error().Seq != 0 {
		t.Errorf("expected zero sequence position on load failure, got result %d / error %d",
			result.Seq(), result.Error().Seq)
	}

	if _, ok := <-out; ok {
		t.Error("expected output closed after load failure")
	}
}

func TestJoin_TypedMerge(t *testing.T) {
	type order struct {
		id       int
		customer string
	}
	type customer struct {
		name string
		id   string
	}
	type enriched struct {
		order order
		name  string
	}

	secondary := NewSliceSource(
		customer{id: "c1", name: "Ada"},
	)
	join := NewJoin(secondary,
		func(o order) string { return o.customer },
		func(c customer) string { return c.id },
		func(o order, c customer) enriched {
			return enriched{order: o, name: c.name}
		},
	)

	in := make(chan Result[order], 2)
	in <- NewSuccess(order{id: 1, customer: "c1"})
	in <- NewSuccess(order{id: 2, customer: "c2"})
	close(in)

	out := join.Process(context.Background(), in)

	var results []enriched
	for result := range out {
		results = append(results, result.Value())
	}

	if len(results) != 1 || results[0].name != "Ada" || results[0].order.id != 1 {
		t.Fatalf("expected one enriched order for c1, got %v", results)
	}
}
