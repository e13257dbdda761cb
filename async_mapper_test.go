package flowz

import (
	"context"
	"errors"
	"math/rand"
	"sync/atomic"
	"testing"
	"time"
)

func TestAsyncMapper_Name(t *testing.T) {
	mapper := NewAsyncMapper(func(_ context.Context, n int) (int, error) { return n, nil })
	if mapper.Name() != "async-mapper" {
		t.Errorf("expected name 'async-mapper', got %q", mapper.Name())
	}
}

// Output order must equal input order for any concurrency limit, regardless
// of how long individual transformations take.
func TestAsyncMapper_OrderPreserved(t *testing.T) {
	for _, workers := range []int{1, 2, 4, 8} {
		mapper := NewAsyncMapper(func(_ context.Context, n int) (int, error) {
			// Deliberately variable completion order.
			time.Sleep(time.Duration(rand.Intn(5)) * time.Millisecond)
			return n * 10, nil
		}).WithMaxConcurrent(workers)

		const total = 50
		in := make(chan Result[int], total)
		for i := 0; i < total; i++ {
			in <- NewSuccess(i).WithSeq(uint64(i))
		}
		close(in)

		out := mapper.Process(context.Background(), in)

		i := 0
		for result := range out {
			if result.IsError() {
				t.Fatalf("workers=%d: unexpected error: %v", workers, result.Error())
			}
			if result.Value() != i*10 {
				t.Fatalf("workers=%d: expected %d at position %d, got %d", workers, i*10, i, result.Value())
			}
			i++
		}
		if i != total {
			t.Fatalf("workers=%d: expected %d results, got %d", workers, total, i)
		}
	}
}

func TestAsyncMapper_BoundedConcurrency(t *testing.T) {
	const limit = 3

	var inFlight, peak atomic.Int64
	mapper := NewAsyncMapper(func(_ context.Context, n int) (int, error) {
		cur := inFlight.Add(1)
		for {
			prev := peak.Load()
			if cur <= prev || peak.CompareAndSwap(prev, cur) {
				break
			}
		}
		time.Sleep(2 * time.Millisecond)
		inFlight.Add(-1)
		return n, nil
	}).WithMaxConcurrent(limit)

	const total = 30
	in := make(chan Result[int], total)
	for i := 0; i < total; i++ {
		in <- NewSuccess(i)
	}
	close(in)

	out := mapper.Process(context.Background(), in)
	for range out {
	}

	if got := peak.Load(); got > limit {
		t.Errorf("expected at most %d in flight, observed %d", limit, got)
	}
}

func TestAsyncMapper_TransformFailure(t *testing.T) {
	failErr := errors.New("enrich failed")
	mapper := NewAsyncMapper(func(_ context.Context, n int) (int, error) {
		if n == 2 {
			return 0, failErr
		}
		return n, nil
	}).WithMaxConcurrent(4).WithName("enrich")

	in := make(chan Result[int], 4)
	for i := 0; i < 4; i++ {
		in <- NewSuccess(i).WithSeq(uint64(i))
	}
	close(in)

	out := mapper.Process(context.Background(), in)

	var results []Result[int]
	for result := range out {
		results = append(results, result)
	}

	if len(results) != 4 {
		t.Fatalf("expected 4 results, got %d", len(results))
	}
	// The failure sits at its input position.
	if !results[2].IsError() {
		t.Fatal("expected error at position 2")
	}
	se := results[2].Error()
	if !errors.Is(se.Err, failErr) || se.StageName != "enrich" || se.Seq != 2 {
		t.Errorf("expected enrich failure at seq 2, got %+v", se)
	}
	for _, i := range []int{0, 1, 3} {
		if results[i].IsError() || results[i].Value() != i {
			t.Errorf("expected success(%d) at position %d, got %v", i, i, results[i])
		}
	}
}

func TestAsyncMapper_ErrorPassthroughInOrder(t *testing.T) {
	mapper := NewAsyncMapper(func(_ context.Context, n int) (int, error) {
		time.Sleep(time.Duration(rand.Intn(3)) * time.Millisecond)
		return n, nil
	}).WithMaxConcurrent(4)

	in := make(chan Result[int], 3)
	in <- NewSuccess(1).WithSeq(0)
	in <- NewError(0, errors.New("upstream failure"), "upstream").WithSeq(1)
	in <- NewSuccess(3).WithSeq(2)
	close(in)

	out := mapper.Process(context.Background(), in)

	first := <-out
	if first.IsError() {
		t.Fatalf("expected success first, got %v", first.Error())
	}
	second := <-out
	if !second.IsError() {
		t.Fatal("expected the upstream error at its input position")
	}
	third := <-out
	if third.IsError() {
		t.Fatalf("expected success third, got %v", third.Error())
	}
}

func TestAsyncMapper_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	mapper := NewAsyncMapper(func(ctx context.Context, n int) (int, error) {
		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		case <-time.After(10 * time.Second):
			return n, nil
		}
	}).WithMaxConcurrent(2)

	in := make(chan Result[int], 4)
	for i := 0; i < 4; i++ {
		in <- NewSuccess(i)
	}
	close(in)

	out := mapper.Process(ctx, in)
	cancel()

	deadline := time.After(time.Second)
	for {
		select {
		case _, ok := <-out:
			if !ok {
				return // closed promptly, no leak
			}
		case <-deadline:
			t.Fatal("output did not close after cancellation")
		}
	}
}
