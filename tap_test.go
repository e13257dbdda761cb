package flowz

import (
	"context"
	"errors"
	"testing"
)

func TestTap_Name(t *testing.T) {
	tap := NewTap(func(int) {})
	if tap.Name() != "tap" {
		t.Errorf("expected name 'tap', got %q", tap.Name())
	}
}

func TestTap_ObservesWithoutModifying(t *testing.T) {
	var seen []int
	tap := NewTap(func(n int) { seen = append(seen, n) })

	in := make(chan Result[int], 3)
	in <- NewSuccess(1)
	in <- NewError(0, errors.New("boom"), "upstream")
	in <- NewSuccess(2)
	close(in)

	out := tap.Process(context.Background(), in)

	var passed []Result[int]
	for result := range out {
		passed = append(passed, result)
	}

	if len(passed) != 3 {
		t.Fatalf("expected all 3 results passed through, got %d", len(passed))
	}
	if len(seen) != 2 || seen[0] != 1 || seen[1] != 2 {
		t.Errorf("expected observer to see successes only, saw %v", seen)
	}
}
