package flowz

import (
	"testing"
)

func TestRecord_MergeDoesNotMutate(t *testing.T) {
	primary := Record{"id": 1, "name": "left"}
	secondary := Record{"name": "right", "extra": true}

	merged := primary.Merge(secondary)

	if merged["id"] != 1 || merged["name"] != "right" || merged["extra"] != true {
		t.Errorf("unexpected merge result: %v", merged)
	}
	if primary["name"] != "left" {
		t.Error("Merge mutated the primary record")
	}
	if _, ok := secondary["id"]; ok {
		t.Error("Merge mutated the secondary record")
	}
}

func TestRecord_Clone(t *testing.T) {
	original := Record{"a": 1}
	clone := original.Clone()
	clone["a"] = 2

	if original["a"] != 1 {
		t.Error("Clone shares storage with the original")
	}
}

func TestRecord_Float(t *testing.T) {
	r := Record{
		"int":    3,
		"int64":  int64(4),
		"float":  2.5,
		"string": "nope",
	}

	if v, ok := r.Float("int"); !ok || v != 3 {
		t.Errorf("expected 3 from int field, got %v ok=%v", v, ok)
	}
	if v, ok := r.Float("int64"); !ok || v != 4 {
		t.Errorf("expected 4 from int64 field, got %v ok=%v", v, ok)
	}
	if v, ok := r.Float("float"); !ok || v != 2.5 {
		t.Errorf("expected 2.5 from float field, got %v ok=%v", v, ok)
	}
	if _, ok := r.Float("string"); ok {
		t.Error("expected string field to not convert")
	}
	if _, ok := r.Float("missing"); ok {
		t.Error("expected missing field to not convert")
	}
}

func TestRecord_String(t *testing.T) {
	r := Record{"name": "x", "n": 1}

	if v, ok := r.String("name"); !ok || v != "x" {
		t.Errorf("expected 'x', got %q ok=%v", v, ok)
	}
	if _, ok := r.String("n"); ok {
		t.Error("expected numeric field to not convert to string")
	}
}
