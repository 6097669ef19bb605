package canonhash

import (
	"strings"
	"testing"
)

func TestSumObjectDeterministicForSameState(t *testing.T) {
	a := map[string]any{
		"b": 2,
		"a": map[string]any{"y": 2, "x": 1},
	}
	b := map[string]any{
		"a": map[string]any{"x": 1, "y": 2},
		"b": 2,
	}

	ha, _, err := SumObject(a)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	hb, _, err := SumObject(b)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if ha != hb {
		t.Fatalf("expected same hash, got %s vs %s", ha, hb)
	}
	if !strings.HasPrefix(ha, "sha256:") || len(ha) != len("sha256:")+64 {
		t.Fatalf("unexpected digest format %q", ha)
	}
}

func TestSumObjectChangesWhenStateChanges(t *testing.T) {
	ha, _, _ := SumObject(map[string]any{"subject": "Policy Update"})
	hb, _, _ := SumObject(map[string]any{"subject": "Policy update"})
	if ha == hb {
		t.Fatalf("expected different hashes")
	}
}

func TestSumObjectRejectsUnencodable(t *testing.T) {
	if _, _, err := SumObject(map[string]any{"ch": make(chan int)}); err == nil {
		t.Fatalf("expected error for unencodable value")
	}
}
