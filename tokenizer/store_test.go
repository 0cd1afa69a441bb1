package tokenizer

import (
	"math"
	"testing"
)

func TestHeapStoreAppendIntoSmallVocab(t *testing.T) {
	store, err := newTokenStore(Ranks{"x": 0, "hi": 1, "bye": 2})
	if err != nil {
		t.Fatalf("newTokenStore: %v", err)
	}
	if store.Len() != 3 {
		t.Fatalf("Len = %d want 3", store.Len())
	}

	var dst []byte
	if ok := store.AppendInto(&dst, 1); !ok {
		t.Fatalf("expected id 1 to be present")
	}
	if got := string(dst); got != "hi" {
		t.Fatalf("unexpected bytes after first append: %q", got)
	}
	if ok := store.AppendInto(&dst, 2); !ok {
		t.Fatalf("expected id 2 to be present")
	}
	if got := string(dst); got != "hibye" {
		t.Fatalf("unexpected bytes after second append: %q", got)
	}
	for _, id := range []int64{3, -1} {
		if ok := store.AppendInto(&dst, id); ok {
			t.Fatalf("unexpected success for missing id %d", id)
		}
	}
}

func TestHeapStoreRejectsNegativeRank(t *testing.T) {
	if _, err := newTokenStore(Ranks{"a": 0, "b": -4}); err == nil {
		t.Fatalf("expected negative rank error")
	}
}

func TestHeapStoreRejectsOutOfRangeRank(t *testing.T) {
	for _, ranks := range []Ranks{
		{"a": math.MaxInt64},
		{"a": 0, "b": 1 << 40},
	} {
		if _, err := newTokenStore(ranks); err == nil {
			t.Fatalf("expected out of range error for %v", ranks)
		}
	}
}
