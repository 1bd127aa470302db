package domain

import (
	"fmt"
	"testing"
)

func snap(values ...string) [][]string {
	return [][]string{values}
}

// TestHistoryDedupsConsecutiveSnapshots verifies behavior for the covered scenario.
func TestHistoryDedupsConsecutiveSnapshots(t *testing.T) {
	h := NewHistory(0)
	h.Reset(snap("a"))
	if h.Push(snap("a")) {
		t.Fatal("pushing the baseline again should coalesce")
	}
	if h.Depth() != 1 {
		t.Fatalf("depth = %d, want 1", h.Depth())
	}
	if !h.Push(snap("b")) {
		t.Fatal("distinct snapshot should push")
	}
	if h.Push(snap("b")) {
		t.Fatal("repeat snapshot should coalesce")
	}
	if h.Depth() != 2 {
		t.Fatalf("depth = %d, want 2", h.Depth())
	}
}

// TestHistoryUndoRedoRoundTrip verifies behavior for the covered scenario.
func TestHistoryUndoRedoRoundTrip(t *testing.T) {
	h := NewHistory(0)
	h.Reset(snap("base"))
	states := []string{"one", "two", "three"}
	for _, state := range states {
		h.Push(snap(state))
	}

	// Undo all the way back to baseline.
	want := []string{"two", "one", "base"}
	for _, expect := range want {
		got, ok := h.Undo()
		if !ok {
			t.Fatalf("undo to %q unavailable", expect)
		}
		if got[0][0] != expect {
			t.Fatalf("undo = %q, want %q", got[0][0], expect)
		}
	}
	if _, ok := h.Undo(); ok {
		t.Fatal("undo past baseline should no-op")
	}

	// Redo replays the exact undone states.
	for _, expect := range states {
		got, ok := h.Redo()
		if !ok {
			t.Fatalf("redo to %q unavailable", expect)
		}
		if got[0][0] != expect {
			t.Fatalf("redo = %q, want %q", got[0][0], expect)
		}
	}
	if _, ok := h.Redo(); ok {
		t.Fatal("redo past newest state should no-op")
	}
}

// TestHistoryPushClearsRedo verifies behavior for the covered scenario.
func TestHistoryPushClearsRedo(t *testing.T) {
	h := NewHistory(0)
	h.Reset(snap("base"))
	h.Push(snap("one"))
	if _, ok := h.Undo(); !ok {
		t.Fatal("undo should succeed")
	}
	if !h.CanRedo() {
		t.Fatal("redo should be available after undo")
	}
	h.Push(snap("fork"))
	if h.CanRedo() {
		t.Fatal("new edit should invalidate redo stack")
	}
}

// TestHistoryBoundedDepth verifies behavior for the covered scenario.
func TestHistoryBoundedDepth(t *testing.T) {
	h := NewHistory(0)
	h.Reset(snap("base"))
	for i := 0; i < HistoryLimit*2; i++ {
		h.Push(snap(fmt.Sprintf("state-%d", i)))
	}
	if h.Depth() != HistoryLimit {
		t.Fatalf("depth = %d, want %d", h.Depth(), HistoryLimit)
	}

	// Undo bottoms out at the oldest retained snapshot, not the original
	// baseline, once the bound has trimmed it.
	undos := 0
	for {
		if _, ok := h.Undo(); !ok {
			break
		}
		undos++
	}
	if undos != HistoryLimit-1 {
		t.Fatalf("undo steps = %d, want %d", undos, HistoryLimit-1)
	}
}

// TestHistoryUndoThenRedoRestoresExactContent verifies behavior for the covered scenario.
func TestHistoryUndoThenRedoRestoresExactContent(t *testing.T) {
	h := NewHistory(0)
	current := [][]string{{"a", "b"}, {"c", "d"}}
	h.Reset(current)
	edited := [][]string{{"a", "B"}, {"c", "d"}}
	h.Push(edited)

	prev, ok := h.Undo()
	if !ok || !SnapshotsEqual(prev, current) {
		t.Fatalf("undo = %v, want %v", prev, current)
	}
	redone, ok := h.Redo()
	if !ok || !SnapshotsEqual(redone, edited) {
		t.Fatalf("redo = %v, want %v", redone, edited)
	}
}
