package domain

// HistoryLimit bounds the undo stack depth, baseline included.
const HistoryLimit = 50

// History keeps a bounded stack of full-grid snapshots for undo plus a
// parallel redo stack invalidated by any new edit. The top of the undo
// stack always mirrors the current grid content.
type History struct {
	limit int
	undo  [][][]string
	redo  [][][]string
}

// NewHistory constructs a new value for this package.
func NewHistory(limit int) *History {
	if limit <= 0 {
		limit = HistoryLimit
	}
	return &History{limit: limit}
}

// Reset discards both stacks and seeds the undo stack with a baseline.
func (h *History) Reset(baseline [][]string) {
	h.undo = [][][]string{cloneSnapshot(baseline)}
	h.redo = nil
}

// Discard empties both stacks.
func (h *History) Discard() {
	h.undo = nil
	h.redo = nil
}

// Push records a new snapshot. Snapshots equal to the current top are
// coalesced so no-op edits do not grow the stack. Any recorded edit clears
// the redo stack.
func (h *History) Push(snapshot [][]string) bool {
	if len(h.undo) > 0 && SnapshotsEqual(h.undo[len(h.undo)-1], snapshot) {
		return false
	}
	h.undo = append(h.undo, cloneSnapshot(snapshot))
	if len(h.undo) > h.limit {
		h.undo = append([][][]string(nil), h.undo[len(h.undo)-h.limit:]...)
	}
	h.redo = nil
	return true
}

// Undo pops the current snapshot onto the redo stack and returns the
// previous one. It no-ops while only the baseline remains.
func (h *History) Undo() ([][]string, bool) {
	if len(h.undo) < 2 {
		return nil, false
	}
	top := h.undo[len(h.undo)-1]
	h.undo = h.undo[:len(h.undo)-1]
	h.redo = append(h.redo, top)
	return cloneSnapshot(h.undo[len(h.undo)-1]), true
}

// Redo reapplies the most recently undone snapshot, pushing it back onto
// the undo stack. It no-ops when the redo stack is empty.
func (h *History) Redo() ([][]string, bool) {
	if len(h.redo) == 0 {
		return nil, false
	}
	top := h.redo[len(h.redo)-1]
	h.redo = h.redo[:len(h.redo)-1]
	h.undo = append(h.undo, top)
	return cloneSnapshot(top), true
}

// CanUndo reports whether an undo would restore an earlier snapshot.
func (h *History) CanUndo() bool {
	return len(h.undo) >= 2
}

// CanRedo reports whether a redo is available.
func (h *History) CanRedo() bool {
	return len(h.redo) > 0
}

// Depth returns the undo stack size including the baseline.
func (h *History) Depth() int {
	return len(h.undo)
}

// cloneSnapshot deep-copies one grid snapshot.
func cloneSnapshot(snapshot [][]string) [][]string {
	out := make([][]string, len(snapshot))
	for idx, row := range snapshot {
		out[idx] = append([]string(nil), row...)
	}
	return out
}
