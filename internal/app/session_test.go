package app

import (
	"errors"
	"testing"

	"github.com/hylla/tabula/internal/domain"
)

func newTestGrid() *domain.Grid {
	return domain.NewGrid([]string{"h1", "h2"}, [][]string{
		{"a", "b"},
		{"c", "d"},
	})
}

// TestSessionEnterAndCancelRestoresOriginals verifies behavior for the covered scenario.
func TestSessionEnterAndCancelRestoresOriginals(t *testing.T) {
	grid := newTestGrid()
	s := NewSession(grid)
	s.Enter()
	if s.State() != StateEditing {
		t.Fatalf("state = %s, want editing", s.State())
	}

	s.CommitCell(0, 0, "changed")
	s.CommitCell(1, 1, "also changed")
	if !s.Dirty() {
		t.Fatal("session should be dirty after edits")
	}

	// Undo one of the edits, then cancel: cancel must still restore the
	// exact pre-edit text for every cell.
	if !s.Undo() {
		t.Fatal("undo should succeed")
	}
	s.Cancel()
	if s.State() != StateView {
		t.Fatalf("state = %s, want view", s.State())
	}
	if grid.GetCell(0, 0) != "a" || grid.GetCell(1, 1) != "d" {
		t.Fatalf("cancel left grid %v", grid.Snapshot())
	}
}

// TestSessionUndoRedoRestoresContent verifies behavior for the covered scenario.
func TestSessionUndoRedoRestoresContent(t *testing.T) {
	grid := newTestGrid()
	s := NewSession(grid)
	s.Enter()

	s.CommitCell(0, 0, "first")
	s.CommitCell(0, 0, "second")
	before := grid.Snapshot()

	if !s.Undo() {
		t.Fatal("undo should succeed")
	}
	if grid.GetCell(0, 0) != "first" {
		t.Fatalf("after undo cell = %q, want first", grid.GetCell(0, 0))
	}
	if !s.Redo() {
		t.Fatal("redo should succeed")
	}
	if !domain.SnapshotsEqual(grid.Snapshot(), before) {
		t.Fatalf("redo did not restore pre-undo content: %v", grid.Snapshot())
	}
}

// TestSessionUndoAtBaselineNoops verifies behavior for the covered scenario.
func TestSessionUndoAtBaselineNoops(t *testing.T) {
	grid := newTestGrid()
	s := NewSession(grid)
	s.Enter()
	if s.Undo() {
		t.Fatal("undo with only the baseline should no-op")
	}
	if s.Redo() {
		t.Fatal("redo with empty redo stack should no-op")
	}
}

// TestSessionNoopEditDoesNotGrowHistory verifies behavior for the covered scenario.
func TestSessionNoopEditDoesNotGrowHistory(t *testing.T) {
	grid := newTestGrid()
	s := NewSession(grid)
	s.Enter()
	if s.CommitCell(0, 0, "a") {
		t.Fatal("writing the existing value should coalesce")
	}
	if s.CanUndo() {
		t.Fatal("no-op edit should leave nothing to undo")
	}
}

// TestSessionSaveGating verifies behavior for the covered scenario.
func TestSessionSaveGating(t *testing.T) {
	grid := newTestGrid()
	s := NewSession(grid)

	if _, err := s.Save(false); !errors.Is(err, domain.ErrNotEditing) {
		t.Fatalf("save outside edit mode err = %v, want ErrNotEditing", err)
	}

	s.Enter()
	s.CommitCell(0, 0, "x,y")
	text, err := s.Save(false)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if text != "h1,h2\n\"x,y\",b\nc,d\n" {
		t.Fatalf("csv = %q", text)
	}
	if !s.Saving() {
		t.Fatal("session should be saving")
	}

	// A second gesture while the save is in flight must not produce a
	// second request.
	if _, err := s.Save(false); !errors.Is(err, domain.ErrSaveInFlight) {
		t.Fatalf("second save err = %v, want ErrSaveInFlight", err)
	}
}

// TestSessionSaveResultPaths verifies behavior for the covered scenario.
func TestSessionSaveResultPaths(t *testing.T) {
	grid := newTestGrid()
	s := NewSession(grid)
	s.Enter()
	s.CommitCell(0, 0, "edit")

	// Failure: stay editing with edits intact.
	if _, err := s.Save(false); err != nil {
		t.Fatalf("save: %v", err)
	}
	if exited := s.CompleteSave(false); exited {
		t.Fatal("failed save must not exit edit mode")
	}
	if s.State() != StateEditing || grid.GetCell(0, 0) != "edit" {
		t.Fatalf("failure path state=%s cell=%q", s.State(), grid.GetCell(0, 0))
	}

	// Plain save success: re-baseline, still editing, no longer dirty.
	if _, err := s.Save(false); err != nil {
		t.Fatalf("save: %v", err)
	}
	if exited := s.CompleteSave(true); exited {
		t.Fatal("plain save must not exit edit mode")
	}
	if s.Dirty() {
		t.Fatal("successful plain save should re-baseline")
	}
	if s.CanUndo() {
		t.Fatal("re-baseline should reset history")
	}

	// Save-and-exit success: leave edit mode.
	s.CommitCell(0, 1, "more")
	if _, err := s.Save(true); err != nil {
		t.Fatalf("save: %v", err)
	}
	if exited := s.CompleteSave(true); !exited {
		t.Fatal("save-and-exit should exit edit mode")
	}
	if s.State() != StateView {
		t.Fatalf("state = %s, want view", s.State())
	}
}

// TestSessionForceExitKeepsGrid verifies behavior for the covered scenario.
func TestSessionForceExitKeepsGrid(t *testing.T) {
	grid := newTestGrid()
	s := NewSession(grid)
	s.Enter()
	s.CommitCell(0, 0, "kept")
	s.ForceExit()
	if s.State() != StateView {
		t.Fatalf("state = %s, want view", s.State())
	}
	if grid.GetCell(0, 0) != "kept" {
		t.Fatalf("force exit reverted grid: %q", grid.GetCell(0, 0))
	}
}
