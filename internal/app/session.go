package app

import (
	"github.com/hylla/tabula/internal/domain"
)

// SessionState names one edit-mode lifecycle state.
type SessionState string

// Edit-mode lifecycle states.
const (
	StateView    SessionState = "view"
	StateEditing SessionState = "editing"
	StateSaving  SessionState = "saving"
)

// Session is the edit-mode state machine: view → editing → saving → view.
// It owns the per-cell original snapshot used for cancel-revert and the
// undo/redo history for the current editing session.
type Session struct {
	grid          FullGrid
	history       *domain.History
	originals     [][]string
	state         SessionState
	exitAfterSave bool
}

// NewSession constructs a new value for this package.
func NewSession(grid FullGrid) *Session {
	return &Session{
		grid:    grid,
		history: domain.NewHistory(domain.HistoryLimit),
		state:   StateView,
	}
}

// State returns the current lifecycle state.
func (s *Session) State() SessionState {
	return s.state
}

// Editing reports whether cells are currently editable.
func (s *Session) Editing() bool {
	return s.state == StateEditing || s.state == StateSaving
}

// Saving reports whether a save round trip is in flight.
func (s *Session) Saving() bool {
	return s.state == StateSaving
}

// Enter switches into edit mode, capturing per-cell originals and seeding
// the history with a single baseline snapshot. It no-ops outside view mode.
func (s *Session) Enter() {
	if s.state != StateView {
		return
	}
	snapshot := s.grid.Snapshot()
	s.originals = snapshot
	s.history.Reset(snapshot)
	s.state = StateEditing
}

// CommitCell writes one edited cell and records a history snapshot. No-op
// edits are coalesced by the history. It reports whether a new snapshot
// was recorded.
func (s *Session) CommitCell(row, col int, text string) bool {
	if s.state != StateEditing {
		return false
	}
	s.grid.SetCell(row, col, text)
	return s.history.Push(s.grid.Snapshot())
}

// Undo restores the previous snapshot into the grid. It reports whether
// anything changed.
func (s *Session) Undo() bool {
	if s.state != StateEditing {
		return false
	}
	snapshot, ok := s.history.Undo()
	if !ok {
		return false
	}
	s.grid.Restore(snapshot)
	return true
}

// Redo reapplies the most recently undone snapshot. It reports whether
// anything changed.
func (s *Session) Redo() bool {
	if s.state != StateEditing {
		return false
	}
	snapshot, ok := s.history.Redo()
	if !ok {
		return false
	}
	s.grid.Restore(snapshot)
	return true
}

// CanUndo reports whether an undo would change the grid.
func (s *Session) CanUndo() bool {
	return s.state == StateEditing && s.history.CanUndo()
}

// CanRedo reports whether a redo is available.
func (s *Session) CanRedo() bool {
	return s.state == StateEditing && s.history.CanRedo()
}

// Dirty reports whether the grid differs from the edit-entry originals.
func (s *Session) Dirty() bool {
	if !s.Editing() {
		return false
	}
	return !domain.SnapshotsEqual(s.grid.Snapshot(), s.originals)
}

// Save serializes the full grid to CSV and moves into the saving state.
// It fails while not editing or while another save is in flight, so a
// single user gesture yields at most one save request.
func (s *Session) Save(exitAfter bool) (string, error) {
	switch s.state {
	case StateSaving:
		return "", domain.ErrSaveInFlight
	case StateEditing:
	default:
		return "", domain.ErrNotEditing
	}
	text, err := MarshalGridCSV(s.grid)
	if err != nil {
		return "", err
	}
	s.state = StateSaving
	s.exitAfterSave = exitAfter
	return text, nil
}

// CompleteSave applies a host save result. On success the originals are
// cleared and the session either exits edit mode (save-and-exit) or
// re-baselines (plain save). On failure the session stays in editing with
// edits intact. It reports whether edit mode was exited.
func (s *Session) CompleteSave(ok bool) bool {
	if s.state != StateSaving {
		return false
	}
	if !ok {
		s.state = StateEditing
		return false
	}
	if s.exitAfterSave {
		s.exit()
		return true
	}
	snapshot := s.grid.Snapshot()
	s.originals = snapshot
	s.history.Reset(snapshot)
	s.state = StateEditing
	return false
}

// Cancel restores every cell to its captured original value and exits
// edit mode.
func (s *Session) Cancel() {
	if !s.Editing() {
		return
	}
	s.grid.Restore(s.originals)
	s.exit()
}

// ForceExit abandons the session without touching the grid, used when the
// host replaces the table wholesale.
func (s *Session) ForceExit() {
	if s.state == StateView {
		return
	}
	s.exit()
}

// exit leaves edit mode, discarding snapshots and history.
func (s *Session) exit() {
	s.state = StateView
	s.originals = nil
	s.exitAfterSave = false
	s.history.Discard()
}
