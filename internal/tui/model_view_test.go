package tui

import (
	"testing"

	tea "charm.land/bubbletea/v2"
)

// TestViewStates verifies behavior for the covered scenario.
func TestViewStates(t *testing.T) {
	m := NewModel(&fakeHost{}, &fakeClipboard{})
	v := m.View()
	if v.Content == nil || v.MouseMode != tea.MouseModeCellMotion {
		t.Fatal("expected loading view with mouse enabled")
	}
	if !v.AltScreen {
		t.Fatal("expected alt screen view")
	}

	m = applyMsg(t, m, tea.WindowSizeMsg{Width: 100, Height: 30})
	m = applyMsg(t, m, TableInitMsg{
		Header: []string{"name", "qty"},
		Rows:   [][]string{{"alpha", "1"}, {"beta", "2"}},
	})
	v = m.View()
	if v.Content == nil {
		t.Fatal("expected table view content")
	}
}

// TestQuitKey verifies behavior for the covered scenario.
func TestQuitKey(t *testing.T) {
	m := newTestModel(t, &fakeHost{}, &fakeClipboard{})
	updated, cmd := m.Update(keyRune('q'))
	if updated == nil {
		t.Fatal("expected model return value")
	}
	if cmd == nil {
		t.Fatal("expected quit cmd")
	}
}

// TestHelpOverlayToggles verifies behavior for the covered scenario.
func TestHelpOverlayToggles(t *testing.T) {
	m := newTestModel(t, &fakeHost{}, &fakeClipboard{})
	m = applyMsg(t, m, keyRune('?'))
	if !m.showHelp {
		t.Fatal("expected help overlay")
	}
	if v := m.View(); v.Content == nil {
		t.Fatal("expected overlay view content")
	}

	// Any key dismisses the overlay without acting on the grid.
	m = applyMsg(t, m, keyRune('q'))
	if m.showHelp {
		t.Fatal("expected overlay dismissed")
	}
	if m.sel.Count() != 0 {
		t.Fatalf("overlay dismissal selected %v", m.sel.Cells())
	}
}

// TestEditSaveFlowStates verifies behavior for the covered scenario.
func TestEditSaveFlowStates(t *testing.T) {
	h := &fakeHost{}
	m := newTestModel(t, h, &fakeClipboard{})

	m = applyMsg(t, m, keyRune('e'))
	if !m.session.Editing() || m.session.Saving() {
		t.Fatal("expected edit mode")
	}

	m = applyMsg(t, m, keyCtrl('s'))
	if !m.session.Saving() {
		t.Fatal("expected saving state")
	}
	if len(h.saves) != 1 {
		t.Fatalf("save requests = %d, want 1", len(h.saves))
	}

	m = applyMsg(t, m, SaveResultMsg{OK: true})
	if !m.session.Editing() || m.session.Saving() {
		t.Fatal("plain save must return to editing")
	}

	m = applyMsg(t, m, tea.KeyPressMsg{Code: tea.KeyEscape})
	if m.session.Editing() {
		t.Fatal("expected edit mode exit on esc")
	}
}
