package tui

import "testing"

// TestHelpRendererCachesPerWidth verifies behavior for the covered scenario.
func TestHelpRendererCachesPerWidth(t *testing.T) {
	var r helpRenderer
	first := r.render(60)
	if first == "" {
		t.Fatal("expected rendered help text")
	}
	if got := r.render(60); got != first {
		t.Fatal("expected cached output for a repeated width")
	}
	if r.render(40) == "" {
		t.Fatal("expected rendered help text after a width change")
	}
}

// TestHelpRendererMinimumWidth verifies behavior for the covered scenario.
func TestHelpRendererMinimumWidth(t *testing.T) {
	var r helpRenderer
	if r.render(5) == "" {
		t.Fatal("expected rendered help text at the narrow floor")
	}
	if r.width != 24 {
		t.Fatalf("wrap width = %d, want 24", r.width)
	}
}
