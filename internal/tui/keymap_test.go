package tui

import (
	"testing"

	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"
)

// TestKeyMapMatchesExpectedKeys verifies behavior for the covered scenario.
func TestKeyMapMatchesExpectedKeys(t *testing.T) {
	keys := newKeyMap()
	cases := []struct {
		name    string
		msg     tea.KeyPressMsg
		binding key.Binding
	}{
		{"quit", tea.KeyPressMsg{Code: 'q', Text: "q"}, keys.quit},
		{"help", tea.KeyPressMsg{Code: '?', Text: "?"}, keys.toggleHelp},
		{"select all", tea.KeyPressMsg{Code: 'a', Mod: tea.ModCtrl}, keys.selectAll},
		{"copy", tea.KeyPressMsg{Code: 'c', Mod: tea.ModCtrl}, keys.copyCells},
		{"move up", tea.KeyPressMsg{Code: tea.KeyUp}, keys.moveUp},
		{"extend up", tea.KeyPressMsg{Code: tea.KeyUp, Mod: tea.ModShift}, keys.moveUp},
		{"undo", tea.KeyPressMsg{Code: 'z', Mod: tea.ModCtrl}, keys.undo},
		{"redo ctrl+y", tea.KeyPressMsg{Code: 'y', Mod: tea.ModCtrl}, keys.redo},
		{"redo ctrl+shift+z", tea.KeyPressMsg{Code: 'z', Mod: tea.ModCtrl | tea.ModShift}, keys.redo},
		{"save", tea.KeyPressMsg{Code: 's', Mod: tea.ModCtrl}, keys.save},
		{"save and exit", tea.KeyPressMsg{Code: 'x', Mod: tea.ModCtrl}, keys.saveAndExit},
		{"commit", tea.KeyPressMsg{Code: tea.KeyEnter}, keys.commit},
		{"cancel", tea.KeyPressMsg{Code: tea.KeyEscape}, keys.cancelEdit},
	}
	for _, tc := range cases {
		if !key.Matches(tc.msg, tc.binding) {
			t.Fatalf("%s: %q did not match binding %v", tc.name, tc.msg.String(), tc.binding.Keys())
		}
	}
}

// TestParseBindingKeys verifies key parsing behavior for configured overrides.
func TestParseBindingKeys(t *testing.T) {
	t.Run("space aliases", func(t *testing.T) {
		keys, help := parseBindingKeys("space", ".")
		if len(keys) != 2 || keys[0] != " " || keys[1] != "space" {
			t.Fatalf("unexpected parsed space keys %#v", keys)
		}
		if help != "space" {
			t.Fatalf("unexpected space help text %q", help)
		}
	})

	t.Run("uppercase rune includes shift alias", func(t *testing.T) {
		keys, help := parseBindingKeys("Z", "z")
		if len(keys) != 2 || keys[0] != "Z" || keys[1] != "shift+z" {
			t.Fatalf("unexpected uppercase parsed keys %#v", keys)
		}
		if help != "Z" {
			t.Fatalf("unexpected uppercase help text %q", help)
		}
	})

	t.Run("multi rune lowercases key matcher", func(t *testing.T) {
		keys, help := parseBindingKeys("Ctrl+E", "e")
		if len(keys) != 1 || keys[0] != "ctrl+e" {
			t.Fatalf("unexpected multi-rune parsed keys %#v", keys)
		}
		if help != "Ctrl+E" {
			t.Fatalf("unexpected multi-rune help text %q", help)
		}
	})

	t.Run("blank uses fallback", func(t *testing.T) {
		keys, help := parseBindingKeys("", "x")
		if len(keys) != 1 || keys[0] != "x" {
			t.Fatalf("unexpected fallback parsed keys %#v", keys)
		}
		if help != "x" {
			t.Fatalf("unexpected fallback help text %q", help)
		}
	})
}

// TestConfigureBinding verifies binding override application behavior.
func TestConfigureBinding(t *testing.T) {
	b := key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "old"))
	configureBinding(&b, "i", "a", "edit mode")
	keys := b.Keys()
	if len(keys) != 1 || keys[0] != "i" {
		t.Fatalf("unexpected configured keys %#v", keys)
	}
	if b.Help().Key != "i" || b.Help().Desc != "edit mode" {
		t.Fatalf("unexpected configured help %#v", b.Help())
	}
}

// TestKeyMapApplyConfig verifies dynamic key map override behavior.
func TestKeyMapApplyConfig(t *testing.T) {
	k := newKeyMap()
	k.applyConfig(KeyConfig{
		EditMode:   "i",
		ToggleView: "t",
		SelectAll:  "ctrl+l",
		Copy:       "y",
		Undo:       "u",
		Redo:       "R",
	})

	assertKeys := func(name string, binding key.Binding, expected ...string) {
		t.Helper()
		got := binding.Keys()
		if len(got) != len(expected) {
			t.Fatalf("%s key count mismatch got=%#v expected=%#v", name, got, expected)
		}
		for i := range expected {
			if got[i] != expected[i] {
				t.Fatalf("%s key mismatch got=%#v expected=%#v", name, got, expected)
			}
		}
	}

	assertKeys("edit mode", k.editMode, "i")
	assertKeys("toggle view", k.toggleView, "t")
	assertKeys("select all", k.selectAll, "ctrl+l")
	assertKeys("copy", k.copyCells, "y")
	assertKeys("undo", k.undo, "u")
	assertKeys("redo", k.redo, "R", "shift+r")
}

// TestKeyMapApplyConfigKeepsDefaultsForBlanks verifies dynamic key map override behavior.
func TestKeyMapApplyConfigKeepsDefaultsForBlanks(t *testing.T) {
	k := newKeyMap()
	k.applyConfig(KeyConfig{EditMode: "i"})
	if got := k.editMode.Keys(); len(got) != 1 || got[0] != "i" {
		t.Fatalf("unexpected edit mode keys %#v", got)
	}
	if got := k.redo.Keys(); len(got) != 2 || got[0] != "ctrl+shift+z" || got[1] != "ctrl+y" {
		t.Fatalf("blank override must keep redo defaults, got %#v", got)
	}
}

// TestKeyMapHelpListings verifies behavior for the covered scenario.
func TestKeyMapHelpListings(t *testing.T) {
	keys := newKeyMap()
	if len(keys.ShortHelp()) == 0 {
		t.Fatal("short help is empty")
	}
	full := keys.FullHelp()
	if len(full) != 3 {
		t.Fatalf("full help groups = %d, want 3", len(full))
	}
	for _, group := range full {
		if len(group) == 0 {
			t.Fatal("empty full help group")
		}
	}
}
