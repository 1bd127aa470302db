package tui

import (
	"strings"
	"unicode"

	"charm.land/bubbles/v2/key"
)

// KeyConfig carries user overrides for the rebindable view actions. Blank
// entries keep the defaults.
type KeyConfig struct {
	EditMode   string
	ToggleView string
	SelectAll  string
	Copy       string
	Undo       string
	Redo       string
}

// keyMap represents key map data used by this package.
type keyMap struct {
	quit       key.Binding
	toggleHelp key.Binding
	clear      key.Binding

	moveLeft  key.Binding
	moveRight key.Binding
	moveUp    key.Binding
	moveDown  key.Binding

	selectAll  key.Binding
	copyCells  key.Binding
	editMode   key.Binding
	toggleView key.Binding

	undo        key.Binding
	redo        key.Binding
	save        key.Binding
	saveAndExit key.Binding
	commit      key.Binding
	cancelEdit  key.Binding
}

// newKeyMap constructs key map.
func newKeyMap() keyMap {
	return keyMap{
		quit:       key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit")),
		toggleHelp: key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "toggle help")),
		clear:      key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "clear selection")),

		moveLeft:  key.NewBinding(key.WithKeys("left", "shift+left"), key.WithHelp("←", "move left")),
		moveRight: key.NewBinding(key.WithKeys("right", "shift+right"), key.WithHelp("→", "move right")),
		moveUp:    key.NewBinding(key.WithKeys("up", "shift+up"), key.WithHelp("↑", "move up")),
		moveDown:  key.NewBinding(key.WithKeys("down", "shift+down"), key.WithHelp("↓", "move down")),

		selectAll:  key.NewBinding(key.WithKeys("ctrl+a"), key.WithHelp("ctrl+a", "select all")),
		copyCells:  key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "copy selection")),
		editMode:   key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit mode")),
		toggleView: key.NewBinding(key.WithKeys("v"), key.WithHelp("v", "toggle table/raw view")),

		undo:        key.NewBinding(key.WithKeys("ctrl+z"), key.WithHelp("ctrl+z", "undo")),
		redo:        key.NewBinding(key.WithKeys("ctrl+shift+z", "ctrl+y"), key.WithHelp("ctrl+y", "redo")),
		save:        key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "save")),
		saveAndExit: key.NewBinding(key.WithKeys("ctrl+x"), key.WithHelp("ctrl+x", "save and exit")),
		commit:      key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "commit cell")),
		cancelEdit:  key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel edits")),
	}
}

// applyConfig rebinds the configurable actions from user overrides.
func (k *keyMap) applyConfig(cfg KeyConfig) {
	type override struct {
		binding  *key.Binding
		raw      string
		fallback string
		desc     string
	}
	for _, o := range []override{
		{&k.editMode, cfg.EditMode, "e", "edit mode"},
		{&k.toggleView, cfg.ToggleView, "v", "toggle table/raw view"},
		{&k.selectAll, cfg.SelectAll, "ctrl+a", "select all"},
		{&k.copyCells, cfg.Copy, "ctrl+c", "copy selection"},
		{&k.undo, cfg.Undo, "ctrl+z", "undo"},
		{&k.redo, cfg.Redo, "ctrl+y", "redo"},
	} {
		if strings.TrimSpace(o.raw) == "" {
			continue
		}
		configureBinding(o.binding, o.raw, o.fallback, o.desc)
	}
}

// configureBinding applies one key override to a binding, keeping the
// configured spelling as the help label.
func configureBinding(b *key.Binding, raw, fallback, desc string) {
	keys, helpKey := parseBindingKeys(raw, fallback)
	b.SetKeys(keys...)
	b.SetHelp(helpKey, desc)
}

// parseBindingKeys turns a configured key string into the matcher set the
// runtime needs. Single uppercase runes also match their shift+ spelling and
// "space" matches both the literal space and its name.
func parseBindingKeys(raw, fallback string) ([]string, string) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return []string{fallback}, fallback
	}
	if strings.EqualFold(raw, "space") {
		return []string{" ", "space"}, "space"
	}
	runes := []rune(raw)
	if len(runes) == 1 {
		if r := runes[0]; unicode.IsUpper(r) {
			return []string{string(r), "shift+" + string(unicode.ToLower(r))}, raw
		}
		return []string{raw}, raw
	}
	return []string{strings.ToLower(raw)}, raw
}

// ShortHelp handles short help.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{
		k.copyCells, k.editMode, k.toggleView, k.selectAll, k.toggleHelp, k.quit,
	}
}

// FullHelp handles full help.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.moveLeft, k.moveRight, k.moveUp, k.moveDown, k.selectAll, k.clear},
		{k.copyCells, k.editMode, k.toggleView, k.toggleHelp, k.quit},
		{k.commit, k.undo, k.redo, k.save, k.saveAndExit, k.cancelEdit},
	}
}
