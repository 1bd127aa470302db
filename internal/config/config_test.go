package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := Default("127.0.0.1:7420")
	if cfg.Host.Listen != "127.0.0.1:7420" {
		t.Fatalf("unexpected listen address %q", cfg.Host.Listen)
	}
	if cfg.Host.PageSize != 500 {
		t.Fatalf("unexpected page size %d", cfg.Host.PageSize)
	}
	if cfg.Clipboard.ChunkSize != 2048 {
		t.Fatalf("unexpected chunk size %d", cfg.Clipboard.ChunkSize)
	}
	if cfg.Logging.DevFile.Enabled {
		t.Fatal("expected dev file logging disabled by default")
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	defaults := Default("127.0.0.1:7420")
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.toml"), defaults)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Host.Listen != defaults.Host.Listen {
		t.Fatalf("expected default listen address, got %q", cfg.Host.Listen)
	}
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[host]
dial = "10.0.0.5:7420"
page_size = 250

[clipboard]
chunk_size = 512

[ui]
max_column_width = 20

[keys]
edit_mode = "i"
redo = "R"

[logging]
level = "debug"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	cfg, err := Load(path, Default("127.0.0.1:7420"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Host.Dial != "10.0.0.5:7420" {
		t.Fatalf("unexpected dial address %q", cfg.Host.Dial)
	}
	if cfg.Host.PageSize != 250 {
		t.Fatalf("unexpected page size %d", cfg.Host.PageSize)
	}
	if cfg.Clipboard.ChunkSize != 512 {
		t.Fatalf("unexpected chunk size %d", cfg.Clipboard.ChunkSize)
	}
	if cfg.UI.MaxColumnWidth != 20 {
		t.Fatalf("unexpected max column width %d", cfg.UI.MaxColumnWidth)
	}
	if cfg.Logging.Level != "debug" {
		t.Fatalf("unexpected log level %q", cfg.Logging.Level)
	}
	if cfg.Keys.EditMode != "i" || cfg.Keys.Redo != "R" {
		t.Fatalf("unexpected key overrides %+v", cfg.Keys)
	}
	// Sections the file omits keep their defaults.
	if cfg.UI.ToastMillis != 2500 {
		t.Fatalf("unexpected toast duration %d", cfg.UI.ToastMillis)
	}
}

func TestEnsureConfigDir(t *testing.T) {
	target := filepath.Join(t.TempDir(), "nested", "dir", "config.toml")
	if err := EnsureConfigDir(target); err != nil {
		t.Fatalf("EnsureConfigDir() error = %v", err)
	}
	info, err := os.Stat(filepath.Dir(target))
	if err != nil || !info.IsDir() {
		t.Fatalf("config dir missing: %v", err)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := []struct {
		name    string
		content string
	}{
		{"zero page size", "[host]\npage_size = 0\n"},
		{"zero chunk size", "[clipboard]\nchunk_size = 0\n"},
		{"bad log level", "[logging]\nlevel = \"loud\"\n"},
		{"dev file without dir", "[logging]\n[logging.dev_file]\nenabled = true\n"},
	}
	for _, tc := range cases {
		path := filepath.Join(t.TempDir(), "config.toml")
		if err := os.WriteFile(path, []byte(tc.content), 0o644); err != nil {
			t.Fatalf("%s: WriteFile() error = %v", tc.name, err)
		}
		if _, err := Load(path, Default("127.0.0.1:7420")); err == nil {
			t.Fatalf("%s: expected validation error", tc.name)
		}
	}
}
