package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
)

type Config struct {
	Host      HostConfig      `toml:"host"`
	Clipboard ClipboardConfig `toml:"clipboard"`
	UI        UIConfig        `toml:"ui"`
	Keys      KeyConfig       `toml:"keys"`
	Logging   LoggingConfig   `toml:"logging"`
}

type HostConfig struct {
	Dial     string `toml:"dial"`
	Listen   string `toml:"listen"`
	PageSize int    `toml:"page_size"`
}

type ClipboardConfig struct {
	ChunkSize   int `toml:"chunk_size"`
	FlashMillis int `toml:"flash_millis"`
}

type UIConfig struct {
	ToastMillis    int    `toml:"toast_millis"`
	Placeholder    string `toml:"placeholder"`
	MaxColumnWidth int    `toml:"max_column_width"`
}

type KeyConfig struct {
	EditMode   string `toml:"edit_mode"`
	ToggleView string `toml:"toggle_view"`
	SelectAll  string `toml:"select_all"`
	Copy       string `toml:"copy"`
	Undo       string `toml:"undo"`
	Redo       string `toml:"redo"`
}

type LoggingConfig struct {
	Level   string        `toml:"level"`
	DevFile DevFileConfig `toml:"dev_file"`
}

type DevFileConfig struct {
	Enabled bool   `toml:"enabled"`
	Dir     string `toml:"dir"`
}

func Default(listenAddr string) Config {
	return Config{
		Host: HostConfig{
			Dial:     "",
			Listen:   listenAddr,
			PageSize: 500,
		},
		Clipboard: ClipboardConfig{
			ChunkSize:   2048,
			FlashMillis: 350,
		},
		UI: UIConfig{
			ToastMillis:    2500,
			Placeholder:    "empty table",
			MaxColumnWidth: 32,
		},
		Logging: LoggingConfig{
			Level: "info",
			DevFile: DevFileConfig{
				Enabled: false,
				Dir:     "",
			},
		},
	}
}

func Load(path string, defaults Config) (Config, error) {
	cfg := defaults
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if len(content) == 0 {
		return cfg, nil
	}

	if err := toml.Unmarshal(content, &cfg); err != nil {
		return Config{}, fmt.Errorf("decode toml: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c Config) Validate() error {
	if c.Host.PageSize <= 0 {
		return errors.New("host.page_size must be > 0")
	}
	if c.Clipboard.ChunkSize <= 0 {
		return errors.New("clipboard.chunk_size must be > 0")
	}
	if c.Clipboard.FlashMillis < 0 {
		return errors.New("clipboard.flash_millis must be >= 0")
	}
	if c.UI.ToastMillis < 0 {
		return errors.New("ui.toast_millis must be >= 0")
	}
	if c.UI.MaxColumnWidth <= 0 {
		return errors.New("ui.max_column_width must be > 0")
	}

	level := strings.TrimSpace(strings.ToLower(c.Logging.Level))
	if level != "" && !slices.Contains([]string{"debug", "info", "warn", "error"}, level) {
		return fmt.Errorf("invalid logging.level: %q", c.Logging.Level)
	}
	if c.Logging.DevFile.Enabled && strings.TrimSpace(c.Logging.DevFile.Dir) == "" {
		return errors.New("logging.dev_file.dir is required when dev file logging is enabled")
	}

	return nil
}

func EnsureConfigDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
