package tui

import (
	"time"

	charmLog "github.com/charmbracelet/log"
)

type Option func(*Model)

// WithClipboardChunkSize bounds how many cells the copy task processes
// between cooperative yields.
func WithClipboardChunkSize(size int) Option {
	return func(m *Model) {
		if size > 0 {
			m.chunkSize = size
		}
	}
}

// WithCopyFlash sets how long copied cells stay highlighted.
func WithCopyFlash(d time.Duration) Option {
	return func(m *Model) {
		if d > 0 {
			m.flashFor = d
		}
	}
}

// WithToastDuration sets how long transient status toasts stay visible.
func WithToastDuration(d time.Duration) Option {
	return func(m *Model) {
		if d > 0 {
			m.toastFor = d
		}
	}
}

// WithPlaceholder sets the text shown while no table has arrived.
func WithPlaceholder(text string) Option {
	return func(m *Model) {
		if text != "" {
			m.placeholder = text
		}
	}
}

// WithMaxColumnWidth caps rendered column width.
func WithMaxColumnWidth(width int) Option {
	return func(m *Model) {
		if width > 0 {
			m.maxColWidth = width
		}
	}
}

// WithKeyOverrides rebinds the configurable view actions.
func WithKeyOverrides(cfg KeyConfig) Option {
	return func(m *Model) {
		m.keys.applyConfig(cfg)
	}
}

// WithLogger routes model diagnostics to a runtime logger.
func WithLogger(logger *charmLog.Logger) Option {
	return func(m *Model) {
		if logger != nil {
			m.logger = logger
		}
	}
}
