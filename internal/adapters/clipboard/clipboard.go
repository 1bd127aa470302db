// Package clipboard writes selection text to the system clipboard with a
// fallback path for terminals where no native clipboard is reachable.
package clipboard

import (
	"fmt"
	"io"

	atotto "github.com/atotto/clipboard"
	"github.com/aymanbagabas/go-osc52/v2"
)

// SystemWriter tries the native clipboard first and falls back to an
// OSC 52 escape sequence written to the terminal when the native path is
// unavailable or rejects the write.
type SystemWriter struct {
	term    io.Writer
	primary func(text string) error
}

// NewSystemWriter constructs a new value for this package. term receives
// the OSC 52 fallback sequence and is typically the controlling terminal.
func NewSystemWriter(term io.Writer) *SystemWriter {
	return &SystemWriter{
		term:    term,
		primary: atotto.WriteAll,
	}
}

// Write places text on the clipboard. The primary failure is swallowed
// when the fallback succeeds; only a failure of both paths is returned.
func (w *SystemWriter) Write(text string) error {
	primaryErr := w.primary(text)
	if primaryErr == nil {
		return nil
	}
	if w.term == nil {
		return fmt.Errorf("native clipboard write: %w", primaryErr)
	}
	if _, err := osc52.New(text).WriteTo(w.term); err != nil {
		return fmt.Errorf("osc52 fallback after native failure (%v): %w", primaryErr, err)
	}
	return nil
}
