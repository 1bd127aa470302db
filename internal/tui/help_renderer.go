package tui

import (
	"strings"

	"github.com/charmbracelet/glamour"
)

// helpRenderer produces the ANSI-styled help overlay text. The overlay
// content is static, so the rendered output is cached per wrap width.
type helpRenderer struct {
	width    int
	rendered string
}

// render returns the help overlay wrapped at the requested width, falling
// back to the raw markdown when styling fails.
func (r *helpRenderer) render(width int) string {
	wrapWidth := width
	if wrapWidth < 24 {
		wrapWidth = 24
	}
	if r.rendered != "" && r.width == wrapWidth {
		return r.rendered
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(wrapWidth),
	)
	if err != nil {
		return helpMarkdown
	}
	out, err := renderer.Render(helpMarkdown)
	if err != nil {
		return helpMarkdown
	}
	r.rendered = strings.TrimRight(out, "\n")
	r.width = wrapWidth
	return r.rendered
}
