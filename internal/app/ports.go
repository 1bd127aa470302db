package app

import "context"

// GridAccess is the grid interface the selection, edit, and serialization
// logic depends on, so all of it stays testable against an in-memory grid
// independent of any rendering surface.
type GridAccess interface {
	GetCell(row, col int) string
	SetCell(row, col int, text string)
	RowCount() int
	ColCount() int
	Snapshot() [][]string
	Restore(snapshot [][]string)
}

// FullGrid extends GridAccess with the header row needed for whole-grid
// serialization.
type FullGrid interface {
	GridAccess
	Headers() []string
}

// Host is the outbound half of the host message channel.
type Host interface {
	Ready() error
	RequestSave(csvText string) error
	RequestToggleView(isTableView bool) error
}

// ClipboardWriter places text on the system clipboard.
type ClipboardWriter interface {
	Write(text string) error
}

// YieldFunc hands control back to the event loop between bounded work
// chunks. Implementations must return promptly and honor ctx cancellation.
type YieldFunc func(ctx context.Context) error
