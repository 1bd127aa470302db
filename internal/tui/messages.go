package tui

import (
	tea "charm.land/bubbletea/v2"

	"github.com/hylla/tabula/internal/adapters/host"
	"github.com/hylla/tabula/internal/app"
)

// TableInitMsg replaces the whole grid with fresh host content.
type TableInitMsg struct {
	Header []string
	Rows   [][]string
}

// RowsAppendedMsg extends the grid with one page of host rows.
type RowsAppendedMsg struct {
	Rows [][]string
}

// SaveResultMsg completes an in-flight save round trip.
type SaveResultMsg struct {
	OK     bool
	Reason string
}

// HostClosedMsg reports that the host channel ended.
type HostClosedMsg struct {
	Err error
}

// MsgFromEnvelope translates one inbound host frame into a tea message.
// Frames the controller does not consume report ok=false.
func MsgFromEnvelope(env host.Envelope) (tea.Msg, bool) {
	switch env.Command {
	case host.CommandInitTable:
		return TableInitMsg{Header: env.Header, Rows: env.Rows}, true
	case host.CommandAppendRows:
		return RowsAppendedMsg{Rows: env.Rows}, true
	case host.CommandSaveResult:
		return SaveResultMsg{OK: env.OK, Reason: env.Reason}, true
	default:
		return nil, false
	}
}

// copyDoneMsg carries the finished clipboard copy back to the model.
type copyDoneMsg struct {
	result app.CopyResult
	err    error
}

// flashExpiredMsg clears the copied-cell highlight for one flash cycle.
type flashExpiredMsg struct {
	seq int
}

// toastExpiredMsg clears the transient status toast for one toast cycle.
type toastExpiredMsg struct {
	seq int
}

// hostErrorMsg reports a failed outbound host send.
type hostErrorMsg struct {
	err error
}
