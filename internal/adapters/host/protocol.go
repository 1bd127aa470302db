// Package host implements the asynchronous message channel between the
// grid view and its host process: newline-delimited JSON envelopes over
// any stream transport.
package host

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Command names one protocol message type.
type Command string

// Inbound (host → controller) commands.
const (
	CommandInitTable  Command = "initTable"
	CommandAppendRows Command = "appendRows"
	CommandSaveResult Command = "saveResult"
)

// Outbound (controller → host) commands.
const (
	CommandWebviewReady Command = "webviewReady"
	CommandToggleView   Command = "toggleView"
	CommandSaveCSV      Command = "saveCsv"
)

// Envelope is one protocol frame. Only the fields relevant to the command
// are populated; the rest stay at their zero values and are omitted on the
// wire where possible.
type Envelope struct {
	ID      string  `json:"id,omitempty"`
	Command Command `json:"command"`

	// initTable / appendRows payload.
	Header []string   `json:"header,omitempty"`
	Rows   [][]string `json:"rows,omitempty"`

	// saveResult payload.
	OK     bool   `json:"ok"`
	Reason string `json:"reason,omitempty"`

	// toggleView payload.
	IsTableView bool `json:"isTableView"`

	// saveCsv payload.
	Text string `json:"text,omitempty"`
}

// NewEnvelope constructs an envelope with a fresh correlation id.
func NewEnvelope(cmd Command) Envelope {
	return Envelope{ID: uuid.NewString(), Command: cmd}
}

// Validate checks that the envelope names a known command with a usable
// payload shape.
func (e Envelope) Validate() error {
	if strings.TrimSpace(string(e.Command)) == "" {
		return fmt.Errorf("missing command")
	}
	switch e.Command {
	case CommandInitTable:
		if len(e.Header) == 0 && len(e.Rows) == 0 {
			return fmt.Errorf("initTable frame carries no table content")
		}
	case CommandAppendRows:
		if len(e.Rows) == 0 {
			return fmt.Errorf("appendRows frame carries no rows")
		}
	case CommandSaveResult, CommandWebviewReady, CommandToggleView:
	case CommandSaveCSV:
		// An empty document is a legal save payload.
	default:
		return fmt.Errorf("unknown command %q", e.Command)
	}
	return nil
}
