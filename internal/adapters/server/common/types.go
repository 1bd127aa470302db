// Package common holds the shared service ports and DTOs behind the
// daemon's HTTP and MCP transports.
package common

import (
	"context"
	"errors"
	"time"
)

// ErrSheetNotFound reports a sheet name the store does not hold.
var ErrSheetNotFound = errors.New("sheet not found")

// ErrRevisionNotFound reports a revision id the store does not hold.
var ErrRevisionNotFound = errors.New("revision not found")

// ErrInvalidDocument reports a CSV payload that cannot be parsed.
var ErrInvalidDocument = errors.New("invalid csv document")

// SheetSummary describes one stored sheet for listing surfaces.
type SheetSummary struct {
	Name string `json:"name"`
	Rows int    `json:"rows"`
	Cols int    `json:"cols"`
}

// RevisionSummary describes one stored save revision.
type RevisionSummary struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
}

// SheetService exposes the store operations both transports serve.
type SheetService interface {
	ListSheets(ctx context.Context) ([]SheetSummary, error)
	SheetCSV(ctx context.Context, name string) (string, error)
	SaveSheetCSV(ctx context.Context, name, csvText string) error
	SheetRevisions(ctx context.Context, name string) ([]RevisionSummary, error)
	RevisionCSV(ctx context.Context, revisionID string) (string, error)
}
