package common

import (
	"context"
	"errors"
	"fmt"

	"github.com/hylla/tabula/internal/adapters/host"
	"github.com/hylla/tabula/internal/adapters/storage/sqlite"
	"github.com/hylla/tabula/internal/app"
)

// RepositoryService adapts the sqlite repository to the SheetService port.
type RepositoryService struct {
	repo *sqlite.Repository
}

// NewRepositoryService constructs a new value for this package.
func NewRepositoryService(repo *sqlite.Repository) *RepositoryService {
	return &RepositoryService{repo: repo}
}

// ListSheets reports every stored sheet with its current dimensions.
func (s *RepositoryService) ListSheets(ctx context.Context) ([]SheetSummary, error) {
	names, err := s.repo.ListSheets(ctx)
	if err != nil {
		return nil, fmt.Errorf("list sheets: %w", err)
	}
	summaries := make([]SheetSummary, 0, len(names))
	for _, name := range names {
		sheet, err := s.repo.LoadSheet(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("load sheet %q: %w", name, err)
		}
		summaries = append(summaries, SheetSummary{
			Name: sheet.Name,
			Rows: len(sheet.Rows),
			Cols: len(sheet.Header),
		})
	}
	return summaries, nil
}

// SheetCSV serializes one stored sheet, header row first.
func (s *RepositoryService) SheetCSV(ctx context.Context, name string) (string, error) {
	sheet, err := s.repo.LoadSheet(ctx, name)
	if err != nil {
		return "", mapStoreError(err)
	}
	records := make([][]string, 0, len(sheet.Rows)+1)
	records = append(records, sheet.Header)
	records = append(records, sheet.Rows...)
	csvText, err := app.MarshalCSV(records)
	if err != nil {
		return "", fmt.Errorf("serialize sheet %q: %w", name, err)
	}
	return csvText, nil
}

// SaveSheetCSV parses the document and upserts it under the given name.
func (s *RepositoryService) SaveSheetCSV(ctx context.Context, name, csvText string) error {
	header, rows, err := app.UnmarshalCSV(csvText)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	sheet := host.Sheet{Name: name, Header: header, Rows: rows}
	if err := s.repo.SaveSheet(ctx, sheet, csvText); err != nil {
		return fmt.Errorf("save sheet %q: %w", name, err)
	}
	return nil
}

// SheetRevisions reports retained revisions for one sheet, newest first.
func (s *RepositoryService) SheetRevisions(ctx context.Context, name string) ([]RevisionSummary, error) {
	if _, err := s.repo.LoadSheet(ctx, name); err != nil {
		return nil, mapStoreError(err)
	}
	revisions, err := s.repo.Revisions(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("list revisions for %q: %w", name, err)
	}
	summaries := make([]RevisionSummary, 0, len(revisions))
	for _, rev := range revisions {
		summaries = append(summaries, RevisionSummary{
			ID:        rev.ID,
			CreatedAt: rev.SavedAt,
		})
	}
	return summaries, nil
}

// RevisionCSV reads the serialized document stored for one revision.
func (s *RepositoryService) RevisionCSV(ctx context.Context, revisionID string) (string, error) {
	csvText, err := s.repo.RevisionCSV(ctx, revisionID)
	if err != nil {
		return "", mapStoreError(err)
	}
	return csvText, nil
}

// mapStoreError translates repository sentinels into transport-facing ones.
func mapStoreError(err error) error {
	switch {
	case errors.Is(err, sqlite.ErrSheetNotFound):
		return fmt.Errorf("%w: %v", ErrSheetNotFound, err)
	case errors.Is(err, sqlite.ErrRevisionNotFound):
		return fmt.Errorf("%w: %v", ErrRevisionNotFound, err)
	default:
		return err
	}
}
