package common

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/hylla/tabula/internal/adapters/host"
	"github.com/hylla/tabula/internal/adapters/storage/sqlite"
)

// newTestService opens one in-memory repository seeded with a towns sheet.
func newTestService(t *testing.T) *RepositoryService {
	t.Helper()
	repo, err := sqlite.OpenInMemory()
	if err != nil {
		t.Fatalf("OpenInMemory() error = %v", err)
	}
	t.Cleanup(func() {
		if err := repo.Close(); err != nil {
			t.Errorf("Close() error = %v", err)
		}
	})

	sheet := host.Sheet{
		Name:   "towns",
		Header: []string{"name", "population"},
		Rows: [][]string{
			{"Alvesta", "8017"},
			{"Vislanda", "1756"},
		},
	}
	csvText := "name,population\nAlvesta,8017\nVislanda,1756\n"
	if err := repo.SaveSheet(context.Background(), sheet, csvText); err != nil {
		t.Fatalf("SaveSheet() error = %v", err)
	}
	return NewRepositoryService(repo)
}

// TestRepositoryService_ListSheets verifies behavior for the covered scenario.
func TestRepositoryService_ListSheets(t *testing.T) {
	svc := newTestService(t)
	summaries, err := svc.ListSheets(context.Background())
	if err != nil {
		t.Fatalf("ListSheets() error = %v", err)
	}
	if len(summaries) != 1 {
		t.Fatalf("len(summaries) = %d, want 1", len(summaries))
	}
	got := summaries[0]
	if got.Name != "towns" || got.Rows != 2 || got.Cols != 2 {
		t.Fatalf("summary = %+v, want towns 2x2", got)
	}
}

// TestRepositoryService_SheetCSVRoundTrip verifies behavior for the covered scenario.
func TestRepositoryService_SheetCSVRoundTrip(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	csvText, err := svc.SheetCSV(ctx, "towns")
	if err != nil {
		t.Fatalf("SheetCSV() error = %v", err)
	}
	if !strings.HasPrefix(csvText, "name,population\n") {
		t.Fatalf("expected header-first csv, got %q", csvText)
	}

	updated := "name,population\nAlvesta,8020\nVislanda,1756\n"
	if err := svc.SaveSheetCSV(ctx, "towns", updated); err != nil {
		t.Fatalf("SaveSheetCSV() error = %v", err)
	}
	csvText, err = svc.SheetCSV(ctx, "towns")
	if err != nil {
		t.Fatalf("SheetCSV() after save error = %v", err)
	}
	if !strings.Contains(csvText, "Alvesta,8020") {
		t.Fatalf("save did not stick: %q", csvText)
	}
}

// TestRepositoryService_SaveRejectsInvalidDocument verifies behavior for the covered scenario.
func TestRepositoryService_SaveRejectsInvalidDocument(t *testing.T) {
	svc := newTestService(t)
	err := svc.SaveSheetCSV(context.Background(), "towns", "\"unterminated")
	if !errors.Is(err, ErrInvalidDocument) {
		t.Fatalf("SaveSheetCSV() error = %v, want ErrInvalidDocument", err)
	}
}

// TestRepositoryService_Revisions verifies behavior for the covered scenario.
func TestRepositoryService_Revisions(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	if err := svc.SaveSheetCSV(ctx, "towns", "name,population\nAlvesta,8020\n"); err != nil {
		t.Fatalf("SaveSheetCSV() error = %v", err)
	}
	revisions, err := svc.SheetRevisions(ctx, "towns")
	if err != nil {
		t.Fatalf("SheetRevisions() error = %v", err)
	}
	if len(revisions) != 2 {
		t.Fatalf("len(revisions) = %d, want 2", len(revisions))
	}

	// Newest first: the last save is the first listed revision.
	csvText, err := svc.RevisionCSV(ctx, revisions[0].ID)
	if err != nil {
		t.Fatalf("RevisionCSV() error = %v", err)
	}
	if !strings.Contains(csvText, "Alvesta,8020") {
		t.Fatalf("unexpected newest revision: %q", csvText)
	}
}

// TestRepositoryService_NotFoundSentinels verifies behavior for the covered scenario.
func TestRepositoryService_NotFoundSentinels(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	if _, err := svc.SheetCSV(ctx, "missing"); !errors.Is(err, ErrSheetNotFound) {
		t.Fatalf("SheetCSV(missing) error = %v, want ErrSheetNotFound", err)
	}
	if _, err := svc.SheetRevisions(ctx, "missing"); !errors.Is(err, ErrSheetNotFound) {
		t.Fatalf("SheetRevisions(missing) error = %v, want ErrSheetNotFound", err)
	}
	if _, err := svc.RevisionCSV(ctx, "no-such-revision"); !errors.Is(err, ErrRevisionNotFound) {
		t.Fatalf("RevisionCSV(missing) error = %v, want ErrRevisionNotFound", err)
	}
}
