package csvfile

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

// TestStoreRoundTrip verifies behavior for the covered scenario.
func TestStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "towns.csv")
	store := NewStore(path)

	if err := store.Save(context.Background(), "name,pop\nYstad,32000\n"); err != nil {
		t.Fatalf("Save: %v", err)
	}
	sheet, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if sheet.Name != "towns" {
		t.Fatalf("sheet name = %q, want towns", sheet.Name)
	}
	if len(sheet.Header) != 2 || sheet.Header[0] != "name" {
		t.Fatalf("header = %v", sheet.Header)
	}
	if len(sheet.Rows) != 1 || sheet.Rows[0][0] != "Ystad" {
		t.Fatalf("rows = %v", sheet.Rows)
	}
}

// TestStoreLoadMissingFile verifies behavior for the covered scenario.
func TestStoreLoadMissingFile(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "absent.csv"))
	sheet, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if sheet.Name != "absent" || len(sheet.Header) != 0 || len(sheet.Rows) != 0 {
		t.Fatalf("sheet = %+v, want empty", sheet)
	}
}

// TestStoreSaveLeavesNoStagingFiles verifies behavior for the covered scenario.
func TestStoreSaveLeavesNoStagingFiles(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(filepath.Join(dir, "data.csv"))
	if err := store.Save(context.Background(), "a\n1\n"); err != nil {
		t.Fatalf("Save: %v", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != "data.csv" {
		t.Fatalf("directory contents = %v", entries)
	}
}
