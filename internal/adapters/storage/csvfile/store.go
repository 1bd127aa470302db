// Package csvfile persists a single sheet as a CSV document on disk.
package csvfile

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hylla/tabula/internal/adapters/host"
)

// Store reads and writes one sheet backed by a CSV file.
type Store struct {
	path string
}

// NewStore constructs a new value for this package.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path reports the backing file location.
func (s *Store) Path() string {
	return s.path
}

// Load reads the backing file and parses it into a sheet. A missing
// file yields an empty sheet rather than an error so a fresh document
// can be edited and saved into place.
func (s *Store) Load(_ context.Context) (host.Sheet, error) {
	name := sheetName(s.path)
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return host.Sheet{Name: name}, nil
		}
		return host.Sheet{}, fmt.Errorf("read csv file: %w", err)
	}
	sheet, err := host.SheetFromCSV(name, string(data))
	if err != nil {
		return host.Sheet{}, fmt.Errorf("parse %s: %w", s.path, err)
	}
	return sheet, nil
}

// Save writes the serialized document atomically, staging it in a
// temporary file next to the target and renaming it into place.
func (s *Store) Save(_ context.Context, csvText string) error {
	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".tabula-*.csv")
	if err != nil {
		return fmt.Errorf("stage csv file: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.WriteString(csvText); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("write csv file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("flush csv file: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("replace csv file: %w", err)
	}
	return nil
}

func sheetName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
