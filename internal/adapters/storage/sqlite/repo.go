// Package sqlite persists sheets and their save revisions in a local
// SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hylla/tabula/internal/adapters/host"
	"github.com/hylla/tabula/internal/app"
	_ "modernc.org/sqlite"
)

// driverName defines a package constant value.
const driverName = "sqlite"

// RevisionLimit bounds how many save revisions are retained per sheet.
const RevisionLimit = 50

// ErrSheetNotFound reports a lookup for a sheet the database does not hold.
var ErrSheetNotFound = errors.New("sheet not found")

// ErrRevisionNotFound reports a lookup for a revision the database does not hold.
var ErrRevisionNotFound = errors.New("revision not found")

// Repository represents repository data used by this package.
type Repository struct {
	db *sql.DB
}

// Revision describes one retained save of a sheet.
type Revision struct {
	ID      string
	SheetID string
	SavedAt time.Time
}

// Open opens the requested operation.
func Open(path string) (*Repository, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("sqlite path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create sqlite dir: %w", err)
	}
	db, err := sql.Open(driverName, path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	repo := &Repository{db: db}
	if err := repo.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return repo, nil
}

// OpenInMemory opens in memory.
func OpenInMemory() (*Repository, error) {
	db, err := sql.Open(driverName, "file::memory:?cache=shared")
	if err != nil {
		return nil, fmt.Errorf("open sqlite memory: %w", err)
	}
	repo := &Repository{db: db}
	if err := repo.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return repo, nil
}

// Close closes the requested operation.
func (r *Repository) Close() error {
	return r.db.Close()
}

// migrate handles migrate.
func (r *Repository) migrate(ctx context.Context) error {
	stmts := []string{
		`PRAGMA foreign_keys = ON;`,
		`CREATE TABLE IF NOT EXISTS sheets (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL UNIQUE,
			header_json TEXT NOT NULL DEFAULT '[]',
			rows_json TEXT NOT NULL DEFAULT '[]',
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS revisions (
			id TEXT PRIMARY KEY,
			sheet_id TEXT NOT NULL,
			csv_text TEXT NOT NULL,
			created_at TEXT NOT NULL,
			FOREIGN KEY(sheet_id) REFERENCES sheets(id) ON DELETE CASCADE
		);`,
		`CREATE INDEX IF NOT EXISTS idx_revisions_sheet_created_at ON revisions(sheet_id, created_at DESC, id DESC);`,
	}
	for _, stmt := range stmts {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate sqlite: %w", err)
		}
	}
	return nil
}

// LoadSheet reads one sheet by name.
func (r *Repository) LoadSheet(ctx context.Context, name string) (host.Sheet, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT name, header_json, rows_json FROM sheets WHERE name = ?
	`, name)

	var headerJSON, rowsJSON string
	sheet := host.Sheet{}
	if err := row.Scan(&sheet.Name, &headerJSON, &rowsJSON); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return host.Sheet{}, ErrSheetNotFound
		}
		return host.Sheet{}, fmt.Errorf("load sheet: %w", err)
	}
	if err := json.Unmarshal([]byte(headerJSON), &sheet.Header); err != nil {
		return host.Sheet{}, fmt.Errorf("decode sheet header: %w", err)
	}
	if err := json.Unmarshal([]byte(rowsJSON), &sheet.Rows); err != nil {
		return host.Sheet{}, fmt.Errorf("decode sheet rows: %w", err)
	}
	return sheet, nil
}

// SaveSheet upserts sheet content and retains the serialized document
// as a revision, pruning old revisions past the retention limit.
func (r *Repository) SaveSheet(ctx context.Context, sheet host.Sheet, csvText string) (err error) {
	headerJSON, err := json.Marshal(sheet.Header)
	if err != nil {
		return err
	}
	rowsJSON, err := json.Marshal(sheet.Rows)
	if err != nil {
		return err
	}
	now := ts(time.Now().UTC())

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	sheetID, err := sheetIDByName(ctx, tx, sheet.Name)
	if errors.Is(err, sql.ErrNoRows) {
		sheetID = uuid.NewString()
		_, err = tx.ExecContext(ctx, `
			INSERT INTO sheets(id, name, header_json, rows_json, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?)
		`, sheetID, sheet.Name, string(headerJSON), string(rowsJSON), now, now)
	} else if err == nil {
		_, err = tx.ExecContext(ctx, `
			UPDATE sheets SET header_json = ?, rows_json = ?, updated_at = ? WHERE id = ?
		`, string(headerJSON), string(rowsJSON), now, sheetID)
	}
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO revisions(id, sheet_id, csv_text, created_at)
		VALUES (?, ?, ?, ?)
	`, uuid.NewString(), sheetID, csvText, now)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `
		DELETE FROM revisions WHERE sheet_id = ? AND id NOT IN (
			SELECT id FROM revisions WHERE sheet_id = ?
			ORDER BY created_at DESC, id DESC LIMIT ?
		)
	`, sheetID, sheetID, RevisionLimit)
	if err != nil {
		return err
	}

	err = tx.Commit()
	return err
}

// ListSheets reports the names of all stored sheets in name order.
func (r *Repository) ListSheets(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT name FROM sheets ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("list sheets: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan sheet name: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// Revisions reports retained revisions for a sheet, newest first.
func (r *Repository) Revisions(ctx context.Context, name string) ([]Revision, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT rev.id, rev.sheet_id, rev.created_at
		FROM revisions rev JOIN sheets s ON s.id = rev.sheet_id
		WHERE s.name = ?
		ORDER BY rev.created_at DESC, rev.id DESC
	`, name)
	if err != nil {
		return nil, fmt.Errorf("list revisions: %w", err)
	}
	defer rows.Close()

	var revisions []Revision
	for rows.Next() {
		var rev Revision
		var createdAt string
		if err := rows.Scan(&rev.ID, &rev.SheetID, &createdAt); err != nil {
			return nil, fmt.Errorf("scan revision: %w", err)
		}
		rev.SavedAt, err = time.Parse(time.RFC3339Nano, createdAt)
		if err != nil {
			return nil, fmt.Errorf("parse revision time: %w", err)
		}
		revisions = append(revisions, rev)
	}
	return revisions, rows.Err()
}

// RevisionCSV reads the serialized document stored for one revision.
func (r *Repository) RevisionCSV(ctx context.Context, revisionID string) (string, error) {
	row := r.db.QueryRowContext(ctx, `SELECT csv_text FROM revisions WHERE id = ?`, revisionID)
	var csvText string
	if err := row.Scan(&csvText); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", fmt.Errorf("revision %s: %w", revisionID, ErrRevisionNotFound)
		}
		return "", fmt.Errorf("load revision: %w", err)
	}
	return csvText, nil
}

// sheetIDByName resolves the stored id for a sheet name.
func sheetIDByName(ctx context.Context, tx *sql.Tx, name string) (string, error) {
	var id string
	err := tx.QueryRowContext(ctx, `SELECT id FROM sheets WHERE name = ?`, name).Scan(&id)
	return id, err
}

// ts formats timestamps the way every table stores them.
func ts(t time.Time) string {
	return t.Format(time.RFC3339Nano)
}

// SheetStore binds a repository to a single named sheet so it can stand
// in wherever loading and saving one document is expected.
type SheetStore struct {
	repo *Repository
	name string
}

// NewSheetStore constructs a new value for this package.
func NewSheetStore(repo *Repository, name string) *SheetStore {
	return &SheetStore{repo: repo, name: name}
}

// Load reads the bound sheet. A sheet the database does not hold yet
// loads as an empty document under the bound name.
func (s *SheetStore) Load(ctx context.Context) (host.Sheet, error) {
	sheet, err := s.repo.LoadSheet(ctx, s.name)
	if errors.Is(err, ErrSheetNotFound) {
		return host.Sheet{Name: s.name}, nil
	}
	return sheet, err
}

// Save parses the serialized document and upserts it under the bound name.
func (s *SheetStore) Save(ctx context.Context, csvText string) error {
	header, rows, err := app.UnmarshalCSV(csvText)
	if err != nil {
		return fmt.Errorf("parse saved document: %w", err)
	}
	sheet := host.Sheet{Name: s.name, Header: header, Rows: rows}
	return s.repo.SaveSheet(ctx, sheet, csvText)
}
