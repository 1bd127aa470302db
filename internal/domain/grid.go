package domain

import "strings"

// Grid is an in-memory rectangular table of text cells. It is the single
// source of truth for grid content; rendering surfaces read through it
// instead of owning cell text themselves.
type Grid struct {
	header []string
	cells  [][]string
}

// NewGrid constructs a new value for this package. Ragged rows are padded to
// the widest of the header and all rows.
func NewGrid(header []string, rows [][]string) *Grid {
	g := &Grid{}
	g.Reset(header, rows)
	return g
}

// Reset replaces the entire header and body content.
func (g *Grid) Reset(header []string, rows [][]string) {
	width := len(header)
	for _, row := range rows {
		if len(row) > width {
			width = len(row)
		}
	}
	g.header = padRow(header, width)
	g.cells = make([][]string, 0, len(rows))
	for _, row := range rows {
		g.cells = append(g.cells, padRow(row, width))
	}
}

// AppendRows extends the body with additional rows, padded to the grid width.
func (g *Grid) AppendRows(rows [][]string) {
	width := g.ColCount()
	for _, row := range rows {
		if len(row) > width {
			width = len(row)
		}
	}
	if width > g.ColCount() {
		g.header = padRow(g.header, width)
		for idx := range g.cells {
			g.cells[idx] = padRow(g.cells[idx], width)
		}
	}
	for _, row := range rows {
		g.cells = append(g.cells, padRow(row, width))
	}
}

// RowCount returns the number of data rows.
func (g *Grid) RowCount() int {
	return len(g.cells)
}

// ColCount returns the number of columns.
func (g *Grid) ColCount() int {
	return len(g.header)
}

// Header returns the header text for a column, or "" when out of range.
func (g *Grid) Header(col int) string {
	if col < 0 || col >= len(g.header) {
		return ""
	}
	return g.header[col]
}

// Headers returns a copy of the header row.
func (g *Grid) Headers() []string {
	return append([]string(nil), g.header...)
}

// GetCell returns the text of one cell, or "" when out of range.
func (g *Grid) GetCell(row, col int) string {
	if row < 0 || row >= len(g.cells) || col < 0 || col >= len(g.header) {
		return ""
	}
	return g.cells[row][col]
}

// SetCell replaces the text of one cell. Out-of-range coordinates no-op.
func (g *Grid) SetCell(row, col int, text string) {
	if row < 0 || row >= len(g.cells) || col < 0 || col >= len(g.header) {
		return
	}
	g.cells[row][col] = text
}

// Snapshot returns a deep copy of all data rows.
func (g *Grid) Snapshot() [][]string {
	out := make([][]string, len(g.cells))
	for idx, row := range g.cells {
		out[idx] = append([]string(nil), row...)
	}
	return out
}

// Restore replaces all cell text from a snapshot sized like the grid.
// Rows or cells beyond the current bounds are ignored.
func (g *Grid) Restore(snapshot [][]string) {
	for rowIdx := range g.cells {
		if rowIdx >= len(snapshot) {
			break
		}
		for colIdx := range g.cells[rowIdx] {
			if colIdx >= len(snapshot[rowIdx]) {
				break
			}
			g.cells[rowIdx][colIdx] = snapshot[rowIdx][colIdx]
		}
	}
}

// IsBlank reports whether a cell holds only whitespace.
func (g *Grid) IsBlank(row, col int) bool {
	return strings.TrimSpace(g.GetCell(row, col)) == ""
}

// SnapshotsEqual reports deep equality of two grid snapshots.
func SnapshotsEqual(a, b [][]string) bool {
	if len(a) != len(b) {
		return false
	}
	for idx := range a {
		if len(a[idx]) != len(b[idx]) {
			return false
		}
		for col := range a[idx] {
			if a[idx][col] != b[idx][col] {
				return false
			}
		}
	}
	return true
}

// padRow copies a row padded with empty cells up to width.
func padRow(row []string, width int) []string {
	out := make([]string, width)
	copy(out, row)
	return out
}
