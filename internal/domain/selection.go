package domain

import (
	"fmt"
	"sort"
)

// Dims exposes grid bounds to the selection engine.
type Dims interface {
	RowCount() int
	ColCount() int
}

// Selection tracks the logical selected-cell set, the active cell, and the
// anchors used for rectangle and header-range extension. The rendered
// highlight state is always derived from Cells(), never tracked separately.
type Selection struct {
	dims Dims

	selected map[Coord]struct{}
	// lastRect holds the cells owned by the most recent rectangle or header
	// range. Shift extension replaces exactly these cells, preserving any
	// ctrl-accumulated cells outside the rectangle.
	lastRect map[Coord]struct{}

	anchor    Coord
	hasAnchor bool
	active    Coord
	hasActive bool

	rowAnchor int
	colAnchor int
	// prevRowAnchor and prevColAnchor remember the anchor a header
	// ctrl-click displaced, so toggling the same header back off restores
	// the original extension point.
	prevRowAnchor int
	prevColAnchor int

	lastDrag    Coord
	hasLastDrag bool
}

// NewSelection constructs a new value for this package.
func NewSelection(dims Dims) *Selection {
	return &Selection{
		dims:          dims,
		selected:      map[Coord]struct{}{},
		lastRect:      map[Coord]struct{}{},
		rowAnchor:     -1,
		colAnchor:     -1,
		prevRowAnchor: -1,
		prevColAnchor: -1,
	}
}

// Clear empties the selection and drops the active cell and anchors.
func (s *Selection) Clear() {
	s.selected = map[Coord]struct{}{}
	s.lastRect = map[Coord]struct{}{}
	s.hasAnchor = false
	s.hasActive = false
	s.rowAnchor = -1
	s.colAnchor = -1
	s.prevRowAnchor = -1
	s.prevColAnchor = -1
	s.hasLastDrag = false
}

// Click selects a single cell, making it the active cell and range anchor.
func (s *Selection) Click(c Coord) {
	if !s.inBounds(c) {
		return
	}
	s.Clear()
	s.selected[c] = struct{}{}
	s.lastRect[c] = struct{}{}
	s.anchor = c
	s.hasAnchor = true
	s.setActive(c)
}

// CtrlClick toggles one cell's membership without clearing others. The
// active cell moves only when the toggle adds the cell.
func (s *Selection) CtrlClick(c Coord) {
	if !s.inBounds(c) {
		return
	}
	if _, ok := s.selected[c]; ok {
		delete(s.selected, c)
		delete(s.lastRect, c)
		return
	}
	s.selected[c] = struct{}{}
	// The toggled cell starts a fresh rectangle; everything selected before
	// it counts as accumulated and survives the next shift extension.
	s.lastRect = map[Coord]struct{}{c: {}}
	s.anchor = c
	s.hasAnchor = true
	s.setActive(c)
}

// ShiftClick extends the rectangle from the current anchor to the clicked
// cell, replacing the previous rectangle while keeping ctrl-accumulated
// cells outside it.
func (s *Selection) ShiftClick(c Coord) {
	if !s.inBounds(c) {
		return
	}
	if !s.hasAnchor {
		s.Click(c)
		return
	}
	s.replaceRect(RectBetween(s.anchor, c).Cells())
	s.setActive(c)
}

// DragTo recomputes the anchor rectangle for a pointer drag. It reports
// whether the selection changed; repeated events for the same cell no-op.
func (s *Selection) DragTo(c Coord) bool {
	if !s.inBounds(c) {
		return false
	}
	if s.hasLastDrag && s.lastDrag == c {
		return false
	}
	s.lastDrag = c
	s.hasLastDrag = true
	if !s.hasAnchor {
		s.Click(c)
		return true
	}
	s.replaceRect(RectBetween(s.anchor, c).Cells())
	s.setActive(c)
	return true
}

// EndDrag forgets the last drag cell so the next drag recomputes immediately.
func (s *Selection) EndDrag() {
	s.hasLastDrag = false
}

// RowClick selects every cell in one row.
func (s *Selection) RowClick(row int) {
	if !s.rowInBounds(row) {
		return
	}
	s.Clear()
	cells := s.rowCells(row, row)
	s.replaceRect(cells)
	s.rowAnchor = row
	s.anchor = Coord{Row: row}
	s.hasAnchor = true
	s.setActive(Coord{Row: row})
}

// RowCtrlClick toggles a single whole row without clearing other cells.
func (s *Selection) RowCtrlClick(row int) {
	if !s.rowInBounds(row) {
		return
	}
	cells := s.rowCells(row, row)
	if s.allSelected(cells) {
		for _, c := range cells {
			delete(s.selected, c)
			delete(s.lastRect, c)
		}
		if row == s.rowAnchor {
			s.rowAnchor = s.prevRowAnchor
			s.prevRowAnchor = -1
			if s.rowAnchor >= 0 {
				s.anchor = Coord{Row: s.rowAnchor}
				s.hasAnchor = true
			}
		}
		return
	}
	for _, c := range cells {
		s.selected[c] = struct{}{}
	}
	s.lastRect = make(map[Coord]struct{}, len(cells))
	for _, c := range cells {
		s.lastRect[c] = struct{}{}
	}
	s.prevRowAnchor = s.rowAnchor
	s.rowAnchor = row
	s.anchor = Coord{Row: row}
	s.hasAnchor = true
	s.setActive(Coord{Row: row})
}

// RowShiftClick extends a contiguous whole-row range from the last selected
// row index, replacing the previous rectangle.
func (s *Selection) RowShiftClick(row int) {
	if !s.rowInBounds(row) {
		return
	}
	if s.rowAnchor < 0 {
		s.RowClick(row)
		return
	}
	s.replaceRect(s.rowCells(s.rowAnchor, row))
	s.setActive(Coord{Row: row})
}

// ColClick selects every cell in one column.
func (s *Selection) ColClick(col int) {
	if !s.colInBounds(col) {
		return
	}
	s.Clear()
	s.replaceRect(s.colCells(col, col))
	s.colAnchor = col
	s.anchor = Coord{Col: col}
	s.hasAnchor = true
	s.setActive(Coord{Col: col})
}

// ColCtrlClick toggles a single whole column without clearing other cells.
func (s *Selection) ColCtrlClick(col int) {
	if !s.colInBounds(col) {
		return
	}
	cells := s.colCells(col, col)
	if s.allSelected(cells) {
		for _, c := range cells {
			delete(s.selected, c)
			delete(s.lastRect, c)
		}
		if col == s.colAnchor {
			s.colAnchor = s.prevColAnchor
			s.prevColAnchor = -1
			if s.colAnchor >= 0 {
				s.anchor = Coord{Col: s.colAnchor}
				s.hasAnchor = true
			}
		}
		return
	}
	for _, c := range cells {
		s.selected[c] = struct{}{}
	}
	s.lastRect = make(map[Coord]struct{}, len(cells))
	for _, c := range cells {
		s.lastRect[c] = struct{}{}
	}
	s.prevColAnchor = s.colAnchor
	s.colAnchor = col
	s.anchor = Coord{Col: col}
	s.hasAnchor = true
	s.setActive(Coord{Col: col})
}

// ColShiftClick extends a contiguous whole-column range from the last
// selected column index, replacing the previous rectangle.
func (s *Selection) ColShiftClick(col int) {
	if !s.colInBounds(col) {
		return
	}
	if s.colAnchor < 0 {
		s.ColClick(col)
		return
	}
	s.replaceRect(s.colCells(s.colAnchor, col))
	s.setActive(Coord{Col: col})
}

// Move shifts the active cell by a row/column delta, clamped to the grid
// edges. With extend it grows the anchor rectangle; without it the move
// behaves like a plain click on the target cell. With no active cell the
// first move selects the origin.
func (s *Selection) Move(dRow, dCol int, extend bool) {
	rows, cols := s.dims.RowCount(), s.dims.ColCount()
	if rows == 0 || cols == 0 {
		return
	}
	if !s.hasActive {
		s.Click(Coord{})
		return
	}
	from := s.active
	next := Coord{
		Row: clampInt(from.Row+dRow, 0, rows-1),
		Col: clampInt(from.Col+dCol, 0, cols-1),
	}
	if extend {
		s.ShiftClick(next)
		return
	}
	s.Click(next)
}

// SelectAll selects every data cell and makes the first cell active.
func (s *Selection) SelectAll() {
	rows, cols := s.dims.RowCount(), s.dims.ColCount()
	if rows == 0 || cols == 0 {
		return
	}
	s.Clear()
	s.replaceRect(Rect{Top: 0, Left: 0, Bottom: rows - 1, Right: cols - 1}.Cells())
	s.anchor = Coord{}
	s.hasAnchor = true
	s.setActive(Coord{})
}

// Contains reports whether a cell is in the logical selection set.
func (s *Selection) Contains(c Coord) bool {
	_, ok := s.selected[c]
	return ok
}

// Count returns the number of selected cells.
func (s *Selection) Count() int {
	return len(s.selected)
}

// Cells returns the selected coordinates in row-major order.
func (s *Selection) Cells() []Coord {
	out := make([]Coord, 0, len(s.selected))
	for c := range s.selected {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Row != out[j].Row {
			return out[i].Row < out[j].Row
		}
		return out[i].Col < out[j].Col
	})
	return out
}

// Bounds returns the minimal rectangle covering all selected cells.
func (s *Selection) Bounds() (Rect, bool) {
	if len(s.selected) == 0 {
		return Rect{}, false
	}
	first := true
	var r Rect
	for c := range s.selected {
		if first {
			r = Rect{Top: c.Row, Left: c.Col, Bottom: c.Row, Right: c.Col}
			first = false
			continue
		}
		r.Top = min(r.Top, c.Row)
		r.Left = min(r.Left, c.Col)
		r.Bottom = max(r.Bottom, c.Row)
		r.Right = max(r.Right, c.Col)
	}
	return r, true
}

// Summary returns the rows×cols readout shown when more than one cell is
// selected, or "" otherwise.
func (s *Selection) Summary() string {
	if len(s.selected) <= 1 {
		return ""
	}
	bounds, _ := s.Bounds()
	return fmt.Sprintf("%d × %d", bounds.Rows(), bounds.Cols())
}

// Active returns the active cell when one exists.
func (s *Selection) Active() (Coord, bool) {
	return s.active, s.hasActive
}

// Anchor returns the range anchor when one exists.
func (s *Selection) Anchor() (Coord, bool) {
	return s.anchor, s.hasAnchor
}

// replaceRect swaps the previous rectangle's cells for a new rectangle.
func (s *Selection) replaceRect(cells []Coord) {
	for c := range s.lastRect {
		delete(s.selected, c)
	}
	s.lastRect = make(map[Coord]struct{}, len(cells))
	for _, c := range cells {
		s.selected[c] = struct{}{}
		s.lastRect[c] = struct{}{}
	}
}

// setActive marks one cell as the keyboard focus.
func (s *Selection) setActive(c Coord) {
	s.active = c
	s.hasActive = true
}

// allSelected reports whether every listed cell is currently selected.
func (s *Selection) allSelected(cells []Coord) bool {
	if len(cells) == 0 {
		return false
	}
	for _, c := range cells {
		if _, ok := s.selected[c]; !ok {
			return false
		}
	}
	return true
}

// rowCells lists every cell across a contiguous row range.
func (s *Selection) rowCells(from, to int) []Coord {
	cols := s.dims.ColCount()
	lo, hi := min(from, to), max(from, to)
	out := make([]Coord, 0, (hi-lo+1)*cols)
	for row := lo; row <= hi; row++ {
		for col := 0; col < cols; col++ {
			out = append(out, Coord{Row: row, Col: col})
		}
	}
	return out
}

// colCells lists every cell across a contiguous column range.
func (s *Selection) colCells(from, to int) []Coord {
	rows := s.dims.RowCount()
	lo, hi := min(from, to), max(from, to)
	out := make([]Coord, 0, (hi-lo+1)*rows)
	for col := lo; col <= hi; col++ {
		for row := 0; row < rows; row++ {
			out = append(out, Coord{Row: row, Col: col})
		}
	}
	return out
}

func (s *Selection) inBounds(c Coord) bool {
	return c.Row >= 0 && c.Row < s.dims.RowCount() && c.Col >= 0 && c.Col < s.dims.ColCount()
}

func (s *Selection) rowInBounds(row int) bool {
	return row >= 0 && row < s.dims.RowCount() && s.dims.ColCount() > 0
}

func (s *Selection) colInBounds(col int) bool {
	return col >= 0 && col < s.dims.ColCount() && s.dims.RowCount() > 0
}

// clampInt bounds v to [lo, hi].
func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
