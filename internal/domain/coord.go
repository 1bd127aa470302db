package domain

import "fmt"

// Coord addresses one grid cell by zero-based row and column.
type Coord struct {
	Row int
	Col int
}

// String handles string.
func (c Coord) String() string {
	return fmt.Sprintf("(%d,%d)", c.Row, c.Col)
}

// Rect is an inclusive rectangle between two corners.
type Rect struct {
	Top    int
	Left   int
	Bottom int
	Right  int
}

// RectBetween returns the normalized rectangle spanning two corners.
func RectBetween(a, b Coord) Rect {
	return Rect{
		Top:    min(a.Row, b.Row),
		Left:   min(a.Col, b.Col),
		Bottom: max(a.Row, b.Row),
		Right:  max(a.Col, b.Col),
	}
}

// Contains reports whether a coordinate falls inside the rectangle.
func (r Rect) Contains(c Coord) bool {
	return c.Row >= r.Top && c.Row <= r.Bottom && c.Col >= r.Left && c.Col <= r.Right
}

// Rows returns the row count covered by the rectangle.
func (r Rect) Rows() int {
	return r.Bottom - r.Top + 1
}

// Cols returns the column count covered by the rectangle.
func (r Rect) Cols() int {
	return r.Right - r.Left + 1
}

// Cells lists every coordinate inside the rectangle in row-major order.
func (r Rect) Cells() []Coord {
	out := make([]Coord, 0, r.Rows()*r.Cols())
	for row := r.Top; row <= r.Bottom; row++ {
		for col := r.Left; col <= r.Right; col++ {
			out = append(out, Coord{Row: row, Col: col})
		}
	}
	return out
}
