package app

import (
	"context"
	"strings"
	"time"

	"github.com/hylla/tabula/internal/domain"
)

// DefaultCopyChunkSize bounds how many cells are processed between yields.
const DefaultCopyChunkSize = 2048

// CopyResult carries the clipboard text built from a selection.
type CopyResult struct {
	Text  string
	Cells int
	Rect  domain.Rect
}

// DefaultYield hands control back to the event queue with a bounded delay.
func DefaultYield(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(time.Millisecond):
		return nil
	}
}

// BuildTabSeparated serializes the selected cells as a tab-separated block
// covering their minimal bounding rectangle. Cells inside the rectangle
// but not selected serialize as empty strings. Work proceeds in bounded
// chunks with a cooperative yield between chunks so large selections never
// monopolize the event loop.
func BuildTabSeparated(ctx context.Context, cells []domain.Coord, get func(domain.Coord) string, chunkSize int, yield YieldFunc) (CopyResult, error) {
	if len(cells) == 0 {
		return CopyResult{}, nil
	}
	if chunkSize <= 0 {
		chunkSize = DefaultCopyChunkSize
	}
	if yield == nil {
		yield = DefaultYield
	}

	selected := make(map[domain.Coord]struct{}, len(cells))
	rect := domain.Rect{Top: cells[0].Row, Left: cells[0].Col, Bottom: cells[0].Row, Right: cells[0].Col}
	processed := 0
	for _, c := range cells {
		selected[c] = struct{}{}
		rect.Top = min(rect.Top, c.Row)
		rect.Left = min(rect.Left, c.Col)
		rect.Bottom = max(rect.Bottom, c.Row)
		rect.Right = max(rect.Right, c.Col)
		processed++
		if processed%chunkSize == 0 {
			if err := yield(ctx); err != nil {
				return CopyResult{}, err
			}
		}
	}

	lines := make([]string, 0, rect.Rows())
	fields := make([]string, rect.Cols())
	processed = 0
	for row := rect.Top; row <= rect.Bottom; row++ {
		for col := rect.Left; col <= rect.Right; col++ {
			c := domain.Coord{Row: row, Col: col}
			if _, ok := selected[c]; ok {
				fields[col-rect.Left] = get(c)
			} else {
				fields[col-rect.Left] = ""
			}
			processed++
			if processed%chunkSize == 0 {
				if err := yield(ctx); err != nil {
					return CopyResult{}, err
				}
			}
		}
		lines = append(lines, strings.Join(fields, "\t"))
	}

	return CopyResult{
		Text:  strings.Join(lines, "\n"),
		Cells: len(cells),
		Rect:  rect,
	}, nil
}
