package app

import (
	"encoding/csv"
	"fmt"
	"strings"
)

// NormalizeCell prepares one cell's text for CSV output: non-breaking
// spaces are stripped, embedded newlines collapse to single spaces, and
// trailing whitespace is trimmed.
func NormalizeCell(text string) string {
	text = strings.ReplaceAll(text, " ", "")
	text = strings.ReplaceAll(text, "\r\n", " ")
	text = strings.ReplaceAll(text, "\n", " ")
	text = strings.ReplaceAll(text, "\r", " ")
	return strings.TrimRight(text, " \t")
}

// MarshalCSV converts grid records to CSV text. Cells are normalized, then
// quoted when they contain a comma, quote, or newline with embedded quotes
// doubled. Rows are newline-joined; a trailing newline is appended only
// when at least one record exists.
func MarshalCSV(records [][]string) (string, error) {
	if len(records) == 0 {
		return "", nil
	}
	var sb strings.Builder
	w := csv.NewWriter(&sb)
	for _, record := range records {
		normalized := make([]string, len(record))
		for idx, cell := range record {
			normalized[idx] = NormalizeCell(cell)
		}
		if err := w.Write(normalized); err != nil {
			return "", fmt.Errorf("write csv record: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("flush csv: %w", err)
	}
	return sb.String(), nil
}

// MarshalGridCSV serializes the full grid, header row first.
func MarshalGridCSV(grid FullGrid) (string, error) {
	records := make([][]string, 0, grid.RowCount()+1)
	records = append(records, grid.Headers())
	records = append(records, grid.Snapshot()...)
	return MarshalCSV(records)
}

// UnmarshalCSV parses CSV text into a header row and data rows. Empty
// input yields an empty header and no rows. Records are allowed to be
// ragged; the grid pads them on load.
func UnmarshalCSV(text string) ([]string, [][]string, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil, nil
	}
	r := csv.NewReader(strings.NewReader(text))
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("parse csv: %w", err)
	}
	if len(records) == 0 {
		return nil, nil, nil
	}
	return records[0], records[1:], nil
}
