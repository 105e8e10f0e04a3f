// Package listing parses the loosely-structured markdown job tables found in
// community-maintained README lists into normalized rows. Parsing is pure:
// fetching the documents lives in internal/adapter.
package listing

import "strings"

// RawRow holds the first four cells of one table row, markup intact.
type RawRow struct {
	Company     string
	Title       string
	Location    string
	Application string
}

// ScanTables extracts the raw rows of every table in doc whose header row's
// first cell reads "company" (case-insensitive). One document may contain
// several independent tables; each is returned as its own slice, in document
// order.
//
// A table starts at a line that, after trimming leading whitespace, begins
// with "| company". It consists of the contiguous lines starting with "|"
// from there on; the first line not starting with "|" ends the table.
func ScanTables(doc string) [][]RawRow {
	lines := strings.Split(doc, "\n")

	var tables [][]RawRow
	i := 0
	for i < len(lines) {
		if !isHeaderLine(lines[i]) {
			i++
			continue
		}

		// Consume the header, then the whole contiguous pipe run, so a
		// repeated header inside the run is skipped as a row rather than
		// re-scanned as a second table.
		i++
		var rows []RawRow
		for i < len(lines) && strings.HasPrefix(lines[i], "|") {
			cells := splitCells(lines[i])
			i++
			// Fewer than four cells is a malformed or separator row;
			// a repeated "company" cell is the header itself.
			if len(cells) < 4 || strings.EqualFold(cells[0], "company") {
				continue
			}
			rows = append(rows, RawRow{
				Company:     cells[0],
				Title:       cells[1],
				Location:    cells[2],
				Application: cells[3],
			})
		}
		if len(rows) > 0 {
			tables = append(tables, rows)
		}
	}
	return tables
}

func isHeaderLine(l string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimLeft(l, " \t")), "| company")
}

// splitCells splits a pipe-delimited line into trimmed cells, dropping the
// empty boundary cells produced by the leading and trailing delimiter.
func splitCells(line string) []string {
	parts := strings.Split(line, "|")
	if len(parts) < 2 {
		return nil
	}
	parts = parts[1 : len(parts)-1]
	cells := make([]string, len(parts))
	for i, c := range parts {
		cells[i] = strings.TrimSpace(c)
	}
	return cells
}
