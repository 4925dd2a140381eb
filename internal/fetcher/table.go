package fetcher

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
)

// Table is a header row plus data rows read from a CSV or XLSX file.
type Table struct {
	Header []string
	Rows   [][]string
}

// Column returns the index of the named header column, or -1.
func (t Table) Column(name string) int {
	for i, h := range t.Header {
		if strings.TrimSpace(h) == name {
			return i
		}
	}
	return -1
}

// Cell returns row[col], or "" when the row is short or col is negative.
func Cell(row []string, col int) string {
	if col < 0 || col >= len(row) {
		return ""
	}
	return row[col]
}

// TableOptions controls how ReadTable parses its input.
type TableOptions struct {
	// CSV input.
	Delimiter  rune // default ','
	LazyQuotes bool
	TrimSpace  bool

	// XLSX input.
	Sheet    string // default: first sheet
	SkipRows int    // rows above the header
}

// ReadCSVTable reads a whole CSV stream whose first row is the header.
func ReadCSVTable(ctx context.Context, path string, opts TableOptions) (Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return Table{}, eris.Wrap(err, "csv: open file")
	}
	defer f.Close() //nolint:errcheck

	headerCh := make(chan []string, 1)
	rowCh, errCh := StreamCSV(ctx, f, CSVOptions{
		Delimiter:  opts.Delimiter,
		HasHeader:  true,
		HeaderCh:   headerCh,
		LazyQuotes: opts.LazyQuotes,
		TrimSpace:  opts.TrimSpace,
	})

	var t Table
	for row := range rowCh {
		t.Rows = append(t.Rows, row)
	}
	if err := <-errCh; err != nil {
		return Table{}, err
	}

	select {
	case t.Header = <-headerCh:
	default:
		return Table{}, eris.Errorf("csv: %s has no header row", path)
	}
	return t, nil
}

// ReadXLSXTable reads one sheet of an XLSX file. The first row after
// opts.SkipRows is the header.
func ReadXLSXTable(path string, opts TableOptions) (Table, error) {
	rows, err := ReadXLSX(path, XLSXOptions{SheetName: opts.Sheet, SkipRows: opts.SkipRows})
	if err != nil {
		return Table{}, err
	}
	if len(rows) == 0 {
		return Table{}, eris.Errorf("xlsx: %s has no header row", path)
	}
	return Table{Header: rows[0], Rows: rows[1:]}, nil
}

// ReadTable reads path as CSV or XLSX depending on its extension.
func ReadTable(ctx context.Context, path string, opts TableOptions) (Table, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return ReadCSVTable(ctx, path, opts)
	case ".xlsx":
		return ReadXLSXTable(path, opts)
	default:
		return Table{}, eris.Errorf("fetcher: unsupported input format %q", filepath.Ext(path))
	}
}
