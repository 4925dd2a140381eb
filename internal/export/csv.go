package export

import (
	"encoding/csv"
	"io"
	"os"

	"github.com/rotisserie/eris"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/sells-group/orglink/internal/fetcher"
	"github.com/sells-group/orglink/internal/model"
)

// withBOM encodes to UTF-8 with a leading byte-order mark so spreadsheet
// tools pick the right encoding.
func withBOM(w io.Writer) io.WriteCloser {
	return transform.NewWriter(w, unicode.UTF8BOM.NewEncoder())
}

// WriteCSV writes results under the Columns header.
func WriteCSV(w io.Writer, results []model.LinkResult) error {
	rows := make([][]string, len(results))
	for i, r := range results {
		rows[i] = Row(r)
	}
	return writeCSV(w, Columns, rows)
}

// ExportCSV writes results to a new CSV file at outputPath.
func ExportCSV(results []model.LinkResult, outputPath string) error {
	f, err := os.Create(outputPath)
	if err != nil {
		return eris.Wrap(err, "export: create csv file")
	}
	defer f.Close() //nolint:errcheck

	if err := WriteCSV(f, results); err != nil {
		return err
	}
	return eris.Wrap(f.Close(), "export: close csv file")
}

// WriteTableCSV writes a header and rows to a new CSV file at outputPath.
func WriteTableCSV(t fetcher.Table, outputPath string) error {
	f, err := os.Create(outputPath)
	if err != nil {
		return eris.Wrap(err, "export: create csv file")
	}
	defer f.Close() //nolint:errcheck

	if err := writeCSV(f, t.Header, t.Rows); err != nil {
		return err
	}
	return eris.Wrap(f.Close(), "export: close csv file")
}

func writeCSV(w io.Writer, header []string, rows [][]string) error {
	bw := withBOM(w)
	cw := csv.NewWriter(bw)

	if err := cw.Write(header); err != nil {
		return eris.Wrap(err, "export: write header")
	}
	for _, row := range rows {
		if err := cw.Write(row); err != nil {
			return eris.Wrap(err, "export: write row")
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return eris.Wrap(err, "export: flush csv")
	}
	return eris.Wrap(bw.Close(), "export: flush encoder")
}
