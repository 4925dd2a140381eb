package fetcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestReadTable_CSV(t *testing.T) {
	path := writeTestFile(t, "in.csv", "\ufeffname,location,url\nFOO,岩手県FOO市,https://foo.example\nBAR,,\n")

	tbl, err := ReadTable(context.Background(), path, TableOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"name", "location", "url"}, tbl.Header)
	require.Len(t, tbl.Rows, 2)
	assert.Equal(t, 0, tbl.Column("name"))
	assert.Equal(t, 2, tbl.Column("url"))
	assert.Equal(t, -1, tbl.Column("tel"))
	assert.Equal(t, "", Cell(tbl.Rows[1], tbl.Column("url")))
}

func TestReadTable_XLSX(t *testing.T) {
	path := createTestXLSX(t, map[string][][]string{
		"Sheet1": {{"url", "name"}, {"https://foo.example", "FOO"}},
	})

	tbl, err := ReadTable(context.Background(), path, TableOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, tbl.Column("name"))
	assert.Equal(t, [][]string{{"https://foo.example", "FOO"}}, tbl.Rows)
}

func TestReadTable_CSVOptions(t *testing.T) {
	path := writeTestFile(t, "in.csv", "name; location\n FOO ;岩手県FOO市\nBAR\"s;\n")

	tbl, err := ReadTable(context.Background(), path, TableOptions{Delimiter: ';', LazyQuotes: true, TrimSpace: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"name", "location"}, tbl.Header)
	assert.Equal(t, [][]string{{"FOO", "岩手県FOO市"}, {`BAR"s`, ""}}, tbl.Rows)
}

func TestReadTable_XLSXOptions(t *testing.T) {
	path := createTestXLSX(t, map[string][][]string{
		"Summary": {{"total", "1"}},
		"Records": {{"Company list"}, {"name", "url"}, {"FOO", "https://foo.example"}},
	})

	tbl, err := ReadTable(context.Background(), path, TableOptions{Sheet: "Records", SkipRows: 1})
	require.NoError(t, err)
	assert.Equal(t, []string{"name", "url"}, tbl.Header)
	assert.Equal(t, [][]string{{"FOO", "https://foo.example"}}, tbl.Rows)

	_, err = ReadTable(context.Background(), path, TableOptions{Sheet: "Missing"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestReadTable_EmptyCSV(t *testing.T) {
	path := writeTestFile(t, "empty.csv", "")

	_, err := ReadTable(context.Background(), path, TableOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no header row")
}

func TestReadTable_UnsupportedExtension(t *testing.T) {
	_, err := ReadTable(context.Background(), "records.json", TableOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported input format")
}

func TestCell(t *testing.T) {
	row := []string{"a", "b"}
	assert.Equal(t, "a", Cell(row, 0))
	assert.Equal(t, "", Cell(row, 2))
	assert.Equal(t, "", Cell(row, -1))
}
