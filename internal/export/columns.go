// Package export writes link results as spreadsheet-friendly CSV and XLSX
// files and reorders result tables against a reference file.
package export

import (
	_ "embed"
	"os"
	"strconv"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/orglink/internal/model"
)

// Columns defines the ordered output columns.
var Columns = []string{
	"name",
	"location",
	"url",
	"jn_tel",
	"jn_tel_hyphen",
	"jn_search_url",
	"jn_company_name",
	"jn_location",
	"jn_detail_url",
	"jn_memo",
	"jn_score",
}

//go:embed headers.yaml
var defaultHeadersYAML []byte

// Row maps a LinkResult to an output row in Columns order. The score is
// blank for unmatched rows.
func Row(r model.LinkResult) []string {
	score := ""
	if r.Matched {
		score = strconv.FormatFloat(r.Score, 'f', 4, 64)
	}
	return []string{
		r.Record.Name,
		r.Record.Location,
		r.Record.URL,
		r.Tel,
		r.TelHyphen,
		r.SearchURL,
		r.CompanyName,
		r.Location,
		r.DetailURL,
		r.Memo,
		score,
	}
}

// Headers maps output columns to display labels.
type Headers map[string]string

// Label returns the display label for col, falling back to col itself.
func (h Headers) Label(col string) string {
	if l, ok := h[col]; ok && l != "" {
		return l
	}
	return col
}

// DefaultHeaders returns the built-in header labels.
func DefaultHeaders() (Headers, error) {
	h := Headers{}
	if err := yaml.Unmarshal(defaultHeadersYAML, &h); err != nil {
		return nil, eris.Wrap(err, "export: parse default headers")
	}
	return h, nil
}

// LoadHeaders returns the built-in labels overlaid with the labels in path.
// An empty path returns the defaults.
func LoadHeaders(path string) (Headers, error) {
	h, err := DefaultHeaders()
	if err != nil || path == "" {
		return h, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "export: read headers file")
	}
	var override Headers
	if err := yaml.Unmarshal(data, &override); err != nil {
		return nil, eris.Wrapf(err, "export: parse headers file %s", path)
	}
	for col, label := range override {
		h[col] = label
	}
	return h, nil
}
