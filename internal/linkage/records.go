package linkage

import (
	"github.com/rotisserie/eris"

	"github.com/sells-group/orglink/internal/fetcher"
	"github.com/sells-group/orglink/internal/model"
	"github.com/sells-group/orglink/internal/normalize"
)

// Input columns every query table must carry.
const (
	ColumnName     = "name"
	ColumnLocation = "location"
	ColumnURL      = "url"
)

// LoadRecords maps table rows to query records. Newlines inside names and
// locations become single spaces. Rows are indexed from 0 in file order.
func LoadRecords(t fetcher.Table) ([]model.QueryRecord, error) {
	nameCol, locCol, urlCol := t.Column(ColumnName), t.Column(ColumnLocation), t.Column(ColumnURL)

	var missing []string
	for _, c := range []struct {
		name string
		idx  int
	}{{ColumnName, nameCol}, {ColumnLocation, locCol}, {ColumnURL, urlCol}} {
		if c.idx < 0 {
			missing = append(missing, c.name)
		}
	}
	if len(missing) > 0 {
		return nil, eris.Errorf("linkage: input is missing required columns %v (want name, location, url)", missing)
	}

	records := make([]model.QueryRecord, len(t.Rows))
	for i, row := range t.Rows {
		records[i] = model.QueryRecord{
			Index:    i,
			Name:     normalize.CleanField(fetcher.Cell(row, nameCol)),
			Location: normalize.CleanField(fetcher.Cell(row, locCol)),
			URL:      fetcher.Cell(row, urlCol),
		}
	}
	return records, nil
}
