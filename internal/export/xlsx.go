package export

import (
	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/orglink/internal/model"
)

const sheetName = "results"

// ExportXLSX writes results to an XLSX file with display labels in the
// header row. Every cell is stored as text so phone numbers keep their
// leading zeros.
func ExportXLSX(results []model.LinkResult, headers Headers, outputPath string) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet(sheetName)
	if err != nil {
		return eris.Wrap(err, "export: add sheet")
	}

	header := sheet.AddRow()
	for _, col := range Columns {
		header.AddCell().SetString(headers.Label(col))
	}
	for _, r := range results {
		row := sheet.AddRow()
		for _, v := range Row(r) {
			row.AddCell().SetString(v)
		}
	}

	if err := f.Save(outputPath); err != nil {
		return eris.Wrap(err, "export: save xlsx")
	}
	return nil
}
