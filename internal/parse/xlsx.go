package parse

import (
	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/fundsight/pedocs/internal/model"
)

// parseXLSX reads every sheet as one table; the first row is the header.
func parseXLSX(path string) (model.ParsedDocument, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return model.ParsedDocument{}, eris.Wrapf(err, "parse: open xlsx %s", path)
	}

	var doc model.ParsedDocument
	for _, sheet := range f.Sheets {
		if len(sheet.Rows) == 0 {
			continue
		}
		table := model.Table{Headers: rowToStrings(sheet.Rows[0])}
		for _, row := range sheet.Rows[1:] {
			table.Rows = append(table.Rows, rowToStrings(row))
		}
		doc.Tables = append(doc.Tables, table)
		doc.Text += renderTableText(table) + "\n"
	}
	return doc, nil
}

func rowToStrings(row *xlsx.Row) []string {
	cells := make([]string, len(row.Cells))
	for j, cell := range row.Cells {
		cells[j] = cell.String()
	}
	return cells
}
