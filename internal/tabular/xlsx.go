package tabular

import (
	"context"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
)

// SheetName is the sheet result files are written to.
const SheetName = "results"

// ReadXLSX parses the first sheet of an XLSX workbook.
func ReadXLSX(ctx context.Context, path string) (*Table, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "xlsx: open file")
	}
	if len(f.Sheets) == 0 {
		return nil, eris.New("xlsx: workbook has no sheets")
	}
	sheet := f.Sheets[0]

	var b builder
	for i, row := range sheet.Rows {
		if ctx.Err() != nil {
			return nil, eris.Wrap(ctx.Err(), "xlsx: context cancelled")
		}
		cells := trimTrailingEmpty(rowToStrings(row))
		if i == 0 {
			if err := b.header(cells); err != nil {
				return nil, err
			}
			continue
		}
		if err := b.row(i+1, cells); err != nil {
			return nil, err
		}
	}
	return b.done()
}

// WriteXLSX writes rows to a single-sheet workbook at path.
func WriteXLSX(path string, rows [][]string) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet(SheetName)
	if err != nil {
		return eris.Wrap(err, "xlsx: add sheet")
	}
	for _, data := range rows {
		row := sheet.AddRow()
		for _, v := range data {
			row.AddCell().SetString(v)
		}
	}
	return eris.Wrap(f.Save(path), "xlsx: save file")
}

func rowToStrings(row *xlsx.Row) []string {
	if row == nil {
		return nil
	}
	cells := make([]string, len(row.Cells))
	for j, cell := range row.Cells {
		cells[j] = cell.String()
	}
	return cells
}

// trimTrailingEmpty drops the empty trailing cells some spreadsheet editors
// leave behind.
func trimTrailingEmpty(cells []string) []string {
	for len(cells) > 0 && cells[len(cells)-1] == "" {
		cells = cells[:len(cells)-1]
	}
	return cells
}
