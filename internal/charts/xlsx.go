package charts

import (
	"io"

	"dashboards/internal/models"

	"github.com/xuri/excelize/v2"
)

// ExportSheet is the sheet name of table exports.
const ExportSheet = "Sheet1"

// WriteXLSX writes a table view as a spreadsheet: one header row of column
// names followed by the rows. Null cells are left blank.
func WriteXLSX(view models.TableView, w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	for ci, col := range view.Columns {
		cell, err := excelize.CoordinatesToCellName(ci+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(ExportSheet, cell, col.Name); err != nil {
			return err
		}
	}
	for ri, rec := range view.Rows {
		for ci, col := range view.Columns {
			v := rec[col.ID]
			if v == nil {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(ci+1, ri+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(ExportSheet, cell, v); err != nil {
				return err
			}
		}
	}
	return f.Write(w)
}
