package xlsxio

import (
	"github.com/xuri/excelize/v2"

	"github.com/DaJu-Duck/excel-merger/pkg/merger/model"
)

// Writer collects merged tables into a new workbook, one sheet per table.
type Writer struct {
	f      *excelize.File
	path   string
	sheets int
}

// NewWriter prepares an in-memory workbook that Save persists to path.
func NewWriter(path string) *Writer {
	return &Writer{f: excelize.NewFile(), path: path}
}

// WriteTable writes a table as a sheet: header row first, then data rows in
// column order, nulls left as empty cells.
func (w *Writer) WriteTable(sheetName string, table *model.MergeTable) error {
	if w.sheets == 0 {
		// Rename the default sheet rather than leaving it empty.
		if err := w.f.SetSheetName(w.f.GetSheetName(0), sheetName); err != nil {
			return err
		}
	} else {
		if _, err := w.f.NewSheet(sheetName); err != nil {
			return err
		}
	}
	w.sheets++

	header := make([]interface{}, len(table.Columns))
	for i, c := range table.Columns {
		header[i] = c
	}
	if err := w.f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return err
	}

	for i, row := range table.Rows {
		values := make([]interface{}, len(table.Columns))
		for j, c := range table.Columns {
			values[j] = row[c]
		}
		axis, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := w.f.SetSheetRow(sheetName, axis, &values); err != nil {
			return err
		}
	}
	return nil
}

// Save persists the workbook.
func (w *Writer) Save() error {
	return w.f.SaveAs(w.path)
}

func (w *Writer) Close() error {
	return w.f.Close()
}
