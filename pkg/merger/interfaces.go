// Package merger combines tabular datasets using declared relational
// strategies, optionally preserving formulas and styles on appended rows.
package merger

import "github.com/DaJu-Duck/excel-merger/pkg/merger/model"

// TableReader is the read-only capability the engine consumes from the host.
// Implementations open a source per call; the engine never touches storage
// directly.
type TableReader interface {
	// ListSheets returns the sheet names of a source in workbook order.
	ListSheets(source string) ([]string, error)
	// ReadHeader returns the ordered header row of a sheet.
	ReadHeader(source, sheet string) ([]string, error)
	// ReadRows returns all data rows of a sheet, header excluded, keyed by
	// header column name.
	ReadRows(source, sheet string) ([]model.Row, error)
}

// TableWriter receives merged tables, one per sheet name.
type TableWriter interface {
	WriteTable(sheet string, table *model.MergeTable) error
}

// Workbook is an open output workbook for the append workflow. The engine
// owns the handle exclusively for the duration of one call.
type Workbook interface {
	// Sheet returns a handle for the named sheet, or an error wrapping
	// ErrSheetNotFound when the sheet is absent.
	Sheet(name string) (Sheet, error)
	// Save persists the workbook in place.
	Save() error
	Close() error
}

// Sheet exposes cell-level access on one sheet of an output workbook.
// Rows and columns are 1-based.
type Sheet interface {
	// MaxRow returns the last row holding data, 0 for an empty sheet.
	MaxRow() int
	// Cols returns the number of columns spanned by the sheet's data.
	Cols() int
	CellValue(row, col int) (interface{}, error)
	SetCellValue(row, col int, value interface{}) error
	// CellFormula returns the cell's formula with a leading "=", or "" when
	// the cell holds no formula.
	CellFormula(row, col int) (string, error)
	SetCellFormula(row, col int, formulaText string) error
	// CopyCellStyle copies the source cell's style onto the destination as a
	// value copy; the two cells must never alias one style object.
	CopyCellStyle(srcRow, srcCol, dstRow, dstCol int) error
}
