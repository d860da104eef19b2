package merger

import (
	"context"
	"errors"
	"fmt"

	"github.com/DaJu-Duck/excel-merger/pkg/merger/formula"
	"github.com/DaJu-Duck/excel-merger/pkg/merger/model"
)

// AppendStats reports the row accounting for one sheet of an append run.
type AppendStats struct {
	// OriginalRows is the sheet's row count before the run.
	OriginalRows int
	// AddedRows is the number of rows appended across all datasets.
	AddedRows int
}

// templateCell is one formula-bearing cell of a template row.
type templateCell struct {
	row     int
	col     int
	formula string
}

// AppendWithFormulas implements the formula-preserving variant of the simple
// strategy. datasets[0] is the base whose workbook wb was opened for append;
// each subsequent dataset's rows (header excluded) are appended to every
// selected sheet. Formulas found on template rows within the leading scan
// window are replicated onto each appended row with their relative row
// references shifted, and column styles are copied from the last data-bearing
// row.
func (e *Engine) AppendWithFormulas(ctx context.Context, selectedSheets []string, datasets []model.Dataset, wb Workbook) (map[string]AppendStats, *Report, error) {
	report := &Report{}
	if len(selectedSheets) == 0 {
		return nil, report, &model.ValidationError{Msg: "append selects zero sheets"}
	}
	if len(datasets) < 2 {
		return nil, report, &model.ValidationError{Msg: "append needs a base dataset and at least one dataset to append"}
	}

	steps := newStepper(len(selectedSheets)*len(datasets[1:])+1, e.opts)
	stats := make(map[string]AppendStats, len(selectedSheets))

	for _, sheetName := range selectedSheets {
		if err := ctx.Err(); err != nil {
			return stats, report, err
		}
		sheet, err := wb.Sheet(sheetName)
		if err != nil {
			if errors.Is(err, ErrSheetNotFound) {
				report.skip(fmt.Errorf("output sheet %q: %w", sheetName, err))
				e.log.Warnw("output sheet missing", "sheet", sheetName)
				continue
			}
			return stats, report, err
		}
		st, err := e.appendSheet(ctx, sheet, sheetName, datasets, steps, report)
		if err != nil {
			return stats, report, err
		}
		stats[sheetName] = st
	}

	if err := wb.Save(); err != nil {
		return stats, report, &WriteError{Target: "output workbook", Err: err}
	}
	steps.step(StageWrite, "saved output workbook")
	return stats, report, nil
}

func (e *Engine) appendSheet(ctx context.Context, sheet Sheet, sheetName string, datasets []model.Dataset, steps *stepper, report *Report) (AppendStats, error) {
	maxRow := sheet.MaxRow()
	cols := sheet.Cols()
	st := AppendStats{OriginalRows: maxRow}

	header, err := sheetHeader(sheet, cols)
	if err != nil {
		return st, err
	}

	templates, err := findTemplateCells(sheet, maxRow, cols)
	if err != nil {
		return st, err
	}
	styleRows := lastDataRows(sheet, maxRow, cols)

	for _, ds := range datasets[1:] {
		if err := ctx.Err(); err != nil {
			return st, err
		}
		rows, skipErr := e.readAppendRows(ds, sheetName, header)
		if skipErr != nil {
			report.skip(skipErr)
			e.log.Warnw("skipping dataset for sheet", "dataset", ds.ID, "sheet", sheetName, "error", skipErr)
			steps.step(StageAppend, "skipped dataset %s on sheet %q", ds.ID, sheetName)
			continue
		}

		start := maxRow + 1
		for i, row := range rows {
			r := start + i
			for col, name := range header {
				if v, ok := row[name]; ok && v != nil {
					if err := sheet.SetCellValue(r, col+1, v); err != nil {
						return st, &WriteError{Target: sheetName, Err: err}
					}
				}
				if src, ok := styleRows[col+1]; ok {
					if err := sheet.CopyCellStyle(src, col+1, r, col+1); err != nil {
						return st, &WriteError{Target: sheetName, Err: err}
					}
				}
			}
			for _, tc := range templates {
				offset := r - tc.row
				if err := sheet.SetCellFormula(r, tc.col, formula.TranslateByOffset(tc.formula, offset)); err != nil {
					return st, &WriteError{Target: sheetName, Err: err}
				}
				if err := sheet.CopyCellStyle(tc.row, tc.col, r, tc.col); err != nil {
					return st, &WriteError{Target: sheetName, Err: err}
				}
			}
		}
		maxRow += len(rows)
		st.AddedRows += len(rows)
		steps.step(StageAppend, "appended %d rows from dataset %s to sheet %q", len(rows), ds.ID, sheetName)
	}
	return st, nil
}

// readAppendRows reads one dataset's copy of the sheet, requiring a header
// identical to the base sheet's.
func (e *Engine) readAppendRows(ds model.Dataset, sheetName string, header []string) ([]model.Row, error) {
	sheets, err := e.reader.ListSheets(ds.Source)
	if err != nil {
		return nil, &ReadError{Dataset: ds.ID, Err: err}
	}
	if !containsSheet(sheets, sheetName) {
		return nil, &ReadError{Dataset: ds.ID, Sheet: sheetName, Err: fmt.Errorf("sheet not present")}
	}
	got, err := e.reader.ReadHeader(ds.Source, sheetName)
	if err != nil {
		return nil, &ReadError{Dataset: ds.ID, Sheet: sheetName, Err: err}
	}
	if !equalHeaders(header, got) {
		return nil, &SchemaMismatchError{Sheet: sheetName, Dataset: ds.ID, Want: header, Got: got}
	}
	rows, err := e.reader.ReadRows(ds.Source, sheetName)
	if err != nil {
		return nil, &ReadError{Dataset: ds.ID, Sheet: sheetName, Err: err}
	}
	return rows, nil
}

// sheetHeader reads row 1 of the base sheet as the column identity.
func sheetHeader(sheet Sheet, cols int) ([]string, error) {
	header := make([]string, cols)
	for c := 1; c <= cols; c++ {
		v, err := sheet.CellValue(1, c)
		if err != nil {
			return nil, err
		}
		header[c-1] = fmt.Sprintf("%v", v)
	}
	return header, nil
}

// findTemplateCells scans the leading rows of the sheet, bounded by
// templateScanWindow, for cells holding formulas.
func findTemplateCells(sheet Sheet, maxRow, cols int) ([]templateCell, error) {
	window := maxRow
	if window > templateScanWindow {
		window = templateScanWindow
	}
	var cells []templateCell
	for r := 1; r <= window; r++ {
		for c := 1; c <= cols; c++ {
			f, err := sheet.CellFormula(r, c)
			if err != nil {
				return nil, err
			}
			if f != "" {
				cells = append(cells, templateCell{row: r, col: c, formula: f})
			}
		}
	}
	return cells, nil
}

// lastDataRows maps each column (1-based) to its last data-bearing row, the
// style source for appended cells. Columns with no data are absent.
func lastDataRows(sheet Sheet, maxRow, cols int) map[int]int {
	rows := make(map[int]int, cols)
	for c := 1; c <= cols; c++ {
		for r := maxRow; r >= 1; r-- {
			v, err := sheet.CellValue(r, c)
			if err != nil {
				continue
			}
			if v != nil && fmt.Sprintf("%v", v) != "" {
				rows[c] = r
				break
			}
		}
	}
	return rows
}
