package xlsxio

import (
	"fmt"
	"strings"

	"github.com/tiendc/go-deepcopy"
	"github.com/xuri/excelize/v2"

	"github.com/DaJu-Duck/excel-merger/pkg/merger"
)

// Workbook is an xlsx file opened for the append workflow.
type Workbook struct {
	f    *excelize.File
	path string
}

// OpenForAppend opens an existing xlsx file for in-place modification.
func OpenForAppend(path string) (*Workbook, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	return &Workbook{f: f, path: path}, nil
}

// Sheet returns a handle for the named sheet. The error wraps
// merger.ErrSheetNotFound when the sheet does not exist.
func (w *Workbook) Sheet(name string) (merger.Sheet, error) {
	idx, err := w.f.GetSheetIndex(name)
	if err != nil {
		return nil, err
	}
	if idx < 0 {
		return nil, fmt.Errorf("%q: %w", name, merger.ErrSheetNotFound)
	}

	rows, err := w.f.GetRows(name)
	if err != nil {
		return nil, err
	}
	cols := 0
	for _, r := range rows {
		if len(r) > cols {
			cols = len(r)
		}
	}
	return &sheet{f: w.f, name: name, maxRow: len(rows), cols: cols}, nil
}

// Save persists the workbook to its original path.
func (w *Workbook) Save() error {
	return w.f.Save()
}

func (w *Workbook) Close() error {
	return w.f.Close()
}

// sheet adapts one excelize sheet to the merger.Sheet interface.
// maxRow and cols are captured at open time; the engine tracks growth itself.
type sheet struct {
	f      *excelize.File
	name   string
	maxRow int
	cols   int
}

func (s *sheet) MaxRow() int {
	return s.maxRow
}

func (s *sheet) Cols() int {
	return s.cols
}

func (s *sheet) CellValue(row, col int) (interface{}, error) {
	axis, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return nil, err
	}
	v, err := s.f.GetCellValue(s.name, axis)
	if err != nil {
		return nil, err
	}
	if v == "" {
		return nil, nil
	}
	return parseScalar(v), nil
}

func (s *sheet) SetCellValue(row, col int, value interface{}) error {
	axis, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	return s.f.SetCellValue(s.name, axis, value)
}

// CellFormula normalizes excelize's bare formula text to carry the leading
// "=" the translator grammar expects.
func (s *sheet) CellFormula(row, col int) (string, error) {
	axis, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return "", err
	}
	f, err := s.f.GetCellFormula(s.name, axis)
	if err != nil {
		return "", err
	}
	if f == "" {
		return "", nil
	}
	if !strings.HasPrefix(f, "=") {
		f = "=" + f
	}
	return f, nil
}

func (s *sheet) SetCellFormula(row, col int, formulaText string) error {
	axis, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	return s.f.SetCellFormula(s.name, axis, strings.TrimPrefix(formulaText, "="))
}

// CopyCellStyle copies the source cell's style definition onto the
// destination. The definition is deep-copied before re-registration so the
// two cells never share one mutable style object.
func (s *sheet) CopyCellStyle(srcRow, srcCol, dstRow, dstCol int) error {
	srcAxis, err := excelize.CoordinatesToCellName(srcCol, srcRow)
	if err != nil {
		return err
	}
	dstAxis, err := excelize.CoordinatesToCellName(dstCol, dstRow)
	if err != nil {
		return err
	}

	styleID, err := s.f.GetCellStyle(s.name, srcAxis)
	if err != nil {
		return err
	}
	if styleID == 0 {
		return nil
	}
	style, err := s.f.GetStyle(styleID)
	if err != nil {
		return err
	}
	var copied excelize.Style
	if err := deepcopy.Copy(&copied, style); err != nil {
		return err
	}
	newID, err := s.f.NewStyle(&copied)
	if err != nil {
		return err
	}
	return s.f.SetCellStyle(s.name, dstAxis, dstAxis, newID)
}
