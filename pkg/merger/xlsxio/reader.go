// Package xlsxio backs the engine's capability interfaces with xlsx files
// via excelize.
package xlsxio

import (
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/DaJu-Duck/excel-merger/pkg/merger/model"
)

// Reader reads xlsx sources. Each call opens the source read-only and closes
// it before returning; Reader itself is stateless.
type Reader struct{}

// ListSheets returns the workbook's sheet names in workbook order.
func (Reader) ListSheets(source string) ([]string, error) {
	f, err := excelize.OpenFile(source)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return f.GetSheetList(), nil
}

// ReadHeader returns the first row of the sheet.
func (Reader) ReadHeader(source, sheet string) ([]string, error) {
	f, err := excelize.OpenFile(source)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

// ReadRows returns the sheet's data rows keyed by header column name, with
// scalar typing applied. Rows with no data in any header column are skipped.
func (Reader) ReadRows(source, sheet string) ([]model.Row, error) {
	f, err := excelize.OpenFile(source)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, err
	}
	if len(rows) < 2 {
		return nil, nil
	}
	header := rows[0]

	var result []model.Row
	for _, raw := range rows[1:] {
		row := make(model.Row, len(header))
		hasData := false
		for i, name := range header {
			if i >= len(raw) || raw[i] == "" {
				continue
			}
			hasData = true
			row[name] = parseScalar(raw[i])
		}
		if hasData {
			result = append(result, row)
		}
	}
	return result, nil
}

// parseScalar attempts to parse a cell string as a number.
// Returns int64 for integers, float64 for decimals, or the original string.
func parseScalar(s string) interface{} {
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return s
}
