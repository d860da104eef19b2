package xlsxio

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/DaJu-Duck/excel-merger/pkg/merger"
	"github.com/DaJu-Duck/excel-merger/pkg/merger/model"
)

func writeFixture(t *testing.T) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	require.NoError(t, f.SetSheetName(f.GetSheetName(0), "People"))
	require.NoError(t, f.SetSheetRow("People", "A1", &[]interface{}{"id", "name", "score"}))
	require.NoError(t, f.SetSheetRow("People", "A2", &[]interface{}{1, "Alice", 9.5}))
	require.NoError(t, f.SetSheetRow("People", "A3", &[]interface{}{2, "Bob", 8}))
	_, err := f.NewSheet("Notes")
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "fixture.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestReaderListSheets(t *testing.T) {
	path := writeFixture(t)
	sheets, err := Reader{}.ListSheets(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"People", "Notes"}, sheets)
}

func TestReaderReadHeader(t *testing.T) {
	path := writeFixture(t)
	header, err := Reader{}.ReadHeader(path, "People")
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "name", "score"}, header)
}

func TestReaderReadRowsTyped(t *testing.T) {
	path := writeFixture(t)
	rows, err := Reader{}.ReadRows(path, "People")
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, model.Row{"id": int64(1), "name": "Alice", "score": 9.5}, rows[0])
	assert.Equal(t, model.Row{"id": int64(2), "name": "Bob", "score": int64(8)}, rows[1])
}

func TestWorkbookSheetNotFound(t *testing.T) {
	path := writeFixture(t)
	wb, err := OpenForAppend(path)
	require.NoError(t, err)
	defer wb.Close()

	_, err = wb.Sheet("Missing")
	assert.ErrorIs(t, err, merger.ErrSheetNotFound)
}

func TestSheetFormulaRoundTrip(t *testing.T) {
	path := writeFixture(t)
	wb, err := OpenForAppend(path)
	require.NoError(t, err)
	defer wb.Close()

	sheet, err := wb.Sheet("People")
	require.NoError(t, err)
	assert.Equal(t, 3, sheet.MaxRow())
	assert.Equal(t, 3, sheet.Cols())

	// Formula text carries a leading "=" on read regardless of how it was set.
	require.NoError(t, sheet.SetCellFormula(4, 3, "=A4*2"))
	f, err := sheet.CellFormula(4, 3)
	require.NoError(t, err)
	assert.Equal(t, "=A4*2", f)

	// Empty cell reads as nil.
	v, err := sheet.CellValue(9, 1)
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestSheetCopyCellStyle(t *testing.T) {
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetName(f.GetSheetName(0), "S"))
	require.NoError(t, f.SetCellValue("S", "A1", "x"))
	styleID, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	require.NoError(t, err)
	require.NoError(t, f.SetCellStyle("S", "A1", "A1", styleID))
	path := filepath.Join(t.TempDir(), "styled.xlsx")
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	wb, err := OpenForAppend(path)
	require.NoError(t, err)
	defer wb.Close()
	sheet, err := wb.Sheet("S")
	require.NoError(t, err)

	require.NoError(t, sheet.CopyCellStyle(1, 1, 2, 1))

	// The destination carries an equal style definition under its own ID.
	srcID, err := wb.f.GetCellStyle("S", "A1")
	require.NoError(t, err)
	dstID, err := wb.f.GetCellStyle("S", "A2")
	require.NoError(t, err)
	require.NotZero(t, dstID)
	srcStyle, err := wb.f.GetStyle(srcID)
	require.NoError(t, err)
	dstStyle, err := wb.f.GetStyle(dstID)
	require.NoError(t, err)
	require.NotNil(t, dstStyle.Font)
	assert.Equal(t, srcStyle.Font.Bold, dstStyle.Font.Bold)
	// Distinct objects: mutating one must not affect the other.
	assert.NotSame(t, srcStyle.Font, dstStyle.Font)
}

func TestWriterRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.xlsx")
	w := NewWriter(path)
	defer w.Close()

	table := model.NewMergeTable([]string{"id", "name"})
	table.Rows = []model.Row{
		{"id": int64(1), "name": "Alice"},
		{"id": int64(2)}, // null name stays empty
	}
	require.NoError(t, w.WriteTable("merged", table))

	second := model.NewMergeTable([]string{"k"})
	second.Rows = []model.Row{{"k": "v"}}
	require.NoError(t, w.WriteTable("more", second))
	require.NoError(t, w.Save())

	rows, err := Reader{}.ReadRows(path, "merged")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Alice", rows[0]["name"])
	_, hasName := rows[1]["name"]
	assert.False(t, hasName)

	sheets, err := Reader{}.ListSheets(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"merged", "more"}, sheets)
}
