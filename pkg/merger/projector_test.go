package merger_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/DaJu-Duck/excel-merger/pkg/merger"
	"github.com/DaJu-Duck/excel-merger/pkg/merger/model"
	"github.com/DaJu-Duck/excel-merger/pkg/merger/xlsxio"
)

// writeBaseWorkbook builds the append base: a header, two data rows and a
// formula column summing A and B per row.
func writeBaseWorkbook(t *testing.T, path string) {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	require.NoError(t, f.SetSheetName(f.GetSheetName(0), "Data"))
	require.NoError(t, f.SetSheetRow("Data", "A1", &[]interface{}{"a", "b", "total"}))
	require.NoError(t, f.SetSheetRow("Data", "A2", &[]interface{}{1, 2}))
	require.NoError(t, f.SetCellFormula("Data", "C2", "A2+B2"))
	require.NoError(t, f.SetSheetRow("Data", "A3", &[]interface{}{3, 4}))
	require.NoError(t, f.SetCellFormula("Data", "C3", "A3+B3"))

	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	require.NoError(t, err)
	require.NoError(t, f.SetCellStyle("Data", "A3", "A3", style))

	require.NoError(t, f.SaveAs(path))
}

func writeAppendWorkbook(t *testing.T, path string) {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	require.NoError(t, f.SetSheetName(f.GetSheetName(0), "Data"))
	require.NoError(t, f.SetSheetRow("Data", "A1", &[]interface{}{"a", "b", "total"}))
	require.NoError(t, f.SetSheetRow("Data", "A2", &[]interface{}{5, 6}))
	require.NoError(t, f.SetSheetRow("Data", "A3", &[]interface{}{7, 8}))
	require.NoError(t, f.SaveAs(path))
}

func TestAppendWithFormulas(t *testing.T) {
	dir := t.TempDir()
	basePath := filepath.Join(dir, "base.xlsx")
	extraPath := filepath.Join(dir, "extra.xlsx")
	writeBaseWorkbook(t, basePath)
	writeAppendWorkbook(t, extraPath)

	datasets := []model.Dataset{
		{ID: "base", DisplayName: "base.xlsx", Source: basePath, Columns: []string{"a", "b", "total"}},
		{ID: "extra", DisplayName: "extra.xlsx", Source: extraPath, Columns: []string{"a", "b", "total"}},
	}

	wb, err := xlsxio.OpenForAppend(basePath)
	require.NoError(t, err)
	defer wb.Close()

	engine := merger.New(xlsxio.Reader{}, merger.DefaultOptions())
	stats, report, err := engine.AppendWithFormulas(context.Background(), []string{"Data"}, datasets, wb)
	require.NoError(t, err)
	assert.False(t, report.HasIssues())

	require.Contains(t, stats, "Data")
	assert.Equal(t, 3, stats["Data"].OriginalRows)
	assert.Equal(t, 2, stats["Data"].AddedRows)

	// Reopen and verify appended values and translated formulas.
	f, err := excelize.OpenFile(basePath)
	require.NoError(t, err)
	defer f.Close()

	v, err := f.GetCellValue("Data", "A4")
	require.NoError(t, err)
	assert.Equal(t, "5", v)
	v, err = f.GetCellValue("Data", "B5")
	require.NoError(t, err)
	assert.Equal(t, "8", v)

	// Template rows 2 and 3 both project onto each appended row; the later
	// template wins, so row 4 carries row 3's formula shifted by one.
	formula, err := f.GetCellFormula("Data", "C4")
	require.NoError(t, err)
	assert.Equal(t, "A4+B4", formula)
	formula, err = f.GetCellFormula("Data", "C5")
	require.NoError(t, err)
	assert.Equal(t, "A5+B5", formula)
}

func TestAppendWithFormulasMissingSheet(t *testing.T) {
	dir := t.TempDir()
	basePath := filepath.Join(dir, "base.xlsx")
	extraPath := filepath.Join(dir, "extra.xlsx")
	writeBaseWorkbook(t, basePath)
	writeAppendWorkbook(t, extraPath)

	datasets := []model.Dataset{
		{ID: "base", Source: basePath},
		{ID: "extra", Source: extraPath},
	}

	wb, err := xlsxio.OpenForAppend(basePath)
	require.NoError(t, err)
	defer wb.Close()

	engine := merger.New(xlsxio.Reader{}, merger.DefaultOptions())
	stats, report, err := engine.AppendWithFormulas(context.Background(), []string{"Ghost"}, datasets, wb)
	require.NoError(t, err)

	assert.Empty(t, stats)
	assert.ErrorIs(t, report.Skipped, merger.ErrSheetNotFound)
}

func TestAppendWithFormulasNeedsTwoDatasets(t *testing.T) {
	engine := merger.New(xlsxio.Reader{}, merger.DefaultOptions())
	_, _, err := engine.AppendWithFormulas(context.Background(), []string{"Data"}, []model.Dataset{{ID: "only"}}, nil)
	var verr *model.ValidationError
	assert.ErrorAs(t, err, &verr)
}
