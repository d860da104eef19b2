package merger

import (
	"context"
	"fmt"
	"strings"

	"github.com/DaJu-Duck/excel-merger/pkg/merger/model"
)

// MergeSimple concatenates, per selected sheet name, every dataset's sheet of
// that name, then removes exact full-row duplicates keeping first occurrence.
// One table per sheet name is handed to writer; the result maps sheet name to
// the row count written.
//
// A dataset that fails to read is skipped and recorded in the report. A
// header mismatch is fatal for that sheet only; remaining sheets continue.
func (e *Engine) MergeSimple(ctx context.Context, selectedSheets []string, datasets []model.Dataset, writer TableWriter) (map[string]int, *Report, error) {
	report := &Report{}
	if len(selectedSheets) == 0 {
		return nil, report, &model.ValidationError{Msg: "simple relation selects zero sheets"}
	}

	// Sheet listings, one pass per dataset. A failed listing skips the
	// dataset for every sheet.
	listings := make(map[string][]string, len(datasets))
	steps := newStepper(len(datasets)+2*len(selectedSheets), e.opts)
	for _, ds := range datasets {
		if err := ctx.Err(); err != nil {
			return nil, report, err
		}
		sheets, err := e.reader.ListSheets(ds.Source)
		if err != nil {
			report.skip(&ReadError{Dataset: ds.ID, Err: err})
			e.log.Warnw("skipping unreadable dataset", "dataset", ds.ID, "error", err)
			steps.step(StageRead, "skipped dataset %s", ds.ID)
			continue
		}
		listings[ds.ID] = sheets
		steps.step(StageRead, "listed sheets of dataset %s", ds.ID)
	}

	counts := make(map[string]int, len(selectedSheets))
	for _, sheet := range selectedSheets {
		if err := ctx.Err(); err != nil {
			return counts, report, err
		}
		table, err := e.concatSheet(sheet, datasets, listings, report)
		steps.step(StageRead, "gathered sheet %q", sheet)
		if err != nil {
			// Fatal for this sheet only.
			report.skip(err)
			e.log.Warnw("sheet failed", "sheet", sheet, "error", err)
			continue
		}
		if table == nil {
			report.warnf("sheet %q not present in any dataset", sheet)
			continue
		}
		if err := writer.WriteTable(sheet, table); err != nil {
			return counts, report, &WriteError{Target: sheet, Err: err}
		}
		counts[sheet] = table.RowCount()
		steps.step(StageWrite, "wrote sheet %q (%d rows)", sheet, table.RowCount())
	}
	return counts, report, nil
}

// concatSheet gathers one sheet name across datasets, enforcing identical
// headers, and dedupes exact rows. Returns nil when no dataset has the sheet.
func (e *Engine) concatSheet(sheet string, datasets []model.Dataset, listings map[string][]string, report *Report) (*model.MergeTable, error) {
	var table *model.MergeTable
	seen := make(map[string]struct{})

	for _, ds := range datasets {
		if !containsSheet(listings[ds.ID], sheet) {
			continue
		}
		header, err := e.reader.ReadHeader(ds.Source, sheet)
		if err != nil {
			report.skip(&ReadError{Dataset: ds.ID, Sheet: sheet, Err: err})
			continue
		}
		if table == nil {
			// First contributing dataset defines column identity.
			table = model.NewMergeTable(header)
		} else if !equalHeaders(table.Columns, header) {
			return nil, &SchemaMismatchError{Sheet: sheet, Dataset: ds.ID, Want: table.Columns, Got: header}
		}
		rows, err := e.reader.ReadRows(ds.Source, sheet)
		if err != nil {
			report.skip(&ReadError{Dataset: ds.ID, Sheet: sheet, Err: err})
			continue
		}
		for _, row := range rows {
			fp := rowFingerprint(row, table.Columns)
			if _, dup := seen[fp]; dup {
				continue
			}
			seen[fp] = struct{}{}
			table.Rows = append(table.Rows, row)
		}
	}
	return table, nil
}

func containsSheet(sheets []string, name string) bool {
	for _, s := range sheets {
		if s == name {
			return true
		}
	}
	return false
}

func equalHeaders(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// rowFingerprint canonicalizes a row in column order for exact-duplicate
// detection.
func rowFingerprint(row model.Row, columns []string) string {
	var b strings.Builder
	for _, c := range columns {
		fmt.Fprintf(&b, "%v\x1f", row[c])
	}
	return b.String()
}
