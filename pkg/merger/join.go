package merger

import (
	"fmt"

	"github.com/DaJu-Duck/excel-merger/pkg/merger/model"
)

// joinKeyString canonicalizes a cell value for key comparison so that typed
// and textual forms of the same number match.
func joinKeyString(v interface{}) (string, bool) {
	switch x := v.(type) {
	case nil:
		return "", false
	case string:
		if x == "" {
			return "", false
		}
		return x, true
	case float64:
		// Trim a trailing ".0" style mantissa so 7.0 matches int64(7).
		if x == float64(int64(x)) {
			return fmt.Sprintf("%d", int64(x)), true
		}
		return fmt.Sprintf("%v", x), true
	default:
		return fmt.Sprintf("%v", x), true
	}
}

// outerJoin combines left with right using full outer semantics on
// left[leftKey] == right[rightKey]. The right table's columns must already be
// conflict-resolved; a right column whose name is already present on the left
// (the never-renamed join key case) is coalesced into the existing column,
// with the left value winning on matched rows.
func outerJoin(left, right *model.MergeTable, leftKey, rightKey string) *model.MergeTable {
	leftSet := left.ColumnSet()
	columns := append([]string(nil), left.Columns...)
	for _, c := range right.Columns {
		if _, exists := leftSet[c]; !exists {
			columns = append(columns, c)
		}
	}
	result := model.NewMergeTable(columns)

	index := make(map[string][]int, len(right.Rows))
	for i, row := range right.Rows {
		if key, ok := joinKeyString(row[rightKey]); ok {
			index[key] = append(index[key], i)
		}
	}
	matched := make([]bool, len(right.Rows))

	for _, lrow := range left.Rows {
		key, ok := joinKeyString(lrow[leftKey])
		if !ok || len(index[key]) == 0 {
			result.Rows = append(result.Rows, lrow.Clone())
			continue
		}
		for _, ri := range index[key] {
			matched[ri] = true
			out := lrow.Clone()
			for c, v := range right.Rows[ri] {
				if _, exists := out[c]; !exists {
					out[c] = v
				}
			}
			result.Rows = append(result.Rows, out)
		}
	}

	// Right-only rows: null on every left-exclusive column.
	for ri, rrow := range right.Rows {
		if matched[ri] {
			continue
		}
		result.Rows = append(result.Rows, rrow.Clone())
	}

	return result
}

// crossJoin pairs every left row with every right row. Used only as the
// chain-mode fallback for a dataset no edge can reach.
func crossJoin(left, right *model.MergeTable) *model.MergeTable {
	leftSet := left.ColumnSet()
	columns := append([]string(nil), left.Columns...)
	for _, c := range right.Columns {
		if _, exists := leftSet[c]; !exists {
			columns = append(columns, c)
		}
	}
	result := model.NewMergeTable(columns)
	result.Rows = make([]model.Row, 0, len(left.Rows)*len(right.Rows))

	for _, lrow := range left.Rows {
		for _, rrow := range right.Rows {
			out := lrow.Clone()
			for c, v := range rrow {
				if _, exists := out[c]; !exists {
					out[c] = v
				}
			}
			result.Rows = append(result.Rows, out)
		}
	}
	return result
}

// renameRows rewrites row keys through a resolver mapping.
func renameRows(rows []model.Row, mapping map[string]string) []model.Row {
	out := make([]model.Row, len(rows))
	for i, row := range rows {
		r := make(model.Row, len(row))
		for c, v := range row {
			if renamed, ok := mapping[c]; ok {
				r[renamed] = v
			} else {
				r[c] = v
			}
		}
		out[i] = r
	}
	return out
}
