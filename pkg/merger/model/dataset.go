// Package model defines the data structures shared by the merge strategies.
package model

// Row maps column name to a scalar cell value.
// Values are int64, float64, bool or string; a missing column means null.
type Row map[string]interface{}

// Clone returns a shallow copy of the row. Scalar values need no deep copy.
func (r Row) Clone() Row {
	out := make(Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Dataset describes one registered input source. Datasets are immutable once
// registered; relation specs reference them by ID.
type Dataset struct {
	// ID is the caller-assigned identifier used by RelationSpec.
	ID string `json:"id"`
	// DisplayName is the human-readable name, typically the file name.
	// It seeds column-rename prefixes after the extension is stripped.
	DisplayName string `json:"display_name"`
	// Source is the opaque handle passed to the TableReader, typically a path.
	Source string `json:"source"`
	// Columns is the ordered column set of the dataset's primary sheet.
	Columns []string `json:"columns"`
}

// HasColumn reports whether name is one of the dataset's registered columns.
func (d *Dataset) HasColumn(name string) bool {
	for _, c := range d.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// MergeTable is an in-memory table with uniquely named, ordered columns.
type MergeTable struct {
	// Columns is the ordered column list. Names are unique within a table.
	Columns []string `json:"columns"`
	// Rows holds the table content in order.
	Rows []Row `json:"rows"`
}

// NewMergeTable returns an empty table with the given column order.
func NewMergeTable(columns []string) *MergeTable {
	return &MergeTable{Columns: append([]string(nil), columns...)}
}

// ColumnSet returns the column names as a set.
func (t *MergeTable) ColumnSet() map[string]struct{} {
	set := make(map[string]struct{}, len(t.Columns))
	for _, c := range t.Columns {
		set[c] = struct{}{}
	}
	return set
}

// RowCount returns the number of rows.
func (t *MergeTable) RowCount() int {
	return len(t.Rows)
}
