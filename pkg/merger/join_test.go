package merger

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/DaJu-Duck/excel-merger/pkg/merger/model"
)

func TestJoinKeyString(t *testing.T) {
	tests := []struct {
		name  string
		value interface{}
		want  string
		ok    bool
	}{
		{"int64", int64(7), "7", true},
		{"whole float matches int", float64(7), "7", true},
		{"fractional float", 7.5, "7.5", true},
		{"string", "abc", "abc", true},
		{"numeric string matches int", "7", "7", true},
		{"empty string is null", "", "", false},
		{"nil is null", nil, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := joinKeyString(tt.value)
			assert.Equal(t, tt.ok, ok)
			if ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestOuterJoinMultiplicity(t *testing.T) {
	left := model.NewMergeTable([]string{"k", "l"})
	left.Rows = []model.Row{{"k": int64(1), "l": "x"}}
	right := model.NewMergeTable([]string{"rk", "r"})
	right.Rows = []model.Row{
		{"rk": int64(1), "r": "a"},
		{"rk": int64(1), "r": "b"},
	}

	out := outerJoin(left, right, "k", "rk")

	// One left row matching two right rows yields two result rows.
	assert.Equal(t, 2, out.RowCount())
	assert.Equal(t, "a", out.Rows[0]["r"])
	assert.Equal(t, "b", out.Rows[1]["r"])
}

func TestOuterJoinNullKeysNeverMatch(t *testing.T) {
	left := model.NewMergeTable([]string{"k", "l"})
	left.Rows = []model.Row{{"l": "no key"}}
	right := model.NewMergeTable([]string{"rk", "r"})
	right.Rows = []model.Row{{"r": "also no key"}}

	out := outerJoin(left, right, "k", "rk")

	// Both survive as unmatched rows.
	assert.Equal(t, 2, out.RowCount())
	assert.Nil(t, out.Rows[0]["r"])
	assert.Nil(t, out.Rows[1]["l"])
}

func TestOuterJoinCoalescesSharedKeyColumn(t *testing.T) {
	// Right key column carries the same name as the left key: values must
	// land in one column, filled from the right for right-only rows.
	left := model.NewMergeTable([]string{"id", "name"})
	left.Rows = []model.Row{{"id": int64(1), "name": "one"}}
	right := model.NewMergeTable([]string{"id", "score"})
	right.Rows = []model.Row{
		{"id": int64(1), "score": int64(10)},
		{"id": int64(2), "score": int64(20)},
	}

	out := outerJoin(left, right, "id", "id")

	assert.Equal(t, []string{"id", "name", "score"}, out.Columns)
	assert.Equal(t, 2, out.RowCount())
	assert.Equal(t, int64(1), out.Rows[0]["id"])
	assert.Equal(t, int64(2), out.Rows[1]["id"])
	assert.Nil(t, out.Rows[1]["name"])
}

func TestCrossJoin(t *testing.T) {
	left := model.NewMergeTable([]string{"a"})
	left.Rows = []model.Row{{"a": int64(1)}, {"a": int64(2)}}
	right := model.NewMergeTable([]string{"b"})
	right.Rows = []model.Row{{"b": "x"}, {"b": "y"}, {"b": "z"}}

	out := crossJoin(left, right)

	assert.Equal(t, 6, out.RowCount())
	assert.Equal(t, []string{"a", "b"}, out.Columns)
	assert.Equal(t, model.Row{"a": int64(1), "b": "x"}, out.Rows[0])
	assert.Equal(t, model.Row{"a": int64(2), "b": "z"}, out.Rows[5])
}
