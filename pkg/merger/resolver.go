package merger

import (
	"fmt"
	"regexp"
	"strings"
)

// extensionSuffix matches a file-extension-like tail of a display name:
// a dot followed by a short token that starts with a letter.
var extensionSuffix = regexp.MustCompile(`\.[A-Za-z][A-Za-z0-9]{0,4}$`)

// NamePrefix derives the column-rename prefix from a dataset display name by
// stripping an extension-like suffix. "sales.xlsx" becomes "sales".
func NamePrefix(displayName string) string {
	if loc := extensionSuffix.FindStringIndex(displayName); loc != nil {
		return displayName[:loc[0]]
	}
	return displayName
}

// ResolveColumns maps each incoming column name to the name it will carry in
// the accumulated table.
//
// The join key is never renamed, which lets the join re-key on it. Any other
// incoming column already present in accumulated becomes "prefix_column"; if
// that still collides, a numeric suffix ("_2", "_3", ...) is appended until
// the name is unique. Uniqueness across the whole accumulated set is a hard
// invariant of MergeTable.
func ResolveColumns(accumulated map[string]struct{}, incoming []string, joinKey, namePrefix string) map[string]string {
	taken := make(map[string]struct{}, len(accumulated)+len(incoming))
	for c := range accumulated {
		taken[c] = struct{}{}
	}

	mapping := make(map[string]string, len(incoming))
	for _, col := range incoming {
		if col == joinKey {
			mapping[col] = col
			continue
		}
		name := col
		if _, clash := taken[name]; clash {
			name = namePrefix + "_" + col
			for n := 2; ; n++ {
				if _, clash := taken[name]; !clash {
					break
				}
				name = fmt.Sprintf("%s_%s_%d", namePrefix, col, n)
			}
		}
		mapping[col] = name
		taken[name] = struct{}{}
	}
	return mapping
}

// renameColumns applies a resolver mapping to a column list, preserving order.
func renameColumns(columns []string, mapping map[string]string) []string {
	out := make([]string, len(columns))
	for i, c := range columns {
		if renamed, ok := mapping[c]; ok {
			out[i] = renamed
		} else {
			out[i] = c
		}
	}
	return out
}

// matchOutputColumn resolves a requested logical column name against actual
// table columns: exact match first, then suffix match against "_<requested>".
func matchOutputColumn(requested string, columns []string) (string, bool) {
	for _, c := range columns {
		if c == requested {
			return c, true
		}
	}
	suffix := "_" + requested
	for _, c := range columns {
		if strings.HasSuffix(c, suffix) {
			return c, true
		}
	}
	return "", false
}
