// Package formula rewrites row-relative cell references inside formula text
// when rows are relocated or appended.
//
// Only single-cell A1-style references are handled. Ranges, named ranges and
// cross-sheet references pass through untouched, and column letters are never
// translated.
package formula

import (
	"regexp"
	"strconv"
	"strings"
)

// CellReference is one parsed A1-style reference token.
type CellReference struct {
	// Column holds the column letters, e.g. "A" or "AB".
	Column string
	// ColumnAbsolute is true when the column carries a $ marker.
	ColumnAbsolute bool
	// Row is the 1-based row number.
	Row int
	// RowAbsolute is true when the row carries a $ marker.
	RowAbsolute bool
}

// refPattern matches: optional $, column letters, optional $, row digits.
// Submatch indices: 1=column $, 2=letters, 3=row $, 4=digits.
var refPattern = regexp.MustCompile(`(\$?)([A-Z]+)(\$?)([0-9]+)`)

// IsFormula reports whether text is formula content rather than a literal.
func IsFormula(text string) bool {
	return strings.HasPrefix(text, "=")
}

// ParseReferences returns every cell reference found in the formula, in
// order of appearance. A string that does not begin with "=" is a literal
// value and yields no references.
func ParseReferences(formula string) []CellReference {
	if !IsFormula(formula) {
		return nil
	}
	var refs []CellReference
	for _, m := range refPattern.FindAllStringSubmatchIndex(formula, -1) {
		refs = append(refs, referenceAt(formula, m))
	}
	return refs
}

func referenceAt(formula string, m []int) CellReference {
	row, _ := strconv.Atoi(formula[m[8]:m[9]])
	return CellReference{
		Column:         formula[m[4]:m[5]],
		ColumnAbsolute: m[3] > m[2],
		Row:            row,
		RowAbsolute:    m[7] > m[6],
	}
}

// Translate rewrites each relative row number that appears in rowMapping to
// its mapped value. Absolute rows ($-prefixed) are never altered, and neither
// are column letters. Literals (no leading "=") are returned unchanged.
//
// Replacement is applied token by token from the match positions, so a
// rewritten row can never corrupt an identical substring that belongs to a
// different reference later in the formula.
func Translate(formula string, rowMapping map[int]int) string {
	if !IsFormula(formula) || len(rowMapping) == 0 {
		return formula
	}
	return rewriteRows(formula, func(row int) (int, bool) {
		mapped, ok := rowMapping[row]
		return mapped, ok
	})
}

// TranslateByOffset shifts every relative row number by rowOffset. It is
// equivalent to Translate with a mapping of row -> row+rowOffset for every
// row present in the formula. A shift below row 1 leaves the reference
// unchanged since the resulting cell cannot exist.
func TranslateByOffset(formula string, rowOffset int) string {
	if !IsFormula(formula) || rowOffset == 0 {
		return formula
	}
	return rewriteRows(formula, func(row int) (int, bool) {
		shifted := row + rowOffset
		if shifted < 1 {
			return 0, false
		}
		return shifted, true
	})
}

// rewriteRows rebuilds the formula left to right, substituting the row digit
// segment of each non-absolute reference for which remap returns a new row.
func rewriteRows(formula string, remap func(row int) (int, bool)) string {
	matches := refPattern.FindAllStringSubmatchIndex(formula, -1)
	if len(matches) == 0 {
		return formula
	}

	var b strings.Builder
	b.Grow(len(formula) + len(matches)*2)
	last := 0
	for _, m := range matches {
		rowStart, rowEnd := m[8], m[9]
		rowAbsolute := m[7] > m[6]
		b.WriteString(formula[last:rowStart])
		last = rowEnd

		segment := formula[rowStart:rowEnd]
		if !rowAbsolute {
			if row, err := strconv.Atoi(segment); err == nil {
				if mapped, ok := remap(row); ok {
					segment = strconv.Itoa(mapped)
				}
			}
		}
		b.WriteString(segment)
	}
	b.WriteString(formula[last:])
	return b.String()
}
