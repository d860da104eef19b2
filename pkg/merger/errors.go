package merger

import (
	"errors"
	"fmt"
)

// ErrSheetNotFound indicates a requested sheet is absent from a workbook.
var ErrSheetNotFound = errors.New("sheet not found")

// ErrNoOutputColumns indicates that none of the requested output columns
// resolved against the merged table.
var ErrNoOutputColumns = errors.New("no output columns matched")

// ErrCrossJoinLimit indicates the chain fallback cross join would exceed the
// configured row limit.
var ErrCrossJoinLimit = errors.New("cross join row limit exceeded")

// ErrUnresolvableGraph indicates the chain relation could not incorporate
// every dataset even after the cross-join fallback.
var ErrUnresolvableGraph = errors.New("relation graph cannot be resolved")

// SchemaMismatchError reports that two files contribute a sheet of the same
// name with different header rows. Fatal for that sheet only.
type SchemaMismatchError struct {
	Sheet   string
	Dataset string
	Want    []string
	Got     []string
}

func (e *SchemaMismatchError) Error() string {
	return fmt.Sprintf("sheet %q: dataset %q header %v does not match expected %v",
		e.Sheet, e.Dataset, e.Got, e.Want)
}

// ReadError reports a failure to open or parse one source. Recoverable in the
// simple and append workflows; fatal for a relational strategy's datasets.
type ReadError struct {
	Dataset string
	Sheet   string
	Err     error
}

func (e *ReadError) Error() string {
	if e.Sheet != "" {
		return fmt.Sprintf("read dataset %q sheet %q: %v", e.Dataset, e.Sheet, e.Err)
	}
	return fmt.Sprintf("read dataset %q: %v", e.Dataset, e.Err)
}

func (e *ReadError) Unwrap() error {
	return e.Err
}

// WriteError reports a failed output save. Always fatal; no partial-file
// guarantee is made.
type WriteError struct {
	Target string
	Err    error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write %q: %v", e.Target, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}
