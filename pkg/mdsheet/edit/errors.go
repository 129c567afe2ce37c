// Package edit implements the structural edits of a workbook as pure transforms.
//
// Every transform takes a models.Workbook by value and returns a new one; only the touched path
// (workbook, sheet, table) is copied, and untouched siblings are shared. Indices are validated
// before anything is built, so a failed transform has no effect.
package edit

import (
	"errors"
	"fmt"
)

// ErrInvalidTarget indicates a move with a missing or unsatisfiable destination.
var ErrInvalidTarget = errors.New("invalid target")

// IndexError reports an out-of-range sheet, table, row, column or document index.
type IndexError struct {
	Kind  string // "sheet", "table", "row", "column", "document"
	Index int
	Len   int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("invalid %s index %d (have %d)", e.Kind, e.Index, e.Len)
}

func checkIndex(kind string, index, n int) error {
	if index < 0 || index >= n {
		return &IndexError{Kind: kind, Index: index, Len: n}
	}
	return nil
}
