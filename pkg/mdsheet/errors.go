package mdsheet

import (
	"errors"
	"fmt"

	"github.com/ukaji3/mdsheet-go/pkg/mdsheet/edit"
	"github.com/ukaji3/mdsheet-go/pkg/mdsheet/patch"
)

// ErrNotInitialized indicates an operation before Initialize.
var ErrNotInitialized = errors.New("session not initialized")

// ErrIndexOutOfRange indicates a sheet, table, row, column or document index outside its list.
var ErrIndexOutOfRange = errors.New("index out of range")

// ErrInvalidTarget indicates a move with a missing or unsatisfiable destination.
var ErrInvalidTarget = errors.New("invalid target")

// ErrNotFound indicates a lookup that matched nothing.
var ErrNotFound = errors.New("not found")

// ErrInvalidParams indicates a request whose parameters could not be decoded.
var ErrInvalidParams = errors.New("invalid params")

// ErrTransformFailure indicates an unexpected failure inside an edit.
var ErrTransformFailure = errors.New("transform failure")

// OperationError represents a failed session operation.
type OperationError struct {
	Op   string // method name, e.g. "moveSheet"
	Kind error  // one of the Err sentinels above
	Err  error
}

func (e *OperationError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

// Unwrap exposes both the kind and the cause, so errors.Is matches the kind sentinel and
// errors.As reaches typed causes such as *edit.IndexError.
func (e *OperationError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// NewOperationError classifies err and wraps it for op.
func NewOperationError(op string, err error) *OperationError {
	var oe *OperationError
	if errors.As(err, &oe) {
		return &OperationError{Op: op, Kind: oe.Kind, Err: oe.Err}
	}
	return &OperationError{Op: op, Kind: classify(err), Err: err}
}

func classify(err error) error {
	var ie *edit.IndexError
	switch {
	case errors.Is(err, ErrNotInitialized):
		return ErrNotInitialized
	case errors.As(err, &ie), errors.Is(err, ErrIndexOutOfRange):
		return ErrIndexOutOfRange
	case errors.Is(err, edit.ErrInvalidTarget), errors.Is(err, ErrInvalidTarget):
		return ErrInvalidTarget
	case errors.Is(err, patch.ErrNotFound), errors.Is(err, ErrNotFound):
		return ErrNotFound
	case errors.Is(err, ErrInvalidParams):
		return ErrInvalidParams
	}
	return ErrTransformFailure
}

// Code returns the wire name of an error's kind, e.g. "IndexOutOfRange".
func Code(err error) string {
	switch classify(err) {
	case ErrNotInitialized:
		return "NotInitialized"
	case ErrIndexOutOfRange:
		return "IndexOutOfRange"
	case ErrInvalidTarget:
		return "InvalidTarget"
	case ErrNotFound:
		return "NotFound"
	case ErrInvalidParams:
		return "InvalidParams"
	}
	return "TransformFailure"
}
