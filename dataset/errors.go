package dataset

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedRow is returned when a row is missing fields or key values.
	ErrMalformedRow = errors.New("malformed row")

	// ErrUnknownColumn is returned for a column name outside Columns.
	ErrUnknownColumn = errors.New("unknown column")

	// ErrNoSource is returned by a Cache constructed without a Source.
	ErrNoSource = errors.New("dataset source not configured")
)

// RowError locates a malformed row in its file.
type RowError struct {
	File   string
	Line   int // 1-based
	Reason string
}

func (e *RowError) Error() string {
	if e.File == "" {
		return fmt.Sprintf("line %d: %s", e.Line, e.Reason)
	}
	return fmt.Sprintf("%s:%d: %s", e.File, e.Line, e.Reason)
}

func (e *RowError) Unwrap() error {
	return ErrMalformedRow
}

// ColumnError names the rejected column.
type ColumnError struct {
	Name string
}

func (e *ColumnError) Error() string {
	return fmt.Sprintf("unknown column %q", e.Name)
}

func (e *ColumnError) Unwrap() error {
	return ErrUnknownColumn
}
