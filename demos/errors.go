package demos

import (
	"errors"
	"fmt"

	"github.com/warp/retail-dashboard/dataset"
)

var (
	// ErrUnknownDemo is returned for a demo ID no board declares.
	ErrUnknownDemo = errors.New("unknown demo")

	// ErrUnknownBoard is returned for an unregistered board ID.
	ErrUnknownBoard = errors.New("unknown board")

	// ErrInvalidParam is returned when a widget value is rejected.
	ErrInvalidParam = errors.New("invalid parameter")
)

// ParamError describes a rejected widget value.
type ParamError struct {
	Name   string
	Value  string
	Reason string
}

func (e *ParamError) Error() string {
	return fmt.Sprintf("parameter %s=%q: %s", e.Name, e.Value, e.Reason)
}

func (e *ParamError) Unwrap() error {
	return ErrInvalidParam
}

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidParam) ||
		errors.Is(err, dataset.ErrUnknownColumn)
}

// IsNotFound returns true if the error names a missing board, demo or column.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrUnknownDemo) ||
		errors.Is(err, ErrUnknownBoard) ||
		errors.Is(err, dataset.ErrUnknownColumn)
}
