package pipeline

import (
	"errors"
	"fmt"
)

// ErrInvalidParameter is matched by every parameter validation failure.
var ErrInvalidParameter = errors.New("invalid parameter")

// InvalidParameterError names the offending field of a rejected parameter
// record.
type InvalidParameterError struct {
	Field  string
	Reason string
}

func (e *InvalidParameterError) Error() string {
	return fmt.Sprintf("invalid parameter %s: %s", e.Field, e.Reason)
}

// Unwrap lets errors.Is match ErrInvalidParameter.
func (e *InvalidParameterError) Unwrap() error { return ErrInvalidParameter }

func invalid(field, format string, args ...any) error {
	return &InvalidParameterError{Field: field, Reason: fmt.Sprintf(format, args...)}
}
