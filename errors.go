package winfilter

import (
	"errors"
	"fmt"
)

// Validation errors. Every error returned by the filter constructors and
// loaders wraps exactly one of these.
var (
	ErrRaggedKernel         = errors.New("not all kernel rows have the same length")
	ErrEmptyKernel          = errors.New("kernel must have at least one row and one column")
	ErrKernelTooLarge       = errors.New("kernel is too large")
	ErrKernelChannels       = errors.New("kernel cells must have 1 or 3 channels")
	ErrKernelNotFinite      = errors.New("kernel weights must be finite")
	ErrKernelNotNumeric     = errors.New("kernel must be a nested array of numbers")
	ErrPivotDimensions      = errors.New("pivot must have 2 dimensions")
	ErrPivotNotInteger      = errors.New("pivot components must be integers")
	ErrPivotOutOfBounds     = errors.New("pivot is out of bounds")
	ErrNotBoolean           = errors.New("value must be a boolean")
	ErrOffsetNotInteger     = errors.New("offset must be an integer")
	ErrUnknownLimitFunction = errors.New("unknown limit function")
	ErrUnknownStatistic     = errors.New("unknown function filter")
	ErrInlineSyntax         = errors.New("malformed function filter")
	ErrMissingField         = errors.New("missing required field")
	ErrMalformedDocument    = errors.New("malformed filter document")
)

// ValidationError describes a filter that could not be constructed.
type ValidationError struct {
	// Filter is the name of the offending filter, if known.
	Filter string
	// Field is the offending field, e.g. "kernel" or "pivot".
	Field string
	Err   error
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Filter == "" {
		return fmt.Sprintf("invalid %s: %v", e.Field, e.Err)
	}
	return fmt.Sprintf("invalid %s for filter %s: %v", e.Field, e.Filter, e.Err)
}

// Unwrap returns the underlying sentinel error.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// IsInvalid reports whether err is a filter configuration error.
func IsInvalid(err error) bool {
	if err == nil {
		return false
	}
	var ve *ValidationError
	return errors.As(err, &ve)
}

func invalid(filter, field string, err error) error {
	return &ValidationError{Filter: filter, Field: field, Err: err}
}

func invalidf(filter, field string, err error, format string, args ...any) error {
	return &ValidationError{
		Filter: filter,
		Field:  field,
		Err:    fmt.Errorf("%w: %s", err, fmt.Sprintf(format, args...)),
	}
}
