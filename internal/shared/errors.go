package shared

import (
	"errors"
	"strings"
)

var (
	// ErrNotFound indicates a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrPersistence indicates the atomic unit of work failed and was rolled
	// back. Callers receive no detail beyond this sentinel.
	ErrPersistence = errors.New("persistence failure")
	// ErrReportUnavailable indicates an aggregate query failed. The report
	// value is unknown, never zero.
	ErrReportUnavailable = errors.New("report unavailable")
)

// ValidationError lists the fields that failed input validation. It is
// returned before any persistence attempt.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	return "validation failed: " + strings.Join(e.Fields, ", ")
}

// NewValidationError builds a ValidationError over the offending fields.
func NewValidationError(fields ...string) *ValidationError {
	return &ValidationError{Fields: fields}
}

// AsValidation unwraps err into a ValidationError when possible.
func AsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	ok := errors.As(err, &ve)
	return ve, ok
}
