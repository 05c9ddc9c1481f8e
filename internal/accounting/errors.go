package accounting

import (
	"errors"
	"fmt"
)

// Reasons reported by ValidationError.
const (
	ReasonNonPositiveAmount = "non-positive amount"
	ReasonNegativeAmount    = "negative amount"
	ReasonMissing           = "required"
	ReasonUnbalanced        = "debit and credit totals differ"
	ReasonUnsupported       = "unsupported value"
)

// ValidationError reports bad input to a builder. It is never retried.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation error: " + e.Reason
	}
	return fmt.Sprintf("validation error: %s: %s", e.Field, e.Reason)
}

func invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// IsValidationError reports whether err wraps a ValidationError.
func IsValidationError(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}
