package domain

import "strings"

// ValidationError reports every violation found in an input, not just the
// first, so callers can fix everything in one pass.
type ValidationError struct {
	Violations []string
}

func (e *ValidationError) Error() string {
	if len(e.Violations) == 0 {
		return "validation failed"
	}
	return "validation failed: " + strings.Join(e.Violations, "; ")
}

// NewValidationError collects the messages of the given errors into a
// single ValidationError. Returns nil if errs is empty.
func NewValidationError(errs []error) error {
	if len(errs) == 0 {
		return nil
	}
	violations := make([]string, 0, len(errs))
	for _, err := range errs {
		violations = append(violations, err.Error())
	}
	return &ValidationError{Violations: violations}
}
