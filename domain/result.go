package domain

import "time"

// ResultStatus classifies the outcome of one page's generation.
type ResultStatus string

const (
	StatusSuccess ResultStatus = "success"
	StatusFailure ResultStatus = "failure"

	// StatusPartial is reserved for callers aggregating batch outcomes;
	// per-item generation is always success or failure.
	StatusPartial ResultStatus = "partial"
)

// GenerationResult records the outcome of generating one page definition.
// Exactly one result exists per processed definition; a batch returns one
// result per input in input order, regardless of individual failures.
type GenerationResult struct {
	PageName      string        `json:"page_name"`
	Status        ResultStatus  `json:"status"`
	GeneratedCode string        `json:"generated_code,omitempty"`
	ErrorMessage  string        `json:"error_message,omitempty"`
	Duration      time.Duration `json:"duration"`

	// AttemptCount is how many AI calls were made for this page, >= 1.
	AttemptCount int `json:"attempt_count"`
}

// NewSuccessResult builds a success result for a page.
func NewSuccessResult(pageName, code string, duration time.Duration, attempts int) GenerationResult {
	if attempts < 1 {
		attempts = 1
	}
	return GenerationResult{
		PageName:      pageName,
		Status:        StatusSuccess,
		GeneratedCode: code,
		Duration:      duration,
		AttemptCount:  attempts,
	}
}

// NewFailureResult builds a failure result for a page.
// GeneratedCode is always empty on failure.
func NewFailureResult(pageName, errMessage string, duration time.Duration, attempts int) GenerationResult {
	if attempts < 1 {
		attempts = 1
	}
	return GenerationResult{
		PageName:     pageName,
		Status:       StatusFailure,
		ErrorMessage: errMessage,
		Duration:     duration,
		AttemptCount: attempts,
	}
}

// Succeeded reports whether the generation produced code.
func (r GenerationResult) Succeeded() bool {
	return r.Status == StatusSuccess
}
