package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ExecutionMode selects between single-item and batch processing.
type ExecutionMode string

const (
	// ModeSingleFile generates one Page Object from one definition.
	ModeSingleFile ExecutionMode = "single_file"

	// ModeDirectoryBatch generates Page Objects for an ordered set of
	// definitions, isolating per-item failures.
	ModeDirectoryBatch ExecutionMode = "directory_batch"
)

// ParseMode converts a string into an ExecutionMode.
// The mode set is closed; anything else is an error.
func ParseMode(s string) (ExecutionMode, error) {
	switch ExecutionMode(s) {
	case ModeSingleFile, ModeDirectoryBatch:
		return ExecutionMode(s), nil
	default:
		return "", fmt.Errorf("unknown execution mode: %q", s)
	}
}

// ExecutionContext correlates everything that happens within one
// generation run. It is created once per run and never mutated.
type ExecutionContext struct {
	// ID is the correlation id, also used as the result-repository
	// session key.
	ID string `json:"id"`

	Mode      ExecutionMode `json:"mode"`
	StartedAt time.Time     `json:"started_at"`
}

// NewExecutionContext creates a context for a run in the given mode.
func NewExecutionContext(mode ExecutionMode) ExecutionContext {
	return ExecutionContext{
		ID:        uuid.New().String(),
		Mode:      mode,
		StartedAt: time.Now(),
	}
}
