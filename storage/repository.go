// Package storage provides the repository contracts for page definitions
// and generation results, an in-memory reference implementation, and a
// NATS KV-backed result repository for durable runs.
package storage

import (
	"context"

	"github.com/c360studio/pageforge/domain"
)

// PageDefinitionRepository stores page definitions keyed by name.
type PageDefinitionRepository interface {
	// Add stores a definition. Fails with ErrDuplicateKey if a definition
	// with the same name is already present.
	Add(ctx context.Context, def domain.PageDefinition) error

	// Get returns the definition with the given name, or ErrNotFound.
	Get(ctx context.Context, name string) (domain.PageDefinition, error)

	// List returns all definitions in insertion order.
	List(ctx context.Context) ([]domain.PageDefinition, error)
}

// GenerationResultRepository records generation results per session.
// Sessions are identified by the ExecutionContext correlation id.
type GenerationResultRepository interface {
	// Record appends a result to the session's history.
	Record(ctx context.Context, sessionID string, result domain.GenerationResult) error

	// ListForSession returns the session's results in insertion order.
	ListForSession(ctx context.Context, sessionID string) ([]domain.GenerationResult, error)
}
