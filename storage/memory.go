package storage

import (
	"context"
	"fmt"
	"sync"

	"github.com/c360studio/pageforge/domain"
)

// MemoryPageRepository is the in-memory reference implementation of
// PageDefinitionRepository. It provides no persistence across process
// lifetimes; that boundary is deliberate. Mutations are serialized by a
// single mutex since concurrently executing strategies share the instance
// within one registry scope.
type MemoryPageRepository struct {
	mu    sync.Mutex
	byKey map[string]domain.PageDefinition
	order []string
}

// NewMemoryPageRepository creates an empty in-memory page repository.
func NewMemoryPageRepository() *MemoryPageRepository {
	return &MemoryPageRepository{byKey: make(map[string]domain.PageDefinition)}
}

// Add stores a definition, failing with ErrDuplicateKey on a repeated name.
func (r *MemoryPageRepository) Add(_ context.Context, def domain.PageDefinition) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byKey[def.Name]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateKey, def.Name)
	}
	r.byKey[def.Name] = def
	r.order = append(r.order, def.Name)
	return nil
}

// Get returns the definition with the given name.
func (r *MemoryPageRepository) Get(_ context.Context, name string) (domain.PageDefinition, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	def, ok := r.byKey[name]
	if !ok {
		return domain.PageDefinition{}, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	return def, nil
}

// List returns all definitions in insertion order.
func (r *MemoryPageRepository) List(_ context.Context) ([]domain.PageDefinition, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	defs := make([]domain.PageDefinition, 0, len(r.order))
	for _, name := range r.order {
		defs = append(defs, r.byKey[name])
	}
	return defs, nil
}

// MemoryResultRepository is the in-memory reference implementation of
// GenerationResultRepository.
type MemoryResultRepository struct {
	mu       sync.Mutex
	sessions map[string][]domain.GenerationResult
}

// NewMemoryResultRepository creates an empty in-memory result repository.
func NewMemoryResultRepository() *MemoryResultRepository {
	return &MemoryResultRepository{sessions: make(map[string][]domain.GenerationResult)}
}

// Record appends a result to the session's history.
func (r *MemoryResultRepository) Record(_ context.Context, sessionID string, result domain.GenerationResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[sessionID] = append(r.sessions[sessionID], result)
	return nil
}

// ListForSession returns the session's results in insertion order.
func (r *MemoryResultRepository) ListForSession(_ context.Context, sessionID string) ([]domain.GenerationResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := r.sessions[sessionID]
	results := make([]domain.GenerationResult, len(stored))
	copy(results, stored)
	return results, nil
}
