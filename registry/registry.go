// Package registry provides the in-process service registry that wires a
// generation run together. A Registry is scoped to one orchestrator
// invocation: capabilities are registered at scope entry, resolved lazily,
// and released in reverse registration order when the scope ends.
package registry

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// Factory constructs a capability on first resolution.
type Factory func(ctx context.Context) (any, error)

// Disposable is implemented by resolved instances that need teardown.
// Dispose calls Close exactly once per resolved instance.
type Disposable interface {
	Close(ctx context.Context) error
}

// ResolutionError indicates a capability was never registered. This is a
// wiring defect and is always fatal to the current scope.
type ResolutionError struct {
	Key string
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("no capability registered for key %q", e.Key)
}

type entry struct {
	mu       sync.Mutex
	factory  Factory
	instance any
	resolved bool
}

// Registry is a scoped dependency container. It is intentionally a keyed
// map plus a resolution/memoization/disposal protocol; construction order
// lives with the registrar, not scattered across consumers.
type Registry struct {
	mu       sync.Mutex
	entries  map[string]*entry
	order    []string // registration order, for reverse-order disposal
	disposed bool
}

// New creates an empty Registry.
func New() *Registry {
	return &Registry{entries: make(map[string]*entry)}
}

// RegisterInstance stores a pre-built capability under key.
// Re-registering a key replaces the previous entry.
func (r *Registry) RegisterInstance(key string, value any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.register(key, &entry{instance: value, resolved: true})
}

// RegisterFactory stores a constructor invoked lazily on first Resolve and
// memoized thereafter: at most one instance per key is ever constructed.
func (r *Registry) RegisterFactory(key string, factory Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.register(key, &entry{factory: factory})
}

func (r *Registry) register(key string, e *entry) {
	if _, exists := r.entries[key]; !exists {
		r.order = append(r.order, key)
	}
	r.entries[key] = e
}

// Resolve returns the instance for key, constructing it via the registered
// factory if needed. Construction holds only the entry's own lock, so a
// factory may resolve other keys from the same registry. A failed factory
// is not memoized; the next Resolve retries construction.
func (r *Registry) Resolve(ctx context.Context, key string) (any, error) {
	r.mu.Lock()
	e, ok := r.entries[key]
	r.mu.Unlock()
	if !ok {
		return nil, &ResolutionError{Key: key}
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.resolved {
		return e.instance, nil
	}

	instance, err := e.factory(ctx)
	if err != nil {
		return nil, fmt.Errorf("construct %q: %w", key, err)
	}
	e.instance = instance
	e.resolved = true
	return instance, nil
}

// Dispose releases every resolved instance that implements Disposable, in
// reverse registration order. Teardown failures are collected and reported
// together; one failing release never aborts the remaining ones.
// Dispose is idempotent.
func (r *Registry) Dispose(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.disposed {
		return nil
	}
	r.disposed = true

	var errs []error
	for i := len(r.order) - 1; i >= 0; i-- {
		key := r.order[i]
		e := r.entries[key]

		e.mu.Lock()
		resolved, instance := e.resolved, e.instance
		e.mu.Unlock()

		if !resolved {
			continue
		}
		d, ok := instance.(Disposable)
		if !ok {
			continue
		}
		if err := d.Close(ctx); err != nil {
			errs = append(errs, fmt.Errorf("dispose %q: %w", key, err))
		}
	}
	return errors.Join(errs...)
}
