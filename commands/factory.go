package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/c360studio/pageforge/domain"
	"github.com/c360studio/pageforge/registry"
	"github.com/c360studio/pageforge/storage"
)

// Registry keys for the capabilities the strategies depend on.
const (
	KeyPageRepository   = "repository.pages"
	KeyResultRepository = "repository.results"
	KeyGenerator        = "generator"
	KeyOutputSink       = "output.sink"
)

// UnsupportedModeError indicates a mode outside the closed enum reached
// the factory. This is a caller defect and is fatal.
type UnsupportedModeError struct {
	Mode domain.ExecutionMode
}

func (e *UnsupportedModeError) Error() string {
	return fmt.Sprintf("unsupported execution mode: %q", e.Mode)
}

// Factory maps an execution mode to a constructed strategy, resolving
// dependencies from the registry. It is stateless: each Create returns an
// independently usable instance; only registry-memoized capabilities (the
// repository, the generator) are shared between them.
type Factory struct {
	registry       *registry.Registry
	maxParallelism int
	logger         *slog.Logger
}

// NewFactory creates a strategy factory over the given registry.
func NewFactory(reg *registry.Registry, maxParallelism int, logger *slog.Logger) *Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &Factory{registry: reg, maxParallelism: maxParallelism, logger: logger}
}

// Create builds the strategy for the given mode.
func (f *Factory) Create(ctx context.Context, mode domain.ExecutionMode) (Command, error) {
	switch mode {
	case domain.ModeSingleFile, domain.ModeDirectoryBatch:
		// Dependencies are resolved identically for both strategies.
	default:
		return nil, &UnsupportedModeError{Mode: mode}
	}

	gen, err := resolveAs[CodeGenerator](ctx, f.registry, KeyGenerator)
	if err != nil {
		return nil, err
	}
	pages, err := resolveAs[storage.PageDefinitionRepository](ctx, f.registry, KeyPageRepository)
	if err != nil {
		return nil, err
	}

	if mode == domain.ModeSingleFile {
		return NewSingleCommand(gen, pages, f.logger), nil
	}
	return NewBatchCommand(gen, pages, f.maxParallelism, f.logger), nil
}

// resolveAs resolves a registry key and asserts its type.
func resolveAs[T any](ctx context.Context, reg *registry.Registry, key string) (T, error) {
	var zero T
	v, err := reg.Resolve(ctx, key)
	if err != nil {
		return zero, err
	}
	typed, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("capability %q has unexpected type %T", key, v)
	}
	return typed, nil
}
