// Package commands implements the execution strategies: generate one page,
// or generate a batch with per-item failure isolation. Strategies are
// constructed by the Factory, which resolves their dependencies from the
// service registry.
package commands

import (
	"context"
	"errors"
	"time"

	"github.com/c360studio/pageforge/domain"
	"github.com/c360studio/pageforge/generator"
)

// CodeGenerator is the slice of the generation service the strategies use.
type CodeGenerator interface {
	Generate(ctx context.Context, def domain.PageDefinition) (generator.Generation, error)
}

// Command is the execution-strategy contract. Validate reports every
// violation found, not just the first; Execute fails fast with a
// *domain.ValidationError when the input is invalid.
type Command interface {
	Validate(ctx context.Context, pages []domain.PageDefinition) []error
	Execute(ctx context.Context, pages []domain.PageDefinition) ([]domain.GenerationResult, error)
}

// generateOne is the shared single-item code path. AI failures are
// converted into failure-status results here so they never propagate past
// the strategy boundary; a result object always exists for the input.
func generateOne(ctx context.Context, gen CodeGenerator, def domain.PageDefinition) domain.GenerationResult {
	start := time.Now()

	g, err := gen.Generate(ctx, def)
	if err != nil {
		attempts := 1
		var aiErr *generator.AIGenerationError
		if errors.As(err, &aiErr) {
			attempts = aiErr.Attempts
		}
		return domain.NewFailureResult(def.Name, err.Error(), time.Since(start), attempts)
	}

	return domain.NewSuccessResult(def.Name, g.Code, g.Duration, g.Attempts)
}
