package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/c360studio/pageforge/domain"
	"github.com/c360studio/pageforge/storage"
)

// SingleCommand generates exactly one Page Object from one definition.
type SingleCommand struct {
	gen    CodeGenerator
	pages  storage.PageDefinitionRepository
	logger *slog.Logger
}

// NewSingleCommand creates the single-item strategy.
func NewSingleCommand(gen CodeGenerator, pages storage.PageDefinitionRepository, logger *slog.Logger) *SingleCommand {
	if logger == nil {
		logger = slog.Default()
	}
	return &SingleCommand{gen: gen, pages: pages, logger: logger}
}

// Validate checks that the input is exactly one valid definition.
func (c *SingleCommand) Validate(_ context.Context, pages []domain.PageDefinition) []error {
	if len(pages) != 1 {
		return []error{fmt.Errorf("single-file mode requires exactly one page definition, got %d", len(pages))}
	}
	return pages[0].Validate()
}

// Execute generates one result for the one input definition. An AI failure
// after retries becomes a failure-status result, not an error.
func (c *SingleCommand) Execute(ctx context.Context, pages []domain.PageDefinition) ([]domain.GenerationResult, error) {
	if errs := c.Validate(ctx, pages); len(errs) > 0 {
		return nil, domain.NewValidationError(errs)
	}

	def := pages[0]
	if err := c.pages.Add(ctx, def); err != nil {
		return nil, fmt.Errorf("register page definition: %w", err)
	}

	result := generateOne(ctx, c.gen, def)
	c.logger.Info("Page generated",
		"page", result.PageName,
		"status", result.Status,
		"attempts", result.AttemptCount,
		"duration", result.Duration)

	return []domain.GenerationResult{result}, nil
}
