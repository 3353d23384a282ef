package commands

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/c360studio/pageforge/domain"
	"github.com/c360studio/pageforge/storage"
)

// BatchCommand generates Page Objects for an ordered sequence of
// definitions. One item's failure never aborts or skips the others; the
// returned sequence always has one result per input, in input order,
// regardless of completion order.
type BatchCommand struct {
	gen    CodeGenerator
	pages  storage.PageDefinitionRepository
	logger *slog.Logger

	// maxParallelism bounds concurrent generations. 1 means sequential,
	// which is the default; parallelism is an opt-in optimization.
	maxParallelism int
}

// NewBatchCommand creates the batch strategy.
func NewBatchCommand(gen CodeGenerator, pages storage.PageDefinitionRepository, maxParallelism int, logger *slog.Logger) *BatchCommand {
	if maxParallelism < 1 {
		maxParallelism = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &BatchCommand{gen: gen, pages: pages, maxParallelism: maxParallelism, logger: logger}
}

// Validate checks that the input is a non-empty sequence of valid
// definitions with batch-unique names. All violations are reported.
func (c *BatchCommand) Validate(_ context.Context, pages []domain.PageDefinition) []error {
	var errs []error
	if len(pages) == 0 {
		return []error{fmt.Errorf("batch mode requires a non-empty sequence of page definitions")}
	}

	seen := make(map[string]bool, len(pages))
	for i, def := range pages {
		for _, err := range def.Validate() {
			errs = append(errs, fmt.Errorf("page %d: %w", i, err))
		}
		if def.Name != "" {
			if seen[def.Name] {
				errs = append(errs, fmt.Errorf("page %d: duplicate page name %q in batch", i, def.Name))
			}
			seen[def.Name] = true
		}
	}
	return errs
}

// Execute generates results for every input definition. With parallelism
// enabled, completed work is indexed back into its original slot so output
// order matches input order. On cancellation, items not yet started fail
// fast but every slot is still filled.
func (c *BatchCommand) Execute(ctx context.Context, pages []domain.PageDefinition) ([]domain.GenerationResult, error) {
	if errs := c.Validate(ctx, pages); len(errs) > 0 {
		return nil, domain.NewValidationError(errs)
	}

	for _, def := range pages {
		if err := c.pages.Add(ctx, def); err != nil {
			return nil, fmt.Errorf("register page definition %q: %w", def.Name, err)
		}
	}

	results := make([]domain.GenerationResult, len(pages))

	if c.maxParallelism == 1 {
		for i, def := range pages {
			results[i] = generateOne(ctx, c.gen, def)
		}
	} else {
		sem := make(chan struct{}, c.maxParallelism)
		var wg sync.WaitGroup
		for i, def := range pages {
			wg.Add(1)
			go func(slot int, def domain.PageDefinition) {
				defer wg.Done()

				select {
				case sem <- struct{}{}:
					defer func() { <-sem }()
				case <-ctx.Done():
					results[slot] = domain.NewFailureResult(def.Name, ctx.Err().Error(), 0, 1)
					return
				}

				results[slot] = generateOne(ctx, c.gen, def)
			}(i, def)
		}
		wg.Wait()
	}

	succeeded := 0
	for _, r := range results {
		if r.Succeeded() {
			succeeded++
		}
	}
	c.logger.Info("Batch complete",
		"pages", len(pages),
		"succeeded", succeeded,
		"failed", len(pages)-succeeded,
		"parallelism", c.maxParallelism)

	return results, nil
}
