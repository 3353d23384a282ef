// Package orchestrator coordinates a generation run: it owns the capability
// registry for one invocation, selects the execution strategy, and persists
// the outcome. It contains no retry or AI logic of its own.
package orchestrator

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/c360studio/pageforge/commands"
	"github.com/c360studio/pageforge/config"
	"github.com/c360studio/pageforge/domain"
	"github.com/c360studio/pageforge/generator"
	"github.com/c360studio/pageforge/llm"
	"github.com/c360studio/pageforge/output"
	"github.com/c360studio/pageforge/registry"
	"github.com/c360studio/pageforge/storage"
)

// Orchestrator runs page-object generation end to end.
type Orchestrator struct {
	cfg     *config.Config
	logger  *slog.Logger
	metrics *generator.Metrics

	// sink, completer, and resultRepo override the config-driven defaults
	// when set. The CLI sets the sink; tests inject the completer.
	sink       output.Sink
	completer  llm.Completer
	resultRepo storage.GenerationResultRepository
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		o.logger = logger
	}
}

// WithMetrics enables generation metrics.
func WithMetrics(m *generator.Metrics) Option {
	return func(o *Orchestrator) {
		o.metrics = m
	}
}

// WithSink delivers results to the given sink after persistence.
func WithSink(s output.Sink) Option {
	return func(o *Orchestrator) {
		o.sink = s
	}
}

// WithCompleter replaces the configured AI endpoint with a custom completer.
func WithCompleter(c llm.Completer) Option {
	return func(o *Orchestrator) {
		o.completer = c
	}
}

// WithResultRepository replaces the config-selected result repository.
func WithResultRepository(r storage.GenerationResultRepository) Option {
	return func(o *Orchestrator) {
		o.resultRepo = r
	}
}

// New creates an orchestrator over the given configuration.
func New(cfg *config.Config, opts ...Option) *Orchestrator {
	o := &Orchestrator{cfg: cfg, logger: slog.Default()}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// ExecuteGeneration runs one generation pass in the given mode. It returns
// one result per input definition, in input order. Validation and capability
// resolution failures are returned as errors; per-page AI failures surface
// as FAILURE results, never as errors.
func (o *Orchestrator) ExecuteGeneration(ctx context.Context, mode domain.ExecutionMode, pages []domain.PageDefinition) ([]domain.GenerationResult, error) {
	execCtx := domain.NewExecutionContext(mode)
	logger := o.logger.With(
		slog.String("execution_id", execCtx.ID),
		slog.String("mode", string(mode)))

	reg := o.buildRegistry(logger)
	defer func() {
		// Capabilities are released even when the run was cancelled.
		if err := reg.Dispose(context.WithoutCancel(ctx)); err != nil {
			logger.Warn("Failed to release capabilities", slog.String("error", err.Error()))
		}
	}()

	factory := commands.NewFactory(reg, o.cfg.Generation.MaxParallelism, logger)
	cmd, err := factory.Create(ctx, mode)
	if err != nil {
		return nil, err
	}

	logger.Info("Execution started", slog.Int("pages", len(pages)))
	results, err := cmd.Execute(ctx, pages)
	if err != nil {
		return nil, err
	}

	if err := o.persist(ctx, reg, execCtx.ID, results); err != nil {
		return results, err
	}

	if o.sink != nil {
		if err := o.sink.Write(ctx, results); err != nil {
			return results, fmt.Errorf("deliver results: %w", err)
		}
	}

	succeeded := 0
	for _, r := range results {
		if r.Succeeded() {
			succeeded++
		}
	}
	logger.Info("Execution complete",
		slog.Int("succeeded", succeeded),
		slog.Int("failed", len(results)-succeeded))

	return results, nil
}

// persist records every result under the execution id.
func (o *Orchestrator) persist(ctx context.Context, reg *registry.Registry, executionID string, results []domain.GenerationResult) error {
	v, err := reg.Resolve(ctx, commands.KeyResultRepository)
	if err != nil {
		return err
	}
	repo, ok := v.(storage.GenerationResultRepository)
	if !ok {
		return fmt.Errorf("capability %q has unexpected type %T", commands.KeyResultRepository, v)
	}

	for _, r := range results {
		if err := repo.Record(ctx, executionID, r); err != nil {
			return fmt.Errorf("record result for %q: %w", r.PageName, err)
		}
	}
	return nil
}

// buildRegistry wires the capabilities for one invocation. Registration
// order matters: Dispose releases in reverse, so the result repository
// (which may own a NATS connection) outlives everything that records to it.
func (o *Orchestrator) buildRegistry(logger *slog.Logger) *registry.Registry {
	reg := registry.New()

	reg.RegisterInstance(commands.KeyPageRepository, storage.NewMemoryPageRepository())

	reg.RegisterFactory(commands.KeyResultRepository, func(ctx context.Context) (any, error) {
		if o.resultRepo != nil {
			return o.resultRepo, nil
		}
		if o.cfg.Results.Backend == config.BackendNATS {
			return storage.NewKVResultRepository(ctx, o.cfg.Results.NATSURL)
		}
		return storage.NewMemoryResultRepository(), nil
	})

	reg.RegisterFactory(commands.KeyGenerator, func(_ context.Context) (any, error) {
		completer := o.completer
		if completer == nil {
			completer = llm.NewClient(o.cfg.Endpoint(),
				llm.WithRetryConfig(o.cfg.RetryConfig()),
				llm.WithLogger(logger))
		}
		return generator.NewService(completer,
			generator.WithTemperature(o.cfg.Model.Temperature),
			generator.WithMaxTokens(o.cfg.Model.MaxTokens),
			generator.WithLogger(logger),
			generator.WithMetrics(o.metrics),
		), nil
	})

	if o.sink != nil {
		reg.RegisterInstance(commands.KeyOutputSink, o.sink)
	}

	return reg
}
