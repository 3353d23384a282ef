// Package generator wraps the single AI capability the system needs:
// produce Page Object source code from a page definition. It owns prompt
// construction and response sanitization; retry, timeout, and error
// classification live in the llm client it delegates to.
package generator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/c360studio/pageforge/domain"
	"github.com/c360studio/pageforge/llm"
)

// AIGenerationError reports that generation failed for good: the
// underlying capability either exhausted its retries or failed permanently.
type AIGenerationError struct {
	PageName string
	Attempts int
	Err      error
}

func (e *AIGenerationError) Error() string {
	return fmt.Sprintf("generate %q: failed after %d attempt(s): %v", e.PageName, e.Attempts, e.Err)
}

func (e *AIGenerationError) Unwrap() error {
	return e.Err
}

// Generation is a successful generation outcome.
type Generation struct {
	Code     string
	Model    string
	Attempts int
	Duration time.Duration
}

// Service turns page definitions into sanitized Page Object code.
// It holds no mutable state across calls; only configuration captured at
// construction.
type Service struct {
	completer   llm.Completer
	temperature *float64
	maxTokens   int
	logger      *slog.Logger
	metrics     *Metrics
}

// Option configures a Service.
type Option func(*Service)

// WithTemperature sets an explicit sampling temperature.
func WithTemperature(temp float64) Option {
	return func(s *Service) {
		s.temperature = &temp
	}
}

// WithMaxTokens limits response length.
func WithMaxTokens(n int) Option {
	return func(s *Service) {
		s.maxTokens = n
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithMetrics enables Prometheus instrumentation.
func WithMetrics(m *Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// NewService creates a generation service on top of an LLM completer.
func NewService(completer llm.Completer, opts ...Option) *Service {
	s := &Service{
		completer: completer,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Generate produces sanitized Page Object code for one definition.
// On failure it returns an *AIGenerationError carrying the attempt count;
// converting that into a failure-status result is the caller's job.
func (s *Service) Generate(ctx context.Context, def domain.PageDefinition) (Generation, error) {
	start := time.Now()

	resp, err := s.completer.Complete(ctx, llm.Request{
		Messages:    BuildPrompt(def),
		Temperature: s.temperature,
		MaxTokens:   s.maxTokens,
	})
	if err != nil {
		attempts := 1
		var reqErr *llm.RequestError
		if errors.As(err, &reqErr) && reqErr.Attempts > 0 {
			attempts = reqErr.Attempts
		}
		duration := time.Since(start)
		s.metrics.observe(string(domain.StatusFailure), attempts, duration)
		s.logger.Warn("Generation failed",
			"page", def.Name,
			"attempts", attempts,
			"duration", duration,
			"error", err)
		return Generation{}, &AIGenerationError{PageName: def.Name, Attempts: attempts, Err: err}
	}

	code := ExtractCode(resp.Content)
	duration := time.Since(start)

	if code == "" {
		s.metrics.observe(string(domain.StatusFailure), resp.Attempts, duration)
		return Generation{}, &AIGenerationError{
			PageName: def.Name,
			Attempts: resp.Attempts,
			Err:      fmt.Errorf("model returned no code"),
		}
	}

	s.metrics.observe(string(domain.StatusSuccess), resp.Attempts, duration)
	s.logger.Debug("Generation succeeded",
		"page", def.Name,
		"model", resp.Model,
		"attempts", resp.Attempts,
		"tokens", resp.Usage.TotalTokens,
		"duration", duration)

	return Generation{
		Code:     code,
		Model:    resp.Model,
		Attempts: resp.Attempts,
		Duration: duration,
	}, nil
}
