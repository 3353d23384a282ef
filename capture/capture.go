package capture

import (
	"context"
	"log/slog"
	"time"

	"github.com/c360studio/pageforge/domain"
	"github.com/c360studio/pageforge/generator"
)

// Service captures a live page into a PageDefinition.
type Service struct {
	fetcher   *Fetcher
	converter *Converter
	logger    *slog.Logger
}

// NewService creates a capture service. Zero timeout and size fall back
// to fetcher defaults.
func NewService(timeout time.Duration, maxContentSize int64, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		fetcher:   NewFetcher(timeout, maxContentSize),
		converter: NewConverter(),
		logger:    logger,
	}
}

// Capture fetches urlStr and converts it into a page definition. The page
// name comes from the document title, falling back to a URL-derived slug;
// the source URL is carried as base_url metadata.
func (s *Service) Capture(ctx context.Context, urlStr string) (domain.PageDefinition, error) {
	fetched, err := s.fetcher.Fetch(ctx, urlStr)
	if err != nil {
		return domain.PageDefinition{}, err
	}

	converted, err := s.converter.Convert(fetched.Body, urlStr)
	if err != nil {
		return domain.PageDefinition{}, err
	}

	name := converted.Title
	if name == "" {
		name = PageNameFromURL(urlStr)
	}

	def, err := domain.NewPageDefinition(name, converted.Markdown, map[string]string{
		generator.MetaBaseURL: urlStr,
	})
	if err != nil {
		return domain.PageDefinition{}, err
	}

	s.logger.Info("Captured page",
		slog.String("url", urlStr),
		slog.String("name", def.Name),
		slog.Int("bytes", len(fetched.Body)))

	return def, nil
}
