// Package output delivers generation results to their destination: source
// files on disk, a summary on the console, or both.
package output

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/c360studio/pageforge/domain"
)

// Sink consumes an ordered sequence of generation results.
type Sink interface {
	Write(ctx context.Context, results []domain.GenerationResult) error
}

// FileSink writes the generated code of each successful result to
// <dir>/<page-name><ext>. Failed results are skipped; writing continues
// past individual file errors and the failures are joined.
type FileSink struct {
	dir    string
	ext    string
	logger *slog.Logger
}

// FileSinkOption configures a FileSink.
type FileSinkOption func(*FileSink)

// WithExtension overrides the output file extension (default ".page.ts").
func WithExtension(ext string) FileSinkOption {
	return func(s *FileSink) {
		s.ext = ext
	}
}

// WithFileLogger sets the logger for the file sink.
func WithFileLogger(logger *slog.Logger) FileSinkOption {
	return func(s *FileSink) {
		s.logger = logger
	}
}

// NewFileSink creates a sink writing generated files under dir.
func NewFileSink(dir string, opts ...FileSinkOption) *FileSink {
	s := &FileSink{dir: dir, ext: ".page.ts", logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Write writes one file per successful result.
func (s *FileSink) Write(_ context.Context, results []domain.GenerationResult) error {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	var errs []error
	written := 0
	for _, r := range results {
		if !r.Succeeded() {
			continue
		}
		path := filepath.Join(s.dir, FileName(r.PageName)+s.ext)
		if err := os.WriteFile(path, []byte(r.GeneratedCode+"\n"), 0644); err != nil {
			errs = append(errs, fmt.Errorf("write %s: %w", path, err))
			continue
		}
		s.logger.Debug("Wrote generated page object", slog.String("path", path))
		written++
	}

	s.logger.Info("Output written",
		slog.String("dir", s.dir),
		slog.Int("files", written),
		slog.Int("skipped", len(results)-written))

	return errors.Join(errs...)
}

// FileName converts a page name to a safe file stem: lower-cased, with
// runs of non-alphanumeric characters collapsed to single dashes.
func FileName(pageName string) string {
	var sb strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(pageName) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			sb.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				sb.WriteByte('-')
				lastDash = true
			}
		}
	}
	name := strings.TrimSuffix(sb.String(), "-")
	if name == "" {
		name = "page"
	}
	return name
}

// ConsoleSink renders a compact result summary table.
type ConsoleSink struct {
	w io.Writer
}

// NewConsoleSink creates a sink rendering to w.
func NewConsoleSink(w io.Writer) *ConsoleSink {
	return &ConsoleSink{w: w}
}

// Write renders one row per result.
func (s *ConsoleSink) Write(_ context.Context, results []domain.GenerationResult) error {
	tw := tabwriter.NewWriter(s.w, 2, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PAGE\tSTATUS\tATTEMPTS\tDURATION\tERROR")
	for _, r := range results {
		errMsg := r.ErrorMessage
		if len(errMsg) > 60 {
			errMsg = errMsg[:57] + "..."
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n",
			r.PageName, r.Status, r.AttemptCount, r.Duration.Round(10*time.Millisecond), errMsg)
	}
	return tw.Flush()
}

// Multi fans results out to several sinks in order. All sinks are invoked
// even when an earlier one fails; failures are joined.
func Multi(sinks ...Sink) Sink {
	return multiSink(sinks)
}

type multiSink []Sink

func (m multiSink) Write(ctx context.Context, results []domain.GenerationResult) error {
	var errs []error
	for _, s := range m {
		if err := s.Write(ctx, results); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
