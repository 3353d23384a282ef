// Package main provides the pageforge binary entry point.
// Pageforge turns textual page descriptions into generated page object
// source code using an AI model.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"syscall"

	// Register LLM providers via init()
	_ "github.com/c360studio/pageforge/llm/providers"

	"github.com/c360studio/pageforge/capture"
	"github.com/c360studio/pageforge/config"
	"github.com/c360studio/pageforge/domain"
	"github.com/c360studio/pageforge/orchestrator"
	"github.com/c360studio/pageforge/output"
	"github.com/c360studio/pageforge/source"
	"github.com/spf13/cobra"
)

const (
	Version   = "0.1.0"
	BuildTime = "dev"
	appName   = "pageforge"
)

func main() {
	// Add panic recovery
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var (
		configPath string
		logLevel   string
	)

	cmd := &cobra.Command{
		Use:   appName,
		Short: "Page object generator",
		Long: `Pageforge generates page object source code from textual page
descriptions using an AI model.

A page definition is a markdown file describing the page, with optional
YAML front matter carrying the page name and generation metadata
(framework, language, base_url).`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file path (YAML)")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")

	cmd.AddCommand(generateCmd(&configPath, &logLevel))
	cmd.AddCommand(batchCmd(&configPath, &logLevel))
	cmd.AddCommand(captureCmd(&configPath, &logLevel))
	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("%s version %s (build: %s)\n", appName, Version, BuildTime)
		},
	})

	return cmd
}

// setup configures logging and loads the validated configuration.
func setup(configPath, logLevel string) (*config.Config, *slog.Logger, error) {
	level := slog.LevelInfo
	switch strings.ToLower(logLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	var cfg *config.Config
	var err error
	if configPath != "" {
		cfg, err = config.LoadFromFile(configPath)
		if err == nil {
			err = cfg.Validate()
		}
	} else {
		cfg, err = config.NewLoader(logger).Load()
	}
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	return cfg, logger, nil
}

// buildOrchestrator wires sinks into an orchestrator for one CLI run.
func buildOrchestrator(cfg *config.Config, logger *slog.Logger, outDir string) *orchestrator.Orchestrator {
	sink := output.Multi(
		output.NewFileSink(outDir, output.WithFileLogger(logger)),
		output.NewConsoleSink(os.Stdout),
	)
	return orchestrator.New(cfg,
		orchestrator.WithLogger(logger),
		orchestrator.WithSink(sink))
}

// exitCode maps a result set to a process exit code: any failed page makes
// the run fail.
func exitCode(results []domain.GenerationResult) error {
	failed := 0
	for _, r := range results {
		if !r.Succeeded() {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d pages failed", failed, len(results))
	}
	return nil
}

func generateCmd(configPath, logLevel *string) *cobra.Command {
	var outDir string

	cmd := &cobra.Command{
		Use:   "generate <definition.md>",
		Short: "Generate a page object from one definition file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup(*configPath, *logLevel)
			if err != nil {
				return err
			}

			def, err := source.NewLoader(source.WithLogger(logger)).LoadFile(args[0])
			if err != nil {
				return fmt.Errorf("load definition: %w", err)
			}

			o := buildOrchestrator(cfg, logger, outDir)
			results, err := o.ExecuteGeneration(cmd.Context(), domain.ModeSingleFile,
				[]domain.PageDefinition{def})
			if err != nil {
				return err
			}
			return exitCode(results)
		},
	}

	cmd.Flags().StringVarP(&outDir, "out", "o", ".", "Output directory for generated files")
	return cmd
}

func batchCmd(configPath, logLevel *string) *cobra.Command {
	var (
		outDir      string
		parallelism int
		watch       bool
	)

	cmd := &cobra.Command{
		Use:   "batch <definitions-dir>",
		Short: "Generate page objects for every definition in a directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup(*configPath, *logLevel)
			if err != nil {
				return err
			}
			if parallelism > 0 {
				cfg.Generation.MaxParallelism = parallelism
			}

			dir := args[0]
			loader := source.NewLoader(source.WithLogger(logger))
			o := buildOrchestrator(cfg, logger, outDir)

			runOnce := func(ctx context.Context) error {
				defs, err := loader.LoadDir(dir)
				if err != nil {
					return err
				}
				results, err := o.ExecuteGeneration(ctx, domain.ModeDirectoryBatch, defs)
				if err != nil {
					return err
				}
				return exitCode(results)
			}

			if !watch {
				return runOnce(cmd.Context())
			}
			return watchLoop(cmd.Context(), dir, cfg, logger, runOnce)
		},
	}

	cmd.Flags().StringVarP(&outDir, "out", "o", ".", "Output directory for generated files")
	cmd.Flags().IntVarP(&parallelism, "parallelism", "p", 0, "Max concurrent generations (0 = from config)")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Regenerate when definition files change")
	return cmd
}

// watchLoop runs once, then reruns on every debounced change batch until
// interrupted. A failing run does not stop the loop.
func watchLoop(ctx context.Context, dir string, cfg *config.Config, logger *slog.Logger, runOnce func(context.Context) error) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	watcher, err := source.NewWatcher(dir, 0, logger)
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	if err := watcher.Start(ctx); err != nil {
		return fmt.Errorf("start watcher: %w", err)
	}
	defer watcher.Stop()

	if err := runOnce(ctx); err != nil {
		logger.Error("Generation failed", slog.String("error", err.Error()))
	}

	for {
		select {
		case <-ctx.Done():
			logger.Info("Watch stopped")
			return nil
		case change, ok := <-watcher.Events():
			if !ok {
				return nil
			}
			logger.Info("Definitions changed, regenerating",
				slog.Int("files", len(change.Paths)))
			if err := runOnce(ctx); err != nil {
				logger.Error("Generation failed", slog.String("error", err.Error()))
			}
		}
	}
}

func captureCmd(configPath, logLevel *string) *cobra.Command {
	var outFile string

	cmd := &cobra.Command{
		Use:   "capture <url>",
		Short: "Capture a live page into a definition file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, logger, err := setup(*configPath, *logLevel)
			if err != nil {
				return err
			}

			svc := capture.NewService(0, 0, logger)
			def, err := svc.Capture(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("capture: %w", err)
			}

			path := outFile
			if path == "" {
				path = output.FileName(def.Name) + ".md"
			}
			if err := writeDefinitionFile(path, def); err != nil {
				return err
			}

			fmt.Printf("Captured %s -> %s\n", args[0], path)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outFile, "out-file", "o", "", "Definition file to write (default <page-name>.md)")
	return cmd
}

// writeDefinitionFile renders a definition back to markdown with front
// matter, so captured pages round-trip through the loader.
func writeDefinitionFile(path string, def domain.PageDefinition) error {
	var sb strings.Builder
	sb.WriteString("---\n")
	fmt.Fprintf(&sb, "name: %s\n", def.Name)
	keys := make([]string, 0, len(def.Metadata))
	for k := range def.Metadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&sb, "%s: %s\n", k, def.Metadata[k])
	}
	sb.WriteString("---\n")
	sb.WriteString(def.Content)
	if !strings.HasSuffix(def.Content, "\n") {
		sb.WriteString("\n")
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}
	return os.WriteFile(path, []byte(sb.String()), 0644)
}
