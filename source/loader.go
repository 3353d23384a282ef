// Package source discovers and loads page-definition files: markdown
// documents describing a page, with optional YAML front matter carrying
// generation metadata.
package source

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/c360studio/pageforge/domain"
	"gopkg.in/yaml.v3"
)

const frontMatterDelim = "---"

// defaultExcludes are directory names skipped during discovery.
var defaultExcludes = map[string]bool{
	".git":         true,
	"node_modules": true,
	"vendor":       true,
}

// Loader discovers and parses page-definition markdown files.
type Loader struct {
	pattern  string
	excludes map[string]bool
	logger   *slog.Logger
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithPattern overrides the discovery glob (default "**/*.md").
func WithPattern(pattern string) LoaderOption {
	return func(l *Loader) {
		l.pattern = pattern
	}
}

// WithExcludeDirs replaces the set of skipped directory names.
func WithExcludeDirs(dirs []string) LoaderOption {
	return func(l *Loader) {
		l.excludes = make(map[string]bool, len(dirs))
		for _, d := range dirs {
			l.excludes[d] = true
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) LoaderOption {
	return func(l *Loader) {
		l.logger = logger
	}
}

// NewLoader creates a loader with default discovery settings.
func NewLoader(opts ...LoaderOption) *Loader {
	l := &Loader{
		pattern:  "**/*.md",
		excludes: defaultExcludes,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// LoadDir discovers every definition file under dir and loads them in
// lexical path order, so batch input order is deterministic.
func (l *Loader) LoadDir(dir string) ([]domain.PageDefinition, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("source directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("source path is not a directory: %s", dir)
	}

	matches, err := doublestar.FilepathGlob(filepath.Join(dir, l.pattern))
	if err != nil {
		return nil, fmt.Errorf("glob error: %w", err)
	}

	var paths []string
	for _, m := range matches {
		if l.excluded(dir, m) {
			continue
		}
		paths = append(paths, m)
	}
	sort.Strings(paths)

	if len(paths) == 0 {
		return nil, fmt.Errorf("no page definition files match %q under %s", l.pattern, dir)
	}

	defs := make([]domain.PageDefinition, 0, len(paths))
	for _, path := range paths {
		def, err := l.LoadFile(path)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", path, err)
		}
		defs = append(defs, def)
	}

	l.logger.Debug("Loaded page definitions",
		slog.String("dir", dir),
		slog.Int("count", len(defs)))

	return defs, nil
}

// LoadFile parses a single definition file. The page name comes from the
// front matter "name" key, falling back to the file stem; every other front
// matter key becomes metadata.
func (l *Loader) LoadFile(path string) (domain.PageDefinition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.PageDefinition{}, err
	}

	front, body := splitFrontMatter(string(data))

	metadata := make(map[string]string)
	if front != "" {
		var raw map[string]any
		if err := yaml.Unmarshal([]byte(front), &raw); err != nil {
			return domain.PageDefinition{}, fmt.Errorf("front matter: %w", err)
		}
		for k, v := range raw {
			metadata[k] = fmt.Sprint(v)
		}
	}

	name := metadata["name"]
	delete(metadata, "name")
	if name == "" {
		base := filepath.Base(path)
		name = strings.TrimSuffix(base, filepath.Ext(base))
	}

	return domain.NewPageDefinition(name, body, metadata)
}

// excluded reports whether any path element between dir and path is an
// excluded directory name.
func (l *Loader) excluded(dir, path string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	parts := strings.Split(filepath.Dir(rel), string(filepath.Separator))
	for _, p := range parts {
		if l.excludes[p] {
			return true
		}
	}
	return false
}

// splitFrontMatter separates an optional leading YAML block, delimited by
// "---" lines, from the markdown body.
func splitFrontMatter(content string) (front, body string) {
	normalized := strings.ReplaceAll(content, "\r\n", "\n")
	if !strings.HasPrefix(normalized, frontMatterDelim+"\n") {
		return "", content
	}

	rest := normalized[len(frontMatterDelim)+1:]
	idx := strings.Index(rest, "\n"+frontMatterDelim)
	if idx < 0 {
		return "", content
	}

	front = rest[:idx]
	body = rest[idx+len(frontMatterDelim)+1:]
	body = strings.TrimPrefix(body, "\n")
	return front, body
}
