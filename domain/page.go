// Package domain defines the value objects that flow through a generation
// run: page definitions, execution contexts, and generation results.
// Values are validated at construction and treated as immutable afterwards.
package domain

import (
	"fmt"
	"strings"
)

// PageDefinition describes a page to generate a Page Object for.
// Content is structured markdown describing the page's elements and
// interactions; Metadata carries optional generation hints (framework,
// language, base URL, ...).
type PageDefinition struct {
	Name     string            `json:"name"`
	Content  string            `json:"content"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// NewPageDefinition validates and constructs a PageDefinition.
// Name and content must be non-empty after trimming; violations fail
// construction immediately so no partially-valid definition exists.
func NewPageDefinition(name, content string, metadata map[string]string) (PageDefinition, error) {
	var violations []string
	if strings.TrimSpace(name) == "" {
		violations = append(violations, "name must be non-empty")
	}
	if strings.TrimSpace(content) == "" {
		violations = append(violations, "content must be non-empty")
	}
	if len(violations) > 0 {
		return PageDefinition{}, &ValidationError{Violations: violations}
	}

	// Copy metadata so later mutation of the caller's map cannot leak in.
	var meta map[string]string
	if len(metadata) > 0 {
		meta = make(map[string]string, len(metadata))
		for k, v := range metadata {
			meta[k] = v
		}
	}

	return PageDefinition{
		Name:     strings.TrimSpace(name),
		Content:  content,
		Metadata: meta,
	}, nil
}

// Validate re-checks the definition's invariants. Useful for definitions
// decoded from storage or files rather than built via NewPageDefinition.
func (p PageDefinition) Validate() []error {
	var errs []error
	if strings.TrimSpace(p.Name) == "" {
		errs = append(errs, fmt.Errorf("page name must be non-empty"))
	}
	if strings.TrimSpace(p.Content) == "" {
		errs = append(errs, fmt.Errorf("page %q: content must be non-empty", p.Name))
	}
	return errs
}
