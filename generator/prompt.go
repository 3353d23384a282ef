package generator

import (
	"fmt"
	"strings"

	"github.com/c360studio/pageforge/domain"
	"github.com/c360studio/pageforge/llm"
)

// systemPrompt instructs the model to emit only code.
const systemPrompt = `You are a senior test automation engineer. You generate Page Object classes from textual page descriptions.

Rules:
- Output ONLY the source code of the Page Object class, nothing else.
- Include locators for every element mentioned in the description.
- Include one method per interaction the description mentions.
- Do not invent elements or interactions that are not described.`

// Metadata keys recognized by the prompt builder.
const (
	MetaFramework = "framework"
	MetaLanguage  = "language"
	MetaBaseURL   = "base_url"
)

// BuildPrompt constructs the chat messages for one page definition.
// Metadata refines the request: framework and language select the target
// stack, base_url is passed through for locator context.
func BuildPrompt(def domain.PageDefinition) []llm.Message {
	var sb strings.Builder

	framework := def.Metadata[MetaFramework]
	if framework == "" {
		framework = "playwright"
	}
	language := def.Metadata[MetaLanguage]
	if language == "" {
		language = "typescript"
	}

	fmt.Fprintf(&sb, "Generate a %s Page Object class in %s for the page %q.\n", framework, language, def.Name)
	if baseURL := def.Metadata[MetaBaseURL]; baseURL != "" {
		fmt.Fprintf(&sb, "The page lives at %s.\n", baseURL)
	}
	sb.WriteString("\nPage description:\n\n")
	sb.WriteString(def.Content)

	return []llm.Message{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: sb.String()},
	}
}
