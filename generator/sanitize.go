package generator

import (
	"regexp"
	"strings"
)

// Pre-compiled regex patterns for code extraction from LLM responses.
var (
	// fencedBlockPattern matches a fenced code block with an optional
	// language tag: ```typescript ... ```
	fencedBlockPattern = regexp.MustCompile("(?s)```[a-zA-Z0-9_+#.-]*[ \t]*\\r?\\n(.*?)\\r?\\n?```")

	// fenceLinePattern matches a stray fence marker line (an unclosed or
	// orphaned fence) so it can be dropped.
	fenceLinePattern = regexp.MustCompile("(?m)^```[a-zA-Z0-9_+#.-]*[ \t]*$")
)

// ExtractCode sanitizes a raw LLM response into bare source code.
// Code-fence markers and language tags are stripped and prose outside the
// fenced block is dropped. Models routinely wrap code in markdown and add
// commentary around it.
//
// The function is deterministic and idempotent: sanitized output contains
// no fence markers, so a second pass only re-trims whitespace.
func ExtractCode(content string) string {
	blocks := fencedBlockPattern.FindAllStringSubmatch(content, -1)
	if len(blocks) > 0 {
		// Multiple blocks: the largest one is the code body; smaller
		// ones are usually usage snippets in surrounding commentary.
		best := ""
		for _, m := range blocks {
			if len(m[1]) > len(best) {
				best = m[1]
			}
		}
		return strings.TrimSpace(best)
	}

	// No complete fenced block: drop any stray fence lines and trim.
	cleaned := fenceLinePattern.ReplaceAllString(content, "")
	return strings.TrimSpace(cleaned)
}
