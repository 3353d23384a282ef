package generator_test

import (
	"testing"

	"github.com/c360studio/pageforge/generator"
	"github.com/stretchr/testify/assert"
)

func TestExtractCode(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{
			name:    "fenced with language tag",
			content: "```typescript\nexport class LoginPage {}\n```",
			want:    "export class LoginPage {}",
		},
		{
			name:    "fenced without language tag",
			content: "```\nclass CartPage {}\n```",
			want:    "class CartPage {}",
		},
		{
			name:    "commentary around the block is dropped",
			content: "Here is your Page Object:\n\n```ts\nexport class HomePage {}\n```\n\nLet me know if you need changes!",
			want:    "export class HomePage {}",
		},
		{
			name:    "bare code passes through",
			content: "export class AboutPage {}",
			want:    "export class AboutPage {}",
		},
		{
			name:    "surrounding whitespace trimmed",
			content: "\n\n  export class X {}\n\n",
			want:    "export class X {}",
		},
		{
			name:    "largest of multiple blocks wins",
			content: "Usage:\n```ts\nnew LoginPage(page)\n```\nFull class:\n```ts\nexport class LoginPage {\n  readonly username = this.page.locator('#user')\n}\n```",
			want:    "export class LoginPage {\n  readonly username = this.page.locator('#user')\n}",
		},
		{
			name:    "stray unclosed fence dropped",
			content: "```typescript\nexport class Partial {}",
			want:    "export class Partial {}",
		},
		{
			name:    "crlf fences handled",
			content: "```ts\r\nexport class WinPage {}\r\n```",
			want:    "export class WinPage {}",
		},
		{
			name:    "empty input",
			content: "",
			want:    "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := generator.ExtractCode(tt.content)
			assert.Equal(t, tt.want, got)

			// Sanitization is idempotent.
			assert.Equal(t, got, generator.ExtractCode(got))
		})
	}
}

func TestExtractCode_NoFenceMarkersSurvive(t *testing.T) {
	out := generator.ExtractCode("```java\npublic class Page {}\n```")
	assert.NotContains(t, out, "```")
}
