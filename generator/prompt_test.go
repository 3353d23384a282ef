package generator_test

import (
	"testing"

	"github.com/c360studio/pageforge/domain"
	"github.com/c360studio/pageforge/generator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildPrompt_Defaults(t *testing.T) {
	def, err := domain.NewPageDefinition("Checkout", "# Checkout\n- pay button", nil)
	require.NoError(t, err)

	messages := generator.BuildPrompt(def)
	require.Len(t, messages, 2)

	assert.Equal(t, "system", messages[0].Role)
	assert.Contains(t, messages[0].Content, "Page Object")

	assert.Equal(t, "user", messages[1].Role)
	assert.Contains(t, messages[1].Content, "playwright")
	assert.Contains(t, messages[1].Content, "typescript")
	assert.Contains(t, messages[1].Content, `"Checkout"`)
	assert.Contains(t, messages[1].Content, "pay button")
}

func TestBuildPrompt_MetadataOverrides(t *testing.T) {
	def, err := domain.NewPageDefinition("Profile", "# Profile", map[string]string{
		generator.MetaFramework: "selenium",
		generator.MetaLanguage:  "java",
		generator.MetaBaseURL:   "https://shop.example.com/profile",
	})
	require.NoError(t, err)

	messages := generator.BuildPrompt(def)
	user := messages[1].Content
	assert.Contains(t, user, "selenium")
	assert.Contains(t, user, "java")
	assert.Contains(t, user, "https://shop.example.com/profile")
	assert.NotContains(t, user, "playwright")
}
