package main

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/c360studio/pageforge/domain"
	"github.com/c360studio/pageforge/source"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteDefinitionFileRoundTrips(t *testing.T) {
	def, err := domain.NewPageDefinition("Checkout", "# Checkout\n- pay button\n", map[string]string{
		"framework": "playwright",
		"base_url":  "https://shop.example.com/checkout",
	})
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "checkout.md")
	require.NoError(t, writeDefinitionFile(path, def))

	loaded, err := source.NewLoader().LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, def.Name, loaded.Name)
	assert.Equal(t, def.Metadata, loaded.Metadata)
	assert.Equal(t, def.Content, loaded.Content)
}

func TestExitCode(t *testing.T) {
	ok := domain.NewSuccessResult("Home", "code", time.Second, 1)
	bad := domain.NewFailureResult("Cart", "boom", time.Second, 3)

	assert.NoError(t, exitCode([]domain.GenerationResult{ok}))
	assert.Error(t, exitCode([]domain.GenerationResult{ok, bad}))
}

func TestRootCommandWiring(t *testing.T) {
	root := rootCmd()

	names := make(map[string]bool)
	for _, c := range root.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"generate", "batch", "capture", "version"} {
		assert.True(t, names[want], "missing subcommand %s", want)
	}
}
