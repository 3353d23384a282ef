package domain_test

import (
	"testing"
	"time"

	"github.com/c360studio/pageforge/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPageDefinition_Valid(t *testing.T) {
	def, err := domain.NewPageDefinition("LoginPage", "# Login\n- username field\n- password field", map[string]string{
		"framework": "playwright",
	})
	require.NoError(t, err)
	assert.Equal(t, "LoginPage", def.Name)
	assert.Equal(t, "playwright", def.Metadata["framework"])
	assert.Empty(t, def.Validate())
}

func TestNewPageDefinition_TrimsName(t *testing.T) {
	def, err := domain.NewPageDefinition("  CartPage  ", "# Cart", nil)
	require.NoError(t, err)
	assert.Equal(t, "CartPage", def.Name)
}

func TestNewPageDefinition_FailFast(t *testing.T) {
	tests := []struct {
		name     string
		pageName string
		content  string
		wantErrs int
	}{
		{"empty name", "", "# Page", 1},
		{"whitespace name", "   ", "# Page", 1},
		{"empty content", "Page", "", 1},
		{"both empty", "", "  ", 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := domain.NewPageDefinition(tt.pageName, tt.content, nil)
			require.Error(t, err)

			var verr *domain.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Len(t, verr.Violations, tt.wantErrs)
		})
	}
}

func TestNewPageDefinition_CopiesMetadata(t *testing.T) {
	meta := map[string]string{"language": "typescript"}
	def, err := domain.NewPageDefinition("Home", "# Home", meta)
	require.NoError(t, err)

	meta["language"] = "java"
	assert.Equal(t, "typescript", def.Metadata["language"])
}

func TestParseMode(t *testing.T) {
	mode, err := domain.ParseMode("single_file")
	require.NoError(t, err)
	assert.Equal(t, domain.ModeSingleFile, mode)

	mode, err = domain.ParseMode("directory_batch")
	require.NoError(t, err)
	assert.Equal(t, domain.ModeDirectoryBatch, mode)

	_, err = domain.ParseMode("streaming")
	assert.Error(t, err)
}

func TestNewExecutionContext(t *testing.T) {
	ctx1 := domain.NewExecutionContext(domain.ModeSingleFile)
	ctx2 := domain.NewExecutionContext(domain.ModeSingleFile)

	assert.NotEmpty(t, ctx1.ID)
	assert.NotEqual(t, ctx1.ID, ctx2.ID)
	assert.Equal(t, domain.ModeSingleFile, ctx1.Mode)
	assert.False(t, ctx1.StartedAt.IsZero())
}

func TestGenerationResult_Constructors(t *testing.T) {
	ok := domain.NewSuccessResult("Home", "export class HomePage {}", 120*time.Millisecond, 2)
	assert.True(t, ok.Succeeded())
	assert.Equal(t, 2, ok.AttemptCount)
	assert.Empty(t, ok.ErrorMessage)

	fail := domain.NewFailureResult("Home", "all attempts failed", time.Second, 3)
	assert.False(t, fail.Succeeded())
	assert.Empty(t, fail.GeneratedCode)
	assert.Equal(t, "all attempts failed", fail.ErrorMessage)

	// Attempt count is clamped to at least one call.
	clamped := domain.NewFailureResult("Home", "boom", 0, 0)
	assert.Equal(t, 1, clamped.AttemptCount)
}

func TestValidationError_JoinsAllViolations(t *testing.T) {
	err := &domain.ValidationError{Violations: []string{"a is bad", "b is worse"}}
	assert.Contains(t, err.Error(), "a is bad")
	assert.Contains(t, err.Error(), "b is worse")
}
