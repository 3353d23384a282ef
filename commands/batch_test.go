package commands_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/c360studio/pageforge/commands"
	"github.com/c360studio/pageforge/domain"
	"github.com/c360studio/pageforge/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBatchCommand_AllSucceed(t *testing.T) {
	cmd := commands.NewBatchCommand(newGenerator(), storage.NewMemoryPageRepository(), 1, nil)

	pages := []domain.PageDefinition{page(t, "Home"), page(t, "Cart"), page(t, "Checkout")}
	results, err := cmd.Execute(context.Background(), pages)
	require.NoError(t, err)
	require.Len(t, results, 3)

	for i, r := range results {
		assert.Equal(t, pages[i].Name, r.PageName, "result order must match input order")
		assert.Equal(t, domain.StatusSuccess, r.Status)
	}
}

func TestBatchCommand_FailureIsolation(t *testing.T) {
	// The 2nd page's AI call always fails permanently.
	cmd := commands.NewBatchCommand(newGenerator("Cart"), storage.NewMemoryPageRepository(), 1, nil)

	pages := []domain.PageDefinition{page(t, "Home"), page(t, "Cart"), page(t, "Checkout")}
	results, err := cmd.Execute(context.Background(), pages)
	require.NoError(t, err, "a batch never aborts early")
	require.Len(t, results, 3)

	assert.Equal(t, domain.StatusSuccess, results[0].Status)
	assert.Equal(t, domain.StatusFailure, results[1].Status)
	assert.NotEmpty(t, results[1].ErrorMessage)
	assert.Equal(t, domain.StatusSuccess, results[2].Status)
}

func TestBatchCommand_EmptyInputFailsValidation(t *testing.T) {
	cmd := commands.NewBatchCommand(newGenerator(), storage.NewMemoryPageRepository(), 1, nil)

	_, err := cmd.Execute(context.Background(), nil)
	require.Error(t, err)

	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Violations[0], "non-empty")
}

func TestBatchCommand_ValidateReportsEveryViolation(t *testing.T) {
	cmd := commands.NewBatchCommand(newGenerator(), storage.NewMemoryPageRepository(), 1, nil)

	pages := []domain.PageDefinition{
		page(t, "Home"),
		// one empty-name violation, one empty-content violation
		{Name: "", Content: ""},
		// duplicate of the first page's name
		page(t, "Home"),
	}
	errs := cmd.Validate(context.Background(), pages)
	assert.Len(t, errs, 3)
}

func TestBatchCommand_ParallelPreservesOrder(t *testing.T) {
	for _, parallelism := range []int{2, 4, 16} {
		t.Run(fmt.Sprintf("parallelism=%d", parallelism), func(t *testing.T) {
			cmd := commands.NewBatchCommand(newGenerator("Page07"), storage.NewMemoryPageRepository(), parallelism, nil)

			var pages []domain.PageDefinition
			for i := 0; i < 20; i++ {
				pages = append(pages, page(t, fmt.Sprintf("Page%02d", i)))
			}

			results, err := cmd.Execute(context.Background(), pages)
			require.NoError(t, err)
			require.Len(t, results, len(pages))

			for i, r := range results {
				assert.Equal(t, pages[i].Name, r.PageName)
				if r.PageName == "Page07" {
					assert.Equal(t, domain.StatusFailure, r.Status)
				} else {
					assert.Equal(t, domain.StatusSuccess, r.Status)
				}
			}
		})
	}
}

func TestBatchCommand_CancelledContextStillFillsEverySlot(t *testing.T) {
	cmd := commands.NewBatchCommand(newGenerator(), storage.NewMemoryPageRepository(), 4, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	pages := []domain.PageDefinition{page(t, "A"), page(t, "B"), page(t, "C")}
	results, err := cmd.Execute(ctx, pages)
	require.NoError(t, err)
	require.Len(t, results, 3, "no work is silently discarded")
	for _, r := range results {
		assert.NotEmpty(t, r.PageName)
	}
}
