package orchestrator_test

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/c360studio/pageforge/commands"
	"github.com/c360studio/pageforge/config"
	"github.com/c360studio/pageforge/domain"
	"github.com/c360studio/pageforge/llm"
	"github.com/c360studio/pageforge/llm/testutil"
	"github.com/c360studio/pageforge/orchestrator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingRepo captures Record calls and tracks disposal.
type recordingRepo struct {
	mu       sync.Mutex
	sessions map[string][]domain.GenerationResult
	closed   bool
}

func newRecordingRepo() *recordingRepo {
	return &recordingRepo{sessions: make(map[string][]domain.GenerationResult)}
}

func (r *recordingRepo) Record(_ context.Context, sessionID string, result domain.GenerationResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[sessionID] = append(r.sessions[sessionID], result)
	return nil
}

func (r *recordingRepo) ListForSession(_ context.Context, sessionID string) ([]domain.GenerationResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sessions[sessionID], nil
}

func (r *recordingRepo) Close(context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	return nil
}

// recordingSink captures the delivered results.
type recordingSink struct {
	results []domain.GenerationResult
}

func (s *recordingSink) Write(_ context.Context, results []domain.GenerationResult) error {
	s.results = results
	return nil
}

// completer fails permanently for pages whose name appears in failPages.
func completer(failPages ...string) llm.Completer {
	return &testutil.MockCompleter{
		Handler: func(req llm.Request) (*llm.Response, error) {
			for _, name := range failPages {
				if strings.Contains(req.Messages[1].Content, `"`+name+`"`) {
					return nil, &llm.RequestError{
						Attempts: 3,
						Err:      llm.NewFatalError(assert.AnError),
					}
				}
			}
			return &llm.Response{
				Content:  "```ts\nexport class GeneratedPage {}\n```",
				Model:    "test-model",
				Attempts: 1,
			}, nil
		},
	}
}

func page(t *testing.T, name string) domain.PageDefinition {
	t.Helper()
	def, err := domain.NewPageDefinition(name, "# "+name+"\n- a button", nil)
	require.NoError(t, err)
	return def
}

func TestExecuteGeneration_SingleSuccess(t *testing.T) {
	repo := newRecordingRepo()
	o := orchestrator.New(config.DefaultConfig(),
		orchestrator.WithCompleter(completer()),
		orchestrator.WithResultRepository(repo))

	results, err := o.ExecuteGeneration(context.Background(), domain.ModeSingleFile,
		[]domain.PageDefinition{page(t, "LoginPage")})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, domain.StatusSuccess, results[0].Status)
	assert.NotContains(t, results[0].GeneratedCode, "```")
}

func TestExecuteGeneration_PersistsEveryResultUnderOneSession(t *testing.T) {
	repo := newRecordingRepo()
	o := orchestrator.New(config.DefaultConfig(),
		orchestrator.WithCompleter(completer("Cart")),
		orchestrator.WithResultRepository(repo))

	pages := []domain.PageDefinition{page(t, "Home"), page(t, "Cart"), page(t, "Checkout")}
	results, err := o.ExecuteGeneration(context.Background(), domain.ModeDirectoryBatch, pages)
	require.NoError(t, err)
	require.Len(t, results, 3)

	require.Len(t, repo.sessions, 1, "all results recorded under one execution id")
	for id, recorded := range repo.sessions {
		assert.NotEmpty(t, id)
		require.Len(t, recorded, 3)
		assert.Equal(t, results, recorded)
	}
}

func TestExecuteGeneration_BatchFailureIsolation(t *testing.T) {
	o := orchestrator.New(config.DefaultConfig(),
		orchestrator.WithCompleter(completer("Cart")),
		orchestrator.WithResultRepository(newRecordingRepo()))

	pages := []domain.PageDefinition{page(t, "Home"), page(t, "Cart"), page(t, "Checkout")}
	results, err := o.ExecuteGeneration(context.Background(), domain.ModeDirectoryBatch, pages)
	require.NoError(t, err)

	assert.Equal(t, domain.StatusSuccess, results[0].Status)
	assert.Equal(t, domain.StatusFailure, results[1].Status)
	assert.Equal(t, 3, results[1].AttemptCount)
	assert.Equal(t, domain.StatusSuccess, results[2].Status)
}

func TestExecuteGeneration_UnsupportedMode(t *testing.T) {
	o := orchestrator.New(config.DefaultConfig(),
		orchestrator.WithCompleter(completer()))

	_, err := o.ExecuteGeneration(context.Background(), domain.ExecutionMode("streaming"), nil)
	require.Error(t, err)

	var modeErr *commands.UnsupportedModeError
	assert.ErrorAs(t, err, &modeErr)
}

func TestExecuteGeneration_ValidationErrorPropagates(t *testing.T) {
	repo := newRecordingRepo()
	o := orchestrator.New(config.DefaultConfig(),
		orchestrator.WithCompleter(completer()),
		orchestrator.WithResultRepository(repo))

	_, err := o.ExecuteGeneration(context.Background(), domain.ModeDirectoryBatch, nil)
	require.Error(t, err)

	var verr *domain.ValidationError
	assert.ErrorAs(t, err, &verr)
	assert.Empty(t, repo.sessions, "nothing persisted on validation failure")
}

func TestExecuteGeneration_SinkReceivesResults(t *testing.T) {
	sink := &recordingSink{}
	o := orchestrator.New(config.DefaultConfig(),
		orchestrator.WithCompleter(completer()),
		orchestrator.WithResultRepository(newRecordingRepo()),
		orchestrator.WithSink(sink))

	results, err := o.ExecuteGeneration(context.Background(), domain.ModeSingleFile,
		[]domain.PageDefinition{page(t, "Home")})
	require.NoError(t, err)
	assert.Equal(t, results, sink.results)
}

func TestExecuteGeneration_DisposesResolvedRepository(t *testing.T) {
	repo := newRecordingRepo()
	o := orchestrator.New(config.DefaultConfig(),
		orchestrator.WithCompleter(completer()),
		orchestrator.WithResultRepository(repo))

	_, err := o.ExecuteGeneration(context.Background(), domain.ModeSingleFile,
		[]domain.PageDefinition{page(t, "Home")})
	require.NoError(t, err)
	assert.True(t, repo.closed, "resolved repository is released when the run ends")
}
