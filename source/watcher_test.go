package source_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/c360studio/pageforge/source"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startWatcher(t *testing.T, dir string) *source.Watcher {
	t.Helper()
	w, err := source.NewWatcher(dir, 50*time.Millisecond, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	require.NoError(t, w.Start(ctx))
	t.Cleanup(func() { _ = w.Stop() })
	return w
}

func waitForChange(t *testing.T, w *source.Watcher) source.Change {
	t.Helper()
	select {
	case change, ok := <-w.Events():
		require.True(t, ok, "events channel closed early")
		return change
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for change event")
		return source.Change{}
	}
}

func TestWatcher_EmitsChangeForNewDefinition(t *testing.T) {
	dir := t.TempDir()
	w := startWatcher(t, dir)

	path := filepath.Join(dir, "login.md")
	require.NoError(t, os.WriteFile(path, []byte("# Login\n"), 0644))

	change := waitForChange(t, w)
	assert.Contains(t, change.Paths, path)
}

func TestWatcher_CoalescesBurstsIntoOneBatch(t *testing.T) {
	dir := t.TempDir()
	w := startWatcher(t, dir)

	a := filepath.Join(dir, "a.md")
	b := filepath.Join(dir, "b.md")
	require.NoError(t, os.WriteFile(a, []byte("# A\n"), 0644))
	require.NoError(t, os.WriteFile(b, []byte("# B\n"), 0644))

	change := waitForChange(t, w)
	assert.Subset(t, []string{a, b}, change.Paths)
	assert.NotEmpty(t, change.Paths)
	for i := 1; i < len(change.Paths); i++ {
		assert.Less(t, change.Paths[i-1], change.Paths[i], "paths are sorted")
	}
}

func TestWatcher_IgnoresNonMarkdownFiles(t *testing.T) {
	dir := t.TempDir()
	w := startWatcher(t, dir)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644))

	select {
	case change := <-w.Events():
		t.Fatalf("unexpected change for non-markdown file: %v", change.Paths)
	case <-time.After(300 * time.Millisecond):
	}
}

func TestWatcher_StopClosesEvents(t *testing.T) {
	dir := t.TempDir()
	w := startWatcher(t, dir)

	require.NoError(t, w.Stop())

	select {
	case _, ok := <-w.Events():
		assert.False(t, ok, "events channel should be closed")
	case <-time.After(2 * time.Second):
		t.Fatal("events channel not closed after Stop")
	}
}
