package knowledge

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestWatcher_FiresOnFileEdit(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "knowledge.json")
	require.NoError(t, os.WriteFile(path, []byte("[]"), 0644))

	watcher, err := NewWatcher(path, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { watcher.Stop() })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changed := make(chan struct{}, 1)
	go watcher.Watch(ctx, func(context.Context) {
		select {
		case changed <- struct{}{}:
		default:
		}
	})

	// Give the watch loop time to register before editing.
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte(`[{"id":"1"}]`), 0644))

	select {
	case <-changed:
	case <-time.After(3 * time.Second):
		t.Fatal("expected a change notification after editing the watched file")
	}
}

func TestWatcher_IgnoresSiblingFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "knowledge.json")
	require.NoError(t, os.WriteFile(path, []byte("[]"), 0644))

	watcher, err := NewWatcher(path, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { watcher.Stop() })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changed := make(chan struct{}, 1)
	go watcher.Watch(ctx, func(context.Context) {
		select {
		case changed <- struct{}{}:
		default:
		}
	})

	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.txt"), []byte("x"), 0644))

	select {
	case <-changed:
		t.Fatal("sibling file edits must not trigger a resync")
	case <-time.After(debounceDelay + 500*time.Millisecond):
	}
}

func TestWatcher_StopsOnContextCancel(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "knowledge.json")

	watcher, err := NewWatcher(path, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { watcher.Stop() })

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- watcher.Watch(ctx, func(context.Context) {})
	}()

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop after context cancellation")
	}
}
