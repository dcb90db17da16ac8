package filewatcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docuflow-labs/docuflow/internal/core/ports/driven"
)

func newWatcher(t *testing.T, extensions ...string) *Watcher {
	t.Helper()
	w, err := New(extensions...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Stop() })
	return w
}

func waitEvent(t *testing.T, events <-chan driven.FileEvent) driven.FileEvent {
	t.Helper()
	select {
	case ev, ok := <-events:
		require.True(t, ok, "event channel closed early")
		return ev
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for file event")
		return driven.FileEvent{}
	}
}

func TestWatch_EmitsCreateForWatchedExtension(t *testing.T) {
	dir := t.TempDir()
	w := newWatcher(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, err := w.Watch(ctx, dir)
	require.NoError(t, err)

	path := filepath.Join(dir, "scan.png")
	require.NoError(t, os.WriteFile(path, []byte{0x89, 0x50}, 0o644))

	ev := waitEvent(t, events)
	assert.Equal(t, path, ev.Path)
	assert.Equal(t, driven.FileCreated, ev.Operation)
}

func TestWatch_IgnoresUnwatchedExtension(t *testing.T) {
	dir := t.TempDir()
	w := newWatcher(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, err := w.Watch(ctx, dir)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "scan.tiff"), []byte{0x49}, 0o644))

	// Only the tiff arrives; the txt was filtered out.
	ev := waitEvent(t, events)
	assert.Equal(t, "scan.tiff", filepath.Base(ev.Path))
}

func TestWatch_CustomExtensions(t *testing.T) {
	w := newWatcher(t, ".dat")

	assert.True(t, w.watched("/drop/file.dat"))
	assert.True(t, w.watched("/drop/file.DAT"))
	assert.False(t, w.watched("/drop/file.png"))
}

func TestWatch_ChannelClosesOnCancel(t *testing.T) {
	dir := t.TempDir()
	w := newWatcher(t)

	ctx, cancel := context.WithCancel(context.Background())
	events, err := w.Watch(ctx, dir)
	require.NoError(t, err)

	cancel()

	select {
	case _, ok := <-events:
		assert.False(t, ok)
	case <-time.After(3 * time.Second):
		t.Fatal("channel did not close after cancel")
	}
}

func TestWatch_MissingDirectory(t *testing.T) {
	w := newWatcher(t)

	_, err := w.Watch(context.Background(), "/nonexistent/drop")
	assert.Error(t, err)
}
