// Package filewatcher provides the fsnotify drop-folder adapter. New or
// rewritten scans appearing in the watched directory are surfaced as
// events for the ingestion loop.
package filewatcher

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"github.com/docuflow-labs/docuflow/internal/core/ports/driven"
	"github.com/docuflow-labs/docuflow/internal/logger"
)

// Ensure Watcher implements the interface.
var _ driven.FileWatcher = (*Watcher)(nil)

// DefaultExtensions are the scan formats accepted from a drop folder.
var DefaultExtensions = []string{".png", ".jpg", ".jpeg", ".tif", ".tiff", ".pdf"}

// Watcher emits events for document files changing under a directory.
type Watcher struct {
	watcher    *fsnotify.Watcher
	extensions map[string]struct{}
}

// New creates a watcher. With no extensions, DefaultExtensions applies.
func New(extensions ...string) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	if len(extensions) == 0 {
		extensions = DefaultExtensions
	}
	set := make(map[string]struct{}, len(extensions))
	for _, ext := range extensions {
		set[strings.ToLower(ext)] = struct{}{}
	}

	return &Watcher{watcher: w, extensions: set}, nil
}

// Watch starts monitoring the directory. Events for files with an
// unwatched extension are dropped before they reach the channel.
func (w *Watcher) Watch(ctx context.Context, dir string) (<-chan driven.FileEvent, error) {
	if err := w.watcher.Add(dir); err != nil {
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}
	logger.Info("Watching %s for %d extensions", dir, len(w.extensions))

	events := make(chan driven.FileEvent, 64)

	go func() {
		defer close(events)
		for {
			select {
			case <-ctx.Done():
				return

			case event, ok := <-w.watcher.Events:
				if !ok {
					return
				}
				if !w.watched(event.Name) {
					continue
				}

				var op driven.FileOperation
				switch {
				case event.Op.Has(fsnotify.Create):
					op = driven.FileCreated
				case event.Op.Has(fsnotify.Write):
					op = driven.FileModified
				case event.Op.Has(fsnotify.Remove):
					op = driven.FileDeleted
				default:
					continue
				}

				select {
				case events <- driven.FileEvent{Path: event.Name, Operation: op}:
				case <-ctx.Done():
					return
				}

			case err, ok := <-w.watcher.Errors:
				if !ok {
					return
				}
				logger.Warn("Watcher error: %v", err)
			}
		}
	}()

	return events, nil
}

// Stop releases the underlying watch handles.
func (w *Watcher) Stop() error {
	return w.watcher.Close()
}

func (w *Watcher) watched(path string) bool {
	_, ok := w.extensions[strings.ToLower(filepath.Ext(path))]
	return ok
}
