package driven

import "context"

// FileOperation classifies a drop-folder event.
type FileOperation int

const (
	FileCreated FileOperation = iota
	FileModified
	FileDeleted
)

// FileEvent is one observed change in a watched directory.
type FileEvent struct {
	// Path is the absolute path of the changed file.
	Path string

	// Operation classifies the change.
	Operation FileOperation
}

// FileWatcher monitors a drop folder and emits events for files worth
// ingesting. The channel closes when the context is cancelled or the
// watcher is stopped.
type FileWatcher interface {
	// Watch starts monitoring the directory.
	Watch(ctx context.Context, dir string) (<-chan FileEvent, error)

	// Stop releases the underlying watch handles.
	Stop() error
}
