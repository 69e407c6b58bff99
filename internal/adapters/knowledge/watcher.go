package knowledge

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// debounceDelay coalesces the burst of events editors and atomic-rename
// writers produce for a single save.
const debounceDelay = 500 * time.Millisecond

// Watcher monitors the knowledge seed file and invokes a callback after it
// changes, so content edits trigger re-embedding without a restart.
type Watcher struct {
	watcher *fsnotify.Watcher
	path    string
	logger  *zap.Logger
}

// NewWatcher creates a watcher for the given knowledge file.
func NewWatcher(path string, logger *zap.Logger) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{
		watcher: w,
		path:    filepath.Clean(path),
		logger:  logger,
	}, nil
}

// Watch blocks until ctx is done, invoking onChange after each debounced
// edit of the knowledge file. The parent directory is watched so the file
// is picked up even when recreated by an atomic rename.
func (w *Watcher) Watch(ctx context.Context, onChange func(context.Context)) error {
	if err := w.watcher.Add(filepath.Dir(w.path)); err != nil {
		return err
	}

	var timer *time.Timer
	pending := make(chan struct{}, 1)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(debounceDelay, func() {
				select {
				case pending <- struct{}{}:
				default:
				}
			})

		case <-pending:
			w.logger.Info("knowledge file changed, re-syncing", zap.String("path", w.path))
			onChange(ctx)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("knowledge watcher error", zap.Error(err))
		}
	}
}

// Stop stops the watcher.
func (w *Watcher) Stop() error {
	return w.watcher.Close()
}
