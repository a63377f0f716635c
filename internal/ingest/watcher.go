package ingest

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"car-market-assistant/internal/common/logger"

	"github.com/fsnotify/fsnotify"
)

// FileEvent reports a listings file that appeared or changed in the watched directory.
type FileEvent struct {
	Path string
}

// DefaultSettle is how long a file must go without Create or Write events before it is reported.
const DefaultSettle = 500 * time.Millisecond

// Watcher emits events for new or rewritten listings files in one directory. A file is reported
// once it has stopped changing for Settle, so a CSV still being copied is not read half-written.
type Watcher struct {
	watcher    *fsnotify.Watcher
	extensions []string
	logger     logger.Logger
	Settle     time.Duration
}

func NewWatcher(extensions []string, log logger.Logger) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if len(extensions) == 0 {
		extensions = []string{".csv"}
	}

	return &Watcher{
		watcher:    w,
		extensions: extensions,
		logger:     log,
		Settle:     DefaultSettle,
	}, nil
}

// Watch starts monitoring dir. The channel closes when ctx is done or the watcher stops.
func (w *Watcher) Watch(ctx context.Context, dir string) (<-chan FileEvent, error) {
	if err := w.watcher.Add(dir); err != nil {
		return nil, err
	}

	events := make(chan FileEvent, 16)
	settled := make(chan string, 16)
	done := make(chan struct{})

	go func() {
		defer close(events)
		defer close(done)

		pending := make(map[string]*time.Timer)
		defer func() {
			for _, t := range pending {
				t.Stop()
			}
		}()

		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-w.watcher.Events:
				if !ok {
					return
				}
				if !w.isWatchedExtension(event.Name) {
					continue
				}
				if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
					continue
				}

				path := event.Name
				if t, ok := pending[path]; ok {
					t.Reset(w.Settle)
					continue
				}
				pending[path] = time.AfterFunc(w.Settle, func() {
					select {
					case settled <- path:
					case <-done:
					}
				})
			case path := <-settled:
				delete(pending, path)
				select {
				case events <- FileEvent{Path: path}:
				case <-ctx.Done():
					return
				}
			case err, ok := <-w.watcher.Errors:
				if !ok {
					return
				}
				w.logger.Warn("watch error", map[string]interface{}{
					"dir":   dir,
					"error": err.Error(),
				})
			}
		}
	}()

	return events, nil
}

func (w *Watcher) Stop() error {
	return w.watcher.Close()
}

func (w *Watcher) isWatchedExtension(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range w.extensions {
		if ext == strings.ToLower(e) {
			return true
		}
	}
	return false
}
