package config

import (
	"context"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// FileWatcher watches the profiles directory and calls onChange with the
// changed paths once edits settle for the debounce window.
type FileWatcher struct {
	dir      string
	debounce time.Duration
	onChange func(paths []string)
	log      *slog.Logger

	watcher  *fsnotify.Watcher
	stopOnce sync.Once
	done     chan struct{}
}

// NewFileWatcher creates a watcher for dir. A zero debounce defaults to 100ms.
func NewFileWatcher(dir string, debounce time.Duration, onChange func(paths []string)) (*FileWatcher, error) {
	if debounce <= 0 {
		debounce = 100 * time.Millisecond
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &FileWatcher{
		dir:      dir,
		debounce: debounce,
		onChange: onChange,
		log:      slog.Default().With("component", "config_watcher"),
		watcher:  w,
		done:     make(chan struct{}),
	}, nil
}

// Start adds the directory and processes events until ctx ends or Stop.
func (w *FileWatcher) Start(ctx context.Context) error {
	if err := w.watcher.Add(w.dir); err != nil {
		return err
	}
	go w.loop(ctx)
	return nil
}

// Stop releases the underlying watcher. Safe to call more than once.
func (w *FileWatcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.done)
		w.watcher.Close()
	})
}

func (w *FileWatcher) loop(ctx context.Context) {
	pending := map[string]struct{}{}
	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.done:
			return
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Ext(ev.Name) != ".yaml" || ev.Op == fsnotify.Chmod {
				continue
			}
			pending[ev.Name] = struct{}{}
			timer.Reset(w.debounce)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Warn("watch error", "dir", w.dir, "err", err)
		case <-timer.C:
			if len(pending) == 0 {
				continue
			}
			paths := make([]string, 0, len(pending))
			for p := range pending {
				paths = append(paths, p)
			}
			clear(pending)
			w.log.Info("profiles changed", "files", len(paths))
			w.onChange(paths)
		}
	}
}
