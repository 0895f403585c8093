package config

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultDebounce is how long the directory must be quiet before a reload.
const DefaultDebounce = 200 * time.Millisecond

// Watcher reloads a bot file when anything in its directory changes. The
// directory is watched rather than the file so editors that save by rename
// are seen. Memory and dictionary files next to the bot file trigger reloads
// too.
type Watcher struct {
	path     string
	watcher  *fsnotify.Watcher
	debounce time.Duration
	logger   *zap.Logger
}

// NewWatcher starts watching the directory of the bot file at path.
func NewWatcher(path string, logger *zap.Logger) (*Watcher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := w.Add(filepath.Dir(path)); err != nil {
		w.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(path), err)
	}
	return &Watcher{path: path, watcher: w, debounce: DefaultDebounce, logger: logger}, nil
}

// Run delivers a freshly loaded bot file to apply after each settled burst
// of changes. Files that fail to load are logged and skipped. Run blocks
// until ctx is done and closes the watcher on return.
func (w *Watcher) Run(ctx context.Context, apply func(*BotFile)) error {
	defer w.watcher.Close()

	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			w.logger.Debug("bot directory changed", zap.String("file", event.Name))
			timer.Reset(w.debounce)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watcher error", zap.Error(err))

		case <-timer.C:
			f, err := LoadBot(w.path)
			if err != nil {
				w.logger.Warn("bot file reload failed", zap.Error(err))
				continue
			}
			w.logger.Info("bot file reloaded", zap.String("path", w.path))
			apply(f)
		}
	}
}
