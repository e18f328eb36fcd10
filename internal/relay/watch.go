package relay

import (
	"adaptive/internal/config"
	"adaptive/internal/logging"
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ConfigWatcher reloads a config file when it changes on disk.
type ConfigWatcher struct {
	path     string
	watcher  *fsnotify.Watcher
	apply    func(*config.Config)
	debounce time.Duration
}

// NewConfigWatcher watches path. The containing directory is watched so that
// editors that save by rename are still seen.
func NewConfigWatcher(path string, apply func(*config.Config)) (*ConfigWatcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve config path: %w", err)
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", filepath.Dir(abs), err)
	}
	return &ConfigWatcher{
		path:     abs,
		watcher:  watcher,
		apply:    apply,
		debounce: 200 * time.Millisecond,
	}, nil
}

// Run handles events until ctx is cancelled, then closes the watcher.
func (w *ConfigWatcher) Run(ctx context.Context) error {
	defer w.watcher.Close()
	logging.Relay("Watching config %s", w.path)

	var pending <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
				continue
			}
			logging.RelayDebug("Config event %s", event.Op)
			pending = time.After(w.debounce)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			logging.RelayError("Config watcher error: %v", err)

		case <-pending:
			pending = nil
			w.reload()
		}
	}
}

func (w *ConfigWatcher) reload() {
	cfg, err := config.Load(w.path)
	if err != nil {
		logging.RelayError("Config reload failed, keeping current settings: %v", err)
		return
	}
	if err := cfg.Validate(); err != nil {
		logging.RelayError("Reloaded config invalid, keeping current settings: %v", err)
		return
	}
	logging.Relay("Config reloaded from %s", w.path)
	w.apply(cfg)
}
