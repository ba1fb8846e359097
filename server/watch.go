package server

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// WatchConfig watches the config file and invokes apply with each
// successfully reloaded Config until ctx is done. The parent directory is
// watched rather than the file itself because editors typically replace
// the file on save.
func WatchConfig(ctx context.Context, path string, logger *zap.Logger, apply func(Config)) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve config path: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}

	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		watcher.Close()
		return fmt.Errorf("watch config directory: %w", err)
	}

	go func() {
		defer watcher.Close()

		for {
			select {
			case <-ctx.Done():
				return

			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Name != abs || !event.Op.Has(fsnotify.Write|fsnotify.Create) {
					continue
				}

				cfg, err := LoadConfig(abs)
				if err != nil {
					logger.Warn("config reload failed", zap.Error(err))
					continue
				}

				logger.Info("config reloaded", zap.String("path", abs))
				apply(cfg)

			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn("config watcher error", zap.Error(err))
			}
		}
	}()

	return nil
}
