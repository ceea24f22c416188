package config

import (
	"context"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// ReadAllowList re-reads only the allow_list key from path.
func ReadAllowList(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var partial struct {
		AllowList []string `yaml:"allow_list"`
	}
	if err := yaml.Unmarshal(data, &partial); err != nil {
		return nil, err
	}
	return cleanList(partial.AllowList), nil
}

// WatchAllowList calls apply with the new allow list every time the config
// file is written. It blocks until ctx is done.
func WatchAllowList(ctx context.Context, path string, logger *zap.Logger, apply func([]string)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	// Editors replace files on save, so watch the directory.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return err
	}
	target := filepath.Clean(path)

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			list, err := ReadAllowList(path)
			if err != nil {
				logger.Warn("allow list reload failed", zap.Error(err))
				continue
			}
			apply(list)
			logger.Info("allow list reloaded", zap.Int("entries", len(list)))
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("config watcher error", zap.Error(err))
		}
	}
}
