package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"

	"github.com/matzehuels/interestmap/pkg/core/tree"
	"github.com/matzehuels/interestmap/pkg/graph"
)

// reloadDebounce coalesces the burst of events an editor save produces.
const reloadDebounce = 150 * time.Millisecond

// watchTreeFile calls fn with the re-read tree each time path changes,
// until ctx is done. The parent directory is watched so editors that
// replace the file by rename are followed.
func watchTreeFile(ctx context.Context, path string, logger *log.Logger, fn func(tree.Entity, error)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create file watcher: %w", err)
	}
	defer watcher.Close()

	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}
	logger.Debug("watching tree file", "path", abs)

	timer := time.NewTimer(reloadDebounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs || ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			timer.Reset(reloadDebounce)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("file watcher error", "error", err)

		case <-timer.C:
			root, err := graph.ReadTreeFile(abs)
			if err != nil {
				logger.Warn("reload failed", "path", abs, "error", err)
			} else {
				logger.Debug("tree reloaded", "path", abs, "nodes", root.Size())
			}
			fn(root, err)
		}
	}
}
