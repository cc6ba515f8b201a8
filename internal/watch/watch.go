// Package watch triggers rebuilds when content changes on disk.
package watch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// debounce coalesces editor save bursts into a single rebuild.
const debounce = 250 * time.Millisecond

// Run watches the content root recursively and invokes rebuild after each
// change burst. It blocks until ctx is done. Rebuild errors are logged and
// watching continues; a broken edit must not kill the watch loop.
func Run(ctx context.Context, root string, logger *slog.Logger, rebuild func(context.Context) error) error {
	if rebuild == nil {
		return errors.New("rebuild callback must be provided")
	}
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "watch")

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer func() {
		if err := watcher.Close(); err != nil {
			logger.Error("close watcher", slog.Any("err", err))
		}
	}()

	if err := watchRecursive(watcher, root); err != nil {
		return err
	}

	var timer *time.Timer
	pending := make(chan struct{}, 1)

	schedule := func() {
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(debounce, func() {
			select {
			case pending <- struct{}{}:
			default:
			}
		})
	}

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Name == "" {
				continue
			}
			logger.Debug("fsnotify event",
				slog.String("path", event.Name),
				slog.String("op", event.Op.String()))

			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					_ = watchRecursive(watcher, event.Name)
				}
			}
			if relevant(event) {
				schedule()
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher error", slog.Any("err", err))
		case <-pending:
			start := time.Now()
			if err := rebuild(ctx); err != nil {
				logger.Error("rebuild failed", slog.Any("err", err))
				continue
			}
			logger.Info("rebuilt site", slog.Duration("duration", time.Since(start)))
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return ctx.Err()
		}
	}
}

func relevant(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}
	base := filepath.Base(event.Name)
	// Skip editor swap/backup churn.
	if strings.HasSuffix(base, "~") || strings.HasSuffix(base, ".swp") || strings.HasPrefix(base, ".#") {
		return false
	}
	return true
}

func watchRecursive(watcher *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if name := d.Name(); p != root && strings.HasPrefix(name, ".") {
			return fs.SkipDir
		}
		if err := watcher.Add(p); err != nil {
			return fmt.Errorf("watch %s: %w", p, err)
		}
		return nil
	})
}
