// Package watch implements a continuous re-staging daemon: a long-lived
// counterpart to the single-shot update-cache command that watches a
// directory tree and keeps the index in sync as files change.
package watch

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/rybkr/dircache/internal/stage"
)

// debounceTime coalesces bursts of filesystem events (e.g. an editor's
// write-then-rename save pattern) into a single re-stage.
const debounceTime = 100 * time.Millisecond

// Run watches workDir recursively and re-stages any changed path into
// idx, saving the index after each debounced batch. It blocks until ctx
// is cancelled.
func Run(ctx context.Context, idx *stage.Index, workDir string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	walkAndWatch(watcher, workDir)

	var debounceTimer *time.Timer
	dirty := make(map[string]bool)

	flush := func() {
		for name := range dirty {
			if err := idx.StageFile(name); err != nil {
				slog.Error("watch: staging file failed", "path", name, "err", err)
			}
		}
		dirty = make(map[string]bool)
		if err := idx.Save(); err != nil {
			slog.Error("watch: saving index failed", "err", err)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if shouldIgnoreEvent(event) {
				continue
			}
			rel, err := filepath.Rel(workDir, event.Name)
			if err != nil {
				continue
			}
			if err := stage.ValidatePath(rel); err != nil {
				continue
			}
			if info, statErr := os.Stat(event.Name); statErr == nil && info.IsDir() {
				walkAndWatch(watcher, event.Name)
				continue
			}
			dirty[rel] = true

			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(debounceTime, flush)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Error("watch: watcher error", "err", err)
		}
	}
}

// walkAndWatch adds fsnotify watches to dir and all its subdirectories,
// since fsnotify does not recurse on its own. Missing directories are
// silently skipped.
func walkAndWatch(watcher *fsnotify.Watcher, dir string) {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return
	}
	err = filepath.Walk(dir, func(path string, fi os.FileInfo, walkErr error) error {
		if walkErr != nil {
			return nil //nolint:nilerr // skip unreadable entries
		}
		if fi.IsDir() {
			if addErr := watcher.Add(path); addErr != nil {
				slog.Warn("watch: failed to watch directory", "path", path, "err", addErr)
			}
		}
		return nil
	})
	if err != nil {
		slog.Warn("watch: failed to walk directory", "path", dir, "err", err)
	}
}

func shouldIgnoreEvent(event fsnotify.Event) bool {
	base := filepath.Base(event.Name)
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return true
	}
	if base == ".dircache" {
		return true
	}
	return filepath.Ext(base) == ".lock"
}
