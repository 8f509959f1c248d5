package store

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

const settleDelay = 100 * time.Millisecond

// Watch calls onChange whenever the file at path is created, written or
// renamed into place. Bursts of events are coalesced. Watch blocks until ctx
// is done.
//
// The parent directory is watched rather than the file itself, because an
// atomic rename replaces the inode a file watch would be bound to.
func Watch(ctx context.Context, path string, onChange func()) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer w.Close()

	if err := w.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("watching %s: %w", filepath.Dir(path), err)
	}

	target := filepath.Clean(path)

	timer := time.NewTimer(settleDelay)
	timer.Stop()

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil

		case event, ok := <-w.Events:
			if !ok {
				return nil
			}

			if filepath.Clean(event.Name) != target {
				continue
			}

			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) && !event.Has(fsnotify.Rename) {
				continue
			}

			timer.Reset(settleDelay)

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}

			slog.Warn("file watcher error", "path", path, "error", err)

		case <-timer.C:
			onChange()
		}
	}
}
