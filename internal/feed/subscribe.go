package feed

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sourcegraph/conc"
)

// DebounceInterval is how long a burst of file events is allowed to settle before a poll.
const DebounceInterval = 100 * time.Millisecond

// Subscribe feeds every entry the tailer sees to fn until ctx is cancelled or fn returns an error.
// The tailer is polled every interval; fsnotify events on the feed only trigger an earlier poll.
func Subscribe(ctx context.Context, t *Tailer, interval time.Duration, logger *slog.Logger, fn func(*Entry) error) error {
	if logger == nil {
		logger = slog.Default()
	}
	ctx, cancel := context.WithCancel(ctx)
	var wg conc.WaitGroup
	defer wg.Wait()
	defer cancel()

	wake := make(chan struct{}, 1)
	wg.Go(func() {
		watchFeed(ctx, t.Path(), wake, logger)
	})

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	poll := func() error {
		entries, err := t.Poll()
		if err != nil {
			logger.Warn("failed to poll feed", "path", t.Path(), "error", err)
			return nil
		}
		for _, entry := range entries {
			if err := fn(entry); err != nil {
				return err
			}
		}
		return nil
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		case <-wake:
		}
		if err := poll(); err != nil {
			return err
		}
	}
}

// watchFeed watches the feed's parent directory so the hint survives the file being created or replaced.
func watchFeed(ctx context.Context, path string, wake chan<- struct{}, logger *slog.Logger) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		logger.Warn("file notifications unavailable, polling only", "error", err)
		return
	}
	defer watcher.Close()

	dir := filepath.Dir(path)
	name := filepath.Base(path)
	if err := watcher.Add(dir); err != nil {
		logger.Warn("file notifications unavailable, polling only", "dir", dir, "error", err)
		return
	}

	var debounceTimer *time.Timer
	defer func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
	}()

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != name {
				continue
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
				continue
			}
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(DebounceInterval, func() {
				select {
				case wake <- struct{}{}:
				default:
				}
			})

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			logger.Warn("fsnotify error", "error", err)

		case <-ctx.Done():
			return
		}
	}
}
