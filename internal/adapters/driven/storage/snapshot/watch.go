package snapshot

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/storybank/internal/logger"
)

// DefaultDebounce coalesces the burst of events a single atomic write produces.
const DefaultDebounce = 150 * time.Millisecond

// Watch reports each time the snapshot file is created or replaced.
// The parent directory is watched because an atomic rename swaps the inode.
// The returned channel is closed when ctx is done.
func (s *FileStore) Watch(ctx context.Context, debounce time.Duration) (<-chan struct{}, error) {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	dir := filepath.Dir(s.path)
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}

	changes := make(chan struct{}, 1)
	go s.watchLoop(ctx, watcher, debounce, changes)
	return changes, nil
}

func (s *FileStore) watchLoop(ctx context.Context, watcher *fsnotify.Watcher, debounce time.Duration, changes chan<- struct{}) {
	defer close(changes)
	defer watcher.Close()

	var timer *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if !s.isSnapshotChange(event) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(debounce)
			} else {
				timer.Reset(debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			select {
			case changes <- struct{}{}:
			default:
				// A notification is already pending.
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			logger.Warn("Snapshot watcher error: %v", err)
		}
	}
}

func (s *FileStore) isSnapshotChange(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != filepath.Clean(s.path) {
		return false
	}
	return event.Has(fsnotify.Create) || event.Has(fsnotify.Write) || event.Has(fsnotify.Rename)
}
