// Package watch reports changes to a fixed set of files.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"

	"model-asset-preview/internal/logging"
)

// DefaultDebounce is how long Watch waits for a burst of writes to settle.
const DefaultDebounce = 200 * time.Millisecond

// Watch calls fn with the changed paths whenever any of paths is written,
// created, renamed or removed. Events within debounce of each other are
// coalesced into one call. Parent directories are watched so files replaced
// by editors keep being tracked. Watch blocks until ctx is done.
func Watch(ctx context.Context, paths []string, debounce time.Duration, fn func(changed []string)) error {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	defer w.Close()

	files := make(map[string]bool, len(paths))
	dirs := make(map[string]bool)
	for _, p := range paths {
		if p == "" {
			continue
		}
		abs, err := filepath.Abs(p)
		if err != nil {
			return fmt.Errorf("watch: %s: %w", p, err)
		}
		files[abs] = true
		dir := filepath.Dir(abs)
		if !dirs[dir] {
			if err := w.Add(dir); err != nil {
				return fmt.Errorf("watch: add %s: %w", dir, err)
			}
			dirs[dir] = true
		}
	}

	log := logging.Logger()
	pending := make(map[string]bool)
	timer := time.NewTimer(debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !files[filepath.Clean(event.Name)] || event.Op == fsnotify.Chmod {
				continue
			}
			log.Debug("file changed", "path", event.Name, "op", event.Op.String())
			pending[filepath.Clean(event.Name)] = true
			timer.Reset(debounce)

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Warn("watch error", "err", err)

		case <-timer.C:
			if len(pending) == 0 {
				continue
			}
			changed := make([]string, 0, len(pending))
			for p := range pending {
				changed = append(changed, p)
			}
			sort.Strings(changed)
			pending = make(map[string]bool)
			fn(changed)
		}
	}
}
