package importer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// settle gives editors and copy tools time to finish writing.
const settle = 200 * time.Millisecond

// Watch re-imports path, forced, every time it is written or replaced,
// until ctx is done. onImport, when set, receives the outcome of each run.
func (im *Importer) Watch(ctx context.Context, path string, onImport func(Result, error)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating corpus watcher: %w", err)
	}
	defer func() {
		if err := watcher.Close(); err != nil {
			logger.Warnf("failed to close corpus watcher: %v", err)
		}
	}()

	// Watching the directory survives atomic replacement of the file.
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolving %s: %w", path, err)
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watching %s: %w", filepath.Dir(abs), err)
	}
	logger.Infof("watching corpus file for changes: %s", abs)

	var pending <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != abs {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				logger.Debugf("corpus changed (%s)", event.Op)
				pending = time.After(settle)
			}
		case <-pending:
			pending = nil
			if _, err := os.Stat(abs); os.IsNotExist(err) {
				logger.Warnf("corpus file was removed and not replaced, skipping import")
				continue
			}
			res, err := im.ImportFile(ctx, abs, true)
			if err != nil {
				logger.Errorf("re-import failed: %v", err)
			}
			if onImport != nil {
				onImport(res, err)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warnf("corpus watcher error: %v", err)
		}
	}
}
