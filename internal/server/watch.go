package server

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// watcher turns file events under the site's source trees into
// debounced rebuild triggers.
type watcher struct {
	fsw      *fsnotify.Watcher
	debounce time.Duration
	onChange func()
	logger   Logger
}

func newWatcher(debounce time.Duration, onChange func(), logger Logger) (*watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("server: watcher: %w", err)
	}
	return &watcher{fsw: fsw, debounce: debounce, onChange: onChange, logger: logger}, nil
}

// addTree watches dir and every directory below it. Missing roots are
// skipped so a site can configure folders it has not created yet.
func (w *watcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) && path == dir {
				return fs.SkipAll
			}
			return err
		}
		if d.IsDir() && path != dir && strings.HasPrefix(d.Name(), ".") {
			return fs.SkipDir
		}
		if !d.IsDir() {
			return nil
		}
		if err := w.fsw.Add(path); err != nil {
			return fmt.Errorf("server: watch %s: %w", path, err)
		}
		return nil
	})
}

// run pumps events until the context ends. A quiet period of the
// debounce interval after the last event fires one onChange call.
func (w *watcher) run(ctx context.Context) {
	defer w.fsw.Close()
	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	pending := false
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			// New directories join the watch so nested content is seen.
			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					_ = w.fsw.Add(event.Name)
				}
			}
			pending = true
			timer.Reset(w.debounce)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Printf("server: watch error: %v", err)
		case <-timer.C:
			if pending {
				pending = false
				w.onChange()
			}
		}
	}
}
