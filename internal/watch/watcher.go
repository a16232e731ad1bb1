// Package watch reloads the knowledge base when the policy file on
// disk changes, keeping long-running frontends (TUI, MCP) current
// without a restart.
package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/iguales-labs/policykb-cli/internal/core/ports/driving"
	"github.com/iguales-labs/policykb-cli/internal/logger"
)

// debounceTime coalesces the rapid event bursts editors produce on save.
const debounceTime = 300 * time.Millisecond

// Watcher reloads a KB file into the service on change.
type Watcher struct {
	path    string
	service driving.KBService
	watcher *fsnotify.Watcher
	cancel  context.CancelFunc
	done    chan struct{}

	// OnReload, when set, is called after each successful reload.
	OnReload func()
}

// New creates a watcher for the KB file at path. The file must exist;
// it is loaded once before watching starts.
func New(path string, service driving.KBService) (*Watcher, error) {
	w := &Watcher{
		path:    path,
		service: service,
		done:    make(chan struct{}),
	}
	if err := w.reload(context.Background()); err != nil {
		return nil, err
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating file watcher: %w", err)
	}
	if err := fsw.Add(path); err != nil {
		_ = fsw.Close()
		return nil, fmt.Errorf("watching %s: %w", path, err)
	}
	w.watcher = fsw
	return w, nil
}

// Start begins watching in a background goroutine.
func (w *Watcher) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	w.cancel = cancel
	go w.loop(ctx)
	logger.Info("Watching KB file %s", w.path)
}

// Stop stops watching and waits for the loop to exit.
func (w *Watcher) Stop() error {
	err := w.watcher.Close()
	if w.cancel != nil {
		w.cancel()
		<-w.done
	}
	return err
}

func (w *Watcher) loop(ctx context.Context) {
	defer close(w.done)
	var debounce *time.Timer

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				if debounce != nil {
					debounce.Stop()
				}
				debounce = time.AfterFunc(debounceTime, func() {
					if err := w.reload(ctx); err != nil {
						logger.Warn("KB reload failed: %v", err)
						return
					}
					if w.OnReload != nil {
						w.OnReload()
					}
				})
			}
			// Editors that save via rename drop the watch on the old
			// inode; re-add once the file reappears.
			if event.Op&(fsnotify.Remove|fsnotify.Rename) != 0 {
				go w.rewatch()
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logger.Warn("KB watcher error: %v", err)
		}
	}
}

func (w *Watcher) rewatch() {
	for i := 0; i < 50; i++ {
		time.Sleep(100 * time.Millisecond)
		if _, err := os.Stat(w.path); err != nil {
			continue
		}
		if err := w.watcher.Add(w.path); err != nil {
			logger.Warn("Re-watching %s failed: %v", w.path, err)
		}
		return
	}
	logger.Warn("KB file %s was not recreated, watch dropped", w.path)
}

func (w *Watcher) reload(ctx context.Context) error {
	data, err := os.ReadFile(w.path)
	if err != nil {
		return fmt.Errorf("reading kb file: %w", err)
	}

	info, err := os.Stat(w.path)
	updatedAt := ""
	if err == nil {
		updatedAt = info.ModTime().UTC().Format(time.RFC3339)
	}

	_, err = w.service.LoadKB(ctx, string(data), filepath.Base(w.path), updatedAt)
	if err != nil {
		return fmt.Errorf("loading kb: %w", err)
	}
	return nil
}
