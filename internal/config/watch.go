package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"sync"

	"voxel-render/internal/logging"

	"github.com/fsnotify/fsnotify"
)

// Watcher reloads a config file when it changes on disk. Results are handed over through
// a 1-slot channel; a newer config replaces one the consumer has not drained yet.
type Watcher struct {
	path    string
	fs      *fsnotify.Watcher
	updates chan Config

	done     chan struct{}
	wg       sync.WaitGroup
	isClosed bool
}

// Watch starts watching path. Editors often replace a file instead of writing it,
// so the containing directory is watched and events are filtered by name.
func Watch(path string) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("watch config: %w", err)
	}
	fsWatch, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch config: %w", err)
	}
	if err := fsWatch.Add(filepath.Dir(abs)); err != nil {
		fsWatch.Close()
		return nil, fmt.Errorf("watch config %s: %w", abs, err)
	}

	w := &Watcher{
		path:    abs,
		fs:      fsWatch,
		updates: make(chan Config, 1),
		done:    make(chan struct{}),
	}
	w.wg.Add(1)
	go w.start()
	return w, nil
}

// Updates delivers successfully parsed configs
func (w *Watcher) Updates() <-chan Config {
	return w.updates
}

// Poll returns a pending config without blocking
func (w *Watcher) Poll() (Config, bool) {
	select {
	case cfg := <-w.updates:
		return cfg, true
	default:
		return Config{}, false
	}
}

// Close stops the watcher and waits for its goroutine to exit
func (w *Watcher) Close() error {
	if w.isClosed {
		return errors.New("config watcher already closed")
	}
	w.isClosed = true
	close(w.done)
	w.wg.Wait()
	return w.fs.Close()
}

func (w *Watcher) start() {
	defer w.wg.Done()
	for {
		select {
		case e, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if filepath.Clean(e.Name) != w.path {
				continue
			}
			if e.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			cfg, err := Load(w.path)
			if err != nil {
				// Keep the previous config
				logging.Warn("config reload failed", "path", w.path, "err", err)
				continue
			}
			w.publish(cfg)

		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			logging.Error("config watcher", "err", err)

		case <-w.done:
			return
		}
	}
}

func (w *Watcher) publish(cfg Config) {
	for {
		select {
		case w.updates <- cfg:
			return
		default:
		}
		// Drop the stale pending config
		select {
		case <-w.updates:
		default:
		}
	}
}
