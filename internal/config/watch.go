// Copyright (c) 2025 HustleSynth
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// =============================================================================
// CONFIG HOT RELOAD
// =============================================================================

// watchDebounce coalesces the burst of events editors emit on save.
const watchDebounce = 250 * time.Millisecond

// Watcher reloads the application config when its file changes on disk
// and hands the fresh Config to a callback. Editors that write via
// rename (vim, atomic writers) are handled by watching the parent
// directory rather than the file itself.
type Watcher struct {
	path     string
	onReload func(*Config)

	fsw  *fsnotify.Watcher
	done chan struct{}

	mu      sync.Mutex
	started bool
}

// NewWatcher creates a watcher for the config file at path. onReload is
// invoked from the watcher goroutine with each successfully reloaded
// config; load failures are reported to stderr and skipped.
func NewWatcher(path string, onReload func(*Config)) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	return &Watcher{
		path:     path,
		onReload: onReload,
		fsw:      fsw,
		done:     make(chan struct{}),
	}, nil
}

// Start begins watching. Returns an error if the config directory does
// not exist or watching was already started.
func (w *Watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.started {
		return fmt.Errorf("watcher already started")
	}

	dir := filepath.Dir(w.path)
	if err := w.fsw.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	w.started = true
	go w.loop()
	return nil
}

// Stop shuts the watcher down. Safe to call once.
func (w *Watcher) Stop() error {
	close(w.done)
	return w.fsw.Close()
}

func (w *Watcher) loop() {
	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case <-w.done:
			if timer != nil {
				timer.Stop()
			}
			return

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != filepath.Clean(w.path) {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			// Restart the debounce window on each event.
			if timer == nil {
				timer = time.NewTimer(watchDebounce)
				timerC = timer.C
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(watchDebounce)
			}

		case <-timerC:
			timer = nil
			timerC = nil
			cfg, err := LoadFromPath(w.path)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Warning: config reload failed: %v\n", err)
				continue
			}
			w.onReload(cfg)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			fmt.Fprintf(os.Stderr, "Warning: config watcher error: %v\n", err)
		}
	}
}
