// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for the
// Consigliere terminal client.
package config

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/morganforge/consigliere-tui/internal/logging"
)

// debounceWindow absorbs the editor write-then-rename burst into one reload.
const debounceWindow = 250 * time.Millisecond

// Watch reloads the global configuration whenever the config file changes on
// disk. onReload, if non-nil, is invoked with the fresh configuration after
// each successful reload. Watch blocks until ctx is cancelled.
func Watch(ctx context.Context, onReload func(*Config)) error {
	path, err := Path()
	if err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	// Watch the directory: atomic saves replace the file, which would
	// invalidate a watch on the file itself.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return err
	}

	var timer *time.Timer
	reloads := make(chan struct{}, 1)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != filepath.Clean(path) {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(debounceWindow, func() {
				select {
				case reloads <- struct{}{}:
				default:
				}
			})

		case <-reloads:
			cfg, err := Load()
			if err != nil {
				logging.L().Warnw("config reload failed", "error", err)
				continue
			}
			SetGlobal(cfg)
			logging.L().Infow("config reloaded", "path", path)
			if onReload != nil {
				onReload(cfg)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logging.L().Warnw("config watcher error", "error", err)
		}
	}
}
