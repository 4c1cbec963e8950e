// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package logging provides the shared debug logger.
//
// The TUI owns stdout/stderr, so all diagnostics go to a log file under the
// config directory (~/.consigliere/debug.log). Packages obtain the logger
// through L(); before Init runs, L() returns a no-op logger so library code
// never needs a nil check.
package logging

import (
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	mu     sync.RWMutex
	global = zap.NewNop().Sugar()
)

// Init opens (or creates) the log file and installs the global logger.
// Verbose lowers the level to debug.
func Init(dir string, verbose bool) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{filepath.Join(dir, "debug.log")}
	cfg.ErrorOutputPaths = cfg.OutputPaths
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}

	logger, err := cfg.Build()
	if err != nil {
		return err
	}

	mu.Lock()
	global = logger.Sugar()
	mu.Unlock()
	return nil
}

// L returns the process-wide logger.
func L() *zap.SugaredLogger {
	mu.RLock()
	defer mu.RUnlock()
	return global
}

// Sync flushes buffered log entries. Called on shutdown.
func Sync() {
	mu.RLock()
	defer mu.RUnlock()
	_ = global.Sync()
}
