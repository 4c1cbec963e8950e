// consigliere - terminal client for conversational data analysis.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/morganforge/consigliere-tui/internal/api"
	"github.com/morganforge/consigliere-tui/internal/cli"
	"github.com/morganforge/consigliere-tui/internal/config"
	"github.com/morganforge/consigliere-tui/internal/logging"
	"github.com/morganforge/consigliere-tui/internal/store"
	"github.com/morganforge/consigliere-tui/internal/ui/dashboard"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func init() {
	// Sync version info with cli package
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
}

func main() {
	cmd, args := cli.Parse(os.Args[1:])

	// Config loads before any handler; env overrides apply inside Load.
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}
	if args.Verbose {
		cfg.Logging.Verbose = true
	}
	if args.Server != "" {
		cfg.Server.BaseURL = args.Server
	}
	config.SetGlobal(cfg)

	if dir, err := config.Dir(); err == nil {
		logging.Init(dir, cfg.Logging.Verbose)
		defer logging.Sync()
	}

	switch cmd {
	case cli.CmdTUI:
		runTUI(args)
	case cli.CmdLogin:
		cli.RunLogin(args)
	case cli.CmdRegister:
		cli.RunRegister(args)
	case cli.CmdLogout:
		cli.RunLogout(args)
	case cli.CmdChats:
		cli.RunChats(args)
	case cli.CmdAsk:
		cli.RunAsk(args)
	case cli.CmdChat:
		cli.RunChat(args)
	case cli.CmdUpload:
		cli.RunUpload(args)
	case cli.CmdConnect:
		cli.RunConnect(args)
	case cli.CmdConfig:
		cli.RunConfig(args)
	case cli.CmdVersion:
		cli.PrintVersion()
	case cli.CmdHelp:
		cli.PrintUsage()
	}
}

// runTUI starts the dashboard.
func runTUI(args cli.Args) {
	cfg := config.Global()
	if !cfg.LoggedIn() {
		fmt.Fprintln(os.Stderr, "not logged in; run: consigliere login")
		os.Exit(1)
	}

	client := api.New(cfg.Server.BaseURL, cfg.Session.Token).
		WithTimeout(time.Duration(cfg.Server.TimeoutSecs) * time.Second).
		WithRetries(cfg.Server.MaxRetries).
		WithRequestsPerSec(cfg.Server.RequestsPerSec)

	// Local chat mirror keeps the sidebar usable when the backend is down.
	var cache *store.Cache
	if cfg.Cache.Enabled {
		if path, err := cfg.CachePath(); err == nil {
			if cache, err = store.Open(path); err != nil {
				logging.L().Warnw("cache disabled", "error", err)
				cache = nil
			}
		}
	}
	if cache != nil {
		defer cache.Close()
	}

	m := dashboard.New(cfg, client, cache)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	dashboard.SetProgram(p)

	// Live-reload config edits made while the TUI runs.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go config.Watch(ctx, func(updated *config.Config) {
		logging.L().Infow("config reloaded")
	})

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
