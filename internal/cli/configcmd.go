// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// configcmd.go - Configuration command handler.
//
// Command: config [show|set|path]
//
// Examples:
//   consigliere config show
//   consigliere config set server.url https://analyst.example.com
//   consigliere config set ui.theme light
package cli

import (
	"fmt"
	"strconv"

	"github.com/morganforge/consigliere-tui/internal/config"
)

// RunConfig handles the config subcommands.
func RunConfig(args Args) {
	switch args.Subcommand {
	case "", "show":
		showConfig()
	case "path":
		path, err := config.Path()
		if err != nil {
			fatalf("%v", err)
		}
		fmt.Println(path)
	case "set":
		if args.ConfigKey == "" {
			fatalf("usage: consigliere config set KEY VALUE")
		}
		setConfig(args.ConfigKey, args.ConfigVal)
	default:
		fatalf("unknown config subcommand: %s", args.Subcommand)
	}
}

func showConfig() {
	cfg := config.Global()
	fmt.Println(headerStyle.Render("consigliere configuration"))
	fmt.Printf("  server.url        %s\n", cfg.Server.BaseURL)
	fmt.Printf("  server.timeout    %ds\n", cfg.Server.TimeoutSecs)
	fmt.Printf("  server.retries    %d\n", cfg.Server.MaxRetries)
	fmt.Printf("  server.rps        %g\n", cfg.Server.RequestsPerSec)
	fmt.Printf("  ui.theme          %s\n", cfg.UI.Theme)
	fmt.Printf("  ui.sidebar_width  %d\n", cfg.UI.SidebarWidth)
	fmt.Printf("  ui.panel_width    %d\n", cfg.UI.PanelWidth)
	fmt.Printf("  cache.enabled     %t\n", cfg.Cache.Enabled)
	fmt.Printf("  logging.verbose   %t\n", cfg.Logging.Verbose)
	if cfg.LoggedIn() {
		fmt.Printf("  session           %s\n", cfg.Session.Email)
	} else {
		fmt.Println("  session           (not logged in)")
	}
}

func setConfig(key, value string) {
	cfg := config.Global()

	var err error
	switch key {
	case "server.url":
		cfg.Server.BaseURL = value
	case "server.timeout":
		cfg.Server.TimeoutSecs, err = strconv.Atoi(value)
	case "server.retries":
		cfg.Server.MaxRetries, err = strconv.Atoi(value)
	case "server.rps":
		cfg.Server.RequestsPerSec, err = strconv.ParseFloat(value, 64)
	case "ui.theme":
		cfg.UI.Theme = value
	case "ui.sidebar_width":
		cfg.UI.SidebarWidth, err = strconv.Atoi(value)
	case "ui.panel_width":
		cfg.UI.PanelWidth, err = strconv.Atoi(value)
	case "cache.enabled":
		cfg.Cache.Enabled, err = strconv.ParseBool(value)
	case "logging.verbose":
		cfg.Logging.Verbose, err = strconv.ParseBool(value)
	default:
		fatalf("unknown config key: %s", key)
	}
	if err != nil {
		fatalf("invalid value for %s: %v", key, err)
	}

	if err := cfg.Validate(); err != nil {
		fatalf("%v", err)
	}
	if err := config.Save(cfg); err != nil {
		fatalf("could not save config: %v", err)
	}
	fmt.Println(infoStyle.Render("saved " + key))
}
