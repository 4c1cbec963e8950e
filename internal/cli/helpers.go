// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// helpers.go - Shared helpers for consigliere CLI commands.
//
// USABILITY: Markdown rendering and history for better CLI experience
package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/morganforge/consigliere-tui/internal/api"
	"github.com/morganforge/consigliere-tui/internal/config"
	"github.com/morganforge/consigliere-tui/internal/ui/styles"
)

// =============================================================================
// STYLES
// =============================================================================

var (
	promptStyle = lipgloss.NewStyle().
			Foreground(styles.Cyan).
			Bold(true)

	infoStyle = lipgloss.NewStyle().
			Foreground(styles.TextSecondary)

	errorStyle = lipgloss.NewStyle().
			Foreground(styles.Rose).
			Bold(true)

	stepStyle = lipgloss.NewStyle().
			Foreground(styles.Amber)

	headerStyle = lipgloss.NewStyle().
			Foreground(styles.Gold).
			Bold(true)
)

// =============================================================================
// MARKDOWN RENDERING
// =============================================================================

// markdownRenderer is the glamour renderer for markdown output.
var markdownRenderer *glamour.TermRenderer

func init() {
	wrap := 100
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 20 && w < wrap {
		wrap = w - 2
	}
	var err error
	markdownRenderer, err = glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(wrap),
	)
	if err != nil {
		// Fall back to plain text if renderer initialization fails.
		markdownRenderer = nil
	}
}

// renderMarkdown renders markdown content for terminal display.
// Returns the original content if rendering fails.
func renderMarkdown(content string) string {
	if markdownRenderer == nil {
		return content
	}
	rendered, err := markdownRenderer.Render(content)
	if err != nil {
		return content
	}
	return rendered
}

// displayResponse prints a response, rendering markdown only when stdout is
// a TTY so piped output stays clean.
func displayResponse(response string) {
	if term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Print(renderMarkdown(response))
		return
	}
	fmt.Println(response)
}

// =============================================================================
// CLIENT SETUP
// =============================================================================

// newClient builds an API client from config plus CLI overrides.
func newClient(args Args) *api.Client {
	cfg := config.Global()
	baseURL := cfg.Server.BaseURL
	if args.Server != "" {
		baseURL = args.Server
	}
	return api.New(baseURL, cfg.Session.Token).
		WithTimeout(time.Duration(cfg.Server.TimeoutSecs) * time.Second).
		WithRetries(cfg.Server.MaxRetries).
		WithRequestsPerSec(cfg.Server.RequestsPerSec)
}

// requireLogin builds a client and fails fast when no session token is
// stored.
func requireLogin(args Args) (*api.Client, error) {
	cfg := config.Global()
	if !cfg.LoggedIn() {
		return nil, fmt.Errorf("not logged in; run: consigliere login")
	}
	return newClient(args), nil
}

// fatalf prints a styled error and exits nonzero.
func fatalf(format string, a ...any) {
	fmt.Fprintln(os.Stderr, errorStyle.Render("error: ")+fmt.Sprintf(format, a...))
	os.Exit(1)
}
