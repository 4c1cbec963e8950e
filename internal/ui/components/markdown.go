// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides UI components for the Consigliere TUI.
package components

import (
	"sync"

	"github.com/charmbracelet/glamour"
)

var (
	mdMu       sync.Mutex
	mdRenderer *glamour.TermRenderer
	mdWidth    int
)

// RenderMarkdown renders markdown for terminal display at the given wrap
// width. Returns the original content if rendering fails.
func RenderMarkdown(content string, width int) string {
	if width < 20 {
		width = 20
	}

	mdMu.Lock()
	defer mdMu.Unlock()

	if mdRenderer == nil || mdWidth != width {
		r, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			return content
		}
		mdRenderer = r
		mdWidth = width
	}

	rendered, err := mdRenderer.Render(content)
	if err != nil {
		return content
	}
	return rendered
}
