// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides UI components for the Consigliere TUI.
package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/morganforge/consigliere-tui/internal/ui/styles"
	"github.com/morganforge/consigliere-tui/internal/util"
)

// Shortcut is one key hint in the status bar.
type Shortcut struct {
	Key  string
	Desc string
}

// StatusBar renders the bottom hint line.
type StatusBar struct {
	theme *styles.Theme
	width int
}

// NewStatusBar creates a status bar.
func NewStatusBar(theme *styles.Theme) *StatusBar {
	return &StatusBar{theme: theme, width: 80}
}

// SetWidth sets the bar width.
func (s *StatusBar) SetWidth(width int) {
	s.width = width
}

// Render renders the shortcuts left-aligned with a note on the right.
func (s *StatusBar) Render(shortcuts []Shortcut, note string) string {
	var parts []string
	for _, sc := range shortcuts {
		parts = append(parts,
			s.theme.ShortcutKey.Render(sc.Key)+" "+s.theme.ShortcutDesc.Render(sc.Desc))
	}
	left := strings.Join(parts, "  ")

	right := ""
	if note != "" {
		right = s.theme.ShortcutDesc.Render(util.TruncateWidth(note, s.width/3))
	}

	gap := s.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}
	return s.theme.StatusBar.Width(s.width).Render(
		left + strings.Repeat(" ", gap) + right)
}
