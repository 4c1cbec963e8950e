// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the visual styling system for the Consigliere TUI.
package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme holds all styled components for the application. It detects the
// terminal's color capability once at construction.
type Theme struct {
	IsDark       bool
	HasTrueColor bool
	ColorProfile termenv.Profile

	// ==========================================================================
	// LAYOUT
	// ==========================================================================

	App    lipgloss.Style
	Header lipgloss.Style

	// ==========================================================================
	// SIDEBAR
	// ==========================================================================

	Sidebar          lipgloss.Style
	SidebarTitle     lipgloss.Style
	ChatItem         lipgloss.Style
	ChatItemSelected lipgloss.Style
	ChatMeta         lipgloss.Style

	// ==========================================================================
	// TRANSCRIPT
	// ==========================================================================

	UserBubble      lipgloss.Style
	AssistantLabel  lipgloss.Style
	StreamingLabel  lipgloss.Style
	ErrorText       lipgloss.Style
	MessageSelected lipgloss.Style

	// ==========================================================================
	// STEP PANEL
	// ==========================================================================

	Panel        lipgloss.Style
	PanelTitle   lipgloss.Style
	StepMarker   lipgloss.Style
	StepDone     lipgloss.Style
	StepError    lipgloss.Style
	GalleryFrame lipgloss.Style

	// ==========================================================================
	// DOSSIER
	// ==========================================================================

	DossierBox    lipgloss.Style
	DossierTitle  lipgloss.Style
	ActionItem    lipgloss.Style
	ActionFocused lipgloss.Style

	// ==========================================================================
	// INPUT / STATUS
	// ==========================================================================

	InputContainer   lipgloss.Style
	InputPrompt      lipgloss.Style
	InputPlaceholder lipgloss.Style
	StatusBar        lipgloss.Style
	ShortcutKey      lipgloss.Style
	ShortcutDesc     lipgloss.Style
	Spinner          lipgloss.Style
}

// NewTheme creates a theme with all styles configured.
func NewTheme() *Theme {
	profile := termenv.ColorProfile()
	t := &Theme{
		IsDark:       termenv.HasDarkBackground(),
		HasTrueColor: profile == termenv.TrueColor,
		ColorProfile: profile,
	}
	t.initStyles()
	return t
}

func (t *Theme) initStyles() {
	t.App = lipgloss.NewStyle()

	t.Header = lipgloss.NewStyle().
		Bold(true).
		Foreground(Gold).
		Background(SurfaceDim).
		Padding(0, 2)

	// Sidebar
	t.Sidebar = lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderRight(true).
		BorderForeground(Border).
		PaddingRight(1)

	t.SidebarTitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(Gold).
		PaddingBottom(1)

	t.ChatItem = lipgloss.NewStyle().
		Foreground(TextPrimary).
		PaddingLeft(1)

	t.ChatItemSelected = lipgloss.NewStyle().
		Bold(true).
		Foreground(Gold).
		Background(SurfaceBright).
		PaddingLeft(1)

	t.ChatMeta = lipgloss.NewStyle().
		Foreground(TextMuted).
		PaddingLeft(1)

	// Transcript
	t.UserBubble = lipgloss.NewStyle().
		Foreground(TextPrimary).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Cyan).
		Padding(0, 1).
		MarginLeft(4)

	t.AssistantLabel = lipgloss.NewStyle().
		Bold(true).
		Foreground(Gold)

	t.StreamingLabel = lipgloss.NewStyle().
		Foreground(Amber).
		Italic(true)

	t.ErrorText = lipgloss.NewStyle().
		Foreground(Rose)

	t.MessageSelected = lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderLeft(true).
		BorderForeground(Gold).
		PaddingLeft(1)

	// Step panel
	t.Panel = lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderLeft(true).
		BorderForeground(Border).
		PaddingLeft(1)

	t.PanelTitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(Cyan)

	t.StepMarker = lipgloss.NewStyle().
		Foreground(Cyan)

	t.StepDone = lipgloss.NewStyle().
		Foreground(Emerald)

	t.StepError = lipgloss.NewStyle().
		Foreground(Rose)

	t.GalleryFrame = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Border).
		Padding(0, 1)

	// Dossier
	t.DossierBox = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Gold).
		Padding(1, 2)

	t.DossierTitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(Gold)

	t.ActionItem = lipgloss.NewStyle().
		Foreground(TextPrimary).
		PaddingLeft(2)

	t.ActionFocused = lipgloss.NewStyle().
		Bold(true).
		Foreground(Gold).
		Background(SurfaceBright).
		PaddingLeft(2)

	// Input / status
	t.InputContainer = lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderTop(true).
		BorderForeground(Border).
		Padding(0, 1)

	t.InputPrompt = lipgloss.NewStyle().
		Bold(true).
		Foreground(Cyan)

	t.InputPlaceholder = lipgloss.NewStyle().
		Foreground(TextMuted).
		Italic(true)

	t.StatusBar = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Background(SurfaceDim).
		Padding(0, 1)

	t.ShortcutKey = lipgloss.NewStyle().
		Bold(true).
		Foreground(Cyan)

	t.ShortcutDesc = lipgloss.NewStyle().
		Foreground(TextSecondary)

	t.Spinner = lipgloss.NewStyle().
		Foreground(Amber)
}

// GlamourStyle returns the markdown style name matching the background.
func (t *Theme) GlamourStyle() string {
	if t.IsDark {
		return "dark"
	}
	return "light"
}
