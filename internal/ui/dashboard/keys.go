// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package dashboard implements the main TUI: sidebar, transcript, step
// panel, dossier, and the input line.
//
// This file defines keyboard bindings for the dashboard.
package dashboard

import (
	"github.com/charmbracelet/bubbles/key"
)

// KeyMap defines all keyboard bindings for the dashboard.
type KeyMap struct {
	Up         key.Binding
	Down       key.Binding
	PageUp     key.Binding
	PageDown   key.Binding
	End        key.Binding
	Submit     key.Binding
	Cancel     key.Binding
	Quit       key.Binding
	FocusNext  key.Binding
	Sidebar    key.Binding
	Upload     key.Binding
	Connect    key.Binding
	Delete     key.Binding
	Actions    key.Binding
	SelectMsg  key.Binding
	ClearSel   key.Binding
}

// DefaultKeyMap returns the default bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup", "ctrl+u"),
			key.WithHelp("PgUp", "page up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown", "ctrl+d"),
			key.WithHelp("PgDn", "page down"),
		),
		End: key.NewBinding(
			key.WithKeys("end", "G"),
			key.WithHelp("End/G", "jump to latest"),
		),
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "send"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("C-c", "quit"),
		),
		FocusNext: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "cycle focus"),
		),
		Sidebar: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("C-s", "chats"),
		),
		Upload: key.NewBinding(
			key.WithKeys("ctrl+o"),
			key.WithHelp("C-o", "upload file"),
		),
		Connect: key.NewBinding(
			key.WithKeys("ctrl+b"),
			key.WithHelp("C-b", "connect db"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete chat"),
		),
		Actions: key.NewBinding(
			key.WithKeys("ctrl+a"),
			key.WithHelp("C-a", "dossier actions"),
		),
		SelectMsg: key.NewBinding(
			key.WithKeys("[", "]"),
			key.WithHelp("[/]", "select message"),
		),
		ClearSel: key.NewBinding(
			key.WithKeys("\\"),
			key.WithHelp("\\", "auto select"),
		),
	}
}
