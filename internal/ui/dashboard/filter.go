// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package dashboard implements the main TUI: sidebar, transcript, step
// panel, dossier, and the input line.
//
// This file implements the sidebar chat filter.
package dashboard

import (
	"strings"

	"golang.org/x/text/cases"

	"github.com/morganforge/consigliere-tui/internal/model"
)

// folder performs Unicode case folding so the filter matches regardless of
// case, beyond ASCII.
var folder = cases.Fold()

// matchChat reports whether a chat matches the filter query.
func matchChat(c model.ChatSummary, query string) bool {
	if query == "" {
		return true
	}
	q := folder.String(query)
	return strings.Contains(folder.String(c.DisplayTitle()), q) ||
		strings.Contains(folder.String(c.Type), q)
}

// visibleChats applies the sidebar filter.
func (m *Model) visibleChats() []model.ChatSummary {
	if m.chatFilter == "" {
		return m.chats
	}
	out := make([]model.ChatSummary, 0, len(m.chats))
	for _, c := range m.chats {
		if matchChat(c, m.chatFilter) {
			out = append(out, c)
		}
	}
	return out
}

// clampChatCursor keeps the cursor inside the visible list after filter or
// list changes.
func (m *Model) clampChatCursor() {
	n := len(m.visibleChats())
	if m.chatCursor >= n {
		m.chatCursor = n - 1
	}
	if m.chatCursor < 0 {
		m.chatCursor = 0
	}
}
