// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package dashboard implements the main TUI: sidebar, transcript, step
// panel, dossier, and the input line.
//
// This file implements the side panel's message selection rules.
package dashboard

import "github.com/morganforge/consigliere-tui/internal/model"

// EffectiveSelection resolves which assistant message drives the step
// panel:
//
//  1. While a message is streaming, selection follows it.
//  2. An explicit user selection wins otherwise, and persists until the
//     next stream begins.
//  3. With neither, selection falls back to the most recent assistant
//     message that has at least one step.
func EffectiveSelection(t *model.Transcript, explicitID, streamingID string) *model.Message {
	if streamingID != "" {
		if msg := t.Get(streamingID); msg != nil && msg.Pending() {
			return msg
		}
	}
	if explicitID != "" {
		if msg := t.Get(explicitID); msg != nil {
			return msg
		}
	}
	return t.Get(t.LastAssistantWithSteps())
}

// selectedMessage applies the selection rules to the dashboard state.
func (m *Model) selectedMessage() *model.Message {
	return EffectiveSelection(m.transcript, m.selectedID, m.streamingID)
}

// selectableIDs lists assistant message ids in transcript order, for
// cycling with the select keys.
func (m *Model) selectableIDs() []string {
	var ids []string
	for _, msg := range m.transcript.Messages() {
		if msg.Role == model.RoleAssistant {
			ids = append(ids, msg.ID)
		}
	}
	return ids
}

// moveSelection steps the explicit selection forward or backward through
// the assistant messages. Starting point is the current effective
// selection.
func (m *Model) moveSelection(delta int) {
	ids := m.selectableIDs()
	if len(ids) == 0 {
		return
	}

	current := ""
	if msg := m.selectedMessage(); msg != nil {
		current = msg.ID
	}

	idx := -1
	for i, id := range ids {
		if id == current {
			idx = i
			break
		}
	}

	switch {
	case idx < 0:
		idx = len(ids) - 1
	default:
		idx += delta
		if idx < 0 {
			idx = 0
		}
		if idx >= len(ids) {
			idx = len(ids) - 1
		}
	}
	m.selectedID = ids[idx]
}
