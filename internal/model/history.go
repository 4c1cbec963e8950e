// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for transcripts, messages,
// analysis steps, and dossiers.
package model

import (
	"encoding/json"
	"time"
)

// =============================================================================
// HISTORY RECORDS
// =============================================================================

// HistoryRecord is one persisted message as returned by the backend. The
// content of assistant records is a JSON-encoded envelope produced at
// answer time; user records and legacy system notices are plain text.
type HistoryRecord struct {
	ID        string       `json:"id"`
	Role      string       `json:"role"`
	Content   string       `json:"content"`
	CreatedAt time.Time    `json:"created_at"`
	Related   *RelatedCode `json:"related_code,omitempty"`
}

// envelope is the tagged union stored inside assistant record content.
// Multi-step answers carry steps/plan/code; single-result answers carry a
// result object; either way the display text lives in text.
type envelope struct {
	Text   string          `json:"text"`
	Steps  []StepResult    `json:"steps"`
	Plan   *Plan           `json:"plan"`
	Code   string          `json:"code"`
	Result *envelopeResult `json:"result"`
}

type envelopeResult struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// ToMessage decodes the record into a display message. The envelope is
// decoded exactly once here, at the transport boundary. A content string
// that does not parse as an envelope is the expected path for plain-text
// records and passes through unchanged.
func (r HistoryRecord) ToMessage() *Message {
	msg := &Message{
		ID:          r.ID,
		Role:        Role(r.Role),
		Content:     r.Content,
		CreatedAt:   r.CreatedAt,
		RelatedCode: r.Related,
		State:       StateFinalized,
	}

	if msg.Role != RoleAssistant {
		return msg
	}

	var env envelope
	if err := json.Unmarshal([]byte(r.Content), &env); err != nil {
		return msg
	}

	switch {
	case env.Steps != nil:
		msg.Content = env.Text
		msg.Steps = env.Steps
		msg.Plan = env.Plan
		if env.Code != "" && msg.RelatedCode == nil {
			msg.RelatedCode = &RelatedCode{Type: "python", Code: env.Code}
		}
	case env.Result != nil:
		msg.Content = env.Text
		switch env.Result.Type {
		case "table":
			var rows []map[string]any
			if err := json.Unmarshal(env.Result.Data, &rows); err == nil {
				msg.TableData = rows
			}
		case "image":
			var path string
			if err := json.Unmarshal(env.Result.Data, &path); err == nil {
				msg.ImageData = path
			}
		}
	default:
		// Parsed but neither shape: keep the raw stored string.
	}

	return msg
}
