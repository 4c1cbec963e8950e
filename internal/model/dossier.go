// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for transcripts, messages,
// analysis steps, and dossiers.
package model

import "time"

// =============================================================================
// DOSSIER
// =============================================================================

// Dossier is the one-time briefing produced when a data source is analyzed.
// It is immutable; acting on a recommended action submits the action text
// as if the user typed it, without altering the dossier.
type Dossier struct {
	FileType           string    `json:"file_type"`
	Briefing           string    `json:"briefing"`
	KeyEntities        []string  `json:"key_entities"`
	RecommendedActions []string  `json:"recommended_actions"`
	CreatedAt          time.Time `json:"created_at"`
}

// HasActions reports whether any recommended actions remain to show.
func (d *Dossier) HasActions() bool {
	return d != nil && len(d.RecommendedActions) > 0
}

// =============================================================================
// CHAT SUMMARY
// =============================================================================

// ChatSummary is a sidebar entry for one conversation. Summaries are created
// on upload or database-connect completion, removed on explicit delete, and
// never mutated otherwise.
type ChatSummary struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	FileID    string    `json:"file_id,omitempty"`
	Type      string    `json:"type"` // "excel", "db"
	CreatedAt time.Time `json:"created_at"`
}

// DisplayTitle returns the title or a placeholder for untitled chats.
func (c ChatSummary) DisplayTitle() string {
	if c.Title != "" {
		return c.Title
	}
	return "Untitled analysis"
}
