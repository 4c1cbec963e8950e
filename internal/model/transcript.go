// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for transcripts, messages,
// analysis steps, and dossiers.
package model

import (
	"time"
)

// =============================================================================
// TRANSCRIPT
// =============================================================================

// Transcript is the ordered list of messages composing one conversation.
// It exclusively owns the live message slice for the active conversation:
// every mutation goes through its API and produces a fresh slice so that a
// rendering layer can detect changes by comparing slice identity or the
// version counter.
//
// All mutation happens on the Bubble Tea update loop, so no locking is
// needed.
type Transcript struct {
	// ChatID is the server-side conversation this transcript mirrors.
	ChatID string

	messages []*Message
	version  uint64
}

// NewTranscript creates an empty transcript for a conversation.
func NewTranscript(chatID string) *Transcript {
	return &Transcript{
		ChatID:   chatID,
		messages: make([]*Message, 0),
	}
}

// Messages returns the current ordered message sequence. The returned slice
// is the store's current snapshot; callers must not mutate it.
func (t *Transcript) Messages() []*Message {
	return t.messages
}

// Version increments on every mutation.
func (t *Transcript) Version() uint64 {
	return t.version
}

// Len returns the number of messages.
func (t *Transcript) Len() int {
	return len(t.messages)
}

// IsEmpty reports whether the transcript has no messages.
func (t *Transcript) IsEmpty() bool {
	return len(t.messages) == 0
}

// =============================================================================
// APPEND OPERATIONS
// =============================================================================

// AppendUser appends a user message and returns it.
func (t *Transcript) AppendUser(content string) *Message {
	msg := NewUserMessage(content)
	t.append(msg)
	return msg
}

// AppendPending appends the placeholder assistant message for an in-flight
// send and returns it. At most one pending message may exist; if another is
// still pending, AppendPending returns nil and appends nothing.
func (t *Transcript) AppendPending() *Message {
	if t.PendingID() != "" {
		return nil
	}
	msg := NewPendingMessage()
	t.append(msg)
	return msg
}

// Append appends an already-built message (history load, CLI fallback).
func (t *Transcript) Append(msg *Message) {
	t.append(msg)
}

func (t *Transcript) append(msg *Message) {
	next := make([]*Message, len(t.messages), len(t.messages)+1)
	copy(next, t.messages)
	t.messages = append(next, msg)
	t.version++
}

// =============================================================================
// PATCH OPERATIONS
// =============================================================================

// Patch applies fn to a copy of the message matching id and swaps the copy
// in, leaving unspecified fields identical. Returns false when no message
// matches.
func (t *Transcript) Patch(id string, fn func(*Message)) bool {
	for i, msg := range t.messages {
		if msg.ID != id {
			continue
		}
		cp := msg.Clone()
		fn(cp)
		next := make([]*Message, len(t.messages))
		copy(next, t.messages)
		next[i] = cp
		t.messages = next
		t.version++
		return true
	}
	return false
}

// ReplaceID swaps a provisional message id for the server-assigned value,
// preserving all other fields. Used for the final {message_id} handshake.
func (t *Transcript) ReplaceID(oldID, newID string) bool {
	if newID == "" || oldID == newID {
		return false
	}
	return t.Patch(oldID, func(m *Message) {
		m.ID = newID
	})
}

// Reset discards all messages, for conversation switches.
func (t *Transcript) Reset(chatID string) {
	t.ChatID = chatID
	t.messages = make([]*Message, 0)
	t.version++
}

// =============================================================================
// LOOKUP
// =============================================================================

// Get returns the message with the given id, or nil.
func (t *Transcript) Get(id string) *Message {
	for _, msg := range t.messages {
		if msg.ID == id {
			return msg
		}
	}
	return nil
}

// Last returns the most recent message, or nil.
func (t *Transcript) Last() *Message {
	if len(t.messages) == 0 {
		return nil
	}
	return t.messages[len(t.messages)-1]
}

// PendingID returns the id of the single in-flight assistant message, or ""
// when nothing is pending.
func (t *Transcript) PendingID() string {
	for i := len(t.messages) - 1; i >= 0; i-- {
		if t.messages[i].Pending() {
			return t.messages[i].ID
		}
	}
	return ""
}

// LastAssistantWithSteps returns the id of the most recent assistant message
// carrying at least one step, or "". Used as the side panel selection
// fallback once streaming ends.
func (t *Transcript) LastAssistantWithSteps() string {
	for i := len(t.messages) - 1; i >= 0; i-- {
		msg := t.messages[i]
		if msg.Role == RoleAssistant && msg.HasSteps() {
			return msg.ID
		}
	}
	return ""
}

// =============================================================================
// HISTORY LOAD
// =============================================================================

// LoadHistory replaces the transcript contents with decoded historical
// records. Records arrive oldest first.
func (t *Transcript) LoadHistory(records []HistoryRecord) {
	next := make([]*Message, 0, len(records))
	for _, rec := range records {
		next = append(next, rec.ToMessage())
	}
	t.messages = next
	t.version++
}

// AppendSystemNote appends an assistant-authored markdown message. Errors
// are always surfaced through this single channel, never a modal.
func (t *Transcript) AppendSystemNote(content string) *Message {
	msg := &Message{
		ID:        "note-" + time.Now().Format("150405.000"),
		Role:      RoleAssistant,
		Content:   content,
		CreatedAt: time.Now(),
		State:     StateFinalized,
	}
	t.append(msg)
	return msg
}
