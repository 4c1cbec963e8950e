// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for transcripts, messages,
// analysis steps, and dossiers.
package model

import (
	"strings"
	"testing"
)

// =============================================================================
// APPEND TESTS
// =============================================================================

func TestTranscriptAppendUser(t *testing.T) {
	tr := NewTranscript("chat-1")

	msg := tr.AppendUser("show revenue by region")
	if msg == nil {
		t.Fatal("AppendUser returned nil")
	}
	if tr.Len() != 1 {
		t.Fatalf("expected 1 message, got %d", tr.Len())
	}
	if msg.Role != RoleUser {
		t.Errorf("expected role user, got %s", msg.Role)
	}
	if !strings.HasPrefix(msg.ID, "local-") {
		t.Errorf("expected provisional id, got %q", msg.ID)
	}
}

func TestTranscriptSinglePendingInvariant(t *testing.T) {
	tr := NewTranscript("chat-1")

	first := tr.AppendPending()
	if first == nil {
		t.Fatal("first AppendPending returned nil")
	}
	if tr.PendingID() != first.ID {
		t.Errorf("PendingID = %q, want %q", tr.PendingID(), first.ID)
	}

	// A second pending message must be refused while the first is in flight.
	if second := tr.AppendPending(); second != nil {
		t.Error("second AppendPending should return nil while one is pending")
	}
	if tr.Len() != 1 {
		t.Errorf("expected 1 message, got %d", tr.Len())
	}

	// Once the first finalizes, a new pending message is allowed again.
	tr.Patch(first.ID, func(m *Message) { m.State = StateFinalized })
	if tr.AppendPending() == nil {
		t.Error("AppendPending should succeed after previous finalized")
	}
}

func TestTranscriptAppendProducesNewSlice(t *testing.T) {
	tr := NewTranscript("chat-1")
	tr.AppendUser("a")

	before := tr.Messages()
	beforeVersion := tr.Version()
	tr.AppendUser("b")

	if len(before) != 1 {
		t.Fatalf("snapshot mutated: len = %d", len(before))
	}
	if tr.Version() == beforeVersion {
		t.Error("version did not advance on append")
	}
}

// =============================================================================
// PATCH TESTS
// =============================================================================

func TestTranscriptPatchPreservesOtherFields(t *testing.T) {
	tr := NewTranscript("chat-1")
	pending := tr.AppendPending()

	tr.Patch(pending.ID, func(m *Message) {
		m.Content = "Loading data..."
	})

	got := tr.Get(pending.ID)
	if got.Content != "Loading data..." {
		t.Errorf("Content = %q", got.Content)
	}
	if got.Role != RoleAssistant || got.State != StateAwaitingPlan {
		t.Error("patch altered fields the callback did not touch")
	}

	// The original snapshot pointer must still show the old value.
	if pending.Content != "" {
		t.Error("patch mutated the previous message value in place")
	}
}

func TestTranscriptPatchUnknownID(t *testing.T) {
	tr := NewTranscript("chat-1")
	tr.AppendUser("hello")

	if tr.Patch("missing", func(m *Message) { m.Content = "x" }) {
		t.Error("Patch should return false for unknown id")
	}
}

func TestTranscriptReplaceID(t *testing.T) {
	tr := NewTranscript("chat-1")
	pending := tr.AppendPending()
	tr.Patch(pending.ID, func(m *Message) { m.Content = "done" })

	if !tr.ReplaceID(pending.ID, "srv-42") {
		t.Fatal("ReplaceID failed")
	}

	got := tr.Get("srv-42")
	if got == nil {
		t.Fatal("message not found under server id")
	}
	if got.Content != "done" {
		t.Error("ReplaceID did not preserve content")
	}
	if tr.Get(pending.ID) != nil {
		t.Error("provisional id still resolves after swap")
	}

	// The swap happens exactly once; replaying it is a no-op.
	if tr.ReplaceID(pending.ID, "srv-43") {
		t.Error("ReplaceID should fail for an already-swapped id")
	}
}

// =============================================================================
// LOOKUP TESTS
// =============================================================================

func TestTranscriptLastAssistantWithSteps(t *testing.T) {
	tr := NewTranscript("chat-1")

	tr.Append(&Message{ID: "a1", Role: RoleAssistant, State: StateFinalized})
	withSteps := &Message{
		ID:    "a2",
		Role:  RoleAssistant,
		State: StateFinalized,
		Steps: []StepResult{{StepNumber: 1, Kind: StepKindText}},
	}
	tr.Append(withSteps)
	tr.Append(&Message{ID: "a3", Role: RoleAssistant, State: StateFinalized})

	if got := tr.LastAssistantWithSteps(); got != "a2" {
		t.Errorf("LastAssistantWithSteps = %q, want a2", got)
	}
}

func TestTranscriptReset(t *testing.T) {
	tr := NewTranscript("chat-1")
	tr.AppendUser("hello")
	tr.AppendPending()

	tr.Reset("chat-2")

	if !tr.IsEmpty() {
		t.Error("Reset did not clear messages")
	}
	if tr.ChatID != "chat-2" {
		t.Errorf("ChatID = %q, want chat-2", tr.ChatID)
	}
	if tr.PendingID() != "" {
		t.Error("PendingID should be empty after reset")
	}
}
