// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for transcripts, messages,
// analysis steps, and dossiers.
package model

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// ROLE TYPE
// =============================================================================

// Role represents the sender of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// DisplayName returns a human-readable name for the role.
func (r Role) DisplayName() string {
	switch r {
	case RoleUser:
		return "You"
	case RoleAssistant:
		return "Consigliere"
	default:
		return string(r)
	}
}

// =============================================================================
// STREAM STATE
// =============================================================================

// StreamState is the lifecycle phase of an assistant message. Historical
// messages are always Finalized; only the single pending message of a
// transcript moves through the other states.
type StreamState int

const (
	// StateIdle means the message is not part of an in-flight send.
	StateIdle StreamState = iota
	// StateAwaitingPlan means the send is open but no step has started yet.
	StateAwaitingPlan
	// StateStreaming means step results are arriving.
	StateStreaming
	// StateFinalized means the authoritative final payload has been applied.
	StateFinalized
	// StateFailed means the stream ended with an error event or transport
	// failure.
	StateFailed
)

// Terminal reports whether the state is a terminal one.
func (s StreamState) Terminal() bool {
	return s == StateFinalized || s == StateFailed
}

// String returns a short label for status display.
func (s StreamState) String() string {
	switch s {
	case StateAwaitingPlan:
		return "planning"
	case StateStreaming:
		return "executing"
	case StateFinalized:
		return "complete"
	case StateFailed:
		return "error"
	default:
		return "idle"
	}
}

// =============================================================================
// STEP RESULT
// =============================================================================

// StepKind is the rendering kind of a step payload. It is orthogonal to
// StepType: a "chart" step renders as an image, a "metric" step as text.
type StepKind string

const (
	StepKindImage StepKind = "image"
	StepKindTable StepKind = "table"
	StepKindText  StepKind = "text"
	StepKindError StepKind = "error"
)

// StepResult is one unit of analysis output within an assistant turn.
// Steps are immutable once appended to a message.
type StepResult struct {
	StepNumber  int             `json:"step_number"`
	StepType    string          `json:"step_type,omitempty"` // chart, table, metric, summary
	Kind        StepKind        `json:"type"`
	Data        json.RawMessage `json:"data,omitempty"`
	Description string          `json:"step_description,omitempty"`

	// TotalRows is populated by the backend for table steps.
	TotalRows int `json:"total_rows,omitempty"`
}

// ImagePath returns the image path payload for image steps.
func (s StepResult) ImagePath() (string, bool) {
	if s.Kind != StepKindImage {
		return "", false
	}
	var path string
	if err := json.Unmarshal(s.Data, &path); err != nil {
		return "", false
	}
	return path, true
}

// TableRows returns the row payload for table steps. Each row is a map of
// column name to cell value, as serialized by the backend.
func (s StepResult) TableRows() ([]map[string]any, bool) {
	if s.Kind != StepKindTable {
		return nil, false
	}
	var rows []map[string]any
	if err := json.Unmarshal(s.Data, &rows); err != nil {
		return nil, false
	}
	return rows, true
}

// Text returns the string payload for text and error steps.
func (s StepResult) Text() string {
	var text string
	if err := json.Unmarshal(s.Data, &text); err != nil {
		// Tolerate non-string payloads from older backends.
		return string(s.Data)
	}
	return text
}

// =============================================================================
// PLAN
// =============================================================================

// PlanStep is one intended step in the assistant's execution plan.
type PlanStep struct {
	StepNumber  int    `json:"step_number"`
	Type        string `json:"type"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	ChartType   string `json:"chart_type,omitempty"`
}

// Plan describes the assistant's intended step sequence. It is informational
// only; the executed steps are the source of truth.
type Plan struct {
	Intent    string     `json:"intent,omitempty"`
	Reasoning string     `json:"reasoning,omitempty"`
	Steps     []PlanStep `json:"plan,omitempty"`
}

// RelatedCode is the generated analysis code attached to a finalized message.
type RelatedCode struct {
	Type string `json:"type"`
	Code string `json:"code"`
}

// =============================================================================
// MESSAGE TYPE
// =============================================================================

// Message represents a single turn in a conversation.
type Message struct {
	// Identity. The ID of a pending assistant message is a client-generated
	// provisional value until the server confirms persistence, at which
	// point it is replaced exactly once.
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`

	// Content is display text (markdown).
	Content string `json:"content"`

	// Steps is append-only while streaming; a final_result event replaces
	// it wholesale with the authoritative list.
	Steps []StepResult `json:"steps,omitempty"`

	// Plan is the assistant's intended step sequence, if reported.
	Plan *Plan `json:"plan,omitempty"`

	// RelatedCode is set once the final payload arrives, if code was run.
	RelatedCode *RelatedCode `json:"related_code,omitempty"`

	// Structured single-result projections from historical envelopes.
	TableData []map[string]any `json:"table_data,omitempty"`
	ImageData string           `json:"image_data,omitempty"`

	// Streaming state. Only meaningful while the message is in flight.
	State       StreamState `json:"-"`
	CurrentStep int         `json:"-"`
}

// NewUserMessage creates a user message with a provisional id.
func NewUserMessage(content string) *Message {
	return &Message{
		ID:        provisionalID(),
		Role:      RoleUser,
		Content:   content,
		CreatedAt: time.Now(),
		State:     StateIdle,
	}
}

// NewPendingMessage creates the placeholder assistant message for an
// in-flight send.
func NewPendingMessage() *Message {
	return &Message{
		ID:        provisionalID(),
		Role:      RoleAssistant,
		CreatedAt: time.Now(),
		State:     StateAwaitingPlan,
	}
}

// Pending reports whether the message is in a non-terminal streaming state.
func (m *Message) Pending() bool {
	return m.Role == RoleAssistant && (m.State == StateAwaitingPlan || m.State == StateStreaming)
}

// HasSteps reports whether the message carries at least one step result.
func (m *Message) HasSteps() bool {
	return len(m.Steps) > 0
}

// Preview returns a truncated single-line preview of the content.
// Rune-based so multibyte text is never split.
func (m *Message) Preview(maxLen int) string {
	content := strings.ReplaceAll(m.Content, "\n", " ")
	runes := []rune(content)
	if len(runes) <= maxLen {
		return content
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}

// Clone returns a copy safe to hand to renderers. Steps share the backing
// array because steps are immutable once appended.
func (m *Message) Clone() *Message {
	cp := *m
	return &cp
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// provisionalID creates a client-side message id. The "local-" prefix makes
// provisional ids distinguishable from server-assigned UUIDs in logs.
func provisionalID() string {
	return "local-" + uuid.NewString()
}
