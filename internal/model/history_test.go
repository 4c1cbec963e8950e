// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for transcripts, messages,
// analysis steps, and dossiers.
package model

import (
	"testing"
)

// =============================================================================
// HISTORY ENVELOPE TESTS
// =============================================================================

func TestHistoryRecordTableEnvelope(t *testing.T) {
	rec := HistoryRecord{
		ID:      "m1",
		Role:    "assistant",
		Content: `{"text":"hi","result":{"type":"table","data":[{"region":"EU","revenue":12}]}}`,
	}

	msg := rec.ToMessage()

	if msg.Content != "hi" {
		t.Errorf("Content = %q, want hi", msg.Content)
	}
	if len(msg.TableData) != 1 {
		t.Fatalf("TableData rows = %d, want 1", len(msg.TableData))
	}
	if msg.TableData[0]["region"] != "EU" {
		t.Errorf("row payload lost: %v", msg.TableData[0])
	}
	if msg.ImageData != "" {
		t.Errorf("ImageData = %q, want empty", msg.ImageData)
	}
}

func TestHistoryRecordImageEnvelope(t *testing.T) {
	rec := HistoryRecord{
		Role:    "assistant",
		Content: `{"text":"chart ready","result":{"type":"image","data":"/static/plots/p1.png"}}`,
	}

	msg := rec.ToMessage()

	if msg.Content != "chart ready" {
		t.Errorf("Content = %q", msg.Content)
	}
	if msg.ImageData != "/static/plots/p1.png" {
		t.Errorf("ImageData = %q", msg.ImageData)
	}
	if msg.TableData != nil {
		t.Error("TableData should be nil for image envelopes")
	}
}

func TestHistoryRecordStepsEnvelope(t *testing.T) {
	rec := HistoryRecord{
		Role: "assistant",
		Content: `{"text":"done","steps":[` +
			`{"step_number":1,"type":"text","data":"42 rows"},` +
			`{"step_number":2,"type":"image","data":"/static/plots/p2.png"}],` +
			`"plan":{"intent":"DATA_ACTION"},"code":"df.head()"}`,
	}

	msg := rec.ToMessage()

	if msg.Content != "done" {
		t.Errorf("Content = %q", msg.Content)
	}
	if len(msg.Steps) != 2 {
		t.Fatalf("steps = %d, want 2", len(msg.Steps))
	}
	if msg.Steps[1].Kind != StepKindImage {
		t.Errorf("step 2 kind = %q", msg.Steps[1].Kind)
	}
	if msg.Plan == nil || msg.Plan.Intent != "DATA_ACTION" {
		t.Error("plan not projected")
	}
	if msg.RelatedCode == nil || msg.RelatedCode.Code != "df.head()" {
		t.Error("related code not projected from envelope")
	}
}

func TestHistoryRecordPlainText(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"plain text", "plain text"},
		{"markdown", "**Failed to load history.**\n\nPlease try again."},
		{"json scalar", "42"},
		{"json object without known shape", `{"note":"legacy"}`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			msg := HistoryRecord{Role: "assistant", Content: tc.content}.ToMessage()
			if msg.Content != tc.content {
				t.Errorf("Content = %q, want raw %q", msg.Content, tc.content)
			}
			if msg.Steps != nil || msg.TableData != nil || msg.ImageData != "" {
				t.Error("plain records must carry no structured fields")
			}
		})
	}
}

func TestHistoryRecordUserContentNeverParsed(t *testing.T) {
	content := `{"text":"looks like an envelope"}`
	msg := HistoryRecord{Role: "user", Content: content}.ToMessage()
	if msg.Content != content {
		t.Errorf("user content must pass through unchanged, got %q", msg.Content)
	}
}

// =============================================================================
// STEP PAYLOAD TESTS
// =============================================================================

func TestStepResultPayloadAccessors(t *testing.T) {
	img := StepResult{Kind: StepKindImage, Data: []byte(`"/static/plots/a.png"`)}
	path, ok := img.ImagePath()
	if !ok || path != "/static/plots/a.png" {
		t.Errorf("ImagePath = %q, %v", path, ok)
	}

	table := StepResult{Kind: StepKindTable, Data: []byte(`[{"a":1}]`)}
	rows, ok := table.TableRows()
	if !ok || len(rows) != 1 {
		t.Errorf("TableRows = %v, %v", rows, ok)
	}

	// Kind mismatch never panics, it just reports absence.
	if _, ok := table.ImagePath(); ok {
		t.Error("ImagePath must refuse non-image steps")
	}

	errStep := StepResult{Kind: StepKindError, Data: []byte(`"Execution Error: boom"`)}
	if got := errStep.Text(); got != "Execution Error: boom" {
		t.Errorf("Text = %q", got)
	}
}
