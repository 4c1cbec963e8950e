// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package dashboard

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/morganforge/consigliere-tui/internal/model"
)

// assistant appends a finalized assistant message with the given id and
// number of steps.
func assistant(t *testing.T, tr *model.Transcript, id string, steps int) {
	t.Helper()
	msg := tr.AppendPending()
	require.NotNil(t, msg)
	require.True(t, tr.ReplaceID(msg.ID, id))
	ok := tr.Patch(id, func(m *model.Message) {
		m.State = model.StateFinalized
		for i := 0; i < steps; i++ {
			m.Steps = append(m.Steps, model.StepResult{
				StepNumber: i + 1,
				Kind:       model.StepKindText,
				Data:       json.RawMessage(`"done"`),
			})
		}
	})
	require.True(t, ok)
}

func TestEffectiveSelectionFallsBackToLastWithSteps(t *testing.T) {
	tr := model.NewTranscript("chat-1")
	tr.AppendUser("first question")
	assistant(t, tr, "a1", 2)
	tr.AppendUser("second question")
	assistant(t, tr, "a2", 0) // plain text answer, no steps

	msg := EffectiveSelection(tr, "", "")
	require.NotNil(t, msg)
	assert.Equal(t, "a1", msg.ID, "fallback skips assistant messages without steps")
}

func TestEffectiveSelectionExplicitWins(t *testing.T) {
	tr := model.NewTranscript("chat-1")
	assistant(t, tr, "a1", 1)
	assistant(t, tr, "a2", 3)

	msg := EffectiveSelection(tr, "a1", "")
	require.NotNil(t, msg)
	assert.Equal(t, "a1", msg.ID)
}

func TestEffectiveSelectionStreamingOverridesExplicit(t *testing.T) {
	tr := model.NewTranscript("chat-1")
	assistant(t, tr, "a1", 1)

	pending := tr.AppendPending()
	require.NotNil(t, pending)
	tr.Patch(pending.ID, func(m *model.Message) {
		m.State = model.StateStreaming
	})

	msg := EffectiveSelection(tr, "a1", pending.ID)
	require.NotNil(t, msg)
	assert.Equal(t, pending.ID, msg.ID, "live stream drives the panel while pending")
}

func TestEffectiveSelectionIgnoresFinishedStreamID(t *testing.T) {
	tr := model.NewTranscript("chat-1")
	assistant(t, tr, "a1", 2)

	// A stale streaming id pointing at a finalized message no longer wins.
	msg := EffectiveSelection(tr, "", "a1")
	require.NotNil(t, msg)
	assert.Equal(t, "a1", msg.ID, "falls through to the steps fallback")

	tr.AppendUser("another")
	assistant(t, tr, "a2", 1)
	msg = EffectiveSelection(tr, "", "a1")
	require.NotNil(t, msg)
	assert.Equal(t, "a2", msg.ID)
}

func TestEffectiveSelectionEmptyTranscript(t *testing.T) {
	tr := model.NewTranscript("chat-1")
	assert.Nil(t, EffectiveSelection(tr, "", ""))

	tr.AppendUser("hello")
	assert.Nil(t, EffectiveSelection(tr, "", ""))
}

func TestMoveSelectionCycles(t *testing.T) {
	m := &Model{transcript: model.NewTranscript("chat-1")}
	assistant(t, m.transcript, "a1", 1)
	m.transcript.AppendUser("next")
	assistant(t, m.transcript, "a2", 2)
	assistant(t, m.transcript, "a3", 1)

	// Starts from the effective selection (a3, most recent with steps).
	m.moveSelection(-1)
	assert.Equal(t, "a2", m.selectedID)

	m.moveSelection(-1)
	assert.Equal(t, "a1", m.selectedID)

	// Clamped at the ends.
	m.moveSelection(-1)
	assert.Equal(t, "a1", m.selectedID)

	m.moveSelection(1)
	assert.Equal(t, "a2", m.selectedID)
	m.moveSelection(1)
	m.moveSelection(1)
	assert.Equal(t, "a3", m.selectedID)
}

func TestMoveSelectionEmptyTranscriptIsNoop(t *testing.T) {
	m := &Model{transcript: model.NewTranscript("chat-1")}
	m.moveSelection(1)
	assert.Empty(t, m.selectedID)
}

func TestDossierActionsNilSafe(t *testing.T) {
	assert.Nil(t, dossierActions(nil))
	d := &model.Dossier{RecommendedActions: []string{"Show revenue by region"}}
	assert.Len(t, dossierActions(d), 1)
}
