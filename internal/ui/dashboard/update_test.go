// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package dashboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/morganforge/consigliere-tui/internal/model"
)

func deleteTestModel() *Model {
	return &Model{
		transcript: model.NewTranscript("c1"),
		chats: []model.ChatSummary{
			{ID: "c1", Title: "Active analysis"},
			{ID: "c2", Title: "Other analysis"},
		},
		activeChatID: "c1",
		dossier:      &model.Dossier{Briefing: "briefing"},
		selectedID:   "a1",
		actionCursor: 1,
	}
}

func TestDeleteActiveChatResetsHome(t *testing.T) {
	m := deleteTestModel()

	updated, _ := m.Update(DeleteDoneMsg{ChatID: "c1"})
	got, ok := updated.(*Model)
	require.True(t, ok)

	assert.Empty(t, got.activeChatID, "deleting the active chat returns to home")
	assert.Nil(t, got.dossier)
	assert.Empty(t, got.selectedID)
	assert.Equal(t, -1, got.actionCursor)
	assert.True(t, got.transcript.IsEmpty())

	require.Len(t, got.chats, 1)
	assert.Equal(t, "c2", got.chats[0].ID)
}

func TestDeleteOtherChatKeepsActiveConversation(t *testing.T) {
	m := deleteTestModel()
	m.transcript.AppendUser("still here")

	updated, _ := m.Update(DeleteDoneMsg{ChatID: "c2"})
	got := updated.(*Model)

	assert.Equal(t, "c1", got.activeChatID)
	assert.NotNil(t, got.dossier)
	assert.False(t, got.transcript.IsEmpty())
	require.Len(t, got.chats, 1)
	assert.Equal(t, "c1", got.chats[0].ID)
}

func TestDeleteFailureLeavesListIntact(t *testing.T) {
	m := deleteTestModel()

	updated, _ := m.Update(DeleteDoneMsg{ChatID: "c1", Err: assert.AnError})
	got := updated.(*Model)

	assert.Equal(t, "c1", got.activeChatID)
	assert.Len(t, got.chats, 2)
}
