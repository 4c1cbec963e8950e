// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package dashboard

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/morganforge/consigliere-tui/internal/model"
)

func TestMatchChat(t *testing.T) {
	c := model.ChatSummary{Title: "Umsätze Q3", Type: "excel"}

	assert.True(t, matchChat(c, ""))
	assert.True(t, matchChat(c, "q3"))
	assert.True(t, matchChat(c, "umsätze"), "case folds beyond ASCII")
	assert.True(t, matchChat(c, "excel"), "matches the source type")
	assert.False(t, matchChat(c, "q4"))
}

func TestVisibleChats(t *testing.T) {
	m := &Model{chats: []model.ChatSummary{
		{ID: "1", Title: "Sales Q3", Type: "excel"},
		{ID: "2", Title: "Inventory", Type: "db"},
		{ID: "3", Title: "sales forecast", Type: "excel"},
	}}

	assert.Len(t, m.visibleChats(), 3)

	m.chatFilter = "sales"
	got := m.visibleChats()
	assert.Len(t, got, 2)
	assert.Equal(t, "1", got[0].ID)
	assert.Equal(t, "3", got[1].ID)

	m.chatFilter = "nothing"
	assert.Empty(t, m.visibleChats())

	m.chatCursor = 2
	m.clampChatCursor()
	assert.Zero(t, m.chatCursor)
}
