// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package dashboard implements the main TUI: sidebar, transcript, step
// panel, dossier, and the input line.
//
// This file defines the asynchronous commands: REST calls, cache
// round-trips, and the streaming send bridge.
package dashboard

import (
	"context"
	"errors"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/morganforge/consigliere-tui/internal/api"
	"github.com/morganforge/consigliere-tui/internal/logging"
	"github.com/morganforge/consigliere-tui/internal/model"
	"github.com/morganforge/consigliere-tui/internal/store"
	"github.com/morganforge/consigliere-tui/internal/stream"
)

// requestTimeout bounds the dashboard's background REST calls.
const requestTimeout = 30 * time.Second

// =============================================================================
// CHAT LIST
// =============================================================================

// loadChatsCmd fetches the sidebar list, falling back to the local cache
// when the server is unreachable, and refreshing the cache on success.
func (m *Model) loadChatsCmd() tea.Cmd {
	client, cache := m.client, m.cache
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		chats, err := client.ListChats(ctx)
		if err == nil {
			if cache != nil {
				if cerr := cache.ReplaceChats(ctx, chats); cerr != nil {
					logging.L().Warnw("chat cache refresh failed", "error", cerr)
				}
			}
			return ChatsLoadedMsg{Chats: chats}
		}

		if cache != nil && errors.Is(err, api.ErrServerUnavailable) {
			if cached, cerr := cache.Chats(ctx); cerr == nil && len(cached) > 0 {
				logging.L().Infow("serving chat list from cache", "error", err)
				return ChatsLoadedMsg{Chats: cached, FromCache: true}
			}
		}
		return ChatsLoadFailedMsg{Err: err}
	}
}

// =============================================================================
// HISTORY / DOSSIER
// =============================================================================

// loadHistoryCmd fetches a chat's stored messages.
func (m *Model) loadHistoryCmd(chatID string) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		records, err := client.History(ctx, chatID)
		if err != nil {
			return HistoryLoadFailedMsg{ChatID: chatID, Err: err}
		}
		return HistoryLoadedMsg{ChatID: chatID, Records: records}
	}
}

// loadDossierCmd fetches a chat's briefing, cache-backed like the list.
func (m *Model) loadDossierCmd(chatID string) tea.Cmd {
	client, cache := m.client, m.cache
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		d, err := client.Dossier(ctx, chatID)
		if err == nil {
			if cache != nil {
				if cerr := cache.PutDossier(ctx, chatID, d); cerr != nil {
					logging.L().Debugw("dossier cache write failed", "error", cerr)
				}
			}
			return DossierLoadedMsg{ChatID: chatID, Dossier: d}
		}

		if cache != nil && errors.Is(err, api.ErrServerUnavailable) {
			if cached, cerr := cache.Dossier(ctx, chatID); cerr == nil {
				return DossierLoadedMsg{ChatID: chatID, Dossier: cached}
			}
		}
		if errors.Is(err, api.ErrNotFound) {
			// Chats created before analysis finished have no dossier.
			return DossierLoadedMsg{ChatID: chatID, Dossier: nil}
		}
		logging.L().Warnw("dossier load failed", "chat_id", chatID, "error", err)
		return DossierLoadedMsg{ChatID: chatID, Dossier: nil}
	}
}

// deleteChatCmd removes a chat server-side and from the cache.
func (m *Model) deleteChatCmd(chatID string) tea.Cmd {
	client, cache := m.client, m.cache
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		if err := client.DeleteChat(ctx, chatID); err != nil {
			return DeleteDoneMsg{ChatID: chatID, Err: err}
		}
		if cache != nil {
			if cerr := cache.DeleteChat(ctx, chatID); cerr != nil {
				logging.L().Debugw("cache delete failed", "error", cerr)
			}
		}
		return DeleteDoneMsg{ChatID: chatID}
	}
}

// =============================================================================
// STREAMING SEND
// =============================================================================

// startStreamCmd runs the streaming send in a goroutine. Each transcript
// mutation pushes a StreamUpdateMsg through the program bridge so the
// viewport re-renders between chunks; the command's own return value is
// the terminal StreamDoneMsg.
func (m *Model) startStreamCmd(chatID, content string) tea.Cmd {
	engine, transcript := m.engine, m.transcript
	return func() tea.Msg {
		err := engine.Run(context.Background(), transcript, chatID, content, func() {
			sendToProgram(StreamUpdateMsg{})
		})
		if err != nil && !errors.Is(err, stream.ErrSendInFlight) {
			logging.L().Warnw("stream send failed", "chat_id", chatID, "error", err)
		}
		return StreamDoneMsg{Err: err}
	}
}

// =============================================================================
// ONBOARDING
// =============================================================================

// uploadCmd uploads a local file.
func (m *Model) uploadCmd(path string) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		res, err := client.UploadFile(ctx, path)
		return UploadDoneMsg{Result: res, Err: err}
	}
}

// analyzeCmd generates a dossier for an uploaded file. Runs on the long
// analyze budget.
func (m *Model) analyzeCmd(fileID string) tea.Cmd {
	client := m.client.AnalyzeClient()
	return func() tea.Msg {
		res, err := client.Analyze(context.Background(), fileID)
		return AnalyzeDoneMsg{Result: res, Err: err}
	}
}

// connectCmd registers a database connection.
func (m *Model) connectCmd(req api.ConnectionRequest) tea.Cmd {
	client := m.client.AnalyzeClient()
	return func() tea.Msg {
		res, err := client.Connect(context.Background(), req)
		return ConnectDoneMsg{Result: res, Err: err}
	}
}

// =============================================================================
// CACHE HELPERS
// =============================================================================

// cacheDossier stores an analysis result's dossier without blocking Update.
func cacheDossier(cache *store.Cache, chatID string, d *model.Dossier) {
	if cache == nil || d == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := cache.PutDossier(ctx, chatID, d); err != nil {
			logging.L().Debugw("dossier cache write failed", "error", err)
		}
	}()
}
