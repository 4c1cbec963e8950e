// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package dashboard implements the main TUI: sidebar, transcript, step
// panel, dossier, and the input line.
//
// This file defines the Bubble Tea messages the dashboard reacts to.
package dashboard

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/morganforge/consigliere-tui/internal/api"
	"github.com/morganforge/consigliere-tui/internal/model"
)

// =============================================================================
// PROGRAM BRIDGE
// =============================================================================

// programRef lets the streaming goroutine push re-render messages into the
// event loop. Guarded because streaming starts before Run returns.
var (
	programMu  sync.RWMutex
	programRef *tea.Program
)

// SetProgram installs the running program for async message delivery.
func SetProgram(p *tea.Program) {
	programMu.Lock()
	programRef = p
	programMu.Unlock()
}

func sendToProgram(msg tea.Msg) {
	programMu.RLock()
	p := programRef
	programMu.RUnlock()
	if p != nil {
		p.Send(msg)
	}
}

// =============================================================================
// DATA MESSAGES
// =============================================================================

// ChatsLoadedMsg delivers the sidebar chat list.
type ChatsLoadedMsg struct {
	Chats []model.ChatSummary
	// FromCache marks an offline fallback snapshot.
	FromCache bool
}

// ChatsLoadFailedMsg reports that neither server nor cache had chats.
type ChatsLoadFailedMsg struct {
	Err error
}

// HistoryLoadedMsg delivers a chat's stored messages.
type HistoryLoadedMsg struct {
	ChatID  string
	Records []model.HistoryRecord
}

// HistoryLoadFailedMsg resets the dashboard to the home state.
type HistoryLoadFailedMsg struct {
	ChatID string
	Err    error
}

// DossierLoadedMsg delivers a chat's briefing.
type DossierLoadedMsg struct {
	ChatID  string
	Dossier *model.Dossier
}

// =============================================================================
// STREAMING MESSAGES
// =============================================================================

// StreamUpdateMsg signals that the transcript mutated mid-stream and the
// viewport must re-render. Carries no data: the transcript is the source
// of truth.
type StreamUpdateMsg struct{}

// StreamDoneMsg signals that the streaming send finished.
type StreamDoneMsg struct {
	Err error
}

// =============================================================================
// ONBOARDING MESSAGES
// =============================================================================

// UploadDoneMsg reports a finished multipart upload.
type UploadDoneMsg struct {
	Result *api.UploadResult
	Err    error
}

// AnalyzeDoneMsg reports dossier generation for an uploaded file.
type AnalyzeDoneMsg struct {
	Result *api.AnalysisResult
	Err    error
}

// ConnectDoneMsg reports a database connection attempt.
type ConnectDoneMsg struct {
	Result *api.ConnectionResult
	Err    error
}

// DeleteDoneMsg reports a chat deletion.
type DeleteDoneMsg struct {
	ChatID string
	Err    error
}

// StatusMsg shows a transient note in the status bar.
type StatusMsg struct {
	Text string
}
