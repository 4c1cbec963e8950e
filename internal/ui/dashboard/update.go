// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package dashboard implements the main TUI: sidebar, transcript, step
// panel, dossier, and the input line.
//
// This file contains the Bubble Tea update loop.
package dashboard

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/morganforge/consigliere-tui/internal/model"
	"github.com/morganforge/consigliere-tui/internal/stream"
)

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.updateKey(msg)

	case ChatsLoadedMsg:
		m.chats = msg.Chats
		m.chatsOffline = msg.FromCache
		m.clampChatCursor()
		if msg.FromCache {
			m.status = "offline — showing cached chats"
		}
		return m, nil

	case ChatsLoadFailedMsg:
		m.status = fmt.Sprintf("could not load chats: %v", msg.Err)
		return m, nil

	case HistoryLoadedMsg:
		if msg.ChatID != m.activeChatID {
			// Stale response for a chat the user already left.
			return m, nil
		}
		m.loadingChat = false
		m.transcript.LoadHistory(msg.Records)
		if m.transcript.IsEmpty() {
			// Fresh chat: start reading the dossier from the top.
			m.autoScroll = false
			m.refreshViewport()
			m.viewport.GotoTop()
		} else {
			m.autoScroll = true
			m.refreshViewport()
		}
		return m, nil

	case HistoryLoadFailedMsg:
		if msg.ChatID != m.activeChatID {
			return m, nil
		}
		// A partial conversation is worse than none: back to home.
		m.resetHome()
		m.status = "failed to load chat history"
		return m, nil

	case DossierLoadedMsg:
		if msg.ChatID == m.activeChatID {
			m.dossier = msg.Dossier
		}
		return m, nil

	case StreamUpdateMsg:
		if id := m.transcript.PendingID(); id != "" {
			m.streamingID = id
		}
		m.refreshViewport()
		return m, nil

	case StreamDoneMsg:
		m.streamingID = ""
		if msg.Err != nil && errors.Is(msg.Err, stream.ErrSendInFlight) {
			m.status = "wait for the current analysis to finish"
		}
		m.refreshViewport()
		return m, nil

	case UploadDoneMsg:
		return m.updateUploadDone(msg)

	case AnalyzeDoneMsg:
		return m.updateAnalyzeDone(msg)

	case ConnectDoneMsg:
		return m.updateConnectDone(msg)

	case DeleteDoneMsg:
		return m.updateDeleteDone(msg)

	case StatusMsg:
		m.status = msg.Text
		return m, nil
	}

	return m, nil
}

// =============================================================================
// KEY HANDLING
// =============================================================================

func (m *Model) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		return m, tea.Quit
	}

	if m.focus == FocusWizard {
		return m.updateWizardKey(msg)
	}

	// Global shortcuts outside the wizard.
	switch {
	case key.Matches(msg, m.keys.Upload):
		m.openWizard(newUploadWizard())
		return m, nil
	case key.Matches(msg, m.keys.Connect):
		m.openWizard(newConnectWizard())
		return m, nil
	case key.Matches(msg, m.keys.Sidebar):
		m.focus = FocusSidebar
		m.input.Blur()
		return m, nil
	case key.Matches(msg, m.keys.Actions):
		if m.dossier.HasActions() {
			m.focus = FocusActions
			m.input.Blur()
			if m.actionCursor < 0 {
				m.actionCursor = 0
			}
		}
		return m, nil
	case key.Matches(msg, m.keys.FocusNext):
		m.cycleFocus()
		return m, nil
	}

	switch m.focus {
	case FocusSidebar:
		return m.updateSidebarKey(msg)
	case FocusTranscript:
		return m.updateTranscriptKey(msg)
	case FocusActions:
		return m.updateActionsKey(msg)
	default:
		return m.updateInputKey(msg)
	}
}

func (m *Model) cycleFocus() {
	order := []Focus{FocusInput, FocusSidebar, FocusTranscript}
	if m.dossier.HasActions() {
		order = append(order, FocusActions)
	}
	for i, f := range order {
		if f == m.focus {
			m.setFocus(order[(i+1)%len(order)])
			return
		}
	}
	m.setFocus(FocusInput)
}

func (m *Model) setFocus(f Focus) {
	m.focus = f
	if f == FocusInput {
		m.input.Focus()
	} else {
		m.input.Blur()
	}
	if f == FocusActions && m.actionCursor < 0 {
		m.actionCursor = 0
	}
}

func (m *Model) updateInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Submit) {
		text := m.input.Value()
		m.input.SetValue("")
		return m, m.send(text)
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) updateSidebarKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	visible := m.visibleChats()

	if m.confirmingDelete {
		switch msg.String() {
		case "y", "Y":
			m.confirmingDelete = false
			if m.chatCursor < len(visible) {
				return m, m.deleteChatCmd(visible[m.chatCursor].ID)
			}
			return m, nil
		default:
			m.confirmingDelete = false
			return m, nil
		}
	}

	// Filter entry mode: runes edit the query, enter/esc leave it.
	if m.filteringChats {
		switch msg.Type {
		case tea.KeyRunes:
			m.chatFilter += string(msg.Runes)
			m.chatCursor = 0
		case tea.KeyBackspace:
			if r := []rune(m.chatFilter); len(r) > 0 {
				m.chatFilter = string(r[:len(r)-1])
			}
			m.clampChatCursor()
		case tea.KeyEnter:
			m.filteringChats = false
		case tea.KeyEsc:
			m.filteringChats = false
			m.chatFilter = ""
			m.clampChatCursor()
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Up):
		if m.chatCursor > 0 {
			m.chatCursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.chatCursor < len(visible)-1 {
			m.chatCursor++
		}
	case key.Matches(msg, m.keys.Delete):
		if len(visible) > 0 {
			m.confirmingDelete = true
		}
	case key.Matches(msg, m.keys.Submit):
		if m.chatCursor < len(visible) {
			return m, m.openChat(visible[m.chatCursor].ID)
		}
	case msg.String() == "/":
		m.filteringChats = true
	case key.Matches(msg, m.keys.Cancel):
		if m.chatFilter != "" {
			m.chatFilter = ""
			m.clampChatCursor()
			return m, nil
		}
		m.setFocus(FocusInput)
	}
	return m, nil
}

func (m *Model) updateTranscriptKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.End):
		m.autoScroll = true
		m.viewport.GotoBottom()
		return m, nil
	case key.Matches(msg, m.keys.SelectMsg):
		if msg.String() == "[" {
			m.moveSelection(-1)
		} else {
			m.moveSelection(1)
		}
		return m, nil
	case key.Matches(msg, m.keys.ClearSel):
		m.selectedID = ""
		return m, nil
	case key.Matches(msg, m.keys.Cancel):
		m.setFocus(FocusInput)
		return m, nil
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	// Manual scrolling away from the bottom pauses auto-follow.
	m.autoScroll = m.viewport.AtBottom()
	return m, cmd
}

func (m *Model) updateActionsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	actions := dossierActions(m.dossier)
	switch {
	case key.Matches(msg, m.keys.Up):
		if m.actionCursor > 0 {
			m.actionCursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.actionCursor < len(actions)-1 {
			m.actionCursor++
		}
	case key.Matches(msg, m.keys.Submit):
		// A clicked action is indistinguishable from typed input.
		if m.actionCursor >= 0 && m.actionCursor < len(actions) {
			text := actions[m.actionCursor]
			m.setFocus(FocusInput)
			return m, m.send(text)
		}
	case key.Matches(msg, m.keys.Cancel):
		m.setFocus(FocusInput)
	}
	return m, nil
}

func (m *Model) updateWizardKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	w := m.wizard
	if w == nil {
		m.setFocus(FocusInput)
		return m, nil
	}
	if w.busy {
		// Only escape works while the request runs; the result message
		// will close the wizard.
		if key.Matches(msg, m.keys.Cancel) {
			m.closeWizard()
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Cancel):
		m.closeWizard()
		return m, nil
	case key.Matches(msg, m.keys.Submit):
		done := w.advance(m.input.Value())
		m.input.SetValue("")
		if !done {
			m.prepareWizardInput()
			return m, nil
		}
		w.busy = true
		switch w.kind {
		case wizardUpload:
			w.status = "uploading…"
			return m, m.uploadCmd(w.uploadPath())
		default:
			w.status = "connecting…"
			return m, m.connectCmd(w.connectionRequest())
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// =============================================================================
// ACTIONS
// =============================================================================

// send starts a streaming send of text on the active chat.
func (m *Model) send(text string) tea.Cmd {
	if text == "" {
		return nil
	}
	if m.activeChatID == "" {
		m.status = "upload a file or pick a chat first"
		return nil
	}
	if m.engine.Streaming() {
		m.status = "wait for the current analysis to finish"
		return nil
	}

	// A new stream resets explicit selection and resumes auto-follow.
	m.selectedID = ""
	m.autoScroll = true
	m.status = ""
	return m.startStreamCmd(m.activeChatID, text)
}

// openChat switches the active conversation and loads its data.
func (m *Model) openChat(chatID string) tea.Cmd {
	if chatID == m.activeChatID {
		m.setFocus(FocusInput)
		return nil
	}
	m.activeChatID = chatID
	m.transcript.Reset(chatID)
	m.dossier = nil
	m.selectedID = ""
	m.streamingID = ""
	m.actionCursor = -1
	m.loadingChat = true
	m.renderedVersion = 0
	m.setFocus(FocusInput)
	return tea.Batch(m.loadHistoryCmd(chatID), m.loadDossierCmd(chatID))
}

func (m *Model) openWizard(w *wizardState) {
	m.wizard = w
	m.focus = FocusWizard
	m.prepareWizardInput()
}

func (m *Model) prepareWizardInput() {
	f := m.wizard.current()
	m.input.SetValue("")
	m.input.Placeholder = f.label
	if f.initial != "" {
		m.input.Placeholder = f.label + " (" + f.initial + ")"
	}
	if f.secret {
		m.input.EchoMode = textinput.EchoPassword
	} else {
		m.input.EchoMode = textinput.EchoNormal
	}
	m.input.Focus()
}

func (m *Model) closeWizard() {
	m.wizard = nil
	m.input.EchoMode = textinput.EchoNormal
	m.input.Placeholder = "Ask about your data…"
	m.setFocus(FocusInput)
}

// =============================================================================
// RESULT MESSAGES
// =============================================================================

func (m *Model) updateUploadDone(msg UploadDoneMsg) (tea.Model, tea.Cmd) {
	w := m.wizard
	if w == nil {
		return m, nil
	}
	if msg.Err != nil {
		w.busy = false
		w.status = fmt.Sprintf("upload failed: %v", msg.Err)
		return m, nil
	}
	w.status = fmt.Sprintf("analyzing %s…", msg.Result.Filename)
	return m, m.analyzeCmd(msg.Result.FileID)
}

func (m *Model) updateAnalyzeDone(msg AnalyzeDoneMsg) (tea.Model, tea.Cmd) {
	w := m.wizard
	if w == nil {
		return m, nil
	}
	if msg.Err != nil {
		w.busy = false
		w.status = fmt.Sprintf("analysis failed: %v", msg.Err)
		return m, nil
	}

	m.closeWizard()
	m.status = "dossier ready"
	cacheDossier(m.cache, msg.Result.ChatID, &msg.Result.Dossier)

	// Open the freshly created chat with its dossier already in hand.
	m.activeChatID = msg.Result.ChatID
	m.transcript.Reset(msg.Result.ChatID)
	m.dossier = &msg.Result.Dossier
	m.selectedID = ""
	m.streamingID = ""
	m.actionCursor = -1
	m.renderedVersion = 0
	return m, tea.Batch(m.loadChatsCmd(), m.loadHistoryCmd(msg.Result.ChatID))
}

func (m *Model) updateConnectDone(msg ConnectDoneMsg) (tea.Model, tea.Cmd) {
	w := m.wizard
	if w == nil {
		return m, nil
	}
	if msg.Err != nil {
		w.busy = false
		w.status = fmt.Sprintf("connection failed: %v", msg.Err)
		return m, nil
	}
	m.closeWizard()
	m.status = fmt.Sprintf("connected to %s", msg.Result.Database)
	// The backend created a chat for the connection; refresh the sidebar
	// to surface it.
	return m, m.loadChatsCmd()
}

func (m *Model) updateDeleteDone(msg DeleteDoneMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		m.status = fmt.Sprintf("delete failed: %v", msg.Err)
		return m, nil
	}

	kept := m.chats[:0]
	for _, c := range m.chats {
		if c.ID != msg.ChatID {
			kept = append(kept, c)
		}
	}
	m.chats = kept
	m.clampChatCursor()

	// Deleting the active chat falls back to the neutral home state.
	if msg.ChatID == m.activeChatID {
		m.resetHome()
	}
	m.status = "chat deleted"
	return m, nil
}

// =============================================================================
// VIEWPORT
// =============================================================================

// refreshViewport re-renders the transcript when it changed since the last
// render, preserving scroll position unless auto-follow is on.
func (m *Model) refreshViewport() {
	v := m.transcript.Version()
	if v == m.renderedVersion && m.viewport.Height > 0 {
		return
	}
	m.renderedVersion = v
	m.viewport.SetContent(m.renderTranscript())
	if m.autoScroll {
		m.viewport.GotoBottom()
	}
}

// resize recomputes the layout after a terminal size change.
func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height

	sidebarW := m.cfg.UI.SidebarWidth
	panelW := m.cfg.UI.PanelWidth
	mainW := width - sidebarW - panelW - 4
	if mainW < 30 {
		panelW = 0
		mainW = width - sidebarW - 2
	}

	contentH := height - 5 // header, input, status bar
	if contentH < 5 {
		contentH = 5
	}

	m.viewport.Width = mainW
	m.viewport.Height = contentH
	m.input.Width = width - 6

	m.messageView.SetWidth(mainW)
	m.stepView.SetWidth(panelW - 2)
	m.dossierView.SetWidth(mainW - 2)
	m.statusBar.SetWidth(width)

	m.renderedVersion = 0
	m.refreshViewport()
}

// =============================================================================
// DOSSIER HELPERS
// =============================================================================

// Actions is defined on the model side to tolerate a nil dossier.
func dossierActions(d *model.Dossier) []string {
	if d == nil {
		return nil
	}
	return d.RecommendedActions
}
