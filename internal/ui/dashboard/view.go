// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package dashboard implements the main TUI: sidebar, transcript, step
// panel, dossier, and the input line.
//
// This file renders the dashboard layout.
package dashboard

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/morganforge/consigliere-tui/internal/model"
	"github.com/morganforge/consigliere-tui/internal/ui/components"
	"github.com/morganforge/consigliere-tui/internal/util"
)

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 {
		return "loading…"
	}

	header := m.renderHeader()
	body := m.renderBody()
	input := m.renderInput()
	status := m.renderStatusBar()

	return lipgloss.JoinVertical(lipgloss.Left, header, body, input, status)
}

// =============================================================================
// HEADER
// =============================================================================

func (m *Model) renderHeader() string {
	title := "⬖ CONSIGLIERE"
	if chat := m.activeChat(); chat != nil {
		title += "  ·  " + util.TruncateWidth(chat.DisplayTitle(), m.width-24)
	}
	if m.chatsOffline {
		title += "  [offline]"
	}
	return m.theme.Header.Width(m.width).Render(title)
}

// =============================================================================
// BODY
// =============================================================================

func (m *Model) renderBody() string {
	sidebarW := m.cfg.UI.SidebarWidth
	panelW := m.cfg.UI.PanelWidth
	mainW := m.width - sidebarW - panelW - 4
	showPanel := true
	if mainW < 30 {
		showPanel = false
		panelW = 0
		mainW = m.width - sidebarW - 2
	}
	contentH := m.viewport.Height

	sidebar := m.renderSidebar(sidebarW, contentH)

	var main string
	if m.activeChatID == "" {
		main = m.renderHome(mainW, contentH)
	} else {
		m.refreshViewport()
		main = m.viewport.View()
	}

	cols := []string{sidebar, main}
	if showPanel {
		cols = append(cols, m.renderStepPanel(panelW, contentH))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cols...)
}

func (m *Model) renderSidebar(width, height int) string {
	var b strings.Builder

	title := "CHATS"
	if m.focus == FocusSidebar {
		title = "CHATS ◂"
	}
	b.WriteString(m.theme.SidebarTitle.Render(title))
	b.WriteString("\n")
	if m.filteringChats || m.chatFilter != "" {
		b.WriteString(m.theme.ChatMeta.Render("/" + m.chatFilter))
	}
	b.WriteString("\n")

	visible := m.visibleChats()
	if len(visible) == 0 {
		if m.chatFilter != "" {
			b.WriteString(m.theme.ChatMeta.Render("no matches"))
		} else {
			b.WriteString(m.theme.ChatMeta.Render("no chats yet"))
		}
	}

	for i, chat := range visible {
		label := util.TruncateWidth(chat.DisplayTitle(), width-4)
		meta := chat.Type + " · " + util.RelativeTime(chat.CreatedAt)

		style := m.theme.ChatItem
		if i == m.chatCursor && m.focus == FocusSidebar {
			style = m.theme.ChatItemSelected
			if m.confirmingDelete {
				meta = "delete? y/n"
			}
		}
		if chat.ID == m.activeChatID {
			label = "▸ " + label
		}

		b.WriteString(style.Render(label))
		b.WriteString("\n")
		b.WriteString(m.theme.ChatMeta.Render("  " + meta))
		b.WriteString("\n")
	}

	return m.theme.Sidebar.Width(width).Height(height).Render(b.String())
}

// renderHome is the neutral state shown before any chat is active.
func (m *Model) renderHome(width, height int) string {
	lines := []string{
		m.theme.PanelTitle.Render("Welcome to Consigliere"),
		"",
		"Bring a data source to get a dossier and start asking questions.",
		"",
		m.theme.ShortcutKey.Render("ctrl+o") + "  upload a spreadsheet (.xlsx, .csv)",
		m.theme.ShortcutKey.Render("ctrl+b") + "  connect a PostgreSQL database",
		m.theme.ShortcutKey.Render("ctrl+s") + "  browse existing chats",
	}
	if m.wizard != nil {
		lines = append(lines, "", m.renderWizard())
	}
	content := strings.Join(lines, "\n")
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content)
}

func (m *Model) renderWizard() string {
	w := m.wizard
	var b strings.Builder

	switch w.kind {
	case wizardUpload:
		b.WriteString(m.theme.PanelTitle.Render("UPLOAD"))
	default:
		b.WriteString(m.theme.PanelTitle.Render("CONNECT DATABASE"))
	}
	b.WriteString("\n")

	for i, f := range w.fields {
		if i >= w.idx {
			break
		}
		val := f.value
		if f.secret {
			val = strings.Repeat("•", len(val))
		}
		b.WriteString(m.theme.ChatMeta.Render(fmt.Sprintf("%s: %s", f.label, val)))
		b.WriteString("\n")
	}

	if w.busy {
		b.WriteString(m.spin.View() + " " + w.status)
	} else if w.status != "" {
		b.WriteString(m.theme.ErrorText.Render(w.status))
	}
	return b.String()
}

// renderStepPanel shows the analysis steps of the selected message.
func (m *Model) renderStepPanel(width, height int) string {
	var b strings.Builder
	b.WriteString(m.theme.PanelTitle.Render("ANALYSIS STEPS"))
	b.WriteString("\n\n")

	msg := m.selectedMessage()
	switch {
	case msg == nil:
		b.WriteString(m.theme.ChatMeta.Render("no steps yet"))
	case msg.Pending() && len(msg.Steps) == 0:
		b.WriteString(m.spin.View() + " planning…")
	default:
		b.WriteString(m.stepView.Render(msg.Steps))
	}

	return m.theme.Panel.Width(width).Height(height).Render(b.String())
}

// =============================================================================
// TRANSCRIPT
// =============================================================================

// renderTranscript builds the viewport content: dossier on top, then the
// conversation.
func (m *Model) renderTranscript() string {
	var parts []string

	if m.dossier != nil {
		focused := -1
		if m.focus == FocusActions {
			focused = m.actionCursor
		}
		parts = append(parts, m.dossierView.Render(m.dossier, focused))
	}

	if m.loadingChat {
		parts = append(parts, m.spin.View()+" loading conversation…")
	}

	selected := m.selectedMessage()
	for _, msg := range m.transcript.Messages() {
		isSelected := selected != nil && msg.Role == model.RoleAssistant && msg.ID == selected.ID
		parts = append(parts, m.messageView.Render(msg, isSelected))
	}

	return strings.Join(parts, "\n\n")
}

// =============================================================================
// INPUT AND STATUS
// =============================================================================

func (m *Model) renderInput() string {
	prompt := m.theme.InputPrompt.Render("❯ ")
	if m.focus == FocusWizard && m.wizard != nil {
		prompt = m.theme.InputPrompt.Render(m.wizard.current().label + " ❯ ")
	}
	return m.theme.InputContainer.Width(m.width).Render(prompt + m.input.View())
}

func (m *Model) renderStatusBar() string {
	shortcuts := m.shortcuts()
	note := m.status
	if m.wizard != nil && m.wizard.status != "" {
		note = m.wizard.status
	}
	if m.engine.Streaming() {
		note = m.spin.View() + " analyzing"
	}
	return m.statusBar.Render(shortcuts, note)
}

func (m *Model) shortcuts() []components.Shortcut {
	switch m.focus {
	case FocusSidebar:
		return []components.Shortcut{
			{Key: "↑/↓", Desc: "navigate"},
			{Key: "enter", Desc: "open"},
			{Key: "/", Desc: "filter"},
			{Key: "d", Desc: "delete"},
			{Key: "esc", Desc: "back"},
		}
	case FocusTranscript:
		return []components.Shortcut{
			{Key: "ctrl+u/d", Desc: "scroll"},
			{Key: "[/]", Desc: "select message"},
			{Key: "\\", Desc: "auto select"},
			{Key: "G", Desc: "follow"},
		}
	case FocusActions:
		return []components.Shortcut{
			{Key: "↑/↓", Desc: "choose action"},
			{Key: "enter", Desc: "run"},
			{Key: "esc", Desc: "back"},
		}
	case FocusWizard:
		return []components.Shortcut{
			{Key: "enter", Desc: "next"},
			{Key: "esc", Desc: "cancel"},
		}
	default:
		return []components.Shortcut{
			{Key: "enter", Desc: "send"},
			{Key: "tab", Desc: "focus"},
			{Key: "ctrl+o", Desc: "upload"},
			{Key: "ctrl+b", Desc: "connect db"},
			{Key: "ctrl+c", Desc: "quit"},
		}
	}
}
