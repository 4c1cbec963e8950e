// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides UI components for the Consigliere TUI.
package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/morganforge/consigliere-tui/internal/model"
	"github.com/morganforge/consigliere-tui/internal/ui/styles"
)

// =============================================================================
// MESSAGE RENDERER
// =============================================================================

// MessageView renders transcript messages for the main viewport.
type MessageView struct {
	theme *styles.Theme
	width int

	codeView *CodeView
}

// NewMessageView creates a message renderer.
func NewMessageView(theme *styles.Theme) *MessageView {
	return &MessageView{
		theme:    theme,
		width:    80,
		codeView: NewCodeView(theme),
	}
}

// SetWidth sets the transcript content width.
func (v *MessageView) SetWidth(width int) {
	if width < 30 {
		width = 30
	}
	v.width = width
	v.codeView.SetMaxWidth(width)
}

// Render renders one message. selected marks the message driving the side
// panel.
func (v *MessageView) Render(msg *model.Message, selected bool) string {
	var out string
	switch msg.Role {
	case model.RoleUser:
		out = v.theme.UserBubble.MaxWidth(v.width - 4).Render(msg.Content)
	default:
		out = v.renderAssistant(msg)
	}

	if selected && msg.Role == model.RoleAssistant {
		return v.theme.MessageSelected.Render(out)
	}
	return out
}

func (v *MessageView) renderAssistant(msg *model.Message) string {
	label := v.theme.AssistantLabel.Render(msg.Role.DisplayName())

	if msg.Pending() {
		status := v.streamingStatus(msg)
		return label + "\n" + status
	}

	var sb strings.Builder
	sb.WriteString(label)
	sb.WriteString("\n")

	if msg.State == model.StateFailed {
		sb.WriteString(v.theme.ErrorText.Render(msg.Content))
	} else if msg.Content != "" {
		sb.WriteString(strings.TrimRight(RenderMarkdown(msg.Content, v.width-2), "\n"))
	}

	// Single-result projections from stored history.
	if len(msg.TableData) > 0 {
		sb.WriteString("\n")
		sb.WriteString(RenderTable(msg.TableData, v.width-2, 0))
	}
	if msg.ImageData != "" {
		sb.WriteString("\n")
		sb.WriteString(v.theme.GalleryFrame.Render("🖼  " + msg.ImageData))
	}

	if msg.HasSteps() {
		sb.WriteString("\n")
		sb.WriteString(lipgloss.NewStyle().Foreground(styles.TextMuted).Render(
			fmt.Sprintf("⚙ %d analysis steps — press tab to inspect", len(msg.Steps))))
	}

	if code := v.codeView.Render(msg.RelatedCode); code != "" {
		sb.WriteString("\n")
		sb.WriteString(code)
	}

	return sb.String()
}

// streamingStatus renders the live phase line for a pending message.
func (v *MessageView) streamingStatus(msg *model.Message) string {
	switch msg.State {
	case model.StateAwaitingPlan:
		return v.theme.StreamingLabel.Render("◌ Planning…")
	case model.StateStreaming:
		line := fmt.Sprintf("⚡ Executing step %d", msg.CurrentStep)
		if msg.Content != "" {
			line += " — " + msg.Content
		}
		return v.theme.StreamingLabel.Render(line)
	default:
		return v.theme.StreamingLabel.Render("◌ Working…")
	}
}
