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
	"github.com/morganforge/consigliere-tui/internal/util"
)

// =============================================================================
// DOSSIER VIEW
// =============================================================================

// DossierView renders the analysis briefing shown when a chat opens. The
// recommended actions are selectable; a chosen action feeds the same send
// path as typed input.
type DossierView struct {
	theme *styles.Theme
	width int
}

// NewDossierView creates a dossier renderer.
func NewDossierView(theme *styles.Theme) *DossierView {
	return &DossierView{theme: theme, width: 72}
}

// SetWidth sets the content width.
func (v *DossierView) SetWidth(width int) {
	if width < 30 {
		width = 30
	}
	v.width = width
}

// Render renders the dossier. focusedAction is the index of the highlighted
// recommended action, or -1 when none is focused.
func (v *DossierView) Render(d *model.Dossier, focusedAction int) string {
	if d == nil {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(v.theme.DossierTitle.Render("⬖ DOSSIER"))
	if d.FileType != "" {
		sb.WriteString("  ")
		sb.WriteString(lipgloss.NewStyle().Foreground(styles.TextMuted).Render(d.FileType))
	}
	sb.WriteString("\n\n")

	if d.Briefing != "" {
		sb.WriteString(RenderMarkdown(d.Briefing, v.width-6))
		sb.WriteString("\n")
	}

	if len(d.KeyEntities) > 0 {
		sb.WriteString(lipgloss.NewStyle().Bold(true).Foreground(styles.Cyan).
			Render("Key entities"))
		sb.WriteString("\n")
		sb.WriteString(lipgloss.NewStyle().Foreground(styles.TextSecondary).
			Render("  " + util.TruncateWidth(strings.Join(d.KeyEntities, " · "), v.width-4)))
		sb.WriteString("\n\n")
	}

	if d.HasActions() {
		sb.WriteString(lipgloss.NewStyle().Bold(true).Foreground(styles.Cyan).
			Render("Recommended actions"))
		sb.WriteString("\n")
		for i, action := range d.RecommendedActions {
			line := fmt.Sprintf("%d. %s", i+1, util.TruncateWidth(action, v.width-8))
			if i == focusedAction {
				sb.WriteString(v.theme.ActionFocused.Render("▸ " + line))
			} else {
				sb.WriteString(v.theme.ActionItem.Render(line))
			}
			sb.WriteString("\n")
		}
	}

	return v.theme.DossierBox.Width(v.width).Render(strings.TrimRight(sb.String(), "\n"))
}
