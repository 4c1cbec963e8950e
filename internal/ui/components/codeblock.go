// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides UI components for the Consigliere TUI.
package components

import (
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	chromaStyles "github.com/alecthomas/chroma/v2/styles"
	"github.com/charmbracelet/lipgloss"

	"github.com/morganforge/consigliere-tui/internal/model"
	"github.com/morganforge/consigliere-tui/internal/ui/styles"
)

// =============================================================================
// CODE LOG VIEWER
// =============================================================================

// CodeView renders the analysis code attached to a finalized message: the
// generated script, syntax highlighted, behind a language badge header.
type CodeView struct {
	theme    *styles.Theme
	maxWidth int
}

// NewCodeView creates a code viewer.
func NewCodeView(theme *styles.Theme) *CodeView {
	return &CodeView{theme: theme, maxWidth: 80}
}

// SetMaxWidth bounds the rendered block width.
func (v *CodeView) SetMaxWidth(width int) {
	v.maxWidth = width
}

// Render renders a message's related code, or "" when there is none.
func (v *CodeView) Render(rc *model.RelatedCode) string {
	if rc == nil || strings.TrimSpace(rc.Code) == "" {
		return ""
	}

	code := strings.TrimSpace(rc.Code)
	language := rc.Type
	if language == "" {
		language = "python"
	}

	badge := lipgloss.NewStyle().
		Foreground(styles.TextMuted).
		Background(styles.SurfaceBright).
		Padding(0, 1).
		Bold(true).
		Render(language)

	maxWidth := v.maxWidth - 4
	if maxWidth < 20 {
		maxWidth = 20
	}

	block := lipgloss.NewStyle().
		Background(styles.SurfaceDim).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(styles.Border).
		Padding(1, 2).
		MaxWidth(maxWidth).
		Render(badge + "\n" + highlightCode(code, language))

	return block
}

// =============================================================================
// SYNTAX HIGHLIGHTING
// =============================================================================

// highlightCode applies ANSI-safe syntax highlighting using chroma.
func highlightCode(code, language string) string {
	lexer := lexers.Get(language)
	if lexer == nil {
		lexer = lexers.Analyse(code)
	}
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	style := chromaStyles.Get("monokai")
	if style == nil {
		style = chromaStyles.Fallback
	}

	formatter := formatters.Get("terminal256")
	if formatter == nil {
		formatter = formatters.Fallback
	}

	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return code
	}

	var buf strings.Builder
	if err := formatter.Format(&buf, style, iterator); err != nil {
		return code
	}
	return buf.String()
}
