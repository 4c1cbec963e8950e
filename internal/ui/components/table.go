// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides UI components for the Consigliere TUI.
package components

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/morganforge/consigliere-tui/internal/ui/styles"
	"github.com/morganforge/consigliere-tui/internal/util"
)

const (
	// maxTableRows bounds rendering; the backend reports totals separately.
	maxTableRows = 20
	// maxColWidth keeps one wide column from eating the panel.
	maxColWidth = 24
)

// =============================================================================
// RESULT TABLE
// =============================================================================

// RenderTable renders result rows (column name → cell value) as an aligned
// grid. Column order is sorted for determinism since the rows arrive as
// JSON maps.
func RenderTable(rows []map[string]any, maxWidth int, totalRows int) string {
	if len(rows) == 0 {
		return lipgloss.NewStyle().Foreground(styles.TextMuted).Render("(no rows)")
	}

	cols := columnOrder(rows)
	display := rows
	if len(display) > maxTableRows {
		display = display[:maxTableRows]
	}

	// Column widths from header and visible cells.
	widths := make([]int, len(cols))
	for i, col := range cols {
		widths[i] = runewidth.StringWidth(col)
	}
	for _, row := range display {
		for i, col := range cols {
			if w := runewidth.StringWidth(cellText(row[col])); w > widths[i] {
				widths[i] = w
			}
		}
	}
	for i := range widths {
		if widths[i] > maxColWidth {
			widths[i] = maxColWidth
		}
	}

	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(styles.Cyan)
	cellStyle := lipgloss.NewStyle().Foreground(styles.TextPrimary)
	mutedStyle := lipgloss.NewStyle().Foreground(styles.TextMuted)

	var sb strings.Builder
	var headerCells []string
	for i, col := range cols {
		headerCells = append(headerCells, headerStyle.Render(util.PadWidth(col, widths[i])))
	}
	sb.WriteString(strings.Join(headerCells, "  "))
	sb.WriteString("\n")

	var rule []string
	for _, w := range widths {
		rule = append(rule, strings.Repeat("─", w))
	}
	sb.WriteString(mutedStyle.Render(strings.Join(rule, "  ")))
	sb.WriteString("\n")

	for _, row := range display {
		var cells []string
		for i, col := range cols {
			cells = append(cells, cellStyle.Render(util.PadWidth(cellText(row[col]), widths[i])))
		}
		sb.WriteString(strings.Join(cells, "  "))
		sb.WriteString("\n")
	}

	if totalRows > len(display) {
		sb.WriteString(mutedStyle.Render(
			fmt.Sprintf("… %d of %d rows", len(display), totalRows)))
		sb.WriteString("\n")
	} else if len(rows) > len(display) {
		sb.WriteString(mutedStyle.Render(
			fmt.Sprintf("… %d of %d rows", len(display), len(rows))))
		sb.WriteString("\n")
	}

	out := strings.TrimRight(sb.String(), "\n")
	if maxWidth > 0 {
		var clipped []string
		for _, line := range strings.Split(out, "\n") {
			clipped = append(clipped, truncateANSI(line, maxWidth))
		}
		out = strings.Join(clipped, "\n")
	}
	return out
}

// columnOrder returns the union of column names across rows, sorted.
func columnOrder(rows []map[string]any) []string {
	seen := make(map[string]bool)
	var cols []string
	for _, row := range rows {
		for col := range row {
			if !seen[col] {
				seen[col] = true
				cols = append(cols, col)
			}
		}
	}
	sort.Strings(cols)
	return cols
}

// numPrinter groups digits so large aggregates stay readable.
var numPrinter = message.NewPrinter(language.English)

// cellText formats a JSON-decoded cell value. Whole-number floats print
// without the decimal tail.
func cellText(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return util.TruncateWidth(val, maxColWidth)
	case float64:
		if val == float64(int64(val)) {
			return numPrinter.Sprintf("%d", int64(val))
		}
		return numPrinter.Sprintf("%.2f", val)
	case bool:
		return fmt.Sprintf("%t", val)
	default:
		return util.TruncateWidth(fmt.Sprintf("%v", val), maxColWidth)
	}
}

// truncateANSI clips a styled line by display width without splitting
// escape sequences.
func truncateANSI(line string, maxWidth int) string {
	if lipgloss.Width(line) <= maxWidth {
		return line
	}
	// Re-render without mid-sequence cuts: strip to plain text first.
	return util.TruncateWidth(stripANSI(line), maxWidth)
}

func stripANSI(s string) string {
	var sb strings.Builder
	inEscape := false
	for _, r := range s {
		switch {
		case inEscape:
			if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
				inEscape = false
			}
		case r == '\x1b':
			inEscape = true
		default:
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
