// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small shared helpers for the Consigliere client.
package util

import (
	"fmt"
	"time"

	"github.com/mattn/go-runewidth"
)

// UNICODE: Truncation is width-aware so CJK and emoji never break the
// sidebar or table layout mid-character.

// TruncateWidth truncates s to a maximum display width, appending an
// ellipsis when the string was cut.
func TruncateWidth(s string, maxWidth int) string {
	if maxWidth <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= maxWidth {
		return s
	}
	if maxWidth <= 1 {
		return runewidth.Truncate(s, maxWidth, "")
	}
	return runewidth.Truncate(s, maxWidth, "…")
}

// TruncateRunes truncates s to a maximum number of runes, appending "..."
// when the string was cut. Used for previews where column width is not the
// constraint.
func TruncateRunes(s string, maxRunes int) string {
	if maxRunes <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= maxRunes {
		return s
	}
	if maxRunes <= 3 {
		return string(runes[:maxRunes])
	}
	return string(runes[:maxRunes-3]) + "..."
}

// PadWidth pads s with spaces on the right to the given display width,
// truncating first if it is too wide.
func PadWidth(s string, width int) string {
	s = TruncateWidth(s, width)
	return s + spaces(width-runewidth.StringWidth(s))
}

func spaces(n int) string {
	if n <= 0 {
		return ""
	}
	b := make([]byte, n)
	for i := range b {
		b[i] = ' '
	}
	return string(b)
}

// RelativeTime renders a timestamp the way the sidebar shows chat ages:
// "just now", "5m ago", "3h ago", "2d ago", then the date.
func RelativeTime(t time.Time) string {
	return relativeTimeAt(t, time.Now())
}

func relativeTimeAt(t time.Time, now time.Time) string {
	if t.IsZero() {
		return ""
	}
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	case d < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	default:
		return t.Format("Jan 2")
	}
}

// FormatBytes renders a file size for the upload flow ("1.2 MB").
func FormatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(n)/float64(div), "KMGTPE"[exp])
}
