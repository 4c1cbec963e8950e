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
// STEP GROUPING
// =============================================================================

// StepGroup is one rendered unit of a step timeline: either a single step
// or a gallery of consecutive image steps.
type StepGroup struct {
	// Steps holds one step, or two or more image steps for a gallery.
	Steps []model.StepResult
}

// Gallery reports whether the group renders as an image grid.
func (g StepGroup) Gallery() bool {
	return len(g.Steps) > 1
}

// GroupSteps partitions a step sequence for display: every maximal run of
// two or more consecutive image steps collapses into one gallery group; an
// isolated image stays a plain timeline entry. Pure function — identical
// input always yields identical grouping, since the timeline re-renders
// repeatedly while the step list grows.
func GroupSteps(steps []model.StepResult) []StepGroup {
	var groups []StepGroup
	i := 0
	for i < len(steps) {
		if steps[i].Kind == model.StepKindImage {
			j := i + 1
			for j < len(steps) && steps[j].Kind == model.StepKindImage {
				j++
			}
			if j-i > 1 {
				run := make([]model.StepResult, j-i)
				copy(run, steps[i:j])
				groups = append(groups, StepGroup{Steps: run})
				i = j
				continue
			}
		}
		groups = append(groups, StepGroup{Steps: []model.StepResult{steps[i]}})
		i++
	}
	return groups
}

// =============================================================================
// STEP TIMELINE RENDERER
// =============================================================================

// StepView renders a message's step timeline for the side panel.
type StepView struct {
	theme *styles.Theme
	width int

	// ResolveAsset turns server-relative image paths into absolute URLs.
	ResolveAsset func(string) string
}

// NewStepView creates a step timeline renderer.
func NewStepView(theme *styles.Theme) *StepView {
	return &StepView{
		theme:        theme,
		width:        40,
		ResolveAsset: func(s string) string { return s },
	}
}

// SetWidth sets the panel content width.
func (v *StepView) SetWidth(width int) {
	if width < 20 {
		width = 20
	}
	v.width = width
}

// Render renders the grouped timeline for a message's steps.
func (v *StepView) Render(steps []model.StepResult) string {
	if len(steps) == 0 {
		return lipgloss.NewStyle().Foreground(styles.TextMuted).
			Render("No analysis steps for this message.")
	}

	groups := GroupSteps(steps)
	var parts []string
	for _, g := range groups {
		if g.Gallery() {
			parts = append(parts, v.renderGallery(g.Steps))
		} else {
			parts = append(parts, v.renderStep(g.Steps[0]))
		}
	}
	return strings.Join(parts, "\n\n")
}

// renderStep renders one timeline entry.
func (v *StepView) renderStep(step model.StepResult) string {
	marker := v.theme.StepMarker
	if step.Kind == model.StepKindError {
		marker = v.theme.StepError
	}

	header := marker.Render(fmt.Sprintf("● Step %d", step.StepNumber))
	if step.StepType != "" {
		header += "  " + lipgloss.NewStyle().Foreground(styles.TextMuted).Render(step.StepType)
	}

	var body []string
	if step.Description != "" {
		body = append(body, lipgloss.NewStyle().
			Foreground(styles.TextPrimary).Bold(true).
			Render(util.TruncateWidth(step.Description, v.width)))
	}

	switch step.Kind {
	case model.StepKindImage:
		if path, ok := step.ImagePath(); ok {
			body = append(body, v.theme.GalleryFrame.Render(
				"🖼  "+util.TruncateWidth(v.ResolveAsset(path), v.width-6)))
		}
	case model.StepKindTable:
		if rows, ok := step.TableRows(); ok {
			body = append(body, RenderTable(rows, v.width, step.TotalRows))
		}
	case model.StepKindError:
		body = append(body, v.theme.ErrorText.Render(
			"Error: "+util.TruncateWidth(step.Text(), v.width-7)))
	default:
		if text := strings.TrimSpace(step.Text()); text != "" {
			body = append(body, lipgloss.NewStyle().
				Foreground(styles.TextSecondary).
				Width(v.width).
				Render(text))
		}
	}

	indent := lipgloss.NewStyle().PaddingLeft(2)
	return header + "\n" + indent.Render(strings.Join(body, "\n"))
}

// renderGallery renders a run of image steps as one grid entry.
func (v *StepView) renderGallery(steps []model.StepResult) string {
	first := steps[0].StepNumber
	last := steps[len(steps)-1].StepNumber
	header := v.theme.StepMarker.Render(fmt.Sprintf("● Steps %d–%d", first, last)) +
		"  " + lipgloss.NewStyle().Foreground(styles.TextMuted).Render("visual analysis")

	var figures []string
	for _, step := range steps {
		path, ok := step.ImagePath()
		if !ok {
			continue
		}
		caption := fmt.Sprintf("Fig %d", step.StepNumber)
		if step.Description != "" {
			caption += ": " + step.Description
		}
		figures = append(figures, v.theme.GalleryFrame.Render(
			"🖼  "+util.TruncateWidth(v.ResolveAsset(path), v.width-6))+
			"\n"+lipgloss.NewStyle().Foreground(styles.TextMuted).
			Render(util.TruncateWidth(caption, v.width-2)))
	}

	indent := lipgloss.NewStyle().PaddingLeft(2)
	return header + "\n" + indent.Render(strings.Join(figures, "\n"))
}
