// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"

	"github.com/morganforge/consigliere-tui/internal/model"
	"github.com/morganforge/consigliere-tui/internal/ui/styles"
)

func step(n int, kind model.StepKind, data string) model.StepResult {
	payload, _ := json.Marshal(data)
	if kind == model.StepKindTable {
		payload = []byte(data)
	}
	return model.StepResult{StepNumber: n, Kind: kind, Data: payload}
}

func kinds(groups []StepGroup) [][]model.StepKind {
	var out [][]model.StepKind
	for _, g := range groups {
		var ks []model.StepKind
		for _, s := range g.Steps {
			ks = append(ks, s.Kind)
		}
		out = append(out, ks)
	}
	return out
}

func TestGroupSteps(t *testing.T) {
	img := model.StepKindImage
	tbl := model.StepKindTable
	txt := model.StepKindText

	tests := []struct {
		name  string
		steps []model.StepResult
		want  [][]model.StepKind
	}{
		{
			name:  "empty",
			steps: nil,
			want:  nil,
		},
		{
			name: "no images",
			steps: []model.StepResult{
				step(1, tbl, `[]`), step(2, txt, "a"),
			},
			want: [][]model.StepKind{{tbl}, {txt}},
		},
		{
			name: "isolated image stays single",
			steps: []model.StepResult{
				step(1, tbl, `[]`), step(2, img, "/a.png"), step(3, txt, "x"),
			},
			want: [][]model.StepKind{{tbl}, {img}, {txt}},
		},
		{
			name: "run of two images collapses",
			steps: []model.StepResult{
				step(1, img, "/a.png"), step(2, img, "/b.png"),
			},
			want: [][]model.StepKind{{img, img}},
		},
		{
			name: "maximal run, not pairs",
			steps: []model.StepResult{
				step(1, img, "/a.png"), step(2, img, "/b.png"), step(3, img, "/c.png"),
			},
			want: [][]model.StepKind{{img, img, img}},
		},
		{
			name: "two separate runs",
			steps: []model.StepResult{
				step(1, img, "/a.png"), step(2, img, "/b.png"),
				step(3, txt, "between"),
				step(4, img, "/c.png"), step(5, img, "/d.png"),
			},
			want: [][]model.StepKind{{img, img}, {txt}, {img, img}},
		},
		{
			name: "trailing isolated image",
			steps: []model.StepResult{
				step(1, txt, "a"), step(2, img, "/a.png"),
			},
			want: [][]model.StepKind{{txt}, {img}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := kinds(GroupSteps(tt.steps))
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("GroupSteps kinds = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGroupStepsIsPure(t *testing.T) {
	steps := []model.StepResult{
		step(1, model.StepKindImage, "/a.png"),
		step(2, model.StepKindImage, "/b.png"),
		step(3, model.StepKindText, "x"),
	}
	first := kinds(GroupSteps(steps))
	for i := 0; i < 10; i++ {
		if got := kinds(GroupSteps(steps)); !reflect.DeepEqual(got, first) {
			t.Fatalf("grouping not deterministic: %v vs %v", got, first)
		}
	}
}

func TestGroupStepsDoesNotAliasInput(t *testing.T) {
	steps := []model.StepResult{
		step(1, model.StepKindImage, "/a.png"),
		step(2, model.StepKindImage, "/b.png"),
	}
	groups := GroupSteps(steps)
	groups[0].Steps[0].StepNumber = 99
	if steps[0].StepNumber != 1 {
		t.Error("gallery group must copy steps, not alias the input slice")
	}
}

func TestStepViewRenderGallery(t *testing.T) {
	v := NewStepView(styles.NewTheme())
	v.SetWidth(60)
	v.ResolveAsset = func(p string) string { return "http://x" + p }

	out := v.Render([]model.StepResult{
		{StepNumber: 1, Kind: model.StepKindImage, Data: json.RawMessage(`"/a.png"`), Description: "Revenue chart"},
		{StepNumber: 2, Kind: model.StepKindImage, Data: json.RawMessage(`"/b.png"`)},
	})
	if !strings.Contains(out, "Steps 1–2") {
		t.Errorf("gallery header missing: %q", out)
	}
	if !strings.Contains(out, "http://x/a.png") {
		t.Errorf("asset resolution missing: %q", out)
	}
	if !strings.Contains(out, "Fig 1: Revenue chart") {
		t.Errorf("caption missing: %q", out)
	}
}

func TestStepViewRenderErrorStep(t *testing.T) {
	v := NewStepView(styles.NewTheme())
	v.SetWidth(60)
	out := v.Render([]model.StepResult{
		{StepNumber: 2, Kind: model.StepKindError, Data: json.RawMessage(`"Security Error: import os"`)},
	})
	if !strings.Contains(out, "Security Error") {
		t.Errorf("error text missing: %q", out)
	}
}
