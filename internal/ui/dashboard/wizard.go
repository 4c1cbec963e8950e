// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package dashboard implements the main TUI: sidebar, transcript, step
// panel, dossier, and the input line.
//
// This file implements the onboarding wizard: upload a spreadsheet or
// connect a database, then analyze into a dossier-backed chat.
package dashboard

import (
	"strconv"
	"strings"

	"github.com/morganforge/consigliere-tui/internal/api"
)

type wizardKind int

const (
	wizardUpload wizardKind = iota
	wizardConnect
)

type wizardField struct {
	label   string
	value   string
	secret  bool
	initial string
}

// wizardState drives the sequential prompt flow.
type wizardState struct {
	kind   wizardKind
	fields []wizardField
	idx    int

	// busy marks an in-flight upload/analyze/connect; input is ignored
	// until the result message lands.
	busy   bool
	status string
}

func newUploadWizard() *wizardState {
	return &wizardState{
		kind: wizardUpload,
		fields: []wizardField{
			{label: "File path"},
		},
	}
}

func newConnectWizard() *wizardState {
	return &wizardState{
		kind: wizardConnect,
		fields: []wizardField{
			{label: "Connection name"},
			{label: "Host", initial: "localhost"},
			{label: "Port", initial: "5432"},
			{label: "Database"},
			{label: "Username"},
			{label: "Password", secret: true},
		},
	}
}

// current returns the field being prompted.
func (w *wizardState) current() *wizardField {
	return &w.fields[w.idx]
}

// advance stores the submitted value and moves to the next field. Returns
// true when every field is filled.
func (w *wizardState) advance(value string) bool {
	value = strings.TrimSpace(value)
	if value == "" {
		value = w.fields[w.idx].initial
	}
	w.fields[w.idx].value = value
	if w.idx+1 < len(w.fields) {
		w.idx++
		return false
	}
	return true
}

// uploadPath returns the entered file path for an upload wizard.
func (w *wizardState) uploadPath() string {
	return w.fields[0].value
}

// connectionRequest assembles the connect form.
func (w *wizardState) connectionRequest() api.ConnectionRequest {
	port, err := strconv.Atoi(w.fields[2].value)
	if err != nil || port <= 0 {
		port = 5432
	}
	return api.ConnectionRequest{
		Name:       w.fields[0].value,
		DriverName: "postgresql",
		Host:       w.fields[1].value,
		Port:       port,
		Database:   w.fields[3].value,
		Username:   w.fields[4].value,
		Password:   w.fields[5].value,
	}
}
