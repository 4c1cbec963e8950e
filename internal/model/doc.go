// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for transcripts, messages,
// analysis steps, and dossiers.
//
// The central type is Transcript, which exclusively owns the ordered
// message list of the active conversation. Streaming code never touches
// messages directly; it mutates through the Transcript API, which produces
// a fresh slice per mutation so the rendering layer can cheaply detect
// change.
//
// StepResult payloads are kept as raw JSON and decoded through typed
// accessors, because the payload shape depends on the rendering kind
// (image path, row array, or plain string).
package model
