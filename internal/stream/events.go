// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package stream consumes the newline-delimited JSON event stream produced
// by an analysis run and applies it to the pending transcript message.
package stream

import (
	"encoding/json"

	"github.com/morganforge/consigliere-tui/internal/model"
)

// =============================================================================
// WIRE EVENTS
// =============================================================================

// EventType discriminates stream events.
type EventType string

const (
	// EventStepStart announces a step beginning. Step number zero is the
	// planning phase.
	EventStepStart EventType = "step_start"
	// EventStepResult carries one completed step's payload.
	EventStepResult EventType = "step_result"
	// EventFinalResult carries the authoritative final payload: summary
	// text, the complete step list, the plan, and the code log.
	EventFinalResult EventType = "final_result"
	// EventFinal confirms persistence and carries the server message id.
	EventFinal EventType = "final"
	// EventError replaces the pending message with server error text.
	EventError EventType = "error"
)

// Event is one decoded line of the stream. Only the fields for the event's
// type are populated.
type Event struct {
	Type EventType `json:"type"`

	// step_start
	StepNumber  int    `json:"step_number"`
	Description string `json:"description"`
	StepType    string `json:"step_type"`

	// step_result / final_result carry a payload in Data.
	Data json.RawMessage `json:"data"`

	// final
	MessageID string `json:"message_id"`

	// error
	Message string `json:"message"`
}

// FinalPayload is the data field of a final_result event. Steps is the
// complete authoritative list: it replaces whatever step_result events
// accumulated, it is not merged with them.
type FinalPayload struct {
	Text  string             `json:"text"`
	Steps []model.StepResult `json:"steps"`
	Plan  *model.Plan        `json:"plan"`
	Code  string             `json:"code"`
}

// decodeEvent parses one stream line. An error means the line is not valid
// JSON for an event; callers skip such lines.
func decodeEvent(line []byte) (*Event, error) {
	var ev Event
	if err := json.Unmarshal(line, &ev); err != nil {
		return nil, err
	}
	return &ev, nil
}

// StepResult decodes a step_result payload.
func (e *Event) StepResult() (*model.StepResult, error) {
	var step model.StepResult
	if err := json.Unmarshal(e.Data, &step); err != nil {
		return nil, err
	}
	return &step, nil
}

// FinalResult decodes a final_result payload.
func (e *Event) FinalResult() (*FinalPayload, error) {
	var payload FinalPayload
	if err := json.Unmarshal(e.Data, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}
