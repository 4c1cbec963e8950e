// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package stream consumes the newline-delimited JSON event stream produced
// by an analysis run and applies it to the pending transcript message.
//
// The engine owns exactly one pending message id at a time. Every decoded
// event becomes one transcript mutation, visible to the UI immediately; the
// loading state is cleared on every exit path, including panic.
package stream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/morganforge/consigliere-tui/internal/logging"
	"github.com/morganforge/consigliere-tui/internal/model"
)

// criticalErrorText replaces the pending message when the stream dies
// without a server-supplied explanation.
const criticalErrorText = "**Critical Error:** The analysis stream was interrupted. Please try again."

// ErrSendInFlight is returned when a send is attempted while another send's
// stream is still open on the same transcript.
var ErrSendInFlight = errors.New("a message is already streaming")

// Opener opens one streaming send. Satisfied by *api.Client.
type Opener interface {
	OpenStream(ctx context.Context, chatID, content string) (io.ReadCloser, error)
}

// =============================================================================
// ENGINE
// =============================================================================

// Engine drives one streaming send at a time against a transcript.
type Engine struct {
	opener Opener

	mu       sync.Mutex
	inFlight bool
}

// NewEngine creates an engine over the given stream opener.
func NewEngine(opener Opener) *Engine {
	return &Engine{opener: opener}
}

// Streaming reports whether a send is currently in flight.
func (e *Engine) Streaming() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.inFlight
}

func (e *Engine) acquire() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.inFlight {
		return false
	}
	e.inFlight = true
	return true
}

func (e *Engine) release() {
	e.mu.Lock()
	e.inFlight = false
	e.mu.Unlock()
}

// Run appends the outgoing user message and a pending assistant message to
// the transcript, opens the stream, and applies events until the stream
// ends. notify, if non-nil, runs after every transcript mutation so the UI
// can re-render between chunks. Run returns only after the stream is fully
// consumed or fatally broken.
func (e *Engine) Run(ctx context.Context, t *model.Transcript, chatID, content string, notify func()) error {
	if !e.acquire() {
		return ErrSendInFlight
	}
	defer e.release()

	if notify == nil {
		notify = func() {}
	}

	t.AppendUser(content)
	pending := t.AppendPending()
	if pending == nil {
		return ErrSendInFlight
	}
	pendingID := pending.ID
	notify()

	finalized := false

	// RELIABILITY: The pending message must never be left spinning. Any
	// exit path that did not finalize it, panic included, marks it failed.
	defer func() {
		if r := recover(); r != nil {
			logging.L().Errorw("stream ingestion panicked", "panic", r)
			e.fail(t, pendingID, criticalErrorText)
			notify()
			return
		}
		if !finalized {
			if msg := t.Get(pendingID); msg != nil && !msg.State.Terminal() {
				e.fail(t, pendingID, criticalErrorText)
				notify()
			}
		}
	}()

	body, err := e.opener.OpenStream(ctx, chatID, content)
	if err != nil {
		e.fail(t, pendingID, fmt.Sprintf("**Error:** %v", err))
		finalized = true
		notify()
		return err
	}
	defer body.Close()

	rd := NewReader(body)
	sawFinalPayload := false

	for {
		ev, err := rd.Next(ctx)
		if err != nil {
			if err == io.EOF {
				break
			}
			e.fail(t, pendingID, criticalErrorText)
			finalized = true
			notify()
			return err
		}

		// pendingID may have been swapped by a final event.
		pendingID = e.apply(t, pendingID, ev, &sawFinalPayload, &finalized)
		notify()
	}

	// A stream that delivered the final payload but died before the
	// persistence confirmation still has a complete answer.
	if !finalized && sawFinalPayload {
		t.Patch(pendingID, func(m *model.Message) {
			m.State = model.StateFinalized
		})
		finalized = true
		notify()
	}
	return nil
}

// apply performs one event's transcript mutation and returns the (possibly
// swapped) pending message id.
func (e *Engine) apply(t *model.Transcript, pendingID string, ev *Event, sawFinalPayload, finalized *bool) string {
	// Once the message is terminal, trailing events are drained but must
	// not mutate it.
	if *finalized {
		logging.L().Debugw("ignoring event after terminal state", "type", ev.Type)
		return pendingID
	}

	switch ev.Type {
	case EventStepStart:
		t.Patch(pendingID, func(m *model.Message) {
			if ev.StepNumber == 0 {
				m.State = model.StateAwaitingPlan
			} else {
				m.State = model.StateStreaming
			}
			m.CurrentStep = ev.StepNumber
			// The first description becomes the placeholder content;
			// later step_start events never overwrite it.
			if m.Content == "" && ev.Description != "" {
				m.Content = ev.Description + "..."
			}
		})

	case EventStepResult:
		step, err := ev.StepResult()
		if err != nil {
			logging.L().Warnw("skipping undecodable step_result", "error", err)
			return pendingID
		}
		t.Patch(pendingID, func(m *model.Message) {
			m.State = model.StateStreaming
			// Steps are immutable once appended; growth is a fresh slice.
			steps := make([]model.StepResult, len(m.Steps), len(m.Steps)+1)
			copy(steps, m.Steps)
			m.Steps = append(steps, *step)
		})

	case EventFinalResult:
		payload, err := ev.FinalResult()
		if err != nil {
			logging.L().Warnw("skipping undecodable final_result", "error", err)
			return pendingID
		}
		t.Patch(pendingID, func(m *model.Message) {
			m.Content = payload.Text
			// The final list is authoritative: it replaces streamed steps
			// rather than merging with them.
			m.Steps = payload.Steps
			m.Plan = payload.Plan
			if payload.Code != "" {
				m.RelatedCode = &model.RelatedCode{Type: "python", Code: payload.Code}
			}
		})
		*sawFinalPayload = true

	case EventFinal:
		// The provisional id is swapped exactly once.
		if ev.MessageID != "" && ev.MessageID != pendingID {
			if t.ReplaceID(pendingID, ev.MessageID) {
				pendingID = ev.MessageID
			}
		}
		t.Patch(pendingID, func(m *model.Message) {
			m.State = model.StateFinalized
		})
		*finalized = true

	case EventError:
		// Terminal for the message, not for the transport.
		e.fail(t, pendingID, fmt.Sprintf("**Error:** %s", ev.Message))
		*finalized = true

	default:
		logging.L().Debugw("ignoring unknown stream event", "type", ev.Type)
	}
	return pendingID
}

func (e *Engine) fail(t *model.Transcript, id, content string) {
	t.Patch(id, func(m *model.Message) {
		m.Content = content
		m.State = model.StateFailed
	})
}
