// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package stream

import (
	"context"
	"io"
	"strings"
	"testing"
)

// chunkReader yields the input in fixed-size chunks to exercise partial
// line buffering.
type chunkReader struct {
	data []byte
	size int
	pos  int
}

func (c *chunkReader) Read(p []byte) (int, error) {
	if c.pos >= len(c.data) {
		return 0, io.EOF
	}
	end := c.pos + c.size
	if end > len(c.data) {
		end = len(c.data)
	}
	n := copy(p, c.data[c.pos:end])
	c.pos += n
	return n, nil
}

func collectEvents(t *testing.T, rd *Reader) []*Event {
	t.Helper()
	var events []*Event
	for {
		ev, err := rd.Next(context.Background())
		if err == io.EOF {
			return events
		}
		if err != nil {
			t.Fatalf("Next failed: %v", err)
		}
		events = append(events, ev)
	}
}

func TestReaderDecodesEvents(t *testing.T) {
	body := `{"type":"step_start","step_number":0,"description":"Analyzing request and planning..."}
{"type":"step_result","data":{"step_number":1,"type":"table","data":[{"a":1}]}}
{"type":"final","message_id":"srv-1"}
`
	events := collectEvents(t, NewReader(strings.NewReader(body)))
	if len(events) != 3 {
		t.Fatalf("got %d events, want 3", len(events))
	}
	if events[0].Type != EventStepStart || events[0].StepNumber != 0 {
		t.Errorf("first event = %+v", events[0])
	}
	if events[2].MessageID != "srv-1" {
		t.Errorf("final message id = %q", events[2].MessageID)
	}
}

func TestReaderBuffersPartialLines(t *testing.T) {
	body := `{"type":"step_start","step_number":1,"description":"Loading data"}` + "\n" +
		`{"type":"step_result","data":{"step_number":1,"type":"text","data":"42 rows"}}` + "\n"

	// Chunks of 7 bytes guarantee every line arrives fragmented.
	rd := NewReader(&chunkReader{data: []byte(body), size: 7})
	events := collectEvents(t, rd)
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
	step, err := events[1].StepResult()
	if err != nil {
		t.Fatalf("StepResult: %v", err)
	}
	if step.Text() != "42 rows" {
		t.Errorf("step text = %q", step.Text())
	}
}

func TestReaderSkipsMalformedLines(t *testing.T) {
	body := "not json at all\n" +
		`{"broken":` + "\n" +
		`{"type":"final","message_id":"srv-9"}` + "\n"

	events := collectEvents(t, NewReader(strings.NewReader(body)))
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
	if events[0].Type != EventFinal {
		t.Errorf("event = %+v", events[0])
	}
}

func TestReaderHandlesMissingTrailingNewline(t *testing.T) {
	body := `{"type":"final","message_id":"srv-2"}`
	events := collectEvents(t, NewReader(strings.NewReader(body)))
	if len(events) != 1 || events[0].MessageID != "srv-2" {
		t.Fatalf("events = %+v", events)
	}
}

func TestReaderSkipsBlankLines(t *testing.T) {
	body := "\n\n" + `{"type":"final","message_id":"x"}` + "\n\n"
	events := collectEvents(t, NewReader(strings.NewReader(body)))
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
}

func TestReaderContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	rd := NewReader(strings.NewReader(`{"type":"final"}` + "\n"))
	if _, err := rd.Next(ctx); err == nil {
		t.Error("expected context error after cancellation")
	}
}
