// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package stream consumes the newline-delimited JSON event stream produced
// by an analysis run and applies it to the pending transcript message.
package stream

import (
	"bufio"
	"bytes"
	"context"
	"io"

	"github.com/morganforge/consigliere-tui/internal/logging"
)

// maxLineSize bounds a single event line. Table payloads are capped
// server-side well below this.
const maxLineSize = 4 * 1024 * 1024

// Reader splits a stream body into decoded events. Partial reads are
// buffered: only complete newline-terminated lines are decoded, with the
// trailing fragment retained until the next read. A line that fails to
// decode is logged and skipped, never fatal.
type Reader struct {
	r *bufio.Reader
}

// NewReader wraps a stream body.
func NewReader(body io.Reader) *Reader {
	return &Reader{r: bufio.NewReaderSize(body, 64*1024)}
}

// Next returns the next decoded event, or io.EOF when the stream ends.
// Malformed and blank lines are consumed silently.
func (rd *Reader) Next(ctx context.Context) (*Event, error) {
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		line, err := rd.readLine()
		if err != nil {
			if err == io.EOF && len(line) > 0 {
				// The stream may end without a trailing newline.
				if ev := rd.tryDecode(line); ev != nil {
					return ev, nil
				}
			}
			return nil, err
		}

		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}
		if ev := rd.tryDecode(line); ev != nil {
			return ev, nil
		}
	}
}

// readLine reads one newline-terminated line. bufio accumulates across
// buffer boundaries, so a fragment split mid-JSON is never decoded alone.
func (rd *Reader) readLine() ([]byte, error) {
	line, err := rd.r.ReadBytes('\n')
	if err == nil && len(line) > maxLineSize {
		logging.L().Warnw("dropping oversized stream line", "bytes", len(line))
		return nil, nil
	}
	return line, err
}

func (rd *Reader) tryDecode(line []byte) *Event {
	ev, err := decodeEvent(line)
	if err != nil {
		logging.L().Warnw("skipping malformed stream line",
			"error", err,
			"line_bytes", len(line))
		return nil
	}
	if ev.Type == "" {
		logging.L().Warnw("skipping stream line without event type")
		return nil
	}
	return ev
}
