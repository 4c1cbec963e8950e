// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api implements the REST and streaming client for the Consigliere
// backend.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/morganforge/consigliere-tui/internal/logging"
)

// OpenStream sends a question on a chat and returns the response body, a
// live stream of newline-delimited JSON events. The caller owns the body and
// must close it; cancellation happens through ctx, never a client timeout.
//
// A non-2xx status on open is a fatal transport error for the send.
func (c *Client) OpenStream(ctx context.Context, chatID, content string) (io.ReadCloser, error) {
	body, err := json.Marshal(sendRequest{Content: content})
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	url := c.baseURL + "/messages/" + chatID
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/x-ndjson")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	// Streaming sends share the REST pacing budget.
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	resp, err := c.streamC.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrServerUnavailable, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer resp.Body.Close()
		detail := ""
		var ed errorDetail
		if data, readErr := io.ReadAll(io.LimitReader(resp.Body, 4096)); readErr == nil {
			if json.Unmarshal(data, &ed) == nil {
				detail = ed.Detail
			}
		}
		logging.L().Warnw("stream open failed",
			"chat_id", chatID,
			"status", resp.StatusCode,
			"detail", detail)
		return nil, &APIError{StatusCode: resp.StatusCode, Detail: detail}
	}

	logging.L().Debugw("stream opened", "chat_id", chatID)
	return resp.Body, nil
}
