// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api implements the REST and streaming client for the Consigliere
// backend.
//
// The client wraps two transports: a resty client for the conventional REST
// endpoints (retry with backoff, request pacing, typed error mapping) and a
// bare net/http client without a timeout for the streaming send, where the
// response body stays open for the lifetime of an analysis run.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"

	"github.com/morganforge/consigliere-tui/internal/logging"
	"github.com/morganforge/consigliere-tui/internal/model"
)

const (
	// DefaultTimeout bounds non-streaming requests. The analyze endpoint
	// runs a full AI pass over the file, so it gets its own budget.
	DefaultTimeout = 30 * time.Second

	// analyzeTimeout covers dossier generation.
	analyzeTimeout = 5 * time.Minute

	retryWaitTime    = 500 * time.Millisecond
	retryMaxWaitTime = 10 * time.Second
)

// =============================================================================
// CLIENT
// =============================================================================

// Client talks to the Consigliere backend.
type Client struct {
	baseURL string
	token   string

	rest    *resty.Client
	streamC *http.Client
	limiter *rate.Limiter
}

// New creates a client for the given backend origin. token may be empty for
// the auth endpoints.
func New(baseURL, token string) *Client {
	c := &Client{
		baseURL: baseURL,
		token:   token,
		// Streaming responses stay open indefinitely; cancellation is the
		// caller's context, not a client timeout.
		streamC: &http.Client{},
		limiter: rate.NewLimiter(rate.Inf, 1),
	}

	rest := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(DefaultTimeout).
		SetHeader("Accept", "application/json").
		SetRetryCount(3).
		SetRetryWaitTime(retryWaitTime).
		SetRetryMaxWaitTime(retryMaxWaitTime).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			if err != nil {
				return r == nil || r.Request.Context().Err() == nil
			}
			return r.StatusCode() == http.StatusTooManyRequests ||
				r.StatusCode() >= 500
		})

	rest.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		return c.limiter.Wait(req.Context())
	})

	if token != "" {
		rest.SetAuthToken(token)
	}

	c.rest = rest
	return c
}

// WithTimeout overrides the timeout for non-streaming requests.
func (c *Client) WithTimeout(timeout time.Duration) *Client {
	c.rest.SetTimeout(timeout)
	return c
}

// WithRetries overrides the retry budget for transient failures.
func (c *Client) WithRetries(n int) *Client {
	c.rest.SetRetryCount(n)
	return c
}

// WithRequestsPerSec paces outgoing REST requests.
func (c *Client) WithRequestsPerSec(rps float64) *Client {
	if rps > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
	return c
}

// BaseURL returns the backend origin the client was built with.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// ResolveAsset turns a server-relative asset path (chart images in step
// payloads) into an absolute URL.
func (c *Client) ResolveAsset(path string) string {
	if path == "" {
		return ""
	}
	if len(path) > 4 && (path[:4] == "http") {
		return path
	}
	if path[0] != '/' {
		path = "/" + path
	}
	return c.baseURL + path
}

// checkResponse maps a non-2xx resty response to an APIError.
func checkResponse(resp *resty.Response) error {
	if resp.IsSuccess() {
		return nil
	}
	detail := ""
	var ed errorDetail
	if err := json.Unmarshal(resp.Body(), &ed); err == nil {
		detail = ed.Detail
	}
	apiErr := &APIError{StatusCode: resp.StatusCode(), Detail: detail}
	logging.L().Warnw("request failed",
		"method", resp.Request.Method,
		"url", resp.Request.URL,
		"status", resp.StatusCode(),
		"detail", detail)
	return apiErr
}

// =============================================================================
// AUTH
// =============================================================================

// Login exchanges credentials for a bearer token. The endpoint takes form
// encoding with the email in the username field.
func (c *Client) Login(ctx context.Context, email, password string) (*AuthResponse, error) {
	var out AuthResponse
	resp, err := c.rest.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"username": email,
			"password": password,
		}).
		SetResult(&out).
		Post("/auth/login")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrServerUnavailable, err)
	}
	if err := checkResponse(resp); err != nil {
		return nil, err
	}
	return &out, nil
}

// Register creates an account and returns its first bearer token.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	var out AuthResponse
	resp, err := c.rest.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&out).
		Post("/auth/register")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrServerUnavailable, err)
	}
	if err := checkResponse(resp); err != nil {
		return nil, err
	}
	return &out, nil
}

// =============================================================================
// CHATS
// =============================================================================

// ListChats returns the account's chats, newest first (server ordering).
func (c *Client) ListChats(ctx context.Context) ([]model.ChatSummary, error) {
	var out []model.ChatSummary
	resp, err := c.rest.R().
		SetContext(ctx).
		SetResult(&out).
		Get("/chats")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrServerUnavailable, err)
	}
	if err := checkResponse(resp); err != nil {
		return nil, err
	}
	return out, nil
}

// History returns a chat's stored messages in chronological order.
func (c *Client) History(ctx context.Context, chatID string) ([]model.HistoryRecord, error) {
	var out []model.HistoryRecord
	resp, err := c.rest.R().
		SetContext(ctx).
		SetResult(&out).
		Get("/messages/" + chatID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrServerUnavailable, err)
	}
	if err := checkResponse(resp); err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteChat removes a chat and its uploaded file.
func (c *Client) DeleteChat(ctx context.Context, chatID string) error {
	resp, err := c.rest.R().
		SetContext(ctx).
		Delete("/chats/" + chatID)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrServerUnavailable, err)
	}
	return checkResponse(resp)
}

// Dossier fetches the analysis dossier for a chat.
func (c *Client) Dossier(ctx context.Context, chatID string) (*model.Dossier, error) {
	var out model.Dossier
	resp, err := c.rest.R().
		SetContext(ctx).
		SetResult(&out).
		Get("/chats/" + chatID + "/dossier")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrServerUnavailable, err)
	}
	if err := checkResponse(resp); err != nil {
		return nil, err
	}
	return &out, nil
}

// =============================================================================
// FILES / CONNECTIONS
// =============================================================================

// UploadFile streams a local spreadsheet to the backend as multipart form
// data and returns the stored file's id.
func (c *Client) UploadFile(ctx context.Context, path string) (*UploadResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	var out UploadResult
	resp, err := c.rest.R().
		SetContext(ctx).
		SetFileReader("file", filepath.Base(path), f).
		SetResult(&out).
		Post("/files/upload")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrServerUnavailable, err)
	}
	if err := checkResponse(resp); err != nil {
		return nil, err
	}
	return &out, nil
}

// Analyze asks the backend to generate a dossier for an uploaded file. It
// creates a new chat and returns it together with the dossier.
func (c *Client) Analyze(ctx context.Context, fileID string) (*AnalysisResult, error) {
	var out AnalysisResult
	resp, err := c.rest.R().
		SetContext(ctx).
		SetResult(&out).
		Post("/files/" + fileID + "/analyze")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrServerUnavailable, err)
	}
	if err := checkResponse(resp); err != nil {
		return nil, err
	}
	return &out, nil
}

// Connect registers a database connection. The backend probes the database,
// generates a dossier from its schema, and creates a chat.
func (c *Client) Connect(ctx context.Context, req ConnectionRequest) (*ConnectionResult, error) {
	var out ConnectionResult
	resp, err := c.rest.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&out).
		Post("/connections")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrServerUnavailable, err)
	}
	if err := checkResponse(resp); err != nil {
		return nil, err
	}
	return &out, nil
}

// AnalyzeClient returns a view of the client with the analyze timeout
// applied. Dossier generation can take minutes on large files.
func (c *Client) AnalyzeClient() *Client {
	return New(c.baseURL, c.token).WithTimeout(analyzeTimeout)
}

// =============================================================================
// NON-STREAMING SEND
// =============================================================================

// Ask sends a question without streaming and returns the stored assistant
// reply. Used by the one-shot CLI path.
func (c *Client) Ask(ctx context.Context, chatID, content string) (*model.HistoryRecord, error) {
	var out model.HistoryRecord
	resp, err := c.rest.R().
		SetContext(ctx).
		SetBody(sendRequest{Content: content}).
		SetResult(&out).
		Post("/messages/" + chatID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrServerUnavailable, err)
	}
	if err := checkResponse(resp); err != nil {
		return nil, err
	}
	return &out, nil
}
