// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api implements the REST and streaming client for the Consigliere
// backend.
package api

import (
	"errors"
	"fmt"
)

// =============================================================================
// ERROR TYPES
// =============================================================================

var (
	// ErrUnauthorized indicates a missing or expired bearer token.
	ErrUnauthorized = errors.New("not authenticated")

	// ErrForbidden indicates a disabled account.
	ErrForbidden = errors.New("account disabled")

	// ErrNotFound indicates the chat, file, or dossier does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict indicates a duplicate, e.g. an already-registered email.
	ErrConflict = errors.New("already exists")

	// ErrServerUnavailable indicates the backend could not be reached.
	ErrServerUnavailable = errors.New("server unavailable")
)

// APIError carries the backend's status code and detail message.
type APIError struct {
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("server error (HTTP %d): %s", e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("server error (HTTP %d)", e.StatusCode)
}

// Is maps well-known status codes onto the sentinel errors so callers can
// branch with errors.Is.
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.StatusCode == 401
	case ErrForbidden:
		return e.StatusCode == 403
	case ErrNotFound:
		return e.StatusCode == 404
	case ErrConflict:
		return e.StatusCode == 409
	}
	return false
}

// errorDetail is the backend's error envelope ({"detail": "..."}).
type errorDetail struct {
	Detail string `json:"detail"`
}
