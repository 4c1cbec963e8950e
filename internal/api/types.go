// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api implements the REST and streaming client for the Consigliere
// backend.
package api

import "github.com/morganforge/consigliere-tui/internal/model"

// =============================================================================
// REQUEST / RESPONSE TYPES
// =============================================================================

// AuthResponse is returned by login and register.
type AuthResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// RegisterRequest creates a new account.
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
}

// UploadResult is returned by the multipart file upload.
type UploadResult struct {
	Status   string `json:"status"`
	FileID   string `json:"file_id"`
	Filename string `json:"filename"`
}

// AnalysisResult is returned by the analyze endpoint: the analysis dossier
// plus the chat created for it.
type AnalysisResult struct {
	Status  string        `json:"status"`
	ChatID  string        `json:"chat_id"`
	Dossier model.Dossier `json:"dossier"`
}

// ConnectionRequest describes a database to connect.
type ConnectionRequest struct {
	Name       string `json:"name"`
	DriverName string `json:"drivername"`
	Host       string `json:"host"`
	Port       int    `json:"port"`
	Database   string `json:"database"`
	Username   string `json:"username"`
	Password   string `json:"password"`
}

// ConnectionResult is returned by a successful database connection.
type ConnectionResult struct {
	ConnectionID string `json:"connection_id"`
	Name         string `json:"name"`
	Host         string `json:"host"`
	Database     string `json:"database"`
	Status       string `json:"status"`
}

// sendRequest is the body for both streaming and non-streaming sends.
type sendRequest struct {
	Content string `json:"content"`
}
