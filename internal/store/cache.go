// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package store maintains a local SQLite mirror of chat summaries and
// dossiers so the sidebar and briefing panel render instantly on startup
// and stay browsable when the backend is unreachable.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/morganforge/consigliere-tui/internal/model"
)

// ErrNotCached indicates the requested record has no local copy.
var ErrNotCached = errors.New("not in local cache")

const schema = `
CREATE TABLE IF NOT EXISTS chats (
	id         TEXT PRIMARY KEY,
	title      TEXT NOT NULL,
	file_id    TEXT NOT NULL DEFAULT '',
	type       TEXT NOT NULL DEFAULT 'excel',
	created_at TEXT NOT NULL,
	synced_at  TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS dossiers (
	chat_id    TEXT PRIMARY KEY REFERENCES chats(id) ON DELETE CASCADE,
	payload    TEXT NOT NULL,
	synced_at  TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_chats_created ON chats(created_at DESC);
`

// =============================================================================
// CACHE
// =============================================================================

// Cache is the local mirror. Safe for concurrent use; database/sql pools
// connections underneath.
type Cache struct {
	db *sql.DB
}

// Open opens (or creates) the cache database at path.
func Open(path string) (*Cache, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize cache schema: %w", err)
	}

	return &Cache{db: db}, nil
}

// Close releases the database.
func (c *Cache) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

// =============================================================================
// CHATS
// =============================================================================

// ReplaceChats reconciles the cached chat list with a fresh server
// snapshot. Rows are upserted in place so dossiers of chats that survive
// the refresh survive with them; only chats absent from the snapshot are
// dropped, dossiers cascading.
func (c *Cache) ReplaceChats(ctx context.Context, chats []model.ChatSummary) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	now := time.Now().UTC().Format(time.RFC3339)
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO chats (id, title, file_id, type, created_at, synced_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			file_id = excluded.file_id,
			type = excluded.type,
			created_at = excluded.created_at,
			synced_at = excluded.synced_at`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, chat := range chats {
		_, err := stmt.ExecContext(ctx,
			chat.ID, chat.Title, chat.FileID, chat.Type,
			chat.CreatedAt.UTC().Format(time.RFC3339), now)
		if err != nil {
			return err
		}
	}

	// Drop everything the server no longer reports.
	keep := make([]any, 0, len(chats))
	marks := make([]string, 0, len(chats))
	for _, chat := range chats {
		keep = append(keep, chat.ID)
		marks = append(marks, "?")
	}
	del := "DELETE FROM chats"
	if len(keep) > 0 {
		del += " WHERE id NOT IN (" + strings.Join(marks, ",") + ")"
	}
	if _, err := tx.ExecContext(ctx, del, keep...); err != nil {
		return err
	}
	return tx.Commit()
}

// Chats returns the cached chat list, newest first.
func (c *Cache) Chats(ctx context.Context) ([]model.ChatSummary, error) {
	rows, err := c.db.QueryContext(ctx,
		`SELECT id, title, file_id, type, created_at
		 FROM chats ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var chats []model.ChatSummary
	for rows.Next() {
		var chat model.ChatSummary
		var createdAt string
		if err := rows.Scan(&chat.ID, &chat.Title, &chat.FileID, &chat.Type, &createdAt); err != nil {
			return nil, err
		}
		if ts, err := time.Parse(time.RFC3339, createdAt); err == nil {
			chat.CreatedAt = ts
		}
		chats = append(chats, chat)
	}
	return chats, rows.Err()
}

// DeleteChat removes a chat and its dossier from the cache.
func (c *Cache) DeleteChat(ctx context.Context, chatID string) error {
	_, err := c.db.ExecContext(ctx, "DELETE FROM chats WHERE id = ?", chatID)
	return err
}

// =============================================================================
// DOSSIERS
// =============================================================================

// PutDossier caches a chat's dossier. The dossier is stored as JSON; its
// shape tracks the server's, not a local schema. A dossier can arrive
// before its chat row (analyze completes before the next list refresh), so
// a placeholder row satisfies the foreign key; the refresh fills it in.
func (c *Cache) PutDossier(ctx context.Context, chatID string, d *model.Dossier) error {
	payload, err := json.Marshal(d)
	if err != nil {
		return err
	}

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	now := time.Now().UTC().Format(time.RFC3339)
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO chats (id, title, file_id, type, created_at, synced_at)
		 VALUES (?, '', '', ?, ?, ?)
		 ON CONFLICT(id) DO NOTHING`,
		chatID, d.FileType, now, now); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO dossiers (chat_id, payload, synced_at) VALUES (?, ?, ?)
		 ON CONFLICT(chat_id) DO UPDATE SET payload = excluded.payload, synced_at = excluded.synced_at`,
		chatID, string(payload), now); err != nil {
		return err
	}
	return tx.Commit()
}

// Dossier returns a cached dossier, or ErrNotCached.
func (c *Cache) Dossier(ctx context.Context, chatID string) (*model.Dossier, error) {
	var payload string
	err := c.db.QueryRowContext(ctx,
		"SELECT payload FROM dossiers WHERE chat_id = ?", chatID).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotCached
	}
	if err != nil {
		return nil, err
	}
	var d model.Dossier
	if err := json.Unmarshal([]byte(payload), &d); err != nil {
		return nil, fmt.Errorf("corrupt cached dossier: %w", err)
	}
	return &d, nil
}
