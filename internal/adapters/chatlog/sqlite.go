// Package chatlog persists chat exchanges.
// Clean Architecture: Adapter implementing ports.ChatLog.
package chatlog

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"github.com/redteamshop/shopassist/internal/domain/entities"
)

// SQLiteLog stores one row per session: recording an existing session
// overwrites its query, response, context and model fields in place.
type SQLiteLog struct {
	db *sql.DB
}

// NewSQLiteLog creates a chat log under dataPath.
func NewSQLiteLog(dataPath string) (*SQLiteLog, error) {
	if dataPath == "" {
		dataPath = "./data"
	}
	if err := os.MkdirAll(dataPath, 0755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	db, err := sql.Open("sqlite3", filepath.Join(dataPath, "chat.db"))
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	schema := `
	CREATE TABLE IF NOT EXISTS exchanges (
		session_id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		query TEXT NOT NULL,
		response TEXT NOT NULL,
		context_ids TEXT NOT NULL,
		model TEXT NOT NULL,
		created_at DATETIME NOT NULL
	);
	`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing schema: %w", err)
	}

	return &SQLiteLog{db: db}, nil
}

// Record upserts the exchange keyed by session ID.
func (l *SQLiteLog) Record(ctx context.Context, ex entities.ChatExchange) error {
	contextIDs, err := json.Marshal(ex.ContextIDs)
	if err != nil {
		return fmt.Errorf("encoding context ids: %w", err)
	}

	_, err = l.db.ExecContext(ctx, `
		INSERT INTO exchanges (session_id, user_id, query, response, context_ids, model, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(session_id) DO UPDATE SET
			user_id = excluded.user_id,
			query = excluded.query,
			response = excluded.response,
			context_ids = excluded.context_ids,
			model = excluded.model,
			created_at = excluded.created_at
	`, ex.SessionID, ex.UserID, ex.Query, ex.Response, string(contextIDs), ex.Model, ex.Timestamp)
	if err != nil {
		return fmt.Errorf("recording exchange: %w", err)
	}
	return nil
}

// Get returns the latest exchange for a session.
func (l *SQLiteLog) Get(ctx context.Context, sessionID string) (*entities.ChatExchange, error) {
	row := l.db.QueryRowContext(ctx, `
		SELECT session_id, user_id, query, response, context_ids, model, created_at
		FROM exchanges WHERE session_id = ?
	`, sessionID)

	var ex entities.ChatExchange
	var contextIDs string
	if err := row.Scan(&ex.SessionID, &ex.UserID, &ex.Query, &ex.Response, &contextIDs, &ex.Model, &ex.Timestamp); err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("session %q not found", sessionID)
		}
		return nil, fmt.Errorf("loading exchange: %w", err)
	}
	if err := json.Unmarshal([]byte(contextIDs), &ex.ContextIDs); err != nil {
		return nil, fmt.Errorf("decoding context ids: %w", err)
	}
	return &ex, nil
}

// Close closes the database connection.
func (l *SQLiteLog) Close() error {
	return l.db.Close()
}
