package transcript

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS turns (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    request_id TEXT NOT NULL,
    persona TEXT,
    user_text TEXT NOT NULL,
    reply_text TEXT NOT NULL,
    tools_used TEXT,
    had_failure BOOLEAN DEFAULT FALSE,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_turns_created_at ON turns(created_at DESC);
`

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if dbPath == "" {
		return nil, fmt.Errorf("transcript db path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Record(ctx context.Context, turn *Turn) error {
	if turn.CreatedAt.IsZero() {
		turn.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO turns (request_id, persona, user_text, reply_text, tools_used, had_failure, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		turn.RequestID, turn.Persona, turn.UserText, turn.ReplyText,
		strings.Join(turn.ToolsUsed, ","), turn.HadFailure, turn.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("record turn: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Recent(ctx context.Context, limit int) ([]Turn, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT request_id, persona, user_text, reply_text, tools_used, had_failure, created_at
		 FROM turns ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query turns: %w", err)
	}
	defer rows.Close()

	var turns []Turn
	for rows.Next() {
		var turn Turn
		var toolsUsed string
		if err := rows.Scan(&turn.RequestID, &turn.Persona, &turn.UserText, &turn.ReplyText,
			&toolsUsed, &turn.HadFailure, &turn.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan turn: %w", err)
		}
		if toolsUsed != "" {
			turn.ToolsUsed = strings.Split(toolsUsed, ",")
		}
		turns = append(turns, turn)
	}
	return turns, rows.Err()
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
