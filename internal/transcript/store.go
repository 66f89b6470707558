// Package transcript persists conversation turns for later review. Storage
// is optional; when disabled every write is a no-op.
package transcript

import (
	"context"
	"time"
)

// Turn is one recorded exchange: the user's message and the assistant's
// final reply, with the tools that ran in between.
type Turn struct {
	RequestID  string
	Persona    string
	UserText   string
	ReplyText  string
	ToolsUsed  []string
	HadFailure bool
	CreatedAt  time.Time
}

// Store persists turns keyed by request.
type Store interface {
	Record(ctx context.Context, turn *Turn) error
	Recent(ctx context.Context, limit int) ([]Turn, error)
	Close() error
}

// Config controls transcript storage.
type Config struct {
	Enabled bool
	DBPath  string
}

// NewStore returns a sqlite-backed store, or a no-op store when disabled.
func NewStore(cfg Config) (Store, error) {
	if !cfg.Enabled {
		return &NoopStore{}, nil
	}
	return NewSQLiteStore(cfg.DBPath)
}

// NoopStore discards all writes and returns empty reads.
type NoopStore struct{}

func (s *NoopStore) Record(ctx context.Context, turn *Turn) error {
	return nil
}

func (s *NoopStore) Recent(ctx context.Context, limit int) ([]Turn, error) {
	return nil, nil
}

func (s *NoopStore) Close() error {
	return nil
}
