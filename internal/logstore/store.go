// Package logstore archives the full game log to SQLite. The in-memory
// UI ring keeps only the newest 50 entries; the archive keeps everything
// for replay and postmortems.
package logstore

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/jdelaney/gopoly/pkg/types"
)

const schema = `
CREATE TABLE IF NOT EXISTS game_log (
	id         TEXT PRIMARY KEY,
	room_id    TEXT NOT NULL,
	player_id  TEXT NOT NULL DEFAULT '',
	entry_type TEXT NOT NULL,
	message    TEXT NOT NULL,
	created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS game_log_room ON game_log (room_id, created_at);
`

// Store persists log entries in SQLite.
type Store struct {
	sqlDB *sql.DB
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens (or creates) the archive at path.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("archive path is required")
	}
	dsn := filepath.Clean(path) + "?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := sqlDB.Exec(schema); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// Append inserts one entry. Re-appending the same entry id is a no-op so
// a resync replay cannot duplicate rows.
func (s *Store) Append(ctx context.Context, roomID string, entry types.LogEntry) error {
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("store is not configured")
	}
	if strings.TrimSpace(entry.ID) == "" {
		return fmt.Errorf("entry id is required")
	}
	_, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO game_log (id, room_id, player_id, entry_type, message, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT (id) DO NOTHING`,
		entry.ID, roomID, entry.PlayerID, entry.Type, entry.Message, toMillis(entry.Timestamp),
	)
	if err != nil {
		return fmt.Errorf("append log entry: %w", err)
	}
	return nil
}

// Recent returns the newest n entries for a room, oldest first.
func (s *Store) Recent(ctx context.Context, roomID string, n int) ([]types.LogEntry, error) {
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("store is not configured")
	}
	if n <= 0 {
		n = 50
	}
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT id, player_id, entry_type, message, created_at
		 FROM (SELECT * FROM game_log WHERE room_id = ? ORDER BY created_at DESC, id DESC LIMIT ?)
		 ORDER BY created_at ASC, id ASC`,
		roomID, n,
	)
	if err != nil {
		return nil, fmt.Errorf("list log entries: %w", err)
	}
	defer rows.Close()

	var entries []types.LogEntry
	for rows.Next() {
		var entry types.LogEntry
		var createdAt int64
		if err := rows.Scan(&entry.ID, &entry.PlayerID, &entry.Type, &entry.Message, &createdAt); err != nil {
			return nil, fmt.Errorf("scan log entry: %w", err)
		}
		entry.Timestamp = fromMillis(createdAt)
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}
