package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"msgassist/pkg/chat"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS channels (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL DEFAULT '',
    private INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS messages (
    id TEXT PRIMARY KEY,
    channel_id TEXT NOT NULL REFERENCES channels(id) ON DELETE CASCADE,
    author TEXT NOT NULL DEFAULT '',
    content TEXT NOT NULL DEFAULT '',
    created_at INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_messages_channel ON messages(channel_id, created_at);
`

// SQLiteStore reads channels and messages from a SQLite database.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// OpenSQLite opens or creates the database at path and ensures the schema.
func OpenSQLite(path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	return newSQLiteStore(db, path)
}

func newSQLiteStore(db *sql.DB, path string) (*SQLiteStore, error) {
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return &SQLiteStore{db: db, path: path}, nil
}

func (s *SQLiteStore) Channel(ctx context.Context, id string) (chat.Channel, error) {
	var ch chat.Channel
	var private int
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, private FROM channels WHERE id = ?`, id,
	).Scan(&ch.ID, &ch.Name, &private)
	if errors.Is(err, sql.ErrNoRows) {
		return chat.Channel{}, fmt.Errorf("%w: %s", ErrChannelNotFound, id)
	}
	if err != nil {
		return chat.Channel{}, fmt.Errorf("looking up channel %s: %w", id, err)
	}
	ch.Private = private != 0
	return ch, nil
}

func (s *SQLiteStore) Messages(ctx context.Context, channelID string) ([]chat.Message, error) {
	var exists int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM channels WHERE id = ?`, channelID).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMessagesUnavailable, err)
	}
	if exists == 0 {
		return nil, fmt.Errorf("%w: unknown channel %s", ErrMessagesUnavailable, channelID)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, author, content, channel_id, created_at FROM messages
		 WHERE channel_id = ? ORDER BY created_at, rowid`, channelID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMessagesUnavailable, err)
	}
	defer rows.Close()

	msgs := []chat.Message{}
	for rows.Next() {
		var m chat.Message
		var created int64
		if err := rows.Scan(&m.ID, &m.Author, &m.Content, &m.ChannelID, &created); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMessagesUnavailable, err)
		}
		if created != 0 {
			m.Timestamp = time.UnixMilli(created).UTC()
		}
		msgs = append(msgs, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMessagesUnavailable, err)
	}
	return msgs, nil
}

// Import copies an export into the database in one transaction. Rows with
// an existing ID are replaced.
func (s *SQLiteStore) Import(ctx context.Context, export *Export) (int, error) {
	if export == nil {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning import: %w", err)
	}
	defer tx.Rollback()

	count := 0
	insert := func(channels []ExportChannel, private int) error {
		for _, ch := range channels {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO channels (id, name, private) VALUES (?, ?, ?)
				 ON CONFLICT(id) DO UPDATE SET name = excluded.name, private = excluded.private`,
				ch.ID, ch.Name, private); err != nil {
				return fmt.Errorf("importing channel %s: %w", ch.ID, err)
			}
			for _, m := range ch.Messages {
				var created int64
				if !m.Timestamp.IsZero() {
					created = m.Timestamp.UnixMilli()
				}
				if _, err := tx.ExecContext(ctx,
					`INSERT OR REPLACE INTO messages (id, channel_id, author, content, created_at)
					 VALUES (?, ?, ?, ?, ?)`,
					m.ID, ch.ID, m.Author, m.Content, created); err != nil {
					return fmt.Errorf("importing message %s: %w", m.ID, err)
				}
				count++
			}
		}
		return nil
	}

	if err := insert(export.Channels, 0); err != nil {
		return 0, err
	}
	if err := insert(export.PrivateChannels, 1); err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing import: %w", err)
	}
	return count, nil
}

// Path returns the database location.
func (s *SQLiteStore) Path() string { return s.path }

func (s *SQLiteStore) Close() error { return s.db.Close() }
