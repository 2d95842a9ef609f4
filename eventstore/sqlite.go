package eventstore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS events (
	seq       INTEGER PRIMARY KEY AUTOINCREMENT,
	stream_id TEXT    NOT NULL,
	version   INTEGER NOT NULL,
	id        TEXT    NOT NULL,
	type      TEXT    NOT NULL,
	data      BLOB,
	timestamp TEXT    NOT NULL,
	UNIQUE (stream_id, version)
);
CREATE INDEX IF NOT EXISTS idx_events_type ON events (type);
`

// SQLiteStore persists streams in a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (creating if needed) a SQLite-backed store at path.
// Use ":memory:" for an ephemeral database.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("eventstore: opening database: %w", err)
	}
	// A single connection keeps ":memory:" databases coherent and
	// serializes writers.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("eventstore: creating schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Append implements Store.
func (s *SQLiteStore) Append(ctx context.Context, streamID string, expectedVersion int, events []*Event) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("eventstore: begin: %w", err)
	}
	defer tx.Rollback()

	current, err := streamVersionTx(ctx, tx, streamID)
	if err != nil {
		return 0, err
	}
	if expectedVersion != current {
		return 0, ErrConcurrencyConflict
	}

	version := current
	for _, ev := range events {
		version++
		_, err := tx.ExecContext(ctx,
			`INSERT INTO events (stream_id, version, id, type, data, timestamp) VALUES (?, ?, ?, ?, ?, ?)`,
			streamID, version, ev.ID, ev.Type, []byte(ev.Data), ev.Timestamp.UTC().Format(time.RFC3339Nano))
		if err != nil {
			return 0, fmt.Errorf("eventstore: insert: %w", err)
		}
		ev.StreamID = streamID
		ev.Version = version
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("eventstore: commit: %w", err)
	}
	return version, nil
}

// Read implements Store.
func (s *SQLiteStore) Read(ctx context.Context, streamID string, fromVersion int) ([]*Event, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT stream_id, version, id, type, data, timestamp FROM events
		 WHERE stream_id = ? AND version >= ? ORDER BY version`,
		streamID, fromVersion)
	if err != nil {
		return nil, fmt.Errorf("eventstore: query: %w", err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

// ReadAll implements Store.
func (s *SQLiteStore) ReadAll(ctx context.Context, filter EventFilter) ([]*Event, error) {
	query := `SELECT stream_id, version, id, type, data, timestamp FROM events`
	var (
		where []string
		args  []any
	)
	if filter.StreamID != "" {
		where = append(where, "stream_id = ?")
		args = append(args, filter.StreamID)
	}
	if len(filter.Types) > 0 {
		placeholders := ""
		for i, t := range filter.Types {
			if i > 0 {
				placeholders += ", "
			}
			placeholders += "?"
			args = append(args, t)
		}
		where = append(where, "type IN ("+placeholders+")")
	}
	for i, cond := range where {
		if i == 0 {
			query += " WHERE " + cond
		} else {
			query += " AND " + cond
		}
	}
	query += " ORDER BY seq"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("eventstore: query: %w", err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

// StreamVersion implements Store.
func (s *SQLiteStore) StreamVersion(ctx context.Context, streamID string) (int, error) {
	var version sql.NullInt64
	err := s.db.QueryRowContext(ctx,
		`SELECT MAX(version) FROM events WHERE stream_id = ?`, streamID).Scan(&version)
	if err != nil {
		return 0, fmt.Errorf("eventstore: query version: %w", err)
	}
	if !version.Valid {
		return -1, nil
	}
	return int(version.Int64), nil
}

// DeleteStream implements Store.
func (s *SQLiteStore) DeleteStream(ctx context.Context, streamID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM events WHERE stream_id = ?`, streamID); err != nil {
		return fmt.Errorf("eventstore: delete stream: %w", err)
	}
	return nil
}

// Close implements Store.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func streamVersionTx(ctx context.Context, tx *sql.Tx, streamID string) (int, error) {
	var version sql.NullInt64
	err := tx.QueryRowContext(ctx,
		`SELECT MAX(version) FROM events WHERE stream_id = ?`, streamID).Scan(&version)
	if err != nil {
		return 0, fmt.Errorf("eventstore: query version: %w", err)
	}
	if !version.Valid {
		return -1, nil
	}
	return int(version.Int64), nil
}

func scanEvents(rows *sql.Rows) ([]*Event, error) {
	var out []*Event
	for rows.Next() {
		var (
			ev Event
			ts string
		)
		if err := rows.Scan(&ev.StreamID, &ev.Version, &ev.ID, &ev.Type, (*[]byte)(&ev.Data), &ts); err != nil {
			return nil, fmt.Errorf("eventstore: scan: %w", err)
		}
		parsed, err := time.Parse(time.RFC3339Nano, ts)
		if err != nil {
			return nil, fmt.Errorf("eventstore: parse timestamp: %w", err)
		}
		ev.Timestamp = parsed
		out = append(out, &ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("eventstore: rows: %w", err)
	}
	return out, nil
}

var _ Store = (*SQLiteStore)(nil)
