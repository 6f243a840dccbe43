// Package visits stores visit records in a relational database. The visits
// table is created outside this service:
//
//	postgres: id SERIAL PRIMARY KEY, ts TIMESTAMPTZ NOT NULL DEFAULT now(), note TEXT
//	libsql:   id INTEGER PRIMARY KEY AUTOINCREMENT,
//	          ts TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ', 'now')), note TEXT
//
// CURRENT_TIMESTAMP would truncate libsql timestamps to whole seconds, so the
// returned ts could precede the insert.
package visits

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const (
	// DefaultNote is recorded when the caller supplies none.
	DefaultNote = "hello"
	// RecentLimit caps how many rows Recent returns.
	RecentLimit = 10
)

// Visit is immutable once the store assigns its id and timestamp.
type Visit struct {
	ID   int64
	TS   time.Time
	Note string
}

// Store runs one statement per call on a scoped connection taken from the
// pool. *sql.DB is safe for concurrent use.
type Store struct {
	db      *sql.DB
	dialect Dialect
}

func New(db *sql.DB, dialect Dialect) *Store {
	return &Store{db: db, dialect: dialect}
}

// Insert records a visit and returns it with the store-assigned id and ts.
func (s *Store) Insert(ctx context.Context, note string) (Visit, error) {
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return Visit{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Close()

	var ts sqlTime
	visit := Visit{Note: note}
	if err := conn.QueryRowContext(ctx, s.dialect.InsertSQL, note).Scan(&visit.ID, &ts); err != nil {
		return Visit{}, fmt.Errorf("insert visit: %w", err)
	}
	visit.TS = ts.Time
	return visit, nil
}

// Recent returns up to limit visits ordered by id descending. limit is
// clamped to RecentLimit.
func (s *Store) Recent(ctx context.Context, limit int) ([]Visit, error) {
	if limit <= 0 || limit > RecentLimit {
		limit = RecentLimit
	}
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Close()

	rows, err := conn.QueryContext(ctx, s.dialect.RecentSQL, limit)
	if err != nil {
		return nil, fmt.Errorf("query visits: %w", err)
	}
	defer rows.Close()

	out := make([]Visit, 0, limit)
	for rows.Next() {
		var (
			v    Visit
			ts   sqlTime
			note sql.NullString
		)
		if err := rows.Scan(&v.ID, &ts, &note); err != nil {
			return nil, fmt.Errorf("scan visit: %w", err)
		}
		v.TS = ts.Time
		v.Note = note.String
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate visits: %w", err)
	}
	return out, nil
}

// Ping checks that a pooled connection can reach the database.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// sqlTime scans timestamps from drivers that return time.Time (pgx) as well
// as those that return text (libsql).
type sqlTime struct {
	Time time.Time
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
}

func (t *sqlTime) Scan(src any) error {
	switch v := src.(type) {
	case time.Time:
		t.Time = v
		return nil
	case string:
		return t.parse(v)
	case []byte:
		return t.parse(string(v))
	case int64:
		t.Time = time.Unix(v, 0).UTC()
		return nil
	case nil:
		return errors.New("timestamp is null")
	default:
		return fmt.Errorf("unsupported timestamp type %T", src)
	}
}

func (t *sqlTime) parse(s string) error {
	for _, layout := range timeLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("unrecognized timestamp %q", s)
}
