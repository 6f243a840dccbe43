package visits

import (
	"database/sql"
	"fmt"
	"net/url"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/tursodatabase/go-libsql"
)

// Dialect holds the driver name and statements for one database flavour.
type Dialect struct {
	Driver    string
	InsertSQL string
	RecentSQL string
}

var (
	Postgres = Dialect{
		Driver:    "pgx",
		InsertSQL: "INSERT INTO visits(note) VALUES ($1) RETURNING id, ts",
		RecentSQL: "SELECT id, ts, note FROM visits ORDER BY id DESC LIMIT $1",
	}
	LibSQL = Dialect{
		Driver:    "libsql",
		InsertSQL: "INSERT INTO visits(note) VALUES (?) RETURNING id, ts",
		RecentSQL: "SELECT id, ts, note FROM visits ORDER BY id DESC LIMIT ?",
	}
)

// DialectFor picks the dialect from the database URL scheme.
func DialectFor(dbURL string) (Dialect, error) {
	parsed, err := url.Parse(dbURL)
	if err != nil {
		return Dialect{}, fmt.Errorf("db url: %w", err)
	}
	switch strings.ToLower(parsed.Scheme) {
	case "postgres", "postgresql":
		return Postgres, nil
	case "libsql", "file", "http", "https":
		return LibSQL, nil
	default:
		return Dialect{}, fmt.Errorf("db url scheme %q not supported", parsed.Scheme)
	}
}

// Open builds a pooled handle for dbURL. No connection is made until the
// first statement runs.
func Open(dbURL string) (*Store, error) {
	dialect, err := DialectFor(dbURL)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open(dialect.Driver, dbURL)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", dialect.Driver, err)
	}
	return New(db, dialect), nil
}
