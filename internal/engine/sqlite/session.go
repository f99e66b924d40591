package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"

	"profiler/internal/engine"
)

// Session implements engine.Session for SQLite.
//
// Key design points vs Postgres:
//   - A namespace is an attached database ("main", "temp", or any name given to
//     ATTACH DATABASE ... AS name), not a schema.
//   - The pool is pinned to one connection. ATTACH and ":memory:" databases are
//     per-connection in SQLite, so a second pooled connection would not see them.
type Session struct {
	db *sql.DB
	ns string
}

func init() {
	engine.Register("sqlite", Open)
}

// Open implements engine.Opener.
func Open(ctx context.Context, cfg engine.Config) (engine.Session, error) {
	return New(ctx, cfg.DSN)
}

// New opens a SQLite session on dsn (a path, "file:..." URI, or ":memory:").
//
// Errors:
//   - Returns an error if dsn is empty or the database cannot be pinged.
func New(ctx context.Context, dsn string) (*Session, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, errors.New("sqlite: empty dsn")
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: ping: %w", err)
	}
	return &Session{db: db, ns: "main"}, nil
}

// DB exposes the underlying handle so callers can prepare fixtures
// (ATTACH, CREATE TABLE) on the same pinned connection.
func (s *Session) DB() *sql.DB { return s.db }

func (s *Session) Close() error { return s.db.Close() }

func (s *Session) Namespace() string { return s.ns }

// UseNamespace selects an attached database by name.
//
// Errors:
//   - Returns an error if name is not listed by PRAGMA database_list.
func (s *Session) UseNamespace(ctx context.Context, name string) error {
	rows, err := s.db.QueryContext(ctx, `PRAGMA database_list`)
	if err != nil {
		return fmt.Errorf("sqlite: database_list: %w", err)
	}
	defer rows.Close()

	found := false
	for rows.Next() {
		var (
			seq  int
			db   string
			file sql.NullString
		)
		if err := rows.Scan(&seq, &db, &file); err != nil {
			return fmt.Errorf("sqlite: database_list: %w", err)
		}
		if db == name {
			found = true
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("sqlite: database_list: %w", err)
	}
	if !found {
		return fmt.Errorf("sqlite: database %q is not attached", name)
	}
	s.ns = name
	return nil
}

// ListTables returns tables and views from the current database's schema
// table, excluding SQLite's internal sqlite_* objects.
func (s *Session) ListTables(ctx context.Context) ([]string, error) {
	q := fmt.Sprintf(
		`SELECT name FROM %s.sqlite_master WHERE type IN ('table', 'view') AND name NOT LIKE 'sqlite\_%%' ESCAPE '\' ORDER BY name`,
		sqlIdent(s.ns),
	)
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list tables in %s: %w", s.ns, err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		out = append(out, name)
	}
	return out, rows.Err()
}

// Table resolves name in the current database.
func (s *Session) Table(ctx context.Context, name string) (engine.Table, error) {
	t := &Table{db: s.db, ns: s.ns, name: name}
	fields, err := t.Schema(ctx)
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("sqlite: %s.%s: %w", s.ns, name, engine.ErrTableNotFound)
	}
	return t, nil
}

func sqlIdent(id string) string {
	// SQLite supports "quoted identifiers"
	return `"` + strings.ReplaceAll(id, `"`, `""`) + `"`
}

var _ engine.Session = (*Session)(nil)
