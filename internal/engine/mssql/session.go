package mssql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/microsoft/go-mssqldb"

	"profiler/internal/engine"
)

// Session implements engine.Session for Microsoft SQL Server.
//
// A namespace is a schema inside the connected database (dbo by default).
// Switching databases with USE is deliberately not supported: USE is
// connection-scoped and database/sql hands out pooled connections, so the
// switch would not stick. Point the DSN at the database instead.
type Session struct {
	db dbConn
	ns string
}

func init() {
	engine.Register("mssql", Open)
}

// Open opens a database/sql handle with the "sqlserver" driver and resolves
// the login's default schema as the initial namespace.
//
// This method validates connectivity via PingContext.
func Open(ctx context.Context, cfg engine.Config) (engine.Session, error) {
	raw, err := sql.Open("sqlserver", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("mssql: open: %w", err)
	}

	// A profile run issues one query at a time.
	raw.SetMaxOpenConns(4)
	raw.SetMaxIdleConns(4)

	if err := raw.PingContext(ctx); err != nil {
		_ = raw.Close()
		return nil, fmt.Errorf("mssql: ping: %w", err)
	}

	s, err := newSession(ctx, &sqlDB{db: raw})
	if err != nil {
		_ = raw.Close()
		return nil, err
	}
	return s, nil
}

func newSession(ctx context.Context, db dbConn) (*Session, error) {
	var ns sql.NullString
	if err := db.QueryRowContext(ctx, `SELECT SCHEMA_NAME()`).Scan(&ns); err != nil {
		return nil, fmt.Errorf("mssql: default schema: %w", err)
	}
	name := "dbo"
	if ns.Valid && strings.TrimSpace(ns.String) != "" {
		name = ns.String
	}
	return &Session{db: db, ns: name}, nil
}

// Close releases database resources held by this session.
func (s *Session) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Session) Namespace() string { return s.ns }

// UseNamespace switches the current schema.
//
// Errors:
//   - Returns an error if sys.schemas has no schema called name.
func (s *Session) UseNamespace(ctx context.Context, name string) error {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sys.schemas WHERE name = @p1`, name).Scan(&n); err != nil {
		return fmt.Errorf("mssql: lookup schema %s: %w", name, err)
	}
	if n == 0 {
		return fmt.Errorf("mssql: schema %q does not exist", name)
	}
	s.ns = name
	return nil
}

// ListTables returns base tables and views in the current schema.
func (s *Session) ListTables(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT TABLE_NAME FROM INFORMATION_SCHEMA.TABLES WHERE TABLE_SCHEMA = @p1 ORDER BY TABLE_NAME`,
		s.ns,
	)
	if err != nil {
		return nil, fmt.Errorf("mssql: list tables in %s: %w", s.ns, err)
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

// Table resolves name in the current schema.
func (s *Session) Table(ctx context.Context, name string) (engine.Table, error) {
	t := &Table{db: s.db, ns: s.ns, name: name}
	fields, err := t.Schema(ctx)
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("mssql: %s.%s: %w", s.ns, name, engine.ErrTableNotFound)
	}
	return t, nil
}

// ---- database/sql seam types ----

// dbConn is a small interface over *sql.DB used to make this package testable.
type dbConn interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) rowScanner
	Close() error
}

// rowScanner is a narrow adapter over *sql.Row.Scan.
type rowScanner interface {
	Scan(dest ...any) error
}

// sqlDB wraps *sql.DB to implement dbConn.
type sqlDB struct {
	db *sql.DB
}

func (s *sqlDB) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return s.db.QueryContext(ctx, query, args...)
}

func (s *sqlDB) QueryRowContext(ctx context.Context, query string, args ...any) rowScanner {
	return s.db.QueryRowContext(ctx, query, args...)
}

func (s *sqlDB) Close() error { return s.db.Close() }

var (
	_ dbConn         = (*sqlDB)(nil)
	_ engine.Session = (*Session)(nil)
)
