package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"profiler/internal/engine"
)

/*
Session implements engine.Session for Postgres.

A namespace is a schema. The current schema is tracked on the Session and every
query is schema-qualified, instead of issuing SET search_path, because a pooled
connection that ran SET would leak the setting to unrelated callers.
*/
type Session struct {
	pool querier
	ns   string
}

// querier is the subset of *pgxpool.Pool the session uses.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Close()
}

func init() {
	engine.Register("postgres", Open)
}

// Open creates a pgx pool for cfg.DSN and resolves the connection's current
// schema as the initial namespace.
func Open(ctx context.Context, cfg engine.Config) (engine.Session, error) {
	pool, err := pgxpool.New(ctx, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("postgres: pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}
	s, err := newSession(ctx, pool)
	if err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

func newSession(ctx context.Context, q querier) (*Session, error) {
	var ns string
	if err := q.QueryRow(ctx, `SELECT COALESCE(current_schema(), 'public')`).Scan(&ns); err != nil {
		return nil, fmt.Errorf("postgres: current schema: %w", err)
	}
	return &Session{pool: q, ns: ns}, nil
}

// Close closes the connection pool.
func (s *Session) Close() error {
	s.pool.Close()
	return nil
}

func (s *Session) Namespace() string { return s.ns }

// UseNamespace switches the current schema.
//
// Errors:
//   - Returns an error if no schema called name exists.
func (s *Session) UseNamespace(ctx context.Context, name string) error {
	var ok bool
	err := s.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM pg_catalog.pg_namespace WHERE nspname = $1)`, name).Scan(&ok)
	if err != nil {
		return fmt.Errorf("postgres: lookup schema %s: %w", name, err)
	}
	if !ok {
		return fmt.Errorf("postgres: schema %q does not exist", name)
	}
	s.ns = name
	return nil
}

// ListTables returns base tables and views in the current schema.
func (s *Session) ListTables(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT table_name FROM information_schema.tables WHERE table_schema = $1 ORDER BY table_name`,
		s.ns,
	)
	if err != nil {
		return nil, fmt.Errorf("postgres: list tables in %s: %w", s.ns, err)
	}
	names, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("postgres: list tables in %s: %w", s.ns, err)
	}
	return names, nil
}

// Table resolves name in the current schema.
func (s *Session) Table(ctx context.Context, name string) (engine.Table, error) {
	t := &Table{pool: s.pool, ns: s.ns, name: name}
	fields, err := t.Schema(ctx)
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("postgres: %s.%s: %w", s.ns, name, engine.ErrTableNotFound)
	}
	return t, nil
}

var _ engine.Session = (*Session)(nil)
