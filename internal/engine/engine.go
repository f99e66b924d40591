// Package engine defines the query-engine capability the profiler runs against.
//
// The profiler never computes aggregates itself. Every count, distinct, sample
// and null test is a query issued to a backend (Postgres, SQL Server, SQLite)
// through the Session and Table interfaces below. Backends register themselves
// with Register from an init() function and are selected by kind with Open.
package engine

import (
	"context"
	"errors"
)

// ErrTableNotFound is returned (wrapped) by Session.Table when the named table
// does not exist in the current namespace.
var ErrTableNotFound = errors.New("table not found")

// Session is a live connection to a query engine.
//
// A Session carries one piece of mutable state: the current namespace used for
// unqualified table lookups. What a namespace is depends on the backend
// (a schema for Postgres and SQL Server, an attached database for SQLite).
//
// Concurrency:
//   - Sessions are owned by the caller. Implementations do not guard the
//     current namespace against concurrent UseNamespace calls.
type Session interface {
	// UseNamespace makes name the current namespace.
	//
	// Errors:
	//   - Returns the backend error if the namespace does not exist or cannot
	//     be selected. The current namespace is left unchanged on error.
	UseNamespace(ctx context.Context, name string) error

	// Namespace returns the current namespace.
	Namespace() string

	// ListTables returns the names of tables and views visible in the current
	// namespace, sorted by name.
	ListTables(ctx context.Context) ([]string, error)

	// Table resolves name in the current namespace.
	//
	// Errors:
	//   - Wraps ErrTableNotFound when the table has no columns or is absent.
	Table(ctx context.Context, name string) (Table, error)

	// Close releases backend resources. Treat Close as "call once".
	Close() error
}

// Table is a handle to one named dataset. Every method issues at least one
// read-only query; nothing is cached between calls.
type Table interface {
	// Name returns the unqualified table name.
	Name() string

	// Namespace returns the namespace the handle was resolved in.
	Namespace() string

	// Schema returns the columns in declaration order.
	Schema(ctx context.Context) ([]Field, error)

	// Count returns the total number of rows.
	Count(ctx context.Context) (int64, error)

	// DistinctCount returns the number of distinct values in column.
	// NULL counts as one value, the way SELECT DISTINCT treats it.
	DistinctCount(ctx context.Context, column string) (int64, error)

	// Sample returns at most n rows in the engine's default order.
	Sample(ctx context.Context, n int) ([]Row, error)

	// NullCounts returns one entry per column, in schema order, computed by a
	// single aggregate query.
	NullCounts(ctx context.Context) ([]ColumnCount, error)
}

// Field is one schema entry. Type is the type text the engine reports.
type Field struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// Cell is one column value of a sampled row.
type Cell struct {
	Name  string
	Value any
}

// Row is a sampled row with cells in schema order.
type Row []Cell

// ColumnCount pairs a column name with a count.
type ColumnCount struct {
	Column string `json:"column"`
	Count  int64  `json:"count"`
}

// Columns returns the field names in order.
func Columns(fields []Field) []string {
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		out = append(out, f.Name)
	}
	return out
}

// NormalizeValue converts driver-specific scan results into values that
// render predictably: []byte becomes string, everything else passes through.
func NormalizeValue(v any) any {
	switch t := v.(type) {
	case []byte:
		return string(t)
	default:
		return v
	}
}
