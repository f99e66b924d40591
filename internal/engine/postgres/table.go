package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"profiler/internal/engine"
)

// Table implements engine.Table for a schema-qualified relation.
type Table struct {
	pool querier
	ns   string
	name string
}

func (t *Table) Name() string      { return t.name }
func (t *Table) Namespace() string { return t.ns }

func (t *Table) qualified() string { return pgx.Identifier{t.ns, t.name}.Sanitize() }

// schemaSQL lists user columns in attnum order with their formatted type
// (e.g. "integer", "character varying(64)", "timestamp with time zone").
const schemaSQL = `
SELECT a.attname, format_type(a.atttypid, a.atttypmod)
FROM pg_catalog.pg_attribute a
JOIN pg_catalog.pg_class c ON c.oid = a.attrelid
JOIN pg_catalog.pg_namespace n ON n.oid = c.relnamespace
WHERE n.nspname = $1
  AND c.relname = $2
  AND a.attnum > 0
  AND NOT a.attisdropped
ORDER BY a.attnum`

func (t *Table) Schema(ctx context.Context) ([]engine.Field, error) {
	rows, err := t.pool.Query(ctx, schemaSQL, t.ns, t.name)
	if err != nil {
		return nil, fmt.Errorf("postgres: schema %s.%s: %w", t.ns, t.name, err)
	}
	fields, err := pgx.CollectRows(rows, func(r pgx.CollectableRow) (engine.Field, error) {
		var f engine.Field
		err := r.Scan(&f.Name, &f.Type)
		return f, err
	})
	if err != nil {
		return nil, fmt.Errorf("postgres: schema %s.%s: %w", t.ns, t.name, err)
	}
	return fields, nil
}

func (t *Table) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := t.pool.QueryRow(ctx, `SELECT COUNT(*) FROM `+t.qualified()).Scan(&n); err != nil {
		return 0, fmt.Errorf("postgres: count %s: %w", t.name, err)
	}
	return n, nil
}

func (t *Table) DistinctCount(ctx context.Context, column string) (int64, error) {
	var n int64
	if err := t.pool.QueryRow(ctx, buildDistinctSQL(t.qualified(), column)).Scan(&n); err != nil {
		return 0, fmt.Errorf("postgres: distinct %s.%s: %w", t.name, column, err)
	}
	return n, nil
}

func (t *Table) Sample(ctx context.Context, n int) ([]engine.Row, error) {
	if n <= 0 {
		return nil, nil
	}
	rows, err := t.pool.Query(ctx, `SELECT * FROM `+t.qualified()+` LIMIT $1`, n)
	if err != nil {
		return nil, fmt.Errorf("postgres: sample %s: %w", t.name, err)
	}
	defer rows.Close()

	fds := rows.FieldDescriptions()
	var out []engine.Row
	for rows.Next() {
		vals, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("postgres: sample %s: %w", t.name, err)
		}
		r := make(engine.Row, len(fds))
		for i, fd := range fds {
			r[i] = engine.Cell{Name: fd.Name, Value: normalizeValue(vals[i])}
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: sample %s: %w", t.name, err)
	}
	return out, nil
}

// NullCounts issues one SUM((col IS NULL)::int) per column in a single SELECT.
func (t *Table) NullCounts(ctx context.Context) ([]engine.ColumnCount, error) {
	fields, err := t.Schema(ctx)
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, nil
	}

	counts := make([]int64, len(fields))
	dest := make([]any, len(fields))
	for i := range counts {
		dest[i] = &counts[i]
	}
	q := buildNullCountSQL(t.qualified(), engine.Columns(fields))
	if err := t.pool.QueryRow(ctx, q).Scan(dest...); err != nil {
		return nil, fmt.Errorf("postgres: null counts %s: %w", t.name, err)
	}

	out := make([]engine.ColumnCount, len(fields))
	for i, f := range fields {
		out[i] = engine.ColumnCount{Column: f.Name, Count: counts[i]}
	}
	return out, nil
}

// buildDistinctSQL counts SELECT DISTINCT rows so NULL is counted once,
// unlike COUNT(DISTINCT col).
func buildDistinctSQL(table, column string) string {
	return fmt.Sprintf(`SELECT COUNT(*) FROM (SELECT DISTINCT %s FROM %s) AS d`, pgx.Identifier{column}.Sanitize(), table)
}

// buildNullCountSQL is pure so the cast/alias shape can be tested without a
// database. The caller guarantees columns is non-empty.
func buildNullCountSQL(table string, columns []string) string {
	parts := make([]string, 0, len(columns))
	for _, c := range columns {
		parts = append(parts, fmt.Sprintf("COALESCE(SUM((%s IS NULL)::int), 0)", pgx.Identifier{c}.Sanitize()))
	}
	return "SELECT " + strings.Join(parts, ", ") + " FROM " + table
}

// normalizeValue maps pgx decoded values onto printable ones. UUID columns
// decode to [16]byte and would otherwise render as a number array.
func normalizeValue(v any) any {
	switch t := v.(type) {
	case [16]byte:
		return uuid.UUID(t).String()
	default:
		return engine.NormalizeValue(v)
	}
}

var _ engine.Table = (*Table)(nil)
