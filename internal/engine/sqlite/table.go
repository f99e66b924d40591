package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"profiler/internal/engine"
)

// Table implements engine.Table for one table or view in an attached database.
type Table struct {
	db   *sql.DB
	ns   string
	name string
}

func (t *Table) Name() string      { return t.name }
func (t *Table) Namespace() string { return t.ns }

func (t *Table) qualified() string { return sqlIdent(t.ns) + "." + sqlIdent(t.name) }

// Schema reads PRAGMA table_info. Type is the declared type, which is empty
// for columns declared without one.
func (t *Table) Schema(ctx context.Context) ([]engine.Field, error) {
	q := fmt.Sprintf(`PRAGMA %s.table_info(%s)`, sqlIdent(t.ns), sqlIdent(t.name))
	rows, err := t.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("sqlite: table_info %s.%s: %w", t.ns, t.name, err)
	}
	defer rows.Close()

	var out []engine.Field
	for rows.Next() {
		var (
			cid     int
			name    string
			typ     string
			notNull int
			dflt    any
			pk      int
		)
		if err := rows.Scan(&cid, &name, &typ, &notNull, &dflt, &pk); err != nil {
			return nil, fmt.Errorf("sqlite: table_info %s.%s: %w", t.ns, t.name, err)
		}
		out = append(out, engine.Field{Name: name, Type: typ})
	}
	return out, rows.Err()
}

func (t *Table) Count(ctx context.Context) (int64, error) {
	var n int64
	q := `SELECT COUNT(*) FROM ` + t.qualified()
	if err := t.db.QueryRowContext(ctx, q).Scan(&n); err != nil {
		return 0, fmt.Errorf("sqlite: count %s: %w", t.name, err)
	}
	return n, nil
}

// DistinctCount counts SELECT DISTINCT rows so NULL is one value.
func (t *Table) DistinctCount(ctx context.Context, column string) (int64, error) {
	var n int64
	q := fmt.Sprintf(`SELECT COUNT(*) FROM (SELECT DISTINCT %s FROM %s)`, sqlIdent(column), t.qualified())
	if err := t.db.QueryRowContext(ctx, q).Scan(&n); err != nil {
		return 0, fmt.Errorf("sqlite: distinct %s.%s: %w", t.name, column, err)
	}
	return n, nil
}

func (t *Table) Sample(ctx context.Context, n int) ([]engine.Row, error) {
	if n <= 0 {
		return nil, nil
	}
	rows, err := t.db.QueryContext(ctx, `SELECT * FROM `+t.qualified()+` LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("sqlite: sample %s: %w", t.name, err)
	}
	defer rows.Close()

	out, err := engine.ScanSQLRows(rows)
	if err != nil {
		return nil, fmt.Errorf("sqlite: sample %s: %w", t.name, err)
	}
	return out, nil
}

// NullCounts sums the 0/1 result of "col IS NULL" for every column in one
// statement. COALESCE keeps empty tables at 0 instead of NULL.
func (t *Table) NullCounts(ctx context.Context) ([]engine.ColumnCount, error) {
	fields, err := t.Schema(ctx)
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, nil
	}

	q, err := buildNullCountSQL(t.qualified(), engine.Columns(fields))
	if err != nil {
		return nil, err
	}

	counts := make([]int64, len(fields))
	dest := make([]any, len(fields))
	for i := range counts {
		dest[i] = &counts[i]
	}
	if err := t.db.QueryRowContext(ctx, q).Scan(dest...); err != nil {
		return nil, fmt.Errorf("sqlite: null counts %s: %w", t.name, err)
	}

	out := make([]engine.ColumnCount, len(fields))
	for i, f := range fields {
		out[i] = engine.ColumnCount{Column: f.Name, Count: counts[i]}
	}
	return out, nil
}

func buildNullCountSQL(table string, columns []string) (string, error) {
	if len(columns) == 0 {
		return "", fmt.Errorf("sqlite: null count query for %s has no columns", table)
	}
	parts := make([]string, 0, len(columns))
	for _, c := range columns {
		parts = append(parts, fmt.Sprintf("COALESCE(SUM(%s IS NULL), 0)", sqlIdent(c)))
	}
	return "SELECT " + strings.Join(parts, ", ") + " FROM " + table, nil
}

var _ engine.Table = (*Table)(nil)
