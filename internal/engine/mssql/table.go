package mssql

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"profiler/internal/engine"
)

// Table implements engine.Table for a schema-qualified table or view.
type Table struct {
	db   dbConn
	ns   string
	name string
}

func (t *Table) Name() string      { return t.name }
func (t *Table) Namespace() string { return t.ns }

func (t *Table) qualified() string { return mssqlIdent(t.ns) + "." + mssqlIdent(t.name) }

func (t *Table) Schema(ctx context.Context) ([]engine.Field, error) {
	rows, err := t.db.QueryContext(ctx, `
SELECT COLUMN_NAME, DATA_TYPE, CHARACTER_MAXIMUM_LENGTH, NUMERIC_PRECISION, NUMERIC_SCALE
FROM INFORMATION_SCHEMA.COLUMNS
WHERE TABLE_SCHEMA = @p1 AND TABLE_NAME = @p2
ORDER BY ORDINAL_POSITION`, t.ns, t.name)
	if err != nil {
		return nil, fmt.Errorf("mssql: schema %s.%s: %w", t.ns, t.name, err)
	}
	defer rows.Close()

	var out []engine.Field
	for rows.Next() {
		var (
			name, typ        string
			maxLen           sql.NullInt64
			precision, scale sql.NullInt64
		)
		if err := rows.Scan(&name, &typ, &maxLen, &precision, &scale); err != nil {
			return nil, fmt.Errorf("mssql: schema %s.%s: %w", t.ns, t.name, err)
		}
		out = append(out, engine.Field{Name: name, Type: formatType(typ, maxLen, precision, scale)})
	}
	return out, rows.Err()
}

func (t *Table) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := t.db.QueryRowContext(ctx, `SELECT COUNT_BIG(*) FROM `+t.qualified()).Scan(&n); err != nil {
		return 0, fmt.Errorf("mssql: count %s: %w", t.name, err)
	}
	return n, nil
}

func (t *Table) DistinctCount(ctx context.Context, column string) (int64, error) {
	var n int64
	if err := t.db.QueryRowContext(ctx, buildDistinctSQL(t.qualified(), column)).Scan(&n); err != nil {
		return 0, fmt.Errorf("mssql: distinct %s.%s: %w", t.name, column, err)
	}
	return n, nil
}

func (t *Table) Sample(ctx context.Context, n int) ([]engine.Row, error) {
	if n <= 0 {
		return nil, nil
	}
	rows, err := t.db.QueryContext(ctx, `SELECT TOP (@p1) * FROM `+t.qualified(), n)
	if err != nil {
		return nil, fmt.Errorf("mssql: sample %s: %w", t.name, err)
	}
	defer rows.Close()

	out, err := engine.ScanSQLRows(rows)
	if err != nil {
		return nil, fmt.Errorf("mssql: sample %s: %w", t.name, err)
	}
	return out, nil
}

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
	if err := t.db.QueryRowContext(ctx, q).Scan(dest...); err != nil {
		return nil, fmt.Errorf("mssql: null counts %s: %w", t.name, err)
	}

	out := make([]engine.ColumnCount, len(fields))
	for i, f := range fields {
		out[i] = engine.ColumnCount{Column: f.Name, Count: counts[i]}
	}
	return out, nil
}

func buildDistinctSQL(table, column string) string {
	return fmt.Sprintf(`SELECT COUNT_BIG(*) FROM (SELECT DISTINCT %s FROM %s) AS d`, mssqlIdent(column), table)
}

// buildNullCountSQL casts each null test to BIGINT before summing so large
// tables cannot overflow INT. The caller guarantees columns is non-empty.
func buildNullCountSQL(table string, columns []string) string {
	parts := make([]string, 0, len(columns))
	for _, c := range columns {
		parts = append(parts, fmt.Sprintf(
			"COALESCE(SUM(CAST(CASE WHEN %s IS NULL THEN 1 ELSE 0 END AS BIGINT)), 0)",
			mssqlIdent(c),
		))
	}
	return "SELECT " + strings.Join(parts, ", ") + " FROM " + table
}

// formatType renders INFORMATION_SCHEMA type columns the way they appear in
// DDL: nvarchar(64), varchar(max), decimal(18,2).
func formatType(typ string, maxLen, precision, scale sql.NullInt64) string {
	switch strings.ToLower(typ) {
	case "char", "varchar", "nchar", "nvarchar", "binary", "varbinary":
		if !maxLen.Valid {
			return typ
		}
		if maxLen.Int64 == -1 {
			return typ + "(max)"
		}
		return typ + "(" + strconv.FormatInt(maxLen.Int64, 10) + ")"
	case "decimal", "numeric":
		if !precision.Valid {
			return typ
		}
		return fmt.Sprintf("%s(%d,%d)", typ, precision.Int64, scale.Int64)
	default:
		return typ
	}
}

// mssqlIdent returns a bracket-quoted identifier, escaping ']' as ']]'.
func mssqlIdent(name string) string {
	return "[" + strings.ReplaceAll(name, "]", "]]") + "]"
}

var _ engine.Table = (*Table)(nil)
