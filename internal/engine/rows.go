package engine

import (
	"database/sql"
	"fmt"
)

// ScanSQLRows drains a database/sql result set into Rows, keeping the column
// order the driver reports. It is shared by the database/sql based backends.
//
// Edge cases:
//   - Values are passed through NormalizeValue, so TEXT returned as []byte by
//     some drivers renders as a string.
//   - rows is not closed; the caller owns it.
func ScanSQLRows(rows *sql.Rows) ([]Row, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("columns: %w", err)
	}

	var out []Row
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}

		r := make(Row, len(cols))
		for i, c := range cols {
			r[i] = Cell{Name: c, Value: NormalizeValue(vals[i])}
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
