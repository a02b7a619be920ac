package querysql

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/domq/internal/domain"
)

// Row is one result row, keyed by column name.
type Row map[string]any

// Find runs the domain e against table and returns the matching rows,
// ordered by id.
//
// Returns an empty slice (not nil) when nothing matches.
func (c *Compiler) Find(ctx context.Context, db *sql.DB, table string, e domain.Expr) ([]Row, error) {
	query, params, err := c.Select(table, e)
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, query, params...)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", table, err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("columns of %s: %w", table, err)
	}

	result := []Row{}
	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan %s: %w", table, err)
		}
		row := make(Row, len(columns))
		for i, col := range columns {
			if b, ok := values[i].([]byte); ok {
				values[i] = string(b)
			}
			row[col] = values[i]
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", table, err)
	}
	return result, nil
}
