package querysql

import (
	"context"
	"database/sql"
	"fmt"
	"slices"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/roach88/domq/internal/domain"
	"github.com/roach88/domq/internal/field"
)

// Open opens a SQLite database at path (":memory:" for a private
// in-memory database).
//
// The pool is limited to one connection: SQLite allows a single writer and
// every connection to ":memory:" is a separate database.
func Open(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}
	return db, nil
}

// columnType returns the SQLite column type used to store values of t.
func columnType(t field.Type) string {
	switch t {
	case field.TypeInteger, field.TypeBoolean, field.TypeMany2One, field.TypeOne2One:
		return "INTEGER"
	case field.TypeFloat:
		return "REAL"
	case field.TypeNumeric:
		return "NUMERIC"
	default:
		return "TEXT"
	}
}

// CreateTable creates table with an id primary key, a rec_name column and
// one column per stored field of fields. x2many fields have no column.
// This function is idempotent.
func (c *Compiler) CreateTable(ctx context.Context, db *sql.DB, table string, fields *field.Set) error {
	if !identifier.MatchString(table) {
		return fmt.Errorf("table %q: %w", table, ErrIdentifier)
	}

	defs := []string{"id INTEGER PRIMARY KEY"}
	seen := map[string]bool{"id": true}
	add := func(name, typ string) error {
		col, err := c.column(name)
		if err != nil {
			return err
		}
		if seen[col] {
			return nil
		}
		seen[col] = true
		defs = append(defs, col+" "+typ)
		return nil
	}

	if err := add(field.RecName, "TEXT"); err != nil {
		return err
	}
	for _, f := range fields.Fields() {
		if f.Type == field.TypeOne2Many || f.Type == field.TypeMany2Many {
			continue
		}
		if err := add(f.Name, columnType(f.Type)); err != nil {
			return err
		}
	}

	stmt := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", table, strings.Join(defs, ", "))
	if _, err := db.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("create table %s: %w", table, err)
	}
	return nil
}

// Insert writes one record. Keys of values are field names; they are
// mapped to columns like domain fields are.
func (c *Compiler) Insert(ctx context.Context, db *sql.DB, table string, values map[string]domain.Value) error {
	if !identifier.MatchString(table) {
		return fmt.Errorf("table %q: %w", table, ErrIdentifier)
	}

	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	slices.Sort(names)

	cols := make([]string, len(names))
	params := make([]any, len(names))
	for i, name := range names {
		col, err := c.column(name)
		if err != nil {
			return err
		}
		cols[i] = col
		params[i] = toParam(values[name])
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(names)), ", ")
	stmt := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", table, strings.Join(cols, ", "), placeholders)
	if len(names) == 0 {
		stmt = fmt.Sprintf("INSERT INTO %s DEFAULT VALUES", table)
	}
	if _, err := db.ExecContext(ctx, stmt, params...); err != nil {
		return fmt.Errorf("insert into %s: %w", table, err)
	}
	return nil
}
