// Package querysql compiles canonical domains to parameterized SQLite
// WHERE clauses.
package querysql

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/roach88/domq/internal/domain"
	"github.com/roach88/domq/internal/field"
)

// ErrUnsupported reports a leaf that has no SQL translation: child_of,
// dotted relation paths and list values outside in / not in.
var ErrUnsupported = errors.New("unsupported")

// ErrIdentifier reports a field or table name that is not a plain SQL
// identifier.
var ErrIdentifier = errors.New("invalid identifier")

var identifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Compiler compiles domains to SQL.
//
// CRITICAL: All values are parameterized (never interpolated). Column
// names are checked against a plain identifier pattern.
type Compiler struct {
	recName string
	columns map[string]string
}

// Option configures a Compiler.
type Option func(*Compiler)

// WithRecName sets the column searched by rec_name leaves.
// Default: "rec_name"
func WithRecName(column string) Option {
	return func(c *Compiler) {
		c.recName = column
	}
}

// WithColumns maps field names to column names. Fields not listed use
// their own name.
func WithColumns(columns map[string]string) Option {
	return func(c *Compiler) {
		for name, column := range columns {
			c.columns[name] = column
		}
	}
}

// NewCompiler creates a Compiler.
func NewCompiler(opts ...Option) *Compiler {
	c := &Compiler{
		recName: field.RecName,
		columns: make(map[string]string),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Where compiles e to a WHERE clause fragment and its parameters.
// An empty AND compiles to "1 = 1", an empty OR to "1 = 0".
func (c *Compiler) Where(e domain.Expr) (string, []any, error) {
	switch node := e.(type) {
	case nil:
		return "1 = 1", nil, nil
	case domain.Leaf:
		return c.compileLeaf(node)
	case domain.And:
		if len(node) == 0 {
			return "1 = 1", nil, nil
		}
		return c.compileChildren(node, " AND ")
	case domain.Or:
		if len(node) == 0 {
			return "1 = 0", nil, nil
		}
		return c.compileChildren(node, " OR ")
	default:
		return "", nil, fmt.Errorf("unsupported expression type: %T", e)
	}
}

// Select compiles a full query over table. Rows are ordered by id.
func (c *Compiler) Select(table string, e domain.Expr) (string, []any, error) {
	if !identifier.MatchString(table) {
		return "", nil, fmt.Errorf("table %q: %w", table, ErrIdentifier)
	}
	where, params, err := c.Where(e)
	if err != nil {
		return "", nil, err
	}
	// COLLATE BINARY ensures deterministic ordering across SQLite versions
	sql := fmt.Sprintf("SELECT * FROM %s WHERE %s ORDER BY id COLLATE BINARY ASC", table, where)
	return sql, params, nil
}

func (c *Compiler) compileChildren(children []domain.Expr, sep string) (string, []any, error) {
	parts := make([]string, 0, len(children))
	var params []any
	for i, child := range children {
		sql, childParams, err := c.Where(child)
		if err != nil {
			return "", nil, fmt.Errorf("[%d]: %w", i, err)
		}
		if !domain.IsLeaf(child) && len(children) > 1 {
			sql = "(" + sql + ")"
		}
		parts = append(parts, sql)
		params = append(params, childParams...)
	}
	return strings.Join(parts, sep), params, nil
}

func (c *Compiler) column(name string) (string, error) {
	if name == field.RecName {
		name = c.recName
	} else if mapped, ok := c.columns[name]; ok {
		name = mapped
	}
	if strings.Contains(name, ".") {
		return "", fmt.Errorf("relation path %q: %w", name, ErrUnsupported)
	}
	if !identifier.MatchString(name) {
		return "", fmt.Errorf("column %q: %w", name, ErrIdentifier)
	}
	return name, nil
}

func (c *Compiler) compileLeaf(leaf domain.Leaf) (string, []any, error) {
	col, err := c.column(leaf.Field)
	if err != nil {
		return "", nil, err
	}

	switch leaf.Operator {
	case domain.OpIn, domain.OpNotIn:
		return compileIn(col, leaf)
	case domain.OpChildOf, domain.OpNotChildOf:
		return "", nil, fmt.Errorf("%s %s: %w", leaf.Field, leaf.Operator, ErrUnsupported)
	}

	if _, isList := leaf.Value.(domain.List); isList {
		return "", nil, fmt.Errorf("%s %s list value: %w", leaf.Field, leaf.Operator, ErrUnsupported)
	}

	if domain.IsNull(leaf.Value) {
		switch leaf.Operator {
		case domain.OpEqual:
			return col + " IS NULL", nil, nil
		case domain.OpNotEqual:
			return col + " IS NOT NULL", nil, nil
		}
	}

	param := toParam(leaf.Value)
	switch leaf.Operator {
	case domain.OpEqual, domain.OpGreater, domain.OpLess, domain.OpGreaterEqual, domain.OpLessEqual:
		return fmt.Sprintf("%s %s ?", col, leaf.Operator), []any{param}, nil
	case domain.OpNotEqual:
		return fmt.Sprintf("(%s != ? OR %s IS NULL)", col, col), []any{param}, nil
	case domain.OpLike:
		return col + ` LIKE ? ESCAPE '\'`, []any{pattern(param)}, nil
	case domain.OpILike:
		return fmt.Sprintf(`lower(%s) LIKE lower(?) ESCAPE '\'`, col), []any{pattern(param)}, nil
	case domain.OpNotLike:
		return fmt.Sprintf(`(%s NOT LIKE ? ESCAPE '\' OR %s IS NULL)`, col, col), []any{pattern(param)}, nil
	case domain.OpNotILike:
		return fmt.Sprintf(`(lower(%s) NOT LIKE lower(?) ESCAPE '\' OR %s IS NULL)`, col, col), []any{pattern(param)}, nil
	default:
		return "", nil, fmt.Errorf("operator %q: %w", leaf.Operator, ErrUnsupported)
	}
}

// compileIn compiles in / not in. SQL IN never matches NULL, so a null
// member is tested separately. Empty lists match nothing (in) or
// everything (not in).
func compileIn(col string, leaf domain.Leaf) (string, []any, error) {
	values, ok := leaf.Value.(domain.List)
	if !ok {
		values = domain.List{leaf.Value}
	}

	var params []any
	hasNull := false
	for _, v := range values {
		if domain.IsNull(v) {
			hasNull = true
			continue
		}
		if _, nested := v.(domain.List); nested {
			return "", nil, fmt.Errorf("%s %s nested list: %w", leaf.Field, leaf.Operator, ErrUnsupported)
		}
		params = append(params, toParam(v))
	}

	negate := leaf.Operator == domain.OpNotIn
	var sql string
	switch {
	case len(params) == 0 && !hasNull:
		if negate {
			return "1 = 1", nil, nil
		}
		return "1 = 0", nil, nil
	case len(params) == 0:
		if negate {
			return col + " IS NOT NULL", nil, nil
		}
		return col + " IS NULL", nil, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(params)), ", ")
	if negate {
		sql = fmt.Sprintf("%s NOT IN (%s)", col, placeholders)
		if hasNull {
			sql = fmt.Sprintf("(%s AND %s IS NOT NULL)", sql, col)
		} else {
			sql = fmt.Sprintf("(%s OR %s IS NULL)", sql, col)
		}
		return sql, params, nil
	}
	sql = fmt.Sprintf("%s IN (%s)", col, placeholders)
	if hasNull {
		sql = fmt.Sprintf("(%s OR %s IS NULL)", sql, col)
	}
	return sql, params, nil
}

// toParam converts a scalar value to a database/sql parameter. Decimals
// and temporal values are passed as text; SQLite applies the column
// affinity when comparing.
func toParam(v domain.Value) any {
	switch val := v.(type) {
	case nil, domain.Null:
		return nil
	case domain.Bool:
		return bool(val)
	case domain.Int:
		return int64(val)
	case domain.Float:
		return float64(val)
	case domain.String:
		return string(val)
	default:
		return domain.Text(v)
	}
}

// pattern turns a domain pattern into a LIKE pattern: "%%" (a literal
// percent sign) becomes "\%" and backslashes are escaped.
func pattern(param any) any {
	s, ok := param.(string)
	if !ok {
		return param
	}
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, "%%", `\%`)
}
