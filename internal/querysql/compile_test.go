package querysql

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/domq/internal/domain"
)

func TestWhere(t *testing.T) {
	c := NewCompiler()
	name := func(op domain.Operator, v domain.Value) domain.Leaf { return domain.L("name", op, v) }
	age := func(op domain.Operator, v domain.Value) domain.Leaf { return domain.L("age", op, v) }
	ints := func(values ...domain.Value) domain.List { return domain.List(values) }

	tests := []struct {
		name   string
		input  domain.Expr
		sql    string
		params []any
	}{
		{"empty and", domain.And{}, "1 = 1", nil},
		{"empty or", domain.Or{}, "1 = 0", nil},
		{"nil", nil, "1 = 1", nil},
		{"equal", domain.And{name(domain.OpEqual, domain.String("Doe"))}, "name = ?", []any{"Doe"}},
		{"is null", domain.And{name(domain.OpEqual, domain.Null{})}, "name IS NULL", nil},
		{"is not null", domain.And{name(domain.OpNotEqual, domain.Null{})}, "name IS NOT NULL", nil},
		{"not equal", domain.And{name(domain.OpNotEqual, domain.String("Doe"))}, "(name != ? OR name IS NULL)", []any{"Doe"}},
		{"greater", domain.And{age(domain.OpGreater, domain.Int(5))}, "age > ?", []any{int64(5)}},
		{"less equal", domain.And{age(domain.OpLessEqual, domain.Float(2.5))}, "age <= ?", []any{2.5}},
		{"ilike", domain.And{name(domain.OpILike, domain.String("%Doe%"))}, `lower(name) LIKE lower(?) ESCAPE '\'`, []any{"%Doe%"}},
		{"like escapes", domain.And{name(domain.OpLike, domain.String(`a\b%%`))}, `name LIKE ? ESCAPE '\'`, []any{`a\\b\%`}},
		{"not like", domain.And{name(domain.OpNotLike, domain.String("a%"))}, `(name NOT LIKE ? ESCAPE '\' OR name IS NULL)`, []any{"a%"}},
		{
			"not ilike",
			domain.And{name(domain.OpNotILike, domain.String("%a%"))},
			`(lower(name) NOT LIKE lower(?) ESCAPE '\' OR name IS NULL)`,
			[]any{"%a%"},
		},
		{"in", domain.And{age(domain.OpIn, ints(domain.Int(1), domain.Int(2)))}, "age IN (?, ?)", []any{int64(1), int64(2)}},
		{"in empty", domain.And{age(domain.OpIn, domain.List{})}, "1 = 0", nil},
		{"not in empty", domain.And{age(domain.OpNotIn, domain.List{})}, "1 = 1", nil},
		{"in with null", domain.And{age(domain.OpIn, ints(domain.Int(1), domain.Null{}))}, "(age IN (?) OR age IS NULL)", []any{int64(1)}},
		{"in only null", domain.And{age(domain.OpIn, ints(domain.Null{}))}, "age IS NULL", nil},
		{"not in", domain.And{age(domain.OpNotIn, ints(domain.Int(1)))}, "(age NOT IN (?) OR age IS NULL)", []any{int64(1)}},
		{
			"not in with null",
			domain.And{age(domain.OpNotIn, ints(domain.Int(1), domain.Null{}))},
			"(age NOT IN (?) AND age IS NOT NULL)",
			[]any{int64(1)},
		},
		{"in scalar", domain.And{age(domain.OpIn, domain.Int(3))}, "age IN (?)", []any{int64(3)}},
		{"boolean", domain.And{domain.L("active", domain.OpEqual, domain.Bool(true))}, "active = ?", []any{true}},
		{"decimal", domain.And{domain.L("amount", domain.OpGreater, domain.MustDecimal("1.50"))}, "amount > ?", []any{"1.5"}},
		{"date", domain.And{domain.L("birthday", domain.OpLess, domain.NewDate(2020, time.January, 2))}, "birthday < ?", []any{"2020-01-02"}},
		{"rec_name", domain.And{domain.L("rec_name", domain.OpILike, domain.String("%x%"))}, `lower(rec_name) LIKE lower(?) ESCAPE '\'`, []any{"%x%"}},
		{
			"and",
			domain.And{name(domain.OpEqual, domain.String("Doe")), age(domain.OpGreater, domain.Int(5))},
			"name = ? AND age > ?",
			[]any{"Doe", int64(5)},
		},
		{
			"and or",
			domain.And{
				name(domain.OpEqual, domain.String("Doe")),
				domain.Or{age(domain.OpGreater, domain.Int(5)), age(domain.OpLess, domain.Int(1))},
			},
			"name = ? AND (age > ? OR age < ?)",
			[]any{"Doe", int64(5), int64(1)},
		},
		{
			"or and",
			domain.Or{
				domain.And{name(domain.OpEqual, domain.String("Doe")), age(domain.OpGreater, domain.Int(5))},
				age(domain.OpLess, domain.Int(1)),
			},
			"(name = ? AND age > ?) OR age < ?",
			[]any{"Doe", int64(5), int64(1)},
		},
		{"bare leaf", name(domain.OpEqual, domain.String("Doe")), "name = ?", []any{"Doe"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, params, err := c.Where(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.sql, sql)
			if diff := cmp.Diff(tt.params, params); diff != "" {
				t.Errorf("params mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestWhereColumns(t *testing.T) {
	c := NewCompiler(WithRecName("display_name"), WithColumns(map[string]string{"name": "full_name"}))

	sql, params, err := c.Where(domain.And{
		domain.L("rec_name", domain.OpILike, domain.String("%x%")),
		domain.L("name", domain.OpEqual, domain.String("Doe")),
	})
	require.NoError(t, err)
	assert.Equal(t, `lower(display_name) LIKE lower(?) ESCAPE '\' AND full_name = ?`, sql)
	assert.Equal(t, []any{"%x%", "Doe"}, params)
}

func TestWhereErrors(t *testing.T) {
	c := NewCompiler()

	tests := []struct {
		name  string
		input domain.Expr
		err   error
	}{
		{"child_of", domain.And{domain.L("parent", domain.OpChildOf, domain.List{domain.Int(1)})}, ErrUnsupported},
		{"not child_of", domain.And{domain.L("parent", domain.OpNotChildOf, domain.List{domain.Int(1)})}, ErrUnsupported},
		{"relation path", domain.And{domain.L("company.code", domain.OpEqual, domain.String("A"))}, ErrUnsupported},
		{"list value", domain.And{domain.L("age", domain.OpEqual, domain.List{domain.Int(1)})}, ErrUnsupported},
		{"nested list", domain.And{domain.L("age", domain.OpIn, domain.List{domain.List{}})}, ErrUnsupported},
		{"bad column", domain.And{domain.L("name; DROP TABLE party", domain.OpEqual, domain.Int(1))}, ErrIdentifier},
		{"nested error", domain.Or{domain.And{domain.L("a b", domain.OpEqual, domain.Int(1))}}, ErrIdentifier},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := c.Where(tt.input)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.err), "got %v", err)
		})
	}
}

func TestSelect(t *testing.T) {
	c := NewCompiler()

	sql, params, err := c.Select("party", domain.And{domain.L("name", domain.OpEqual, domain.String("Doe"))})
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM party WHERE name = ? ORDER BY id COLLATE BINARY ASC", sql)
	assert.Equal(t, []any{"Doe"}, params)

	// Values are never interpolated
	assert.NotContains(t, sql, "Doe")

	_, _, err = c.Select("party; --", domain.And{})
	assert.True(t, errors.Is(err, ErrIdentifier))
}
