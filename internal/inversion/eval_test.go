package inversion

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/domq/internal/domain"
)

func TestEvalDomain(t *testing.T) {
	today := domain.NewDate(2024, time.March, 5)
	now := domain.NewDateTime(2024, time.March, 5, 14, 30, 0)
	between := domain.Or{eq("x", i(4)), domain.And{gt("x", i(6)), lt("x", i(10))}}
	positive := domain.And{gt("x", i(0)), domain.Or{eq("x", i(3)), eq("x", i(2))}}
	outside := domain.Or{gt("x", i(10)), lt("x", i(0))}
	reference := domain.List{s("test"), i(1)}

	tests := []struct {
		name     string
		domain   domain.Expr
		ctx      domain.Context
		expected bool
	}{
		{"greater", domain.And{gt("x", i(5))}, domain.Context{"x": i(6)}, true},
		{"not greater", domain.And{gt("x", i(5))}, domain.Context{"x": i(4)}, false},
		{"date greater than null", domain.And{gt("x", domain.Null{})}, domain.Context{"x": today}, true},
		{"datetime greater than null", domain.And{gt("x", domain.Null{})}, domain.Context{"x": now}, true},
		{"null less than date", domain.And{lt("x", today)}, domain.Context{"x": domain.Null{}}, true},
		{"null less than datetime", domain.And{lt("x", now)}, domain.Context{"x": domain.Null{}}, true},
		{"in", domain.And{leaf("x", domain.OpIn, ints(3, 5))}, domain.Context{"x": i(3)}, true},
		{"not a member", domain.And{leaf("x", domain.OpIn, ints(3, 5))}, domain.Context{"x": i(4)}, false},
		{"list in", domain.And{leaf("x", domain.OpIn, ints(3, 5))}, domain.Context{"x": ints(3)}, true},
		{"list overlaps", domain.And{leaf("x", domain.OpIn, ints(3, 5))}, domain.Context{"x": ints(3, 4)}, true},
		{"list disjoint", domain.And{leaf("x", domain.OpIn, ints(3, 5))}, domain.Context{"x": ints(1, 2)}, false},
		{"not in", domain.And{leaf("x", domain.OpNotIn, ints(3, 5))}, domain.Context{"x": i(4)}, true},
		{"or above", outside, domain.Context{"x": i(11)}, true},
		{"or below", outside, domain.Context{"x": i(-4)}, true},
		{"or neither", outside, domain.Context{"x": i(5)}, false},
		{"and or 1", positive, domain.Context{"x": i(1)}, false},
		{"and or 3", positive, domain.Context{"x": i(3)}, true},
		{"and or 2", positive, domain.Context{"x": i(2)}, true},
		{"and or 4", positive, domain.Context{"x": i(4)}, false},
		{"and or 5", positive, domain.Context{"x": i(5)}, false},
		{"and or 6", positive, domain.Context{"x": i(6)}, false},
		{"or and 4", between, domain.Context{"x": i(4)}, true},
		{"or and 7", between, domain.Context{"x": i(7)}, true},
		{"or and 3", between, domain.Context{"x": i(3)}, false},
		{"or and 5", between, domain.Context{"x": i(5)}, false},
		{"or and 11", between, domain.Context{"x": i(11)}, false},
		{"string value list context", domain.And{eq("x", s("test,1"))}, domain.Context{"x": reference}, true},
		{"string value string context", domain.And{eq("x", s("test,1"))}, domain.Context{"x": s("test,1")}, true},
		{"string value other list", domain.And{eq("x", s("test,1"))}, domain.Context{"x": domain.List{s("test"), i(2)}}, false},
		{"string value other string", domain.And{eq("x", s("test,1"))}, domain.Context{"x": s("test,2")}, false},
		{"list value list context", domain.And{eq("x", reference)}, domain.Context{"x": reference}, true},
		{"list value string context", domain.And{eq("x", reference)}, domain.Context{"x": s("test,1")}, true},
		{"list value other list", domain.And{eq("x", reference)}, domain.Context{"x": domain.List{s("test"), i(2)}}, false},
		{"list value other string", domain.And{eq("x", reference)}, domain.Context{"x": s("test,2")}, false},
		{"empty and", domain.And{}, nil, true},
		{"empty or", domain.Or{}, nil, false},
		{"nil", nil, nil, true},
		{"equal against unset", domain.And{eq("x", i(3))}, domain.Context{}, true},
		{"equal against false", domain.And{eq("x", i(3))}, domain.Context{"x": domain.Bool(false)}, true},
		{"equal against unset in or", domain.Or{eq("x", i(3))}, domain.Context{}, false},
		{"dotted set", domain.And{leaf("x.code", domain.OpEqual, s("A"))}, domain.Context{"x": i(1)}, true},
		{"dotted unset", domain.And{leaf("x.code", domain.OpEqual, s("A"))}, domain.Context{}, false},
		{"ilike ignored", domain.And{leaf("x", domain.OpILike, s("%a%"))}, domain.Context{"x": s("b")}, true},
		{"child_of ignored", domain.And{leaf("x", domain.OpChildOf, ints(1))}, domain.Context{"x": i(2)}, true},
		{"numeric across types", domain.And{eq("x", domain.MustDecimal("1.50"))}, domain.Context{"x": domain.Float(1.5)}, true},
		{"not equal", domain.And{leaf("x", domain.OpNotEqual, i(3))}, domain.Context{"x": i(4)}, true},
		{"bare leaf", gt("x", i(5)), domain.Context{"x": i(6)}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, EvalDomain(tt.domain, tt.ctx))
		})
	}
}

func TestEvalLeafCombine(t *testing.T) {
	l := eq("x", i(3))
	ctx := domain.Context{"x": domain.Null{}}

	assert.True(t, EvalLeaf(l, ctx, CombineAnd))
	assert.False(t, EvalLeaf(l, ctx, CombineOr))
	assert.Equal(t, "and", CombineAnd.String())
	assert.Equal(t, "or", CombineOr.String())
}
