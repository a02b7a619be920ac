package parser

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/domq/internal/domain"
)

func TestString(t *testing.T) {
	p := newTestParser()
	str := func(s string) domain.String { return domain.String(s) }
	name := func(op domain.Operator, v domain.Value) domain.Leaf { return domain.L("name", op, v) }

	tests := []struct {
		name     string
		input    domain.Expr
		expected string
	}{
		{"equal", domain.And{name(domain.OpEqual, str("Doe"))}, "Name: =Doe"},
		{"equal null", domain.And{name(domain.OpEqual, domain.Null{})}, "Name: ="},
		{"equal empty", domain.And{name(domain.OpEqual, str(""))}, `Name: =""`},
		{"match all", domain.And{name(domain.OpILike, str("%"))}, "Name: "},
		{"substring", domain.And{name(domain.OpILike, str("%Doe%"))}, "Name: Doe"},
		{"ilike exact", domain.And{name(domain.OpILike, str("Doe"))}, "Name: =Doe"},
		{"prefix", domain.And{name(domain.OpILike, str("Doe%"))}, "Name: Doe%"},
		{"escaped percent", domain.And{name(domain.OpILike, str("Doe%%"))}, "Name: =Doe%"},
		{"literal percent", domain.And{name(domain.OpILike, str("%%%%"))}, "Name: %%"},
		{"inner wildcard", domain.And{name(domain.OpILike, str("%Do%e%"))}, "Name: %Do%e%"},
		{"rec_name literal percent", domain.And{domain.L("rec_name", domain.OpILike, str("%%%%"))}, "%%"},
		{"not ilike", domain.And{name(domain.OpNotILike, str("%Doe%"))}, "Name: !Doe"},
		{"not ilike exact", domain.And{name(domain.OpNotILike, str("Doe"))}, "Name: !Doe"},
		{"in", domain.And{name(domain.OpIn, domain.Strings("John", "Jane"))}, "Name: John;Jane"},
		{"not in", domain.And{name(domain.OpNotIn, domain.Strings("John", "Jane"))}, "Name: !John;Jane"},
		{
			"and",
			domain.And{name(domain.OpILike, str("%Doe%")), name(domain.OpILike, str("%Jane%"))},
			"Name: Doe Name: Jane",
		},
		{
			"or",
			domain.Or{name(domain.OpILike, str("%Doe%")), name(domain.OpILike, str("%Jane%"))},
			"Name: Doe or Name: Jane",
		},
		{
			"nested",
			domain.And{
				name(domain.OpILike, str("%Doe%")),
				domain.Or{name(domain.OpILike, str("%John%")), name(domain.OpILike, str("%Jane%"))},
			},
			"Name: Doe (Name: John or Name: Jane)",
		},
		{"empty", domain.And{}, ""},
		{"nil", nil, ""},
		{"empty child skipped", domain.And{domain.Or{}, name(domain.OpILike, str("%Doe%"))}, "Name: Doe"},
		{"quoted label", domain.And{domain.L("surname", domain.OpILike, str("%Doe%"))}, `"(Sur)Name": Doe`},
		{"quoted value", domain.And{name(domain.OpILike, str("%John Doe%"))}, `Name: "John Doe"`},
		{"bare leaf", name(domain.OpILike, str("%Doe%")), "Name: Doe"},
		{"rec_name", domain.And{domain.L("rec_name", domain.OpILike, str("%John%"))}, "John"},
		{"rec_name quoted", domain.And{domain.L("rec_name", domain.OpILike, str("%John Doe%"))}, `"John Doe"`},
		{"rec_name empty", domain.And{domain.L("rec_name", domain.OpILike, str("%"))}, `""`},
		{"rec_name keyword", domain.And{domain.L("rec_name", domain.OpILike, str("%or%"))}, `"or"`},
		{"unknown field", domain.And{domain.L("code", domain.OpEqual, str("A1"))}, "A1"},
		{"integer", domain.And{domain.L("integer", domain.OpEqual, domain.Int(3))}, "Integer: 3"},
		{"integer negated", domain.And{domain.L("integer", domain.OpNotEqual, domain.Int(3))}, "Integer: !3"},
		{"integer greater", domain.And{domain.L("integer", domain.OpGreater, domain.Int(3))}, "Integer: >3"},
		{"integer at most", domain.And{domain.L("integer", domain.OpLessEqual, domain.Int(3))}, "Integer: <=3"},
		{"boolean", domain.And{domain.L("active", domain.OpEqual, domain.Bool(true))}, "Active: True"},
		{"selection", domain.And{domain.L("selection", domain.OpEqual, str("male"))}, "Selection: Male"},
		{"selection empty", domain.And{domain.L("selection", domain.OpEqual, str(""))}, "Selection: "},
		{"selection negated empty", domain.And{domain.L("selection", domain.OpNotEqual, str(""))}, `Selection: !""`},
		{"numeric", domain.And{domain.L("amount", domain.OpEqual, domain.MustDecimal("1.50"))}, "Amount: 1.5"},
		{"date", domain.And{domain.L("birthday", domain.OpGreaterEqual, domain.NewDate(2012, time.November, 24))}, "Birthday: >=2012-11-24"},
		{"many2one null", domain.And{domain.L("company", domain.OpEqual, domain.Null{})}, "Company: ="},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, p.String(tt.input))
		})
	}
}
