package parser

import (
	"strings"

	"github.com/roach88/domq/internal/domain"
	"github.com/roach88/domq/internal/field"
)

// resolver turns clauses into domain expressions.
type resolver struct {
	fields *field.Set
}

// resolve converts a clause sequence into an implicit AND.
func (r resolver) resolve(clauses []clause) domain.And {
	out := make(domain.And, 0, len(clauses))
	for _, c := range clauses {
		out = append(out, r.resolveClause(c))
	}
	return out
}

func (r resolver) resolveClause(c clause) domain.Expr {
	switch c := c.(type) {
	case boolean:
		operands := make([]domain.Expr, len(c.operands))
		for i, operand := range c.operands {
			operands[i] = r.resolveClause(operand)
		}
		if c.op == "OR" {
			return domain.Or(operands)
		}
		return domain.And(operands)
	case term:
		return domain.L(field.RecName, domain.OpILike, domain.String(likify(c.text)))
	case constraint:
		f, ok := r.fields.ByLabel(c.label)
		if !ok {
			// The grouper only emits constraints on known labels.
			return domain.L(field.RecName, domain.OpILike, domain.String(likify(strings.Join(c.values, " "))))
		}
		return r.resolveConstraint(f, c)
	case group:
		return r.resolve(c)
	default:
		return domain.And{}
	}
}

func (r resolver) resolveConstraint(f field.Field, c constraint) domain.Expr {
	operator := c.operator
	if operator == "" {
		operator = string(f.DefaultOperator())
	}
	if c.list {
		if operator == "!" {
			operator = string(domain.OpNotIn)
		} else {
			operator = string(domain.OpIn)
		}
	}
	if operator == "!" {
		operator = string(f.NegatedOperator())
	}
	op := domain.Operator(operator)

	if c.list {
		return domain.L(f.Name, op, f.Convert(domain.Strings(c.values...)))
	}

	var value domain.Value = domain.Null{}
	if c.values != nil {
		value = domain.String(c.values[0])
	}
	if op.IsLike() {
		text := ""
		if c.values != nil {
			text = c.values[0]
		}
		value = domain.String(likify(text))
	}

	if s, ok := value.(domain.String); ok && f.Type.Ordered() && strings.Contains(string(s), "..") {
		bounds := strings.Split(string(s), "..")
		return domain.And{
			domain.L(f.Name, domain.OpGreaterEqual, f.Convert(domain.String(bounds[0]))),
			domain.L(f.Name, domain.OpLess, f.Convert(domain.String(bounds[1]))),
		}
	}
	return domain.L(f.Name, op, f.Convert(value))
}

// likify turns a search word into an ilike pattern: "%word%" unless the
// word already holds a wildcard ("%%" is an escaped percent sign).
func likify(text string) string {
	if text == "" {
		return "%"
	}
	if strings.Contains(strings.ReplaceAll(text, "%%", "__"), "%") {
		return text
	}
	return "%" + text + "%"
}
