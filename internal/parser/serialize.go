package parser

import (
	"strings"

	"github.com/roach88/domq/internal/domain"
	"github.com/roach88/domq/internal/field"
)

// serialize renders a domain as query text.
func serialize(fields *field.Set, e domain.Expr) string {
	switch node := e.(type) {
	case domain.Leaf:
		return serializeLeaf(fields, node)
	case domain.And:
		return serializeChildren(fields, node, " ")
	case domain.Or:
		return serializeChildren(fields, node, " or ")
	default:
		return ""
	}
}

func serializeChildren(fields *field.Set, children []domain.Expr, sep string) string {
	parts := make([]string, 0, len(children))
	for _, child := range children {
		if domain.IsEmpty(child) {
			continue
		}
		if leaf, ok := child.(domain.Leaf); ok {
			parts = append(parts, serializeLeaf(fields, leaf))
			continue
		}
		parts = append(parts, "("+serialize(fields, child)+")")
	}
	return strings.Join(parts, sep)
}

func serializeLeaf(fields *field.Set, leaf domain.Leaf) string {
	f, ok := fields.Lookup(leaf.Field)
	if !ok {
		text := domain.Text(leaf.Value)
		if s, isString := leaf.Value.(domain.String); isString && isWrapped(string(s)) {
			text = unwrap(string(s))
		}
		if text == "" {
			return `""`
		}
		return field.Quote(text)
	}

	operator := string(leaf.Operator)
	value := leaf.Value
	if strings.Contains(operator, "ilike") {
		if s, isString := value.(domain.String); isString {
			switch {
			case isWrapped(string(s)):
				value = domain.String(unwrap(string(s)))
			case !strings.Contains(escapePercent(string(s)), "%"):
				if leaf.Operator == domain.OpILike {
					operator = "="
				} else {
					operator = "!"
				}
				value = domain.String(strings.ReplaceAll(string(s), "%%", "%"))
			}
		}
	}

	switch operator {
	case string(f.DefaultOperator()):
		operator = ""
	case string(f.NegatedOperator()):
		operator = "!"
	case string(domain.OpIn):
		operator = ""
	case string(domain.OpNotIn):
		operator = "!"
	}

	formatted := f.Format(value)
	if s, isString := value.(domain.String); isString && s == "" && explicitOperators[operator] && f.Type.Textual() {
		formatted = `""`
	}
	return field.Quote(f.Label) + ": " + operator + formatted
}

// escapePercent hides "%%" escapes so only real wildcards remain.
func escapePercent(s string) string {
	return strings.ReplaceAll(s, "%%", "__")
}

// isWrapped reports whether s is a "%...%" substring pattern: the text
// between the outer percent signs holds no wildcard of its own. A lone
// "%" wraps the empty string, "%%" is an escaped percent sign.
func isWrapped(s string) bool {
	if s == "%" {
		return true
	}
	if len(s) < 3 || s[0] != '%' || s[len(s)-1] != '%' {
		return false
	}
	return !strings.Contains(escapePercent(s[1:len(s)-1]), "%")
}

func unwrap(s string) string {
	if len(s) < 2 {
		return ""
	}
	return s[1 : len(s)-1]
}
