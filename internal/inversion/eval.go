package inversion

import (
	"strings"

	"github.com/roach88/domq/internal/domain"
)

// Combine is the boolean connective a leaf is evaluated under.
type Combine int

const (
	CombineAnd Combine = iota
	CombineOr
)

func (c Combine) String() string {
	if c == CombineOr {
		return "or"
	}
	return "and"
}

// EvalLeaf evaluates one leaf against the context.
//
// A dotted field ("company.code") only checks that its relation is set.
// Under CombineAnd, "=" against an unset field holds: another inversion is
// expected to supply the value. The like family and child_of are not
// evaluated and always hold.
func EvalLeaf(leaf domain.Leaf, ctx domain.Context, combine Combine) bool {
	if strings.Contains(leaf.Field, ".") {
		return domain.Truthy(ctx[domain.Base(leaf.Field)])
	}

	current, ok := ctx[leaf.Field]
	if !ok {
		current = domain.Null{}
	}
	if leaf.Operator == domain.OpEqual && combine == CombineAnd && !domain.Truthy(current) {
		return true
	}

	value := leaf.Value
	if value == nil {
		value = domain.Null{}
	}
	current, value = alignReference(current, value)
	return apply(leaf.Operator, current, value)
}

// alignReference joins a 2-element list with "," when the other side is a
// string, so ["party", 1] compares equal to "party,1".
func alignReference(current, value domain.Value) (domain.Value, domain.Value) {
	if _, isString := current.(domain.String); isString {
		if list, ok := value.(domain.List); ok && len(list) == 2 {
			return current, domain.String(domain.Join(list, ","))
		}
	}
	if list, ok := current.(domain.List); ok && len(list) == 2 {
		if _, isString := value.(domain.String); isString {
			return domain.String(domain.Join(list, ",")), value
		}
	}
	return current, value
}

func apply(op domain.Operator, current, value domain.Value) bool {
	switch op {
	case domain.OpEqual:
		return domain.Equal(current, value)
	case domain.OpNotEqual:
		return !domain.Equal(current, value)
	case domain.OpGreater:
		return domain.Compare(current, value) > 0
	case domain.OpLess:
		return domain.Compare(current, value) < 0
	case domain.OpGreaterEqual:
		return domain.Compare(current, value) >= 0
	case domain.OpLessEqual:
		return domain.Compare(current, value) <= 0
	case domain.OpIn:
		return contains(value, current)
	case domain.OpNotIn:
		return !contains(value, current)
	default:
		// like, ilike, not like, not ilike, child_of, not child_of
		return true
	}
}

// contains reports whether current is a member of set. A list current
// matches when any of its elements is a member.
func contains(set, current domain.Value) bool {
	members, ok := set.(domain.List)
	if !ok {
		members = domain.List{set}
	}
	if list, ok := current.(domain.List); ok {
		for _, elem := range list {
			if member(members, elem) {
				return true
			}
		}
		return false
	}
	return member(members, current)
}

func member(members domain.List, v domain.Value) bool {
	for _, m := range members {
		if domain.Equal(m, v) {
			return true
		}
	}
	return false
}

// EvalDomain evaluates a domain against a complete context.
// An empty AND holds, an empty OR does not. A nil domain holds.
func EvalDomain(e domain.Expr, ctx domain.Context) bool {
	return eval(e, ctx, CombineAnd)
}

func eval(e domain.Expr, ctx domain.Context, combine Combine) bool {
	switch node := e.(type) {
	case domain.Leaf:
		return EvalLeaf(node, ctx, combine)
	case domain.And:
		for _, child := range node {
			if !eval(child, ctx, CombineAnd) {
				return false
			}
		}
		return true
	case domain.Or:
		for _, child := range node {
			if eval(child, ctx, CombineOr) {
				return true
			}
		}
		return false
	default:
		return true
	}
}
