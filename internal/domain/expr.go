package domain

import "strings"

// Operator is a leaf comparison operator.
type Operator string

// Leaf operators.
const (
	OpEqual        Operator = "="
	OpNotEqual     Operator = "!="
	OpGreater      Operator = ">"
	OpLess         Operator = "<"
	OpLessEqual    Operator = "<="
	OpGreaterEqual Operator = ">="
	OpIn           Operator = "in"
	OpNotIn        Operator = "not in"
	OpLike         Operator = "like"
	OpILike        Operator = "ilike"
	OpNotLike      Operator = "not like"
	OpNotILike     Operator = "not ilike"
	OpChildOf      Operator = "child_of"
	OpNotChildOf   Operator = "not child_of"
)

// Operators lists every recognized leaf operator.
var Operators = []Operator{
	OpEqual, OpNotEqual, OpGreater, OpLess, OpLessEqual, OpGreaterEqual,
	OpIn, OpNotIn, OpLike, OpILike, OpNotLike, OpNotILike,
	OpChildOf, OpNotChildOf,
}

// Valid reports whether o is a recognized operator.
func (o Operator) Valid() bool {
	for _, op := range Operators {
		if op == o {
			return true
		}
	}
	return false
}

// IsLike reports whether o belongs to the like family.
func (o Operator) IsLike() bool {
	return strings.Contains(string(o), "like")
}

// IsChildOf reports whether o is child_of or not child_of.
func (o Operator) IsChildOf() bool {
	return strings.Contains(string(o), "child_of")
}

// Negate returns the negated operator for the operators that have one
// (ilike, like, =, in, child_of and their negations). Other operators are
// returned unchanged.
func (o Operator) Negate() Operator {
	switch o {
	case OpEqual:
		return OpNotEqual
	case OpNotEqual:
		return OpEqual
	case OpIn:
		return OpNotIn
	case OpNotIn:
		return OpIn
	case OpLike:
		return OpNotLike
	case OpNotLike:
		return OpLike
	case OpILike:
		return OpNotILike
	case OpNotILike:
		return OpILike
	case OpChildOf:
		return OpNotChildOf
	case OpNotChildOf:
		return OpChildOf
	default:
		return o
	}
}

// Expr is a domain expression.
//
// This is a sealed interface - only Leaf, And and Or implement it, which
// keeps type switches in the parser, inverter and SQL compiler exhaustive.
type Expr interface {
	expr() // Marker method - seals interface to this package
}

// Leaf is an atomic (field, operator, value) constraint.
//
// Field may be a dotted path traversing relations ("partner.country").
// Target is only used by child_of leaves and names the field that replaces
// the leaf's base field when the domain is localized.
type Leaf struct {
	Field    string
	Operator Operator
	Value    Value
	Target   string
}

func (Leaf) expr() {}

// And holds when every child holds. An empty And is true.
type And []Expr

func (And) expr() {}

// Or holds when at least one child holds. An empty Or is false.
type Or []Expr

func (Or) expr() {}

// L is shorthand for a three element leaf.
// Example: And{L("name", OpEqual, String("Doe"))}
func L(field string, op Operator, value Value) Leaf {
	return Leaf{Field: field, Operator: op, Value: value}
}

// IsLeaf reports whether e is a leaf with a recognized operator.
func IsLeaf(e Expr) bool {
	leaf, ok := e.(Leaf)
	return ok && leaf.Operator.Valid()
}

// Base returns the part of a field path before its first dot.
func Base(path string) string {
	base, _, _ := strings.Cut(path, ".")
	return base
}

// IsEmpty reports whether e is nil or a node without children.
// Empty domains are neutral for Concat.
func IsEmpty(e Expr) bool {
	switch node := e.(type) {
	case nil:
		return true
	case And:
		return len(node) == 0
	case Or:
		return len(node) == 0
	default:
		return false
	}
}

// Children returns the children of a node, or nil for a leaf.
func Children(e Expr) []Expr {
	switch node := e.(type) {
	case And:
		return node
	case Or:
		return node
	default:
		return nil
	}
}

// Walk calls fn for every leaf of e in depth-first order.
func Walk(e Expr, fn func(Leaf)) {
	switch node := e.(type) {
	case Leaf:
		fn(node)
	case And:
		for _, child := range node {
			Walk(child, fn)
		}
	case Or:
		for _, child := range node {
			Walk(child, fn)
		}
	}
}
