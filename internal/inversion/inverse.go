package inversion

import (
	"slices"

	"github.com/roach88/domq/internal/domain"
)

// node is a combinator over leaves and nested nodes. variables lists the
// bases of every field referenced below the node, once each, in order of
// first appearance.
type node struct {
	or        bool
	branches  []branch
	variables []string
}

// branch holds either a leaf or a nested node.
type branch struct {
	leaf domain.Leaf
	sub  *node
}

func build(e domain.Expr) *node {
	switch expr := e.(type) {
	case domain.Leaf:
		return newNode(false, []domain.Expr{expr})
	case domain.Or:
		return newNode(true, expr)
	case domain.And:
		return newNode(false, expr)
	default:
		return newNode(false, nil)
	}
}

func newNode(or bool, children []domain.Expr) *node {
	n := &node{or: or, branches: make([]branch, 0, len(children))}
	for _, child := range children {
		if leaf, ok := child.(domain.Leaf); ok {
			n.branches = append(n.branches, branch{leaf: leaf})
			n.addVariable(domain.Base(leaf.Field))
			continue
		}
		sub := build(child)
		n.branches = append(n.branches, branch{sub: sub})
		for _, v := range sub.variables {
			n.addVariable(v)
		}
	}
	return n
}

func (n *node) addVariable(name string) {
	if !slices.Contains(n.variables, name) {
		n.variables = append(n.variables, name)
	}
}

// Variables returns the field bases referenced by a domain, in order of
// first appearance.
func Variables(e domain.Expr) []string {
	return slices.Clone(build(e).variables)
}

// Inverse computes what domain e requires from the field symbol once the
// fields in ctx are known. A domain that never mentions symbol yields True.
// The residual, when there is one, is simplified.
func Inverse(e domain.Expr, symbol string, ctx domain.Context) Result {
	n := build(e)
	if !slices.Contains(n.variables, symbol) {
		return True
	}
	return n.inverse(symbol, ctx)
}

func (n *node) inverse(symbol string, ctx domain.Context) Result {
	if n.or {
		return n.inverseOr(symbol, ctx)
	}
	return n.inverseAnd(symbol, ctx)
}

func (n *node) inverseAnd(symbol string, ctx domain.Context) Result {
	var residual domain.And
	for _, b := range n.branches {
		if b.sub != nil {
			r := b.sub.inverse(symbol, ctx)
			switch {
			case r.IsFalse():
				return False
			case r.IsTrue():
				continue
			}
			e, _ := r.Expr()
			residual = append(residual, e)
			continue
		}

		base := domain.Base(b.leaf.Field)
		if base == symbol {
			residual = append(residual, b.leaf)
			continue
		}
		if _, known := ctx[base]; known && !EvalLeaf(b.leaf, ctx, CombineAnd) {
			return False
		}
	}
	if len(residual) == 0 {
		return True
	}
	return Residual(domain.Simplify(residual))
}

func (n *node) inverseOr(symbol string, ctx domain.Context) Result {
	referenced := slices.Contains(n.variables, symbol)
	if !referenced && slices.ContainsFunc(n.variables, func(v string) bool {
		_, known := ctx[v]
		return !known
	}) {
		// Nothing is known about this branch; the constraint is left to
		// whoever sets the missing fields.
		return True
	}

	var residual domain.Or
	for _, b := range n.branches {
		if b.sub != nil {
			r := b.sub.inverse(symbol, ctx)
			if r.IsTrue() {
				return True
			}
			if !referenced || r.IsFalse() {
				continue
			}
			e, _ := r.Expr()
			residual = append(residual, e)
			continue
		}

		base := domain.Base(b.leaf.Field)
		if base == symbol {
			residual = append(residual, b.leaf)
			continue
		}
		if _, known := ctx[base]; known && EvalLeaf(b.leaf, ctx, CombineOr) {
			return True
		}
	}
	if len(residual) == 0 {
		return False
	}
	return Residual(domain.Simplify(residual))
}
