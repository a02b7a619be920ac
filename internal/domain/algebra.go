package domain

import "strings"

// Simplify returns the canonical form of e.
//
// Nested nodes of the same kind are spliced into their parent and nodes
// with a single child are replaced by that child. A node that reduces to a
// single leaf is returned as And{leaf}, so a non-leaf input always yields a
// node. Simplify is idempotent.
//
// Example:
//
//	Simplify(Or{And{L("x", OpEqual, Int(3))}}) == And{L("x", OpEqual, Int(3))}
func Simplify(e Expr) Expr {
	switch e.(type) {
	case nil:
		return And{}
	case Leaf:
		return e
	}
	s := simplifyNode(e)
	if leaf, ok := s.(Leaf); ok {
		return And{leaf}
	}
	return s
}

func simplifyNode(e Expr) Expr {
	switch node := e.(type) {
	case And:
		children := spliceChildren(node, false)
		if len(children) == 1 {
			return children[0]
		}
		return And(children)
	case Or:
		children := spliceChildren(node, true)
		if len(children) == 1 {
			return children[0]
		}
		return Or(children)
	default:
		return e
	}
}

func spliceChildren(children []Expr, or bool) []Expr {
	out := make([]Expr, 0, len(children))
	for _, child := range children {
		s := simplifyNode(child)
		switch node := s.(type) {
		case And:
			if !or {
				out = append(out, node...)
				continue
			}
		case Or:
			if or {
				out = append(out, node...)
				continue
			}
		}
		out = append(out, s)
	}
	return out
}

// Merge flattens nested nodes of the same kind into one flat node.
// Subtrees of the other kind are kept (merged themselves), and a bare leaf
// becomes And{leaf}. Unlike Simplify, single-child nodes are not collapsed,
// so Merge(e) always reports the kind of e's root.
func Merge(e Expr) Expr {
	switch node := e.(type) {
	case nil:
		return And{}
	case Leaf:
		return And{node}
	case Or:
		return Or(mergeChildren(node, true))
	case And:
		return And(mergeChildren(node, false))
	default:
		return And{}
	}
}

func mergeChildren(children []Expr, or bool) []Expr {
	out := make([]Expr, 0, len(children))
	for _, child := range children {
		switch node := child.(type) {
		case Leaf:
			out = append(out, node)
		case And:
			if or {
				out = append(out, Merge(node))
			} else {
				out = append(out, mergeChildren(node, false)...)
			}
		case Or:
			if or {
				out = append(out, mergeChildren(node, true)...)
			} else {
				out = append(out, Merge(node))
			}
		}
	}
	return out
}

// Localize rewrites e from the point of view of the record a relation
// field points to:
//
//	relation          -> id
//	relation.code     -> code
//	child_of + target -> target field, target dropped
//
// child_of leaves without a target and other paths are left unchanged.
func Localize(e Expr, relation string) Expr {
	return mapLeaves(e, func(leaf Leaf) Leaf {
		if leaf.Operator.IsChildOf() {
			if leaf.Target == "" {
				return leaf
			}
			return Leaf{Field: leaf.Target, Operator: leaf.Operator, Value: leaf.Value}
		}
		leaf.Field = localPart(leaf.Field, relation)
		return leaf
	})
}

func localPart(path, relation string) string {
	if relation == "" {
		return path
	}
	if path == relation {
		return "id"
	}
	if rest, ok := strings.CutPrefix(path, relation+"."); ok {
		return rest
	}
	return path
}

// Unlocalize prefixes every leaf field of e with relation + ".".
func Unlocalize(e Expr, relation string) Expr {
	return mapLeaves(e, func(leaf Leaf) Leaf {
		leaf.Field = relation + "." + leaf.Field
		return leaf
	})
}

// InverseLeaf swaps the field and target of child_of leaves that carry a
// target. Other leaves are unchanged.
func InverseLeaf(e Expr) Expr {
	return mapLeaves(e, func(leaf Leaf) Leaf {
		if leaf.Operator.IsChildOf() && leaf.Target != "" {
			leaf.Field, leaf.Target = leaf.Target, leaf.Field
		}
		return leaf
	})
}

// Concat AND-combines domains, skipping empty ones.
// A single remaining domain is returned as is.
func Concat(exprs ...Expr) Expr {
	parts := make(And, 0, len(exprs))
	for _, e := range exprs {
		if IsEmpty(e) {
			continue
		}
		parts = append(parts, e)
	}
	if len(parts) == 1 {
		return parts[0]
	}
	return parts
}

func mapLeaves(e Expr, fn func(Leaf) Leaf) Expr {
	switch node := e.(type) {
	case Leaf:
		return fn(node)
	case And:
		out := make(And, len(node))
		for i, child := range node {
			out[i] = mapLeaves(child, fn)
		}
		return out
	case Or:
		out := make(Or, len(node))
		for i, child := range node {
			out[i] = mapLeaves(child, fn)
		}
		return out
	default:
		return e
	}
}
