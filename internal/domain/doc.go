// Package domain provides the canonical filter expression types for domq.
//
// A domain is a boolean filter over record fields. It is modeled as the
// sealed Expr interface with exactly three implementations:
//
//	Leaf  - (field, operator, value) constraint, optionally with a child_of target
//	And   - all children must hold; an empty And is always true
//	Or    - at least one child must hold; an empty Or is always false
//
// Leaf values use the sealed Value union (Null, Bool, Int, Float, Decimal,
// String, Date, DateTime, Time, List).
//
// Every function in this package is pure: trees are never mutated in place,
// rewrites always build new slices.
//
// Wire format:
//
// Domains travel as nested JSON arrays. A leaf is a 3-element array (4 for a
// child_of leaf with a target), an Or node is tagged with a leading "OR"
// element and an And node is an untagged list:
//
//	[["name", "ilike", "%Doe%"], ["OR", ["age", ">", 18], ["age", "=", null]]]
//
// Temporal and decimal values use the {"__class__": ...} object encoding.
//
// This package imports nothing internal. It is the foundational layer for
// field, parser, inversion, editor and querysql.
package domain
