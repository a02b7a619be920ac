// Package editor derives the state of a field being edited from the domain
// of the record it belongs to.
//
// The record domain is inverted for one field at a time: the residual
// restricts the choices offered for the field, a residual that pins a
// single value forces it, and a violated domain marks the field invalid.
package editor

import (
	"strings"

	"github.com/roach88/domq/internal/domain"
	"github.com/roach88/domq/internal/field"
	"github.com/roach88/domq/internal/inversion"
)

// Impossible is the screen domain of a field no value can satisfy.
var Impossible = domain.And{domain.L("id", domain.OpEqual, domain.Null{})}

// CleanReadonly replaces the leaves on readonly fields of the set with
// empty ANDs. The user cannot change those fields, so their constraints
// must not block the inversion of the others. An empty AND holds, which
// also makes an OR containing it hold.
func CleanReadonly(e domain.Expr, fields *field.Set) domain.Expr {
	switch node := e.(type) {
	case domain.Leaf:
		if f, ok := fields.Lookup(node.Field); ok && f.Readonly {
			return domain.And{}
		}
		return node
	case domain.And:
		out := make(domain.And, len(node))
		for i, child := range node {
			out[i] = CleanReadonly(child, fields)
		}
		return out
	case domain.Or:
		out := make(domain.Or, len(node))
		for i, child := range node {
			out[i] = CleanReadonly(child, fields)
		}
		return out
	default:
		return e
	}
}

// screen inverts the cleaned record domain for f. The result is not
// localized.
func screen(e domain.Expr, f field.Field, ctx domain.Context, fields *field.Set) domain.Expr {
	r := inversion.Inverse(CleanReadonly(e, fields), f.Name, ctx)
	switch {
	case r.IsFalse():
		return Impossible
	case r.IsTrue():
		return domain.And{}
	}
	residual, _ := r.Expr()
	return residual
}

// ScreenDomain returns the domain the values of f must satisfy given the
// record domain e and the known values in ctx. It is Impossible when the
// record domain is already violated and empty when f is unconstrained.
//
// For relation fields the domain is expressed on the target records:
// "company" becomes "id" and "company.code" becomes "code".
func ScreenDomain(e domain.Expr, f field.Field, ctx domain.Context, fields *field.Set) domain.Expr {
	s := screen(e, f, ctx, fields)
	if f.Type.Relational() {
		return domain.Localize(domain.InverseLeaf(s), f.Name)
	}
	return domain.Localize(s, "")
}

// FieldDomain combines a screen domain with the domain attribute of the
// field itself.
func FieldDomain(screen, attribute domain.Expr) domain.Expr {
	return domain.Concat(screen, attribute)
}

// Verdict is the validation state of a field.
type Verdict struct {
	// Valid is false when the current value violates the record domain.
	Valid bool

	// Forced is set when the domain allows a single value, held in Value.
	Forced bool
	Value  domain.Value

	// Readonly is set when the forced value comes from an AND domain, so
	// the user cannot pick another one.
	Readonly bool
}

// Validate checks the value of f in ctx against the record domain e and
// the domain attribute of the field itself. Readonly fields are always
// valid.
func Validate(e, attribute domain.Expr, f field.Field, ctx domain.Context, fields *field.Set) Verdict {
	if f.Readonly {
		return Verdict{Valid: true}
	}

	s := screen(e, f, ctx, fields)
	if isImpossible(domain.Simplify(s)) {
		return Verdict{}
	}
	d := domain.Simplify(domain.Concat(s, attribute))

	verdict := Verdict{}
	if leaf, ok := single(d); ok && leaf.Operator == domain.OpEqual {
		value := leaf.Value
		if b, isBool := value.(domain.Bool); isBool && !bool(b) {
			value = domain.Null{}
		}

		original := domain.Merge(d)
		if !domain.IsEmpty(e) {
			original = domain.Merge(e)
		}
		_, readonly := original.(domain.And)

		if forcible(leaf.Field) {
			verdict.Forced = true
			verdict.Value = value
			verdict.Readonly = readonly
			ctx = with(ctx, f.Name, value)
		}
	}
	verdict.Valid = inversion.EvalDomain(d, ctx)
	return verdict
}

// forcible reports whether the field of a "=" residual names the edited
// value itself: the field, or the id of the related record.
func forcible(path string) bool {
	_, local, dotted := strings.Cut(path, ".")
	return !dotted || local == "id"
}

func single(d domain.Expr) (domain.Leaf, bool) {
	and, ok := d.(domain.And)
	if !ok || len(and) != 1 {
		return domain.Leaf{}, false
	}
	leaf, ok := and[0].(domain.Leaf)
	return leaf, ok
}

func isImpossible(d domain.Expr) bool {
	leaf, ok := single(d)
	return ok && leaf.Field == "id" && leaf.Operator == domain.OpEqual && domain.IsNull(leaf.Value)
}

// with returns a copy of ctx with name set to v.
func with(ctx domain.Context, name string, v domain.Value) domain.Context {
	out := make(domain.Context, len(ctx)+1)
	for k, val := range ctx {
		out[k] = val
	}
	out[name] = v
	return out
}
