package inversion

import (
	"github.com/roach88/domq/internal/domain"
)

type resultKind int

const (
	kindResidual resultKind = iota
	kindTrue
	kindFalse
)

// Result is the outcome of an inversion: a constant or a residual domain.
// The zero value is an empty residual, which holds like True.
type Result struct {
	kind resultKind
	expr domain.Expr
}

var (
	// True means every value of the symbol satisfies the domain.
	True = Result{kind: kindTrue}

	// False means no value of the symbol can satisfy the domain.
	False = Result{kind: kindFalse}
)

// Residual wraps the part of a domain left to constrain the symbol.
func Residual(e domain.Expr) Result {
	return Result{kind: kindResidual, expr: e}
}

// Constant converts a boolean into True or False.
func Constant(b bool) Result {
	if b {
		return True
	}
	return False
}

// IsTrue reports whether r is the constant True.
func (r Result) IsTrue() bool { return r.kind == kindTrue }

// IsFalse reports whether r is the constant False.
func (r Result) IsFalse() bool { return r.kind == kindFalse }

// Expr returns the residual domain. ok is false for the constants.
func (r Result) Expr() (e domain.Expr, ok bool) {
	if r.kind != kindResidual {
		return nil, false
	}
	if r.expr == nil {
		return domain.And{}, true
	}
	return r.expr, true
}

// MarshalJSON encodes the constants as JSON booleans and a residual in the
// domain wire format.
func (r Result) MarshalJSON() ([]byte, error) {
	switch r.kind {
	case kindTrue:
		return []byte("true"), nil
	case kindFalse:
		return []byte("false"), nil
	default:
		e, _ := r.Expr()
		return domain.Marshal(e)
	}
}

func (r Result) String() string {
	data, err := r.MarshalJSON()
	if err != nil {
		return "<invalid residual>"
	}
	return string(data)
}
