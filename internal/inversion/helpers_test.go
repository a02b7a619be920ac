package inversion

import "github.com/roach88/domq/internal/domain"

func leaf(field string, op domain.Operator, v domain.Value) domain.Leaf {
	return domain.L(field, op, v)
}

func eq(field string, v domain.Value) domain.Leaf { return leaf(field, domain.OpEqual, v) }
func gt(field string, v domain.Value) domain.Leaf { return leaf(field, domain.OpGreater, v) }
func lt(field string, v domain.Value) domain.Leaf { return leaf(field, domain.OpLess, v) }

func i(n int64) domain.Int       { return domain.Int(n) }
func s(text string) domain.String { return domain.String(text) }

func ints(values ...int64) domain.List {
	list := make(domain.List, len(values))
	for k, v := range values {
		list[k] = domain.Int(v)
	}
	return list
}
