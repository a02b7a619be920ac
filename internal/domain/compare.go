package domain

import (
	"cmp"
	"math"
	"math/big"
	"time"
)

// Type ranks used to order values of different kinds.
// Null sorts before everything, lists after everything.
const (
	rankNull = iota
	rankNumber
	rankString
	rankBool
	rankTemporal
	rankList
)

// Compare returns a total order over values:
//
//	Null < numbers < strings < booleans < temporal values < lists
//
// Int, Float and Decimal are compared numerically with each other, Date,
// DateTime and Time by instant. Lists compare element by element, then by
// length. The result is -1, 0 or +1.
func Compare(a, b Value) int {
	ra, rb := rank(a), rank(b)
	if ra != rb {
		return cmp.Compare(ra, rb)
	}

	switch ra {
	case rankNull:
		return 0
	case rankNumber:
		return toBigFloat(a).Cmp(toBigFloat(b))
	case rankString:
		return cmp.Compare(string(a.(String)), string(b.(String)))
	case rankBool:
		return compareBool(bool(a.(Bool)), bool(b.(Bool)))
	case rankTemporal:
		return toTime(a).Compare(toTime(b))
	default:
		return compareLists(a.(List), b.(List))
	}
}

// Equal reports whether Compare(a, b) == 0.
func Equal(a, b Value) bool {
	return Compare(a, b) == 0
}

func rank(v Value) int {
	switch val := v.(type) {
	case Int, Decimal:
		return rankNumber
	case Float:
		if math.IsNaN(float64(val)) {
			return rankNull
		}
		return rankNumber
	case String:
		return rankString
	case Bool:
		return rankBool
	case Date, DateTime, Time:
		return rankTemporal
	case List:
		return rankList
	default:
		return rankNull
	}
}

// toBigFloat converts a numeric value without precision loss between
// int64 and float64.
func toBigFloat(v Value) *big.Float {
	switch val := v.(type) {
	case Int:
		return new(big.Float).SetInt64(int64(val))
	case Float:
		f := float64(val)
		if math.IsInf(f, 0) {
			return new(big.Float).SetInf(f < 0)
		}
		return new(big.Float).SetFloat64(f)
	case Decimal:
		return val.BigFloat()
	default:
		return new(big.Float)
	}
}

func toTime(v Value) time.Time {
	switch val := v.(type) {
	case Date:
		return val.Time
	case DateTime:
		return val.Time
	case Time:
		return val.Time
	default:
		return time.Time{}
	}
}

func compareBool(a, b bool) int {
	if a == b {
		return 0
	}
	if !a {
		return -1
	}
	return 1
}

func compareLists(a, b List) int {
	for i := 0; i < min(len(a), len(b)); i++ {
		if c := Compare(a[i], b[i]); c != 0 {
			return c
		}
	}
	return cmp.Compare(len(a), len(b))
}
