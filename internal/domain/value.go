package domain

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Value is a sealed interface for leaf and context values.
// Only the types in this file implement it.
type Value interface {
	value() // Sealed - only these types implement it
}

// Null is the absent value (JSON null).
type Null struct{}

func (Null) value() {}

// Bool is a boolean value.
type Bool bool

func (Bool) value() {}

// Int is an integer value.
type Int int64

func (Int) value() {}

// Float is a binary floating point value.
type Float float64

func (Float) value() {}

// Decimal is an exact base-10 value, used by numeric fields.
type Decimal struct {
	decimal.Decimal
}

func (Decimal) value() {}

// String is a text value.
type String string

func (String) value() {}

// Date is a calendar date. The time part is always midnight UTC.
type Date struct {
	time.Time
}

func (Date) value() {}

// DateTime is a timestamp.
type DateTime struct {
	time.Time
}

func (DateTime) value() {}

// Time is a time of day. The date part is always 0000-01-01.
type Time struct {
	time.Time
}

func (Time) value() {}

// List is an ordered list of values, used by in / not in leaves.
type List []Value

func (List) value() {}

// Layouts used for textual temporal values.
const (
	DateLayout     = "2006-01-02"
	DateTimeLayout = "2006-01-02 15:04:05"
	TimeLayout     = "15:04:05"
)

// NewDate creates a Date value.
func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// NewDateTime creates a DateTime value in UTC.
func NewDateTime(year int, month time.Month, day, hour, minute, second int) DateTime {
	return DateTime{time.Date(year, month, day, hour, minute, second, 0, time.UTC)}
}

// NewTime creates a Time value.
func NewTime(hour, minute, second int) Time {
	return Time{time.Date(0, time.January, 1, hour, minute, second, 0, time.UTC)}
}

// NewDecimal parses an exact decimal value.
func NewDecimal(s string) (Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Decimal{}, err
	}
	return Decimal{d}, nil
}

// MustDecimal is like NewDecimal but panics on error.
// Use only in tests or with constant input.
func MustDecimal(s string) Decimal {
	d, err := NewDecimal(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Strings builds a List of String values.
func Strings(values ...string) List {
	list := make(List, len(values))
	for i, v := range values {
		list[i] = String(v)
	}
	return list
}

// IsNull reports whether v is nil or Null.
func IsNull(v Value) bool {
	if v == nil {
		return true
	}
	_, ok := v.(Null)
	return ok
}

// Truthy reports whether v counts as set when a leaf tests mere presence.
// Null, false, zero numbers, the empty string and empty lists are falsy.
func Truthy(v Value) bool {
	switch val := v.(type) {
	case nil, Null:
		return false
	case Bool:
		return bool(val)
	case Int:
		return val != 0
	case Float:
		return val != 0 && !math.IsNaN(float64(val))
	case Decimal:
		return !val.IsZero()
	case String:
		return val != ""
	case Date:
		return !val.IsZero()
	case DateTime:
		return !val.IsZero()
	case Time:
		return true
	case List:
		return len(val) > 0
	default:
		return false
	}
}

// Text renders v as plain text, the way values are joined when a relation
// value is compared with its "model,id" string form.
func Text(v Value) string {
	switch val := v.(type) {
	case nil, Null:
		return ""
	case Bool:
		return strconv.FormatBool(bool(val))
	case Int:
		return strconv.FormatInt(int64(val), 10)
	case Float:
		return strconv.FormatFloat(float64(val), 'f', -1, 64)
	case Decimal:
		return val.String()
	case String:
		return string(val)
	case Date:
		return val.Format(DateLayout)
	case DateTime:
		return val.Format(DateTimeLayout)
	case Time:
		return val.Format(TimeLayout)
	case List:
		return Join(val, ",")
	default:
		return ""
	}
}

// Join renders each element with Text and joins them with sep.
func Join(list List, sep string) string {
	parts := make([]string, len(list))
	for i, v := range list {
		parts[i] = Text(v)
	}
	return strings.Join(parts, sep)
}
