package field

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/roach88/domq/internal/domain"
)

// Accepted input layouts for temporal fields, tried in order.
var (
	dateLayouts     = []string{domain.DateLayout}
	dateTimeLayouts = []string{domain.DateTimeLayout, "2006-01-02 15:04", domain.DateLayout}
	timeLayouts     = []string{domain.TimeLayout, "15:04"}
)

// truthyWords are the words a boolean query value may abbreviate.
var truthyWords = []string{"y", "yes", "true", "t", "1"}

// Convert turns a value typed in a query into a value of the field's type.
//
// Strings and Null are converted; values that are already typed pass
// through. Text that cannot be read as a number or a date becomes Null.
// Lists are converted element by element.
func (f Field) Convert(v domain.Value) domain.Value {
	if list, ok := v.(domain.List); ok {
		out := make(domain.List, len(list))
		for i, elem := range list {
			out[i] = f.Convert(elem)
		}
		return out
	}
	if v == nil {
		v = domain.Null{}
	}
	text, isText := v.(domain.String)

	switch f.Type {
	case TypeBoolean:
		if isText {
			return domain.Bool(parseBool(string(text)))
		}
		return domain.Bool(domain.Truthy(v))
	case TypeInteger:
		if isText {
			if n, ok := parseIntPrefix(string(text)); ok {
				return domain.Int(n)
			}
			return domain.Null{}
		}
	case TypeFloat:
		if isText {
			n, err := strconv.ParseFloat(strings.TrimSpace(string(text)), 64)
			if err != nil {
				return domain.Null{}
			}
			return domain.Float(n)
		}
	case TypeNumeric:
		if isText {
			d, err := decimal.NewFromString(strings.TrimSpace(string(text)))
			if err != nil {
				return domain.Null{}
			}
			return domain.Decimal{Decimal: d}
		}
	case TypeSelection, TypeReference:
		if isText {
			if key, ok := f.ChoiceKey(string(text)); ok {
				return domain.String(key)
			}
		}
	case TypeMany2One:
		if isText && text == "" {
			return domain.Null{}
		}
	case TypeDate:
		if isText {
			if t, ok := parseTime(string(text), dateLayouts); ok {
				return domain.Date{Time: t}
			}
			return domain.Null{}
		}
	case TypeDateTime:
		if isText {
			if t, ok := parseTime(string(text), dateTimeLayouts); ok {
				return domain.DateTime{Time: t}
			}
			return domain.Null{}
		}
	case TypeTime:
		if isText {
			if t, ok := parseTime(string(text), timeLayouts); ok {
				return domain.NewTime(t.Hour(), t.Minute(), t.Second())
			}
			return domain.Null{}
		}
	}
	return v
}

// parseBool reports whether text abbreviates one of the truthy words.
// The empty string is false.
func parseBool(text string) bool {
	if text == "" {
		return false
	}
	lower := strings.ToLower(text)
	for _, word := range truthyWords {
		if strings.HasPrefix(word, lower) {
			return true
		}
	}
	return false
}

// parseIntPrefix reads the leading base-10 integer of text, ignoring
// leading whitespace and anything after the digits ("1.5" -> 1).
func parseIntPrefix(text string) (int64, bool) {
	text = strings.TrimLeft(text, " \t\r\n")
	end := 0
	if end < len(text) && (text[end] == '-' || text[end] == '+') {
		end++
	}
	digits := end
	for end < len(text) && text[end] >= '0' && text[end] <= '9' {
		end++
	}
	if end == digits {
		return 0, false
	}
	n, err := strconv.ParseInt(text[:end], 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

func parseTime(text string, layouts []string) (time.Time, bool) {
	text = strings.TrimSpace(text)
	for _, layout := range layouts {
		if t, err := time.Parse(layout, text); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
