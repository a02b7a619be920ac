package field

import (
	"strconv"
	"strings"

	"github.com/roach88/domq/internal/domain"
)

// specialChars force a value to be quoted in query text.
const specialChars = " \t\r\n:();\"\\!=<>"

// Format renders a value of the field the way it is typed in a query.
// Lists are joined with ";", scalars are quoted when needed.
func (f Field) Format(v domain.Value) string {
	if list, ok := v.(domain.List); ok {
		parts := make([]string, len(list))
		for i, elem := range list {
			parts[i] = f.Format(elem)
		}
		return strings.Join(parts, ";")
	}

	if f.Type == TypeBoolean {
		if domain.Truthy(v) {
			return "True"
		}
		return "False"
	}
	if isBlank(v) {
		return ""
	}

	switch f.Type {
	case TypeInteger:
		return formatInteger(v)
	case TypeFloat, TypeNumeric:
		return formatNumber(v)
	case TypeSelection, TypeReference:
		if label, ok := f.ChoiceLabel(domain.Text(v)); ok {
			return Quote(label)
		}
	}
	return Quote(domain.Text(v))
}

// isBlank reports whether v renders as nothing: Null and false.
func isBlank(v domain.Value) bool {
	if b, ok := v.(domain.Bool); ok {
		return !bool(b)
	}
	return domain.IsNull(v)
}

func formatInteger(v domain.Value) string {
	switch n := v.(type) {
	case domain.Int:
		return strconv.FormatInt(int64(n), 10)
	case domain.Float:
		return strconv.FormatInt(int64(n), 10)
	case domain.Decimal:
		return n.Truncate(0).String()
	default:
		return Quote(domain.Text(v))
	}
}

func formatNumber(v domain.Value) string {
	switch n := v.(type) {
	case domain.Int, domain.Float, domain.Decimal:
		return domain.Text(n)
	default:
		return Quote(domain.Text(v))
	}
}

// Quote wraps s in double quotes when it would otherwise be split or
// reinterpreted by the tokenizer: whitespace, ":", "(", ")", ";", quotes,
// backslashes, operator characters, and the keywords "and" / "or".
// Quotes and backslashes are escaped inside the quoted text.
func Quote(s string) string {
	if !needsQuote(s) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('"')
	for _, r := range s {
		if r == '"' || r == '\\' {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	b.WriteByte('"')
	return b.String()
}

func needsQuote(s string) bool {
	if strings.ContainsAny(s, specialChars) {
		return true
	}
	switch strings.ToLower(s) {
	case "and", "or":
		return true
	}
	return false
}
