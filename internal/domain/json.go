package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/unicode/norm"
)

// Boolean node tags of the wire format.
const (
	TagAnd = "AND"
	TagOr  = "OR"
)

// DecodeError reports a malformed wire domain.
type DecodeError struct {
	Path    string // JSON path of the offending element, e.g. "[1][2]"
	Message string
}

func (e *DecodeError) Error() string {
	if e.Path == "" {
		return "decode domain: " + e.Message
	}
	return fmt.Sprintf("decode domain at %s: %s", e.Path, e.Message)
}

// Marshal encodes e in the wire format.
func Marshal(e Expr) ([]byte, error) {
	enc := &encoder{}
	if err := enc.expr(e); err != nil {
		return nil, err
	}
	return enc.Bytes(), nil
}

// MarshalValue encodes a single value in the wire format.
func MarshalValue(v Value) ([]byte, error) {
	enc := &encoder{}
	if err := enc.value(v); err != nil {
		return nil, err
	}
	return enc.Bytes(), nil
}

// encoder writes the wire format. With normalize set, strings are NFC
// normalized (see MarshalCanonical).
type encoder struct {
	bytes.Buffer
	normalize bool
}

func (enc *encoder) expr(e Expr) error {
	switch node := e.(type) {
	case nil:
		enc.WriteString("[]")
	case Leaf:
		enc.WriteByte('[')
		enc.str(node.Field)
		enc.WriteByte(',')
		enc.str(string(node.Operator))
		enc.WriteByte(',')
		if err := enc.value(node.Value); err != nil {
			return fmt.Errorf("leaf %q: %w", node.Field, err)
		}
		if node.Target != "" {
			enc.WriteByte(',')
			enc.str(node.Target)
		}
		enc.WriteByte(']')
	case And:
		return enc.node("", node)
	case Or:
		return enc.node(TagOr, node)
	default:
		return fmt.Errorf("unknown expression type: %T", e)
	}
	return nil
}

func (enc *encoder) node(tag string, children []Expr) error {
	enc.WriteByte('[')
	if tag != "" {
		enc.str(tag)
	}
	for i, child := range children {
		if i > 0 || tag != "" {
			enc.WriteByte(',')
		}
		if err := enc.expr(child); err != nil {
			return err
		}
	}
	enc.WriteByte(']')
	return nil
}

func (enc *encoder) value(v Value) error {
	switch val := v.(type) {
	case nil, Null:
		enc.WriteString("null")
	case Bool:
		enc.WriteString(strconv.FormatBool(bool(val)))
	case Int:
		enc.WriteString(strconv.FormatInt(int64(val), 10))
	case Float:
		f := float64(val)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return fmt.Errorf("cannot encode float %v", f)
		}
		s := strconv.FormatFloat(f, 'f', -1, 64)
		if !strings.ContainsAny(s, ".e") {
			// Keep the float kind across a round trip.
			s += ".0"
		}
		enc.WriteString(s)
	case Decimal:
		enc.WriteString(`{"__class__":"Decimal","decimal":`)
		enc.str(val.String())
		enc.WriteByte('}')
	case String:
		enc.str(string(val))
	case Date:
		fmt.Fprintf(enc, `{"__class__":"date","year":%d,"month":%d,"day":%d}`,
			val.Year(), int(val.Month()), val.Day())
	case DateTime:
		fmt.Fprintf(enc, `{"__class__":"datetime","year":%d,"month":%d,"day":%d,"hour":%d,"minute":%d,"second":%d,"microsecond":%d}`,
			val.Year(), int(val.Month()), val.Day(), val.Hour(), val.Minute(), val.Second(), val.Nanosecond()/1000)
	case Time:
		fmt.Fprintf(enc, `{"__class__":"time","hour":%d,"minute":%d,"second":%d,"microsecond":%d}`,
			val.Hour(), val.Minute(), val.Second(), val.Nanosecond()/1000)
	case List:
		enc.WriteByte('[')
		for i, elem := range val {
			if i > 0 {
				enc.WriteByte(',')
			}
			if err := enc.value(elem); err != nil {
				return fmt.Errorf("list[%d]: %w", i, err)
			}
		}
		enc.WriteByte(']')
	default:
		return fmt.Errorf("unknown value type: %T", v)
	}
	return nil
}

func (enc *encoder) str(s string) {
	if enc.normalize {
		s = norm.NFC.String(s)
	}
	je := json.NewEncoder(&enc.Buffer)
	je.SetEscapeHTML(false)
	_ = je.Encode(s) // strings always encode
	enc.Truncate(enc.Len() - 1) // drop the encoder's trailing newline
}

// Unmarshal decodes a wire domain.
// A top-level leaf is returned as a Leaf, any list as And or Or.
func Unmarshal(data []byte) (Expr, error) {
	raw, err := decodeRaw(data)
	if err != nil {
		return nil, &DecodeError{Message: err.Error()}
	}
	return decodeExpr(raw, "")
}

// UnmarshalValue decodes a single wire value.
func UnmarshalValue(data []byte) (Value, error) {
	raw, err := decodeRaw(data)
	if err != nil {
		return nil, &DecodeError{Message: err.Error()}
	}
	return DecodeValue(raw)
}

func decodeRaw(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// DecodeExpr converts a generic decoded document (json.Number, []any,
// map[string]any, as produced by a json.Decoder with UseNumber or by a
// YAML decoder) into an expression.
func DecodeExpr(raw any) (Expr, error) {
	return decodeExpr(raw, "")
}

func decodeExpr(raw any, path string) (Expr, error) {
	list, ok := raw.([]any)
	if !ok {
		return nil, &DecodeError{Path: path, Message: fmt.Sprintf("expected a list, got %T", raw)}
	}

	if leaf, ok, err := decodeLeaf(list, path); ok || err != nil {
		return leaf, err
	}

	children := list
	or := false
	if len(list) > 0 {
		switch list[0] {
		case TagOr:
			or = true
			children = list[1:]
		case TagAnd:
			children = list[1:]
		}
	}

	exprs := make([]Expr, 0, len(children))
	for i, child := range children {
		childPath := fmt.Sprintf("%s[%d]", path, i+len(list)-len(children))
		e, err := decodeExpr(child, childPath)
		if err != nil {
			return nil, err
		}
		exprs = append(exprs, e)
	}
	if or {
		return Or(exprs), nil
	}
	return And(exprs), nil
}

func decodeLeaf(list []any, path string) (Leaf, bool, error) {
	if len(list) < 3 {
		return Leaf{}, false, nil
	}
	field, ok := list[0].(string)
	if !ok {
		return Leaf{}, false, nil
	}
	op, ok := list[1].(string)
	if !ok || !Operator(op).Valid() {
		return Leaf{}, false, nil
	}
	if len(list) > 4 {
		return Leaf{}, true, &DecodeError{Path: path, Message: fmt.Sprintf("leaf has %d elements", len(list))}
	}

	value, err := DecodeValue(list[2])
	if err != nil {
		return Leaf{}, true, &DecodeError{Path: path + "[2]", Message: err.Error()}
	}
	leaf := Leaf{Field: field, Operator: Operator(op), Value: value}
	if len(list) == 4 {
		target, ok := list[3].(string)
		if !ok {
			return Leaf{}, true, &DecodeError{Path: path + "[3]", Message: "target must be a field name"}
		}
		leaf.Target = target
	}
	return leaf, true, nil
}

// DecodeValue converts a generic decoded value into a Value.
// Integral numbers become Int, other numbers Float.
func DecodeValue(raw any) (Value, error) {
	switch val := raw.(type) {
	case nil:
		return Null{}, nil
	case bool:
		return Bool(val), nil
	case string:
		return String(val), nil
	case int:
		return Int(val), nil
	case int64:
		return Int(val), nil
	case float64:
		return Float(val), nil
	case json.Number:
		s := string(val)
		if !strings.ContainsAny(s, ".eE") {
			if n, err := val.Int64(); err == nil {
				return Int(n), nil
			}
		}
		f, err := val.Float64()
		if err != nil {
			return nil, fmt.Errorf("invalid number %s", s)
		}
		return Float(f), nil
	case []any:
		list := make(List, len(val))
		for i, elem := range val {
			v, err := DecodeValue(elem)
			if err != nil {
				return nil, fmt.Errorf("list[%d]: %w", i, err)
			}
			list[i] = v
		}
		return list, nil
	case map[string]any:
		return decodeClass(val)
	case Value:
		return val, nil
	default:
		return nil, fmt.Errorf("unsupported value type %T", raw)
	}
}

func decodeClass(obj map[string]any) (Value, error) {
	class, _ := obj["__class__"].(string)
	switch class {
	case "Decimal":
		s, ok := obj["decimal"].(string)
		if !ok {
			return nil, fmt.Errorf("decimal value without decimal string")
		}
		d, err := decimal.NewFromString(s)
		if err != nil {
			return nil, fmt.Errorf("invalid decimal %q: %w", s, err)
		}
		return Decimal{d}, nil
	case "date":
		return NewDate(intField(obj, "year"), time.Month(intField(obj, "month")), intField(obj, "day")), nil
	case "datetime":
		t := time.Date(intField(obj, "year"), time.Month(intField(obj, "month")), intField(obj, "day"),
			intField(obj, "hour"), intField(obj, "minute"), intField(obj, "second"),
			intField(obj, "microsecond")*1000, time.UTC)
		return DateTime{t}, nil
	case "time":
		t := time.Date(0, time.January, 1,
			intField(obj, "hour"), intField(obj, "minute"), intField(obj, "second"),
			intField(obj, "microsecond")*1000, time.UTC)
		return Time{t}, nil
	case "":
		return nil, fmt.Errorf("object value without __class__")
	default:
		return nil, fmt.Errorf("unknown value class %q", class)
	}
}

func intField(obj map[string]any, key string) int {
	switch n := obj[key].(type) {
	case json.Number:
		i, _ := n.Int64()
		return int(i)
	case float64:
		return int(n)
	case int:
		return n
	case int64:
		return int(n)
	default:
		return 0
	}
}
