package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"slices"
	"unicode/utf16"
)

// Context maps base variables to their known values.
type Context map[string]Value

// Hash domain prefixes. The version suffix allows algorithm migration.
const (
	HashInversion = "domq/inversion/v1"
	HashDomain    = "domq/domain/v1"
)

// MarshalCanonical produces a deterministic encoding for structural keys.
//
// It accepts an Expr, a Value, a Context, a string, or a []any mixing
// those. Strings are NFC normalized and context keys are sorted by UTF-16
// code units, so equal inputs always produce equal bytes.
func MarshalCanonical(v any) ([]byte, error) {
	enc := &encoder{normalize: true}
	if err := enc.canonical(v); err != nil {
		return nil, err
	}
	return enc.Bytes(), nil
}

func (enc *encoder) canonical(v any) error {
	switch val := v.(type) {
	case nil:
		enc.WriteString("[]")
		return nil
	case Expr:
		return enc.expr(val)
	case Value:
		return enc.value(val)
	case Context:
		return enc.context(val)
	case map[string]Value:
		return enc.context(Context(val))
	case string:
		enc.str(val)
		return nil
	case []any:
		enc.WriteByte('[')
		for i, elem := range val {
			if i > 0 {
				enc.WriteByte(',')
			}
			if err := enc.canonical(elem); err != nil {
				return fmt.Errorf("[%d]: %w", i, err)
			}
		}
		enc.WriteByte(']')
		return nil
	default:
		return fmt.Errorf("unsupported type for canonical encoding: %T", v)
	}
}

func (enc *encoder) context(ctx Context) error {
	keys := make([]string, 0, len(ctx))
	for k := range ctx {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, compareUTF16)

	enc.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			enc.WriteByte(',')
		}
		enc.str(k)
		enc.WriteByte(':')
		if err := enc.value(ctx[k]); err != nil {
			return fmt.Errorf("context key %q: %w", k, err)
		}
	}
	enc.WriteByte('}')
	return nil
}

// compareUTF16 orders strings by UTF-16 code units (RFC 8785).
// Go's native string order uses UTF-8 bytes, which differs for
// characters outside the BMP.
func compareUTF16(a, b string) int {
	return slices.Compare(utf16.Encode([]rune(a)), utf16.Encode([]rune(b)))
}

// hashWithDomain computes SHA256(domain + 0x00 + data).
// The null separator prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// Key returns the structural key of a domain.
func Key(e Expr) (string, error) {
	canonical, err := MarshalCanonical(e)
	if err != nil {
		return "", fmt.Errorf("domain key: %w", err)
	}
	return hashWithDomain(HashDomain, canonical), nil
}

// InversionKey returns the structural key of an inversion request.
// Equal keys guarantee equal inversion results.
func InversionKey(e Expr, symbol string, ctx Context) (string, error) {
	if ctx == nil {
		ctx = Context{}
	}
	canonical, err := MarshalCanonical([]any{e, symbol, ctx})
	if err != nil {
		return "", fmt.Errorf("inversion key: %w", err)
	}
	return hashWithDomain(HashInversion, canonical), nil
}
