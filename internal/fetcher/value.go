package fetcher

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// Kind identifies which variant of Value is populated.
type Kind int

const (
	// KindNull is an explicit JSON null or a missing value.
	KindNull Kind = iota
	// KindNumber is a JSON number, kept at full precision.
	KindNumber
	// KindString is a JSON string, or any other JSON value kept as raw text.
	KindString
)

// String returns the lowercase name of the kind.
func (k Kind) String() string {
	switch k {
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	default:
		return "null"
	}
}

// Value is the untyped defaultValue of a metric observation.
// The remote API declares no schema for it, so numbers, strings and null
// are all accepted; booleans, objects and arrays are kept as raw JSON text.
type Value struct {
	kind Kind
	num  decimal.Decimal
	str  string
}

// NullValue returns the null Value.
func NullValue() Value { return Value{} }

// NumberValue returns a numeric Value.
func NumberValue(d decimal.Decimal) Value { return Value{kind: KindNumber, num: d} }

// StringValue returns a string Value.
func StringValue(s string) Value { return Value{kind: KindString, str: s} }

// Kind returns the populated variant.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is null.
func (v Value) IsNull() bool { return v.kind == KindNull }

// Decimal returns the numeric value and whether v is a number.
func (v Value) Decimal() (decimal.Decimal, bool) {
	return v.num, v.kind == KindNumber
}

// String formats v for tabular output. Null formats as the empty string.
func (v Value) String() string {
	switch v.kind {
	case KindNumber:
		return v.num.String()
	case KindString:
		return v.str
	default:
		return ""
	}
}

// Equal reports whether v and other hold the same variant and value.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindNumber:
		return v.num.Equal(other.num)
	case KindString:
		return v.str == other.str
	default:
		return true
	}
}

// UnmarshalJSON implements json.Unmarshaler.
func (v *Value) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	switch {
	case len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")):
		*v = NullValue()
	case trimmed[0] == '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return fmt.Errorf("decode string value: %w", err)
		}
		*v = StringValue(s)
	default:
		d, err := decimal.NewFromString(string(trimmed))
		if err != nil {
			*v = StringValue(string(trimmed))
			return nil
		}
		*v = NumberValue(d)
	}
	return nil
}

// MarshalJSON implements json.Marshaler. Numbers are written without
// quotes so that precision survives a round trip.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindNumber:
		return []byte(v.num.String()), nil
	case KindString:
		return json.Marshal(v.str)
	default:
		return []byte("null"), nil
	}
}
