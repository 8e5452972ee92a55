package settings

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Kind identifies which variant a Value holds.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindList
)

// Value is a closed tagged union holding a single setting value: null,
// boolean, number, string, or list of values. Lists never nest further
// than one level in practice. The zero Value is null.
//
// Numbers are carried as their decimal text (json.Number) so that values
// round-trip through the settings file without floating point loss.
type Value struct {
	kind Kind
	b    bool
	num  json.Number
	str  string
	list []Value
}

// NullValue returns the null Value.
func NullValue() Value { return Value{} }

// BoolValue returns a boolean Value.
func BoolValue(b bool) Value { return Value{kind: KindBool, b: b} }

// NumberValue returns a numeric Value carrying the given decimal text.
func NumberValue(n json.Number) Value { return Value{kind: KindNumber, num: n} }

// IntValue returns a numeric Value for an integer.
func IntValue(i int64) Value {
	return Value{kind: KindNumber, num: json.Number(strconv.FormatInt(i, 10))}
}

// StringValue returns a string Value.
func StringValue(s string) Value { return Value{kind: KindString, str: s} }

// ListValue returns a list Value holding the given elements.
func ListValue(vs []Value) Value {
	if vs == nil {
		vs = []Value{}
	}
	return Value{kind: KindList, list: vs}
}

// Kind returns the variant tag.
func (v Value) Kind() Kind { return v.kind }

func (v Value) IsNull() bool  { return v.kind == KindNull }
func (v Value) IsBool() bool  { return v.kind == KindBool }
func (v Value) IsNum() bool   { return v.kind == KindNumber }
func (v Value) IsStr() bool   { return v.kind == KindString }
func (v Value) IsList() bool  { return v.kind == KindList }
func (v Value) IsTrue() bool  { return v.kind == KindBool && v.b }
func (v Value) IsFalse() bool { return v.kind == KindBool && !v.b }

// Bool returns the boolean payload. Valid only for KindBool.
func (v Value) Bool() bool { return v.b }

// Num returns the numeric payload. Valid only for KindNumber.
func (v Value) Num() json.Number { return v.num }

// Str returns the string payload. Valid only for KindString.
func (v Value) Str() string { return v.str }

// List returns the list payload. Valid only for KindList.
func (v Value) List() []Value { return v.list }

// Equal reports deep equality of two values.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindBool:
		return v.b == o.b
	case KindNumber:
		return v.num == o.num
	case KindString:
		return v.str == o.str
	case KindList:
		if len(v.list) != len(o.list) {
			return false
		}
		for i := range v.list {
			if !v.list[i].Equal(o.list[i]) {
				return false
			}
		}
		return true
	}
	return false
}

// Write renders the value as JSON text, for logging and diagnostics.
func (v Value) Write() string {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("<unwritable: %v>", err)
	}
	return string(data)
}

// MarshalJSON implements json.Marshaler.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindNull:
		return []byte("null"), nil
	case KindBool:
		return json.Marshal(v.b)
	case KindNumber:
		if v.num == "" {
			return []byte("0"), nil
		}
		return []byte(v.num), nil
	case KindString:
		return json.Marshal(v.str)
	case KindList:
		elems := make([]json.RawMessage, 0, len(v.list))
		for _, e := range v.list {
			raw, err := json.Marshal(e)
			if err != nil {
				return nil, err
			}
			elems = append(elems, raw)
		}
		return json.Marshal(elems)
	}
	return nil, fmt.Errorf("unknown value kind %d", v.kind)
}

// UnmarshalJSON implements json.Unmarshaler. Numbers are kept as their
// source text.
func (v *Value) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	parsed, err := valueFromAny(raw)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// valueFromAny converts a decoded generic value (JSON, TOML or YAML
// shaped) into a Value. Maps are rejected: settings are primitives or
// one-level lists.
func valueFromAny(raw any) (Value, error) {
	switch t := raw.(type) {
	case nil:
		return NullValue(), nil
	case bool:
		return BoolValue(t), nil
	case json.Number:
		return NumberValue(t), nil
	case int:
		return IntValue(int64(t)), nil
	case int64:
		return IntValue(t), nil
	case uint64:
		return NumberValue(json.Number(strconv.FormatUint(t, 10))), nil
	case float64:
		return NumberValue(json.Number(strconv.FormatFloat(t, 'f', -1, 64))), nil
	case string:
		return StringValue(t), nil
	case []any:
		list := make([]Value, 0, len(t))
		for _, e := range t {
			ev, err := valueFromAny(e)
			if err != nil {
				return Value{}, err
			}
			list = append(list, ev)
		}
		return ListValue(list), nil
	}
	return Value{}, fmt.Errorf("unsupported value type %T", raw)
}

// toAny converts a Value back to the generic shape used by the file
// encoders.
func (v Value) toAny() any {
	switch v.kind {
	case KindBool:
		return v.b
	case KindNumber:
		return v.num
	case KindString:
		return v.str
	case KindList:
		out := make([]any, 0, len(v.list))
		for _, e := range v.list {
			out = append(out, e.toAny())
		}
		return out
	}
	return nil
}

// interpretBool applies the legacy string-to-boolean rule: an empty
// string (flag present with no value) is true, otherwise the leading
// integer of the text decides. Non-numeric text therefore reads as
// false, so "-foo=false" behaves as the user expects even though "false"
// is never parsed as a keyword.
func interpretBool(s string) bool {
	if s == "" {
		return true
	}
	return parseLeadingInt(s) != 0
}

// parseLeadingInt mimics atoi: skip leading spaces, accept an optional
// sign, read digits until the first non-digit, and return 0 for text
// with no leading number at all.
func parseLeadingInt(s string) int64 {
	s = strings.TrimLeft(s, " \t\n\v\f\r")
	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	j := i
	for j < len(s) && s[j] >= '0' && s[j] <= '9' {
		j++
	}
	if j == i {
		return 0
	}
	start := 0
	if s[0] == '+' {
		start = 1
	}
	n, err := strconv.ParseInt(s[start:j], 10, 64)
	if err != nil {
		// Overflowing digit runs saturate rather than fail.
		if s[0] == '-' {
			return -1 << 63
		}
		return 1<<63 - 1
	}
	return n
}

// ValueToString coerces a value to its string form. Null reports false.
func ValueToString(v Value) (string, bool) {
	switch {
	case v.IsNull():
		return "", false
	case v.IsFalse():
		return "0", true
	case v.IsTrue():
		return "1", true
	case v.IsNum():
		return string(v.num), true
	}
	return v.Str(), true
}

// ValueToInt coerces a value to an integer. Null reports ok=false.
// Strings use a permissive leading-integer parse for compatibility, so
// non-numeric text reads as 0 rather than failing. A numeric value that
// does not fit in int64 is an error.
func ValueToInt(v Value) (int64, bool, error) {
	switch {
	case v.IsNull():
		return 0, false, nil
	case v.IsFalse():
		return 0, true, nil
	case v.IsTrue():
		return 1, true, nil
	case v.IsNum():
		n, err := v.num.Int64()
		if err != nil {
			return 0, true, fmt.Errorf("value %q is not a valid integer: %w", string(v.num), err)
		}
		return n, true, nil
	}
	return parseLeadingInt(v.Str()), true, nil
}

// ValueToBool coerces a value to a boolean. Null reports false.
func ValueToBool(v Value) (bool, bool) {
	switch {
	case v.IsNull():
		return false, false
	case v.IsBool():
		return v.b, true
	case v.IsNum():
		return interpretBool(string(v.num)), true
	}
	return interpretBool(v.Str()), true
}
