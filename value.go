// FILE: lixenwraith/propbind/value.go
package propbind

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// lineBreak is the line terminator used for string values in memory.
const lineBreak = "\n"

// escapedLineBreak is the on-disk form of lineBreak inside a single physical line.
const escapedLineBreak = `\n`

// Kind identifies which of the four supported value kinds a Value holds.
type Kind int

const (
	KindInt Kind = iota
	KindFloat
	KindBool
	KindString
)

func (k Kind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindBool:
		return "bool"
	case KindString:
		return "string"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// parseKind is the inverse of Kind.String.
func parseKind(s string) (Kind, error) {
	switch s {
	case "int":
		return KindInt, nil
	case "float":
		return KindFloat, nil
	case "bool":
		return KindBool, nil
	case "string":
		return KindString, nil
	}
	return 0, fmt.Errorf("%w: unknown value kind %q", ErrUnsupportedValue, s)
}

// Value is a closed union over int64, float64, bool and string.
// The zero Value is Int(0).
type Value struct {
	kind Kind
	i    int64
	f    float64
	b    bool
	s    string
}

// IntValue returns an Int value.
func IntValue(v int64) Value { return Value{kind: KindInt, i: v} }

// FloatValue returns a Float value.
func FloatValue(v float64) Value { return Value{kind: KindFloat, f: v} }

// BoolValue returns a Bool value.
func BoolValue(v bool) Value { return Value{kind: KindBool, b: v} }

// StringValue returns a String value.
func StringValue(v string) Value { return Value{kind: KindString, s: v} }

// Kind reports which kind v holds.
func (v Value) Kind() Kind { return v.kind }

func (v Value) Int() (int64, bool)     { return v.i, v.kind == KindInt }
func (v Value) Float() (float64, bool) { return v.f, v.kind == KindFloat }
func (v Value) Bool() (bool, bool)     { return v.b, v.kind == KindBool }
func (v Value) Str() (string, bool)    { return v.s, v.kind == KindString }

// Any returns the held value as int64, float64, bool or string.
func (v Value) Any() any {
	switch v.kind {
	case KindInt:
		return v.i
	case KindFloat:
		return v.f
	case KindBool:
		return v.b
	default:
		return v.s
	}
}

// String returns the natural text of the value. Unlike FormatValue, line
// breaks in string values are not escaped.
func (v Value) String() string {
	if v.kind == KindString {
		return v.s
	}
	return FormatValue(v)
}

// ParseValue infers the kind of raw text. Integer, float and boolean parses
// are attempted in that order; anything else is a string.
func ParseValue(raw string) Value {
	if i, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return IntValue(i)
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return FloatValue(f)
	}
	if strings.EqualFold(raw, "true") {
		return BoolValue(true)
	}
	if strings.EqualFold(raw, "false") {
		return BoolValue(false)
	}
	return StringValue(strings.ReplaceAll(raw, escapedLineBreak, lineBreak))
}

// FormatValue renders v so that ParseValue yields the same kind and value.
// String values are the exception where the text itself looks like a number
// or boolean.
func FormatValue(v Value) string {
	switch v.kind {
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return formatFloat(v.f)
	case KindBool:
		return strconv.FormatBool(v.b)
	default:
		return strings.ReplaceAll(v.s, lineBreak, escapedLineBreak)
	}
}

// formatFloat keeps a decimal point on integral floats so they reload as floats.
func formatFloat(f float64) string {
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return s
	}
	if !strings.ContainsAny(s, ".e") {
		s += ".0"
	}
	return s
}

// decodeValue parses text known to hold a value of kind k.
func decodeValue(k Kind, text string) (Value, error) {
	switch k {
	case KindInt:
		i, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return Value{}, fmt.Errorf("%w: %q is not an int: %w", ErrUnsupportedValue, text, err)
		}
		return IntValue(i), nil
	case KindFloat:
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return Value{}, fmt.Errorf("%w: %q is not a float: %w", ErrUnsupportedValue, text, err)
		}
		return FloatValue(f), nil
	case KindBool:
		b, err := strconv.ParseBool(text)
		if err != nil {
			return Value{}, fmt.Errorf("%w: %q is not a bool: %w", ErrUnsupportedValue, text, err)
		}
		return BoolValue(b), nil
	case KindString:
		return StringValue(text), nil
	}
	return Value{}, fmt.Errorf("%w: unknown value kind %d", ErrUnsupportedValue, int(k))
}
