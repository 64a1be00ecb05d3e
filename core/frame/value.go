package frame

import (
	"cmp"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"

	"datarec/core/errors"
	"datarec/core/utils"
)

// Kind names the semantic type a loader coerces raw cells into.
type Kind string

const (
	KindString Kind = "string"
	KindInt    Kind = "int"
	KindFloat  Kind = "float"
	KindBool   Kind = "bool"
	KindTime   Kind = "time"
)

// DefaultTimeLayouts are tried in order when no explicit layout is configured.
var DefaultTimeLayouts = []string{
	"2006-01-02",
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
}

// IsValid reports whether k is a known kind.
func (k Kind) IsValid() bool {
	switch k {
	case KindString, KindInt, KindFloat, KindBool, KindTime:
		return true
	default:
		return false
	}
}

// IsNull reports whether v is a null marker. NaN floats count as null.
func IsNull(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case float64:
		return math.IsNaN(x)
	case float32:
		return math.IsNaN(float64(x))
	default:
		return false
	}
}

// ToFloat converts a numeric value to float64. Non-numeric values, including
// nulls and numeric-looking strings, report false.
func ToFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case int32:
		return float64(x), true
	case int16:
		return float64(x), true
	case int8:
		return float64(x), true
	case uint:
		return float64(x), true
	case uint64:
		return float64(x), true
	case uint32:
		return float64(x), true
	case uint16:
		return float64(x), true
	case uint8:
		return float64(x), true
	default:
		return 0, false
	}
}

// Equal compares two non-null values with ordinary equality. Numbers compare
// by exact value across integer and float types; a null on either side is
// unequal.
func Equal(a, b any) bool {
	if IsNull(a) || IsNull(b) {
		return false
	}
	if na, ok := toNumber(a); ok {
		nb, ok := toNumber(b)
		return ok && compareNumbers(na, nb) == 0
	}
	switch x := a.(type) {
	case string:
		y, ok := b.(string)
		return ok && x == y
	case bool:
		y, ok := b.(bool)
		return ok && x == y
	case time.Time:
		y, ok := b.(time.Time)
		return ok && x.Equal(y)
	}
	return reflect.DeepEqual(a, b)
}

// Compare orders two non-null values of the same family (numbers, strings,
// times, bools). Mixed families are an input error.
func Compare(a, b any) (int, error) {
	if na, ok := toNumber(a); ok {
		if nb, ok := toNumber(b); ok {
			return compareNumbers(na, nb), nil
		}
	}
	switch x := a.(type) {
	case string:
		if y, ok := b.(string); ok {
			return strings.Compare(x, y), nil
		}
	case time.Time:
		if y, ok := b.(time.Time); ok {
			return x.Compare(y), nil
		}
	case bool:
		if y, ok := b.(bool); ok {
			switch {
			case x == y:
				return 0, nil
			case !x:
				return -1, nil
			default:
				return 1, nil
			}
		}
	}
	return 0, errors.NewShapeError("compare", fmt.Sprintf("cannot order %T against %T", a, b))
}

const (
	two63 = 9223372036854775808.0
	two64 = 18446744073709551616.0
)

type numberKind uint8

const (
	signed numberKind = iota
	unsigned
	floating
)

// number holds a numeric cell without widening integers to float64.
type number struct {
	kind numberKind
	i    int64
	u    uint64
	f    float64
}

func toNumber(v any) (number, bool) {
	switch x := v.(type) {
	case int:
		return number{kind: signed, i: int64(x)}, true
	case int64:
		return number{kind: signed, i: x}, true
	case int32:
		return number{kind: signed, i: int64(x)}, true
	case int16:
		return number{kind: signed, i: int64(x)}, true
	case int8:
		return number{kind: signed, i: int64(x)}, true
	case uint:
		return number{kind: unsigned, u: uint64(x)}, true
	case uint64:
		return number{kind: unsigned, u: x}, true
	case uint32:
		return number{kind: unsigned, u: uint64(x)}, true
	case uint16:
		return number{kind: unsigned, u: uint64(x)}, true
	case uint8:
		return number{kind: unsigned, u: uint64(x)}, true
	case float64:
		return number{kind: floating, f: x}, true
	case float32:
		return number{kind: floating, f: float64(x)}, true
	default:
		return number{}, false
	}
}

// compareNumbers orders two non-NaN numbers exactly, whatever their kinds.
func compareNumbers(a, b number) int {
	if a.kind == floating {
		if b.kind == floating {
			return cmp.Compare(a.f, b.f)
		}
		return -compareNumbers(b, a)
	}
	switch b.kind {
	case floating:
		if a.kind == signed {
			return compareIntFloat(a.i, b.f)
		}
		return compareUintFloat(a.u, b.f)
	case signed:
		if a.kind == signed {
			return cmp.Compare(a.i, b.i)
		}
		return -compareIntUint(b.i, a.u)
	default:
		if a.kind == unsigned {
			return cmp.Compare(a.u, b.u)
		}
		return compareIntUint(a.i, b.u)
	}
}

func compareIntUint(i int64, u uint64) int {
	if i < 0 {
		return -1
	}
	return cmp.Compare(uint64(i), u)
}

func compareIntFloat(i int64, f float64) int {
	switch {
	case f >= two63:
		return -1
	case f < -two63:
		return 1
	}
	t := math.Trunc(f)
	if c := cmp.Compare(i, int64(t)); c != 0 {
		return c
	}
	return cmp.Compare(t, f)
}

func compareUintFloat(u uint64, f float64) int {
	switch {
	case f < 0:
		return 1
	case f >= two64:
		return -1
	}
	t := math.Trunc(f)
	if c := cmp.Compare(u, uint64(t)); c != 0 {
		return c
	}
	return cmp.Compare(t, f)
}

// Format renders a value for reports.
func Format(v any) string {
	if IsNull(v) {
		return "null"
	}
	switch x := v.(type) {
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'g', -1, 32)
	case time.Time:
		if x.Hour() == 0 && x.Minute() == 0 && x.Second() == 0 && x.Nanosecond() == 0 {
			return x.Format("2006-01-02")
		}
		return x.Format(time.RFC3339)
	default:
		return utils.ToString(v)
	}
}

// Parse converts a raw text cell into a value of the given kind. Empty cells
// are null.
func Parse(kind Kind, raw, layout string) (any, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	switch kind {
	case "", KindString:
		return raw, nil
	case KindInt:
		return utils.ToInt64(raw)
	case KindFloat:
		return utils.ToFloat64(raw)
	case KindBool:
		return utils.ToBool(raw)
	case KindTime:
		return parseTime(raw, layout)
	default:
		return nil, errors.NewArgumentError("kind", kind, "must be one of string, int, float, bool, time")
	}
}

// Coerce converts a driver-provided value into the given kind. Values already
// of the right family pass through; text is parsed.
func Coerce(kind Kind, v any, layout string) (any, error) {
	if IsNull(v) {
		return nil, nil
	}
	switch x := v.(type) {
	case []byte:
		return Parse(kind, string(x), layout)
	case string:
		return Parse(kind, x, layout)
	}
	switch kind {
	case "":
		return v, nil
	case KindString:
		return Format(v), nil
	case KindInt:
		return utils.ToInt64(v)
	case KindFloat:
		return utils.ToFloat64(v)
	case KindBool:
		return utils.ToBool(v)
	case KindTime:
		if t, ok := v.(time.Time); ok {
			return t, nil
		}
		return nil, errors.NewShapeError("coerce", fmt.Sprintf("cannot convert %T to time", v))
	default:
		return nil, errors.NewArgumentError("kind", kind, "must be one of string, int, float, bool, time")
	}
}

func parseTime(raw, layout string) (time.Time, error) {
	if layout != "" {
		t, err := time.Parse(layout, raw)
		if err != nil {
			return time.Time{}, errors.NewShapeError("parse time", err.Error())
		}
		return t, nil
	}
	for _, l := range DefaultTimeLayouts {
		if t, err := time.Parse(l, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errors.NewShapeError("parse time", fmt.Sprintf("%q matches no known layout", raw))
}
