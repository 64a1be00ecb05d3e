package utils

import (
	"fmt"
	"strconv"
	"strings"

	"datarec/core/errors"
)

// ToInt64 converts various types to int64 using explicit type switching.
// It handles standard integer types, integral floats, strings, and byte slices.
func ToInt64(val any) (int64, error) {
	switch v := val.(type) {
	case int:
		return int64(v), nil
	case int64:
		return v, nil
	case int32:
		return int64(v), nil
	case int16:
		return int64(v), nil
	case int8:
		return int64(v), nil
	case uint:
		return int64(v), nil
	case uint64:
		return int64(v), nil
	case uint32:
		return int64(v), nil
	case uint16:
		return int64(v), nil
	case uint8:
		return int64(v), nil
	case float64:
		if v != float64(int64(v)) {
			return 0, conversionError("int", val)
		}
		return int64(v), nil
	case float32:
		if v != float32(int64(v)) {
			return 0, conversionError("int", val)
		}
		return int64(v), nil
	case string:
		i, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return 0, conversionError("int", val)
		}
		return i, nil
	case []byte:
		return ToInt64(string(v))
	default:
		return 0, conversionError("int", val)
	}
}

// ToFloat64 converts numeric types, strings and byte slices to float64.
func ToFloat64(val any) (float64, error) {
	switch v := val.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int, int64, int32, int16, int8, uint, uint64, uint32, uint16, uint8:
		i, err := ToInt64(v)
		return float64(i), err
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, conversionError("float", val)
		}
		return f, nil
	case []byte:
		return ToFloat64(string(v))
	default:
		return 0, conversionError("float", val)
	}
}

// ToString converts various types to string.
func ToString(val any) string {
	switch v := val.(type) {
	case string:
		return v
	case []byte:
		return string(v)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// ToBool converts various types to bool.
// It handles bool, numeric types (1=true, 0=false), and strings ("1", "true", "yes").
func ToBool(val any) (bool, error) {
	switch v := val.(type) {
	case bool:
		return v, nil
	case int, int64, int32, int16, int8, uint, uint64, uint32, uint16, uint8:
		i, _ := ToInt64(v)
		switch i {
		case 0:
			return false, nil
		case 1:
			return true, nil
		}
		return false, conversionError("bool", val)
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "true", "yes", "y", "t":
			return true, nil
		case "0", "false", "no", "n", "f":
			return false, nil
		}
		return false, conversionError("bool", val)
	case []byte:
		return ToBool(string(v))
	default:
		return false, conversionError("bool", val)
	}
}

func conversionError(kind string, val any) error {
	return errors.NewShapeError("convert", fmt.Sprintf("cannot convert %T(%v) to %s", val, val, kind))
}
