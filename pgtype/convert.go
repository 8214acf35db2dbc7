package pgtype

import (
	"database/sql/driver"
	"fmt"
	"math"
	"reflect"
	"strconv"

	"github.com/jackc/pgmodel/internal/sanitize"
)

// textFormatter is implemented by scalar codecs. formatText returns the text format of value. null is true when value
// represents SQL NULL.
type textFormatter interface {
	formatText(value any) (s string, null bool, err error)
}

func encodeScalarSQL(f textFormatter, typeName string, value any) (string, error) {
	s, null, err := f.formatText(indirect(value))
	if err != nil {
		return "", fmt.Errorf("cannot encode %T as %s: %w", value, typeName, err)
	}
	if null {
		return nullSQL(typeName), nil
	}

	return sanitize.TypedLiteral(typeName, s), nil
}

func encodeScalarText(f textFormatter, typeName string, value any, buf []byte) ([]byte, error) {
	s, null, err := f.formatText(indirect(value))
	if err != nil {
		return nil, fmt.Errorf("cannot encode %T as %s: %w", value, typeName, err)
	}
	if null {
		return nil, nil
	}

	return appendNonNull(buf, s), nil
}

// appendNonNull appends s to buf. The result is never nil so an empty string is not confused with NULL.
func appendNonNull(buf []byte, s string) []byte {
	buf = append(buf, s...)
	if buf == nil {
		buf = []byte{}
	}
	return buf
}

// indirect dereferences pointers. A nil pointer becomes nil.
func indirect(value any) any {
	if value == nil {
		return nil
	}

	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Pointer {
		return value
	}
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	return rv.Interface()
}

// valuerValue resolves a driver.Valuer. ok is false if value is not a driver.Valuer.
func valuerValue(value any) (v any, ok bool, err error) {
	valuer, ok := value.(driver.Valuer)
	if !ok {
		return nil, false, nil
	}
	v, err = valuer.Value()
	return v, true, err
}

// toInt64 converts any Go integer kind, an integral float or a decimal string to int64.
func toInt64(value any) (int64, error) {
	if s, ok := value.(string); ok {
		return strconv.ParseInt(s, 10, 64)
	}

	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		n := rv.Uint()
		if n > math.MaxInt64 {
			return 0, fmt.Errorf("%d is greater than maximum value for int64", n)
		}
		return int64(n), nil
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		if f != math.Trunc(f) || f > math.MaxInt64 || f < math.MinInt64 {
			return 0, fmt.Errorf("%v is not an integer", f)
		}
		return int64(f), nil
	}

	return 0, fmt.Errorf("unsupported type %T", value)
}

// toFloat64 converts any Go numeric kind or a string to float64.
func toFloat64(value any) (float64, error) {
	if s, ok := value.(string); ok {
		return strconv.ParseFloat(s, 64)
	}

	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Float32, reflect.Float64:
		return rv.Float(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return float64(rv.Uint()), nil
	}

	return 0, fmt.Errorf("unsupported type %T", value)
}
