package pgtype

import (
	"fmt"
	"math"
	"strconv"
)

// FloatCodec handles float4 and float8. Values decode to float32 and float64 respectively.
type FloatCodec struct {
	BitSize int
}

func (c FloatCodec) DecodeText(m *Map, typeName string, src []byte) (any, error) {
	if src == nil {
		return nil, nil
	}

	f, err := strconv.ParseFloat(string(src), c.BitSize)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %w", typeName, err)
	}

	if c.BitSize == 32 {
		return float32(f), nil
	}
	return f, nil
}

func (c FloatCodec) EncodeSQL(m *Map, typeName string, value any) (string, error) {
	return encodeScalarSQL(c, typeName, value)
}

func (c FloatCodec) EncodeText(m *Map, typeName string, value any, buf []byte) ([]byte, error) {
	return encodeScalarText(c, typeName, value, buf)
}

func (c FloatCodec) formatText(value any) (string, bool, error) {
	if value == nil {
		return "", true, nil
	}

	if v, ok, err := valuerValue(value); ok {
		if err != nil {
			return "", false, err
		}
		return c.formatText(v)
	}

	var f float64
	switch value := value.(type) {
	case float32:
		// Format with 32 bits so 1.1 does not become 1.100000023841858.
		return formatFloat(float64(value), 32), false, nil
	default:
		var err error
		f, err = toFloat64(value)
		if err != nil {
			return "", false, err
		}
	}

	return formatFloat(f, c.BitSize), false, nil
}

func formatFloat(f float64, bitSize int) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}
	return strconv.FormatFloat(f, 'f', -1, bitSize)
}
