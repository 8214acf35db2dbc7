package pgtype

import (
	"fmt"
	"strconv"
)

// IntCodec handles int2, int4 and int8. Values decode to int16, int32 and int64 respectively.
type IntCodec struct {
	BitSize int
}

func (c IntCodec) DecodeText(m *Map, typeName string, src []byte) (any, error) {
	if src == nil {
		return nil, nil
	}

	n, err := strconv.ParseInt(string(src), 10, c.BitSize)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %w", typeName, err)
	}

	switch c.BitSize {
	case 16:
		return int16(n), nil
	case 32:
		return int32(n), nil
	default:
		return n, nil
	}
}

func (c IntCodec) EncodeSQL(m *Map, typeName string, value any) (string, error) {
	return encodeScalarSQL(c, typeName, value)
}

func (c IntCodec) EncodeText(m *Map, typeName string, value any, buf []byte) ([]byte, error) {
	return encodeScalarText(c, typeName, value, buf)
}

func (c IntCodec) formatText(value any) (string, bool, error) {
	if value == nil {
		return "", true, nil
	}

	if v, ok, err := valuerValue(value); ok {
		if err != nil {
			return "", false, err
		}
		return c.formatText(v)
	}

	n, err := toInt64(value)
	if err != nil {
		return "", false, err
	}

	bits := c.BitSize
	if bits < 64 {
		limit := int64(1) << (bits - 1)
		if n < -limit || n >= limit {
			return "", false, fmt.Errorf("%d is out of range for a %d bit integer", n, bits)
		}
	}

	return strconv.FormatInt(n, 10), false, nil
}
