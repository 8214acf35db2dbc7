package pgtype

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// NumericCodec handles numeric. Values decode to decimal.Decimal. NaN and infinite values cannot be represented by
// decimal.Decimal and fail to decode.
type NumericCodec struct{}

func (NumericCodec) DecodeText(m *Map, typeName string, src []byte) (any, error) {
	if src == nil {
		return nil, nil
	}

	switch s := strings.TrimSpace(string(src)); s {
	case "NaN", "Infinity", "-Infinity":
		return nil, fmt.Errorf("cannot decode %s %s into decimal.Decimal", typeName, s)
	default:
		d, err := decimal.NewFromString(s)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", typeName, err)
		}
		return d, nil
	}
}

func (c NumericCodec) EncodeSQL(m *Map, typeName string, value any) (string, error) {
	return encodeScalarSQL(c, typeName, value)
}

func (c NumericCodec) EncodeText(m *Map, typeName string, value any, buf []byte) ([]byte, error) {
	return encodeScalarText(c, typeName, value, buf)
}

func (c NumericCodec) formatText(value any) (string, bool, error) {
	switch value := value.(type) {
	case nil:
		return "", true, nil
	case decimal.Decimal:
		return value.String(), false, nil
	case decimal.NullDecimal:
		if !value.Valid {
			return "", true, nil
		}
		return value.Decimal.String(), false, nil
	case string:
		d, err := decimal.NewFromString(value)
		if err != nil {
			return "", false, err
		}
		return d.String(), false, nil
	case float32:
		return decimal.NewFromFloat32(value).String(), false, nil
	case float64:
		return decimal.NewFromFloat(value).String(), false, nil
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
	return decimal.New(n, 0).String(), false, nil
}
