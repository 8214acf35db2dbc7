package pgtype

import (
	"fmt"
)

// TextCodec handles text and the other character types. Values decode to string.
type TextCodec struct{}

func (TextCodec) DecodeText(m *Map, typeName string, src []byte) (any, error) {
	if src == nil {
		return nil, nil
	}
	return string(src), nil
}

func (c TextCodec) EncodeSQL(m *Map, typeName string, value any) (string, error) {
	return encodeScalarSQL(c, typeName, value)
}

func (c TextCodec) EncodeText(m *Map, typeName string, value any, buf []byte) ([]byte, error) {
	return encodeScalarText(c, typeName, value, buf)
}

func (c TextCodec) formatText(value any) (string, bool, error) {
	switch value := value.(type) {
	case nil:
		return "", true, nil
	case string:
		return value, false, nil
	case []byte:
		if value == nil {
			return "", true, nil
		}
		return string(value), false, nil
	case rune:
		return string(value), false, nil
	}

	if v, ok, err := valuerValue(value); ok {
		if err != nil {
			return "", false, err
		}
		return c.formatText(v)
	}

	if s, ok := value.(fmt.Stringer); ok {
		return s.String(), false, nil
	}

	return "", false, fmt.Errorf("unsupported type %T", value)
}
