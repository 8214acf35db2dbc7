package pgtype

import (
	"fmt"
	"strings"
)

type BoolCodec struct{}

func (BoolCodec) DecodeText(m *Map, typeName string, src []byte) (any, error) {
	if src == nil {
		return nil, nil
	}

	switch strings.ToLower(strings.TrimSpace(string(src))) {
	case "t", "true", "y", "yes", "on", "1":
		return true, nil
	case "f", "false", "n", "no", "off", "0":
		return false, nil
	}

	return nil, fmt.Errorf("invalid bool: %q", src)
}

func (c BoolCodec) EncodeSQL(m *Map, typeName string, value any) (string, error) {
	return encodeScalarSQL(c, typeName, value)
}

func (c BoolCodec) EncodeText(m *Map, typeName string, value any, buf []byte) ([]byte, error) {
	return encodeScalarText(c, typeName, value, buf)
}

func (c BoolCodec) formatText(value any) (string, bool, error) {
	switch value := value.(type) {
	case nil:
		return "", true, nil
	case bool:
		if value {
			return "t", false, nil
		}
		return "f", false, nil
	case string:
		b, err := c.DecodeText(nil, "bool", []byte(value))
		if err != nil {
			return "", false, err
		}
		return c.formatText(b)
	}

	if v, ok, err := valuerValue(value); ok {
		if err != nil {
			return "", false, err
		}
		return c.formatText(v)
	}

	return "", false, fmt.Errorf("unsupported type %T", value)
}
