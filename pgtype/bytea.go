package pgtype

import (
	"encoding/hex"
	"fmt"

	"github.com/jackc/pgmodel/internal/sanitize"
)

// ByteaCodec handles bytea. Values decode to []byte. Both the hex and the escape text formats are decoded; the hex
// format is always encoded.
type ByteaCodec struct{}

func (ByteaCodec) DecodeText(m *Map, typeName string, src []byte) (any, error) {
	if src == nil {
		return nil, nil
	}

	if len(src) >= 2 && src[0] == '\\' && src[1] == 'x' {
		buf := make([]byte, hex.DecodedLen(len(src)-2))
		if _, err := hex.Decode(buf, src[2:]); err != nil {
			return nil, fmt.Errorf("invalid hex bytea: %w", err)
		}
		return buf, nil
	}

	return decodeByteaEscape(src)
}

func decodeByteaEscape(src []byte) ([]byte, error) {
	buf := make([]byte, 0, len(src))
	for i := 0; i < len(src); i++ {
		if src[i] != '\\' {
			buf = append(buf, src[i])
			continue
		}

		if i+1 < len(src) && src[i+1] == '\\' {
			buf = append(buf, '\\')
			i++
			continue
		}

		if i+3 >= len(src) {
			return nil, fmt.Errorf("invalid escape bytea: truncated octal escape")
		}
		var b byte
		for _, d := range src[i+1 : i+4] {
			if d < '0' || d > '7' {
				return nil, fmt.Errorf("invalid escape bytea: bad octal digit %q", d)
			}
			b = b<<3 | (d - '0')
		}
		buf = append(buf, b)
		i += 3
	}

	return buf, nil
}

func (c ByteaCodec) EncodeSQL(m *Map, typeName string, value any) (string, error) {
	b, null, err := c.bytes(indirect(value))
	if err != nil {
		return "", fmt.Errorf("cannot encode %T as %s: %w", value, typeName, err)
	}
	if null {
		return nullSQL(typeName), nil
	}

	return typeName + " " + string(sanitize.QuoteBytes(nil, b)), nil
}

func (c ByteaCodec) EncodeText(m *Map, typeName string, value any, buf []byte) ([]byte, error) {
	return encodeScalarText(c, typeName, value, buf)
}

func (c ByteaCodec) formatText(value any) (string, bool, error) {
	b, null, err := c.bytes(value)
	if err != nil || null {
		return "", null, err
	}
	return `\x` + hex.EncodeToString(b), false, nil
}

func (c ByteaCodec) bytes(value any) ([]byte, bool, error) {
	switch value := value.(type) {
	case nil:
		return nil, true, nil
	case []byte:
		if value == nil {
			return nil, true, nil
		}
		return value, false, nil
	case string:
		return []byte(value), false, nil
	}

	if v, ok, err := valuerValue(value); ok {
		if err != nil {
			return nil, false, err
		}
		return c.bytes(v)
	}

	return nil, false, fmt.Errorf("unsupported type %T", value)
}
