// Package apdnumeric provides a numeric codec backed by github.com/cockroachdb/apd. Unlike the builtin numeric codec it
// can represent NaN and infinite values.
package apdnumeric

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cockroachdb/apd"
	"github.com/jackc/pgmodel/internal/sanitize"
	"github.com/jackc/pgmodel/pgtype"
)

// Codec handles numeric. Values decode to *apd.Decimal.
type Codec struct{}

// Register replaces the numeric codec of m.
func Register(m *pgtype.Map) {
	m.RegisterCodec("numeric", Codec{}, "decimal")
}

func (Codec) DecodeText(m *pgtype.Map, typeName string, src []byte) (any, error) {
	if src == nil {
		return nil, nil
	}

	d, _, err := apd.NewFromString(strings.TrimSpace(string(src)))
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %w", typeName, err)
	}
	return d, nil
}

func (c Codec) EncodeSQL(m *pgtype.Map, typeName string, value any) (string, error) {
	s, null, err := c.formatText(value)
	if err != nil {
		return "", fmt.Errorf("cannot encode %T as %s: %w", value, typeName, err)
	}
	if null {
		return "NULL::" + typeName, nil
	}
	return sanitize.TypedLiteral(typeName, s), nil
}

func (c Codec) EncodeText(m *pgtype.Map, typeName string, value any, buf []byte) ([]byte, error) {
	s, null, err := c.formatText(value)
	if err != nil {
		return nil, fmt.Errorf("cannot encode %T as %s: %w", value, typeName, err)
	}
	if null {
		return nil, nil
	}
	return append(buf, s...), nil
}

func (Codec) formatText(value any) (string, bool, error) {
	var d *apd.Decimal
	switch value := value.(type) {
	case nil:
		return "", true, nil
	case *apd.Decimal:
		if value == nil {
			return "", true, nil
		}
		d = value
	case apd.Decimal:
		d = &value
	case string:
		var err error
		d, _, err = apd.NewFromString(value)
		if err != nil {
			return "", false, err
		}
	case int:
		d = apd.New(int64(value), 0)
	case int32:
		d = apd.New(int64(value), 0)
	case int64:
		d = apd.New(value, 0)
	case float64:
		var err error
		d, _, err = apd.NewFromString(strconv.FormatFloat(value, 'f', -1, 64))
		if err != nil {
			return "", false, err
		}
	default:
		return "", false, fmt.Errorf("unsupported type %T", value)
	}

	return d.Text('f'), false, nil
}
