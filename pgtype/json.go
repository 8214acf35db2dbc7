package pgtype

import (
	"encoding/json"
	"fmt"
)

// JSONCodec handles json and jsonb. Values decode with encoding/json into map[string]any, []any, string, float64, bool
// or nil.
type JSONCodec struct{}

func (JSONCodec) DecodeText(m *Map, typeName string, src []byte) (any, error) {
	if src == nil {
		return nil, nil
	}

	var v any
	if err := json.Unmarshal(src, &v); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", typeName, err)
	}
	return v, nil
}

func (c JSONCodec) EncodeSQL(m *Map, typeName string, value any) (string, error) {
	return encodeScalarSQL(c, typeName, value)
}

func (c JSONCodec) EncodeText(m *Map, typeName string, value any, buf []byte) ([]byte, error) {
	return encodeScalarText(c, typeName, value, buf)
}

// formatText treats []byte and json.RawMessage as already encoded JSON. Everything else, including strings, is
// marshaled.
func (JSONCodec) formatText(value any) (string, bool, error) {
	switch value := value.(type) {
	case nil:
		return "", true, nil
	case json.RawMessage:
		if value == nil {
			return "", true, nil
		}
		return string(value), false, nil
	case []byte:
		if value == nil {
			return "", true, nil
		}
		return string(value), false, nil
	}

	b, err := json.Marshal(value)
	if err != nil {
		return "", false, err
	}
	return string(b), false, nil
}
