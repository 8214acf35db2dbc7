package pgtype

import (
	"fmt"

	"github.com/gofrs/uuid"
)

// UUIDCodec handles uuid. Values decode to uuid.UUID.
type UUIDCodec struct{}

func (UUIDCodec) DecodeText(m *Map, typeName string, src []byte) (any, error) {
	if src == nil {
		return nil, nil
	}

	u, err := uuid.FromString(string(src))
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %w", typeName, err)
	}
	return u, nil
}

func (c UUIDCodec) EncodeSQL(m *Map, typeName string, value any) (string, error) {
	return encodeScalarSQL(c, typeName, value)
}

func (c UUIDCodec) EncodeText(m *Map, typeName string, value any, buf []byte) ([]byte, error) {
	return encodeScalarText(c, typeName, value, buf)
}

func (c UUIDCodec) formatText(value any) (string, bool, error) {
	switch value := value.(type) {
	case nil:
		return "", true, nil
	case uuid.UUID:
		return value.String(), false, nil
	case uuid.NullUUID:
		if !value.Valid {
			return "", true, nil
		}
		return value.UUID.String(), false, nil
	case [16]byte:
		return uuid.UUID(value).String(), false, nil
	case []byte:
		u, err := uuid.FromBytes(value)
		if err != nil {
			return "", false, err
		}
		return u.String(), false, nil
	case string:
		u, err := uuid.FromString(value)
		if err != nil {
			return "", false, err
		}
		return u.String(), false, nil
	}

	return "", false, fmt.Errorf("unsupported type %T", value)
}
