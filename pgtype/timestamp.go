package pgtype

import (
	"fmt"
	"strings"
	"time"
)

const (
	dateLayout        = "2006-01-02"
	timestampLayout   = "2006-01-02 15:04:05.999999999"
	timestampOutput   = "2006-01-02 15:04:05.999999"
	timestamptzOutput = "2006-01-02 15:04:05.000000-07:00"
)

var timestamptzLayouts = []string{
	"2006-01-02 15:04:05.999999999-07",
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999-07:00:00",
	"2006-01-02T15:04:05.999999999Z07:00",
}

// DateCodec handles date. Values decode to time.Time at midnight UTC.
type DateCodec struct{}

func (DateCodec) DecodeText(m *Map, typeName string, src []byte) (any, error) {
	if src == nil {
		return nil, nil
	}

	s := string(src)
	if isInfinity(s) {
		return nil, fmt.Errorf("cannot decode %s %s into time.Time", typeName, s)
	}

	t, err := time.ParseInLocation(dateLayout, s, time.UTC)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %w", typeName, err)
	}
	return t, nil
}

func (c DateCodec) EncodeSQL(m *Map, typeName string, value any) (string, error) {
	return encodeScalarSQL(c, typeName, value)
}

func (c DateCodec) EncodeText(m *Map, typeName string, value any, buf []byte) ([]byte, error) {
	return encodeScalarText(c, typeName, value, buf)
}

func (c DateCodec) formatText(value any) (string, bool, error) {
	return formatTime(value, func(t time.Time) string { return t.Format(dateLayout) })
}

// TimestampCodec handles timestamp without time zone. Values decode to time.Time in UTC.
type TimestampCodec struct{}

func (TimestampCodec) DecodeText(m *Map, typeName string, src []byte) (any, error) {
	if src == nil {
		return nil, nil
	}

	s := string(src)
	if isInfinity(s) {
		return nil, fmt.Errorf("cannot decode %s %s into time.Time", typeName, s)
	}

	t, err := time.ParseInLocation(timestampLayout, s, time.UTC)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %w", typeName, err)
	}
	return t, nil
}

func (c TimestampCodec) EncodeSQL(m *Map, typeName string, value any) (string, error) {
	return encodeScalarSQL(c, typeName, value)
}

func (c TimestampCodec) EncodeText(m *Map, typeName string, value any, buf []byte) ([]byte, error) {
	return encodeScalarText(c, typeName, value, buf)
}

func (c TimestampCodec) formatText(value any) (string, bool, error) {
	// The wall clock is kept and the location is discarded, as PostgreSQL does for timestamp.
	return formatTime(value, func(t time.Time) string { return t.Format(timestampOutput) })
}

// TimestamptzCodec handles timestamp with time zone. Values decode to time.Time with the offset sent by the server.
type TimestamptzCodec struct{}

func (TimestamptzCodec) DecodeText(m *Map, typeName string, src []byte) (any, error) {
	if src == nil {
		return nil, nil
	}

	s := string(src)
	if isInfinity(s) {
		return nil, fmt.Errorf("cannot decode %s %s into time.Time", typeName, s)
	}

	var err error
	for _, layout := range timestamptzLayouts {
		var t time.Time
		t, err = time.Parse(layout, s)
		if err == nil {
			return t, nil
		}
	}

	return nil, fmt.Errorf("invalid %s: %w", typeName, err)
}

func (c TimestamptzCodec) EncodeSQL(m *Map, typeName string, value any) (string, error) {
	return encodeScalarSQL(c, typeName, value)
}

func (c TimestamptzCodec) EncodeText(m *Map, typeName string, value any, buf []byte) ([]byte, error) {
	return encodeScalarText(c, typeName, value, buf)
}

func (c TimestamptzCodec) formatText(value any) (string, bool, error) {
	return formatTime(value, func(t time.Time) string { return t.Format(timestamptzOutput) })
}

func formatTime(value any, format func(time.Time) string) (string, bool, error) {
	switch value := value.(type) {
	case nil:
		return "", true, nil
	case time.Time:
		return format(value), false, nil
	case string:
		return value, false, nil
	}

	return "", false, fmt.Errorf("unsupported type %T", value)
}

func isInfinity(s string) bool {
	s = strings.ToLower(s)
	return s == "infinity" || s == "-infinity"
}
