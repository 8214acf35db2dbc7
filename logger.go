package pgmodel

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"unicode/utf8"
)

// LogLevel represents the pgmodel logging level. See LogLevel* constants for possible values.
type LogLevel int

// The values for log levels are chosen such that the zero value means that no log level was specified.
const (
	LogLevelTrace = LogLevel(6)
	LogLevelDebug = LogLevel(5)
	LogLevelInfo  = LogLevel(4)
	LogLevelWarn  = LogLevel(3)
	LogLevelError = LogLevel(2)
	LogLevelNone  = LogLevel(1)
)

func (ll LogLevel) String() string {
	switch ll {
	case LogLevelTrace:
		return "trace"
	case LogLevelDebug:
		return "debug"
	case LogLevelInfo:
		return "info"
	case LogLevelWarn:
		return "warn"
	case LogLevelError:
		return "error"
	case LogLevelNone:
		return "none"
	default:
		return fmt.Sprintf("invalid level %d", ll)
	}
}

// Logger is the interface used to get log output from pgmodel.
type Logger interface {
	// Log a message at the given level with data key/value pairs. data may be nil.
	Log(ctx context.Context, level LogLevel, msg string, data map[string]any)
}

// LoggerFunc is a wrapper around a function to satisfy the Logger interface.
type LoggerFunc func(ctx context.Context, level LogLevel, msg string, data map[string]any)

// Log delegates the logging request to the wrapped function.
func (f LoggerFunc) Log(ctx context.Context, level LogLevel, msg string, data map[string]any) {
	f(ctx, level, msg, data)
}

// LogLevelFromString converts log level string to constant
//
// Valid levels:
//
//	trace
//	debug
//	info
//	warn
//	error
//	none
func LogLevelFromString(s string) (LogLevel, error) {
	switch s {
	case "trace":
		return LogLevelTrace, nil
	case "debug":
		return LogLevelDebug, nil
	case "info":
		return LogLevelInfo, nil
	case "warn":
		return LogLevelWarn, nil
	case "error":
		return LogLevelError, nil
	case "none":
		return LogLevelNone, nil
	default:
		return 0, errors.New("invalid log level")
	}
}

// Data keys that name what a log entry is about. Every entry pgmodel logs for a specific entity or type carries one of
// them.
const (
	LogKeyEntity = "entity"
	LogKeyType   = "type"
)

// LogDataKeys returns the keys of data in the order adapters should emit them: LogKeyEntity and LogKeyType first, then
// the rest sorted.
func LogDataKeys(data map[string]any) []string {
	keys := make([]string, 0, len(data))
	for _, k := range []string{LogKeyEntity, LogKeyType} {
		if _, ok := data[k]; ok {
			keys = append(keys, k)
		}
	}
	for _, k := range slices.Sorted(maps.Keys(data)) {
		if k != LogKeyEntity && k != LogKeyType {
			keys = append(keys, k)
		}
	}
	return keys
}

const maxLoggedText = 64

// logText shortens wire text for log output without splitting a multi-byte character.
func logText(src []byte) string {
	if src == nil {
		return "NULL"
	}
	if len(src) <= maxLoggedText {
		return string(src)
	}

	l := 0
	for w := 0; l < maxLoggedText; l += w {
		_, w = utf8.DecodeRune(src[l:])
	}
	if len(src) > l {
		return fmt.Sprintf("%s (truncated %d bytes)", src[:l], len(src)-l)
	}
	return string(src)
}
