// Package testingadapter provides a logger that writes to a test or benchmark
// log.
package testingadapter

import (
	"context"
	"fmt"

	"github.com/jackc/pgmodel"
)

// TestingLogger interface defines the subset of testing.TB methods used by this
// adapter.
type TestingLogger interface {
	Log(args ...any)
}

type Logger struct {
	l TestingLogger
}

func NewLogger(l TestingLogger) *Logger {
	return &Logger{l: l}
}

// Log writes the level, the message and then data as key=value pairs, the entity or type first. Wire text is quoted so
// commas and parentheses in a composite stay readable.
func (l *Logger) Log(ctx context.Context, level pgmodel.LogLevel, msg string, data map[string]any) {
	logArgs := make([]any, 0, 2+len(data))
	logArgs = append(logArgs, level, msg)
	for _, k := range pgmodel.LogDataKeys(data) {
		if k == "text" {
			logArgs = append(logArgs, fmt.Sprintf("%s=%q", k, data[k]))
			continue
		}
		logArgs = append(logArgs, fmt.Sprintf("%s=%v", k, data[k]))
	}
	l.l.Log(logArgs...)
}
