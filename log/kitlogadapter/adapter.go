// Package kitlogadapter provides a logger that writes to a github.com/go-kit/log.Logger.
package kitlogadapter

import (
	"context"

	"github.com/go-kit/log"
	kitlevel "github.com/go-kit/log/level"
	"github.com/jackc/pgmodel"
)

type Logger struct {
	l log.Logger
}

func NewLogger(l log.Logger) *Logger {
	return &Logger{l: l}
}

// Log writes the entity or type key right after the level so lines about the same entity line up.
func (l *Logger) Log(ctx context.Context, level pgmodel.LogLevel, msg string, data map[string]any) {
	logger := l.l
	if len(data) > 0 {
		keyvals := make([]any, 0, 2*len(data))
		for _, k := range pgmodel.LogDataKeys(data) {
			keyvals = append(keyvals, k, data[k])
		}
		logger = log.With(logger, keyvals...)
	}

	switch level {
	case pgmodel.LogLevelTrace:
		logger.Log("PGMODEL_LOG_LEVEL", level, "msg", msg)
	case pgmodel.LogLevelDebug:
		kitlevel.Debug(logger).Log("msg", msg)
	case pgmodel.LogLevelInfo:
		kitlevel.Info(logger).Log("msg", msg)
	case pgmodel.LogLevelWarn:
		kitlevel.Warn(logger).Log("msg", msg)
	case pgmodel.LogLevelError:
		kitlevel.Error(logger).Log("msg", msg)
	default:
		logger.Log("INVALID_PGMODEL_LOG_LEVEL", level, "error", msg)
	}
}
