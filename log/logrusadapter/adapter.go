// Package logrusadapter provides a logger that writes to a github.com/sirupsen/logrus.Logger
// log.
package logrusadapter

import (
	"context"
	"maps"

	"github.com/jackc/pgmodel"
	"github.com/sirupsen/logrus"
)

type Logger struct {
	l logrus.FieldLogger
}

func NewLogger(l logrus.FieldLogger) *Logger {
	return &Logger{l: l}
}

// Log moves an error under the "err" key to logrus.ErrorKey so hooks and formatters treat it as the entry's error.
func (l *Logger) Log(ctx context.Context, level pgmodel.LogLevel, msg string, data map[string]any) {
	var logger logrus.FieldLogger = l.l
	if err, ok := data["err"].(error); ok {
		logger = logger.WithError(err)
		data = maps.Clone(data)
		delete(data, "err")
	}
	if len(data) > 0 {
		logger = logger.WithFields(data)
	}

	switch level {
	case pgmodel.LogLevelTrace:
		logger.WithField("PGMODEL_LOG_LEVEL", level).Debug(msg)
	case pgmodel.LogLevelDebug:
		logger.Debug(msg)
	case pgmodel.LogLevelInfo:
		logger.Info(msg)
	case pgmodel.LogLevelWarn:
		logger.Warn(msg)
	case pgmodel.LogLevelError:
		logger.Error(msg)
	default:
		logger.WithField("INVALID_PGMODEL_LOG_LEVEL", level).Error(msg)
	}
}
