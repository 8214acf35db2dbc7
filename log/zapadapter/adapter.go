// Package zapadapter provides a logger that writes to a go.uber.org/zap.Logger.
package zapadapter

import (
	"context"

	"github.com/jackc/pgmodel"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Logger struct {
	logger *zap.Logger
}

func NewLogger(logger *zap.Logger) *Logger {
	return &Logger{logger: logger.WithOptions(zap.AddCallerSkip(1))}
}

func (pl *Logger) Log(ctx context.Context, level pgmodel.LogLevel, msg string, data map[string]any) {
	fields := make([]zapcore.Field, 0, len(data))
	for k, v := range data {
		fields = append(fields, zap.Any(k, v))
	}

	switch level {
	case pgmodel.LogLevelTrace:
		pl.logger.Debug(msg, append(fields, zap.Stringer("PGMODEL_LOG_LEVEL", level))...)
	case pgmodel.LogLevelDebug:
		pl.logger.Debug(msg, fields...)
	case pgmodel.LogLevelInfo:
		pl.logger.Info(msg, fields...)
	case pgmodel.LogLevelWarn:
		pl.logger.Warn(msg, fields...)
	case pgmodel.LogLevelError:
		pl.logger.Error(msg, fields...)
	default:
		pl.logger.Error(msg, append(fields, zap.Stringer("INVALID_PGMODEL_LOG_LEVEL", level))...)
	}
}
