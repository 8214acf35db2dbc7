// Package zerologadapter provides a logger that writes to a github.com/rs/zerolog.
package zerologadapter

import (
	"context"

	"github.com/jackc/pgmodel"
	"github.com/rs/zerolog"
)

type Logger struct {
	logger      zerolog.Logger
	withModule  bool
	fromContext bool
	ctxFunc     ContextFunc
}

// ContextFunc is used to add fields from the context to the log entry.
type ContextFunc func(ctx context.Context, z zerolog.Context) zerolog.Context

type Option func(*Logger)

// WithContextFunc adds the fields returned by ctxf to every log entry.
func WithContextFunc(ctxf ContextFunc) Option {
	return func(l *Logger) {
		l.ctxFunc = ctxf
	}
}

// WithoutModule disables adding module:pgmodel to every log entry.
func WithoutModule() Option {
	return func(l *Logger) {
		l.withModule = false
	}
}

// NewLogger accepts a zerolog.Logger as input and returns a new pgmodel.Logger.
func NewLogger(logger zerolog.Logger, options ...Option) *Logger {
	l := Logger{
		logger:     logger,
		withModule: true,
	}
	l.init(options)
	return &l
}

// NewContextLogger returns a Logger that writes to the zerolog.Logger carried by the context of every call.
func NewContextLogger(options ...Option) *Logger {
	l := Logger{
		fromContext: true,
		withModule:  true,
	}
	l.init(options)
	return &l
}

func (pl *Logger) init(options []Option) {
	for _, opt := range options {
		opt(pl)
	}
	if pl.withModule {
		pl.logger = pl.logger.With().Str("module", "pgmodel").Logger()
	}
}

func (pl *Logger) Log(ctx context.Context, level pgmodel.LogLevel, msg string, data map[string]any) {
	var zlevel zerolog.Level
	switch level {
	case pgmodel.LogLevelNone:
		zlevel = zerolog.NoLevel
	case pgmodel.LogLevelError:
		zlevel = zerolog.ErrorLevel
	case pgmodel.LogLevelWarn:
		zlevel = zerolog.WarnLevel
	case pgmodel.LogLevelInfo:
		zlevel = zerolog.InfoLevel
	case pgmodel.LogLevelDebug:
		zlevel = zerolog.DebugLevel
	case pgmodel.LogLevelTrace:
		zlevel = zerolog.TraceLevel
	default:
		zlevel = zerolog.DebugLevel
	}

	var zctx zerolog.Context
	if pl.fromContext {
		logger := zerolog.Ctx(ctx)
		zctx = logger.With()
		if pl.withModule {
			zctx = zctx.Str("module", "pgmodel")
		}
	} else {
		zctx = pl.logger.With()
	}
	if pl.ctxFunc != nil {
		zctx = pl.ctxFunc(ctx, zctx)
	}

	logger := zctx.Fields(data).Logger()
	logger.WithLevel(zlevel).Msg(msg)
}
