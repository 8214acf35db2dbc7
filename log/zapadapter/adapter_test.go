package zapadapter_test

import (
	"context"
	"testing"

	"github.com/jackc/pgmodel"
	"github.com/jackc/pgmodel/log/zapadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLogger(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := zapadapter.NewLogger(zap.New(core))

	logger.Log(context.Background(), pgmodel.LogLevelInfo, "registered entity", map[string]any{"entity": "Article"})
	logger.Log(context.Background(), pgmodel.LogLevelTrace, "merged record", nil)
	logger.Log(context.Background(), pgmodel.LogLevel(42), "odd", nil)

	entries := logs.AllUntimed()
	require.Len(t, entries, 3)

	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	assert.Equal(t, "registered entity", entries[0].Message)
	assert.Equal(t, map[string]any{"entity": "Article"}, entries[0].ContextMap())

	assert.Equal(t, zapcore.DebugLevel, entries[1].Level)
	assert.Equal(t, map[string]any{"PGMODEL_LOG_LEVEL": "trace"}, entries[1].ContextMap())

	assert.Equal(t, zapcore.ErrorLevel, entries[2].Level)
	assert.Equal(t, map[string]any{"INVALID_PGMODEL_LOG_LEVEL": "invalid level 42"}, entries[2].ContextMap())
}
