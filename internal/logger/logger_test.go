package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestWithFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	previous := log
	log = zap.New(core)
	t.Cleanup(func() { log = previous })

	ctx := WithFields(context.Background(), zap.String("tx_hash", "0xabc"))
	ctx = WithFields(ctx, zap.Uint("log_index", 3))
	DebugCtx(ctx, "Applied event", zap.String("kind", "ListCurrency"))

	entries := logs.All()
	assert.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "0xabc", fields["tx_hash"])
	assert.Equal(t, uint64(3), fields["log_index"])
	assert.Equal(t, "ListCurrency", fields["kind"])
}

func TestDefaultLoggerIsUsableBeforeInitialize(t *testing.T) {
	assert.NotPanics(t, func() {
		Info("not initialized")
		ErrorCtx(context.Background(), nil)
	})
}

func TestInitialize(t *testing.T) {
	previous := log
	t.Cleanup(func() { log = previous })

	assert.NoError(t, Initialize(Config{Debug: true}))
	assert.NotNil(t, Default())
}

func TestErrorCtx_UsesErrorAsMessage(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	previous := log
	log = zap.New(core)
	t.Cleanup(func() { log = previous })

	ErrorCtx(context.Background(), assert.AnError, zap.String("message", "Failed to apply event"))
	ErrorCtx(context.Background(), nil)

	entries := logs.All()
	assert.Len(t, entries, 2)
	assert.Equal(t, assert.AnError.Error(), entries[0].Message)
	assert.Equal(t, "Failed to apply event", entries[0].ContextMap()["message"])
	assert.Equal(t, "error occurred", entries[1].Message)
}
