package logging

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestObservedFieldsAndLevels(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	log := NewFromCore(core).Named("rag").With(String("request_id", "r-1"))

	log.Debug("dropped")
	log.Info("answered", Int("chunks", 5), Bool("fallback", false), Duration("took", time.Second))
	log.Error("upstream failed", Err(errors.New("boom")))

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "rag", entries[0].LoggerName)
	ctx := entries[0].ContextMap()
	assert.Equal(t, "r-1", ctx["request_id"])
	assert.Equal(t, int64(5), ctx["chunks"])
	assert.Equal(t, false, ctx["fallback"])
	assert.Equal(t, "boom", entries[1].ContextMap()["error"])
}

func TestErrNil(t *testing.T) {
	assert.Equal(t, "<nil>", Err(nil).Value)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, parseLevel("DEBUG"))
	assert.Equal(t, zapcore.WarnLevel, parseLevel("warning"))
	assert.Equal(t, zapcore.InfoLevel, parseLevel("nonsense"))
}

func TestDefaultIgnoresNil(t *testing.T) {
	prev := Default()
	t.Cleanup(func() { SetDefault(prev) })

	nop := NewNop()
	SetDefault(nop)
	SetDefault(nil)
	assert.Equal(t, nop, Default())
	assert.NotNil(t, OrNop(nil))
}
