package logger

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, parseLevel("debug"))
	assert.Equal(t, zapcore.WarnLevel, parseLevel("warn"))
	assert.Equal(t, zapcore.ErrorLevel, parseLevel("error"))
	assert.Equal(t, zapcore.InfoLevel, parseLevel("verbose"))
}

func TestZapWrapper_FieldsAndErrors(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := NewZapAdapter(zap.New(core)).With(map[string]interface{}{"taskType": "classify-car-question"})

	log.Warn("dataset skipped", map[string]interface{}{
		"source": "march.csv",
		"cause":  errors.New("no Date column"),
	})

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "dataset skipped", entry.Message)
	ctx := entry.ContextMap()
	assert.Equal(t, "classify-car-question", ctx["taskType"])
	assert.Equal(t, "march.csv", ctx["source"])
	assert.Equal(t, "no Date column", ctx["cause"])
}

func TestNewStructured_BadOutputFallsBack(t *testing.T) {
	log := NewStructured(Options{Level: "info", Format: "json", Output: "/nonexistent-dir/x/y.log"})
	assert.NotNil(t, log)
	log.Info("still usable", nil)
}
