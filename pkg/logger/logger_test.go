package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestInitRejectsBadLevel(t *testing.T) {
	err := Init(Config{Level: "loud"})
	assert.Error(t, err)
}

func TestWithContextAddsFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	Set(zap.New(core))
	defer Set(nil)

	ctx := context.WithValue(context.Background(), TableKey, "forecasts")
	ctx = context.WithValue(ctx, FormatKey, "parquet")
	WithContext(ctx).Info("table written")

	entries := logs.All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "forecasts", fields["table"])
	assert.Equal(t, "parquet", fields["format"])
}

func TestGetWithoutInitIsSilent(t *testing.T) {
	Set(nil)
	assert.NotNil(t, Get())
	assert.NoError(t, Sync())
}

func TestComponentTagsLogger(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	Set(zap.New(core))
	defer Set(nil)

	Component("registry").Info("registered")
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "registry", logs.All()[0].ContextMap()["component"])
}
