package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	cfgpkg "github.com/taoyao-code/walkpad-gateway/internal/config"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, ParseLevel("DEBUG"))
	assert.Equal(t, zapcore.WarnLevel, ParseLevel("warning"))
	assert.Equal(t, zapcore.ErrorLevel, ParseLevel("error"))
	assert.Equal(t, zapcore.InfoLevel, ParseLevel("bogus"))
}

func TestJSONLoggerWritesBothOutputs(t *testing.T) {
	var console, file bytes.Buffer
	logger := newLogger(cfgpkg.LoggingConfig{Level: "info", Format: "json"}, &console, &file)

	logger.Debug("hidden")
	logger.Info("session active", zap.String("device", "C0:FF:EE:00:00:01"))
	require.NoError(t, logger.Sync())

	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(console.Bytes()), &entry))
	assert.Equal(t, "session active", entry["msg"])
	assert.Equal(t, "C0:FF:EE:00:00:01", entry["device"])
	assert.Equal(t, console.String(), file.String())
}
