package logging

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, DebugLevel, ParseLevel("debug"))
	assert.Equal(t, InfoLevel, ParseLevel("INFO"))
	assert.Equal(t, WarnLevel, ParseLevel("warning"))
	assert.Equal(t, ErrorLevel, ParseLevel("Error"))
	assert.Equal(t, InfoLevel, ParseLevel("nonsense"))
}

func TestZapLoggerWritesFields(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewZapLogger(LogConfig{
		Level:  DebugLevel,
		Output: &buf,
	})
	require.NoError(t, err)

	logger.Info("routed item",
		String("destination", "primary"),
		Int("live_count", 3),
	)

	out := buf.String()
	assert.Contains(t, out, "routed item")
	assert.Contains(t, out, "destination")
	assert.Contains(t, out, "primary")
}

func TestZapLoggerLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewZapLogger(LogConfig{
		Level:  WarnLevel,
		Output: &buf,
	})
	require.NoError(t, err)

	logger.Debug("hidden")
	logger.Info("also hidden")
	logger.Warn("visible")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "visible")
}

func TestWithFieldsAccumulates(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewZapLogger(LogConfig{
		Level:  InfoLevel,
		Output: &buf,
	})
	require.NoError(t, err)

	logger.WithFields(String("destination", "backup")).Info("probe ok")

	assert.Contains(t, buf.String(), "backup")
}

func TestNopLogger(t *testing.T) {
	logger := NewNopLogger()
	// Must not panic, and WithFields must stay usable.
	logger.WithFields(String("k", "v")).Error("dropped", assert.AnError)
}
