package obslog

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONFormatEmitsParsableLines(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, "json", "info")

	l.Info("hello", map[string]any{"key": "value"})

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "hello", decoded["message"])
	assert.Equal(t, "value", decoded["key"])
}

func TestDebugSuppressedAtInfoLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, "json", "info")

	l.Debug("should not appear", nil)
	assert.Empty(t, buf.String())
}

func TestWithComponentTagsEvents(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, "json", "info")
	scoped := l.WithComponent("engine")

	scoped.Info("running", nil)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "engine", decoded["component"])
}

func TestNoOpLoggerDiscardsEverything(t *testing.T) {
	var l NoOpLogger
	l.Info("x", nil)
	l.ErrorWithContext(context.Background(), "y", nil)
	assert.NotNil(t, l.WithComponent("x-noop"))
}
