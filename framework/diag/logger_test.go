package diag

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/km-arc/go-scoped/framework/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRootLogger_JSON(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger, err := NewRootLogger(config.LogConfig{Level: "info", Format: "json"}, &buf)
	require.NoError(t, err)

	logger.Debug("hidden")
	logger.Info("visible", "key", "value")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "visible", entry["msg"])
	assert.Equal(t, "value", entry["key"])
}

func TestNewRootLogger_TextLevel(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger, err := NewRootLogger(config.LogConfig{Level: "DEBUG", Format: "text"}, &buf)
	require.NoError(t, err)

	logger.Debug("resolved")
	assert.Contains(t, buf.String(), "msg=resolved")
}

func TestNewRootLogger_Errors(t *testing.T) {
	t.Parallel()

	_, err := NewRootLogger(config.LogConfig{Level: "loud", Format: "text"}, &bytes.Buffer{})
	require.Error(t, err)

	_, err = NewRootLogger(config.LogConfig{Level: "info", Format: "xml"}, &bytes.Buffer{})
	require.Error(t, err)
}
