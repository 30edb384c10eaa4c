package utils

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := InitLogger(LoggerConfig{Format: "json", Level: "warn", Output: &buf})

	logger.Info("hidden")
	logger.WithField("group_id", 3).Warn("shown")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "shown", line["msg"])
	assert.Equal(t, "warning", line["level"])
	assert.EqualValues(t, 3, line["group_id"])
}

func TestInitLoggerDefaults(t *testing.T) {
	logger := InitLogger(LoggerConfig{Level: "nonsense", Output: &bytes.Buffer{}})
	assert.Equal(t, "info", logger.GetLevel().String())
}
