package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigure_JSONWithService(t *testing.T) {
	var buf bytes.Buffer
	t.Cleanup(func() { Configure(Config{Level: InfoLevel}) })

	Configure(Config{Level: InfoLevel, Output: &buf, Service: "edulearn"})
	Info().Int64("courseID", 7).Msg("course created")
	Debug().Msg("dropped")

	var rec map[string]interface{}
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &rec))
	assert.Equal(t, "course created", rec["message"])
	assert.Equal(t, "edulearn", rec["service"])
	assert.Equal(t, float64(7), rec["courseID"])
}

func TestFromSettings(t *testing.T) {
	cfg := FromSettings("DEBUG", "text", "api")

	assert.Equal(t, DebugLevel, cfg.Level)
	assert.True(t, cfg.Pretty)
	assert.False(t, FromSettings("info", "json", "").Pretty)
}
