package logger

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestHTTPRequestFields(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, "info", "json")

	log.WithComponent("router").HTTPRequest("req-1", "POST", "/selling", 303, 15*time.Millisecond, "10.0.0.1")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	require.Equal(t, "router", entry["component"])
	require.Equal(t, "req-1", entry["request_id"])
	require.Equal(t, "POST", entry["method"])
	require.Equal(t, "/selling", entry["path"])
	require.EqualValues(t, 303, entry["status"])
	require.Equal(t, "HTTP request", entry["message"])
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, "warn", "json")

	log.Info().Msg("hidden")
	require.Zero(t, buf.Len())

	log.Warn().Msg("shown")
	require.Contains(t, buf.String(), "shown")
}

func TestInvalidLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, "loud", "json")

	log.Debug().Msg("hidden")
	log.Info().Msg("shown")
	require.NotContains(t, buf.String(), "hidden")
	require.Contains(t, buf.String(), "shown")
}

func TestWithRequestIDEmpty(t *testing.T) {
	log := Nop()
	require.Same(t, log, log.WithRequestID(""))
}
