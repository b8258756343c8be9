package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/gemscreener/pkg/config"
)

// entries decodes one JSON object per written line
func entries(t *testing.T, buf *bytes.Buffer) []map[string]interface{} {
	t.Helper()
	var out []map[string]interface{}
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(line), &m), line)
		out = append(out, m)
	}
	return out
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"INFO", zerolog.InfoLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"", zerolog.InfoLevel},
		{"verbose", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, parseLogLevel(tt.in))
		})
	}
}

func TestNew_SetsGlobalLevel(t *testing.T) {
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.TraceLevel) })

	for _, format := range []string{"json", "console"} {
		log := New(&config.Config{Env: "test", LogLevel: "warn", LogFormat: format})
		require.NotNil(t, log)
		assert.Equal(t, zerolog.WarnLevel, zerolog.GlobalLevel())
	}
}

func TestNewWithWriter_Levels(t *testing.T) {
	tests := []struct {
		name  string
		level string
		want  []string
	}{
		{"debug writes everything", "debug", []string{"debug", "info", "warn", "error"}},
		{"warn drops debug and info", "warn", []string{"warn", "error"}},
		{"unknown falls back to info", "loud", []string{"info", "warn", "error"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			log := NewWithWriter(&buf, tt.level)

			log.Debug("d")
			log.Info("i")
			log.Warn("w")
			log.Error("e")

			var got []string
			for _, e := range entries(t, &buf) {
				got = append(got, e["level"].(string))
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestModuleAndFields(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, "info").
		Module("yahoo").
		WithField("ticker", "RELIANCE.NS").
		WithFields(map[string]interface{}{"attempt": 2, "market": "INDIA"})

	log.Info("Fundamentals fetched")

	got := entries(t, &buf)
	require.Len(t, got, 1)
	assert.Equal(t, "yahoo", got[0]["module"])
	assert.Equal(t, "RELIANCE.NS", got[0]["ticker"])
	assert.Equal(t, "INDIA", got[0]["market"])
	assert.EqualValues(t, 2, got[0]["attempt"])
	assert.Equal(t, "Fundamentals fetched", got[0]["message"])
	assert.Contains(t, got[0], "time")
}

func TestChildLoggersDoNotLeakFields(t *testing.T) {
	var buf bytes.Buffer
	base := NewWithWriter(&buf, "info")

	base.WithField("run_id", "r1").Info("child")
	base.Info("parent")

	got := entries(t, &buf)
	require.Len(t, got, 2)
	assert.Equal(t, "r1", got[0]["run_id"])
	assert.NotContains(t, got[1], "run_id")
}

func TestWithError(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, "info")

	log.WithError(errors.New("crumb expired")).WithField("ticker", "MSFT").Warn("Retrying with new session")

	got := entries(t, &buf)
	require.Len(t, got, 1)
	assert.Equal(t, "crumb expired", got[0]["error"])
	assert.Equal(t, "MSFT", got[0]["ticker"])
	assert.Equal(t, "warn", got[0]["level"])
}

func TestNewNop(t *testing.T) {
	log := NewNop()
	assert.Equal(t, zerolog.Disabled, log.zlog.GetLevel())

	child := log.Module("scheduler").WithError(errors.New("x"))
	assert.Equal(t, zerolog.Disabled, child.zlog.GetLevel())
	assert.NotPanics(t, func() { child.Error("discarded") })
}
