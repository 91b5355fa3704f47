package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Level(t *testing.T) {
	tests := []struct {
		level string
		want  log.Level
	}{
		{"debug", log.DebugLevel},
		{"warn", log.WarnLevel},
		{"error", log.ErrorLevel},
		{"nonsense", log.InfoLevel},
		{"", log.InfoLevel},
	}
	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			assert.Equal(t, tt.want, New(tt.level, FormatJSON).GetLevel())
		})
	}
}

func TestNewWithOutput_JSON(t *testing.T) {
	buf := &bytes.Buffer{}
	l := NewWithOutput("info", FormatJSON, buf)
	l.WithField("user_id", "42").Info("file created")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "file created", entry["msg"])
	assert.Equal(t, "42", entry["user_id"])
	assert.Contains(t, entry, "timestamp")
}

func TestNewWithOutput_Text(t *testing.T) {
	buf := &bytes.Buffer{}
	l := NewWithOutput("info", FormatText, buf)
	l.Debug("hidden")
	l.Info("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}
