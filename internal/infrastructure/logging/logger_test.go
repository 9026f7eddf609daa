package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eshaffer321/statement-reconciler/internal/infrastructure/config"
)

func TestMavenHandler_Format(t *testing.T) {
	// Arrange
	var buf bytes.Buffer
	logger := slog.New(NewMavenHandler(&buf, nil)).With("system", "reconcile")

	// Act
	logger.Info("run finished", "matched", 12, "difference", decimal.RequireFromString("-150.5"), "bank", "Banco de Chile")

	// Assert
	line := buf.String()
	assert.Regexp(t, regexp.MustCompile(`^\[INFO\] \[reconcile\] \[\d{2}:\d{2}:\d{2}\] run finished`), line)
	assert.Contains(t, line, " matched=12")
	assert.Contains(t, line, " difference=-150.5")
	assert.Contains(t, line, ` bank="Banco de Chile"`)
	assert.NotContains(t, line, "system=")
	assert.True(t, strings.HasSuffix(line, "\n"))
}

func TestMavenHandler_Groups(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewMavenHandler(&buf, nil))

	logger.WithGroup("run").With("id", "r-1").Info("scored", "pairs", 40, slog.Group("summary", "status", "good"))

	line := buf.String()
	assert.Contains(t, line, " run.id=r-1")
	assert.Contains(t, line, " run.pairs=40")
	assert.Contains(t, line, " run.summary.status=good")
}

func TestMavenHandler_Level(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewMavenHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn}))

	logger.Info("hidden")
	logger.Warn("shown", "error", errors.New("database locked"), "took", 1500*time.Millisecond)

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "[WARN]")
	assert.Contains(t, out, `error="database locked"`)
	assert.Contains(t, out, "took=1.5s")
}

func TestNewLoggerTo_Formats(t *testing.T) {
	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLoggerTo(&buf, config.LoggingConfig{Level: "debug", Format: "json"})

		logger.Debug("candidates found", "pairs", 3)

		var entry map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
		assert.Equal(t, "candidates found", entry["msg"])
		assert.Equal(t, float64(3), entry["pairs"])
	})

	t.Run("text", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLoggerTo(&buf, config.LoggingConfig{Format: "text"})

		logger.Info("hello")

		assert.Contains(t, buf.String(), "msg=hello")
	})

	t.Run("maven by default", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLoggerTo(&buf, config.LoggingConfig{})

		logger.Debug("hidden at info")
		logger.Info("hello")

		assert.True(t, strings.HasPrefix(buf.String(), "[INFO]"))
	})
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}
