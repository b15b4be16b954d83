package logger_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/obraunsdorf/cargo-downgrade/internal/adapters/logger"
	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/zerr"
)

// newTestLogger returns a logger writing uncolored output to a buffer.
func newTestLogger(t *testing.T) (*logger.Logger, *bytes.Buffer) {
	t.Helper()
	t.Setenv("NO_COLOR", "1")

	buf := &bytes.Buffer{}
	lg := logger.New().(*logger.Logger)
	lg.SetOutput(buf)
	return lg, buf
}

func TestLogger_Golden(t *testing.T) {
	tests := []struct {
		name       string
		log        func(lg *logger.Logger)
		goldenName string
	}{
		{
			name:       "info",
			log:        func(lg *logger.Logger) { lg.Info("fetching versions of crate serde") },
			goldenName: "info_basic",
		},
		{
			name:       "warn",
			log:        func(lg *logger.Logger) { lg.Warn("dependency tree is deeper than 255 levels") },
			goldenName: "warn_basic",
		},
		{
			name:       "plain error",
			log:        func(lg *logger.Logger) { lg.Error(errors.New("interrupted")) },
			goldenName: "error_plain",
		},
		{
			name: "error with metadata",
			log: func(lg *logger.Logger) {
				err := zerr.With(zerr.New("no version of crate found before date"), "crate", "serde")
				lg.Error(zerr.With(err, "oldest_unyanked", "1.0.0 (2017-04-20)"))
			},
			goldenName: "error_metadata",
		},
		{
			name: "error chain",
			log: func(lg *logger.Logger) {
				err := zerr.Wrap(errors.New("connection refused"), "failed to fetch from crates.io")
				lg.Error(zerr.With(err, "crate", "serde"))
			},
			goldenName: "error_chain",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lg, buf := newTestLogger(t)
			tt.log(lg)

			g := goldie.New(t)
			g.Assert(t, tt.goldenName, buf.Bytes())
		})
	}
}

func TestLogger_ErrorNil(t *testing.T) {
	lg, buf := newTestLogger(t)
	lg.Error(nil)
	assert.Empty(t, buf.String())
}

func TestLogger_JSON(t *testing.T) {
	lg, buf := newTestLogger(t)
	lg.SetJSON(true)

	lg.Info("fetching versions of crate serde")

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "fetching versions of crate serde", record[slog.MessageKey])
	assert.Equal(t, "INFO", record[slog.LevelKey])
}

func TestLogger_JSONError(t *testing.T) {
	lg, buf := newTestLogger(t)
	lg.SetJSON(true)

	lg.Error(zerr.With(zerr.New("crate not found on crates.io"), "crate", "ghost"))

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "ERROR", record[slog.LevelKey])
	assert.Contains(t, buf.String(), `"crate":"ghost"`)
}

func TestLogger_SetOutputKeepsMode(t *testing.T) {
	lg, _ := newTestLogger(t)
	lg.SetJSON(true)

	var buf bytes.Buffer
	lg.SetOutput(&buf)
	lg.Warn("careful")

	assert.True(t, json.Valid(buf.Bytes()), buf.String())
}
