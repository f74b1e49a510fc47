package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit_WritesJSONAtLevel(t *testing.T) {
	t.Cleanup(Reset)
	var buf bytes.Buffer

	log := Init(Options{Level: "warn", Output: &buf})
	log.Info().Msg("hidden")
	log.Warn().Str("k", "v").Msg("shown")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `"message":"shown"`)
	assert.Contains(t, out, `"k":"v"`)
}

func TestInit_Once(t *testing.T) {
	t.Cleanup(Reset)
	var first, second bytes.Buffer

	Init(Options{Output: &first})
	log := Init(Options{Output: &second})
	log.Info().Msg("hello")

	assert.Contains(t, first.String(), "hello")
	assert.Empty(t, second.String())
}

func TestInit_ErrorFileReceivesErrorsOnly(t *testing.T) {
	t.Cleanup(Reset)
	dir := t.TempDir()
	appLog := filepath.Join(dir, "app.log")
	errLog := filepath.Join(dir, "error.log")

	log := Init(Options{Level: "debug", Output: &bytes.Buffer{}, File: appLog, ErrorFile: errLog})
	log.Info().Msg("routine")
	log.Error().Msg("broken")
	require.NoError(t, Close())

	all, err := os.ReadFile(appLog)
	require.NoError(t, err)
	assert.Contains(t, string(all), "routine")
	assert.Contains(t, string(all), "broken")

	errs, err := os.ReadFile(errLog)
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(string(errs), "\n"))
	assert.Contains(t, string(errs), "broken")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.TraceLevel, parseLevel("TRACE"))
	assert.Equal(t, zerolog.WarnLevel, parseLevel(" warning "))
	assert.Equal(t, zerolog.InfoLevel, parseLevel("bogus"))
}
