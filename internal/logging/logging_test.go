package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetup_JSONWithFile(t *testing.T) {
	var buf bytes.Buffer
	path := filepath.Join(t.TempDir(), "logs", "autoport.log")

	log, closer := Setup(Options{Format: "json", Level: "debug", File: path, Out: &buf})
	l := Component(log, "scheduler")
	l.Debug().Str("trigger", "daily").Msg("scheduled")
	require.NoError(t, closer.Close())

	assert.Contains(t, buf.String(), `"component":"scheduler"`)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"trigger":"daily"`)
}

func TestSetup_LevelFilters(t *testing.T) {
	var buf bytes.Buffer
	log, closer := Setup(Options{Format: "json", Level: "warn", Out: &buf})
	defer closer.Close()

	log.Info().Msg("hidden")
	log.Warn().Msg("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestSetup_UnknownLevelIsInfo(t *testing.T) {
	var buf bytes.Buffer
	log, _ := Setup(Options{Format: "text", Level: "chatty", Out: &buf})
	log.Debug().Msg("hidden")
	log.Info().Msg("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}
