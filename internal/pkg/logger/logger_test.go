package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithWriterJSON(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, "debug", false)
	log.Debug().Str("charity", "ASPCA").Msg("verified")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "debug", line["level"])
	assert.Equal(t, "charity", line["service"])
	assert.Equal(t, "ASPCA", line["charity"])
	assert.Equal(t, "verified", line["message"])
}

func TestNewWithWriterLevelFilter(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, "warn", false)
	log.Info().Msg("dropped")
	assert.Zero(t, buf.Len())

	log.Warn().Msg("kept")
	assert.Contains(t, buf.String(), "kept")
}

func TestNewWithWriterUnknownLevel(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, "loud", false)
	log.Debug().Msg("dropped")
	log.Info().Msg("kept")
	assert.NotContains(t, buf.String(), "dropped")
	assert.Contains(t, buf.String(), "kept")
}
