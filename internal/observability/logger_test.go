package observability

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func TestNewLogger_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewLogger(&buf, LogOptions{Level: "debug", Format: "json"})
	require.NoError(t, err)

	logger.Debug().Str("provider", "openai").Msg("calling provider")

	line := buf.Bytes()
	assert.Equal(t, "debug", gjson.GetBytes(line, "level").String())
	assert.Equal(t, "openai", gjson.GetBytes(line, "provider").String())
	assert.Equal(t, "calling provider", gjson.GetBytes(line, "message").String())
}

func TestNewLogger_LevelFilters(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewLogger(&buf, LogOptions{Level: "warn", Format: "json"})
	require.NoError(t, err)

	logger.Info().Msg("hidden")
	assert.Empty(t, buf.String())
	assert.Equal(t, zerolog.WarnLevel, logger.GetLevel())
}

func TestNewLogger_Console(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewLogger(&buf, LogOptions{})
	require.NoError(t, err)

	logger.Info().Msg("ready")
	assert.Contains(t, buf.String(), "ready")
}

func TestNewLogger_Invalid(t *testing.T) {
	_, err := NewLogger(&bytes.Buffer{}, LogOptions{Level: "loud"})
	assert.Error(t, err)

	_, err = NewLogger(&bytes.Buffer{}, LogOptions{Format: "xml"})
	assert.Error(t, err)
}
