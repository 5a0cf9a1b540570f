package llm

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/postsmith/internal/types"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	assert.Equal(t, "gpt-4o", config.GetModel(ProviderOpenAI))
	assert.Equal(t, "gemini-2.5-flash", config.GetModel(ProviderGemini))
	assert.Equal(t, 300, config.GetMaxTokens(ProviderOpenAI))
	assert.Equal(t, 1024, config.GetMaxTokens(ProviderGemini))
	assert.Equal(t, 30*time.Second, config.GetTimeout())
	assert.InDelta(t, 0.75, config.GetTemperature(), 1e-9)
	assert.NoError(t, config.Validate())
}

func TestGetModel_FallsBackToDefault(t *testing.T) {
	config := &Config{Models: map[ProviderID]string{ProviderOpenAI: ""}}

	assert.Equal(t, "gpt-4o", config.GetModel(ProviderOpenAI))
	assert.Equal(t, DefaultTimeout, config.GetTimeout())
}

func TestWithModel(t *testing.T) {
	original := DefaultConfig()
	updated := original.WithModel(ProviderOpenAI, "gpt-4o-mini")

	assert.Equal(t, "gpt-4o", original.GetModel(ProviderOpenAI))
	assert.Equal(t, "gpt-4o-mini", updated.GetModel(ProviderOpenAI))
	assert.Equal(t, original.GetModel(ProviderGemini), updated.GetModel(ProviderGemini))
}

func TestValidate_TemperatureRange(t *testing.T) {
	config := DefaultConfig()
	config.Temperature = 0.9
	assert.Error(t, config.Validate())

	config.Temperature = 0.7
	assert.NoError(t, config.Validate())
}

func TestParseProvider(t *testing.T) {
	p, err := ParseProvider(" OpenAI ")
	require.NoError(t, err)
	assert.Equal(t, ProviderOpenAI, p)

	p, err = ParseProvider("gemini")
	require.NoError(t, err)
	assert.Equal(t, ProviderGemini, p)

	_, err = ParseProvider("claude")
	require.Error(t, err)
	var unsupported *UnsupportedProviderError
	assert.True(t, errors.As(err, &unsupported))
	assert.Equal(t, types.KindUnsupportedProvider, types.Classify(err))
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "OpenAI", ProviderOpenAI.DisplayName())
	assert.Equal(t, "Gemini", ProviderGemini.DisplayName())
}
