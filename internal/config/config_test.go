package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/postsmith/internal/llm"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_ValidYAML(t *testing.T) {
	path := writeConfig(t, `
provider: openai
llm:
  timeout: 25s
  temperature: 0.8
  models:
    openai: gpt-4o-mini
page:
  use_browser: true
  profession_locators:
    - ".custom-headline"
defaults:
  tone: Direct
  length: short
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "openai", cfg.Provider)
	assert.Equal(t, 25*time.Second, cfg.LLM.Timeout)
	assert.InDelta(t, 0.8, cfg.LLM.Temperature, 1e-9)
	assert.Equal(t, "gpt-4o-mini", cfg.LLM.Models.OpenAI)
	assert.Equal(t, "gemini-2.5-flash", cfg.LLM.Models.Gemini)
	assert.Equal(t, 300, cfg.LLM.MaxTokens.OpenAI)
	assert.True(t, cfg.Page.UseBrowser)
	assert.Equal(t, []string{".custom-headline"}, cfg.Page.ProfessionLocators)
	assert.Equal(t, "linkedin.com", cfg.Page.RequiredHost)
	assert.Equal(t, "Direct", cfg.Defaults.Tone)
	assert.Equal(t, "short", cfg.Defaults.Length)
}

func TestLoad_EnvOverrides(t *testing.T) {
	path := writeConfig(t, "provider: openai\n")
	t.Setenv("POSTSMITH_PROVIDER", "gemini")
	t.Setenv("POSTSMITH_SERVER_PORT", "9090")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "gemini", cfg.Provider)
	assert.Equal(t, 9090, cfg.Server.Port)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "provider: [unclosed\n")

	cfg, err := Load(path)
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoad_FileNotFound(t *testing.T) {
	cfg, err := Load("/nonexistent/path/config.yaml")
	assert.Error(t, err)
	assert.Nil(t, cfg)
}

func TestLoad_RejectsOutOfRangeTemperature(t *testing.T) {
	path := writeConfig(t, "llm:\n  temperature: 1.2\n")

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Temperature")
}

func TestValidate_UnknownProvider(t *testing.T) {
	cfg := Default()
	cfg.Provider = "mistral"

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Provider")
}

func TestValidate_Default(t *testing.T) {
	cfg := Default()
	assert.NoError(t, cfg.Validate())
}

func TestMergeWithDefaults(t *testing.T) {
	cfg := Config{Provider: "openai"}
	merged := cfg.MergeWithDefaults(Default())

	assert.Equal(t, "openai", merged.Provider)
	assert.Equal(t, llm.DefaultTimeout, merged.LLM.Timeout)
	assert.Equal(t, "Professional", merged.Defaults.Tone)
	assert.Equal(t, 8080, merged.Server.Port)
	assert.Empty(t, cfg.Defaults.Tone)
}

func TestLLMConfig(t *testing.T) {
	cfg := Default()
	cfg.LLM.Models.OpenAI = "gpt-4.1"

	lc := cfg.LLMConfig()
	assert.Equal(t, "gpt-4.1", lc.GetModel(llm.ProviderOpenAI))
	assert.Equal(t, 1024, lc.GetMaxTokens(llm.ProviderGemini))
	assert.NoError(t, lc.Validate())
}

func TestFetchAndScraperOptions(t *testing.T) {
	cfg := Default()
	cfg.Page.UseBrowser = true

	fo := cfg.FetchOptions(zerolog.Nop())
	assert.True(t, fo.UseBrowser)
	assert.Equal(t, "linkedin.com", fo.RequiredHost)

	so := cfg.ScraperOptions(zerolog.Nop())
	assert.Equal(t, "https://app.scrapingbee.com/api/v1/", so.Endpoint)
}
