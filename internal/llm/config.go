// Package llm provides a provider-agnostic gateway to the text generation services.
// Each provider is one Client variant selected by a ProviderID.
package llm

import (
	"fmt"
	"strings"
	"time"
)

// ProviderID identifies a generation provider.
type ProviderID string

const (
	// ProviderOpenAI is the OpenAI chat completions API.
	ProviderOpenAI ProviderID = "openai"
	// ProviderGemini is the Google Gemini API.
	ProviderGemini ProviderID = "gemini"
)

// Providers lists the supported providers in display order.
var Providers = []ProviderID{ProviderOpenAI, ProviderGemini}

// ParseProvider parses a provider identifier.
func ParseProvider(s string) (ProviderID, error) {
	switch p := ProviderID(strings.ToLower(strings.TrimSpace(s))); p {
	case ProviderOpenAI, ProviderGemini:
		return p, nil
	default:
		return "", &UnsupportedProviderError{Provider: s}
	}
}

// DisplayName returns the name used in user-facing messages.
func (p ProviderID) DisplayName() string {
	switch p {
	case ProviderOpenAI:
		return "OpenAI"
	case ProviderGemini:
		return "Gemini"
	default:
		return string(p)
	}
}

const (
	// DefaultTimeout is the single deadline applied to one provider call.
	DefaultTimeout = 30 * time.Second
	// DefaultTemperature is the sampling temperature sent to every provider.
	DefaultTemperature = 0.75
	// MinTemperature and MaxTemperature bound the configurable temperature.
	MinTemperature = 0.7
	MaxTemperature = 0.85
)

// Config holds the generation settings shared by all providers.
type Config struct {
	Models      map[ProviderID]string
	MaxTokens   map[ProviderID]int
	Temperature float64
	Timeout     time.Duration

	// OpenAIBaseURL overrides the OpenAI API base URL (proxies, tests).
	OpenAIBaseURL string
	// GeminiEndpoint overrides the Gemini API endpoint.
	GeminiEndpoint string
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Models: map[ProviderID]string{
			ProviderOpenAI: "gpt-4o",
			ProviderGemini: "gemini-2.5-flash",
		},
		MaxTokens: map[ProviderID]int{
			ProviderOpenAI: 300,
			ProviderGemini: 1024,
		},
		Temperature: DefaultTemperature,
		Timeout:     DefaultTimeout,
	}
}

// GetModel returns the model name for a provider, falling back to the default model.
func (c *Config) GetModel(p ProviderID) string {
	if model, ok := c.Models[p]; ok && model != "" {
		return model
	}
	return DefaultConfig().Models[p]
}

// GetMaxTokens returns the output token cap for a provider, falling back to the default cap.
func (c *Config) GetMaxTokens(p ProviderID) int {
	if n, ok := c.MaxTokens[p]; ok && n > 0 {
		return n
	}
	return DefaultConfig().MaxTokens[p]
}

// GetTimeout returns the configured timeout or DefaultTimeout.
func (c *Config) GetTimeout() time.Duration {
	if c.Timeout > 0 {
		return c.Timeout
	}
	return DefaultTimeout
}

// GetTemperature returns the configured temperature or DefaultTemperature.
func (c *Config) GetTemperature() float64 {
	if c.Temperature > 0 {
		return c.Temperature
	}
	return DefaultTemperature
}

// WithModel returns a new Config with a specific model for a provider.
func (c *Config) WithModel(p ProviderID, model string) *Config {
	next := *c
	next.Models = make(map[ProviderID]string, len(c.Models)+1)
	for k, v := range c.Models {
		next.Models[k] = v
	}
	next.Models[p] = model
	return &next
}

// Validate checks that the configured temperature is within range.
func (c *Config) Validate() error {
	if t := c.GetTemperature(); t < MinTemperature || t > MaxTemperature {
		return fmt.Errorf("temperature %.2f out of range [%.2f, %.2f]", t, MinTemperature, MaxTemperature)
	}
	return nil
}
