package llm

import (
	"context"
	"strings"

	"github.com/jonathan/postsmith/internal/types"
)

// Client is one provider variant behind the gateway.
type Client interface {
	// GenerateContent sends prompt to the provider and returns the raw generated text.
	GenerateContent(ctx context.Context, prompt string) (string, error)
	// Provider returns the provider this client talks to.
	Provider() ProviderID
	// Close releases any resources held by the client.
	Close() error
}

// Credential is a user-supplied API key for one provider. It is never persisted by this package.
type Credential struct {
	Provider ProviderID
	APIKey   string
}

// ClientFactory creates a Client for a credential.
type ClientFactory func(ctx context.Context, config *Config, cred Credential) (Client, error)

// NewClient creates the client variant matching cred.Provider.
func NewClient(ctx context.Context, config *Config, cred Credential) (Client, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if strings.TrimSpace(cred.APIKey) == "" {
		return nil, types.NewPreconditionError("api_key", "enter API key for the chosen provider")
	}

	switch cred.Provider {
	case ProviderOpenAI:
		return NewOpenAIClient(config, cred.APIKey), nil
	case ProviderGemini:
		return NewGeminiClient(ctx, config, cred.APIKey)
	default:
		return nil, &UnsupportedProviderError{Provider: string(cred.Provider)}
	}
}
