package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/jonathan/postsmith/internal/types"
)

// Gateway dispatches a prompt to the provider named by a credential.
// It applies one deadline per call and never retries.
type Gateway struct {
	config    *Config
	newClient ClientFactory
	log       zerolog.Logger
}

// NewGateway creates a Gateway. A nil config uses DefaultConfig.
func NewGateway(config *Config, logger zerolog.Logger) *Gateway {
	if config == nil {
		config = DefaultConfig()
	}
	return &Gateway{config: config, newClient: NewClient, log: logger}
}

// WithClientFactory replaces the function used to build provider clients.
func (g *Gateway) WithClientFactory(f ClientFactory) *Gateway {
	g.newClient = f
	return g
}

// Generate sends prompt to cred.Provider and returns the trimmed generated text.
// A missing key fails before any network call. Timeouts, provider errors and empty
// responses are reported as *GenerationError.
func (g *Gateway) Generate(ctx context.Context, cred Credential, prompt string) (string, error) {
	provider, err := ParseProvider(string(cred.Provider))
	if err != nil {
		return "", err
	}
	cred.Provider = provider
	if strings.TrimSpace(cred.APIKey) == "" {
		return "", types.NewPreconditionError("api_key", "enter API key for the chosen provider")
	}

	timeout := g.config.GetTimeout()
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := g.newClient(ctx, g.config, cred)
	if err != nil {
		return "", err
	}
	defer func() { _ = client.Close() }()

	start := time.Now()
	g.log.Debug().Str("provider", string(provider)).Int("prompt_chars", len(prompt)).Msg("calling provider")

	text, err := client.GenerateContent(ctx, prompt)
	if err != nil {
		return "", g.normalize(ctx, provider, timeout, err)
	}

	text = CleanOutput(text)
	if text == "" {
		return "", &GenerationError{Provider: provider, Empty: true, Message: provider.DisplayName() + " returned empty text"}
	}

	g.log.Debug().Str("provider", string(provider)).Dur("elapsed", time.Since(start)).Msg("provider responded")
	return text, nil
}

func (g *Gateway) normalize(ctx context.Context, provider ProviderID, timeout time.Duration, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return &GenerationError{
			Provider: provider,
			Timeout:  true,
			Message:  fmt.Sprintf("%s request timed out after %s", provider.DisplayName(), timeout),
			Cause:    err,
		}
	}
	if errors.Is(ctx.Err(), context.Canceled) {
		return &GenerationError{Provider: provider, Message: provider.DisplayName() + " request was cancelled", Cause: err}
	}

	var genErr *GenerationError
	if errors.As(err, &genErr) {
		return genErr
	}
	return &GenerationError{Provider: provider, Message: err.Error(), Cause: err}
}
