package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// contentModel is the part of *genai.GenerativeModel used by GeminiClient.
type contentModel interface {
	GenerateContent(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

// GeminiClient implements Client for Google Gemini.
type GeminiClient struct {
	client *genai.Client
	model  contentModel
}

// apiKeyHeader carries the Gemini API key on every request.
const apiKeyHeader = "x-goog-api-key"

// apiKeyTransport sets the API key header instead of the key query parameter.
type apiKeyTransport struct {
	key  string
	base http.RoundTripper
}

func (t *apiKeyTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set(apiKeyHeader, t.key)
	return t.base.RoundTrip(req)
}

// NewGeminiClient creates a new Gemini client configured with the model, temperature
// and output cap from config. REST calls go through an HTTP client that sends the key
// as a header; the key option only reaches the unused gRPC cache client.
func NewGeminiClient(ctx context.Context, config *Config, apiKey string) (*GeminiClient, error) {
	httpClient := &http.Client{Transport: &apiKeyTransport{key: apiKey, base: http.DefaultTransport}}
	opts := []option.ClientOption{
		option.WithAPIKey(apiKey),
		option.WithHTTPClient(httpClient),
	}
	if config.GeminiEndpoint != "" {
		opts = append(opts, option.WithEndpoint(config.GeminiEndpoint))
	}

	client, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := client.GenerativeModel(config.GetModel(ProviderGemini))
	model.SetTemperature(float32(config.GetTemperature()))
	model.SetMaxOutputTokens(int32(config.GetMaxTokens(ProviderGemini)))

	return &GeminiClient{client: client, model: model}, nil
}

// GenerateContent sends prompt as a single text part and joins the text parts of the first candidate.
func (c *GeminiClient) GenerateContent(ctx context.Context, prompt string) (string, error) {
	resp, err := c.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", normalizeGeminiError(err)
	}
	return extractTextFromResponse(resp), nil
}

// Provider implements Client.
func (c *GeminiClient) Provider() ProviderID {
	return ProviderGemini
}

// Close releases resources held by the client.
func (c *GeminiClient) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

func normalizeGeminiError(err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		msg := apiErr.Message
		if msg == "" {
			msg = fmt.Sprintf("Gemini error: %d", apiErr.Code)
		}
		return &GenerationError{Provider: ProviderGemini, Status: apiErr.Code, Message: msg, Cause: err}
	}

	var blocked *genai.BlockedError
	if errors.As(err, &blocked) {
		return &GenerationError{Provider: ProviderGemini, Message: "Gemini blocked the request: " + blocked.Error(), Cause: err}
	}

	return fmt.Errorf("Gemini request failed: %w", err)
}

// extractTextFromResponse joins the text parts of the first candidate.
// A response without candidates or text yields "".
func extractTextFromResponse(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}

	candidate := resp.Candidates[0]
	if candidate == nil || candidate.Content == nil {
		return ""
	}

	var parts []string
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			parts = append(parts, string(text))
		}
	}
	return strings.Join(parts, "")
}
