package llm

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/tidwall/gjson"
)

// maxErrorBody limits how much of an error response is inspected.
const maxErrorBody = 64 << 10

// OpenAIClient implements Client for the OpenAI chat completions API.
type OpenAIClient struct {
	client openai.Client
	config *Config
}

// NewOpenAIClient creates a new OpenAI client. SDK retries are disabled so every
// GenerateContent call makes exactly one request.
func NewOpenAIClient(config *Config, apiKey string) *OpenAIClient {
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if config.OpenAIBaseURL != "" {
		opts = append(opts, option.WithBaseURL(config.OpenAIBaseURL))
	}

	return &OpenAIClient{
		client: openai.NewClient(opts...),
		config: config,
	}
}

// GenerateContent sends prompt as a single user message and returns the first choice.
func (c *OpenAIClient) GenerateContent(ctx context.Context, prompt string) (string, error) {
	capture := &errorCapture{}

	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.config.GetModel(ProviderOpenAI)),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		MaxTokens:   openai.Int(int64(c.config.GetMaxTokens(ProviderOpenAI))),
		Temperature: openai.Float(c.config.GetTemperature()),
	}, option.WithMiddleware(capture.middleware))
	if err != nil {
		if capture.status != 0 {
			msg := capture.message
			if msg == "" {
				msg = fmt.Sprintf("OpenAI error: %d", capture.status)
			}
			return "", &GenerationError{Provider: ProviderOpenAI, Status: capture.status, Message: msg, Cause: err}
		}
		return "", fmt.Errorf("OpenAI request failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}

// Provider implements Client.
func (c *OpenAIClient) Provider() ProviderID {
	return ProviderOpenAI
}

// Close implements Client. The HTTP client holds no resources of its own.
func (c *OpenAIClient) Close() error {
	return nil
}

// errorCapture records the status and error.message of a non-2xx response
// before the SDK turns it into a generic error.
type errorCapture struct {
	status  int
	message string
}

func (e *errorCapture) middleware(req *http.Request, next option.MiddlewareNext) (*http.Response, error) {
	resp, err := next(req)
	if err != nil || resp == nil {
		return resp, err
	}
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, nil
	}

	e.status = resp.StatusCode
	body, readErr := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	_ = resp.Body.Close()
	resp.Body = io.NopCloser(bytes.NewReader(body))
	if readErr == nil {
		e.message = gjson.GetBytes(body, "error.message").String()
	}
	return resp, nil
}
