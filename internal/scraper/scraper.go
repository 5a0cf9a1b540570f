// Package scraper fetches the readable text of an article through the ScrapingBee API.
package scraper

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"

	"github.com/jonathan/postsmith/internal/types"
)

const (
	// DefaultEndpoint is the ScrapingBee HTML API.
	DefaultEndpoint = "https://app.scrapingbee.com/api/v1/"
	// DefaultTimeout bounds a single article fetch.
	DefaultTimeout = 30 * time.Second
	// MaxResponseBytes limits how much of the response body is read.
	MaxResponseBytes = 4 << 20

	extractRules = `{"text":"body"}`
)

// textFields are the response fields checked for article text, in order.
var textFields = []string{"content", "text"}

// FetchError is a failed remote article fetch. The user may retry.
type FetchError struct {
	URL        string
	StatusCode int
	Message    string
	Cause      error
}

func (e *FetchError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *FetchError) Unwrap() error {
	return e.Cause
}

// Kind implements types.Classified.
func (e *FetchError) Kind() types.Kind {
	return types.KindFetch
}

// Options configures a Client.
type Options struct {
	Endpoint   string
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     zerolog.Logger
}

// Client calls the scraping service.
type Client struct {
	endpoint   string
	timeout    time.Duration
	httpClient *http.Client
	log        zerolog.Logger
}

// New creates a Client. Zero-valued options fall back to the defaults.
func New(opts Options) *Client {
	c := &Client{
		endpoint:   opts.Endpoint,
		timeout:    opts.Timeout,
		httpClient: opts.HTTPClient,
		log:        opts.Logger,
	}
	if c.endpoint == "" {
		c.endpoint = DefaultEndpoint
	}
	if c.timeout <= 0 {
		c.timeout = DefaultTimeout
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{}
	}
	return c
}

// FetchArticleText retrieves the article at articleURL and returns its cleaned body text.
// The first non-empty text field wins. An empty string is returned when no field has text.
func (c *Client) FetchArticleText(ctx context.Context, articleURL, apiKey string) (string, error) {
	articleURL = strings.TrimSpace(articleURL)
	apiKey = strings.TrimSpace(apiKey)
	if articleURL == "" {
		return "", types.NewPreconditionError("article_url", "enter an article URL for comment mode")
	}
	if apiKey == "" {
		return "", types.NewPreconditionError("scraper_api_key", "enter a ScrapingBee API key for comment mode")
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	endpoint, err := url.Parse(c.endpoint)
	if err != nil {
		return "", fmt.Errorf("invalid scraper endpoint %q: %w", c.endpoint, err)
	}
	q := endpoint.Query()
	q.Set("api_key", apiKey)
	q.Set("url", articleURL)
	q.Set("extract_rules", extractRules)
	endpoint.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return "", fmt.Errorf("failed to create scraper request: %w", err)
	}

	c.log.Debug().Str("url", articleURL).Msg("Extracting article content…")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		msg := "ScrapingBee request failed"
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			msg = "ScrapingBee request timed out"
		}
		return "", &FetchError{URL: articleURL, Message: msg, Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &FetchError{
			URL:        articleURL,
			StatusCode: resp.StatusCode,
			Message:    "ScrapingBee error: " + statusText(resp),
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseBytes))
	if err != nil {
		return "", &FetchError{URL: articleURL, StatusCode: resp.StatusCode, Message: "failed to read ScrapingBee response", Cause: err}
	}
	if !gjson.ValidBytes(body) {
		return "", &FetchError{URL: articleURL, StatusCode: resp.StatusCode, Message: "ScrapingBee returned malformed JSON"}
	}

	text := extractText(body)
	c.log.Debug().Str("url", articleURL).Int("chars", len([]rune(text))).Msg("article fetched")
	return text, nil
}

func extractText(body []byte) string {
	results := gjson.GetManyBytes(body, textFields...)
	for _, r := range results {
		if r.Type != gjson.String {
			continue
		}
		if text := CleanText(r.String()); text != "" {
			return text
		}
	}
	return ""
}

func statusText(resp *http.Response) string {
	if text := http.StatusText(resp.StatusCode); text != "" {
		return text
	}
	return resp.Status
}
