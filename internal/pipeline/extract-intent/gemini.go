package extractintent

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/genai"
)

// GeminiConfig configures the Gemini-backed Completer.
type GeminiConfig struct {
	APIKey     string
	Model      string
	BaseURL    string
	HTTPClient *http.Client
}

// GeminiCompleter calls the Gemini generateContent API.
type GeminiCompleter struct {
	client *genai.Client
	model  string
}

func NewGeminiCompleter(ctx context.Context, cfg GeminiConfig) (*GeminiCompleter, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	if cfg.Model == "" {
		cfg.Model = "gemini-2.5-flash"
	}

	clientConfig := &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: cfg.HTTPClient,
	}
	if cfg.BaseURL != "" {
		clientConfig.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	return &GeminiCompleter{client: client, model: cfg.Model}, nil
}

func (c *GeminiCompleter) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	temperature := req.Temperature
	thinkingBudget := int32(0)

	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(req.Prompt), &genai.GenerateContentConfig{
		Temperature:     &temperature,
		MaxOutputTokens: req.MaxOutputTokens,
		// Thinking tokens count against MaxOutputTokens and would starve the answer.
		ThinkingConfig: &genai.ThinkingConfig{ThinkingBudget: &thinkingBudget},
	})
	if err != nil {
		return "", classifyGeminiError(ctx, err)
	}

	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%w: empty completion", ErrUpstreamError)
	}
	return text, nil
}

// Name identifies the backend in health output and logs.
func (c *GeminiCompleter) Name() string {
	return "gemini:" + c.model
}

func classifyGeminiError(ctx context.Context, err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("%w: status %d: %s", ErrUpstreamError, apiErr.Code, apiErr.Message)
	}
	if ctx.Err() != nil {
		return fmt.Errorf("%w: %v", ErrUpstreamUnavailable, ctx.Err())
	}
	return fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
}

// DisabledCompleter stands in when no API key is configured; every request
// then degrades to the neutral intent.
type DisabledCompleter struct{}

func (DisabledCompleter) Complete(context.Context, CompletionRequest) (string, error) {
	return "", fmt.Errorf("%w: language service not configured", ErrUpstreamUnavailable)
}
