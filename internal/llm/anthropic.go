package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const (
	defaultAnthropicBaseURL = "https://api.anthropic.com"
	defaultAnthropicModel   = "claude-3-5-haiku-latest"
	anthropicVersion        = "2023-06-01"
)

// anthropicClient implements Client on the Anthropic messages API.
type anthropicClient struct {
	httpClient *http.Client
	baseURL    string
	cfg        Config
}

// newAnthropicClient creates a new Anthropic API client.
func newAnthropicClient(cfg Config) (*anthropicClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: anthropic API key is required", ErrAuth)
	}
	cfg = cfg.withDefaults(defaultAnthropicModel, 500)

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultAnthropicBaseURL
	}

	return &anthropicClient{
		httpClient: newHTTPClient(cfg.Timeout),
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		cfg:        cfg,
	}, nil
}

func (c *anthropicClient) ClientType() string { return "anthropic" }

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicRequest struct {
	Model       string             `json:"model"`
	System      string             `json:"system,omitempty"`
	Messages    []anthropicMessage `json:"messages"`
	MaxTokens   int                `json:"max_tokens"`
	Temperature float64            `json:"temperature"`
}

// anthropicResponse represents the Anthropic API response structure.
type anthropicResponse struct {
	ID         string `json:"id"`
	Model      string `json:"model"`
	StopReason string `json:"stop_reason"`
	Content    []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Usage struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

// Complete sends the conversation to Anthropic. System turns are moved into
// the dedicated system field.
func (c *anthropicClient) Complete(ctx context.Context, req Request) (Result, error) {
	model, temperature, maxTokens := c.cfg.resolve(req)
	system, turns := splitSystem(req.Messages)

	body := anthropicRequest{
		Model:       model,
		System:      system,
		MaxTokens:   maxTokens,
		Temperature: temperature,
		Messages:    make([]anthropicMessage, len(turns)),
	}
	for i, m := range turns {
		body.Messages[i] = anthropicMessage{Role: string(m.Role), Content: m.Content}
	}

	headers := map[string]string{
		"x-api-key":         c.cfg.APIKey,
		"anthropic-version": anthropicVersion,
	}

	start := time.Now()
	var response anthropicResponse
	if err := postJSON(ctx, c.httpClient, c.ClientType(), c.baseURL+"/v1/messages", headers, body, &response); err != nil {
		return Result{}, err
	}

	var text strings.Builder
	for _, block := range response.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	content := strings.TrimSpace(text.String())
	if content == "" {
		return Result{}, malformed(c.ClientType(), "no content in response")
	}

	resolved := response.Model
	if resolved == "" {
		resolved = model
	}

	return Result{
		Completion: content,
		Model:      resolved,
		Provider:   c.ClientType(),
		Duration:   time.Since(start),
		Usage: &Usage{
			PromptTokens:     response.Usage.InputTokens,
			CompletionTokens: response.Usage.OutputTokens,
			TotalTokens:      response.Usage.InputTokens + response.Usage.OutputTokens,
		},
	}, nil
}
