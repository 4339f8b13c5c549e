package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

const defaultOpenAIModel = "gpt-4o-mini"

// openAIClient implements Client on the OpenAI chat completions API.
type openAIClient struct {
	api *openai.Client
	cfg Config
}

// newOpenAIClient creates a new OpenAI API client.
func newOpenAIClient(cfg Config) (*openAIClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: OpenAI API key is required", ErrAuth)
	}
	cfg = cfg.withDefaults(defaultOpenAIModel, 500)

	apiCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		apiCfg.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")
	}
	apiCfg.HTTPClient = newHTTPClient(cfg.Timeout)

	return &openAIClient{
		api: openai.NewClientWithConfig(apiCfg),
		cfg: cfg,
	}, nil
}

func (c *openAIClient) ClientType() string { return "openai" }

// Complete sends the conversation to OpenAI.
func (c *openAIClient) Complete(ctx context.Context, req Request) (Result, error) {
	model, temperature, maxTokens := c.cfg.resolve(req)

	messages := make([]openai.ChatCompletionMessage, len(req.Messages))
	for i, m := range req.Messages {
		messages[i] = openai.ChatCompletionMessage{Role: string(m.Role), Content: m.Content}
	}

	start := time.Now()
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       model,
		Messages:    messages,
		Temperature: float32(temperature),
		MaxTokens:   maxTokens,
	})
	if err != nil {
		return Result{}, c.classify(ctx, err)
	}

	if len(resp.Choices) == 0 {
		return Result{}, malformed(c.ClientType(), "no completion choices returned")
	}
	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return Result{}, malformed(c.ClientType(), "empty completion")
	}

	resolved := resp.Model
	if resolved == "" {
		resolved = model
	}

	return Result{
		Completion: content,
		Model:      resolved,
		Provider:   c.ClientType(),
		Duration:   time.Since(start),
		Usage: &Usage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		},
	}, nil
}

// classify maps go-openai errors onto provider error kinds.
func (c *openAIClient) classify(ctx context.Context, err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode != 0 {
		return statusError(c.ClientType(), apiErr.HTTPStatusCode, apiErr.Message)
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode != 0 {
		return statusError(c.ClientType(), reqErr.HTTPStatusCode, fmt.Sprint(reqErr.Err))
	}

	return transportError(ctx, c.ClientType(), err)
}
