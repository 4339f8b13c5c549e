package llm

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	defaultGeminiBaseURL = "https://generativelanguage.googleapis.com"
	defaultGeminiModel   = "gemini-1.5-flash"
)

// geminiClient implements Client on the Gemini generateContent API.
type geminiClient struct {
	httpClient *http.Client
	baseURL    string
	cfg        Config
}

// newGeminiClient creates a new Gemini API client.
func newGeminiClient(cfg Config) (*geminiClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: gemini API key is required", ErrAuth)
	}
	cfg = cfg.withDefaults(defaultGeminiModel, 500)

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultGeminiBaseURL
	}

	return &geminiClient{
		httpClient: newHTTPClient(cfg.Timeout),
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		cfg:        cfg,
	}, nil
}

func (c *geminiClient) ClientType() string { return "gemini" }

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	SystemInstruction *geminiContent  `json:"systemInstruction,omitempty"`
	Contents          []geminiContent `json:"contents"`
	GenerationConfig  struct {
		Temperature     float64 `json:"temperature"`
		MaxOutputTokens int     `json:"maxOutputTokens"`
	} `json:"generationConfig"`
}

type geminiResponse struct {
	ModelVersion string `json:"modelVersion"`
	Candidates   []struct {
		Content      geminiContent `json:"content"`
		FinishReason string        `json:"finishReason"`
	} `json:"candidates"`
	UsageMetadata struct {
		PromptTokenCount     int `json:"promptTokenCount"`
		CandidatesTokenCount int `json:"candidatesTokenCount"`
		TotalTokenCount      int `json:"totalTokenCount"`
	} `json:"usageMetadata"`
}

// Complete sends the conversation to Gemini. Assistant turns use Gemini's
// "model" role.
func (c *geminiClient) Complete(ctx context.Context, req Request) (Result, error) {
	model, temperature, maxTokens := c.cfg.resolve(req)
	system, turns := splitSystem(req.Messages)

	var body geminiRequest
	if system != "" {
		body.SystemInstruction = &geminiContent{Parts: []geminiPart{{Text: system}}}
	}
	body.GenerationConfig.Temperature = temperature
	body.GenerationConfig.MaxOutputTokens = maxTokens
	for _, m := range turns {
		role := "user"
		if m.Role == RoleAssistant {
			role = "model"
		}
		body.Contents = append(body.Contents, geminiContent{Role: role, Parts: []geminiPart{{Text: m.Content}}})
	}

	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent", c.baseURL, url.PathEscape(model))
	headers := map[string]string{"x-goog-api-key": c.cfg.APIKey}

	start := time.Now()
	var response geminiResponse
	if err := postJSON(ctx, c.httpClient, c.ClientType(), endpoint, headers, body, &response); err != nil {
		return Result{}, err
	}

	if len(response.Candidates) == 0 {
		return Result{}, malformed(c.ClientType(), "no candidates in response")
	}
	var text strings.Builder
	for _, part := range response.Candidates[0].Content.Parts {
		text.WriteString(part.Text)
	}
	content := strings.TrimSpace(text.String())
	if content == "" {
		return Result{}, malformed(c.ClientType(), "empty candidate (finish reason %q)", response.Candidates[0].FinishReason)
	}

	resolved := response.ModelVersion
	if resolved == "" {
		resolved = model
	}

	return Result{
		Completion: content,
		Model:      resolved,
		Provider:   c.ClientType(),
		Duration:   time.Since(start),
		Usage: &Usage{
			PromptTokens:     response.UsageMetadata.PromptTokenCount,
			CompletionTokens: response.UsageMetadata.CandidatesTokenCount,
			TotalTokens:      response.UsageMetadata.TotalTokenCount,
		},
	}, nil
}
