package llm

import (
	"context"
	"strings"
	"time"
)

// Role identifies the author of a chat message.
type Role string

// Chat roles.
const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one turn of a conversation.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Request is a completion request. Zero values select provider defaults.
type Request struct {
	Model string
	// PromptID distinguishes otherwise identical conversations in the cache.
	PromptID string
	Messages []Message
	// Temperature of 0 uses the provider's configured temperature.
	Temperature float64
	MaxTokens   int
	// ContextTokens bounds the injected grounding context; 0 disables injection.
	ContextTokens int
}

// Usage reports token counts when the provider returns them.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Result is a successful completion. Completion is never empty.
type Result struct {
	Usage      *Usage
	Completion string
	// Model is the model that actually answered, which differs from the
	// requested model after a fallback.
	Model    string
	Provider string
	Duration time.Duration
	Cached   bool
}

// Client is implemented by every completion provider and by the Resilient
// decorator.
type Client interface {
	Complete(ctx context.Context, req Request) (Result, error)
	ClientType() string
}

// Config holds configuration for a single provider.
type Config struct {
	Provider    string
	APIKey      string
	Model       string
	BaseURL     string
	Timeout     time.Duration
	Temperature float64
	MaxTokens   int
}

// LastUserMessage returns the content of the most recent user turn.
func LastUserMessage(messages []Message) (string, bool) {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == RoleUser && strings.TrimSpace(messages[i].Content) != "" {
			return messages[i].Content, true
		}
	}
	return "", false
}

// splitSystem separates system turns from the conversation, as providers
// with a dedicated system field expect.
func splitSystem(messages []Message) (string, []Message) {
	var system []string
	rest := make([]Message, 0, len(messages))
	for _, m := range messages {
		if m.Role == RoleSystem {
			system = append(system, m.Content)
			continue
		}
		rest = append(rest, m)
	}
	return strings.Join(system, "\n\n"), rest
}

func (c Config) withDefaults(model string, maxTokens int) Config {
	if c.Model == "" {
		c.Model = model
	}
	if c.Temperature == 0 {
		c.Temperature = 0.3
	}
	if c.MaxTokens == 0 {
		c.MaxTokens = maxTokens
	}
	if c.Timeout == 0 {
		c.Timeout = 30 * time.Second
	}
	return c
}

func (c Config) resolve(req Request) (model string, temperature float64, maxTokens int) {
	model, temperature, maxTokens = c.Model, c.Temperature, c.MaxTokens
	if req.Model != "" {
		model = req.Model
	}
	if req.Temperature != 0 {
		temperature = req.Temperature
	}
	if req.MaxTokens != 0 {
		maxTokens = req.MaxTokens
	}
	return model, temperature, maxTokens
}
