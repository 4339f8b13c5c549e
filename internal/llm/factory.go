package llm

import (
	"fmt"
	"log/slog"
	"strings"
)

// NewProvider creates a remote provider client from its configuration.
func NewProvider(cfg Config) (Client, error) {
	var (
		client Client
		err    error
	)

	switch strings.ToLower(cfg.Provider) {
	case "openai":
		client, err = newOpenAIClient(cfg)
	case "anthropic":
		client, err = newAnthropicClient(cfg)
	case "gemini":
		client, err = newGeminiClient(cfg)
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Provider)
	}

	if err != nil {
		return nil, err
	}
	return client, nil
}

// BuildChain creates the ordered fallback chain. Providers without a
// credential are skipped with a warning; each remote provider gets a circuit
// breaker. local, when non-nil, is appended as the last resort.
func BuildChain(configs []Config, local Client, breaker BreakerSettings, logger *slog.Logger) ([]Client, error) {
	if logger == nil {
		logger = slog.Default()
	}

	chain := make([]Client, 0, len(configs)+1)
	for _, cfg := range configs {
		if cfg.APIKey == "" {
			logger.Warn("skipping provider without credentials", "provider", cfg.Provider)
			continue
		}

		client, err := NewProvider(cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to create %s client: %w", cfg.Provider, err)
		}
		chain = append(chain, WithBreaker(client, breaker, logger))
	}

	if len(chain) == 0 {
		logger.Warn("no remote completion provider configured, answering from local rules only")
	}
	if local != nil {
		chain = append(chain, local)
	}
	if len(chain) == 0 {
		return nil, ErrNoProviders
	}
	return chain, nil
}
