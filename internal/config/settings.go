package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/Veraticus/bean-scene/internal/common"
	"github.com/Veraticus/bean-scene/internal/llm"
	"github.com/Veraticus/bean-scene/internal/ratelimit"
)

// DefaultDatabasePath is used when database.path is unset.
const DefaultDatabasePath = "~/.local/share/bean/bean.db"

// credentialEnv maps each provider to the environment variable that holds its key.
var credentialEnv = map[string]string{
	"openai":    "OPENAI_API_KEY",
	"anthropic": "ANTHROPIC_API_KEY",
	"gemini":    "GEMINI_API_KEY",
}

// Settings is the resolved application configuration.
type Settings struct {
	DatabasePath string
	ServerAddr   string
	CatalogWatch string
	LogLevel     string
	LogFormat    string
	Providers    []llm.Config
	Retry        common.RetryOptions
	Breaker      llm.BreakerSettings
	RateLimit    ratelimit.Config
	CacheTTL     time.Duration
	// ContextTokens bounds the grounding context injected into chat prompts.
	ContextTokens int
	// ProviderRateLimit caps requests per minute to each remote provider.
	ProviderRateLimit int
}

// SetDefaults registers default values for every key.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("database.path", DefaultDatabasePath)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	v.SetDefault("llm.providers", []string{"openai", "gemini", "anthropic"})
	v.SetDefault("llm.temperature", 0.7)
	v.SetDefault("llm.max_tokens", 500)
	v.SetDefault("llm.context_tokens", 1500)
	v.SetDefault("llm.timeout", 30*time.Second)
	v.SetDefault("llm.max_retries", 3)
	v.SetDefault("llm.retry_delay", time.Second)
	v.SetDefault("llm.max_retry_delay", 30*time.Second)
	v.SetDefault("llm.transient_delay", 500*time.Millisecond)
	v.SetDefault("llm.cache_ttl", time.Hour)
	v.SetDefault("llm.rate_limit", 60)
	v.SetDefault("llm.breaker.failures", 5)
	v.SetDefault("llm.breaker.open_timeout", 30*time.Second)

	v.SetDefault("ratelimit.window", time.Minute)
	v.SetDefault("ratelimit.max_requests", 20)

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("catalog.watch", "")
}

// Load reads Settings from v. Providers without a credential are kept with
// an empty key so the chain builder can report them.
func Load(v *viper.Viper) (*Settings, error) {
	s := &Settings{
		DatabasePath:      ExpandPath(v.GetString("database.path")),
		ServerAddr:        v.GetString("server.addr"),
		CatalogWatch:      ExpandPath(v.GetString("catalog.watch")),
		LogLevel:          v.GetString("logging.level"),
		LogFormat:         v.GetString("logging.format"),
		CacheTTL:          v.GetDuration("llm.cache_ttl"),
		ContextTokens:     v.GetInt("llm.context_tokens"),
		ProviderRateLimit: v.GetInt("llm.rate_limit"),
		Retry: common.RetryOptions{
			MaxAttempts:    v.GetInt("llm.max_retries"),
			InitialDelay:   v.GetDuration("llm.retry_delay"),
			MaxDelay:       v.GetDuration("llm.max_retry_delay"),
			TransientDelay: v.GetDuration("llm.transient_delay"),
		},
		Breaker: llm.BreakerSettings{
			ConsecutiveFailures: v.GetUint32("llm.breaker.failures"),
			OpenTimeout:         v.GetDuration("llm.breaker.open_timeout"),
		},
		RateLimit: ratelimit.Config{
			Window:      v.GetDuration("ratelimit.window"),
			MaxRequests: v.GetInt("ratelimit.max_requests"),
		},
	}

	if s.DatabasePath == "" {
		return nil, fmt.Errorf("%w: database.path", common.ErrMissingConfig)
	}
	if s.ContextTokens < 0 {
		return nil, fmt.Errorf("%w: llm.context_tokens must not be negative", common.ErrInvalidConfig)
	}
	if s.Retry.MaxAttempts < 1 {
		return nil, fmt.Errorf("%w: llm.max_retries must be at least 1", common.ErrInvalidConfig)
	}

	providers, err := loadProviders(v)
	if err != nil {
		return nil, err
	}
	s.Providers = providers
	return s, nil
}

func loadProviders(v *viper.Viper) ([]llm.Config, error) {
	names := providerNames(v.GetStringSlice("llm.providers"))
	configs := make([]llm.Config, 0, len(names))
	seen := make(map[string]bool, len(names))

	for _, name := range names {
		envVar, ok := credentialEnv[name]
		if !ok {
			return nil, fmt.Errorf("%w: unknown provider %q in llm.providers", common.ErrInvalidConfig, name)
		}
		if seen[name] {
			continue
		}
		seen[name] = true

		apiKey := v.GetString("llm." + name + ".api_key")
		if apiKey == "" {
			apiKey = os.Getenv(envVar)
		}

		configs = append(configs, llm.Config{
			Provider:    name,
			APIKey:      apiKey,
			Model:       v.GetString("llm." + name + ".model"),
			BaseURL:     v.GetString("llm." + name + ".base_url"),
			Timeout:     v.GetDuration("llm.timeout"),
			Temperature: v.GetFloat64("llm.temperature"),
			MaxTokens:   v.GetInt("llm.max_tokens"),
		})
	}
	return configs, nil
}

// providerNames accepts both YAML lists and comma separated env values.
func providerNames(raw []string) []string {
	var names []string
	for _, entry := range raw {
		for _, part := range strings.Split(entry, ",") {
			if name := strings.ToLower(strings.TrimSpace(part)); name != "" {
				names = append(names, name)
			}
		}
	}
	return names
}
