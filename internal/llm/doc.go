// Package llm provides the chat completion pipeline. It supports multiple
// providers (OpenAI, Anthropic, Gemini and an offline rule table) behind one
// Client interface, and composes them with caching, in-flight deduplication,
// grounding context injection, retry, circuit breaking and fallback.
package llm
