package providers

import (
	"context"
	"os"
)

// TestConfig holds provider configurations loaded from environment variables.
// Live provider tests skip when the matching key is absent.
type TestConfig struct {
	GeminiAPIKey     string
	OpenRouterAPIKey string
	OpenAIAPIKey     string
}

// LoadTestConfig loads provider API keys from environment variables.
func LoadTestConfig() TestConfig {
	return TestConfig{
		GeminiAPIKey:     os.Getenv("GEMINI_API_KEY"),
		OpenRouterAPIKey: os.Getenv("OPENROUTER_API_KEY"),
		OpenAIAPIKey:     os.Getenv("OPENAI_API_KEY"),
	}
}

// HasGemini returns true if a Gemini API key is configured.
func (c TestConfig) HasGemini() bool {
	return c.GeminiAPIKey != ""
}

// HasOpenRouter returns true if an OpenRouter API key is configured.
func (c TestConfig) HasOpenRouter() bool {
	return c.OpenRouterAPIKey != ""
}

// HasOpenAI returns true if an OpenAI API key is configured.
func (c TestConfig) HasOpenAI() bool {
	return c.OpenAIAPIKey != ""
}

// HasAnyLLM returns true if any LLM provider is configured.
func (c TestConfig) HasAnyLLM() bool {
	return c.HasGemini() || c.HasOpenRouter() || c.HasOpenAI()
}

// NewGeminiClient creates a Gemini client from test config.
// Returns nil if not configured.
func (c TestConfig) NewGeminiClient(ctx context.Context) *GeminiClient {
	if !c.HasGemini() {
		return nil
	}
	client, err := NewGeminiClient(ctx, GeminiConfig{APIKey: c.GeminiAPIKey})
	if err != nil {
		return nil
	}
	return client
}

// NewOpenRouterClient creates an OpenRouter client from test config.
// Returns nil if not configured.
func (c TestConfig) NewOpenRouterClient() *OpenRouterClient {
	if !c.HasOpenRouter() {
		return nil
	}
	return NewOpenRouterClient(OpenRouterConfig{
		APIKey: c.OpenRouterAPIKey,
	})
}

// ToRegistryConfig converts test config to a RegistryConfig for the provider registry.
// Only includes providers that have API keys configured.
func (c TestConfig) ToRegistryConfig() RegistryConfig {
	cfg := RegistryConfig{
		LLMProviders: make(map[string]LLMProviderConfig),
	}

	if c.HasGemini() {
		cfg.LLMProviders[GeminiName] = LLMProviderConfig{
			Type:      GeminiName,
			APIKey:    c.GeminiAPIKey,
			RateLimit: 5,
			Enabled:   true,
		}
	}
	if c.HasOpenRouter() {
		cfg.LLMProviders[OpenRouterName] = LLMProviderConfig{
			Type:      OpenRouterName,
			APIKey:    c.OpenRouterAPIKey,
			RateLimit: 10,
			Enabled:   true,
		}
	}
	if c.HasOpenAI() {
		cfg.LLMProviders[OpenAIName] = LLMProviderConfig{
			Type:      OpenAIName,
			APIKey:    c.OpenAIAPIKey,
			RateLimit: 8,
			Enabled:   true,
		}
	}

	return cfg
}
