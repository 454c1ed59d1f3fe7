package config

import (
	"strings"
	"time"
)

// Config holds rxscan configuration.
// Stored at: ~/.rxscan/config.yaml or ./config.yaml
type Config struct {
	LLMProviders map[string]LLMProviderCfg `mapstructure:"llm_providers" yaml:"llm_providers" json:"llm_providers"`
	Defaults     DefaultsCfg               `mapstructure:"defaults" yaml:"defaults" json:"defaults"`
	Pipeline     PipelineCfg               `mapstructure:"pipeline" yaml:"pipeline" json:"pipeline"`
}

// LLMProviderCfg configures an LLM provider.
type LLMProviderCfg struct {
	Type           string  `mapstructure:"type" yaml:"type" json:"type"`                                        // "gemini", "openrouter", "openai"
	Model          string  `mapstructure:"model" yaml:"model" json:"model"`                                     // Model name
	APIKey         string  `mapstructure:"api_key" yaml:"api_key" json:"api_key"`                               // API key (supports ${ENV_VAR} syntax)
	BaseURL        string  `mapstructure:"base_url" yaml:"base_url,omitempty" json:"base_url,omitempty"`        // Optional endpoint override
	RateLimit      float64 `mapstructure:"rate_limit" yaml:"rate_limit" json:"rate_limit"`                      // Requests per second
	MaxRetries     int     `mapstructure:"max_retries" yaml:"max_retries" json:"max_retries"`                   // Attempts per call
	TimeoutSeconds int     `mapstructure:"timeout_seconds" yaml:"timeout_seconds" json:"timeout_seconds"`       // HTTP timeout
	Enabled        bool    `mapstructure:"enabled" yaml:"enabled" json:"enabled"`
}

// DefaultsCfg specifies default provider selections.
type DefaultsCfg struct {
	LLMProvider         string `mapstructure:"llm_provider" yaml:"llm_provider" json:"llm_provider"`                            // Recognition provider
	VerifyProvider      string `mapstructure:"verify_provider" yaml:"verify_provider" json:"verify_provider"`                   // Empty: llm_provider
	ConsolidateProvider string `mapstructure:"consolidate_provider" yaml:"consolidate_provider" json:"consolidate_provider"`    // Empty: llm_provider
}

// PipelineCfg tunes the extraction pipeline.
type PipelineCfg struct {
	Mode   string `mapstructure:"mode" yaml:"mode" json:"mode"`
	Passes int    `mapstructure:"passes" yaml:"passes" json:"passes"`

	// Unset temperatures fall back to the mode's preset.
	TemperatureBase *float64 `mapstructure:"temperature_base" yaml:"temperature_base,omitempty" json:"temperature_base,omitempty"`
	TemperatureStep *float64 `mapstructure:"temperature_step" yaml:"temperature_step,omitempty" json:"temperature_step,omitempty"`

	VerifyParallelism      int     `mapstructure:"verify_parallelism" yaml:"verify_parallelism" json:"verify_parallelism"`
	VerifyTemperature      float64 `mapstructure:"verify_temperature" yaml:"verify_temperature" json:"verify_temperature"`
	ConsolidateTemperature float64 `mapstructure:"consolidate_temperature" yaml:"consolidate_temperature" json:"consolidate_temperature"`
	ConsolidateGrounded    bool    `mapstructure:"consolidate_grounded" yaml:"consolidate_grounded" json:"consolidate_grounded"`

	Region     string   `mapstructure:"region" yaml:"region" json:"region"`
	Registries []string `mapstructure:"registries" yaml:"registries" json:"registries"`
	MaxTokens  int      `mapstructure:"max_tokens" yaml:"max_tokens" json:"max_tokens"`

	// PromptsDir holds <key>.tmpl files that replace embedded prompts.
	PromptsDir string `mapstructure:"prompts_dir" yaml:"prompts_dir,omitempty" json:"prompts_dir,omitempty"`
}

// DefaultConfig returns configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		LLMProviders: map[string]LLMProviderCfg{
			"gemini": {
				Type:           "gemini",
				Model:          "gemini-2.0-flash",
				APIKey:         "${GEMINI_API_KEY}",
				RateLimit:      5.0,
				MaxRetries:     3,
				TimeoutSeconds: 120,
				Enabled:        true,
			},
			"openrouter": {
				Type:           "openrouter",
				Model:          "google/gemini-2.0-flash-001",
				APIKey:         "${OPENROUTER_API_KEY}",
				RateLimit:      10.0,
				MaxRetries:     3,
				TimeoutSeconds: 120,
				Enabled:        true,
			},
			"openai": {
				Type:           "openai",
				Model:          "gpt-4o",
				APIKey:         "${OPENAI_API_KEY}",
				RateLimit:      8.0,
				MaxRetries:     3,
				TimeoutSeconds: 120,
				Enabled:        true,
			},
		},
		Defaults: DefaultsCfg{
			LLMProvider: "gemini",
		},
		Pipeline: PipelineCfg{
			Mode:                   "positional",
			Passes:                 5,
			VerifyParallelism:      5,
			VerifyTemperature:      0.2,
			ConsolidateTemperature: 0.1,
			ConsolidateGrounded:    true,
			Region:                 "Bangladesh",
			Registries:             []string{"MedEx", "Arogga"},
			MaxTokens:              2048,
		},
	}
}

// GetLLMProvider returns an LLM provider config by name.
func (c *Config) GetLLMProvider(name string) (LLMProviderCfg, bool) {
	cfg, ok := c.LLMProviders[name]
	return cfg, ok
}

// EnabledLLMProviders returns all enabled LLM providers.
func (c *Config) EnabledLLMProviders() map[string]LLMProviderCfg {
	result := make(map[string]LLMProviderCfg)
	for name, cfg := range c.LLMProviders {
		if cfg.Enabled {
			result[name] = cfg
		}
	}
	return result
}

// VerifyProviderName returns the provider used for verification.
func (d DefaultsCfg) VerifyProviderName() string {
	if d.VerifyProvider != "" {
		return d.VerifyProvider
	}
	return d.LLMProvider
}

// ConsolidateProviderName returns the provider used for consolidation.
func (d DefaultsCfg) ConsolidateProviderName() string {
	if d.ConsolidateProvider != "" {
		return d.ConsolidateProvider
	}
	return d.LLMProvider
}

// Timeout returns the HTTP timeout, zero when unset.
func (p LLMProviderCfg) Timeout() time.Duration {
	return time.Duration(p.TimeoutSeconds) * time.Second
}

// Redacted returns a copy with literal API keys masked. ${ENV_VAR}
// references are kept since they carry no secret.
func (c *Config) Redacted() *Config {
	out := *c
	out.LLMProviders = make(map[string]LLMProviderCfg, len(c.LLMProviders))
	for name, p := range c.LLMProviders {
		if p.APIKey != "" && !strings.HasPrefix(p.APIKey, "${") {
			p.APIKey = "****"
		}
		out.LLMProviders[name] = p
	}
	out.Pipeline.Registries = append([]string(nil), c.Pipeline.Registries...)
	return &out
}
