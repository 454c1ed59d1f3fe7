package config

import (
	"errors"
	"fmt"

	"github.com/spf13/viper"
)

// ErrNoDefault is returned when no default value exists for a config key.
var ErrNoDefault = errors.New("no default exists")

// Entry represents a single configuration key with its default.
type Entry struct {
	Key         string `json:"key" yaml:"key"`
	Value       any    `json:"value" yaml:"value"`
	Description string `json:"description" yaml:"description"`
}

// DefaultEntries returns the scalar defaults registered with viper. Each key
// is registered on its own so RXSCAN_ environment variables can reach it.
func DefaultEntries() []Entry {
	d := DefaultConfig()
	return []Entry{
		// ===================
		// Provider selection
		// ===================
		{
			Key:         "defaults.llm_provider",
			Value:       d.Defaults.LLMProvider,
			Description: "LLM provider used for recognition passes",
		},
		{
			Key:         "defaults.verify_provider",
			Value:       d.Defaults.VerifyProvider,
			Description: "LLM provider used for grounded verification (empty: llm_provider)",
		},
		{
			Key:         "defaults.consolidate_provider",
			Value:       d.Defaults.ConsolidateProvider,
			Description: "LLM provider used for consolidation (empty: llm_provider)",
		},

		// ===================
		// Pipeline
		// ===================
		{
			Key:         "pipeline.mode",
			Value:       d.Pipeline.Mode,
			Description: "Pipeline mode: positional, identity or direct",
		},
		{
			Key:         "pipeline.passes",
			Value:       d.Pipeline.Passes,
			Description: "Number of recognition passes at increasing temperature",
		},
		{
			Key:         "pipeline.verify_parallelism",
			Value:       d.Pipeline.VerifyParallelism,
			Description: "Maximum concurrent verification requests",
		},
		{
			Key:         "pipeline.verify_temperature",
			Value:       d.Pipeline.VerifyTemperature,
			Description: "Sampling temperature for verification",
		},
		{
			Key:         "pipeline.consolidate_temperature",
			Value:       d.Pipeline.ConsolidateTemperature,
			Description: "Sampling temperature for consolidation",
		},
		{
			Key:         "pipeline.consolidate_grounded",
			Value:       d.Pipeline.ConsolidateGrounded,
			Description: "Enable web search grounding for consolidation",
		},
		{
			Key:         "pipeline.region",
			Value:       d.Pipeline.Region,
			Description: "Country whose medicines the prompts focus on",
		},
		{
			Key:         "pipeline.registries",
			Value:       d.Pipeline.Registries,
			Description: "Pharmaceutical registries named in verification prompts",
		},
		{
			Key:         "pipeline.max_tokens",
			Value:       d.Pipeline.MaxTokens,
			Description: "Maximum output tokens per call",
		},
		{
			Key:         "pipeline.prompts_dir",
			Value:       d.Pipeline.PromptsDir,
			Description: "Directory of <key>.tmpl prompt overrides (empty: ~/.rxscan/prompts)",
		},
	}
}

// envOnlyKeys have no default but may still be set from the environment.
var envOnlyKeys = []string{
	"pipeline.temperature_base",
	"pipeline.temperature_step",
}

// registerDefaults seeds v with every default.
func registerDefaults(v *viper.Viper) error {
	for name, p := range DefaultConfig().LLMProviders {
		prefix := "llm_providers." + name + "."
		v.SetDefault(prefix+"type", p.Type)
		v.SetDefault(prefix+"model", p.Model)
		v.SetDefault(prefix+"api_key", p.APIKey)
		v.SetDefault(prefix+"rate_limit", p.RateLimit)
		v.SetDefault(prefix+"max_retries", p.MaxRetries)
		v.SetDefault(prefix+"timeout_seconds", p.TimeoutSeconds)
		v.SetDefault(prefix+"enabled", p.Enabled)
	}
	for _, entry := range DefaultEntries() {
		v.SetDefault(entry.Key, entry.Value)
	}
	for _, key := range envOnlyKeys {
		if err := v.BindEnv(key); err != nil {
			return fmt.Errorf("failed to bind env for %q: %w", key, err)
		}
	}
	return nil
}

// GetDefault returns the default value for a config key.
// Returns nil if no default exists for the key.
func GetDefault(key string) *Entry {
	for _, entry := range DefaultEntries() {
		if entry.Key == key {
			return &entry
		}
	}
	return nil
}

// Describe returns the default entry for key or ErrNoDefault.
func Describe(key string) (*Entry, error) {
	def := GetDefault(key)
	if def == nil {
		return nil, fmt.Errorf("%w for key %q", ErrNoDefault, key)
	}
	return def, nil
}
