package config

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"gopkg.in/yaml.v3"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Defaults.LLMProvider != "gemini" {
		t.Errorf("LLMProvider = %q, want gemini", cfg.Defaults.LLMProvider)
	}
	if cfg.LLMProviders["gemini"].APIKey != "${GEMINI_API_KEY}" {
		t.Error("expected gemini API key placeholder")
	}
	if cfg.Pipeline.Passes != 5 || cfg.Pipeline.VerifyTemperature != 0.2 || cfg.Pipeline.ConsolidateTemperature != 0.1 {
		t.Errorf("unexpected pipeline defaults: %+v", cfg.Pipeline)
	}
	if cfg.Pipeline.TemperatureBase != nil {
		t.Error("temperature base should default to the mode preset")
	}
}

func TestResolveEnvVars(t *testing.T) {
	t.Run("resolves environment variable", func(t *testing.T) {
		t.Setenv("TEST_API_KEY", "secret123")

		result := ResolveEnvVars("${TEST_API_KEY}")
		if result != "secret123" {
			t.Errorf("expected secret123, got %s", result)
		}
	})

	t.Run("returns empty for missing env var", func(t *testing.T) {
		result := ResolveEnvVars("${DEFINITELY_NOT_SET_12345}")
		if result != "" {
			t.Errorf("expected empty string, got %s", result)
		}
	})

	t.Run("leaves literal values unchanged", func(t *testing.T) {
		result := ResolveEnvVars("literal-value")
		if result != "literal-value" {
			t.Errorf("expected literal-value, got %s", result)
		}
	})
}

func TestNewManager(t *testing.T) {
	t.Run("defaults without a file", func(t *testing.T) {
		mgr, err := NewManager("", t.TempDir())
		if err != nil {
			t.Fatalf("failed to create manager: %v", err)
		}
		if diff := cmp.Diff(DefaultConfig(), mgr.Get()); diff != "" {
			t.Errorf("defaults mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("file overrides single keys", func(t *testing.T) {
		path := writeConfig(t, `
llm_providers:
  gemini:
    model: gemini-2.5-pro
pipeline:
  mode: identity
  passes: 3
  temperature_base: 0.5
  registries: [MedEx]
`)
		mgr, err := NewManager(path)
		if err != nil {
			t.Fatalf("failed to create manager: %v", err)
		}
		cfg := mgr.Get()

		gemini := cfg.LLMProviders["gemini"]
		if gemini.Model != "gemini-2.5-pro" {
			t.Errorf("Model = %q", gemini.Model)
		}
		if gemini.APIKey != "${GEMINI_API_KEY}" || !gemini.Enabled {
			t.Errorf("unset provider keys lost their defaults: %+v", gemini)
		}
		if cfg.Pipeline.Mode != "identity" || cfg.Pipeline.Passes != 3 {
			t.Errorf("Pipeline = %+v", cfg.Pipeline)
		}
		if cfg.Pipeline.TemperatureBase == nil || *cfg.Pipeline.TemperatureBase != 0.5 {
			t.Errorf("TemperatureBase = %v", cfg.Pipeline.TemperatureBase)
		}
		if cfg.Pipeline.TemperatureStep != nil {
			t.Errorf("TemperatureStep = %v, want nil", *cfg.Pipeline.TemperatureStep)
		}
		if diff := cmp.Diff([]string{"MedEx"}, cfg.Pipeline.Registries); diff != "" {
			t.Errorf("Registries mismatch (-want +got):\n%s", diff)
		}
		if mgr.ConfigFile() != path {
			t.Errorf("ConfigFile() = %q", mgr.ConfigFile())
		}
	})

	t.Run("environment overrides", func(t *testing.T) {
		t.Setenv("RXSCAN_PIPELINE_PASSES", "7")
		t.Setenv("RXSCAN_PIPELINE_TEMPERATURE_STEP", "0.05")
		t.Setenv("RXSCAN_DEFAULTS_LLM_PROVIDER", "openrouter")

		mgr, err := NewManager(writeConfig(t, "pipeline:\n  passes: 2\n"))
		if err != nil {
			t.Fatalf("failed to create manager: %v", err)
		}
		cfg := mgr.Get()
		if cfg.Pipeline.Passes != 7 {
			t.Errorf("Passes = %d, want 7", cfg.Pipeline.Passes)
		}
		if cfg.Pipeline.TemperatureStep == nil || *cfg.Pipeline.TemperatureStep != 0.05 {
			t.Errorf("TemperatureStep = %v", cfg.Pipeline.TemperatureStep)
		}
		if cfg.Defaults.LLMProvider != "openrouter" {
			t.Errorf("LLMProvider = %q", cfg.Defaults.LLMProvider)
		}
	})

	t.Run("malformed file", func(t *testing.T) {
		if _, err := NewManager(writeConfig(t, "pipeline: [unclosed")); err == nil {
			t.Error("expected error for malformed YAML")
		}
	})
}

func TestManager_OnChange_Multiple(t *testing.T) {
	mgr, err := NewManager(writeConfig(t, "pipeline:\n  passes: 5\n"))
	if err != nil {
		t.Fatalf("failed to create manager: %v", err)
	}

	mgr.OnChange(func(cfg *Config) {})
	mgr.OnChange(func(cfg *Config) {})
	mgr.OnChange(func(cfg *Config) {})

	mgr.mu.RLock()
	if len(mgr.callbacks) != 3 {
		t.Errorf("expected 3 callbacks, got %d", len(mgr.callbacks))
	}
	mgr.mu.RUnlock()
}

func TestManager_Get_ThreadSafe(t *testing.T) {
	mgr, err := NewManager(writeConfig(t, "pipeline:\n  passes: 5\n"))
	if err != nil {
		t.Fatalf("failed to create manager: %v", err)
	}

	done := make(chan struct{})
	for i := 0; i < 10; i++ {
		go func() {
			for j := 0; j < 100; j++ {
				_ = mgr.Get().Pipeline.Passes
			}
			done <- struct{}{}
		}()
	}
	for i := 0; i < 10; i++ {
		<-done
	}
}

func TestManager_WatchConfig(t *testing.T) {
	configFile := writeConfig(t, "pipeline:\n  passes: 5\n")

	mgr, err := NewManager(configFile)
	if err != nil {
		t.Fatalf("failed to create manager: %v", err)
	}

	var callbackCount atomic.Int32
	var lastValue atomic.Int32

	mgr.OnChange(func(cfg *Config) {
		callbackCount.Add(1)
		lastValue.Store(int32(cfg.Pipeline.Passes))
	})

	mgr.WatchConfig()

	// Give fsnotify time to set up the watcher
	time.Sleep(100 * time.Millisecond)

	if err := os.WriteFile(configFile, []byte("pipeline:\n  passes: 9\n"), 0o644); err != nil {
		t.Fatalf("failed to write updated config file: %v", err)
	}

	// fsnotify is async
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if lastValue.Load() == 9 {
			break
		}
		time.Sleep(50 * time.Millisecond)
	}

	if callbackCount.Load() == 0 {
		t.Fatal("callback was not invoked after config file change")
	}
	if got := mgr.Get().Pipeline.Passes; got != 9 {
		t.Errorf("config not updated: Passes = %d, want 9", got)
	}
	if v := lastValue.Load(); v != 9 {
		t.Errorf("callback received Passes = %d, want 9", v)
	}
}

func TestToProviderRegistryConfig(t *testing.T) {
	t.Setenv("TEST_GEMINI_KEY", "g-key")

	cfg := &Config{
		LLMProviders: map[string]LLMProviderCfg{
			"gemini": {
				Type:           "gemini",
				Model:          "gemini-2.0-flash",
				APIKey:         "${TEST_GEMINI_KEY}",
				RateLimit:      5,
				MaxRetries:     4,
				TimeoutSeconds: 30,
				Enabled:        true,
			},
		},
	}

	got := cfg.ToProviderRegistryConfig().LLMProviders["gemini"]
	if got.APIKey != "g-key" {
		t.Errorf("APIKey = %q, want resolved g-key", got.APIKey)
	}
	if got.Timeout != 30*time.Second || got.MaxRetries != 4 || got.RateLimit != 5 {
		t.Errorf("provider config = %+v", got)
	}
}

func TestWriteDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := WriteDefault(path); err != nil {
		t.Fatalf("WriteDefault() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		t.Fatalf("written config does not parse: %v", err)
	}
	if diff := cmp.Diff(DefaultConfig(), &cfg); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}

	// And the manager reads it back to the same values.
	mgr, err := NewManager(path)
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}
	if diff := cmp.Diff(DefaultConfig(), mgr.Get()); diff != "" {
		t.Errorf("manager mismatch (-want +got):\n%s", diff)
	}
}

func TestRedacted(t *testing.T) {
	cfg := DefaultConfig()
	p := cfg.LLMProviders["openai"]
	p.APIKey = "sk-live-secret"
	cfg.LLMProviders["openai"] = p

	red := cfg.Redacted()
	if red.LLMProviders["openai"].APIKey != "****" {
		t.Errorf("literal key not masked: %q", red.LLMProviders["openai"].APIKey)
	}
	if red.LLMProviders["gemini"].APIKey != "${GEMINI_API_KEY}" {
		t.Errorf("env reference should be kept: %q", red.LLMProviders["gemini"].APIKey)
	}
	if cfg.LLMProviders["openai"].APIKey != "sk-live-secret" {
		t.Error("Redacted modified the original")
	}
}

func TestDefaultsProviderNames(t *testing.T) {
	d := DefaultsCfg{LLMProvider: "gemini"}
	if d.VerifyProviderName() != "gemini" || d.ConsolidateProviderName() != "gemini" {
		t.Error("empty stage providers should fall back to llm_provider")
	}
	d.VerifyProvider = "openai"
	if d.VerifyProviderName() != "openai" {
		t.Errorf("VerifyProviderName() = %q", d.VerifyProviderName())
	}
}
