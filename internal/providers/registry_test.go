package providers

import (
	"errors"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestRegistry(t *testing.T) {
	t.Run("register and get LLM", func(t *testing.T) {
		r := NewRegistry()
		mock := NewMockClient()

		r.RegisterLLM("test-llm", mock)

		client, err := r.GetLLM("test-llm")
		if err != nil {
			t.Fatalf("GetLLM() error = %v", err)
		}
		if client != mock {
			t.Error("got different client than registered")
		}
	})

	t.Run("get nonexistent LLM", func(t *testing.T) {
		r := NewRegistry()

		_, err := r.GetLLM("nonexistent")
		if !errors.Is(err, ErrProviderNotFound) {
			t.Errorf("GetLLM() error = %v, want ErrProviderNotFound", err)
		}
	})

	t.Run("list and has", func(t *testing.T) {
		r := NewRegistry()
		r.RegisterLLM("llm2", NewMockClient())
		r.RegisterLLM("llm1", NewMockClient())

		if diff := cmp.Diff([]string{"llm1", "llm2"}, r.ListLLM()); diff != "" {
			t.Errorf("ListLLM mismatch (-want +got):\n%s", diff)
		}
		if !r.HasLLM("llm1") || r.HasLLM("llm3") {
			t.Error("HasLLM() mismatch")
		}
		if len(r.LLMClients()) != 2 {
			t.Errorf("LLMClients() = %d entries", len(r.LLMClients()))
		}
	})

	t.Run("unregister", func(t *testing.T) {
		r := NewRegistry()
		r.RegisterLLM("x", NewMockClient())
		r.UnregisterLLM("x")
		if r.HasLLM("x") {
			t.Error("client still registered")
		}
	})

	t.Run("concurrent access", func(t *testing.T) {
		r := NewRegistry()
		var wg sync.WaitGroup

		for i := 0; i < 10; i++ {
			wg.Add(2)
			go func() {
				defer wg.Done()
				r.RegisterLLM("llm", NewMockClient())
			}()
			go func() {
				defer wg.Done()
				r.GetLLM("llm")
				r.ListLLM()
			}()
		}
		wg.Wait()
	})
}

func TestRegistryFromConfig(t *testing.T) {
	cfg := RegistryConfig{
		LLMProviders: map[string]LLMProviderConfig{
			"gemini":     {Type: GeminiName, APIKey: "g-key", RateLimit: 5, Enabled: true},
			"openrouter": {Type: OpenRouterName, APIKey: "or-key", Model: "m", Enabled: true},
			"openai":     {Type: OpenAIName, APIKey: "oa-key", Enabled: true},
			"disabled":   {Type: OpenRouterName, APIKey: "key", Enabled: false},
			"no-key":     {Type: OpenRouterName, Enabled: true},
			"bogus":      {Type: "carrier-pigeon", APIKey: "key", Enabled: true},
		},
	}

	r := NewRegistryFromConfig(cfg)

	if diff := cmp.Diff([]string{"gemini", "openai", "openrouter"}, r.ListLLM()); diff != "" {
		t.Fatalf("ListLLM mismatch (-want +got):\n%s", diff)
	}
	for name, want := range map[string]string{"gemini": GeminiName, "openrouter": OpenRouterName, "openai": OpenAIName} {
		c, _ := r.GetLLM(name)
		if c.Name() != want {
			t.Errorf("%s: Name() = %q, want %q", name, c.Name(), want)
		}
	}
	if c, _ := r.GetLLM("gemini"); c.RequestsPerSecond() != 5 {
		t.Errorf("gemini RPS = %v, want 5", c.RequestsPerSecond())
	}
}

func TestRegistryReload(t *testing.T) {
	base := RegistryConfig{
		LLMProviders: map[string]LLMProviderConfig{
			"openrouter": {Type: OpenRouterName, APIKey: "k1", Enabled: true},
			"openai":     {Type: OpenAIName, APIKey: "k2", Enabled: true},
		},
	}
	r := NewRegistryFromConfig(base)
	r.RegisterLLM("manual", NewMockClient())
	before, _ := r.GetLLM("openai")

	t.Run("unchanged config keeps clients", func(t *testing.T) {
		r.Reload(base)
		after, _ := r.GetLLM("openai")
		if after != before {
			t.Error("unchanged provider was recreated")
		}
	})

	t.Run("changed config recreates client", func(t *testing.T) {
		changed := RegistryConfig{LLMProviders: map[string]LLMProviderConfig{
			"openrouter": {Type: OpenRouterName, APIKey: "k1", Enabled: true},
			"openai":     {Type: OpenAIName, APIKey: "k3", Enabled: true},
		}}
		r.Reload(changed)
		after, _ := r.GetLLM("openai")
		if after == before {
			t.Error("changed provider was not recreated")
		}
	})

	t.Run("removed providers unregister", func(t *testing.T) {
		r.Reload(RegistryConfig{LLMProviders: map[string]LLMProviderConfig{
			"openrouter": {Type: OpenRouterName, APIKey: "k1", Enabled: false},
		}})
		if diff := cmp.Diff([]string{"manual"}, r.ListLLM()); diff != "" {
			t.Errorf("ListLLM mismatch (-want +got):\n%s", diff)
		}
	})
}
