package prompts

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestExtractVariables(t *testing.T) {
	tests := []struct {
		text string
		want []string
	}{
		{"no variables", nil},
		{"Hello {{.Name}}, {{ .Count }} items, {{.Name}} again", []string{"Count", "Name"}},
		{"{{.Group.Summary}}", []string{"Group.Summary"}},
		{"{{range .Entries}}{{.Text}}{{end}}", []string{"Text"}},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, ExtractVariables(tt.text)); diff != "" {
				t.Errorf("ExtractVariables mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRender(t *testing.T) {
	t.Run("renders and trims", func(t *testing.T) {
		got, err := Render("k", "\n  Hello {{.Name}}\n", map[string]string{"Name": "Napa"})
		if err != nil {
			t.Fatalf("Render() error = %v", err)
		}
		if got != "Hello Napa" {
			t.Errorf("Render() = %q", got)
		}
	})

	t.Run("missing key is an error", func(t *testing.T) {
		if _, err := Render("k", "{{.Missing}}", map[string]string{}); err == nil {
			t.Error("expected error for missing key")
		}
	})

	t.Run("parse error names the key", func(t *testing.T) {
		_, err := Render("verify.identity", "{{.Name", nil)
		if err == nil || !strings.Contains(err.Error(), "verify.identity") {
			t.Errorf("error = %v", err)
		}
	})
}

func TestJoinRegistries(t *testing.T) {
	tests := []struct {
		in   []string
		want string
	}{
		{nil, "trusted pharmaceutical registries"},
		{[]string{" ", ""}, "trusted pharmaceutical registries"},
		{[]string{"MedEx"}, "MedEx"},
		{[]string{"MedEx", "Arogga"}, "MedEx or Arogga"},
		{[]string{"A", " B ", "C"}, "A, B or C"},
	}
	for _, tt := range tests {
		if got := JoinRegistries(tt.in); got != tt.want {
			t.Errorf("JoinRegistries(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestResolver(t *testing.T) {
	dir := t.TempDir()
	r := NewResolver(dir, nil)
	r.Register(EmbeddedPrompt{Key: "verify.identity", Text: "Verify {{.Name}} in {{.Region}}"})
	r.Register(EmbeddedPrompt{Key: "recognize.identity", Text: "Read the image"})

	t.Run("embedded default", func(t *testing.T) {
		p, err := r.Resolve("verify.identity")
		if err != nil {
			t.Fatalf("Resolve() error = %v", err)
		}
		if p.IsOverride {
			t.Error("IsOverride = true, want false")
		}
		if diff := cmp.Diff([]string{"Name", "Region"}, p.Variables); diff != "" {
			t.Errorf("Variables mismatch (-want +got):\n%s", diff)
		}
		if p.Hash != HashText("Verify {{.Name}} in {{.Region}}") {
			t.Error("Hash does not match text")
		}
	})

	t.Run("override file wins", func(t *testing.T) {
		path := filepath.Join(dir, "recognize.identity.tmpl")
		if err := os.WriteFile(path, []byte("Read carefully"), 0o644); err != nil {
			t.Fatal(err)
		}
		p, err := r.Resolve("recognize.identity")
		if err != nil {
			t.Fatalf("Resolve() error = %v", err)
		}
		if !p.IsOverride || p.Text != "Read carefully" {
			t.Errorf("Resolve() = %+v, want override", p)
		}
		if got := r.Text("recognize.identity", ""); got != "Read carefully" {
			t.Errorf("Text() = %q", got)
		}
	})

	t.Run("unknown key", func(t *testing.T) {
		if _, err := r.Resolve("nope"); !errors.Is(err, ErrPromptNotFound) {
			t.Errorf("error = %v, want ErrPromptNotFound", err)
		}
		if got := r.Text("nope", "fallback"); got != "fallback" {
			t.Errorf("Text() = %q, want fallback", got)
		}
	})

	t.Run("nil resolver falls back", func(t *testing.T) {
		var nilResolver *Resolver
		if got := nilResolver.Text("verify.identity", "x"); got != "x" {
			t.Errorf("Text() = %q", got)
		}
	})

	t.Run("all embedded sorted", func(t *testing.T) {
		var keys []string
		for _, p := range r.AllEmbedded() {
			keys = append(keys, p.Key)
		}
		if diff := cmp.Diff([]string{"recognize.identity", "verify.identity"}, keys); diff != "" {
			t.Errorf("keys mismatch (-want +got):\n%s", diff)
		}
	})
}
