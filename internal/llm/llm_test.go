package llm

import (
	"strings"
	"testing"
)

func TestParseModel(t *testing.T) {
	provider, model, err := ParseModel("gemini/gemini-1.5-flash-latest")
	if err != nil {
		t.Fatalf("ParseModel failed: %v", err)
	}
	if provider != "gemini" {
		t.Fatalf("expected provider gemini, got %q", provider)
	}
	if model != "gemini-1.5-flash-latest" {
		t.Fatalf("expected model gemini-1.5-flash-latest, got %q", model)
	}
}

func TestParseModelInvalid(t *testing.T) {
	for _, input := range []string{"", "gemini", "/model", "provider/"} {
		if _, _, err := ParseModel(input); err == nil {
			t.Fatalf("expected error for %q, got nil", input)
		}
	}
}

func TestNewClientUnknownProvider(t *testing.T) {
	_, err := NewClient("cohere", "key", "model")
	if err == nil {
		t.Fatal("expected error for unknown provider, got nil")
	}
	if !strings.Contains(err.Error(), "unknown LLM provider") {
		t.Fatalf("unexpected error: %v", err)
	}
}
