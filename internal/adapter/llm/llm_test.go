package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestOpenAIGenerate(t *testing.T) {
	t.Setenv("TEST_OPENAI_KEY", "sk-test")

	var gotPath, gotAuth string
	var gotReq chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		json.NewDecoder(r.Body).Decode(&gotReq)
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"role": "assistant", "content": "hello"}},
			},
		})
	}))
	defer srv.Close()

	g := NewOpenAIGenerator(OpenAIOptions{
		APIKeyEnv: "TEST_OPENAI_KEY",
		Model:     "gpt-4o-mini",
		BaseURL:   srv.URL,
	})
	if err := g.Configured(); err != nil {
		t.Fatal(err)
	}

	gen, err := g.Generate(context.Background(), "the prompt")
	if err != nil {
		t.Fatal(err)
	}
	if gen.Text != "hello" {
		t.Errorf("Text = %q", gen.Text)
	}
	if gen.Usage != nil {
		t.Errorf("expected no usage, got %+v", gen.Usage)
	}
	if gotPath != "/chat/completions" {
		t.Errorf("path = %q", gotPath)
	}
	if gotAuth != "Bearer sk-test" {
		t.Errorf("auth header = %q", gotAuth)
	}
	if len(gotReq.Messages) != 1 || gotReq.Messages[0].Content != "the prompt" {
		t.Errorf("unexpected request: %+v", gotReq)
	}
}

func TestOpenAIAPIError(t *testing.T) {
	t.Setenv("TEST_OPENAI_KEY", "sk-test")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]string{"message": "invalid api key"},
		})
	}))
	defer srv.Close()

	g := NewOpenAIGenerator(OpenAIOptions{APIKeyEnv: "TEST_OPENAI_KEY", BaseURL: srv.URL})
	if _, err := g.Generate(context.Background(), "p"); err == nil {
		t.Error("expected error from API error response")
	}
}

func TestOpenAIConfiguredMissingKey(t *testing.T) {
	t.Setenv("TEST_OPENAI_EMPTY", "")

	g := NewOpenAIGenerator(OpenAIOptions{APIKeyEnv: "TEST_OPENAI_EMPTY"})
	if err := g.Configured(); err == nil {
		t.Error("expected Configured to fail without key")
	}
	if g.Name() != "openai" {
		t.Errorf("Name = %q", g.Name())
	}
}

func TestAnthropicGenerate(t *testing.T) {
	t.Setenv("TEST_ANTHROPIC_KEY", "ak-test")

	var gotPath, gotKey, gotVersion string
	var gotReq messagesRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("x-api-key")
		gotVersion = r.Header.Get("anthropic-version")
		json.NewDecoder(r.Body).Decode(&gotReq)
		json.NewEncoder(w).Encode(map[string]any{
			"content": []map[string]string{{"type": "text", "text": "bonjour"}},
			"usage":   map[string]int{"input_tokens": 42, "output_tokens": 7},
		})
	}))
	defer srv.Close()

	g := NewAnthropicGenerator(AnthropicOptions{
		APIKeyEnv: "TEST_ANTHROPIC_KEY",
		BaseURL:   srv.URL,
	})
	if err := g.Configured(); err != nil {
		t.Fatal(err)
	}

	gen, err := g.Generate(context.Background(), "the prompt")
	if err != nil {
		t.Fatal(err)
	}
	if gen.Text != "bonjour" {
		t.Errorf("Text = %q", gen.Text)
	}
	if gen.Usage == nil || gen.Usage.InputTokens != 42 || gen.Usage.OutputTokens != 7 {
		t.Errorf("usage = %+v", gen.Usage)
	}
	if gotPath != "/messages" {
		t.Errorf("path = %q", gotPath)
	}
	if gotKey != "ak-test" {
		t.Errorf("x-api-key = %q", gotKey)
	}
	if gotVersion != anthropicVersion {
		t.Errorf("anthropic-version = %q", gotVersion)
	}
	if len(gotReq.Messages) != 1 || len(gotReq.Messages[0].Content) != 1 || gotReq.Messages[0].Content[0].Text != "the prompt" {
		t.Errorf("unexpected request: %+v", gotReq)
	}
	if gotReq.MaxTokens != 4096 {
		t.Errorf("max_tokens = %d, want default 4096", gotReq.MaxTokens)
	}
}

func TestAnthropicAPIError(t *testing.T) {
	t.Setenv("TEST_ANTHROPIC_KEY", "ak-test")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]string{"type": "invalid_request_error", "message": "bad model"},
		})
	}))
	defer srv.Close()

	g := NewAnthropicGenerator(AnthropicOptions{APIKeyEnv: "TEST_ANTHROPIC_KEY", BaseURL: srv.URL})
	if _, err := g.Generate(context.Background(), "p"); err == nil {
		t.Error("expected error from API error response")
	}
}
