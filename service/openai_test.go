package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Mustafabeshara/Dashboard2-sub006/config"
)

func openaiTestConfig(baseURL string) *config.ProviderConfig {
	return &config.ProviderConfig{
		APIKey:         "sk-real-key",
		BaseURL:        baseURL,
		Model:          "gpt-4o-mini",
		TimeoutSeconds: 5,
		RateLimitRPM:   60,
		RateLimitRPD:   2000,
	}
}

func TestOpenAIInvoke(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("Expected /chat/completions, got %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer sk-real-key" {
			t.Error("Expected Bearer authorization")
		}

		var body map[string]any
		json.NewDecoder(r.Body).Decode(&body)
		if body["model"] != "gpt-4o-mini" {
			t.Errorf("Expected model gpt-4o-mini, got %v", body["model"])
		}
		rf, ok := body["response_format"].(map[string]any)
		if !ok || rf["type"] != "json_object" {
			t.Errorf("Expected json_object response format, got %v", body["response_format"])
		}

		// Document message carries multipart content with an image_url part
		messages := body["messages"].([]any)
		if len(messages) != 2 {
			t.Fatalf("Expected 2 messages, got %d", len(messages))
		}
		userMsg := messages[1].(map[string]any)
		parts, ok := userMsg["content"].([]any)
		if !ok || len(parts) != 2 {
			t.Fatalf("Expected 2 content parts, got %v", userMsg["content"])
		}
		imagePart := parts[1].(map[string]any)
		if imagePart["type"] != "image_url" {
			t.Errorf("Expected image_url part, got %v", imagePart["type"])
		}

		json.NewEncoder(w).Encode(map[string]any{
			"model": "gpt-4o-mini",
			"choices": []map[string]any{
				{"message": map[string]any{"content": `{"ok": true}`}},
			},
			"usage": map[string]int{"prompt_tokens": 80, "completion_tokens": 15},
		})
	}))
	defer server.Close()

	provider := NewOpenAIProvider(openaiTestConfig(server.URL))

	resp, err := provider.Invoke(context.Background(), &LLMRequest{
		Messages: []LLMMessage{
			{Role: "system", Content: "You are a parser."},
			{Role: "user", Content: "Extract.", DocumentURL: "https://storage.test/scan.png", MimeType: "image/png"},
		},
	})
	if err != nil {
		t.Fatalf("Invoke failed: %v", err)
	}

	if resp.Content != `{"ok": true}` {
		t.Errorf("Expected content, got %s", resp.Content)
	}
	if resp.Provider != "openai" {
		t.Errorf("Expected provider openai, got %s", resp.Provider)
	}
	if resp.Usage.InputTokens != 80 || resp.Usage.OutputTokens != 15 {
		t.Errorf("Expected usage accounting, got %+v", resp.Usage)
	}
}

func TestOpenAIInvokeAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error": {"message": "invalid api key"}}`))
	}))
	defer server.Close()

	provider := NewOpenAIProvider(openaiTestConfig(server.URL))

	_, err := provider.Invoke(context.Background(), &LLMRequest{
		Messages: []LLMMessage{{Role: "user", Content: "hi"}},
	})

	var provErr *ProviderError
	if !errors.As(err, &provErr) {
		t.Fatalf("Expected ProviderError, got %v", err)
	}
	if provErr.Status != http.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", provErr.Status)
	}
}

func TestOpenAIInvokeEmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"model": "gpt-4o-mini", "choices": []any{}})
	}))
	defer server.Close()

	provider := NewOpenAIProvider(openaiTestConfig(server.URL))

	_, err := provider.Invoke(context.Background(), &LLMRequest{
		Messages: []LLMMessage{{Role: "user", Content: "hi"}},
	})
	if err == nil {
		t.Fatal("Expected error for empty choices")
	}
}

func TestOpenAIIsConfigured(t *testing.T) {
	cfg := openaiTestConfig("https://api.openai.com/v1")
	if !NewOpenAIProvider(cfg).IsConfigured() {
		t.Error("Expected real key to be configured")
	}

	cfg.APIKey = "changeme"
	if NewOpenAIProvider(cfg).IsConfigured() {
		t.Error("Expected placeholder key to be unconfigured")
	}
}
