package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/Mustafabeshara/Dashboard2-sub006/config"
)

// OpenAIProvider calls the OpenAI chat/completions API. It is the fallback
// provider; image documents are attached as image_url content parts.
type OpenAIProvider struct {
	config     *config.ProviderConfig
	httpClient *http.Client
	limiter    *rateCounter
}

func NewOpenAIProvider(cfg *config.ProviderConfig) *OpenAIProvider {
	return &OpenAIProvider{
		config:     cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout()},
		limiter:    newRateCounter(cfg.RateLimitRPM, cfg.RateLimitRPD),
	}
}

func (p *OpenAIProvider) Name() string {
	return "openai"
}

func (p *OpenAIProvider) IsConfigured() bool {
	return !config.IsPlaceholder(p.config.APIKey)
}

func (p *OpenAIProvider) RateLimitStatus() RateLimitStatus {
	return p.limiter.status()
}

type openaiResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
}

// Invoke sends the request to the chat/completions endpoint
func (p *OpenAIProvider) Invoke(ctx context.Context, req *LLMRequest) (*LLMResponse, error) {
	p.limiter.record()

	messages := make([]map[string]any, 0, len(req.Messages))
	for _, m := range req.Messages {
		if m.DocumentURL != "" {
			parts := []map[string]any{}
			if m.Content != "" {
				parts = append(parts, map[string]any{"type": "text", "text": m.Content})
			}
			parts = append(parts, map[string]any{
				"type":      "image_url",
				"image_url": map[string]any{"url": m.DocumentURL},
			})
			messages = append(messages, map[string]any{"role": m.Role, "content": parts})
			continue
		}
		messages = append(messages, map[string]any{"role": m.Role, "content": m.Content})
	}

	body := map[string]any{
		"model":           p.config.Model,
		"temperature":     req.Temperature,
		"response_format": map[string]any{"type": "json_object"},
		"messages":        messages,
	}
	if req.MaxTokens > 0 {
		body["max_tokens"] = req.MaxTokens
	}

	jsonData, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.config.BaseURL+"/chat/completions", bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+p.config.APIKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &ProviderError{Provider: p.Name(), Status: resp.StatusCode, Message: string(respBody)}
	}

	var result openaiResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w, body: %s", err, string(respBody))
	}
	if len(result.Choices) == 0 {
		return nil, &ProviderError{Provider: p.Name(), Status: resp.StatusCode, Message: "no choices in response"}
	}

	return &LLMResponse{
		Content:  result.Choices[0].Message.Content,
		Model:    result.Model,
		Provider: p.Name(),
		Usage: LLMUsage{
			InputTokens:  result.Usage.PromptTokens,
			OutputTokens: result.Usage.CompletionTokens,
		},
	}, nil
}
