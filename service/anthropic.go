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

// AnthropicProvider calls the Anthropic messages API. It is the primary
// provider because it accepts PDF and image documents by URL.
type AnthropicProvider struct {
	config     *config.ProviderConfig
	httpClient *http.Client
	limiter    *rateCounter
}

func NewAnthropicProvider(cfg *config.ProviderConfig) *AnthropicProvider {
	return &AnthropicProvider{
		config:     cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout()},
		limiter:    newRateCounter(cfg.RateLimitRPM, cfg.RateLimitRPD),
	}
}

func (p *AnthropicProvider) Name() string {
	return "anthropic"
}

func (p *AnthropicProvider) IsConfigured() bool {
	return !config.IsPlaceholder(p.config.APIKey)
}

func (p *AnthropicProvider) RateLimitStatus() RateLimitStatus {
	return p.limiter.status()
}

// anthropic wire types
type anthropicContentBlock struct {
	Type   string           `json:"type"`
	Text   string           `json:"text,omitempty"`
	Source *anthropicSource `json:"source,omitempty"`
}

type anthropicSource struct {
	Type string `json:"type"`
	URL  string `json:"url"`
}

type anthropicMessage struct {
	Role    string                  `json:"role"`
	Content []anthropicContentBlock `json:"content"`
}

type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	System    string             `json:"system,omitempty"`
	Messages  []anthropicMessage `json:"messages"`
}

type anthropicResponse struct {
	Model   string `json:"model"`
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Usage struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Invoke sends the request to the messages endpoint and normalizes the reply
func (p *AnthropicProvider) Invoke(ctx context.Context, req *LLMRequest) (*LLMResponse, error) {
	p.limiter.record()

	body := anthropicRequest{
		Model:     p.config.Model,
		MaxTokens: req.MaxTokens,
	}
	if body.MaxTokens == 0 {
		body.MaxTokens = 4096
	}

	for _, m := range req.Messages {
		if m.Role == "system" {
			body.System = m.Content
			continue
		}
		blocks := []anthropicContentBlock{}
		if m.DocumentURL != "" {
			blockType := "document"
			if m.MimeType != "" && m.MimeType != "application/pdf" {
				blockType = "image"
			}
			blocks = append(blocks, anthropicContentBlock{
				Type:   blockType,
				Source: &anthropicSource{Type: "url", URL: m.DocumentURL},
			})
		}
		if m.Content != "" {
			blocks = append(blocks, anthropicContentBlock{Type: "text", Text: m.Content})
		}
		body.Messages = append(body.Messages, anthropicMessage{Role: m.Role, Content: blocks})
	}

	jsonData, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.config.BaseURL+"/messages", bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("x-api-key", p.config.APIKey)
	httpReq.Header.Set("anthropic-version", "2023-06-01")
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

	var result anthropicResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w, body: %s", err, string(respBody))
	}
	if result.Error != nil {
		return nil, &ProviderError{Provider: p.Name(), Status: resp.StatusCode, Message: result.Error.Message}
	}
	if len(result.Content) == 0 {
		return nil, &ProviderError{Provider: p.Name(), Status: resp.StatusCode, Message: "empty content in response"}
	}

	return &LLMResponse{
		Content:  result.Content[0].Text,
		Model:    result.Model,
		Provider: p.Name(),
		Usage: LLMUsage{
			InputTokens:  result.Usage.InputTokens,
			OutputTokens: result.Usage.OutputTokens,
		},
	}, nil
}
