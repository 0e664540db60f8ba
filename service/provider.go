package service

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// LLMMessage is one message in a provider conversation
type LLMMessage struct {
	Role    string `json:"role"` // system, user, assistant
	Content string `json:"content"`
	// DocumentURL, when set, asks the provider to fetch and read the
	// referenced document (PDF or image) alongside the text content.
	DocumentURL string `json:"document_url,omitempty"`
	MimeType    string `json:"mime_type,omitempty"`
}

// LLMRequest is a provider-agnostic completion request
type LLMRequest struct {
	Messages    []LLMMessage `json:"messages"`
	MaxTokens   int          `json:"max_tokens,omitempty"`
	Temperature float64      `json:"temperature,omitempty"`
}

// LLMUsage reports token accounting from the provider
type LLMUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// LLMResponse is the uniform result of a provider invocation
type LLMResponse struct {
	Content  string   `json:"content"`
	Model    string   `json:"model"`
	Provider string   `json:"provider"`
	Usage    LLMUsage `json:"usage"`
}

// ProviderError is a failure reported by a provider's HTTP API
type ProviderError struct {
	Provider string
	Status   int
	Message  string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s API error (status %d): %s", e.Provider, e.Status, e.Message)
}

// RateLimitStatus is a point-in-time view of a provider's remaining quota
type RateLimitStatus struct {
	Available       bool `json:"available"`
	MinuteRemaining int  `json:"minute_remaining"`
	DayRemaining    int  `json:"day_remaining"`
}

// Provider wraps a single external AI provider behind a uniform invoke call.
// Adapters do not retry; fallback across providers is the invoker's job.
type Provider interface {
	Name() string
	IsConfigured() bool
	Invoke(ctx context.Context, req *LLMRequest) (*LLMResponse, error)
	RateLimitStatus() RateLimitStatus
}

// rateCounter is a sliding counter that resets on minute and day boundaries.
// It is process-local and not a true token bucket.
type rateCounter struct {
	mu          sync.Mutex
	perMinute   int
	perDay      int
	minuteCount int
	dayCount    int
	minuteStart time.Time
	dayStart    time.Time
	now         func() time.Time
}

func newRateCounter(perMinute, perDay int) *rateCounter {
	n := time.Now()
	return &rateCounter{
		perMinute:   perMinute,
		perDay:      perDay,
		minuteStart: n,
		dayStart:    n,
		now:         time.Now,
	}
}

// record counts one request against both windows
func (r *rateCounter) record() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rollover()
	r.minuteCount++
	r.dayCount++
}

func (r *rateCounter) status() RateLimitStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rollover()

	minuteLeft := r.perMinute - r.minuteCount
	if minuteLeft < 0 {
		minuteLeft = 0
	}
	dayLeft := r.perDay - r.dayCount
	if dayLeft < 0 {
		dayLeft = 0
	}
	return RateLimitStatus{
		Available:       minuteLeft > 0 && dayLeft > 0,
		MinuteRemaining: minuteLeft,
		DayRemaining:    dayLeft,
	}
}

// rollover must be called with the lock held
func (r *rateCounter) rollover() {
	n := r.now()
	if n.Sub(r.minuteStart) >= time.Minute {
		r.minuteCount = 0
		r.minuteStart = n
	}
	if n.Sub(r.dayStart) >= 24*time.Hour {
		r.dayCount = 0
		r.dayStart = n
	}
}
