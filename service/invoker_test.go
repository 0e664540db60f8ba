package service

import (
	"context"
	"errors"
	"testing"
)

// stubProvider is a scriptable Provider for invoker tests
type stubProvider struct {
	name       string
	configured bool
	invoke     func(ctx context.Context, req *LLMRequest) (*LLMResponse, error)
	calls      int
}

func (s *stubProvider) Name() string       { return s.name }
func (s *stubProvider) IsConfigured() bool { return s.configured }
func (s *stubProvider) Invoke(ctx context.Context, req *LLMRequest) (*LLMResponse, error) {
	s.calls++
	return s.invoke(ctx, req)
}
func (s *stubProvider) RateLimitStatus() RateLimitStatus {
	return RateLimitStatus{Available: true}
}

func okProvider(name string) *stubProvider {
	return &stubProvider{
		name:       name,
		configured: true,
		invoke: func(ctx context.Context, req *LLMRequest) (*LLMResponse, error) {
			return &LLMResponse{Content: "ok", Provider: name}, nil
		},
	}
}

func failProvider(name string, err error) *stubProvider {
	return &stubProvider{
		name:       name,
		configured: true,
		invoke: func(ctx context.Context, req *LLMRequest) (*LLMResponse, error) {
			return nil, err
		},
	}
}

func TestInvokeFirstProviderSucceeds(t *testing.T) {
	primary := okProvider("anthropic")
	fallback := okProvider("openai")
	inv := NewInvoker(primary, fallback)

	resp, err := inv.Invoke(context.Background(), &LLMRequest{}, "")
	if err != nil {
		t.Fatalf("Invoke failed: %v", err)
	}
	if resp.Provider != "anthropic" {
		t.Errorf("Expected primary provider, got %s", resp.Provider)
	}
	if fallback.calls != 0 {
		t.Errorf("Expected fallback untouched, got %d calls", fallback.calls)
	}
}

func TestInvokeFallsBackOnce(t *testing.T) {
	primary := failProvider("anthropic", errors.New("rate limited"))
	fallback := okProvider("openai")
	inv := NewInvoker(primary, fallback)

	resp, err := inv.Invoke(context.Background(), &LLMRequest{}, "")
	if err != nil {
		t.Fatalf("Invoke failed: %v", err)
	}
	if resp.Provider != "openai" {
		t.Errorf("Expected fallback provider, got %s", resp.Provider)
	}
	if primary.calls != 1 || fallback.calls != 1 {
		t.Errorf("Expected one call each, got primary=%d fallback=%d", primary.calls, fallback.calls)
	}
}

func TestInvokeAllProvidersFail(t *testing.T) {
	primary := failProvider("anthropic", errors.New("boom1"))
	fallback := failProvider("openai", errors.New("boom2"))
	inv := NewInvoker(primary, fallback)

	_, err := inv.Invoke(context.Background(), &LLMRequest{}, "")
	if err == nil {
		t.Fatal("Expected error when all providers fail")
	}

	var allFailed *AllProvidersFailedError
	if !errors.As(err, &allFailed) {
		t.Fatalf("Expected AllProvidersFailedError, got %T", err)
	}
	if len(allFailed.Attempts) != 2 {
		t.Errorf("Expected 2 recorded attempts, got %d", len(allFailed.Attempts))
	}
	if allFailed.Attempts[0].Provider != "anthropic" || allFailed.Attempts[1].Provider != "openai" {
		t.Errorf("Expected attempts in priority order, got %+v", allFailed.Attempts)
	}
	if allFailed.Last.Error() != "boom2" {
		t.Errorf("Expected last error boom2, got %v", allFailed.Last)
	}
}

func TestInvokeExplicitProviderNoFallback(t *testing.T) {
	primary := okProvider("anthropic")
	fallback := failProvider("openai", errors.New("boom"))
	inv := NewInvoker(primary, fallback)

	// Explicit selection fails without trying the other provider
	_, err := inv.Invoke(context.Background(), &LLMRequest{}, "openai")
	if err == nil {
		t.Fatal("Expected error from explicitly selected provider")
	}
	if primary.calls != 0 {
		t.Errorf("Expected primary untouched, got %d calls", primary.calls)
	}
}

func TestInvokeUnknownProvider(t *testing.T) {
	inv := NewInvoker(okProvider("anthropic"))

	_, err := inv.Invoke(context.Background(), &LLMRequest{}, "gemini")
	if !errors.Is(err, ErrUnknownProvider) {
		t.Errorf("Expected ErrUnknownProvider, got %v", err)
	}
}

func TestInvokeNoProviders(t *testing.T) {
	inv := NewInvoker()

	_, err := inv.Invoke(context.Background(), &LLMRequest{}, "")
	if !errors.Is(err, ErrNoProviderConfigured) {
		t.Errorf("Expected ErrNoProviderConfigured, got %v", err)
	}
}

func TestInvokeStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	primary := &stubProvider{
		name:       "anthropic",
		configured: true,
		invoke: func(ctx context.Context, req *LLMRequest) (*LLMResponse, error) {
			cancel()
			return nil, ctx.Err()
		},
	}
	fallback := okProvider("openai")
	inv := NewInvoker(primary, fallback)

	_, err := inv.Invoke(ctx, &LLMRequest{}, "")
	if err == nil {
		t.Fatal("Expected error with cancelled context")
	}
	if fallback.calls != 0 {
		t.Errorf("Expected no fallback attempt after cancellation, got %d calls", fallback.calls)
	}
}

func TestAvailableProviders(t *testing.T) {
	primary := okProvider("anthropic")
	fallback := okProvider("openai")
	fallback.configured = false
	inv := NewInvoker(primary, fallback)

	available := inv.AvailableProviders()
	if len(available) != 1 || available[0].Name() != "anthropic" {
		t.Errorf("Expected only configured provider, got %d", len(available))
	}

	// With nothing configured the default provider is still returned
	primary.configured = false
	available = inv.AvailableProviders()
	if len(available) != 1 || available[0].Name() != "anthropic" {
		t.Errorf("Expected default provider when none configured, got %d", len(available))
	}
}

func TestProviderLookup(t *testing.T) {
	inv := NewInvoker(okProvider("anthropic"), okProvider("openai"))

	p, ok := inv.Provider("openai")
	if !ok || p.Name() != "openai" {
		t.Errorf("Expected to find openai, got ok=%v", ok)
	}
	if _, ok := inv.Provider("gemini"); ok {
		t.Error("Expected lookup to fail for unknown provider")
	}
}
