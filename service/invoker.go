package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// ErrNoProviderConfigured means no provider could be selected at all
var ErrNoProviderConfigured = errors.New("no AI provider configured")

// ErrUnknownProvider means an explicitly requested provider does not exist
var ErrUnknownProvider = errors.New("unknown provider")

// AllProvidersFailedError reports that every attempted provider failed.
// Last carries the final attempt's error; Attempts lists what was tried.
type AllProvidersFailedError struct {
	Attempts []ProviderAttempt
	Last     error
}

func (e *AllProvidersFailedError) Error() string {
	return fmt.Sprintf("all providers failed after %d attempts: %v", len(e.Attempts), e.Last)
}

func (e *AllProvidersFailedError) Unwrap() error {
	return e.Last
}

// ProviderAttempt records one provider try for error reporting
type ProviderAttempt struct {
	Provider string `json:"provider"`
	Error    string `json:"error"`
}

// Invoker routes completion requests to an ordered list of providers.
// Priority is fixed at construction: the vision/PDF-capable provider first,
// the rest as fallbacks.
type Invoker struct {
	providers []Provider
}

func NewInvoker(providers ...Provider) *Invoker {
	return &Invoker{providers: providers}
}

// AvailableProviders returns the configured providers in priority order.
// When none is configured, the first (default) provider is still returned so
// the call path stays exercised; its invocation fails at the network layer
// rather than at selection time.
func (inv *Invoker) AvailableProviders() []Provider {
	var out []Provider
	for _, p := range inv.providers {
		if p.IsConfigured() {
			out = append(out, p)
		}
	}
	if len(out) == 0 && len(inv.providers) > 0 {
		out = append(out, inv.providers[0])
	}
	return out
}

// Provider returns the named provider
func (inv *Invoker) Provider(name string) (Provider, bool) {
	for _, p := range inv.providers {
		if p.Name() == name {
			return p, true
		}
	}
	return nil, false
}

// Providers returns every registered provider in priority order
func (inv *Invoker) Providers() []Provider {
	return inv.providers
}

// Invoke runs the request against the attempt list and stops at the first
// success. With no explicit provider the list is the available providers
// capped at two entries: the selection plus exactly one fallback hop.
func (inv *Invoker) Invoke(ctx context.Context, req *LLMRequest, providerName string) (*LLMResponse, error) {
	attemptList, err := inv.attemptList(providerName)
	if err != nil {
		return nil, err
	}

	var attempts []ProviderAttempt
	var lastErr error
	for _, p := range attemptList {
		resp, err := p.Invoke(ctx, req)
		if err == nil {
			return resp, nil
		}
		slog.Warn("provider invocation failed",
			"provider", p.Name(),
			"error", err,
		)
		attempts = append(attempts, ProviderAttempt{Provider: p.Name(), Error: err.Error()})
		lastErr = err

		// A cancelled or timed-out context fails every remaining attempt the
		// same way; stop instead of burning fallback quota.
		if ctx.Err() != nil {
			break
		}
	}

	return nil, &AllProvidersFailedError{Attempts: attempts, Last: lastErr}
}

func (inv *Invoker) attemptList(providerName string) ([]Provider, error) {
	if len(inv.providers) == 0 {
		return nil, ErrNoProviderConfigured
	}

	if providerName != "" {
		p, ok := inv.Provider(providerName)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, providerName)
		}
		return []Provider{p}, nil
	}

	list := inv.AvailableProviders()
	if len(list) > 2 {
		list = list[:2]
	}
	return list, nil
}
