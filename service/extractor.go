package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Mustafabeshara/Dashboard2-sub006/config"
	"github.com/Mustafabeshara/Dashboard2-sub006/model"
)

// ErrExtractionParse means the provider answered but its output did not
// match the expected structured shape. Distinct from provider and timeout
// failures so callers can report it separately.
var ErrExtractionParse = errors.New("extraction output did not match expected shape")

// TimeoutError reports that an extraction did not resolve in time. The
// underlying provider call is abandoned, not cancelled; a late result is
// discarded.
type TimeoutError struct {
	Message string
	After   time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s (after %s)", e.Message, e.After)
}

// IsTimeout reports whether err is an extraction timeout
func IsTimeout(err error) bool {
	var te *TimeoutError
	return errors.As(err, &te)
}

const tenderSystemPrompt = `You are a tender document parser for a medical distribution company. ` +
	`Read the attached tender document and return ONLY a JSON object matching the provided schema. ` +
	`Extract the tender reference code, title, issuing organization, closing date (YYYY-MM-DD), ` +
	`line items (description, quantity, unit) and any notable notes. ` +
	`Report a confidence score between 0 and 1 for each field and overall. ` +
	`Do not invent values; use an empty string for fields that are not present and never output null.`

// TenderExtractor turns a document reference into a structured tender record
type TenderExtractor struct {
	invoker *Invoker
	config  *config.ExtractionConfig
}

func NewTenderExtractor(invoker *Invoker, cfg *config.ExtractionConfig) *TenderExtractor {
	return &TenderExtractor{invoker: invoker, config: cfg}
}

// ExtractTender extracts structured tender data from the document at
// sourceURL, bounded by the configured timeout
func (e *TenderExtractor) ExtractTender(ctx context.Context, sourceURL, mimeType, providerName string) (*model.TenderExtraction, *LLMResponse, error) {
	type outcome struct {
		payload *model.TenderExtraction
		resp    *LLMResponse
	}

	result, err := withTimeout(ctx, e.config.Timeout(), "tender extraction timed out", func() (outcome, error) {
		payload, resp, err := e.extract(ctx, sourceURL, mimeType, providerName)
		return outcome{payload: payload, resp: resp}, err
	})
	// result.resp survives a parse failure so callers can still record which
	// provider and model answered
	return result.payload, result.resp, err
}

func (e *TenderExtractor) extract(ctx context.Context, sourceURL, mimeType, providerName string) (*model.TenderExtraction, *LLMResponse, error) {
	schema := BuildTenderJSONSchema()
	schemaJSON, _ := json.MarshalIndent(schema, "", "  ")

	req := &LLMRequest{
		MaxTokens: 4096,
		Messages: []LLMMessage{
			{Role: "system", Content: tenderSystemPrompt},
			{
				Role:        "user",
				Content:     "Extract the tender data from this document.\n\nJSON Schema:\n" + string(schemaJSON),
				DocumentURL: sourceURL,
				MimeType:    mimeType,
			},
		},
	}

	resp, err := e.invoker.Invoke(ctx, req, providerName)
	if err != nil {
		return nil, nil, err
	}

	payload, err := parseTenderResponse(schema, resp.Content)
	if err != nil {
		slog.Warn("tender extraction parse failed",
			"provider", resp.Provider,
			"model", resp.Model,
			"error", err,
		)
		return nil, resp, err
	}

	return payload, resp, nil
}

// parseTenderResponse validates the model output against the schema and
// unmarshals it, keeping the raw JSON as an escape hatch on the payload
func parseTenderResponse(schema map[string]any, content string) (*model.TenderExtraction, error) {
	raw := []byte(extractJSONBlock(content))

	if err := ValidateJSONAgainstSchema(schema, raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExtractionParse, err)
	}

	var payload model.TenderExtraction
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExtractionParse, err)
	}
	if payload.Items == nil {
		payload.Items = []model.TenderItem{}
	}
	payload.Raw = json.RawMessage(raw)
	return &payload, nil
}

// extractJSONBlock strips markdown code fences some models wrap around JSON
func extractJSONBlock(content string) string {
	s := strings.TrimSpace(content)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		if idx := strings.LastIndex(s, "```"); idx >= 0 {
			s = s[:idx]
		}
		s = strings.TrimSpace(s)
	}
	return s
}

// withTimeout runs fn and gives up after d. The in-flight call is abandoned
// rather than cancelled: no signal is propagated downstream, and a result
// arriving after the deadline is discarded.
func withTimeout[T any](ctx context.Context, d time.Duration, msg string, fn func() (T, error)) (T, error) {
	type result struct {
		value T
		err   error
	}
	done := make(chan result, 1)

	go func() {
		v, err := fn()
		done <- result{value: v, err: err}
	}()

	timer := time.NewTimer(d)
	defer timer.Stop()

	var zero T
	select {
	case r := <-done:
		return r.value, r.err
	case <-ctx.Done():
		return zero, ctx.Err()
	case <-timer.C:
		return zero, &TimeoutError{Message: msg, After: d}
	}
}
