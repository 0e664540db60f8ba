package service

import (
	"fmt"
	"strings"

	"github.com/Mustafabeshara/Dashboard2-sub006/model"
)

// ValidationError is one business-rule violation in an extraction payload
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateTenderExtraction checks the payload for required fields and
// well-formed line items. Pure; no I/O.
func ValidateTenderExtraction(payload *model.TenderExtraction) []ValidationError {
	var errs []ValidationError

	if payload == nil {
		return []ValidationError{{Field: "payload", Message: "payload is missing"}}
	}

	if strings.TrimSpace(payload.Reference) == "" {
		errs = append(errs, ValidationError{Field: "reference", Message: "reference code is required"})
	}
	if strings.TrimSpace(payload.Title) == "" {
		errs = append(errs, ValidationError{Field: "title", Message: "title is required"})
	}
	if strings.TrimSpace(payload.Organization) == "" {
		errs = append(errs, ValidationError{Field: "organization", Message: "organization is required"})
	}
	if strings.TrimSpace(payload.ClosingDate) == "" {
		errs = append(errs, ValidationError{Field: "closing_date", Message: "closing date is required"})
	}

	for i, item := range payload.Items {
		if strings.TrimSpace(item.Description) == "" {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("items[%d].description", i),
				Message: "line item description is required",
			})
		}
		if item.Quantity < 0 {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("items[%d].quantity", i),
				Message: "line item quantity must not be negative",
			})
		}
	}

	return errs
}

// NeedsHumanReview reports whether an extraction should be flagged for a
// human reviewer: low overall confidence, a missing required field, or a
// line item without a quantity. Pure; no I/O.
func NeedsHumanReview(payload *model.TenderExtraction, confidenceThreshold float64) bool {
	if payload == nil {
		return true
	}
	if payload.Confidence < confidenceThreshold {
		return true
	}
	if strings.TrimSpace(payload.Reference) == "" ||
		strings.TrimSpace(payload.Title) == "" ||
		strings.TrimSpace(payload.Organization) == "" ||
		strings.TrimSpace(payload.ClosingDate) == "" {
		return true
	}
	for _, item := range payload.Items {
		if item.Quantity == 0 {
			return true
		}
	}
	return false
}
