package service

import (
	"testing"

	"github.com/Mustafabeshara/Dashboard2-sub006/model"
)

func validTender() *model.TenderExtraction {
	return &model.TenderExtraction{
		Reference:    "TND-2025-001",
		Title:        "Supply of surgical gloves",
		Organization: "Ministry of Health",
		ClosingDate:  "2025-09-30",
		Items: []model.TenderItem{
			{Description: "Nitrile gloves, medium", Quantity: 5000, Unit: "box"},
		},
		Confidence: 0.92,
	}
}

func TestValidateTenderExtraction(t *testing.T) {
	tests := []struct {
		name       string
		mutate     func(*model.TenderExtraction)
		wantFields []string
	}{
		{
			name:       "valid payload",
			mutate:     func(p *model.TenderExtraction) {},
			wantFields: nil,
		},
		{
			name:       "missing reference",
			mutate:     func(p *model.TenderExtraction) { p.Reference = "  " },
			wantFields: []string{"reference"},
		},
		{
			name:       "missing title",
			mutate:     func(p *model.TenderExtraction) { p.Title = "" },
			wantFields: []string{"title"},
		},
		{
			name:       "missing organization",
			mutate:     func(p *model.TenderExtraction) { p.Organization = "" },
			wantFields: []string{"organization"},
		},
		{
			name:       "missing closing date",
			mutate:     func(p *model.TenderExtraction) { p.ClosingDate = "" },
			wantFields: []string{"closing_date"},
		},
		{
			name: "item without description",
			mutate: func(p *model.TenderExtraction) {
				p.Items[0].Description = ""
			},
			wantFields: []string{"items[0].description"},
		},
		{
			name: "negative quantity",
			mutate: func(p *model.TenderExtraction) {
				p.Items[0].Quantity = -1
			},
			wantFields: []string{"items[0].quantity"},
		},
		{
			name: "multiple violations",
			mutate: func(p *model.TenderExtraction) {
				p.Reference = ""
				p.Title = ""
			},
			wantFields: []string{"reference", "title"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload := validTender()
			tt.mutate(payload)

			errs := ValidateTenderExtraction(payload)
			if len(errs) != len(tt.wantFields) {
				t.Fatalf("Expected %d errors, got %d: %v", len(tt.wantFields), len(errs), errs)
			}
			for i, field := range tt.wantFields {
				if errs[i].Field != field {
					t.Errorf("Expected error field %s, got %s", field, errs[i].Field)
				}
			}
		})
	}
}

func TestValidateTenderExtractionNilPayload(t *testing.T) {
	errs := ValidateTenderExtraction(nil)
	if len(errs) != 1 {
		t.Fatalf("Expected 1 error for nil payload, got %d", len(errs))
	}
	if errs[0].Field != "payload" {
		t.Errorf("Expected payload error, got %s", errs[0].Field)
	}
}

func TestNeedsHumanReview(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*model.TenderExtraction)
		want   bool
	}{
		{
			name:   "confident complete payload",
			mutate: func(p *model.TenderExtraction) {},
			want:   false,
		},
		{
			name:   "low confidence",
			mutate: func(p *model.TenderExtraction) { p.Confidence = 0.5 },
			want:   true,
		},
		{
			name:   "confidence exactly at threshold",
			mutate: func(p *model.TenderExtraction) { p.Confidence = 0.7 },
			want:   false,
		},
		{
			name:   "missing reference",
			mutate: func(p *model.TenderExtraction) { p.Reference = "" },
			want:   true,
		},
		{
			name:   "missing closing date",
			mutate: func(p *model.TenderExtraction) { p.ClosingDate = "" },
			want:   true,
		},
		{
			name: "item with zero quantity",
			mutate: func(p *model.TenderExtraction) {
				p.Items = append(p.Items, model.TenderItem{Description: "Syringes", Quantity: 0})
			},
			want: true,
		},
		{
			name:   "no items at all",
			mutate: func(p *model.TenderExtraction) { p.Items = nil },
			want:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload := validTender()
			tt.mutate(payload)

			if got := NeedsHumanReview(payload, 0.7); got != tt.want {
				t.Errorf("NeedsHumanReview() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNeedsHumanReviewNilPayload(t *testing.T) {
	if !NeedsHumanReview(nil, 0.7) {
		t.Error("Expected nil payload to need review")
	}
}
