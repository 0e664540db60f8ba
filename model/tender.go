package model

import "encoding/json"

// TenderItem is one line item on a tender
type TenderItem struct {
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	Unit        string  `json:"unit,omitempty"`
}

// TenderExtraction is the structured payload produced by the AI extraction.
// Raw keeps the model's original JSON so a reviewer can see what the parser
// saw when a field looks wrong.
type TenderExtraction struct {
	Reference        string             `json:"reference"`
	Title            string             `json:"title"`
	Organization     string             `json:"organization"`
	ClosingDate      string             `json:"closing_date"` // YYYY-MM-DD
	Items            []TenderItem       `json:"items"`
	Notes            string             `json:"notes,omitempty"`
	Confidence       float64            `json:"confidence"`
	FieldConfidences map[string]float64 `json:"field_confidences,omitempty"`
	Raw              json.RawMessage    `json:"raw,omitempty"`
}

// BulkFileResult is the per-file outcome of a bulk ZIP upload
type BulkFileResult struct {
	FileName   string            `json:"fileName"`
	DocumentID string            `json:"documentId,omitempty"`
	Success    bool              `json:"success"`
	Data       *TenderExtraction `json:"data,omitempty"`
	Error      string            `json:"error,omitempty"`
}

// BulkResult aggregates a bulk upload run. TotalFiles counts eligible
// (processed) entries, not raw archive entries.
type BulkResult struct {
	TotalFiles int              `json:"totalFiles"`
	Successful int              `json:"successful"`
	Failed     int              `json:"failed"`
	Results    []BulkFileResult `json:"results"`
}
