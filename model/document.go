package model

import (
	"time"
)

// Document represents an uploaded document tracked by the extraction pipeline
type Document struct {
	ID         string    `json:"id"`
	Filename   string    `json:"filename"`
	Module     string    `json:"module"` // owning module, e.g. "tender"
	MimeType   string    `json:"mime_type"`
	Size       int64     `json:"size"`
	StorageURL string    `json:"storage_url"`
	ObjectName string    `json:"object_name"`
	Status     string    `json:"status"` // pending, processing, processed, failed
	UploadedBy string    `json:"uploaded_by"`
	Deleted    bool      `json:"deleted"`
	ErrorMsg   string    `json:"error_msg,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Document status constants
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusProcessed  = "processed"
	StatusFailed     = "failed"
)

// Extraction type constants
const (
	ExtractionTypeTender = "tender"
)

// Extraction result status constants
const (
	ExtractionProcessing = "processing"
	ExtractionCompleted  = "completed"
	ExtractionFailed     = "failed"
)

// ExtractionResult holds the outcome of one extraction attempt for a document.
// At most one completed result per (document, type) is authoritative.
type ExtractionResult struct {
	ID             string            `json:"id"`
	DocumentID     string            `json:"document_id"`
	Type           string            `json:"type"`
	Provider       string            `json:"provider,omitempty"`
	Model          string            `json:"model,omitempty"`
	Status         string            `json:"status"` // processing, completed, failed
	Payload        *TenderExtraction `json:"payload,omitempty"`
	Confidence     float64           `json:"confidence"`
	ProcessingMs   int64             `json:"processing_ms"`
	NeedsReview    bool              `json:"needs_review"`
	ReviewApproved bool              `json:"review_approved"`
	ErrorMsg       string            `json:"error_msg,omitempty"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
}
