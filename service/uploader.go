package service

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/Mustafabeshara/Dashboard2-sub006/config"
	"github.com/Mustafabeshara/Dashboard2-sub006/model"
	"github.com/google/uuid"
)

// ObjectStorage is the slice of MinIO the upload pipeline needs
type ObjectStorage interface {
	UploadBytes(ctx context.Context, objectName string, data []byte, contentType string) error
	GetPresignedURL(ctx context.Context, objectName string) (string, error)
}

// Extractor is the slice of the tender extractor the pipeline depends on
type Extractor interface {
	ExtractTender(ctx context.Context, sourceURL, mimeType, providerName string) (*model.TenderExtraction, *LLMResponse, error)
}

// FileMeta describes an incoming upload
type FileMeta struct {
	Name       string
	MimeType   string
	Module     string
	UploadedBy string
}

// UploadResult is the outcome of one document's upload-and-extract run
type UploadResult struct {
	DocumentID string                  `json:"documentId"`
	FileName   string                  `json:"fileName"`
	Success    bool                    `json:"success"`
	Data       *model.TenderExtraction `json:"data,omitempty"`
	Error      string                  `json:"error,omitempty"`
}

// UploadService orchestrates a single document: persist bytes, create the
// record, run extraction, commit a terminal status, fire notifications
type UploadService struct {
	store     *DocumentStore
	storage   ObjectStorage
	extractor Extractor
	notifier  Notifier
	config    *config.ExtractionConfig
}

func NewUploadService(store *DocumentStore, storage ObjectStorage, extractor Extractor, notifier Notifier, cfg *config.ExtractionConfig) *UploadService {
	return &UploadService{
		store:     store,
		storage:   storage,
		extractor: extractor,
		notifier:  notifier,
		config:    cfg,
	}
}

// ProcessUpload runs the full single-document pipeline. Extraction errors
// are captured into the result, never raised, so batch callers are not
// interrupted by one bad file. The document record is persisted before
// extraction starts and always reaches a terminal status.
func (s *UploadService) ProcessUpload(ctx context.Context, meta FileMeta, rawBytes []byte) UploadResult {
	doc, err := s.StoreDocument(ctx, meta, rawBytes)
	if err != nil {
		return UploadResult{FileName: meta.Name, Success: false, Error: err.Error()}
	}

	return s.extractDocument(ctx, doc, "")
}

// StoreDocument persists the raw bytes and creates a pending document record
// without starting extraction
func (s *UploadService) StoreDocument(ctx context.Context, meta FileMeta, rawBytes []byte) (*model.Document, error) {
	if meta.Module == "" {
		meta.Module = "tender"
	}
	if meta.MimeType == "" {
		meta.MimeType = MimeTypeForFile(meta.Name)
	}

	docID := uuid.New().String()
	objectName := fmt.Sprintf("%s/%s/%s", meta.Module, docID, meta.Name)

	if err := s.storage.UploadBytes(ctx, objectName, rawBytes, meta.MimeType); err != nil {
		return nil, fmt.Errorf("failed to store file: %w", err)
	}

	sourceURL, err := s.storage.GetPresignedURL(ctx, objectName)
	if err != nil {
		return nil, fmt.Errorf("failed to generate URL: %w", err)
	}

	doc := &model.Document{
		ID:         docID,
		Filename:   meta.Name,
		Module:     meta.Module,
		MimeType:   meta.MimeType,
		Size:       int64(len(rawBytes)),
		StorageURL: sourceURL,
		ObjectName: objectName,
		Status:     model.StatusPending,
		UploadedBy: meta.UploadedBy,
		CreatedAt:  time.Now(),
	}
	s.store.Save(doc)

	return doc, nil
}

// ExtractDocument runs (or re-runs) tender extraction for a stored document.
// A document that already has a completed extraction returns the cached
// result without touching the provider.
func (s *UploadService) ExtractDocument(ctx context.Context, documentID, providerName string) (UploadResult, *model.ExtractionResult, error) {
	doc := s.store.Get(documentID)
	if doc == nil || doc.Deleted {
		return UploadResult{}, nil, fmt.Errorf("document not found: %s", documentID)
	}

	if cached := s.store.GetCompletedExtraction(documentID, model.ExtractionTypeTender); cached != nil {
		slog.Info("returning cached extraction",
			"document_id", documentID,
			"extraction_id", cached.ID,
		)
		return UploadResult{
			DocumentID: doc.ID,
			FileName:   doc.Filename,
			Success:    true,
			Data:       cached.Payload,
		}, cached, nil
	}

	result := s.extractDocument(ctx, doc, providerName)
	return result, s.store.GetExtraction(documentID, model.ExtractionTypeTender), nil
}

// extractDocument is the shared extraction path. It commits a terminal
// document status on every exit, including error paths.
func (s *UploadService) extractDocument(ctx context.Context, doc *model.Document, providerName string) UploadResult {
	start := time.Now()

	s.store.UpdateStatus(doc.ID, model.StatusProcessing, "")

	extraction := &model.ExtractionResult{
		ID:         uuid.New().String(),
		DocumentID: doc.ID,
		Type:       model.ExtractionTypeTender,
		Status:     model.ExtractionProcessing,
		CreatedAt:  start,
	}
	s.store.SaveExtraction(extraction)

	payload, resp, err := s.extractor.ExtractTender(ctx, doc.StorageURL, doc.MimeType, providerName)

	extraction.ProcessingMs = time.Since(start).Milliseconds()
	if resp != nil {
		extraction.Provider = resp.Provider
		extraction.Model = resp.Model
	}

	if err != nil {
		extraction.Status = model.ExtractionFailed
		extraction.ErrorMsg = err.Error()
		s.store.SaveExtraction(extraction)
		s.store.UpdateStatus(doc.ID, model.StatusFailed, err.Error())

		s.notifier.Notify(ctx, Notification{
			Event:      "extraction.failed",
			DocumentID: doc.ID,
			FileName:   doc.Filename,
			UserID:     doc.UploadedBy,
			Success:    false,
			Message:    err.Error(),
		})

		slog.Warn("document extraction failed",
			"document_id", doc.ID,
			"filename", doc.Filename,
			"elapsed_ms", extraction.ProcessingMs,
			"error", err,
		)
		return UploadResult{DocumentID: doc.ID, FileName: doc.Filename, Success: false, Error: err.Error()}
	}

	extraction.Status = model.ExtractionCompleted
	extraction.Payload = payload
	extraction.Confidence = payload.Confidence
	extraction.NeedsReview = NeedsHumanReview(payload, s.config.ReviewConfidence) ||
		len(ValidateTenderExtraction(payload)) > 0
	s.store.SaveExtraction(extraction)
	s.store.UpdateStatus(doc.ID, model.StatusProcessed, "")

	s.notifier.Notify(ctx, Notification{
		Event:      "extraction.completed",
		DocumentID: doc.ID,
		FileName:   doc.Filename,
		UserID:     doc.UploadedBy,
		Success:    true,
	})

	slog.Info("document extraction completed",
		"document_id", doc.ID,
		"filename", doc.Filename,
		"confidence", payload.Confidence,
		"needs_review", extraction.NeedsReview,
		"elapsed_ms", extraction.ProcessingMs,
	)
	return UploadResult{DocumentID: doc.ID, FileName: doc.Filename, Success: true, Data: payload}
}

// MimeTypeForFile maps a filename extension to the mime type the pipeline
// accepts
func MimeTypeForFile(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdf":
		return "application/pdf"
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	default:
		return "application/octet-stream"
	}
}
