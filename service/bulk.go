package service

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/Mustafabeshara/Dashboard2-sub006/config"
	"github.com/Mustafabeshara/Dashboard2-sub006/model"
)

// Uploader is the slice of the upload service the bulk orchestrator uses
type Uploader interface {
	ProcessUpload(ctx context.Context, meta FileMeta, rawBytes []byte) UploadResult
}

// BulkService processes a ZIP archive of tender documents, one entry at a
// time, collecting independent per-file results
type BulkService struct {
	uploader Uploader
	config   *config.ExtractionConfig
}

func NewBulkService(uploader Uploader, cfg *config.ExtractionConfig) *BulkService {
	return &BulkService{uploader: uploader, config: cfg}
}

// BulkRequest is the bulk upload input
type BulkRequest struct {
	ZipFileName string `json:"zipFileName"`
	ZipFileData string `json:"zipFileData" binding:"required"` // base64
	UploadedBy  string `json:"-"`
}

// BulkExtract decodes the archive, filters eligible entries and runs the
// single-upload pipeline per entry in archive order. Archive-level
// violations fail the whole request; per-file failures only mark their own
// result entry.
func (s *BulkService) BulkExtract(ctx context.Context, req BulkRequest) (*model.BulkResult, error) {
	zipData, err := base64.StdEncoding.DecodeString(req.ZipFileData)
	if err != nil {
		return nil, fmt.Errorf("invalid base64 ZIP data: %w", err)
	}

	zipReader, err := zip.NewReader(bytes.NewReader(zipData), int64(len(zipData)))
	if err != nil {
		return nil, fmt.Errorf("failed to open ZIP: %w", err)
	}

	if len(zipReader.File) > s.config.MaxBulkFiles {
		return nil, fmt.Errorf("Too many files in archive: %d (maximum %d)", len(zipReader.File), s.config.MaxBulkFiles)
	}

	eligible := make([]*zip.File, 0, len(zipReader.File))
	for _, f := range zipReader.File {
		if f.FileInfo().IsDir() {
			continue
		}
		if s.isEligible(f.Name) {
			eligible = append(eligible, f)
		}
	}
	if len(eligible) == 0 {
		return nil, fmt.Errorf("No PDF or image files found in archive %s", req.ZipFileName)
	}

	slog.Info("bulk extraction started",
		"zip_file", req.ZipFileName,
		"total_entries", len(zipReader.File),
		"eligible", len(eligible),
	)

	result := &model.BulkResult{
		TotalFiles: len(eligible),
		Results:    make([]model.BulkFileResult, 0, len(eligible)),
	}

	// Entries are processed in archive order so result ordering is
	// deterministic for callers.
	for _, f := range eligible {
		entry := s.processEntry(ctx, f, req.UploadedBy)
		if entry.Success {
			result.Successful++
		} else {
			result.Failed++
		}
		result.Results = append(result.Results, entry)
	}

	slog.Info("bulk extraction finished",
		"zip_file", req.ZipFileName,
		"total", result.TotalFiles,
		"successful", result.Successful,
		"failed", result.Failed,
	)
	return result, nil
}

// processEntry handles one archive entry. The upload service already
// captures its own errors; the recover here is a second line of defense so
// one entry can never abort its siblings.
func (s *BulkService) processEntry(ctx context.Context, f *zip.File, uploadedBy string) (entry model.BulkFileResult) {
	name := filepath.Base(f.Name)
	entry = model.BulkFileResult{FileName: name}

	defer func() {
		if r := recover(); r != nil {
			slog.Error("panic while processing archive entry",
				"file", f.Name,
				"panic", r,
			)
			entry.Success = false
			entry.Error = fmt.Sprintf("internal error processing %s", name)
		}
	}()

	rc, err := f.Open()
	if err != nil {
		entry.Error = fmt.Sprintf("failed to open archive entry: %v", err)
		return entry
	}
	data, err := io.ReadAll(rc)
	rc.Close()
	if err != nil {
		entry.Error = fmt.Sprintf("failed to read archive entry: %v", err)
		return entry
	}

	res := s.uploader.ProcessUpload(ctx, FileMeta{
		Name:       name,
		MimeType:   MimeTypeForFile(name),
		Module:     "tender",
		UploadedBy: uploadedBy,
	}, data)

	entry.DocumentID = res.DocumentID
	entry.Success = res.Success
	entry.Data = res.Data
	entry.Error = res.Error
	return entry
}

func (s *BulkService) isEligible(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, allowed := range s.config.AllowedExtensions {
		if ext == allowed {
			return true
		}
	}
	return false
}
