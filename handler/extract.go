package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Mustafabeshara/Dashboard2-sub006/middleware"
	"github.com/Mustafabeshara/Dashboard2-sub006/model"
	"github.com/Mustafabeshara/Dashboard2-sub006/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ExtractHandler struct {
	store     *service.DocumentStore
	uploadSvc *service.UploadService
	bulkSvc   *service.BulkService
	commands  *service.CommandManager
}

func NewExtractHandler(store *service.DocumentStore, uploadSvc *service.UploadService, bulkSvc *service.BulkService, commands *service.CommandManager) *ExtractHandler {
	return &ExtractHandler{
		store:     store,
		uploadSvc: uploadSvc,
		bulkSvc:   bulkSvc,
		commands:  commands,
	}
}

type ExtractRequest struct {
	DocumentID string `json:"documentId" binding:"required"`
	Provider   string `json:"provider,omitempty"`
}

// ExtractTender runs tender extraction for a stored document. A document
// with a completed extraction returns the cached result without another
// provider call.
func (h *ExtractHandler) ExtractTender(c *gin.Context) {
	var req ExtractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	if h.store.Get(req.DocumentID) == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Document not found"})
		return
	}

	result, extraction, err := h.uploadSvc.ExtractDocument(c.Request.Context(), req.DocumentID, req.Provider)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	if !result.Success {
		status := http.StatusInternalServerError
		if strings.Contains(result.Error, "timed out") {
			status = http.StatusGatewayTimeout
		}
		c.JSON(status, gin.H{
			"documentId": result.DocumentID,
			"success":    false,
			"error":      result.Error,
		})
		return
	}

	resp := gin.H{
		"documentId": result.DocumentID,
		"success":    true,
		"data":       result.Data,
	}
	if extraction != nil {
		resp["extractionId"] = extraction.ID
		resp["needsReview"] = extraction.NeedsReview
		resp["provider"] = extraction.Provider
	}
	c.JSON(http.StatusOK, resp)
}

// BulkExtract processes a base64 ZIP of tender documents and returns an
// independent result per eligible file
func (h *ExtractHandler) BulkExtract(c *gin.Context) {
	var req service.BulkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	req.UploadedBy = middleware.GetUsername(c)

	result, err := h.bulkSvc.BulkExtract(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}

type ReviewRequest struct {
	Approved bool `json:"approved"`
}

// ApproveReview flips the review-approval flag on a document's completed
// extraction, registered as an undoable command
func (h *ExtractHandler) ApproveReview(c *gin.Context) {
	id := c.Param("id")
	username := middleware.GetUsername(c)

	var req ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	extraction := h.store.GetCompletedExtraction(id, model.ExtractionTypeTender)
	if extraction == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "No completed extraction for document"})
		return
	}

	store := h.store
	previous := extraction.ReviewApproved
	approved := req.Approved
	cmd := &model.Command{
		ID:          uuid.New().String(),
		Type:        model.CommandUpdate,
		Description: fmt.Sprintf("Set review approval to %t for document %s", approved, id),
		UserID:      username,
		EntityType:  "extraction",
		EntityID:    extraction.ID,
		Timestamp:   time.Now(),
		BeforeState: gin.H{"review_approved": previous},
		Execute: func() (any, error) {
			if _, ok := store.SetReviewApproved(id, model.ExtractionTypeTender, approved); !ok {
				return nil, errors.New("extraction not found")
			}
			return gin.H{"review_approved": approved}, nil
		},
		Undo: func() error {
			if _, ok := store.SetReviewApproved(id, model.ExtractionTypeTender, previous); !ok {
				return errors.New("extraction not found")
			}
			return nil
		},
	}

	if _, err := h.commands.Execute(cmd); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update review approval: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"documentId":      id,
		"review_approved": approved,
		"command_id":      cmd.ID,
	})
}
