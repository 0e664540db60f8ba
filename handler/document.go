package handler

import (
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/Mustafabeshara/Dashboard2-sub006/config"
	"github.com/Mustafabeshara/Dashboard2-sub006/middleware"
	"github.com/Mustafabeshara/Dashboard2-sub006/model"
	"github.com/Mustafabeshara/Dashboard2-sub006/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type DocumentHandler struct {
	store     *service.DocumentStore
	uploadSvc *service.UploadService
	commands  *service.CommandManager
	config    *config.ExtractionConfig
}

func NewDocumentHandler(store *service.DocumentStore, uploadSvc *service.UploadService, commands *service.CommandManager, cfg *config.ExtractionConfig) *DocumentHandler {
	return &DocumentHandler{
		store:     store,
		uploadSvc: uploadSvc,
		commands:  commands,
		config:    cfg,
	}
}

// Upload stores a document and creates its pending record. Extraction is a
// separate call so clients can upload first and extract later.
func (h *DocumentHandler) Upload(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file provided"})
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !h.allowedExtension(ext) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": fmt.Sprintf("Unsupported file type %s: only PDF and image files are allowed", ext),
		})
		return
	}

	if header.Size > h.config.MaxUploadSizeBytes {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": fmt.Sprintf("File exceeds maximum size of %d bytes", h.config.MaxUploadSizeBytes),
		})
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read file"})
		return
	}

	doc, err := h.uploadSvc.StoreDocument(c.Request.Context(), service.FileMeta{
		Name:       header.Filename,
		MimeType:   service.MimeTypeForFile(header.Filename),
		Module:     c.DefaultPostForm("module", "tender"),
		UploadedBy: middleware.GetUsername(c),
	}, data)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store document: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"documentId": doc.ID,
		"filename":   doc.Filename,
		"status":     doc.Status,
	})
}

// List returns all non-deleted documents, newest first
func (h *DocumentHandler) List(c *gin.Context) {
	docs := h.store.List(c.Query("module"))

	result := make([]gin.H, len(docs))
	for i, doc := range docs {
		result[i] = gin.H{
			"id":          doc.ID,
			"filename":    doc.Filename,
			"module":      doc.Module,
			"status":      doc.Status,
			"size":        doc.Size,
			"uploaded_by": doc.UploadedBy,
			"created_at":  doc.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
			"updated_at":  doc.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
		}
	}

	c.JSON(http.StatusOK, gin.H{"documents": result})
}

// Get returns a single document with its extraction result, if any
func (h *DocumentHandler) Get(c *gin.Context) {
	id := c.Param("id")

	doc := h.store.Get(id)
	if doc == nil || doc.Deleted {
		c.JSON(http.StatusNotFound, gin.H{"error": "Document not found"})
		return
	}

	resp := gin.H{"document": doc}
	if extraction := h.store.GetExtraction(id, model.ExtractionTypeTender); extraction != nil {
		resp["extraction"] = extraction
	}
	c.JSON(http.StatusOK, resp)
}

// GetStatus returns the processing status of a document
func (h *DocumentHandler) GetStatus(c *gin.Context) {
	id := c.Param("id")

	doc := h.store.Get(id)
	if doc == nil || doc.Deleted {
		c.JSON(http.StatusNotFound, gin.H{"error": "Document not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":        doc.ID,
		"status":    doc.Status,
		"error_msg": doc.ErrorMsg,
	})
}

// Delete soft-deletes a document. The mutation is registered with the
// command manager so it can be undone.
func (h *DocumentHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	username := middleware.GetUsername(c)

	doc := h.store.Get(id)
	if doc == nil || doc.Deleted {
		c.JSON(http.StatusNotFound, gin.H{"error": "Document not found"})
		return
	}

	store := h.store
	cmd := &model.Command{
		ID:          uuid.New().String(),
		Type:        model.CommandDelete,
		Description: fmt.Sprintf("Delete document %s", doc.Filename),
		UserID:      username,
		EntityType:  "document",
		EntityID:    id,
		Timestamp:   time.Now(),
		BeforeState: gin.H{"deleted": false},
		Execute: func() (any, error) {
			if !store.SetDeleted(id, true) {
				return nil, fmt.Errorf("document not found: %s", id)
			}
			return gin.H{"deleted": true}, nil
		},
		Undo: func() error {
			if !store.SetDeleted(id, false) {
				return fmt.Errorf("document not found: %s", id)
			}
			return nil
		},
	}

	if _, err := h.commands.Execute(cmd); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete document: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Document deleted", "command_id": cmd.ID})
}

func (h *DocumentHandler) allowedExtension(ext string) bool {
	for _, allowed := range h.config.AllowedExtensions {
		if ext == allowed {
			return true
		}
	}
	return false
}
