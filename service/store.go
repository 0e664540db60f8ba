package service

import (
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/Mustafabeshara/Dashboard2-sub006/config"
	"github.com/Mustafabeshara/Dashboard2-sub006/model"
)

// DocumentStore is an in-memory store for documents and their extraction
// results. In production this should be replaced with a database.
type DocumentStore struct {
	documents    map[string]*model.Document
	extractions  map[string]map[string]*model.ExtractionResult // docID -> type -> result
	mu           sync.RWMutex
	maxDocuments int // 0 = unlimited
}

func NewDocumentStore(cfg *config.StoreConfig) *DocumentStore {
	maxDocuments := 0
	if cfg != nil && cfg.MaxDocuments > 0 {
		maxDocuments = cfg.MaxDocuments
	}
	return &DocumentStore{
		documents:    make(map[string]*model.Document),
		extractions:  make(map[string]map[string]*model.ExtractionResult),
		maxDocuments: maxDocuments,
	}
}

func (s *DocumentStore) Save(doc *model.Document) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc.UpdatedAt = time.Now()
	s.documents[doc.ID] = doc

	s.cleanupIfNeeded()
}

func (s *DocumentStore) Get(id string) *model.Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.documents[id]
}

// List returns all non-deleted documents for a module, newest first
func (s *DocumentStore) List(module string) []*model.Document {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*model.Document
	for _, d := range s.documents {
		if d.Deleted {
			continue
		}
		if module == "" || d.Module == module {
			result = append(result, d)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result
}

// UpdateStatus moves a document through its lifecycle; errMsg accompanies
// the failed state
func (s *DocumentStore) UpdateStatus(id, status, errMsg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if d, ok := s.documents[id]; ok {
		d.Status = status
		d.ErrorMsg = errMsg
		d.UpdatedAt = time.Now()
	}
}

// SetDeleted flips the soft-delete flag. Restore is the undo path of an
// admin delete command.
func (s *DocumentStore) SetDeleted(id string, deleted bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.documents[id]
	if !ok {
		return false
	}
	d.Deleted = deleted
	d.UpdatedAt = time.Now()
	return true
}

// Remove hard-deletes a document and its extractions (explicit admin action)
func (s *DocumentStore) Remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.documents, id)
	delete(s.extractions, id)
}

// SaveExtraction stores an extraction result for (document, type)
func (s *DocumentStore) SaveExtraction(res *model.ExtractionResult) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res.UpdatedAt = time.Now()
	byType, ok := s.extractions[res.DocumentID]
	if !ok {
		byType = make(map[string]*model.ExtractionResult)
		s.extractions[res.DocumentID] = byType
	}
	byType[res.Type] = res
}

// GetExtraction returns the extraction result for (document, type), if any
func (s *DocumentStore) GetExtraction(documentID, extractionType string) *model.ExtractionResult {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if byType, ok := s.extractions[documentID]; ok {
		return byType[extractionType]
	}
	return nil
}

// GetCompletedExtraction returns the authoritative completed extraction for
// (document, type), or nil. Re-processing a document that has one is a
// no-op that returns this cached result.
func (s *DocumentStore) GetCompletedExtraction(documentID, extractionType string) *model.ExtractionResult {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if byType, ok := s.extractions[documentID]; ok {
		if res := byType[extractionType]; res != nil && res.Status == model.ExtractionCompleted {
			return res
		}
	}
	return nil
}

// SetReviewApproved flips the review flag on a completed extraction and
// returns the previous value
func (s *DocumentStore) SetReviewApproved(documentID, extractionType string, approved bool) (bool, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	byType, ok := s.extractions[documentID]
	if !ok {
		return false, false
	}
	res := byType[extractionType]
	if res == nil {
		return false, false
	}
	prev := res.ReviewApproved
	res.ReviewApproved = approved
	res.UpdatedAt = time.Now()
	return prev, true
}

// cleanupIfNeeded removes the oldest documents when the store exceeds its
// bound. Must be called with lock held.
func (s *DocumentStore) cleanupIfNeeded() {
	if s.maxDocuments <= 0 {
		return
	}
	if len(s.documents) <= s.maxDocuments {
		return
	}

	docs := make([]*model.Document, 0, len(s.documents))
	for _, d := range s.documents {
		docs = append(docs, d)
	}
	sort.Slice(docs, func(i, j int) bool {
		return docs[i].CreatedAt.Before(docs[j].CreatedAt)
	})

	removeCount := len(docs) - s.maxDocuments
	for i := 0; i < removeCount; i++ {
		slog.Info("auto-cleaning old document",
			"document_id", docs[i].ID,
			"created_at", docs[i].CreatedAt,
		)
		delete(s.documents, docs[i].ID)
		delete(s.extractions, docs[i].ID)
	}
}

// Count returns the number of documents in the store
func (s *DocumentStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.documents)
}
