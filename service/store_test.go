package service

import (
	"fmt"
	"testing"
	"time"

	"github.com/Mustafabeshara/Dashboard2-sub006/config"
	"github.com/Mustafabeshara/Dashboard2-sub006/model"
)

func newTestDocument(id string, createdAt time.Time) *model.Document {
	return &model.Document{
		ID:        id,
		Filename:  id + ".pdf",
		Module:    "tender",
		Status:    model.StatusPending,
		CreatedAt: createdAt,
	}
}

func TestStoreSaveAndGet(t *testing.T) {
	store := NewDocumentStore(nil)

	doc := newTestDocument("doc1", time.Now())
	store.Save(doc)

	got := store.Get("doc1")
	if got == nil {
		t.Fatal("Expected to get saved document")
	}
	if got.Filename != "doc1.pdf" {
		t.Errorf("Expected filename doc1.pdf, got %s", got.Filename)
	}

	if store.Get("nonexistent") != nil {
		t.Error("Expected nil for non-existent document")
	}
}

func TestStoreList(t *testing.T) {
	store := NewDocumentStore(nil)

	now := time.Now()
	store.Save(newTestDocument("old", now.Add(-2*time.Hour)))
	store.Save(newTestDocument("mid", now.Add(-time.Hour)))
	store.Save(newTestDocument("new", now))

	docs := store.List("")
	if len(docs) != 3 {
		t.Fatalf("Expected 3 documents, got %d", len(docs))
	}
	// Newest first
	if docs[0].ID != "new" || docs[1].ID != "mid" || docs[2].ID != "old" {
		t.Errorf("Expected newest-first order, got %s, %s, %s", docs[0].ID, docs[1].ID, docs[2].ID)
	}
}

func TestStoreListFiltersDeletedAndModule(t *testing.T) {
	store := NewDocumentStore(nil)

	doc := newTestDocument("doc1", time.Now())
	store.Save(doc)
	other := newTestDocument("doc2", time.Now())
	other.Module = "invoice"
	store.Save(other)

	if got := len(store.List("tender")); got != 1 {
		t.Errorf("Expected 1 tender document, got %d", got)
	}

	store.SetDeleted("doc1", true)
	if got := len(store.List("tender")); got != 0 {
		t.Errorf("Expected 0 tender documents after delete, got %d", got)
	}

	// Soft-deleted documents are still reachable by ID
	if store.Get("doc1") == nil {
		t.Error("Expected soft-deleted document to remain in store")
	}
}

func TestStoreUpdateStatus(t *testing.T) {
	store := NewDocumentStore(nil)
	store.Save(newTestDocument("doc1", time.Now()))

	store.UpdateStatus("doc1", model.StatusFailed, "provider timed out")

	doc := store.Get("doc1")
	if doc.Status != model.StatusFailed {
		t.Errorf("Expected status failed, got %s", doc.Status)
	}
	if doc.ErrorMsg != "provider timed out" {
		t.Errorf("Expected error message, got %s", doc.ErrorMsg)
	}

	// Unknown document is a no-op
	store.UpdateStatus("nonexistent", model.StatusProcessed, "")
}

func TestStoreSetDeleted(t *testing.T) {
	store := NewDocumentStore(nil)
	store.Save(newTestDocument("doc1", time.Now()))

	if !store.SetDeleted("doc1", true) {
		t.Error("Expected SetDeleted to succeed")
	}
	if !store.Get("doc1").Deleted {
		t.Error("Expected document to be marked deleted")
	}

	// Undo path restores
	if !store.SetDeleted("doc1", false) {
		t.Error("Expected restore to succeed")
	}
	if store.Get("doc1").Deleted {
		t.Error("Expected document to be restored")
	}

	if store.SetDeleted("nonexistent", true) {
		t.Error("Expected SetDeleted to fail for unknown document")
	}
}

func TestStoreExtractions(t *testing.T) {
	store := NewDocumentStore(nil)
	store.Save(newTestDocument("doc1", time.Now()))

	if store.GetExtraction("doc1", model.ExtractionTypeTender) != nil {
		t.Error("Expected no extraction initially")
	}

	store.SaveExtraction(&model.ExtractionResult{
		ID:         "ext1",
		DocumentID: "doc1",
		Type:       model.ExtractionTypeTender,
		Status:     model.ExtractionFailed,
	})

	if store.GetExtraction("doc1", model.ExtractionTypeTender) == nil {
		t.Error("Expected to find saved extraction")
	}
	// Failed results are not authoritative
	if store.GetCompletedExtraction("doc1", model.ExtractionTypeTender) != nil {
		t.Error("Expected no completed extraction for failed result")
	}

	store.SaveExtraction(&model.ExtractionResult{
		ID:         "ext2",
		DocumentID: "doc1",
		Type:       model.ExtractionTypeTender,
		Status:     model.ExtractionCompleted,
		Confidence: 0.9,
	})

	completed := store.GetCompletedExtraction("doc1", model.ExtractionTypeTender)
	if completed == nil {
		t.Fatal("Expected completed extraction")
	}
	if completed.ID != "ext2" {
		t.Errorf("Expected latest result ext2, got %s", completed.ID)
	}
}

func TestStoreSetReviewApproved(t *testing.T) {
	store := NewDocumentStore(nil)
	store.SaveExtraction(&model.ExtractionResult{
		ID:         "ext1",
		DocumentID: "doc1",
		Type:       model.ExtractionTypeTender,
		Status:     model.ExtractionCompleted,
	})

	prev, ok := store.SetReviewApproved("doc1", model.ExtractionTypeTender, true)
	if !ok {
		t.Fatal("Expected SetReviewApproved to succeed")
	}
	if prev {
		t.Error("Expected previous value false")
	}

	prev, ok = store.SetReviewApproved("doc1", model.ExtractionTypeTender, false)
	if !ok || !prev {
		t.Errorf("Expected previous value true, got prev=%v ok=%v", prev, ok)
	}

	if _, ok := store.SetReviewApproved("nonexistent", model.ExtractionTypeTender, true); ok {
		t.Error("Expected failure for unknown document")
	}
}

func TestStoreRemove(t *testing.T) {
	store := NewDocumentStore(nil)
	store.Save(newTestDocument("doc1", time.Now()))
	store.SaveExtraction(&model.ExtractionResult{
		ID:         "ext1",
		DocumentID: "doc1",
		Type:       model.ExtractionTypeTender,
		Status:     model.ExtractionCompleted,
	})

	store.Remove("doc1")

	if store.Get("doc1") != nil {
		t.Error("Expected document to be removed")
	}
	if store.GetExtraction("doc1", model.ExtractionTypeTender) != nil {
		t.Error("Expected extractions to be removed with document")
	}
}

func TestStoreCleanup(t *testing.T) {
	store := NewDocumentStore(&config.StoreConfig{MaxDocuments: 3})

	now := time.Now()
	for i := 0; i < 5; i++ {
		id := fmt.Sprintf("doc%d", i)
		store.Save(newTestDocument(id, now.Add(time.Duration(i)*time.Minute)))
	}

	if store.Count() != 3 {
		t.Errorf("Expected 3 documents after cleanup, got %d", store.Count())
	}

	// Oldest were evicted, newest kept
	if store.Get("doc0") != nil || store.Get("doc1") != nil {
		t.Error("Expected oldest documents to be evicted")
	}
	if store.Get("doc4") == nil {
		t.Error("Expected newest document to be kept")
	}
}
