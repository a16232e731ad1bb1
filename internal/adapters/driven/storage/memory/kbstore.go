// Package memory provides in-memory store implementations, used in
// tests and in runs without a persistence directory.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/iguales-labs/policykb-cli/internal/core/domain"
	"github.com/iguales-labs/policykb-cli/internal/core/ports/driven"
)

// Ensure KBStore implements the interface.
var _ driven.KBStore = (*KBStore)(nil)

// KBStore is an in-memory implementation of driven.KBStore.
type KBStore struct {
	mu        sync.RWMutex
	documents map[string]domain.KBDocument
}

// NewKBStore creates a new in-memory KB store.
func NewKBStore() *KBStore {
	return &KBStore{
		documents: make(map[string]domain.KBDocument),
	}
}

// SaveDocument stores or updates a document. A document with the same
// content hash replaces the existing row, keeping the original ID.
func (s *KBStore) SaveDocument(_ context.Context, doc *domain.KBDocument) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, existing := range s.documents {
		if existing.Hash == doc.Hash {
			updated := *doc
			updated.ID = id
			s.documents[id] = updated
			return nil
		}
	}
	s.documents[doc.ID] = *doc
	return nil
}

// GetDocument retrieves a document by ID.
func (s *KBStore) GetDocument(_ context.Context, id string) (*domain.KBDocument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.documents[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &doc, nil
}

// GetDocumentByHash retrieves a document by content hash.
func (s *KBStore) GetDocumentByHash(_ context.Context, hash string) (*domain.KBDocument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for id := range s.documents {
		doc := s.documents[id]
		if doc.Hash == hash {
			return &doc, nil
		}
	}
	return nil, domain.ErrNotFound
}

// ListDocuments returns all stored documents, most recent first.
func (s *KBStore) ListDocuments(_ context.Context) ([]domain.KBDocument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]domain.KBDocument, 0, len(s.documents))
	for id := range s.documents {
		result = append(result, s.documents[id])
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].StoredAt.After(result[j].StoredAt)
	})
	return result, nil
}

// DeleteDocument removes a document by ID.
func (s *KBStore) DeleteDocument(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.documents, id)
	return nil
}
