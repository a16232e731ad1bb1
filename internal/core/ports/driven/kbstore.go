package driven

import (
	"context"

	"github.com/iguales-labs/policykb-cli/internal/core/domain"
)

// KBStore persists raw knowledge-base documents.
// Backed by SQLite, or by memory for tests and ephemeral runs.
type KBStore interface {
	// SaveDocument stores or updates a document. Documents are keyed
	// by content hash: saving identical text twice updates the
	// existing row instead of creating a duplicate.
	SaveDocument(ctx context.Context, doc *domain.KBDocument) error

	// GetDocument retrieves a document by ID.
	GetDocument(ctx context.Context, id string) (*domain.KBDocument, error)

	// GetDocumentByHash retrieves a document by content hash.
	GetDocumentByHash(ctx context.Context, hash string) (*domain.KBDocument, error)

	// ListDocuments returns all stored documents, most recent first.
	ListDocuments(ctx context.Context) ([]domain.KBDocument, error)

	// DeleteDocument removes a document by ID.
	DeleteDocument(ctx context.Context, id string) error
}
