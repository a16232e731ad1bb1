package driving

import (
	"context"

	"github.com/iguales-labs/policykb-cli/internal/core/domain"
	"github.com/iguales-labs/policykb-cli/internal/sources"
)

// KBService provides knowledge-base loading and retrieval to external
// actors.
type KBService interface {
	// LoadKB segments and indexes raw policy text, replacing the
	// active bundle. Empty text yields an empty bundle, not an error.
	LoadKB(ctx context.Context, text, name, updatedAt string) (*domain.Bundle, error)

	// Retrieve returns the top-k chunks for a query against the
	// loaded bundle. Returns domain.ErrNoKB when no bundle is loaded
	// and domain.ErrInvalidInput for negative k.
	Retrieve(ctx context.Context, query string, k int) ([]domain.Result, error)

	// Bundle returns the active bundle, or nil when none is loaded.
	Bundle() *domain.Bundle

	// CompactSources builds the citation view for retrieval results.
	// maxSources of zero uses the configured budget; negative values
	// return domain.ErrInvalidInput.
	CompactSources(results []domain.Result, maxSources int) (sources.CompactView, error)

	// LastDebug returns a snapshot of the most recent retrieval's
	// diagnostics.
	LastDebug() domain.KBDebug

	// Mode returns the active answering mode.
	Mode() domain.KBMode

	// SetMode switches the answering mode, persisting it when a
	// config store is configured.
	SetMode(mode domain.KBMode) error
}
