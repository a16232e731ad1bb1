package driven

import (
	"github.com/iguales-labs/policykb-cli/internal/core/domain"
	"github.com/iguales-labs/policykb-cli/internal/index"
)

// IndexCache caches built lexical indexes by content hash so reloading
// identical KB text skips the index build.
type IndexCache interface {
	// Get returns the cached index for a content hash, if present.
	Get(hash string) (*index.Index, bool)

	// Put stores an index under a content hash, evicting the oldest
	// entry when the cache is full.
	Put(hash string, idx *index.Index)

	// BuildCached returns the cached index for the chunks' combined
	// content, building and storing it on a miss.
	BuildCached(chunks []domain.Chunk) *index.Index
}
