package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/iguales-labs/policykb-cli/internal/core/domain"
	"github.com/iguales-labs/policykb-cli/internal/core/ports/driven"
	"github.com/iguales-labs/policykb-cli/internal/core/ports/driving"
	"github.com/iguales-labs/policykb-cli/internal/index"
	"github.com/iguales-labs/policykb-cli/internal/logger"
	"github.com/iguales-labs/policykb-cli/internal/retrieval"
	"github.com/iguales-labs/policykb-cli/internal/segmenter"
	"github.com/iguales-labs/policykb-cli/internal/sources"
)

// Ensure KBService implements the interface.
var _ driving.KBService = (*KBService)(nil)

// Config keys for KB settings storage.
const (
	keyKBMode     = "kb.mode"
	keyTopK       = "retrieval.top_k"
	keyMaxSources = "sources.max"
)

// KBService owns the active knowledge base: it segments raw policy
// text into chunks, keeps the lexical index (through the cache), runs
// retrieval, and builds the citation view. Safe for concurrent use.
type KBService struct {
	segmenter   *segmenter.Segmenter
	cache       driven.IndexCache
	kbStore     driven.KBStore
	configStore driven.ConfigStore

	mu     sync.RWMutex
	bundle *domain.Bundle
	idx    *index.Index
	debug  domain.KBDebug
	mode   domain.KBMode
}

// NewKBService creates a new KB service.
// The kbStore and configStore parameters are optional (can be nil).
func NewKBService(cache driven.IndexCache, kbStore driven.KBStore, configStore driven.ConfigStore) *KBService {
	if cache == nil {
		cache = index.NewCache(index.DefaultCacheSize)
	}
	s := &KBService{
		segmenter:   segmenter.New(),
		cache:       cache,
		kbStore:     kbStore,
		configStore: configStore,
		mode:        domain.KBModeGeneral,
	}
	if configStore != nil {
		s.mode = domain.NormalizeKBMode(configStore.GetString(keyKBMode))
	}
	return s
}

// SetSegmenter replaces the segmenter, for callers that tune chunking.
func (s *KBService) SetSegmenter(seg *segmenter.Segmenter) {
	if seg != nil {
		s.segmenter = seg
	}
}

// LoadKB segments and indexes raw policy text, replacing the active
// bundle. The updatedAt marker is opaque and echoed into the bundle
// unchanged. Empty text yields an empty bundle.
func (s *KBService) LoadKB(ctx context.Context, text, name, updatedAt string) (*domain.Bundle, error) {
	logger.Section("KB Load")

	name = strings.TrimSpace(name)
	if name == "" {
		name = domain.DefaultKBName
	}

	text = strings.TrimSpace(text)
	if text == "" {
		logger.Debug("Empty KB text, loading empty bundle")
		bundle := &domain.Bundle{KBName: name, KBUpdatedAt: updatedAt}
		s.mu.Lock()
		s.bundle = bundle
		s.idx = index.Build(nil)
		s.mu.Unlock()
		return bundle, nil
	}

	hash := index.Hash(text)
	logger.Debug("KB %q: %d bytes, hash %s", name, len(text), hash[:12])

	chunks := s.segmenter.Segment(text)
	idx := s.cache.BuildCached(chunks)
	logger.Info("Segmented into %d chunks", len(chunks))

	bundle := &domain.Bundle{
		KBName:      name,
		KBHash:      hash,
		KBUpdatedAt: updatedAt,
		Chunks:      chunks,
		ChunksTotal: len(chunks),
	}

	if s.kbStore != nil {
		doc := &domain.KBDocument{
			ID:        uuid.NewString(),
			Name:      name,
			Hash:      hash,
			Text:      text,
			UpdatedAt: updatedAt,
			StoredAt:  time.Now().UTC(),
		}
		if err := s.kbStore.SaveDocument(ctx, doc); err != nil {
			return nil, fmt.Errorf("saving kb document: %w", err)
		}
		logger.Debug("Persisted KB document %s", doc.ID)
	}

	s.mu.Lock()
	s.bundle = bundle
	s.idx = idx
	s.mu.Unlock()

	return bundle, nil
}

// Retrieve returns the top-k chunks for a query against the loaded
// bundle and records the retrieval diagnostics. k of zero uses the
// configured result count; negative k returns domain.ErrInvalidInput.
func (s *KBService) Retrieve(ctx context.Context, query string, k int) ([]domain.Result, error) {
	if k < 0 {
		return nil, fmt.Errorf("%w: negative k %d", domain.ErrInvalidInput, k)
	}
	if k == 0 {
		k = s.TopK()
	}

	s.mu.RLock()
	bundle := s.bundle
	idx := s.idx
	s.mu.RUnlock()

	if bundle == nil {
		return nil, domain.ErrNoKB
	}

	logger.Section("KB Retrieval")
	logger.Debug("Query: %q, k=%d", query, k)

	results, debug := retrieval.Retrieve(query, idx, bundle.Chunks, retrieval.Options{
		K:      k,
		KBName: bundle.KBName,
	})
	logger.Info("Retrieved %d chunks (%s)", len(results), debug.Reason)

	s.mu.Lock()
	s.debug = debug
	s.mu.Unlock()

	return results, nil
}

// Bundle returns the active bundle, or nil when none is loaded.
func (s *KBService) Bundle() *domain.Bundle {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.bundle
}

// CompactSources builds the citation view for retrieval results.
// maxSources of zero falls back to the configured or default budget;
// negative values violate the contract and return
// domain.ErrInvalidInput.
func (s *KBService) CompactSources(results []domain.Result, maxSources int) (sources.CompactView, error) {
	if maxSources < 0 {
		return sources.CompactView{}, fmt.Errorf("%w: negative max sources %d", domain.ErrInvalidInput, maxSources)
	}
	if maxSources == 0 {
		maxSources = s.maxSources()
	}

	s.mu.RLock()
	kbName := ""
	if s.bundle != nil {
		kbName = s.bundle.KBName
	}
	s.mu.RUnlock()

	refs := make([]domain.SourceRef, len(results))
	for i, res := range results {
		refs[i] = domain.SourceRef{
			KBName:  kbName,
			Section: res.Chunk.Label,
			Label:   res.Chunk.Label,
			Score:   res.Score,
			Method:  string(res.MatchType),
		}
	}
	return sources.BuildCompactView(refs, maxSources, sources.MaxItemLen)
}

// LastDebug returns a snapshot of the most recent retrieval's
// diagnostics.
func (s *KBService) LastDebug() domain.KBDebug {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.debug
}

// Mode returns the active answering mode.
func (s *KBService) Mode() domain.KBMode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.mode
}

// SetMode switches the answering mode and persists it when a config
// store is configured.
func (s *KBService) SetMode(mode domain.KBMode) error {
	if !mode.IsValid() {
		return fmt.Errorf("%w: unknown kb mode %q", domain.ErrInvalidInput, string(mode))
	}

	s.mu.Lock()
	s.mode = mode
	s.mu.Unlock()

	if s.configStore != nil {
		if err := s.configStore.Set(keyKBMode, string(mode)); err != nil {
			return fmt.Errorf("persisting kb mode: %w", err)
		}
	}
	logger.Info("KB mode set to %s", mode)
	return nil
}

// TopK returns the configured result count, defaulting to the
// retrieval default.
func (s *KBService) TopK() int {
	if s.configStore != nil {
		if k := s.configStore.GetInt(keyTopK); k > 0 {
			return k
		}
	}
	return retrieval.DefaultK
}

func (s *KBService) maxSources() int {
	if s.configStore != nil {
		if n := s.configStore.GetInt(keyMaxSources); n > 0 {
			return n
		}
	}
	return sources.MaxSources
}
