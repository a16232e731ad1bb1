package index

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iguales-labs/policykb-cli/internal/core/domain"
)

func corpus() []domain.Chunk {
	return []domain.Chunk{
		{ID: 0, Label: "Articulo 1", Text: "Securion es la plataforma interna de cumplimiento."},
		{ID: 1, Label: "Articulo 2", Text: "Los regalos de clientes deben declararse siempre."},
		{ID: 2, Label: "Articulo 3", Text: "Los conflictos de interes se informan al comite."},
	}
}

func TestBuild_EmptyMarker(t *testing.T) {
	idx := Build(nil)

	require.NotNil(t, idx)
	assert.True(t, idx.Empty())
	assert.Equal(t, 0, idx.Docs())
	assert.Empty(t, idx.ContentHash())
}

func TestBuild_Statistics(t *testing.T) {
	idx := Build(corpus())

	assert.False(t, idx.Empty())
	assert.Equal(t, 3, idx.Docs())
	assert.NotEmpty(t, idx.ContentHash())
	assert.True(t, idx.TokenSet(1)["regalos"])
	assert.Contains(t, idx.NormalizedText(0), "securion")
}

func TestBuild_PlaceholderForTokenlessChunk(t *testing.T) {
	chunks := []domain.Chunk{
		{ID: 0, Text: "el de la y"}, // stopwords only
		{ID: 1, Text: "Los regalos deben declararse."},
	}

	idx := Build(chunks)

	// The placeholder keeps the document length positive so avgdl and
	// length normalisation stay well-defined.
	assert.Equal(t, 2, idx.Docs())
	score, matched := idx.ScoreDoc(0, []string{"regalos"})
	assert.Zero(t, score)
	assert.Empty(t, matched)
}

func TestScoreDoc_RanksMatchingChunkHigher(t *testing.T) {
	idx := Build(corpus())
	terms := []string{"securion"}

	withTerm, matched := idx.ScoreDoc(0, terms)
	without, _ := idx.ScoreDoc(1, terms)

	assert.Greater(t, withTerm, 0.0)
	assert.Zero(t, without)
	assert.Equal(t, []string{"securion"}, matched)
}

func TestScoreDoc_AccumulatesOverTerms(t *testing.T) {
	idx := Build(corpus())

	single, _ := idx.ScoreDoc(1, []string{"regalos"})
	double, matched := idx.ScoreDoc(1, []string{"regalos", "clientes"})

	assert.Greater(t, double, single)
	assert.Len(t, matched, 2)
}

func TestIDF_RarerTermsScoreHigher(t *testing.T) {
	chunks := []domain.Chunk{
		{ID: 0, Text: "politica general politica"},
		{ID: 1, Text: "politica regalos especiales"},
		{ID: 2, Text: "politica conflictos"},
	}
	idx := Build(chunks)

	common := idx.IDF("politica") // in every document
	rare := idx.IDF("regalos")    // in one document

	assert.Greater(t, rare, common)
	assert.GreaterOrEqual(t, common, 0.0)
}

func TestBuild_HashStableForIdenticalText(t *testing.T) {
	first := Build(corpus())
	second := Build(corpus())

	assert.Equal(t, first.ContentHash(), second.ContentHash())
}

func TestCache_BuildCachedReusesIndex(t *testing.T) {
	cache := NewCache(4)

	first := cache.BuildCached(corpus())
	second := cache.BuildCached(corpus())

	assert.Same(t, first, second)
	assert.Equal(t, 1, cache.Len())
}

func TestCache_EvictsOldestBeyondBound(t *testing.T) {
	cache := NewCache(2)

	a := Build([]domain.Chunk{{Text: "primero"}})
	b := Build([]domain.Chunk{{Text: "segundo"}})
	c := Build([]domain.Chunk{{Text: "tercero"}})

	cache.Put(a.ContentHash(), a)
	cache.Put(b.ContentHash(), b)
	cache.Put(c.ContentHash(), c)

	_, ok := cache.Get(a.ContentHash())
	assert.False(t, ok)
	_, ok = cache.Get(c.ContentHash())
	assert.True(t, ok)
	assert.Equal(t, 2, cache.Len())
}

func TestCache_ConcurrentAccess(t *testing.T) {
	cache := NewCache(4)
	chunks := corpus()

	done := make(chan struct{})
	for i := 0; i < 8; i++ {
		go func() {
			defer func() { done <- struct{}{} }()
			for j := 0; j < 50; j++ {
				idx := cache.BuildCached(chunks)
				if idx.Empty() {
					t.Error("unexpected empty index")
					return
				}
			}
		}()
	}
	for i := 0; i < 8; i++ {
		<-done
	}
}
