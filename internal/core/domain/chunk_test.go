package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestChunkKind_IsValid tests kind validation
func TestChunkKind_IsValid(t *testing.T) {
	assert.True(t, KindArticle.IsValid())
	assert.True(t, KindSection.IsValid())
	assert.True(t, KindHeading.IsValid())
	assert.True(t, KindFragment.IsValid())
	assert.False(t, ChunkKind("paragraph").IsValid())
}

// TestBundle_Empty tests the no-knowledge-base state
func TestBundle_Empty(t *testing.T) {
	var nilBundle *Bundle
	assert.True(t, nilBundle.Empty())

	assert.True(t, (&Bundle{KBName: "empty.txt"}).Empty())

	loaded := &Bundle{
		KBName:      "politica.txt",
		Chunks:      []Chunk{{ID: 0, Kind: KindArticle, Label: "Articulo 1"}},
		ChunksTotal: 1,
	}
	assert.False(t, loaded.Empty())
}
