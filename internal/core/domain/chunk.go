package domain

// ChunkKind identifies which segmentation strategy produced a chunk.
type ChunkKind string

const (
	// KindArticle marks a chunk headed by an "Articulo N" line.
	KindArticle ChunkKind = "article"

	// KindSection marks a chunk headed by a numbered section line ("1. Valores").
	KindSection ChunkKind = "section"

	// KindHeading marks a chunk headed by a chapter or upper-case heading line.
	KindHeading ChunkKind = "heading"

	// KindFragment marks a fixed-size window chunk with no detected heading.
	KindFragment ChunkKind = "fragment"
)

// IsValid returns true if the chunk kind is recognised.
func (k ChunkKind) IsValid() bool {
	switch k {
	case KindArticle, KindSection, KindHeading, KindFragment:
		return true
	default:
		return false
	}
}

// Chunk represents an addressable span of the source policy text.
// Chunks are immutable once produced by a segmentation run.
type Chunk struct {
	// ID is the 0-based position within one segmentation run.
	ID int

	// Kind identifies the segmentation strategy that produced the chunk.
	Kind ChunkKind

	// ArticleID is the article locator ("3", "12a"), empty for non-articles.
	ArticleID string

	// SectionID is the numbered-section locator ("1", "1.2"), empty otherwise.
	SectionID string

	// Label is the human-readable provenance string
	// (e.g. "Articulo 3", "Seccion 1 - Valores", "Fragmento 2").
	Label string

	// Text is the chunk's whitespace-normalised text content.
	Text string
}
