package domain

// SourceRef is one citation record handed to source compaction.
// It carries the provenance of a retrieved chunk as the chat layer
// displays it.
type SourceRef struct {
	// KBName is the knowledge-base display name (usually a filename).
	KBName string

	// Section is the section or article label of the matched chunk.
	Section string

	// Part is an optional multi-part indicator such as "1/3".
	Part string

	// Label is the raw chunk label, used as the citation text when
	// neither the KB name nor the section compacts to anything.
	Label string

	// Score is the relevance score of the underlying result.
	Score float64

	// Method names the retrieval stage for auditing (e.g. "bm25").
	Method string
}
