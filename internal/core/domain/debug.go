package domain

// DebugCandidate is one entry of the retrieval debug snapshot: a chunk
// with the best score any matching stage assigned it, whether or not it
// made the final cut.
type DebugCandidate struct {
	// ChunkID identifies the candidate chunk.
	ChunkID int

	// Label is the chunk's provenance label.
	Label string

	// Score is the best score across the matching stages.
	Score float64

	// Overlap is the distinct-token overlap with the query.
	Overlap int

	// MatchType names the stage that produced the best score.
	MatchType MatchType

	// Snippet is a short normalised preview of the chunk text.
	Snippet string
}

// KBDebug captures what happened during the most recent retrieval.
// The admin dashboard renders it to explain why a query did or did not
// find evidence.
type KBDebug struct {
	// Query is the raw query as received.
	Query string

	// QueryExpanded is the query after intent-based term expansion.
	QueryExpanded string

	// Intent is the detected intent tag, empty when none applies.
	Intent string

	// Tags lists all detected intent tags.
	Tags []string

	// QueryTerms are the tokens of the raw query.
	QueryTerms []string

	// ExpandedTerms are the tokens of the expanded query.
	ExpandedTerms []string

	// KBName is the display name of the queried knowledge base.
	KBName string

	// ChunksTotal is the number of chunks in the bundle.
	ChunksTotal int

	// RetrievedCount is the number of results returned.
	RetrievedCount int

	// Reason names the stage that produced the results
	// ("bm25", "token_overlap", "substring_fallback",
	// "similarity_fallback", "no_hits", "no_query_or_chunks", "no_index").
	Reason string

	// MinScore is the score threshold applied to the ranking.
	MinScore float64

	// TopCandidates are the best-scoring chunks regardless of the gate.
	TopCandidates []DebugCandidate
}
