package domain

// MatchType identifies which ranking stage produced a retrieval result.
type MatchType string

const (
	// MatchBM25 is the primary BM25 ranking stage.
	MatchBM25 MatchType = "bm25"

	// MatchBM25Exact is BM25 with the exact-substring bonus applied.
	MatchBM25Exact MatchType = "bm25_exact"

	// MatchTokenOverlap is the token-overlap fallback stage.
	MatchTokenOverlap MatchType = "token_overlap"

	// MatchSubstring is the normalised-substring fallback stage.
	MatchSubstring MatchType = "substring"

	// MatchSimilarity is the last-resort string-similarity fallback.
	MatchSimilarity MatchType = "similarity"
)

// Result is a retrieved chunk plus query-dependent annotations.
// Results are computed fresh per query and never persisted.
type Result struct {
	// Chunk is the matched chunk.
	Chunk Chunk

	// Score is the relevance score assigned by the matching stage.
	Score float64

	// Overlap is the count of distinct query tokens present in the chunk.
	// It is at least 1 for every stage except the similarity fallback.
	Overlap int

	// MatchType identifies the stage that produced this result.
	MatchType MatchType

	// MatchedTerms lists the query terms found in the chunk.
	MatchedTerms []string
}
