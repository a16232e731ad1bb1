// Package retrieval ranks knowledge-base chunks against a user query.
//
// The primary stage is BM25 over the expanded query terms, guarded by
// a hard lexical-overlap gate: a chunk is only returned if it shares
// at least one distinct token with the query, no matter what score the
// statistics assign. When BM25 finds nothing, progressively looser
// fallbacks run (token overlap ratio, normalised substring hits, and a
// last-resort string-similarity match), so the caller can treat an
// empty result list as a reliable "no evidence in the knowledge base"
// signal.
package retrieval

import (
	"sort"
	"strings"

	"github.com/iguales-labs/policykb-cli/internal/core/domain"
	"github.com/iguales-labs/policykb-cli/internal/index"
	"github.com/iguales-labs/policykb-cli/internal/textutil"
)

// DefaultK is the default number of results returned.
const DefaultK = 4

// ExactSubstringBonus is added to a chunk's BM25 score when the whole
// normalised query occurs verbatim in the chunk.
const ExactSubstringBonus = 0.28

// SimilarityThreshold is the minimum bigram-similarity ratio the
// last-resort fallback accepts.
const SimilarityThreshold = 0.28

// similarityWindow caps how much chunk text the similarity fallback
// compares; beyond this the ratio is dominated by length anyway.
const similarityWindow = 2500

// debugCandidateCount is how many candidates the debug snapshot keeps.
const debugCandidateCount = 6

// Retrieval outcome reasons recorded in the debug snapshot.
const (
	ReasonBM25           = "bm25"
	ReasonTokenOverlap   = "token_overlap"
	ReasonSubstring      = "substring_fallback"
	ReasonSimilarity     = "similarity_fallback"
	ReasonNoHits         = "no_hits"
	ReasonNoQueryOrChunk = "no_query_or_chunks"
	ReasonNoIndex        = "no_index"
	ReasonNoQueryTokens  = "no_query_tokens"
)

// Options configures one retrieval call.
type Options struct {
	// K is the maximum number of results, clamped to >= 1. Callers
	// wanting the configured default resolve it before calling.
	K int

	// MinScore drops results scoring below the threshold.
	MinScore float64

	// KBName is echoed into the debug snapshot.
	KBName string
}

// Retrieve ranks chunks against query and returns the top results plus
// a debug snapshot describing what happened. It returns no results
// when the query is empty, the index is the empty marker, there are no
// chunks, or the query tokenises to nothing — all expected states, not
// errors.
func Retrieve(query string, idx *index.Index, chunks []domain.Chunk, opts Options) ([]domain.Result, domain.KBDebug) {
	k := opts.K
	if k < 1 {
		k = 1
	}

	debug := domain.KBDebug{
		Query:         query,
		QueryExpanded: query,
		KBName:        opts.KBName,
		ChunksTotal:   len(chunks),
		MinScore:      opts.MinScore,
	}

	if query == "" || len(chunks) == 0 {
		debug.Reason = ReasonNoQueryOrChunk
		return nil, debug
	}
	if idx.Empty() {
		debug.Reason = ReasonNoIndex
		return nil, debug
	}

	meta := ExpandQuery(query)
	queryTokens := textutil.Tokenize(meta.ExpandedText)

	debug.QueryExpanded = meta.ExpandedText
	debug.Intent = meta.Intent
	debug.Tags = meta.Tags
	debug.QueryTerms = meta.QueryTerms
	debug.ExpandedTerms = meta.ExpandedTerms

	if len(queryTokens) == 0 {
		debug.Reason = ReasonNoQueryTokens
		return nil, debug
	}

	debug.TopCandidates = collectDebugCandidates(meta, queryTokens, idx, chunks, debugCandidateCount)

	ranked := rankByBM25(meta, idx, chunks)
	reason := ReasonBM25
	if len(ranked) == 0 {
		ranked = rankByTokenOverlap(queryTokens, idx, chunks)
		reason = ReasonTokenOverlap
	}
	if len(ranked) == 0 {
		ranked = rankBySubstring(queryTokens, idx, chunks)
		reason = ReasonSubstring
	}
	if len(ranked) == 0 {
		ranked = rankBySimilarity(meta.ExpandedText, idx, chunks)
		reason = ReasonSimilarity
	}
	if len(ranked) == 0 {
		reason = ReasonNoHits
	}

	results := make([]domain.Result, 0, k)
	for _, r := range ranked {
		if r.Score < opts.MinScore {
			continue
		}
		results = append(results, r)
		if len(results) >= k {
			break
		}
	}
	if len(results) == 0 {
		results = nil
	}

	debug.Reason = reason
	debug.RetrievedCount = len(results)
	return results, debug
}

// rankByBM25 scores every chunk against the deduplicated expanded
// terms and applies the overlap gate: chunks matching no query token
// are skipped regardless of score.
func rankByBM25(meta ExpandedQuery, idx *index.Index, chunks []domain.Chunk) []domain.Result {
	terms := textutil.UniqueTokens(meta.ExpandedTerms)
	if len(terms) == 0 {
		return nil
	}

	ranked := make([]domain.Result, 0, len(chunks))
	for i, chunk := range chunks {
		score, matched := idx.ScoreDoc(i, terms)
		if len(matched) == 0 {
			continue
		}

		matchType := domain.MatchBM25
		if meta.ExpandedNormalized != "" && strings.Contains(idx.NormalizedText(i), meta.ExpandedNormalized) {
			score += ExactSubstringBonus
			matchType = domain.MatchBM25Exact
		}
		if score <= 0 {
			continue
		}

		ranked = append(ranked, domain.Result{
			Chunk:        chunk,
			Score:        score,
			Overlap:      len(matched),
			MatchType:    matchType,
			MatchedTerms: matched,
		})
	}

	sortByScoreThenOverlap(ranked)
	return ranked
}

// rankByTokenOverlap scores chunks by the fraction of distinct query
// tokens they contain. First fallback when BM25 yields nothing.
func rankByTokenOverlap(queryTokens []string, idx *index.Index, chunks []domain.Chunk) []domain.Result {
	querySet := textutil.TokenSet(queryTokens)
	if len(querySet) == 0 {
		return nil
	}

	ranked := make([]domain.Result, 0, len(chunks))
	for i, chunk := range chunks {
		chunkSet := idx.TokenSet(i)
		var matched []string
		for token := range querySet {
			if chunkSet[token] {
				matched = append(matched, token)
			}
		}
		if len(matched) == 0 {
			continue
		}
		sort.Strings(matched)

		ranked = append(ranked, domain.Result{
			Chunk:        chunk,
			Score:        float64(len(matched)) / float64(len(querySet)),
			Overlap:      len(matched),
			MatchType:    domain.MatchTokenOverlap,
			MatchedTerms: matched,
		})
	}

	sortByOverlapThenScore(ranked)
	return ranked
}

// rankBySubstring scores chunks by how many query terms occur as
// substrings of the normalised chunk text. Catches inflected forms the
// token sets miss ("teletrabajar" vs "teletrabajo").
func rankBySubstring(queryTokens []string, idx *index.Index, chunks []domain.Chunk) []domain.Result {
	terms := textutil.UniqueTokens(queryTokens)
	if len(terms) == 0 {
		return nil
	}
	// Longest first so the audit trail surfaces the most specific hits.
	sort.Slice(terms, func(i, j int) bool { return len(terms[i]) > len(terms[j]) })

	ranked := make([]domain.Result, 0, len(chunks))
	for i, chunk := range chunks {
		normText := idx.NormalizedText(i)
		if normText == "" {
			continue
		}
		var matched []string
		for _, term := range terms {
			if strings.Contains(normText, term) {
				matched = append(matched, term)
			}
		}
		if len(matched) == 0 {
			continue
		}

		ranked = append(ranked, domain.Result{
			Chunk:        chunk,
			Score:        float64(len(matched)) / float64(len(terms)),
			Overlap:      len(matched),
			MatchType:    domain.MatchSubstring,
			MatchedTerms: matched,
		})
	}

	sortByOverlapThenScore(ranked)
	return ranked
}

// rankBySimilarity returns the single most similar chunk by character
// bigram overlap, if it clears the threshold. Last resort for
// paraphrased queries sharing no vocabulary with the text; the zero
// overlap is deliberate and visible to the caller.
func rankBySimilarity(query string, idx *index.Index, chunks []domain.Chunk) []domain.Result {
	queryNorm := textutil.NormalizeForMatch(query)
	if queryNorm == "" {
		return nil
	}
	queryBigrams := bigrams(queryNorm)

	bestRatio := 0.0
	bestIdx := -1
	for i := range chunks {
		normText := idx.NormalizedText(i)
		if normText == "" {
			continue
		}
		if len(normText) > similarityWindow {
			normText = normText[:similarityWindow]
		}
		ratio := diceRatio(queryBigrams, bigrams(normText))
		if ratio > bestRatio {
			bestRatio = ratio
			bestIdx = i
		}
	}

	if bestIdx < 0 || bestRatio < SimilarityThreshold {
		return nil
	}
	return []domain.Result{{
		Chunk:     chunks[bestIdx],
		Score:     bestRatio,
		Overlap:   0,
		MatchType: domain.MatchSimilarity,
	}}
}

// collectDebugCandidates surfaces the best-scoring chunks across all
// matching signals, gate or no gate, for the admin debug view.
func collectDebugCandidates(meta ExpandedQuery, queryTokens []string, idx *index.Index, chunks []domain.Chunk, topN int) []domain.DebugCandidate {
	if len(chunks) == 0 {
		return nil
	}

	querySet := textutil.TokenSet(queryTokens)
	terms := textutil.UniqueTokens(queryTokens)
	totalTerms := len(terms)
	if totalTerms == 0 {
		totalTerms = 1
	}
	queryBigrams := bigrams(meta.ExpandedNormalized)

	candidates := make([]domain.DebugCandidate, 0, len(chunks))
	for i, chunk := range chunks {
		chunkSet := idx.TokenSet(i)
		overlapCount := 0
		for token := range querySet {
			if chunkSet[token] {
				overlapCount++
			}
		}

		normText := idx.NormalizedText(i)
		substringHits := 0
		for _, term := range terms {
			if strings.Contains(normText, term) {
				substringHits++
			}
		}

		simRatio := 0.0
		if meta.ExpandedNormalized != "" && normText != "" {
			window := normText
			if len(window) > similarityWindow {
				window = window[:similarityWindow]
			}
			simRatio = diceRatio(queryBigrams, bigrams(window))
		}

		matchType := domain.MatchType("")
		switch {
		case overlapCount > 0:
			matchType = domain.MatchTokenOverlap
		case substringHits > 0:
			matchType = domain.MatchSubstring
		case simRatio > 0:
			matchType = domain.MatchSimilarity
		}

		score := float64(overlapCount) / float64(totalTerms)
		if s := float64(substringHits) / float64(totalTerms); s > score {
			score = s
		}
		if simRatio > score {
			score = simRatio
		}

		candidates = append(candidates, domain.DebugCandidate{
			ChunkID:   chunk.ID,
			Label:     chunk.Label,
			Score:     score,
			Overlap:   overlapCount,
			MatchType: matchType,
			Snippet:   snippet(chunk.Text, 200),
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Score != candidates[j].Score {
			return candidates[i].Score > candidates[j].Score
		}
		return candidates[i].Overlap > candidates[j].Overlap
	})

	if topN < 1 {
		topN = 1
	}
	if len(candidates) > topN {
		candidates = candidates[:topN]
	}
	return candidates
}

// sortByScoreThenOverlap orders results score desc, overlap desc; the
// stable sort preserves chunk order on full ties, keeping rankings
// reproducible.
func sortByScoreThenOverlap(results []domain.Result) {
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Overlap > results[j].Overlap
	})
}

// sortByOverlapThenScore orders results overlap desc, score desc, used
// by the fallback stages where raw overlap is the stronger signal.
func sortByOverlapThenScore(results []domain.Result) {
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Overlap != results[j].Overlap {
			return results[i].Overlap > results[j].Overlap
		}
		return results[i].Score > results[j].Score
	})
}

// bigrams returns the multiset of adjacent rune pairs in s.
func bigrams(s string) map[string]int {
	runes := []rune(s)
	if len(runes) < 2 {
		return nil
	}
	grams := make(map[string]int, len(runes)-1)
	for i := 0; i < len(runes)-1; i++ {
		grams[string(runes[i:i+2])]++
	}
	return grams
}

// diceRatio computes the Sørensen-Dice coefficient of two bigram
// multisets: 2*|intersection| / (|a|+|b|).
func diceRatio(a, b map[string]int) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	sizeA, sizeB, common := 0, 0, 0
	for _, n := range a {
		sizeA += n
	}
	for _, n := range b {
		sizeB += n
	}
	for gram, n := range a {
		if m, ok := b[gram]; ok {
			if m < n {
				common += m
			} else {
				common += n
			}
		}
	}
	if sizeA+sizeB == 0 {
		return 0
	}
	return 2 * float64(common) / float64(sizeA+sizeB)
}

// snippet returns the first maxRunes of the whitespace-normalised text.
func snippet(text string, maxRunes int) string {
	normalized := textutil.NormalizeSpaces(text)
	runes := []rune(normalized)
	if len(runes) <= maxRunes {
		return normalized
	}
	return string(runes[:maxRunes])
}
