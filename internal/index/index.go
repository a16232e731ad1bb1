// Package index builds a BM25 lexical ranking structure over chunk
// texts. Indexes are pure functions of the chunk texts and are keyed
// by a content hash, so identical knowledge-base uploads never
// rebuild.
package index

import (
	"crypto/sha256"
	"encoding/hex"
	"math"
	"strings"

	"github.com/iguales-labs/policykb-cli/internal/core/domain"
	"github.com/iguales-labs/policykb-cli/internal/textutil"
)

// BM25 parameters, tuned for Spanish-language policy documents of
// moderate length. Scores are only compared relatively (plus the
// downstream overlap gate), so the exact values are not load-bearing,
// but they are held fixed for reproducibility.
const (
	// K1 controls term-frequency saturation.
	K1 = 1.5

	// B controls document-length normalisation.
	B = 0.75
)

// placeholderToken stands in for documents that tokenise to nothing,
// so the ranking statistics never see a truly empty document.
const placeholderToken = "\x00empty"

// Hash returns the hex-encoded SHA-256 of text, the cache and version
// key for everything derived from a knowledge-base upload.
func Hash(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// Index holds the per-document statistics BM25 needs, together with
// the token sets and normalised texts the retrieval fallbacks reuse.
// An Index is immutable once built and safe for concurrent reads.
type Index struct {
	tokenLists [][]string
	tokenSets  []map[string]bool
	normTexts  []string
	docLen     []int
	avgdl      float64
	tf         []map[string]int
	df         map[string]int
	hash       string
}

// Build tokenises every chunk and assembles the ranking statistics.
// An empty chunk slice yields the empty-marker index.
func Build(chunks []domain.Chunk) *Index {
	if len(chunks) == 0 {
		return &Index{df: map[string]int{}}
	}

	texts := make([]string, len(chunks))
	for i := range chunks {
		texts[i] = chunks[i].Text
	}

	idx := &Index{
		tokenLists: make([][]string, len(texts)),
		tokenSets:  make([]map[string]bool, len(texts)),
		normTexts:  make([]string, len(texts)),
		docLen:     make([]int, len(texts)),
		tf:         make([]map[string]int, len(texts)),
		df:         make(map[string]int),
		hash:       Hash(strings.Join(texts, "\n")),
	}

	totalLen := 0
	for i, text := range texts {
		tokens := textutil.Tokenize(text)
		if len(tokens) == 0 {
			tokens = []string{placeholderToken}
		}
		idx.tokenLists[i] = tokens
		idx.tokenSets[i] = textutil.TokenSet(tokens)
		idx.normTexts[i] = textutil.NormalizeForMatch(text)
		idx.docLen[i] = len(tokens)
		totalLen += len(tokens)

		tf := make(map[string]int, len(tokens))
		for _, token := range tokens {
			tf[token]++
		}
		idx.tf[i] = tf

		for token := range idx.tokenSets[i] {
			idx.df[token]++
		}
	}
	idx.avgdl = float64(totalLen) / float64(len(texts))

	return idx
}

// Empty returns true for the empty-marker index built from zero chunks.
func (x *Index) Empty() bool {
	return x == nil || len(x.tf) == 0
}

// Docs returns the number of indexed documents.
func (x *Index) Docs() int {
	if x == nil {
		return 0
	}
	return len(x.tf)
}

// ContentHash returns the hash of the concatenated chunk texts.
func (x *Index) ContentHash() string {
	if x == nil {
		return ""
	}
	return x.hash
}

// TokenSet returns the distinct tokens of document i.
func (x *Index) TokenSet(i int) map[string]bool {
	if x == nil || i < 0 || i >= len(x.tokenSets) {
		return nil
	}
	return x.tokenSets[i]
}

// NormalizedText returns the match-normalised text of document i.
func (x *Index) NormalizedText(i int) string {
	if x == nil || i < 0 || i >= len(x.normTexts) {
		return ""
	}
	return x.normTexts[i]
}

// IDF returns the inverse document frequency of term. Values are kept
// non-negative and dampened with log1p to avoid extreme spikes in tiny
// corpora.
func (x *Index) IDF(term string) float64 {
	total := x.Docs()
	if total == 0 {
		return 0
	}
	df := float64(x.df[term])
	numerator := float64(total) - df + 0.5
	denominator := df + 0.5
	if numerator <= 0 || denominator <= 0 {
		return 0
	}
	return math.Max(0, math.Log1p(numerator/denominator))
}

// ScoreDoc computes the BM25 score of document i against terms and
// returns the terms that actually occur in the document. Terms absent
// from the document contribute nothing.
func (x *Index) ScoreDoc(i int, terms []string) (float64, []string) {
	if x.Empty() || i < 0 || i >= len(x.tf) {
		return 0, nil
	}

	tf := x.tf[i]
	dl := float64(x.docLen[i])
	avgdl := x.avgdl
	if avgdl <= 0 {
		avgdl = 1
	}

	score := 0.0
	var matched []string
	for _, term := range terms {
		freq := float64(tf[term])
		if freq <= 0 {
			continue
		}
		matched = append(matched, term)
		denom := freq + K1*(1-B+B*(dl/avgdl))
		if denom < 0.0001 {
			denom = 0.0001
		}
		score += x.IDF(term) * (freq * (K1 + 1)) / denom
	}
	return score, matched
}
