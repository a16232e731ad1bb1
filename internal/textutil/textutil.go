// Package textutil provides the lexical normalisation shared by the
// segmenter, the index and the retriever: tokenisation, accent
// stripping and whitespace normalisation tuned for Spanish-language
// policy documents.
//
// All functions are pure and deterministic.
package textutil

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// MinTokenLen is the minimum token length kept by Tokenize.
// Shorter runs are almost always function words or noise.
const MinTokenLen = 3

var (
	tokenRe      = regexp.MustCompile(`(?i)[a-z0-9áéíóúñ]+`)
	whitespaceRe = regexp.MustCompile(`\s+`)
	nonWordRe    = regexp.MustCompile(`[^\w\s]`)
)

// stopwords are common short Spanish function words excluded from
// tokenisation. The list matches what the chat layer has always used,
// so token sets stay comparable across the pipeline.
var stopwords = map[string]bool{
	"a": true, "al": true, "algo": true, "ante": true, "con": true,
	"contra": true, "cual": true, "cuales": true, "de": true, "del": true,
	"donde": true, "el": true, "en": true, "es": true, "esa": true,
	"ese": true, "esta": true, "este": true, "hay": true, "la": true,
	"las": true, "lo": true, "los": true, "me": true, "mi": true,
	"mis": true, "o": true, "para": true, "por": true, "que": true,
	"se": true, "si": true, "sin": true, "sobre": true, "su": true,
	"sus": true, "te": true, "tu": true, "tus": true, "un": true,
	"una": true, "y": true,
}

// StripAccents removes combining diacritical marks, mapping accented
// letters to their base form ("política" -> "politica", "ñ" -> "n").
func StripAccents(s string) string {
	decomposed := norm.NFD.String(s)
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range decomposed {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// NormalizeSpaces collapses every whitespace run to a single space and
// trims the result.
func NormalizeSpaces(s string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
}

// NormalizeForMatch lowers, de-accents and strips punctuation so that
// substring and similarity comparisons ignore typography.
func NormalizeForMatch(s string) string {
	lowered := StripAccents(strings.ToLower(s))
	lowered = nonWordRe.ReplaceAllString(lowered, " ")
	return NormalizeSpaces(lowered)
}

// IsStopword returns true for tokens on the stopword list.
// The token must already be lower-cased and de-accented.
func IsStopword(token string) bool {
	return stopwords[token]
}

// Tokenize splits text into lexical tokens for indexing and querying.
// Tokens are maximal alphanumeric runs (including Spanish accented
// letters), lower-cased and de-accented. Runs shorter than MinTokenLen
// and stopwords are discarded. Order and duplicates are preserved;
// consumers decide whether to deduplicate.
func Tokenize(text string) []string {
	raw := tokenRe.FindAllString(text, -1)
	if len(raw) == 0 {
		return nil
	}

	tokens := make([]string, 0, len(raw))
	for _, run := range raw {
		token := StripAccents(strings.ToLower(run))
		if len(token) < MinTokenLen {
			continue
		}
		if stopwords[token] {
			continue
		}
		tokens = append(tokens, token)
	}
	if len(tokens) == 0 {
		return nil
	}
	return tokens
}

// UniqueTokens deduplicates a token list preserving first-seen order.
func UniqueTokens(tokens []string) []string {
	seen := make(map[string]bool, len(tokens))
	unique := make([]string, 0, len(tokens))
	for _, token := range tokens {
		if seen[token] {
			continue
		}
		seen[token] = true
		unique = append(unique, token)
	}
	return unique
}

// TokenSet converts a token list to a membership set.
func TokenSet(tokens []string) map[string]bool {
	set := make(map[string]bool, len(tokens))
	for _, token := range tokens {
		set[token] = true
	}
	return set
}
