// Package segmenter splits a raw policy text into an ordered sequence
// of addressable chunks.
//
// Three strategies are tried in priority order: article-numbered
// headers ("Articulo 12"), numbered-section / chapter / upper-case
// headings, and finally fixed-size sliding windows with overlap for
// texts without any recognisable structure. Heading sections that grow
// past a size ceiling are re-split by the windowing pass so no chunk
// overwhelms the ranking statistics.
package segmenter

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/iguales-labs/policykb-cli/internal/core/domain"
	"github.com/iguales-labs/policykb-cli/internal/textutil"
)

// DefaultChunkSize is the default number of characters per window chunk.
const DefaultChunkSize = 1200

// DefaultOverlap is the default trailing overlap between window chunks.
const DefaultOverlap = 220

// DefaultMinLookback is how far into a window a space must be for the
// boundary to snap back to it. Closer spaces would produce degenerate
// slivers, so the cut stays at the hard boundary instead.
const DefaultMinLookback = 120

// DefaultMaxSectionLen is the ceiling above which a heading section is
// re-split by the windowing pass.
const DefaultMaxSectionLen = 1600

var (
	articleRe  = regexp.MustCompile(`(?i)^\s*art[ií]culo\s+([0-9]+[a-zA-Z0-9-]*)\b`)
	chapterRe  = regexp.MustCompile(`(?i)^\s*(?:cap[ií]tulo|secci[oó]n|section)\s+[^\n]{1,80}`)
	numberedRe = regexp.MustCompile(`^\s*(\d+(?:\.\d+)*)\s*[.)-]?\s+([^\n]{3,120})$`)
)

var titleCaser = cases.Title(language.Spanish)

// heading is a detected heading line before chunk boundaries are known.
type heading struct {
	line      int
	kind      domain.ChunkKind
	articleID string
	sectionID string
	label     string
}

// Segmenter splits policy text into chunks.
type Segmenter struct {
	chunkSize     int
	overlap       int
	minLookback   int
	maxSectionLen int
}

// Option configures the segmenter.
type Option func(*Segmenter)

// WithChunkSize sets the window size in characters.
func WithChunkSize(size int) Option {
	return func(s *Segmenter) {
		if size > 0 {
			s.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between window chunks in characters.
func WithOverlap(overlap int) Option {
	return func(s *Segmenter) {
		if overlap >= 0 {
			s.overlap = overlap
		}
	}
}

// WithMaxSectionLen sets the ceiling above which heading sections are
// re-split by the windowing pass.
func WithMaxSectionLen(maxLen int) Option {
	return func(s *Segmenter) {
		if maxLen > 0 {
			s.maxSectionLen = maxLen
		}
	}
}

// New creates a segmenter with the given options.
func New(opts ...Option) *Segmenter {
	s := &Segmenter{
		chunkSize:     DefaultChunkSize,
		overlap:       DefaultOverlap,
		minLookback:   DefaultMinLookback,
		maxSectionLen: DefaultMaxSectionLen,
	}

	for _, opt := range opts {
		opt(s)
	}

	// Ensure overlap doesn't exceed chunk size
	if s.overlap >= s.chunkSize {
		s.overlap = s.chunkSize / 4
	}

	return s
}

// Segment splits text into an ordered sequence of chunks.
// Empty or whitespace-only input yields no chunks, which callers must
// treat as "no knowledge base". The result is deterministic: the same
// text always produces the same chunks with the same IDs.
func (s *Segmenter) Segment(text string) []domain.Chunk {
	clean := strings.TrimSpace(text)
	if clean == "" {
		return nil
	}

	chunks := s.chunkByHeadings(clean)
	if len(chunks) == 0 {
		chunks = s.chunkBySize(clean, "", domain.KindFragment, "", "")
	}

	// chunk_id is the 0-based position in the final ordered output.
	for i := range chunks {
		chunks[i].ID = i
	}
	return chunks
}

// extractHeadings scans for line-anchored headers. Article headers win
// over numbered sections, which win over chapter and upper-case lines,
// but all tiers may coexist within one document.
func extractHeadings(lines []string) []heading {
	var headings []heading
	for idx, line := range lines {
		stripped := strings.TrimSpace(line)
		if stripped == "" {
			continue
		}

		if m := articleRe.FindStringSubmatch(stripped); m != nil {
			headings = append(headings, heading{
				line:      idx,
				kind:      domain.KindArticle,
				articleID: m[1],
				label:     "Articulo " + m[1],
			})
			continue
		}

		if m := chapterRe.FindString(stripped); m != "" {
			headings = append(headings, heading{
				line:  idx,
				kind:  domain.KindHeading,
				label: truncateLabel(textutil.NormalizeSpaces(m), 110),
			})
			continue
		}

		if m := numberedRe.FindStringSubmatch(stripped); m != nil {
			label := "Seccion " + m[1]
			if title := textutil.NormalizeSpaces(m[2]); title != "" {
				label = label + " - " + truncateLabel(title, 80)
			}
			headings = append(headings, heading{
				line:      idx,
				kind:      domain.KindSection,
				sectionID: m[1],
				label:     label,
			})
			continue
		}

		if isUpperHeading(stripped) {
			headings = append(headings, heading{
				line:  idx,
				kind:  domain.KindHeading,
				label: truncateLabel(textutil.NormalizeSpaces(titleCaser.String(strings.ToLower(stripped))), 110),
			})
		}
	}
	return headings
}

// chunkByHeadings slices the text between consecutive heading lines.
// Returns nil when no headings are found so the caller can fall back
// to fixed-size windowing.
func (s *Segmenter) chunkByHeadings(text string) []domain.Chunk {
	lines := strings.Split(text, "\n")
	headings := extractHeadings(lines)
	if len(headings) == 0 {
		return nil
	}

	var chunks []domain.Chunk
	for i, h := range headings {
		endLine := len(lines)
		if i+1 < len(headings) {
			endLine = headings[i+1].line
		}
		sectionText := strings.TrimSpace(strings.Join(lines[h.line:endLine], "\n"))
		if sectionText == "" {
			continue
		}

		if utf8.RuneCountInString(sectionText) > s.maxSectionLen {
			chunks = append(chunks, s.chunkBySize(sectionText, h.label, h.kind, h.articleID, h.sectionID)...)
			continue
		}

		chunks = append(chunks, domain.Chunk{
			Kind:      h.kind,
			ArticleID: h.articleID,
			SectionID: h.sectionID,
			Label:     h.label,
			Text:      sectionText,
		})
	}
	return chunks
}

// chunkBySize splits text into fixed-size windows with trailing
// overlap. Boundaries snap backward to the nearest space unless that
// space sits within minLookback of the window start, in which case the
// hard boundary wins. Windowing operates on runes so a hard boundary
// never cuts a multi-byte character in half. The start position
// advances to end-overlap, so the loop always makes forward progress.
func (s *Segmenter) chunkBySize(text, labelPrefix string, kind domain.ChunkKind, articleID, sectionID string) []domain.Chunk {
	normalized := []rune(textutil.NormalizeSpaces(text))
	if len(normalized) == 0 {
		return nil
	}
	if labelPrefix == "" {
		labelPrefix = "Fragmento"
	}

	step := s.chunkSize - s.overlap
	chunks := make([]domain.Chunk, 0, len(normalized)/step+1)

	start := 0
	number := 1
	for start < len(normalized) {
		end := start + s.chunkSize
		if end >= len(normalized) {
			end = len(normalized)
		} else if boundary := lastSpace(normalized[start:end]); boundary > s.minLookback {
			end = start + boundary
		}

		if chunkText := strings.TrimSpace(string(normalized[start:end])); chunkText != "" {
			chunks = append(chunks, domain.Chunk{
				Kind:      kind,
				ArticleID: articleID,
				SectionID: sectionID,
				Label:     truncateLabel(fmt.Sprintf("%s %d", labelPrefix, number), 140),
				Text:      chunkText,
			})
			number++
		}

		if end >= len(normalized) {
			break
		}
		next := end - s.overlap
		if next <= start {
			// A boundary snap can land closer than the overlap width;
			// jumping to the cut point keeps the loop advancing.
			next = end
		}
		start = next
	}
	return chunks
}

// lastSpace returns the index of the last space in runes, or -1.
func lastSpace(runes []rune) int {
	for i := len(runes) - 1; i >= 0; i-- {
		if runes[i] == ' ' {
			return i
		}
	}
	return -1
}

// isUpperHeading reports whether a line looks like a shouted heading:
// 5-90 characters, at least 5 letters, at least 80% of them upper-case.
func isUpperHeading(line string) bool {
	runes := []rune(line)
	if len(runes) < 5 || len(runes) > 90 {
		return false
	}

	letters, upper := 0, 0
	for _, r := range runes {
		if unicode.IsLetter(r) {
			letters++
			if unicode.IsUpper(r) {
				upper++
			}
		}
	}
	if letters < 5 {
		return false
	}
	return float64(upper)/float64(letters) >= 0.8
}

func truncateLabel(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen])
}
