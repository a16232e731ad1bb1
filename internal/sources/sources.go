// Package sources compacts retrieval provenance into short,
// deduplicated citation labels for display. The chat layer appends the
// resulting "Fuentes:" line to grounded answers; rows that lose
// deduplication or fall past the display budget stay available in the
// hidden list so the admin view can still audit them.
package sources

import (
	"fmt"
	"path"
	"regexp"
	"sort"
	"strings"

	"github.com/iguales-labs/policykb-cli/internal/core/domain"
	"github.com/iguales-labs/policykb-cli/internal/textutil"
)

// MaxSources is the default number of citations shown.
const MaxSources = 3

// MaxItemLen is the default character budget per citation label.
const MaxItemLen = 60

// KBNameMaxLen is the character budget for the knowledge-base name
// inside a citation label.
const KBNameMaxLen = 28

var (
	anchorRe        = regexp.MustCompile(`\s*\{#[^}]+\}\s*$`)
	partRe          = regexp.MustCompile(`(?i)\(\s*parte\s*([0-9]+\s*/\s*[0-9]+)\s*\)`)
	markdownHdrRe   = regexp.MustCompile(`^\s*#{1,6}\s*`)
	sectionPrefixRe = regexp.MustCompile(`(?i)^\s*(?:seccion|section)\s+`)
	leadingNumberRe = regexp.MustCompile(`^\s*([0-9]+(?:\.[0-9]+)*)\s*[-:.)]?\s*(.*)$`)
	titleWordRe     = regexp.MustCompile(`[A-Za-z0-9ÁÉÍÓÚÜÑáéíóúüñ]+`)
)

// labelStopwords are skipped when picking the significant title words
// of a section label. Shorter list than the index stopwords: labels
// keep more glue words readable.
var labelStopwords = map[string]bool{
	"a": true, "al": true, "con": true, "de": true, "del": true,
	"el": true, "en": true, "la": true, "las": true, "los": true,
	"para": true, "por": true, "se": true, "y": true,
}

// CompactRow is one surviving or hidden citation row.
type CompactRow struct {
	// Index is the 1-based position in the input slice.
	Index int

	// Compact is the display label.
	Compact string

	// Score is the relevance score of the underlying source.
	Score float64

	// Source is the original record.
	Source domain.SourceRef
}

// CompactView is the result of compacting a list of sources.
type CompactView struct {
	// Line is the rendered citation line, empty for empty input.
	Line string

	// CompactRows are the surviving rows in display order.
	CompactRows []CompactRow

	// HiddenRows are deduplicated or over-budget rows, kept for audit.
	HiddenRows []CompactRow
}

// CompactKBName shortens a knowledge-base file name to KBNameMaxLen
// characters, preserving the trailing extension when truncating so
// suffixes like ".docx.md" stay recognisable.
func CompactKBName(kbName string) string {
	return compactKBName(kbName, KBNameMaxLen)
}

func compactKBName(kbName string, maxLen int) string {
	raw := strings.TrimSpace(kbName)
	if raw == "" {
		return ""
	}
	fileName := path.Base(strings.ReplaceAll(raw, "\\", "/"))
	if runeLen(fileName) <= maxLen {
		return fileName
	}

	dot := strings.LastIndex(fileName, ".")
	if dot < 0 {
		return truncate(fileName, maxLen)
	}

	stem, extension := fileName[:dot], fileName[dot:]
	if runeLen(extension) >= maxLen-1 {
		return truncate(fileName, maxLen)
	}

	headLen := maxLen - runeLen(extension) - 1
	if headLen <= 0 {
		return truncate(fileName, maxLen)
	}
	return strings.TrimRight(truncateHard(stem, headLen), " ") + "…" + extension
}

// CompactSectionLabel reduces a section or article label to a short
// "§<number> <two significant words> (<part>)" form: markdown markers
// and anchor fragments are stripped, a leading Seccion/Section word is
// dropped, and the part indicator is taken from the label itself when
// present, else from part.
func CompactSectionLabel(section, part string) string {
	raw := textutil.NormalizeSpaces(section)
	if raw == "" {
		return ""
	}

	clean := strings.TrimSpace(anchorRe.ReplaceAllString(raw, ""))
	partValue := strings.TrimSpace(part)
	if m := partRe.FindStringSubmatch(clean); m != nil {
		partValue = strings.ReplaceAll(m[1], " ", "")
		clean = strings.TrimSpace(partRe.ReplaceAllString(clean, ""))
	}

	clean = markdownHdrRe.ReplaceAllString(clean, "")
	clean = sectionPrefixRe.ReplaceAllString(clean, "")
	clean = textutil.NormalizeSpaces(clean)

	number := ""
	title := clean
	if m := leadingNumberRe.FindStringSubmatch(clean); m != nil {
		number = strings.TrimSpace(m[1])
		title = strings.TrimSpace(m[2])
	}

	words := titleWordRe.FindAllString(title, -1)
	var compactWords []string
	for _, word := range words {
		if !labelStopwords[strings.ToLower(word)] {
			compactWords = append(compactWords, word)
		}
	}

	titleShort := ""
	switch {
	case len(compactWords) >= 2:
		titleShort = compactWords[0] + " " + compactWords[1]
	case len(compactWords) == 1:
		titleShort = compactWords[0]
	case len(words) >= 2:
		titleShort = words[0] + " " + words[1]
	case len(words) == 1:
		titleShort = words[0]
	}

	var compact string
	switch {
	case number != "" && titleShort != "":
		compact = "§" + number + " " + titleShort
	case number != "":
		compact = "§" + number
	case titleShort != "":
		compact = "§ " + titleShort
	default:
		compact = strings.TrimSpace("§ " + clean)
	}

	if partValue != "" {
		compact = compact + " (" + partValue + ")"
	}
	return textutil.NormalizeSpaces(compact)
}

// BuildCompactView compacts sources into at most maxSources rows, each
// at most maxItemLen characters. A negative maxSources is a contract
// violation and returns domain.ErrInvalidInput; zero falls back to a
// single row. Identical labels deduplicate by best score; survivors
// sort by score descending with the higher input index winning ties,
// so the most recently seen of equal-scored rows leads. Empty input
// yields an empty line and empty row lists.
func BuildCompactView(srcs []domain.SourceRef, maxSources, maxItemLen int) (CompactView, error) {
	if maxSources < 0 {
		return CompactView{}, fmt.Errorf("%w: negative max sources %d", domain.ErrInvalidInput, maxSources)
	}
	if maxSources == 0 {
		maxSources = 1
	}
	if maxItemLen < 1 {
		maxItemLen = MaxItemLen
	}

	rows := make([]CompactRow, 0, len(srcs))
	for i, src := range srcs {
		compact := buildCompactItem(src, maxItemLen)
		if compact == "" {
			continue
		}
		rows = append(rows, CompactRow{
			Index:   i + 1,
			Compact: compact,
			Score:   src.Score,
			Source:  src,
		})
	}
	if len(rows) == 0 {
		return CompactView{}, nil
	}

	// Dedupe identical labels keeping the best score. Losers go to
	// hidden, not to the floor.
	byCompact := make(map[string]int, len(rows))
	var unique []CompactRow
	var hidden []CompactRow
	for _, row := range rows {
		pos, seen := byCompact[row.Compact]
		if !seen {
			byCompact[row.Compact] = len(unique)
			unique = append(unique, row)
			continue
		}
		if row.Score > unique[pos].Score {
			hidden = append(hidden, unique[pos])
			unique[pos] = row
		} else {
			hidden = append(hidden, row)
		}
	}

	sort.SliceStable(unique, func(i, j int) bool {
		if unique[i].Score != unique[j].Score {
			return unique[i].Score > unique[j].Score
		}
		return unique[i].Index > unique[j].Index
	})

	compactRows := unique
	if len(compactRows) > maxSources {
		hidden = append(hidden, compactRows[maxSources:]...)
		compactRows = compactRows[:maxSources]
	}

	parts := make([]string, len(compactRows))
	for i, row := range compactRows {
		parts[i] = fmt.Sprintf("[%d] %s", i+1, row.Compact)
	}

	return CompactView{
		Line:        "Fuentes: " + strings.Join(parts, "; "),
		CompactRows: compactRows,
		HiddenRows:  hidden,
	}, nil
}

// FormatSourceDetail renders one source for the expanded audit view.
func FormatSourceDetail(src domain.SourceRef, index int) string {
	kbName := strings.TrimSpace(src.KBName)
	section := strings.TrimSpace(src.Section)

	var head string
	switch {
	case kbName != "" && section != "":
		head = fmt.Sprintf("[%d] %s | %s", index, kbName, section)
	case kbName != "":
		head = fmt.Sprintf("[%d] %s", index, kbName)
	default:
		head = strings.TrimSpace(fmt.Sprintf("[%d] %s", index, section))
	}

	parts := []string{head, fmt.Sprintf("score=%.4f", src.Score)}
	if method := strings.TrimSpace(src.Method); method != "" {
		parts = append(parts, "method="+method)
	}
	return strings.Join(parts, " | ")
}

// buildCompactItem combines the shortened KB name and section label,
// falling back to whichever is non-empty, then to the raw chunk label.
func buildCompactItem(src domain.SourceRef, maxItemLen int) string {
	kbShort := CompactKBName(src.KBName)
	sectionShort := CompactSectionLabel(src.Section, src.Part)

	var label string
	switch {
	case kbShort != "" && sectionShort != "":
		label = kbShort + " " + sectionShort
	case kbShort != "":
		label = kbShort
	case sectionShort != "":
		label = sectionShort
	default:
		label = strings.TrimSpace(src.Label)
	}
	return truncate(textutil.NormalizeSpaces(label), maxItemLen)
}

// truncate cuts text to maxLen characters, marking the cut with an
// ellipsis when room allows.
func truncate(text string, maxLen int) string {
	if runeLen(text) <= maxLen {
		return text
	}
	if maxLen <= 1 {
		return truncateHard(text, maxLen)
	}
	return strings.TrimRight(truncateHard(text, maxLen-1), " ") + "…"
}

// truncateHard cuts text to maxLen characters with no marker.
func truncateHard(text string, maxLen int) string {
	runes := []rune(text)
	if len(runes) <= maxLen {
		return text
	}
	return string(runes[:maxLen])
}

func runeLen(s string) int {
	return len([]rune(s))
}
