package retrieval

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/iguales-labs/policykb-cli/internal/textutil"
)

// ageRe matches "<n> años" in match-normalised text (accents already
// stripped, so the pattern only needs the plain spelling).
var ageRe = regexp.MustCompile(`\b(\d{1,2})\s*anos\b`)

// childTriggerTerms are substrings of the normalised query that signal
// a question about minors.
var childTriggerTerms = []string{
	"menor", "nino", "nene", "adolescente", "hijo", "hija",
}

// childExpansionTerms are appended to queries with detected child
// context so they reach the labour-rights sections even when phrased
// colloquially.
var childExpansionTerms = []string{
	"trabajo infantil",
	"esclavitud moderna",
	"trabajo forzado",
	"menores",
	"edad minima",
	"derechos humanos",
}

// TagChildLabor marks queries with detected child-labour context.
const TagChildLabor = "child_labor"

// ExpandedQuery carries every derived form of a user query that the
// ranking stages consume.
type ExpandedQuery struct {
	// Original is the trimmed raw query.
	Original string

	// Normalized is the match-normalised original.
	Normalized string

	// ExpandedText is the original plus any intent expansion terms.
	ExpandedText string

	// ExpandedNormalized is the match-normalised expanded text.
	ExpandedNormalized string

	// QueryTerms are the tokens of the original query.
	QueryTerms []string

	// ExpandedTerms are the tokens of the expanded text.
	ExpandedTerms []string

	// Tags lists detected intent tags.
	Tags []string

	// Intent is the first tag, empty when none applies.
	Intent string

	// Ages are the age values mentioned in the query.
	Ages []int

	// RequiresExactAge is true when the user asks for an exact
	// minimum age, which the chat layer answers verbatim from the
	// matched article.
	RequiresExactAge bool
}

// ExpandQuery derives the normalised and expanded forms of a query.
// Queries mentioning minors (by age or by trigger words) are expanded
// with the fixed child-labour vocabulary.
func ExpandQuery(query string) ExpandedQuery {
	original := strings.TrimSpace(query)
	normalized := textutil.NormalizeForMatch(original)

	var ages []int
	for _, m := range ageRe.FindAllStringSubmatch(normalized, -1) {
		if age, err := strconv.Atoi(m[1]); err == nil {
			ages = append(ages, age)
		}
	}

	childContext := containsChildTrigger(normalized)
	for _, age := range ages {
		if age <= 15 {
			childContext = true
			break
		}
	}

	var tags []string
	expandedText := original
	if childContext {
		tags = append(tags, TagChildLabor)
		expandedText = strings.TrimSpace(original + " " + strings.Join(childExpansionTerms, " "))
	}

	intent := ""
	if len(tags) > 0 {
		intent = tags[0]
	}

	return ExpandedQuery{
		Original:           original,
		Normalized:         normalized,
		ExpandedText:       expandedText,
		ExpandedNormalized: textutil.NormalizeForMatch(expandedText),
		QueryTerms:         textutil.Tokenize(original),
		ExpandedTerms:      textutil.Tokenize(expandedText),
		Tags:               tags,
		Intent:             intent,
		Ages:               ages,
		RequiresExactAge:   requiresExactAge(normalized),
	}
}

func containsChildTrigger(normalized string) bool {
	for _, term := range childTriggerTerms {
		if strings.Contains(normalized, term) {
			return true
		}
	}
	return false
}

// requiresExactAge detects questions demanding the exact minimum age.
func requiresExactAge(normalized string) bool {
	if strings.Contains(normalized, "edad minima exacta") {
		return true
	}
	if strings.Contains(normalized, "edad exacta") {
		return true
	}
	return strings.Contains(normalized, "exacta") && strings.Contains(normalized, "edad")
}
