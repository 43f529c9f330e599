// Package textnorm canonicalizes free-text track titles and artist names and
// scores their similarity. All functions are pure and total: arbitrary input
// never fails, empty input yields empty output.
package textnorm

import (
	"regexp"
	"strings"

	"github.com/gosimple/unidecode"
)

var (
	// Bracketed segments that only carry version/mix noise. The mix parser
	// consumes these separately; for matching purposes they are stripped.
	bracketNoiseRe = regexp.MustCompile(`(?i)[(\[][^)\]]*\b(remix|mix|edit|dub|version|extended|remaster|remastered|instrumental|acapella|cappella|radio|club|original|bootleg|rework|vip|cut)\b[^)\]]*[)\]]`)

	// Featured-artist clauses inside a title, bracketed or trailing.
	featClauseRe = regexp.MustCompile(`(?i)[(\[]\s*(?:feat|ft|featuring)\.?\s+[^)\]]*[)\]]`)

	punctRe      = regexp.MustCompile(`[^\p{L}\p{N}\s]+`)
	whitespaceRe = regexp.MustCompile(`\s+`)

	// Leading track-index prefixes: "[01]", "(2)", "03.", "4)", "05 -".
	trackIndexRe = regexp.MustCompile(`^\s*(?:\[\d{1,3}\]|\(\d{1,3}\)|\d{1,3}[.)]|\d{1,3}\s*-)\s*`)

	// All bracketed segments, noise or not.
	anyBracketRe = regexp.MustCompile(`[(\[][^)\]]*[)\]]`)
)

// stopTokens are filler tokens dropped during normalization. Small on
// purpose: over-aggressive stoplists collapse distinct titles.
var stopTokens = map[string]struct{}{
	"feat":      {},
	"ft":        {},
	"featuring": {},
	"the":       {},
	"vs":        {},
	"versus":    {},
	"pres":      {},
	"presents":  {},
}

// Normalize lowercases, folds diacritics to ASCII, strips bracketed
// version/feat noise, collapses punctuation and whitespace, and removes
// stoplist tokens. Idempotent.
func Normalize(text string) string {
	if text == "" {
		return ""
	}

	text = unidecode.Unidecode(text)
	text = strings.ToLower(text)
	text = bracketNoiseRe.ReplaceAllString(text, " ")
	text = featClauseRe.ReplaceAllString(text, " ")
	text = punctRe.ReplaceAllString(text, " ")

	fields := strings.Fields(text)
	kept := fields[:0]
	for _, f := range fields {
		if _, stop := stopTokens[f]; stop {
			continue
		}
		kept = append(kept, f)
	}
	return strings.Join(kept, " ")
}

// Tokens returns the normalized token list for text.
func Tokens(text string) []string {
	n := Normalize(text)
	if n == "" {
		return nil
	}
	return strings.Fields(n)
}

// TokenSet returns the normalized tokens of text as a set.
func TokenSet(text string) map[string]struct{} {
	tokens := Tokens(text)
	set := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		set[t] = struct{}{}
	}
	return set
}

// SanitizeTitleForSearch strips a leading track-index prefix (e.g. "[03] " or
// "07. ") from a title. Unlike Normalize it preserves case and punctuation so
// the result stays readable in query strings and UIs.
func SanitizeTitleForSearch(title string) string {
	return strings.TrimSpace(trackIndexRe.ReplaceAllString(title, ""))
}

// StripBrackets removes every bracketed segment from a title, preserving the
// case of what remains. Used when building search query text.
func StripBrackets(title string) string {
	out := anyBracketRe.ReplaceAllString(title, " ")
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(out, " "))
}

// ArtistTokenOverlap reports whether two artist strings share at least one
// normalized token. A low similarity score with an overlapping token usually
// means an alternate spelling or ordering, not a different artist.
func ArtistTokenOverlap(a, b string) bool {
	setA := TokenSet(a)
	if len(setA) == 0 {
		return false
	}
	for _, t := range Tokens(b) {
		if _, ok := setA[t]; ok {
			return true
		}
	}
	return false
}
