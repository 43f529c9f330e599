// Package querygen turns one track's title/artist/mix data into an ordered,
// deduplicated, budgeted list of catalog search queries. Order encodes prior
// confidence: the resolver evaluates earlier queries first and may stop
// before reaching the tail.
package querygen

import (
	"strings"

	"github.com/stuchain/cuepoint/internal/domain"
	"github.com/stuchain/cuepoint/internal/textnorm"
)

// Options bounds query generation. Zero values are replaced by Normalized.
type Options struct {
	MaxQueries        int  // hard cap on the returned list
	TitleGramMax      int  // largest n-gram window over title tokens
	MaxComboQueries   int  // cap on token-combination queries
	TitleComboMaxLen  int  // max title token count for combo/exact-phrase synthesis
	CrossNGramsArtist bool // pair n-grams with the artist text
	ReverseOrder      bool // reverse everything after the priority query
}

// Normalized returns o with unset fields replaced by conservative defaults.
func (o Options) Normalized() Options {
	if o.MaxQueries < 1 {
		o.MaxQueries = 12
	}
	if o.TitleGramMax < 2 {
		o.TitleGramMax = 3
	}
	if o.MaxComboQueries < 1 {
		o.MaxComboQueries = 6
	}
	if o.TitleComboMaxLen < 2 {
		o.TitleComboMaxLen = 4
	}
	return o
}

// Make builds the search query list for one track. In title-only mode the
// artist text is ignored entirely. The result is deduplicated
// case-insensitively and truncated to the query budget.
func Make(title, artistText string, mix domain.MixFlags, genericPhrases []string, titleOnly bool, opts Options) []domain.SearchQuery {
	opts = opts.Normalized()

	cleanTitle := textnorm.StripBrackets(textnorm.SanitizeTitleForSearch(title))
	if cleanTitle == "" {
		cleanTitle = strings.TrimSpace(title)
	}
	artist := strings.TrimSpace(artistText)
	if titleOnly {
		artist = ""
	}
	if cleanTitle == "" && artist == "" {
		return nil
	}

	var priority []domain.SearchQuery
	var rest []domain.SearchQuery

	// 1. Priority: title plus the full artist string verbatim.
	if !titleOnly && artist != "" {
		priority = append(priority, domain.SearchQuery{
			Text: joinQuery(cleanTitle, artist),
			Type: domain.QueryTypePriority,
		})
	}

	// 2. Remix queries: catalogs often index a remix under the remixer.
	if mix.IsRemix {
		for _, remixer := range mix.Remixers {
			rest = append(rest, domain.SearchQuery{
				Text: joinQuery(cleanTitle, remixer),
				Type: domain.QueryTypeRemix,
			})
		}
	}

	tokens := strings.Fields(cleanTitle)

	// 3. Exact phrase, for titles short enough to plausibly appear verbatim.
	if len(tokens) > 0 && len(tokens) <= opts.TitleComboMaxLen {
		rest = append(rest, domain.SearchQuery{
			Text: joinQuery(`"`+cleanTitle+`"`, artist),
			Type: domain.QueryTypeExactPhrase,
		})
	}

	// 4. Sliding-window n-grams over the title tokens.
	for _, gram := range titleGrams(tokens, opts.TitleGramMax) {
		text := gram
		if opts.CrossNGramsArtist && artist != "" {
			text = joinQuery(gram, artist)
		}
		rest = append(rest, domain.SearchQuery{Text: text, Type: domain.QueryTypeNGram})
	}

	// 5. Token combinations for short multi-token titles.
	if len(tokens) >= 2 && len(tokens) <= opts.TitleComboMaxLen {
		for _, combo := range tokenCombos(tokens, opts.MaxComboQueries) {
			rest = append(rest, domain.SearchQuery{
				Text: joinQuery(combo, artist),
				Type: domain.QueryTypeCombo,
			})
		}
	}

	// 6. Generic bracketed phrases the catalog may store literally.
	for _, phrase := range genericPhrases {
		phrase = strings.TrimSpace(phrase)
		if phrase == "" {
			continue
		}
		rest = append(rest, domain.SearchQuery{
			Text: joinQuery(cleanTitle, phrase),
			Type: domain.QueryTypeExactPhrase,
		})
	}

	// The reverse-order policy biases toward broad queries first without
	// touching generation; the priority query keeps its slot.
	if opts.ReverseOrder {
		for i, j := 0, len(rest)-1; i < j; i, j = i+1, j-1 {
			rest[i], rest[j] = rest[j], rest[i]
		}
	}

	out := dedupe(append(priority, rest...))
	if len(out) > opts.MaxQueries {
		out = out[:opts.MaxQueries]
	}
	return out
}

// titleGrams returns sliding-window n-grams of the title tokens, widest
// windows first. Duplicates of earlier queries fall to the dedupe pass.
func titleGrams(tokens []string, gramMax int) []string {
	var grams []string
	for n := minInt(gramMax, len(tokens)); n >= 2; n-- {
		for start := 0; start+n <= len(tokens); start++ {
			grams = append(grams, strings.Join(tokens[start:start+n], " "))
		}
	}
	return grams
}

// tokenCombos returns in-order token combinations of length 2..len-1,
// shortest-first within a length, capped at maxCombos.
func tokenCombos(tokens []string, maxCombos int) []string {
	var combos []string
	n := len(tokens)

	// Enumerate subsequences by bitmask; order is stable for a given title.
	for size := n - 1; size >= 2; size-- {
		for mask := (1 << n) - 1; mask > 0 && len(combos) < maxCombos; mask-- {
			if popcount(mask) != size {
				continue
			}
			var parts []string
			for i := 0; i < n; i++ {
				if mask&(1<<i) != 0 {
					parts = append(parts, tokens[i])
				}
			}
			combo := strings.Join(parts, " ")
			if combo != strings.Join(tokens, " ") {
				combos = append(combos, combo)
			}
		}
		if len(combos) >= maxCombos {
			break
		}
	}
	return combos
}

func joinQuery(parts ...string) string {
	var kept []string
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, " ")
}

// dedupe removes case-insensitive duplicates, keeping first occurrence.
func dedupe(queries []domain.SearchQuery) []domain.SearchQuery {
	seen := make(map[string]struct{}, len(queries))
	out := queries[:0]
	for _, q := range queries {
		key := strings.Join(strings.Fields(strings.ToLower(q.Text)), " ")
		if key == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, q)
	}
	return out
}

func popcount(x int) int {
	count := 0
	for x > 0 {
		count += x & 1
		x >>= 1
	}
	return count
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
