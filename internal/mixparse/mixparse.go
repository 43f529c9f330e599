// Package mixparse extracts structured mix/version markers from bracketed
// text in track titles: "(Extended Mix)", "[Artist Remix]", "(Dub)" and the
// like. Parsing is pure and total; a title with no markers yields all-false
// flags.
package mixparse

import (
	"regexp"
	"strings"

	"github.com/stuchain/cuepoint/internal/domain"
)

var (
	bracketRe    = regexp.MustCompile(`[(\[]([^)\]]+)[)\]]`)
	remixerSepRe = regexp.MustCompile(`(?i)\s*(?:,|&|\+|\bx\b|\bvs\.?\b|\band\b)\s*`)
)

// markerWords are tokens that mark a bracket as mix/version noise rather
// than a generic phrase. Tokens listed here are also excluded from remixer
// name capture.
var markerWords = map[string]struct{}{
	"remix":    {},
	"mix":      {},
	"extended": {},
	"club":     {},
	"dub":      {},
	"acapella": {},
	"cappella": {},
	"original": {},
	"edit":     {},
	"radio":    {},
	"version":  {},
	"vip":      {},
	"rework":   {},
	"bootleg":  {},
}

// ParseMixFlags scans the bracketed segments of title for known markers.
//
// "remix"/"mix" set IsRemix, with the tokens preceding "remix" in the same
// bracket captured as remixer names. A bracket reading "original" or
// "original mix" sets only IsOriginal: an original mix is the base version,
// not a remix to hunt variants for.
func ParseMixFlags(title string) domain.MixFlags {
	var flags domain.MixFlags
	seen := make(map[string]struct{})

	for _, m := range bracketRe.FindAllStringSubmatch(title, -1) {
		inner := strings.TrimSpace(m[1])
		lower := strings.ToLower(inner)
		words := strings.Fields(lower)
		if len(words) == 0 {
			continue
		}

		if isOriginalMarker(words) {
			flags.IsOriginal = true
			continue
		}

		hasWord := func(w string) bool {
			for _, t := range words {
				if t == w {
					return true
				}
			}
			return false
		}

		if hasWord("extended") {
			flags.IsExtended = true
		}
		if hasWord("club") {
			flags.IsClub = true
		}
		if hasWord("dub") {
			flags.IsDub = true
		}
		if hasWord("acapella") || strings.Contains(lower, "a cappella") || hasWord("cappella") {
			flags.IsAcapella = true
		}

		if hasWord("remix") || hasWord("mix") {
			flags.IsRemix = true
			for _, name := range remixerNames(inner) {
				key := strings.ToLower(name)
				if _, dup := seen[key]; dup {
					continue
				}
				seen[key] = struct{}{}
				flags.Remixers = append(flags.Remixers, name)
			}
		}
	}

	return flags
}

// ExtractGenericPhrases collects bracketed phrases that match none of the
// known markers, preserving their original casing. A catalog that stores
// "(Purple Disco Machine's Late Nite Dub)" verbatim can then still be hit
// with a literal query.
func ExtractGenericPhrases(title string) []string {
	var phrases []string
	seen := make(map[string]struct{})

	for _, m := range bracketRe.FindAllStringSubmatch(title, -1) {
		inner := strings.TrimSpace(m[1])
		if inner == "" {
			continue
		}
		if containsMarker(strings.ToLower(inner)) {
			continue
		}
		key := strings.ToLower(inner)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		phrases = append(phrases, inner)
	}
	return phrases
}

// isOriginalMarker reports whether the bracket is purely an "original"
// marker ("original", "original mix", "original version").
func isOriginalMarker(words []string) bool {
	if words[0] != "original" {
		return false
	}
	for _, w := range words[1:] {
		if w != "mix" && w != "version" {
			return false
		}
	}
	return true
}

func containsMarker(lower string) bool {
	if strings.Contains(lower, "a cappella") {
		return true
	}
	for _, w := range strings.Fields(lower) {
		if _, ok := markerWords[w]; ok {
			return true
		}
		if w == "feat" || w == "ft" || w == "featuring" {
			return true
		}
	}
	return false
}

// remixerNames captures the artist name(s) preceding "remix" inside one
// bracket. "(Tiesto Extended Remix)" yields ["Tiesto"]; "(Remix)" yields
// nothing; "(A & B Remix)" yields both names.
func remixerNames(inner string) []string {
	words := strings.Fields(inner)
	idx := -1
	for i, w := range words {
		if strings.EqualFold(w, "remix") {
			idx = i
			break
		}
	}
	if idx <= 0 {
		return nil
	}

	var nameWords []string
	for _, w := range words[:idx] {
		if _, marker := markerWords[strings.ToLower(w)]; marker {
			continue
		}
		nameWords = append(nameWords, w)
	}
	if len(nameWords) == 0 {
		return nil
	}

	joined := strings.Join(nameWords, " ")
	var names []string
	for _, part := range remixerSepRe.Split(joined, -1) {
		part = strings.TrimSpace(part)
		if part != "" {
			names = append(names, part)
		}
	}
	return names
}
