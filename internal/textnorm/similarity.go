package textnorm

import (
	"math"
	"sort"
	"strings"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"
	"github.com/agnivade/levenshtein"
)

// TitleSimilarity scores two titles in [0,100]. Token-set based: symmetric,
// order-independent and tolerant of one side carrying extra tokens.
// Identical non-empty titles score 100; an empty side scores 0.
func TitleSimilarity(a, b string) int {
	na, nb := Normalize(a), Normalize(b)
	if na == "" || nb == "" {
		return 0
	}
	if na == nb {
		return 100
	}
	return clampScore(maxInt(tokenSetRatio(na, nb), ratio(na, nb)))
}

// ArtistSimilarity scores two artist strings in [0,100]. Artist lists are
// frequently reordered and joined with different separators, so the bigram
// Sorensen-Dice coefficient is blended in alongside the token-set ratio.
func ArtistSimilarity(a, b string) int {
	na, nb := Normalize(a), Normalize(b)
	if na == "" || nb == "" {
		return 0
	}
	if na == nb {
		return 100
	}
	dice := int(math.Round(strutil.Similarity(na, nb, metrics.NewSorensenDice()) * 100))
	return clampScore(maxInt(tokenSetRatio(na, nb), dice))
}

// ratio is the levenshtein similarity of two strings scaled to 0-100.
func ratio(a, b string) int {
	if a == b {
		return 100
	}
	maxLen := maxInt(len([]rune(a)), len([]rune(b)))
	if maxLen == 0 {
		return 100
	}
	dist := levenshtein.ComputeDistance(a, b)
	return clampScore(int(math.Round((1 - float64(dist)/float64(maxLen)) * 100)))
}

// tokenSetRatio compares the shared token core of both strings against each
// side's full sorted token set and keeps the best pairwise ratio. A strict
// token subset therefore scores 100 here; the resolver's subset guard is
// responsible for rejecting implausible subsets.
func tokenSetRatio(na, nb string) int {
	ta := strings.Fields(na)
	tb := strings.Fields(nb)

	inB := make(map[string]struct{}, len(tb))
	for _, t := range tb {
		inB[t] = struct{}{}
	}

	var shared, aOnly []string
	seen := make(map[string]struct{}, len(ta))
	for _, t := range ta {
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		if _, ok := inB[t]; ok {
			shared = append(shared, t)
		} else {
			aOnly = append(aOnly, t)
		}
	}

	inA := seen
	var bOnly []string
	seenB := make(map[string]struct{}, len(tb))
	for _, t := range tb {
		if _, dup := seenB[t]; dup {
			continue
		}
		seenB[t] = struct{}{}
		if _, ok := inA[t]; !ok {
			bOnly = append(bOnly, t)
		}
	}

	sort.Strings(shared)
	sort.Strings(aOnly)
	sort.Strings(bOnly)

	core := strings.Join(shared, " ")
	full1 := strings.TrimSpace(core + " " + strings.Join(aOnly, " "))
	full2 := strings.TrimSpace(core + " " + strings.Join(bOnly, " "))

	best := ratio(full1, full2)
	if core != "" {
		if r := ratio(core, full1); r > best {
			best = r
		}
		if r := ratio(core, full2); r > best {
			best = r
		}
	}
	return best
}

func clampScore(n int) int {
	if n < 0 {
		return 0
	}
	if n > 100 {
		return 100
	}
	return n
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
