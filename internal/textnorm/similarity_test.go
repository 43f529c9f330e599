package textnorm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTitleSimilarityContract(t *testing.T) {
	// Identity on non-empty input.
	assert.Equal(t, 100, TitleSimilarity("Strobe", "Strobe"))
	// Empty on either side.
	assert.Equal(t, 0, TitleSimilarity("", "Strobe"))
	assert.Equal(t, 0, TitleSimilarity("Strobe", ""))
	assert.Equal(t, 0, TitleSimilarity("", ""))
}

func TestTitleSimilaritySymmetric(t *testing.T) {
	pairs := [][2]string{
		{"Midnight City", "Midnight City (Radio Edit)"},
		{"Son of Sun", "Son"},
		{"Opus", "Levels"},
		{"Café del Mar", "Cafe Del Mar"},
	}
	for _, p := range pairs {
		assert.Equal(t, TitleSimilarity(p[0], p[1]), TitleSimilarity(p[1], p[0]),
			"similarity must be symmetric for %q / %q", p[0], p[1])
	}
}

func TestTitleSimilarityBounds(t *testing.T) {
	pairs := [][2]string{
		{"a", "completely different words here"},
		{"one two three", "three two one"},
		{"x", "x y z"},
	}
	for _, p := range pairs {
		s := TitleSimilarity(p[0], p[1])
		assert.GreaterOrEqual(t, s, 0)
		assert.LessOrEqual(t, s, 100)
	}
}

func TestTitleSimilarityTokenOrder(t *testing.T) {
	// Token-set scoring is order independent.
	assert.Equal(t, 100, TitleSimilarity("one two three", "three two one"))
}

func TestTitleSimilarityVersionNoise(t *testing.T) {
	// Bracketed version noise is normalized away before comparison.
	assert.Equal(t, 100, TitleSimilarity("Test Track (Extended Mix)", "Test Track (Original Mix)"))
	// Genuinely different titles stay well apart.
	assert.Less(t, TitleSimilarity("Strobe", "Ghosts n Stuff"), 50)
}

func TestTitleSimilaritySubsetScoresHigh(t *testing.T) {
	// A strict token subset scores high by design; the resolver's subset
	// guard decides whether to trust it.
	assert.GreaterOrEqual(t, TitleSimilarity("Son of Sun", "Son"), 90)
}

func TestArtistSimilarity(t *testing.T) {
	assert.Equal(t, 100, ArtistSimilarity("Bicep", "Bicep"))
	assert.Equal(t, 0, ArtistSimilarity("", "Bicep"))

	// Reordered multi-artist lists stay close to 100.
	assert.GreaterOrEqual(t, ArtistSimilarity("Eric Prydz, CamelPhat", "CamelPhat & Eric Prydz"), 90)

	// Alternate separators.
	assert.GreaterOrEqual(t, ArtistSimilarity("Above & Beyond", "Above and Beyond"), 80)

	// Unrelated names stay low.
	assert.Less(t, ArtistSimilarity("Bicep", "Four Tet"), 40)
}

func TestRatio(t *testing.T) {
	assert.Equal(t, 100, ratio("abc", "abc"))
	assert.Equal(t, 0, ratio("abcd", "wxyz"))
	mid := ratio("kitten", "sitten")
	assert.Greater(t, mid, 50)
	assert.Less(t, mid, 100)
}
