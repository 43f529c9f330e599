// Package musickey canonicalizes musical key notation. Playlists written by
// DJ software usually carry Camelot codes ("8A"), while catalogs list
// standard notation ("A min", "F# Major", "Dbm"). Both are mapped onto the
// Camelot wheel so equivalence checks are a single string compare.
package musickey

import (
	"regexp"
	"strings"
)

// camelotByKey maps a lowercase "<tonic><mode>" pair to its Camelot code.
// Enharmonic spellings share a code, which is the whole point: G# minor and
// Ab minor are the same key.
var camelotByKey = map[string]string{
	"abmin": "1A", "g#min": "1A",
	"bmaj": "1B", "cbmaj": "1B",
	"ebmin": "2A", "d#min": "2A",
	"f#maj": "2B", "gbmaj": "2B",
	"bbmin": "3A", "a#min": "3A",
	"dbmaj": "3B", "c#maj": "3B",
	"fmin": "4A", "e#min": "4A",
	"abmaj": "4B", "g#maj": "4B",
	"cmin": "5A", "b#min": "5A",
	"ebmaj": "5B", "d#maj": "5B",
	"gmin": "6A",
	"bbmaj": "6B", "a#maj": "6B",
	"dmin": "7A",
	"fmaj": "7B", "e#maj": "7B",
	"amin": "8A",
	"cmaj": "8B", "b#maj": "8B",
	"emin": "9A", "fbmin": "9A",
	"gmaj": "9B",
	"bmin": "10A", "cbmin": "10A",
	"dmaj": "10B",
	"f#min": "11A", "gbmin": "11A",
	"amaj": "11B",
	"dbmin": "12A", "c#min": "12A",
	"emaj": "12B", "fbmaj": "12B",
}

var (
	camelotRe  = regexp.MustCompile(`^0?([1-9]|1[0-2])\s*([ab])$`)
	standardRe = regexp.MustCompile(`^([a-g][#b]?)\s*(.*)$`)
)

// Normalize parses raw key text in Camelot or standard notation and returns
// its canonical Camelot code ("8A"). The second return is false when text is
// empty or not recognizable as a key.
func Normalize(raw string) (string, bool) {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return "", false
	}
	s = strings.ReplaceAll(s, "♯", "#")
	s = strings.ReplaceAll(s, "♭", "b")

	if m := camelotRe.FindStringSubmatch(s); m != nil {
		return m[1] + strings.ToUpper(m[2]), true
	}

	m := standardRe.FindStringSubmatch(s)
	if m == nil {
		return "", false
	}
	tonic := m[1]
	mode, ok := parseMode(strings.TrimSpace(m[2]))
	if !ok {
		return "", false
	}

	code, ok := camelotByKey[tonic+mode]
	return code, ok
}

// parseMode interprets the mode suffix. A bare tonic ("F#") is read as
// major, matching how catalogs abbreviate.
func parseMode(suffix string) (string, bool) {
	switch suffix {
	case "", "maj", "major":
		return "maj", true
	case "m", "min", "minor", "mi":
		return "min", true
	default:
		return "", false
	}
}

// Equivalent reports whether two raw key strings denote the same musical
// key, across notations and enharmonic spellings. Unparseable input is never
// equivalent to anything; adjacent-but-different Camelot keys do not count.
func Equivalent(a, b string) bool {
	ca, okA := Normalize(a)
	if !okA {
		return false
	}
	cb, okB := Normalize(b)
	if !okB {
		return false
	}
	return ca == cb
}
