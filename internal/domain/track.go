package domain

// QueryType classifies a generated search query. The resolver uses it to pick
// an adaptive result cap per query, and the audit trail records it so review
// tooling can tell a confident priority query from a broad n-gram sweep.
type QueryType string

const (
	QueryTypePriority    QueryType = "priority"
	QueryTypeRemix       QueryType = "remix"
	QueryTypeExactPhrase QueryType = "exact_phrase"
	QueryTypeNGram       QueryType = "n_gram"
	QueryTypeCombo       QueryType = "combo"
)

// SearchQuery is one catalog search query string tagged with its type.
// Order within a slice of SearchQuery is significant: earlier queries carry
// higher prior confidence and are tried first.
type SearchQuery struct {
	Text string    `json:"text"`
	Type QueryType `json:"type"`
}

// MixFlags holds the structured mix/version markers extracted from a track
// title. Derived once per track and never mutated afterward.
type MixFlags struct {
	IsRemix    bool     `json:"is_remix"`
	IsExtended bool     `json:"is_extended"`
	IsClub     bool     `json:"is_club"`
	IsDub      bool     `json:"is_dub"`
	IsAcapella bool     `json:"is_acapella"`
	IsOriginal bool     `json:"is_original"`
	Remixers   []string `json:"remixers,omitempty"`
}

// RequiresVariant reports whether the title explicitly asked for a
// remix/extended/club/dub/acapella variant, i.e. a candidate without a
// matching marker is suspect.
func (m MixFlags) RequiresVariant() bool {
	return m.IsRemix || m.IsExtended || m.IsClub || m.IsDub || m.IsAcapella
}

// ExpectsShortTitle reports whether the flags make a stripped-down candidate
// title plausible (acapella and dub cuts are often listed under a bare title).
func (m MixFlags) ExpectsShortTitle() bool {
	return m.IsAcapella || m.IsDub
}

// TrackQuery is the input to one resolution. It is immutable for the
// duration of the call.
type TrackQuery struct {
	Title      string `json:"title"`
	ArtistText string `json:"artist_text"`

	// YearHint and KeyHint come from the playlist metadata when available.
	// Zero / empty means no hint.
	YearHint int    `json:"year_hint,omitempty"`
	KeyHint  string `json:"key_hint,omitempty"`

	// TitleOnly resolution excludes artist similarity from scoring and
	// guards. Used when the playlist carries no artist text.
	TitleOnly bool `json:"title_only,omitempty"`

	// Mix and GenericPhrases are derived from Title by the resolver when
	// nil; callers that already parsed the title may supply them.
	Mix            *MixFlags `json:"mix,omitempty"`
	GenericPhrases []string  `json:"generic_phrases,omitempty"`

	// Queries overrides query generation entirely when non-empty.
	Queries []SearchQuery `json:"queries,omitempty"`
}

// RawFields is the untyped field bag scraped from one catalog track page.
// Every field is individually optional.
type RawFields struct {
	Title       string `json:"title"`
	Artists     string `json:"artists"`
	Key         string `json:"key"`
	ReleaseYear int    `json:"release_year"`
	BPM         int    `json:"bpm"`
	Label       string `json:"label"`
	Genre       string `json:"genre"`
	ReleaseName string `json:"release_name"`
	ReleaseDate string `json:"release_date"`
	ArtworkURL  string `json:"artwork_url"`
}

// CandidateRecord is one fetched catalog item plus its full score breakdown.
// Invariants: Score == max(0, BaseScore+BonusYear+BonusKey); GuardOK == false
// implies IsWinner == false; TitleSim and ArtistSim are within [0,100].
type CandidateRecord struct {
	URL         string `json:"url" db:"url"`
	Title       string `json:"title" db:"title"`
	Artists     string `json:"artists" db:"artists"`
	Key         string `json:"key" db:"key_name"`
	ReleaseYear int    `json:"release_year" db:"release_year"`
	BPM         int    `json:"bpm" db:"bpm"`
	Label       string `json:"label" db:"label"`
	Genre       string `json:"genre" db:"genre"`
	ReleaseName string `json:"release_name" db:"release_name"`
	ReleaseDate string `json:"release_date" db:"release_date"`
	ArtworkURL  string `json:"artwork_url,omitempty" db:"artwork_url"`

	TitleSim     int     `json:"title_sim" db:"title_sim"`
	ArtistSim    int     `json:"artist_sim" db:"artist_sim"`
	BaseScore    float64 `json:"base_score" db:"base_score"`
	BonusYear    int     `json:"bonus_year" db:"bonus_year"`
	BonusKey     int     `json:"bonus_key" db:"bonus_key"`
	Score        float64 `json:"score" db:"score"`
	GuardOK      bool    `json:"guard_ok" db:"guard_ok"`
	RejectReason string  `json:"reject_reason,omitempty" db:"reject_reason"`

	QueryIndex     int    `json:"query_index" db:"query_index"`
	QueryText      string `json:"query_text" db:"query_text"`
	CandidateIndex int    `json:"candidate_index" db:"candidate_index"`
	ElapsedMS      int64  `json:"elapsed_ms" db:"elapsed_ms"`
	IsWinner       bool   `json:"is_winner" db:"is_winner"`
}

// QueryAuditEntry records one executed search query. A failed search keeps
// its entry with zero candidates and Error populated.
type QueryAuditEntry struct {
	QueryIndex     int       `json:"query_index" db:"query_index"`
	QueryText      string    `json:"query_text" db:"query_text"`
	QueryType      QueryType `json:"query_type" db:"query_type"`
	CandidateCount int       `json:"candidate_count" db:"candidate_count"`
	ElapsedMS      int64     `json:"elapsed_ms" db:"elapsed_ms"`
	CacheHit       bool      `json:"cache_hit" db:"cache_hit"`
	Error          string    `json:"error,omitempty" db:"error"`
}

// ResolutionResult is the complete outcome of resolving one TrackQuery.
// Candidates holds every fetched record in discovery order, winner included.
// LastQueryIndex is -1 when no query was evaluated.
type ResolutionResult struct {
	Best           *CandidateRecord  `json:"best,omitempty"`
	Candidates     []CandidateRecord `json:"candidates"`
	QueryAudit     []QueryAuditEntry `json:"query_audit"`
	LastQueryIndex int               `json:"last_query_index"`
}

// Matched reports whether the resolution produced a winner.
func (r *ResolutionResult) Matched() bool {
	return r.Best != nil
}
