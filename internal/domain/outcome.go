package domain

// SearchOutcome is one catalog search call's result. CacheHit is reported
// per call rather than through any shared flag, so concurrent resolutions
// cannot observe each other's cache state.
type SearchOutcome struct {
	URLs     []string `json:"urls"`
	CacheHit bool     `json:"cache_hit"`
}

// DetailOutcome is one catalog detail fetch. Fields is nil when the page
// could not be fetched or parsed.
type DetailOutcome struct {
	Fields   *RawFields `json:"fields"`
	CacheHit bool       `json:"cache_hit"`
}
