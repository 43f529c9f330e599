// Package constants contains application-wide constants to avoid magic numbers and strings.
package constants

import "time"

// Application defaults
const (
	DefaultPort              = "8080"
	DefaultDBPath            = "cuepoint.db"
	DefaultCatalogURL        = "https://catalog.example.com"
	DefaultUploadsDir        = "uploads"
	DefaultExportDir         = "exports"
	DefaultPollInterval      = 2 * time.Second
	DefaultHTTPTimeout       = 30 * time.Second
	DefaultRetryCount        = 3
	DefaultRetryBase         = 1 * time.Second
	DefaultCacheTTL          = 12 * time.Hour
	DefaultRequestsPerSecond = 2.0
)

// CatalogMock as CATALOG_URL selects the built-in fixture catalog instead
// of a scraped site.
const CatalogMock = "mock"

// Scoring defaults. TitleWeight + ArtistWeight must sum to 1.0.
const (
	DefaultTitleWeight    = 0.55
	DefaultArtistWeight   = 0.45
	DefaultBonusYear      = 5
	DefaultBonusKey       = 3
	DefaultMinAcceptScore = 50.0
	DefaultArtistSimFloor = 40
)

// Query generation defaults
const (
	DefaultMaxQueriesPerTrack = 12
	DefaultTitleGramMax       = 3
	DefaultMaxComboQueries    = 6
	DefaultTitleComboMaxLen   = 4
	DefaultMaxSearchResults   = 10
)

// Resolver loop defaults
const (
	DefaultEarlyExitScore      = 90.0
	DefaultEarlyExitMinQueries = 2
	DefaultResultCapLow        = 3
	DefaultResultCapMed        = 5
	DefaultResultCapHigh       = 10
	DefaultPerTrackBudget      = 45 * time.Second
	DefaultTrackWorkers        = 4
	DefaultDetailFetchWorkers  = 1
)

// Database tables
const (
	JobsTable         = "jobs"
	TrackResultsTable = "track_results"
	CandidatesTable   = "candidates"
	CacheTable        = "cache"
)

// File Extensions
const (
	ExtXML  = ".xml"
	ExtM3U  = ".m3u"
	ExtM3U8 = ".m3u8"
	ExtFLAC = ".flac"
	ExtMP3  = ".mp3"
	ExtCSV  = ".csv"
	ExtJSON = ".json"
)

// File Permissions
const (
	DirPermissions  = 0755
	FilePermissions = 0644
)

// Export file name template
const DefaultExportTemplate = "{{.Playlist}}-{{.Date}}"

// Characters to sanitize from filesystem paths
const InvalidPathChars = "<>:\"/\\|?*"
