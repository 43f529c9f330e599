package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/stuchain/cuepoint/internal/constants"
)

// Config holds all application configuration
type Config struct {
	Port       string
	DBPath     string
	UploadsDir string
	ExportDir  string
	CatalogURL string
	LogLevel   string
	LogFormat  string
	LogFile    string
	CacheTTL   time.Duration

	// Catalog client pacing.
	RequestsPerSecond float64

	Resolver ResolverConfig
}

// ResolverConfig carries the matching tunables read once per resolution.
type ResolverConfig struct {
	TitleWeight         float64
	ArtistWeight        float64
	BonusYear           int
	BonusKey            int
	MinAcceptScore      float64
	ArtistSimFloor      int
	MaxSearchResults    int
	MaxQueriesPerTrack  int
	EarlyExitScore      float64
	EarlyExitMinQueries int
	TitleGramMax        int
	MaxComboQueries     int
	TitleComboMaxLen    int
	ResultCapLow        int
	ResultCapMed        int
	ResultCapHigh       int
	ReverseOrderQueries bool
	CrossNGramsArtist   bool
	PerTrackBudget      time.Duration
	TrackWorkers        int
	DetailFetchWorkers  int
}

// Load loads configuration from environment variables with defaults
func Load() *Config {
	return &Config{
		Port:              getEnv("PORT", constants.DefaultPort),
		DBPath:            getEnv("DB_PATH", constants.DefaultDBPath),
		UploadsDir:        getEnv("UPLOADS_DIR", constants.DefaultUploadsDir),
		ExportDir:         getEnv("EXPORT_DIR", constants.DefaultExportDir),
		CatalogURL:        getEnv("CATALOG_URL", constants.DefaultCatalogURL),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		LogFormat:         getEnv("LOG_FORMAT", "text"),
		LogFile:           getEnv("LOG_FILE", ""),
		CacheTTL:          getEnvDuration("CACHE_TTL", constants.DefaultCacheTTL),
		RequestsPerSecond: getEnvFloat("REQUESTS_PER_SECOND", constants.DefaultRequestsPerSecond),
		Resolver: ResolverConfig{
			TitleWeight:         getEnvFloat("TITLE_WEIGHT", constants.DefaultTitleWeight),
			ArtistWeight:        getEnvFloat("ARTIST_WEIGHT", constants.DefaultArtistWeight),
			BonusYear:           getEnvInt("BONUS_YEAR", constants.DefaultBonusYear),
			BonusKey:            getEnvInt("BONUS_KEY", constants.DefaultBonusKey),
			MinAcceptScore:      getEnvFloat("MIN_ACCEPT_SCORE", constants.DefaultMinAcceptScore),
			ArtistSimFloor:      getEnvInt("ARTIST_SIM_FLOOR", constants.DefaultArtistSimFloor),
			MaxSearchResults:    getEnvInt("MAX_SEARCH_RESULTS", constants.DefaultMaxSearchResults),
			MaxQueriesPerTrack:  getEnvInt("MAX_QUERIES_PER_TRACK", constants.DefaultMaxQueriesPerTrack),
			EarlyExitScore:      getEnvFloat("EARLY_EXIT_SCORE", constants.DefaultEarlyExitScore),
			EarlyExitMinQueries: getEnvInt("EARLY_EXIT_MIN_QUERIES", constants.DefaultEarlyExitMinQueries),
			TitleGramMax:        getEnvInt("TITLE_GRAM_MAX", constants.DefaultTitleGramMax),
			MaxComboQueries:     getEnvInt("MAX_COMBO_QUERIES", constants.DefaultMaxComboQueries),
			TitleComboMaxLen:    getEnvInt("TITLE_COMBO_MAX_LEN", constants.DefaultTitleComboMaxLen),
			ResultCapLow:        getEnvInt("MR_LOW", constants.DefaultResultCapLow),
			ResultCapMed:        getEnvInt("MR_MED", constants.DefaultResultCapMed),
			ResultCapHigh:       getEnvInt("MR_HIGH", constants.DefaultResultCapHigh),
			ReverseOrderQueries: getEnvBool("REVERSE_ORDER_QUERIES", false),
			CrossNGramsArtist:   getEnvBool("CROSS_NGRAMS_WITH_ARTIST", true),
			PerTrackBudget:      getEnvDuration("PER_TRACK_TIME_BUDGET", constants.DefaultPerTrackBudget),
			TrackWorkers:        getEnvInt("TRACK_WORKERS", constants.DefaultTrackWorkers),
			DetailFetchWorkers:  getEnvInt("DETAIL_FETCH_WORKERS", constants.DefaultDetailFetchWorkers),
		},
	}
}

// Validate validates the configuration and returns detailed errors
func (c *Config) Validate() error {
	var errors []string

	// Validate Port
	if c.Port == "" {
		errors = append(errors, "PORT cannot be empty")
	} else {
		port, err := strconv.Atoi(c.Port)
		if err != nil {
			errors = append(errors, fmt.Sprintf("PORT must be a valid number, got: %s", c.Port))
		} else if port < 1 || port > 65535 {
			errors = append(errors, fmt.Sprintf("PORT must be between 1 and 65535, got: %d", port))
		}
	}

	// Validate DBPath
	if c.DBPath == "" {
		errors = append(errors, "DB_PATH cannot be empty")
	}

	// Validate UploadsDir / ExportDir
	if c.UploadsDir == "" {
		errors = append(errors, "UPLOADS_DIR cannot be empty")
	}
	if c.ExportDir == "" {
		errors = append(errors, "EXPORT_DIR cannot be empty")
	}

	// Validate CatalogURL. "mock" is not a URL but selects the built-in
	// fixture catalog.
	if c.CatalogURL == "" {
		errors = append(errors, "CATALOG_URL cannot be empty")
	} else if c.CatalogURL != constants.CatalogMock {
		if u, err := url.Parse(c.CatalogURL); err != nil || u.Scheme == "" || u.Host == "" {
			errors = append(errors, fmt.Sprintf("CATALOG_URL is not a valid URL: %s", c.CatalogURL))
		}
	}

	// Validate LogLevel
	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		errors = append(errors, fmt.Sprintf("LOG_LEVEL must be one of: debug, info, warn, error, got: %s", c.LogLevel))
	}

	// Validate LogFormat
	validLogFormats := map[string]bool{
		"text": true,
		"json": true,
	}
	if !validLogFormats[c.LogFormat] {
		errors = append(errors, fmt.Sprintf("LOG_FORMAT must be one of: text, json, got: %s", c.LogFormat))
	}

	if c.RequestsPerSecond <= 0 {
		errors = append(errors, fmt.Sprintf("REQUESTS_PER_SECOND must be positive, got: %g", c.RequestsPerSecond))
	}

	errors = append(errors, c.Resolver.validate()...)

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(errors, "\n  - "))
	}

	return nil
}

func (r *ResolverConfig) validate() []string {
	var errors []string

	// The weights are a convex blend over 0-100 similarities.
	if sum := r.TitleWeight + r.ArtistWeight; sum < 0.999 || sum > 1.001 {
		errors = append(errors, fmt.Sprintf("TITLE_WEIGHT + ARTIST_WEIGHT must sum to 1.0, got: %g", sum))
	}
	if r.TitleWeight < 0 || r.ArtistWeight < 0 {
		errors = append(errors, "scoring weights cannot be negative")
	}
	if r.BonusYear < 0 {
		errors = append(errors, fmt.Sprintf("BONUS_YEAR cannot be negative, got: %d", r.BonusYear))
	}
	if r.BonusKey < 0 {
		errors = append(errors, fmt.Sprintf("BONUS_KEY cannot be negative, got: %d", r.BonusKey))
	}
	if r.MaxQueriesPerTrack < 1 {
		errors = append(errors, fmt.Sprintf("MAX_QUERIES_PER_TRACK must be at least 1, got: %d", r.MaxQueriesPerTrack))
	}
	if r.MaxSearchResults < 1 {
		errors = append(errors, fmt.Sprintf("MAX_SEARCH_RESULTS must be at least 1, got: %d", r.MaxSearchResults))
	}
	if r.EarlyExitMinQueries < 1 {
		errors = append(errors, fmt.Sprintf("EARLY_EXIT_MIN_QUERIES must be at least 1, got: %d", r.EarlyExitMinQueries))
	}
	if r.TitleGramMax < 2 {
		errors = append(errors, fmt.Sprintf("TITLE_GRAM_MAX must be at least 2, got: %d", r.TitleGramMax))
	}
	if r.ResultCapLow < 1 || r.ResultCapMed < r.ResultCapLow || r.ResultCapHigh < r.ResultCapMed {
		errors = append(errors, fmt.Sprintf("result caps must satisfy 1 <= MR_LOW <= MR_MED <= MR_HIGH, got: %d/%d/%d",
			r.ResultCapLow, r.ResultCapMed, r.ResultCapHigh))
	}
	if r.PerTrackBudget <= 0 {
		errors = append(errors, fmt.Sprintf("PER_TRACK_TIME_BUDGET must be positive, got: %v", r.PerTrackBudget))
	}
	if r.TrackWorkers < 1 {
		errors = append(errors, fmt.Sprintf("TRACK_WORKERS must be at least 1, got: %d", r.TrackWorkers))
	}
	if r.DetailFetchWorkers < 1 {
		errors = append(errors, fmt.Sprintf("DETAIL_FETCH_WORKERS must be at least 1, got: %d", r.DetailFetchWorkers))
	}

	return errors
}

// getEnv retrieves an environment variable with a fallback default
func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if value, ok := os.LookupEnv(key); ok {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
		// Bare numbers are taken as seconds.
		if n, err := strconv.Atoi(value); err == nil {
			return time.Duration(n) * time.Second
		}
	}
	return fallback
}
