package config

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stuchain/cuepoint/internal/constants"
)

func TestLoad(t *testing.T) {
	// Test default values
	cfg := Load()

	if cfg.Port != constants.DefaultPort {
		t.Errorf("Expected Port to be %s, got %s", constants.DefaultPort, cfg.Port)
	}

	if cfg.DBPath != constants.DefaultDBPath {
		t.Errorf("Expected DBPath to be %s, got %s", constants.DefaultDBPath, cfg.DBPath)
	}

	if cfg.CatalogURL != constants.DefaultCatalogURL {
		t.Errorf("Expected CatalogURL to be %s, got %s", constants.DefaultCatalogURL, cfg.CatalogURL)
	}

	if cfg.Resolver.TitleWeight != constants.DefaultTitleWeight {
		t.Errorf("Expected TitleWeight to be %f, got %f", constants.DefaultTitleWeight, cfg.Resolver.TitleWeight)
	}

	if cfg.Resolver.TrackWorkers != constants.DefaultTrackWorkers {
		t.Errorf("Expected TrackWorkers to be %d, got %d", constants.DefaultTrackWorkers, cfg.Resolver.TrackWorkers)
	}
}

func TestLoadWithEnvVars(t *testing.T) {
	os.Setenv("PORT", "9090")
	os.Setenv("MAX_QUERIES_PER_TRACK", "5")
	os.Setenv("EARLY_EXIT_SCORE", "85")
	os.Setenv("REVERSE_ORDER_QUERIES", "true")
	os.Setenv("PER_TRACK_TIME_BUDGET", "20")
	defer func() {
		os.Unsetenv("PORT")
		os.Unsetenv("MAX_QUERIES_PER_TRACK")
		os.Unsetenv("EARLY_EXIT_SCORE")
		os.Unsetenv("REVERSE_ORDER_QUERIES")
		os.Unsetenv("PER_TRACK_TIME_BUDGET")
	}()

	cfg := Load()

	if cfg.Port != "9090" {
		t.Errorf("Expected Port to be 9090, got %s", cfg.Port)
	}
	if cfg.Resolver.MaxQueriesPerTrack != 5 {
		t.Errorf("Expected MaxQueriesPerTrack to be 5, got %d", cfg.Resolver.MaxQueriesPerTrack)
	}
	if cfg.Resolver.EarlyExitScore != 85 {
		t.Errorf("Expected EarlyExitScore to be 85, got %f", cfg.Resolver.EarlyExitScore)
	}
	if !cfg.Resolver.ReverseOrderQueries {
		t.Error("Expected ReverseOrderQueries to be true")
	}
	// Bare number is seconds.
	if cfg.Resolver.PerTrackBudget != 20*time.Second {
		t.Errorf("Expected PerTrackBudget to be 20s, got %v", cfg.Resolver.PerTrackBudget)
	}
}

func TestValidateDefaults(t *testing.T) {
	cfg := Load()
	if err := cfg.Validate(); err != nil {
		t.Errorf("Expected default config to validate, got: %v", err)
	}
}

func TestValidateErrors(t *testing.T) {
	cfg := Load()
	cfg.Port = "not-a-port"
	cfg.CatalogURL = "::broken"
	cfg.Resolver.TitleWeight = 0.9 // weights no longer sum to 1.0
	cfg.Resolver.TrackWorkers = 0

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Expected validation to fail")
	}

	msg := err.Error()
	for _, want := range []string{"PORT", "CATALOG_URL", "sum to 1.0", "TRACK_WORKERS"} {
		if !strings.Contains(msg, want) {
			t.Errorf("Expected validation error to mention %q, got: %s", want, msg)
		}
	}
}

func TestValidateMockCatalog(t *testing.T) {
	cfg := Load()
	cfg.CatalogURL = constants.CatalogMock

	if err := cfg.Validate(); err != nil {
		t.Errorf("Expected mock catalog setting to validate, got: %v", err)
	}
}

func TestValidateResultCapOrdering(t *testing.T) {
	cfg := Load()
	cfg.Resolver.ResultCapMed = cfg.Resolver.ResultCapHigh + 1

	if err := cfg.Validate(); err == nil {
		t.Error("Expected validation to reject unordered result caps")
	}
}
