package constants

import (
	"testing"
	"time"
)

func TestDefaultValues(t *testing.T) {
	// Test that default values are set correctly
	if DefaultPort != "8080" {
		t.Errorf("Expected DefaultPort to be '8080', got '%s'", DefaultPort)
	}

	if DefaultDBPath != "cuepoint.db" {
		t.Errorf("Expected DefaultDBPath to be 'cuepoint.db', got '%s'", DefaultDBPath)
	}

	if DefaultCatalogURL == "" {
		t.Error("Expected DefaultCatalogURL to not be empty")
	}
}

func TestScoringDefaults(t *testing.T) {
	if DefaultTitleWeight+DefaultArtistWeight != 1.0 {
		t.Errorf("Expected scoring weights to sum to 1.0, got %f", DefaultTitleWeight+DefaultArtistWeight)
	}

	if DefaultBonusYear < 0 || DefaultBonusKey < 0 {
		t.Error("Score bonuses must not be negative")
	}

	if DefaultEarlyExitScore <= DefaultMinAcceptScore {
		t.Error("Early-exit score should be stricter than the minimum accept score")
	}
}

func TestResultCaps(t *testing.T) {
	if !(DefaultResultCapLow < DefaultResultCapMed && DefaultResultCapMed < DefaultResultCapHigh) {
		t.Errorf("Expected result caps to be ordered low < med < high, got %d/%d/%d",
			DefaultResultCapLow, DefaultResultCapMed, DefaultResultCapHigh)
	}
}

func TestTimeouts(t *testing.T) {
	if DefaultHTTPTimeout != 30*time.Second {
		t.Errorf("Expected DefaultHTTPTimeout to be 30 seconds, got %v", DefaultHTTPTimeout)
	}

	if DefaultPollInterval != 2*time.Second {
		t.Errorf("Expected DefaultPollInterval to be 2 seconds, got %v", DefaultPollInterval)
	}

	if DefaultRetryBase != 1*time.Second {
		t.Errorf("Expected DefaultRetryBase to be 1 second, got %v", DefaultRetryBase)
	}
}

func TestRetryCount(t *testing.T) {
	if DefaultRetryCount != 3 {
		t.Errorf("Expected DefaultRetryCount to be 3, got %d", DefaultRetryCount)
	}
}

func TestFileExtensions(t *testing.T) {
	extensions := []string{
		ExtXML,
		ExtM3U,
		ExtM3U8,
		ExtFLAC,
		ExtMP3,
		ExtCSV,
		ExtJSON,
	}

	for _, ext := range extensions {
		if ext == "" {
			t.Error("File extension constant should not be empty")
		}
		// Should start with .
		if ext[0] != '.' {
			t.Errorf("File extension %s should start with .", ext)
		}
	}
}

func TestInvalidPathChars(t *testing.T) {
	if InvalidPathChars == "" {
		t.Error("InvalidPathChars should not be empty")
	}
}
