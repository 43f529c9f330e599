package logger

import "testing"

func TestNew(t *testing.T) {
	levels := []string{"debug", "info", "warn", "error", "bogus"}
	for _, level := range levels {
		l := New(Config{Level: level, Format: "text"})
		if l == nil || l.Logger == nil {
			t.Fatalf("New returned nil logger for level %q", level)
		}
	}

	l := New(Config{Level: "info", Format: "json"})
	if l == nil {
		t.Fatal("New returned nil logger for json format")
	}
}

func TestWithHelpers(t *testing.T) {
	l := Default()

	if c := l.WithComponent("resolver"); c == nil || c.Logger == nil {
		t.Error("WithComponent returned nil")
	}
	if j := l.WithJob("job-123"); j == nil || j.Logger == nil {
		t.Error("WithJob returned nil")
	}
	if tr := l.WithTrack(3, "Test Track"); tr == nil || tr.Logger == nil {
		t.Error("WithTrack returned nil")
	}
}
