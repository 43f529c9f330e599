package tagging

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/bogem/id3v2/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stuchain/cuepoint/internal/domain"
	"github.com/stuchain/cuepoint/internal/httpclient"
)

func testWinner() *domain.CandidateRecord {
	return &domain.CandidateRecord{
		URL:         "https://catalog.example.com/track/1",
		Title:       "Opus",
		Artists:     "Eric Prydz",
		Key:         "A minor",
		ReleaseYear: 2015,
		BPM:         126,
		Label:       "Virgin",
		Genre:       "Progressive House",
		ReleaseName: "Opus",
		ReleaseDate: "2015-01-19",
	}
}

func TestWriteTagsUnsupportedFormat(t *testing.T) {
	err := WriteTags("/tmp/track.ogg", testWinner(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported audio format")
}

func TestWriteTagsMP3RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "opus.mp3")
	require.NoError(t, os.WriteFile(path, []byte("not really audio"), 0644))

	require.NoError(t, WriteTags(path, testWinner(), &Artwork{
		Data: []byte{0xFF, 0xD8, 0xFF, 0xE0},
		MIME: "image/jpeg",
	}))

	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	require.NoError(t, err)
	defer tag.Close()

	assert.Equal(t, "Opus", tag.Title())
	assert.Equal(t, "Eric Prydz", tag.Artist())
	assert.Equal(t, "Opus", tag.Album())
	assert.Equal(t, "2015", tag.Year())
	assert.Equal(t, "Progressive House", tag.Genre())
	assert.NotEmpty(t, tag.GetFrames(tag.CommonID("Attached picture")))
}

func TestReleaseDate(t *testing.T) {
	w := testWinner()
	assert.Equal(t, "2015-01-19", releaseDate(w))

	w.ReleaseDate = ""
	assert.Equal(t, "2015", releaseDate(w))

	w.ReleaseYear = 0
	assert.Empty(t, releaseDate(w))
}

func TestDownloadArtwork(t *testing.T) {
	png := []byte("\x89PNG\r\n\x1a\npayload")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(png)
	}))
	defer srv.Close()

	art, err := DownloadArtwork(context.Background(), httpclient.NewClient(srv.Client(), 100), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, png, art.Data)
	assert.Equal(t, "image/png", art.MIME)
}

func TestDownloadArtworkBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	_, err := DownloadArtwork(context.Background(), httpclient.NewClient(srv.Client(), 100), srv.URL)
	assert.Error(t, err)
}
