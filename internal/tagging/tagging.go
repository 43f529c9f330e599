// Package tagging writes resolved catalog metadata back into the audio
// files a playlist references. MP3 gets ID3v2.4 frames, FLAC gets vorbis
// comment and picture blocks.
package tagging

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/bogem/id3v2/v2"
	"github.com/go-flac/flacpicture"
	"github.com/go-flac/flacvorbis"
	goflac "github.com/go-flac/go-flac"

	"github.com/stuchain/cuepoint/internal/constants"
	"github.com/stuchain/cuepoint/internal/domain"
	"github.com/stuchain/cuepoint/internal/httpclient"
)

// Artwork is downloaded cover image data ready for embedding.
type Artwork struct {
	Data []byte
	MIME string
}

// WriteTags writes the winner's metadata into the file at path. Artwork is
// optional. The format is picked by extension; anything but MP3 and FLAC is
// an error.
func WriteTags(path string, winner *domain.CandidateRecord, art *Artwork) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case constants.ExtMP3:
		return writeMP3(path, winner, art)
	case constants.ExtFLAC:
		return writeFLAC(path, winner, art)
	default:
		return fmt.Errorf("unsupported audio format: %s", filepath.Ext(path))
	}
}

func writeMP3(path string, winner *domain.CandidateRecord, art *Artwork) error {
	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return fmt.Errorf("failed to open MP3 file: %w", err)
	}
	defer tag.Close()

	tag.SetVersion(4)

	if winner.Title != "" {
		tag.SetTitle(winner.Title)
	}
	if winner.Artists != "" {
		tag.SetArtist(winner.Artists)
	}
	if winner.ReleaseName != "" {
		tag.SetAlbum(winner.ReleaseName)
	}
	if winner.ReleaseYear > 0 {
		tag.SetYear(strconv.Itoa(winner.ReleaseYear))
	}
	if winner.Genre != "" {
		tag.SetGenre(winner.Genre)
	}
	if winner.Label != "" {
		tag.AddTextFrame(tag.CommonID("Publisher"), tag.DefaultEncoding(), winner.Label)
	}
	if winner.BPM > 0 {
		tag.AddTextFrame(tag.CommonID("BPM"), tag.DefaultEncoding(), strconv.Itoa(winner.BPM))
	}
	if winner.Key != "" {
		tag.AddTextFrame(tag.CommonID("Initial key"), tag.DefaultEncoding(), winner.Key)
	}

	if art != nil && len(art.Data) > 0 {
		tag.AddAttachedPicture(id3v2.PictureFrame{
			Encoding:    id3v2.EncodingUTF8,
			MimeType:    art.MIME,
			PictureType: id3v2.PTFrontCover,
			Description: "Front cover",
			Picture:     art.Data,
		})
	}

	if err := tag.Save(); err != nil {
		return fmt.Errorf("failed to save MP3 tags: %w", err)
	}
	return nil
}

func writeFLAC(path string, winner *domain.CandidateRecord, art *Artwork) error {
	f, err := goflac.ParseFile(path)
	if err != nil {
		return fmt.Errorf("failed to parse FLAC file: %w", err)
	}

	// Existing vorbis comment and picture blocks are replaced wholesale.
	kept := f.Meta[:0]
	for _, block := range f.Meta {
		if block.Type == goflac.VorbisComment || block.Type == goflac.Picture {
			continue
		}
		kept = append(kept, block)
	}
	f.Meta = kept

	cmt := flacvorbis.New()
	add := func(key, value string) {
		if value != "" {
			_ = cmt.Add(key, value)
		}
	}
	add(flacvorbis.FIELD_TITLE, winner.Title)
	add(flacvorbis.FIELD_ARTIST, winner.Artists)
	add(flacvorbis.FIELD_ALBUM, winner.ReleaseName)
	add(flacvorbis.FIELD_GENRE, winner.Genre)
	add(flacvorbis.FIELD_ORGANIZATION, winner.Label)
	add(flacvorbis.FIELD_DATE, releaseDate(winner))
	if winner.BPM > 0 {
		add("BPM", strconv.Itoa(winner.BPM))
	}
	add("INITIALKEY", winner.Key)

	cmtBlock := cmt.Marshal()
	f.Meta = append(f.Meta, &cmtBlock)

	if art != nil && len(art.Data) > 0 {
		pic, err := flacpicture.NewFromImageData(flacpicture.PictureTypeFrontCover, "Front cover", art.Data, art.MIME)
		if err != nil {
			return fmt.Errorf("failed to build FLAC picture block: %w", err)
		}
		picBlock := pic.Marshal()
		f.Meta = append(f.Meta, &picBlock)
	}

	if err := f.Save(path); err != nil {
		return fmt.Errorf("failed to save FLAC tags: %w", err)
	}
	return nil
}

// releaseDate prefers the full date over the bare year.
func releaseDate(winner *domain.CandidateRecord) string {
	if winner.ReleaseDate != "" {
		return winner.ReleaseDate
	}
	if winner.ReleaseYear > 0 {
		return strconv.Itoa(winner.ReleaseYear)
	}
	return ""
}

const maxArtworkBytes = 10 << 20

// DownloadArtwork fetches cover art through the shared paced client and
// sniffs its content type.
func DownloadArtwork(ctx context.Context, client *httpclient.Client, url string) (*Artwork, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := client.Do(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to download artwork: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("artwork download status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxArtworkBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read artwork: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("artwork response was empty")
	}

	return &Artwork{Data: data, MIME: http.DetectContentType(data)}, nil
}
