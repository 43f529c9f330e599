// Package playlist reads DJ playlist exports into track entries. Rekordbox
// collection XML and M3U/M3U8 are supported; entry order follows the
// playlist, not the collection.
package playlist

import (
	"bufio"
	"encoding/xml"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/stuchain/cuepoint/internal/constants"
)

// Entry is one playlist track as the source file states it.
type Entry struct {
	Position int     `json:"position"`
	Title    string  `json:"title"`
	Artist   string  `json:"artist"`
	Location string  `json:"location,omitempty"`
	Year     int     `json:"year,omitempty"`
	Key      string  `json:"key,omitempty"`
	BPM      float64 `json:"bpm,omitempty"`
}

type Playlist struct {
	Name    string  `json:"name"`
	Entries []Entry `json:"entries"`
}

// Parse reads a playlist file, dispatching on extension.
func Parse(path string) (*Playlist, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open playlist: %w", err)
	}
	defer f.Close()

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	switch strings.ToLower(filepath.Ext(path)) {
	case constants.ExtXML:
		return ParseXML(f, name)
	case constants.ExtM3U, constants.ExtM3U8:
		return ParseM3U(f, name)
	default:
		return nil, fmt.Errorf("unsupported playlist format: %s", filepath.Ext(path))
	}
}

// Rekordbox collection export layout.
type xmlDocument struct {
	Collection struct {
		Tracks []xmlTrack `xml:"TRACK"`
	} `xml:"COLLECTION"`
	Playlists struct {
		Root xmlNode `xml:"NODE"`
	} `xml:"PLAYLISTS"`
}

type xmlTrack struct {
	TrackID    string `xml:"TrackID,attr"`
	Name       string `xml:"Name,attr"`
	Artist     string `xml:"Artist,attr"`
	Location   string `xml:"Location,attr"`
	Year       int    `xml:"Year,attr"`
	Tonality   string `xml:"Tonality,attr"`
	AverageBpm string `xml:"AverageBpm,attr"`
}

type xmlNode struct {
	Name   string    `xml:"Name,attr"`
	Type   string    `xml:"Type,attr"`
	Nodes  []xmlNode `xml:"NODE"`
	Tracks []struct {
		Key string `xml:"Key,attr"`
	} `xml:"TRACK"`
}

// ParseXML reads a Rekordbox collection XML. When the PLAYLISTS section
// holds a playlist node, its order (and name) wins; otherwise the
// collection order is used with fallbackName.
func ParseXML(r io.Reader, fallbackName string) (*Playlist, error) {
	var doc xmlDocument
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("parse playlist xml: %w", err)
	}

	byID := make(map[string]xmlTrack, len(doc.Collection.Tracks))
	for _, tr := range doc.Collection.Tracks {
		byID[tr.TrackID] = tr
	}

	pl := &Playlist{Name: fallbackName}
	if node, ok := firstPlaylistNode(doc.Playlists.Root); ok {
		if node.Name != "" {
			pl.Name = node.Name
		}
		for _, ref := range node.Tracks {
			tr, ok := byID[ref.Key]
			if !ok {
				continue
			}
			pl.Entries = append(pl.Entries, entryFromXML(tr, len(pl.Entries)+1))
		}
		return pl, nil
	}

	for _, tr := range doc.Collection.Tracks {
		pl.Entries = append(pl.Entries, entryFromXML(tr, len(pl.Entries)+1))
	}
	return pl, nil
}

// firstPlaylistNode walks the node tree depth-first for the first leaf
// playlist (Type "1") that references tracks.
func firstPlaylistNode(node xmlNode) (xmlNode, bool) {
	if node.Type == "1" && len(node.Tracks) > 0 {
		return node, true
	}
	for _, child := range node.Nodes {
		if found, ok := firstPlaylistNode(child); ok {
			return found, true
		}
	}
	return xmlNode{}, false
}

func entryFromXML(tr xmlTrack, position int) Entry {
	e := Entry{
		Position: position,
		Title:    strings.TrimSpace(tr.Name),
		Artist:   strings.TrimSpace(tr.Artist),
		Location: decodeLocation(tr.Location),
		Year:     tr.Year,
		Key:      strings.TrimSpace(tr.Tonality),
	}
	if bpm, err := strconv.ParseFloat(tr.AverageBpm, 64); err == nil {
		e.BPM = bpm
	}
	return e
}

// decodeLocation turns a Rekordbox file URI into a filesystem path.
// "file://localhost/C%3A/music/a.mp3" becomes "C:/music/a.mp3".
func decodeLocation(loc string) string {
	if loc == "" {
		return ""
	}
	loc = strings.TrimPrefix(loc, "file://localhost/")
	loc = strings.TrimPrefix(loc, "file://")
	if decoded, err := url.PathUnescape(loc); err == nil {
		loc = decoded
	}
	return loc
}

// ParseM3U reads an extended M3U playlist. EXTINF display names split on
// the first " - " into artist and title; entries without an EXTINF line
// fall back to the file name.
func ParseM3U(r io.Reader, name string) (*Playlist, error) {
	pl := &Playlist{Name: name}

	var pendingArtist, pendingTitle string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || line == "#EXTM3U" {
			continue
		}
		if strings.HasPrefix(line, "#EXTINF:") {
			pendingArtist, pendingTitle = parseExtinf(line)
			continue
		}
		if strings.HasPrefix(line, "#") {
			continue
		}

		e := Entry{
			Position: len(pl.Entries) + 1,
			Title:    pendingTitle,
			Artist:   pendingArtist,
			Location: line,
		}
		if e.Title == "" {
			e.Title = strings.TrimSuffix(filepath.Base(line), filepath.Ext(line))
		}
		pl.Entries = append(pl.Entries, e)
		pendingArtist, pendingTitle = "", ""
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read m3u: %w", err)
	}
	return pl, nil
}

// parseExtinf splits "#EXTINF:123,Artist - Title" into its parts.
func parseExtinf(line string) (artist, title string) {
	_, display, ok := strings.Cut(line, ",")
	if !ok {
		return "", ""
	}
	display = strings.TrimSpace(display)
	if a, t, ok := strings.Cut(display, " - "); ok {
		return strings.TrimSpace(a), strings.TrimSpace(t)
	}
	return "", display
}
