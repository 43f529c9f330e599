// Package export writes finished job results to CSV and JSON files, with a
// configurable file name template.
package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/template"
	"time"

	"github.com/stuchain/cuepoint/internal/constants"
	"github.com/stuchain/cuepoint/internal/domain"
)

// FileNameData holds the values available to the file name template.
type FileNameData struct {
	Playlist string
	Date     string
	JobID    string
}

// BuildFileName executes the file name template (without extension).
func BuildFileName(templateStr string, data *FileNameData) (string, error) {
	tmpl, err := template.New("export").Parse(templateStr)
	if err != nil {
		return "", fmt.Errorf("failed to parse template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}
	return buf.String(), nil
}

// Sanitize strips characters that are invalid in file names.
func Sanitize(s string) string {
	result := s
	for _, char := range constants.InvalidPathChars {
		result = strings.ReplaceAll(result, string(char), "")
	}
	return strings.TrimSpace(result)
}

// Exporter writes job results under a fixed export directory.
type Exporter struct {
	dir         string
	nameTmpl    string
	timeNowFunc func() time.Time
}

func NewExporter(dir, nameTmpl string) *Exporter {
	if nameTmpl == "" {
		nameTmpl = constants.DefaultExportTemplate
	}
	return &Exporter{
		dir:         dir,
		nameTmpl:    nameTmpl,
		timeNowFunc: time.Now,
	}
}

func (e *Exporter) filePath(job *domain.Job, ext string) (string, error) {
	name, err := BuildFileName(e.nameTmpl, &FileNameData{
		Playlist: Sanitize(job.PlaylistName),
		Date:     e.timeNowFunc().Format("2006-01-02"),
		JobID:    job.ID,
	})
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(e.dir, constants.DirPermissions); err != nil {
		return "", fmt.Errorf("create export dir: %w", err)
	}
	return filepath.Clean(filepath.Join(e.dir, name+ext)), nil
}

var csvHeader = []string{
	"position", "title", "artist", "status",
	"best_url", "best_title", "best_artists", "best_key", "best_year",
	"best_bpm", "best_label", "best_genre", "best_score",
	"queries_run", "candidate_count", "elapsed_ms",
}

// WriteCSV writes one row per playlist entry and returns the file path.
func (e *Exporter) WriteCSV(job *domain.Job, results []*domain.TrackResult) (string, error) {
	path, err := e.filePath(job, constants.ExtCSV)
	if err != nil {
		return "", err
	}

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create export file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		return "", err
	}
	for _, tr := range results {
		row := []string{
			strconv.Itoa(tr.Position),
			tr.Title,
			tr.Artist,
			string(tr.Status),
			tr.BestURL.String,
			tr.BestTitle.String,
			tr.BestArtists.String,
			tr.BestKey.String,
			nullInt(tr.BestYear.Int64, tr.BestYear.Valid),
			nullInt(tr.BestBPM.Int64, tr.BestBPM.Valid),
			tr.BestLabel.String,
			tr.BestGenre.String,
			nullFloat(tr.BestScore.Float64, tr.BestScore.Valid),
			strconv.Itoa(tr.QueriesRun),
			strconv.Itoa(tr.CandidateCount),
			strconv.FormatInt(tr.ElapsedMS, 10),
		}
		if err := w.Write(row); err != nil {
			return "", err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}
	return path, nil
}

type jsonWinner struct {
	URL     string  `json:"url"`
	Title   string  `json:"title"`
	Artists string  `json:"artists"`
	Key     string  `json:"key,omitempty"`
	Year    int     `json:"year,omitempty"`
	BPM     int     `json:"bpm,omitempty"`
	Label   string  `json:"label,omitempty"`
	Genre   string  `json:"genre,omitempty"`
	Score   float64 `json:"score"`
}

type jsonResult struct {
	Position       int         `json:"position"`
	Title          string      `json:"title"`
	Artist         string      `json:"artist,omitempty"`
	Status         string      `json:"status"`
	Best           *jsonWinner `json:"best,omitempty"`
	LastQueryIndex int         `json:"last_query_index"`
	QueriesRun     int         `json:"queries_run"`
	CandidateCount int         `json:"candidate_count"`
	ElapsedMS      int64       `json:"elapsed_ms"`
	Error          string      `json:"error,omitempty"`
}

type jsonExport struct {
	Job     *domain.Job  `json:"job"`
	Results []jsonResult `json:"results"`
}

// WriteJSON writes the job summary and all track results as one document.
// Winner fields flatten into a nested object, absent for unmatched tracks.
func (e *Exporter) WriteJSON(job *domain.Job, results []*domain.TrackResult) (string, error) {
	path, err := e.filePath(job, constants.ExtJSON)
	if err != nil {
		return "", err
	}

	doc := jsonExport{Job: job, Results: make([]jsonResult, 0, len(results))}
	for _, tr := range results {
		row := jsonResult{
			Position:       tr.Position,
			Title:          tr.Title,
			Artist:         tr.Artist,
			Status:         string(tr.Status),
			LastQueryIndex: tr.LastQueryIndex,
			QueriesRun:     tr.QueriesRun,
			CandidateCount: tr.CandidateCount,
			ElapsedMS:      tr.ElapsedMS,
			Error:          tr.Error,
		}
		if tr.BestURL.Valid {
			row.Best = &jsonWinner{
				URL:     tr.BestURL.String,
				Title:   tr.BestTitle.String,
				Artists: tr.BestArtists.String,
				Key:     tr.BestKey.String,
				Year:    int(tr.BestYear.Int64),
				BPM:     int(tr.BestBPM.Int64),
				Label:   tr.BestLabel.String,
				Genre:   tr.BestGenre.String,
				Score:   tr.BestScore.Float64,
			}
		}
		doc.Results = append(doc.Results, row)
	}

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create export file: %w", err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return "", err
	}
	return path, nil
}

func nullInt(v int64, valid bool) string {
	if !valid {
		return ""
	}
	return strconv.FormatInt(v, 10)
}

func nullFloat(v float64, valid bool) string {
	if !valid {
		return ""
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}
