package httpapi

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stuchain/cuepoint/internal/domain"
	"github.com/stuchain/cuepoint/internal/export"
	"github.com/stuchain/cuepoint/internal/httpapi/dto"
	"github.com/stuchain/cuepoint/internal/store"
)

type recordingCanceller struct {
	ids []string
}

func (c *recordingCanceller) CancelJob(id string) { c.ids = append(c.ids, id) }

type testAPI struct {
	handler   *Handler
	router    http.Handler
	db        *store.DB
	canceller *recordingCanceller
	uploads   string
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	dir := t.TempDir()
	db, err := store.NewSQLiteDB(filepath.Join(dir, "api.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	canceller := &recordingCanceller{}
	h := NewHandler(db, canceller,
		export.NewExporter(filepath.Join(dir, "exports"), ""),
		filepath.Join(dir, "uploads"), nil)

	r := chi.NewRouter()
	h.RegisterRoutes(r)
	return &testAPI{handler: h, router: r, db: db, canceller: canceller, uploads: h.UploadsDir}
}

func (a *testAPI) do(t *testing.T, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

func multipartUpload(t *testing.T, filename, content string, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if filename != "" {
		fw, err := mw.CreateFormFile("playlist", filename)
		require.NoError(t, err)
		_, err = fw.Write([]byte(content))
		require.NoError(t, err)
	}
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func seedJob(t *testing.T, db *store.DB, status domain.JobStatus) *domain.Job {
	t.Helper()
	job := &domain.Job{
		ID:           uuid.NewString(),
		Status:       status,
		PlaylistName: "Peak Time",
		PlaylistPath: "/tmp/peak.m3u",
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	require.NoError(t, db.CreateJob(job))
	return job
}

func seedResult(t *testing.T, db *store.DB, jobID string, position int, matched bool) *domain.TrackResult {
	t.Helper()
	tr := &domain.TrackResult{
		JobID:          jobID,
		Position:       position,
		Title:          "Opus",
		Artist:         "Eric Prydz",
		Status:         domain.TrackStatusUnmatched,
		LastQueryIndex: 0,
		QueriesRun:     1,
		CreatedAt:      time.Now(),
	}
	candidates := []domain.CandidateRecord{{
		URL: "mock://track/1", Title: "Opus", Artists: "Eric Prydz",
		TitleSim: 100, ArtistSim: 100, BaseScore: 100, Score: 100,
		GuardOK: true, QueryText: "Eric Prydz Opus",
	}}
	audit := []domain.QueryAuditEntry{{
		QueryIndex: 0, QueryText: "Eric Prydz Opus",
		QueryType: domain.QueryTypePriority, CandidateCount: 1,
	}}
	if matched {
		tr.Status = domain.TrackStatusMatched
		tr.BestURL.String, tr.BestURL.Valid = "mock://track/1", true
		tr.BestTitle.String, tr.BestTitle.Valid = "Opus", true
		tr.BestArtists.String, tr.BestArtists.Valid = "Eric Prydz", true
		tr.BestScore.Float64, tr.BestScore.Valid = 100, true
		tr.CandidateCount = 1
		candidates[0].IsWinner = true
	}
	require.NoError(t, db.SaveTrackResult(tr, candidates, audit))
	return tr
}

func TestHealth(t *testing.T) {
	api := newTestAPI(t)
	rec := api.do(t, httptest.NewRequest("GET", "/api/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestStats(t *testing.T) {
	api := newTestAPI(t)
	seedJob(t, api.db, domain.JobStatusCompleted)
	seedJob(t, api.db, domain.JobStatusFailed)
	seedJob(t, api.db, domain.JobStatusQueued)

	rec := api.do(t, httptest.NewRequest("GET", "/api/stats", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var stats dto.StatsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	// Active jobs are not history yet: only terminal states are counted.
	assert.Equal(t, 2, stats.Total)
	assert.Equal(t, 1, stats.Completed)
	assert.Equal(t, 1, stats.Failed)
	assert.Equal(t, 0, stats.Cancelled)
}

func TestClearFinishedJobs(t *testing.T) {
	api := newTestAPI(t)
	finished := seedJob(t, api.db, domain.JobStatusCompleted)
	active := seedJob(t, api.db, domain.JobStatusQueued)

	rec := api.do(t, httptest.NewRequest("POST", "/api/jobs/clear", nil))
	require.Equal(t, http.StatusNoContent, rec.Code)

	gone, err := api.db.GetJob(finished.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)

	kept, err := api.db.GetJob(active.ID)
	require.NoError(t, err)
	require.NotNil(t, kept)
}

func TestCreateJobQueuesUpload(t *testing.T) {
	api := newTestAPI(t)
	body, ct := multipartUpload(t, "warmup.m3u",
		"#EXTM3U\n#EXTINF:1,Eric Prydz - Opus\n/music/opus.mp3\n",
		map[string]string{"write_tags": "true"})

	req := httptest.NewRequest("POST", "/api/jobs", body)
	req.Header.Set("Content-Type", ct)
	rec := api.do(t, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp dto.JobResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "queued", resp.Status)
	assert.Equal(t, "warmup", resp.PlaylistName)
	assert.True(t, resp.WriteTags)
	assert.False(t, resp.TitleOnly)

	job, err := api.db.GetJob(resp.ID)
	require.NoError(t, err)
	require.NotNil(t, job)
	data, err := os.ReadFile(job.PlaylistPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Eric Prydz - Opus")
}

func TestCreateJobExplicitName(t *testing.T) {
	api := newTestAPI(t)
	body, ct := multipartUpload(t, "export.xml", "<DJ_PLAYLISTS/>",
		map[string]string{"name": "Friday Set"})

	req := httptest.NewRequest("POST", "/api/jobs", body)
	req.Header.Set("Content-Type", ct)
	rec := api.do(t, req)
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp dto.JobResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Friday Set", resp.PlaylistName)
}

func TestCreateJobRejectsUnsupportedFormat(t *testing.T) {
	api := newTestAPI(t)
	body, ct := multipartUpload(t, "notes.txt", "not a playlist", nil)

	req := httptest.NewRequest("POST", "/api/jobs", body)
	req.Header.Set("Content-Type", ct)
	rec := api.do(t, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "unsupported playlist format")
}

func TestCreateJobMissingFile(t *testing.T) {
	api := newTestAPI(t)
	body, ct := multipartUpload(t, "", "", map[string]string{"name": "x"})

	req := httptest.NewRequest("POST", "/api/jobs", body)
	req.Header.Set("Content-Type", ct)
	rec := api.do(t, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListJobs(t *testing.T) {
	api := newTestAPI(t)
	seedJob(t, api.db, domain.JobStatusQueued)
	seedJob(t, api.db, domain.JobStatusCompleted)

	rec := api.do(t, httptest.NewRequest("GET", "/api/jobs", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var jobs []dto.JobResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &jobs))
	assert.Len(t, jobs, 2)
}

func TestListJobsBadLimit(t *testing.T) {
	api := newTestAPI(t)
	rec := api.do(t, httptest.NewRequest("GET", "/api/jobs?limit=zero", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetJobNotFound(t *testing.T) {
	api := newTestAPI(t)
	rec := api.do(t, httptest.NewRequest("GET", "/api/jobs/"+uuid.NewString(), nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCancelJobActive(t *testing.T) {
	api := newTestAPI(t)
	job := seedJob(t, api.db, domain.JobStatusResolving)

	rec := api.do(t, httptest.NewRequest("POST", "/api/jobs/"+job.ID+"/cancel", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp dto.JobResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "cancelled", resp.Status)
	assert.Equal(t, []string{job.ID}, api.canceller.ids)
}

func TestCancelJobFinishedConflicts(t *testing.T) {
	api := newTestAPI(t)
	job := seedJob(t, api.db, domain.JobStatusCompleted)

	rec := api.do(t, httptest.NewRequest("POST", "/api/jobs/"+job.ID+"/cancel", nil))
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Empty(t, api.canceller.ids)
}

func TestCancelJobUnknown(t *testing.T) {
	api := newTestAPI(t)
	rec := api.do(t, httptest.NewRequest("POST", "/api/jobs/"+uuid.NewString()+"/cancel", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListResults(t *testing.T) {
	api := newTestAPI(t)
	job := seedJob(t, api.db, domain.JobStatusCompleted)
	seedResult(t, api.db, job.ID, 1, true)
	seedResult(t, api.db, job.ID, 2, false)

	rec := api.do(t, httptest.NewRequest("GET", "/api/jobs/"+job.ID+"/results", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var results []dto.TrackResultResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &results))
	require.Len(t, results, 2)
	require.NotNil(t, results[0].Best)
	assert.Equal(t, "mock://track/1", results[0].Best.URL)
	assert.Nil(t, results[1].Best)
}

func TestGetResultWithAudit(t *testing.T) {
	api := newTestAPI(t)
	job := seedJob(t, api.db, domain.JobStatusCompleted)
	seedResult(t, api.db, job.ID, 1, true)

	rec := api.do(t, httptest.NewRequest("GET", "/api/jobs/"+job.ID+"/results/1", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var detail dto.TrackDetailResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &detail))
	assert.Equal(t, "matched", detail.Status)
	require.Len(t, detail.Candidates, 1)
	assert.True(t, detail.Candidates[0].IsWinner)
	require.Len(t, detail.QueryAudit, 1)
	assert.Equal(t, "Eric Prydz Opus", detail.QueryAudit[0].QueryText)
}

func TestGetResultUnknownPosition(t *testing.T) {
	api := newTestAPI(t)
	job := seedJob(t, api.db, domain.JobStatusCompleted)
	seedResult(t, api.db, job.ID, 1, true)

	rec := api.do(t, httptest.NewRequest("GET", "/api/jobs/"+job.ID+"/results/9", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = api.do(t, httptest.NewRequest("GET", "/api/jobs/"+job.ID+"/results/one", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestExportCSV(t *testing.T) {
	api := newTestAPI(t)
	job := seedJob(t, api.db, domain.JobStatusCompleted)
	seedResult(t, api.db, job.ID, 1, true)

	rec := api.do(t, httptest.NewRequest("GET", "/api/jobs/"+job.ID+"/export", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), ".csv")

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "Opus")
}

func TestExportJSON(t *testing.T) {
	api := newTestAPI(t)
	job := seedJob(t, api.db, domain.JobStatusCompleted)
	seedResult(t, api.db, job.ID, 1, true)

	rec := api.do(t, httptest.NewRequest("GET", "/api/jobs/"+job.ID+"/export?format=json", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), ".json")
	assert.Contains(t, rec.Body.String(), "mock://track/1")
}

func TestExportBadFormat(t *testing.T) {
	api := newTestAPI(t)
	job := seedJob(t, api.db, domain.JobStatusCompleted)

	rec := api.do(t, httptest.NewRequest("GET", "/api/jobs/"+job.ID+"/export?format=xlsx", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestExportWithoutResults(t *testing.T) {
	api := newTestAPI(t)
	job := seedJob(t, api.db, domain.JobStatusQueued)

	rec := api.do(t, httptest.NewRequest("GET", "/api/jobs/"+job.ID+"/export", nil))
	assert.Equal(t, http.StatusConflict, rec.Code)
}
