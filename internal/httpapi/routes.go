package httpapi

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/stuchain/cuepoint/internal/domain"
	"github.com/stuchain/cuepoint/internal/httpapi/dto"
)

const maxUploadBytes = 32 << 20

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Stats reports job counts by terminal state.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.DB.GetJobStats()
	if err != nil {
		h.Logger.Error("failed to get job stats", "error", err)
		h.respondError(w, http.StatusInternalServerError, "failed to load stats")
		return
	}
	h.respondJSON(w, http.StatusOK, dto.NewStatsResponse(stats))
}

// ClearFinished deletes completed, failed and cancelled jobs along with
// their track results. Active jobs are untouched.
func (h *Handler) ClearFinished(w http.ResponseWriter, r *http.Request) {
	if err := h.DB.ClearFinishedJobs(); err != nil {
		h.Logger.Error("failed to clear finished jobs", "error", err)
		h.respondError(w, http.StatusInternalServerError, "failed to clear finished jobs")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CreateJob accepts a multipart playlist upload and queues a resolution job.
// Form fields: playlist (file, required), name, write_tags, title_only.
func (h *Handler) CreateJob(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("playlist")
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "playlist: file is required")
		return
	}
	defer file.Close()

	if errs := dto.ValidateJobUpload(header.Filename); len(errs) > 0 {
		h.respondError(w, http.StatusBadRequest, dto.ToResponse(errs))
		return
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	name := r.FormValue("name")
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(header.Filename), filepath.Ext(header.Filename))
	}

	id := uuid.NewString()
	if err := os.MkdirAll(h.UploadsDir, 0o755); err != nil {
		h.Logger.Error("failed to create uploads dir", "error", err)
		h.respondError(w, http.StatusInternalServerError, "failed to store playlist")
		return
	}
	path := filepath.Join(h.UploadsDir, id+ext)
	dst, err := os.Create(path)
	if err != nil {
		h.Logger.Error("failed to create upload file", "error", err)
		h.respondError(w, http.StatusInternalServerError, "failed to store playlist")
		return
	}
	if _, err := io.Copy(dst, file); err != nil {
		dst.Close()
		os.Remove(path)
		h.Logger.Error("failed to write upload file", "error", err)
		h.respondError(w, http.StatusInternalServerError, "failed to store playlist")
		return
	}
	dst.Close()

	now := time.Now()
	job := &domain.Job{
		ID:           id,
		Status:       domain.JobStatusQueued,
		PlaylistName: name,
		PlaylistPath: path,
		WriteTags:    parseBoolField(r.FormValue("write_tags")),
		TitleOnly:    parseBoolField(r.FormValue("title_only")),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := h.DB.CreateJob(job); err != nil {
		os.Remove(path)
		h.Logger.Error("failed to create job", "error", err)
		h.respondError(w, http.StatusInternalServerError, "failed to create job")
		return
	}

	h.Logger.Info("job queued", "job_id", job.ID, "playlist", job.PlaylistName)
	h.respondJSON(w, http.StatusCreated, dto.NewJobResponse(job))
}

func (h *Handler) ListJobs(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			h.respondError(w, http.StatusBadRequest, "limit: must be a positive integer")
			return
		}
		limit = n
	}

	jobs, err := h.DB.ListJobs(limit)
	if err != nil {
		h.Logger.Error("failed to list jobs", "error", err)
		h.respondError(w, http.StatusInternalServerError, "failed to list jobs")
		return
	}
	h.respondJSON(w, http.StatusOK, dto.NewJobListResponse(jobs))
}

func (h *Handler) GetJob(w http.ResponseWriter, r *http.Request) {
	job, ok := h.jobOr404(w, r)
	if !ok {
		return
	}
	h.respondJSON(w, http.StatusOK, dto.NewJobResponse(job))
}

// CancelJob marks the job cancelled in the store and trips the worker flag so
// an in-flight run stops between tracks.
func (h *Handler) CancelJob(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	changed, err := h.DB.CancelJob(id)
	if err != nil {
		h.Logger.Error("failed to cancel job", "error", err, "job_id", id)
		h.respondError(w, http.StatusInternalServerError, "failed to cancel job")
		return
	}
	if !changed {
		job, err := h.DB.GetJob(id)
		if err == nil && job == nil {
			h.respondError(w, http.StatusNotFound, "job not found")
			return
		}
		h.respondError(w, http.StatusConflict, "job is not active")
		return
	}
	if h.Canceller != nil {
		h.Canceller.CancelJob(id)
	}

	job, err := h.DB.GetJob(id)
	if err != nil || job == nil {
		h.respondError(w, http.StatusInternalServerError, "failed to load job")
		return
	}
	h.respondJSON(w, http.StatusOK, dto.NewJobResponse(job))
}

func (h *Handler) ListResults(w http.ResponseWriter, r *http.Request) {
	job, ok := h.jobOr404(w, r)
	if !ok {
		return
	}

	results, err := h.DB.ListTrackResults(job.ID)
	if err != nil {
		h.Logger.Error("failed to list track results", "error", err, "job_id", job.ID)
		h.respondError(w, http.StatusInternalServerError, "failed to list results")
		return
	}
	h.respondJSON(w, http.StatusOK, dto.NewTrackResultListResponse(results))
}

// GetResult returns one track result plus its candidates and query audit.
func (h *Handler) GetResult(w http.ResponseWriter, r *http.Request) {
	job, ok := h.jobOr404(w, r)
	if !ok {
		return
	}

	position, err := strconv.Atoi(chi.URLParam(r, "position"))
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "position: must be an integer")
		return
	}

	tr, err := h.DB.GetTrackResult(job.ID, position)
	if err != nil {
		h.Logger.Error("failed to get track result", "error", err, "job_id", job.ID)
		h.respondError(w, http.StatusInternalServerError, "failed to load result")
		return
	}
	if tr == nil {
		h.respondError(w, http.StatusNotFound, "track result not found")
		return
	}

	candidates, err := h.DB.ListCandidates(tr.ID)
	if err != nil {
		h.Logger.Error("failed to list candidates", "error", err, "job_id", job.ID)
		h.respondError(w, http.StatusInternalServerError, "failed to load candidates")
		return
	}
	audit, err := h.DB.ListQueryAudit(tr.ID)
	if err != nil {
		h.Logger.Error("failed to list query audit", "error", err, "job_id", job.ID)
		h.respondError(w, http.StatusInternalServerError, "failed to load query audit")
		return
	}

	h.respondJSON(w, http.StatusOK, dto.NewTrackDetailResponse(tr, candidates, audit))
}

// ExportJob writes the job's results to the export directory and serves the
// file. format defaults to csv.
func (h *Handler) ExportJob(w http.ResponseWriter, r *http.Request) {
	job, ok := h.jobOr404(w, r)
	if !ok {
		return
	}

	format := r.URL.Query().Get("format")
	if format == "" {
		format = "csv"
	}
	if errs := dto.ValidateExportRequest(format); len(errs) > 0 {
		h.respondError(w, http.StatusBadRequest, dto.ToResponse(errs))
		return
	}

	results, err := h.DB.ListTrackResults(job.ID)
	if err != nil {
		h.Logger.Error("failed to list track results", "error", err, "job_id", job.ID)
		h.respondError(w, http.StatusInternalServerError, "failed to load results")
		return
	}
	if len(results) == 0 {
		h.respondError(w, http.StatusConflict, "job has no results to export")
		return
	}

	var path string
	switch format {
	case "csv":
		path, err = h.Exporter.WriteCSV(job, results)
	case "json":
		path, err = h.Exporter.WriteJSON(job, results)
	}
	if err != nil {
		h.Logger.Error("failed to write export", "error", err, "job_id", job.ID)
		h.respondError(w, http.StatusInternalServerError, "failed to write export")
		return
	}

	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", filepath.Base(path)))
	http.ServeFile(w, r, path)
}

func (h *Handler) jobOr404(w http.ResponseWriter, r *http.Request) (*domain.Job, bool) {
	id := chi.URLParam(r, "id")
	job, err := h.DB.GetJob(id)
	if err != nil {
		h.Logger.Error("failed to get job", "error", err, "job_id", id)
		h.respondError(w, http.StatusInternalServerError, "failed to load job")
		return nil, false
	}
	if job == nil {
		h.respondError(w, http.StatusNotFound, "job not found")
		return nil, false
	}
	return job, true
}

func parseBoolField(v string) bool {
	b, err := strconv.ParseBool(v)
	return err == nil && b
}
