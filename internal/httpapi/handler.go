// Package httpapi is the JSON API: submit playlist jobs, watch their
// progress, inspect per-track results with the full candidate audit, and
// export finished runs.
package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/stuchain/cuepoint/internal/export"
	"github.com/stuchain/cuepoint/internal/logger"
	"github.com/stuchain/cuepoint/internal/store"
)

// JobCanceller trips the in-flight cancel flag of a running job. Satisfied by
// *worker.Worker.
type JobCanceller interface {
	CancelJob(id string)
}

type Handler struct {
	DB         *store.DB
	Canceller  JobCanceller
	Exporter   *export.Exporter
	UploadsDir string
	Logger     *logger.Logger
}

func NewHandler(db *store.DB, canceller JobCanceller, exporter *export.Exporter, uploadsDir string, log *logger.Logger) *Handler {
	if log == nil {
		log = logger.Default()
	}
	return &Handler{
		DB:         db,
		Canceller:  canceller,
		Exporter:   exporter,
		UploadsDir: uploadsDir,
		Logger:     log.WithComponent("httpapi"),
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.Health)
		r.Get("/stats", h.Stats)

		r.Route("/jobs", func(r chi.Router) {
			r.Post("/", h.CreateJob)
			r.Get("/", h.ListJobs)
			r.Post("/clear", h.ClearFinished)
			r.Get("/{id}", h.GetJob)
			r.Post("/{id}/cancel", h.CancelJob)
			r.Get("/{id}/results", h.ListResults)
			r.Get("/{id}/results/{position}", h.GetResult)
			r.Get("/{id}/export", h.ExportJob)
		})
	})
}

func (h *Handler) respondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.Logger.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) respondError(w http.ResponseWriter, status int, msg string) {
	h.respondJSON(w, status, map[string]string{"error": msg})
}
