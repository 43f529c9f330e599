// Package worker runs queued playlist resolution jobs: parse the playlist,
// resolve its tracks against the catalog on a bounded pool, persist every
// outcome, then optionally write tags back to the referenced files.
package worker

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/arunsworld/nursery"

	"github.com/stuchain/cuepoint/internal/config"
	"github.com/stuchain/cuepoint/internal/constants"
	"github.com/stuchain/cuepoint/internal/domain"
	"github.com/stuchain/cuepoint/internal/httpclient"
	"github.com/stuchain/cuepoint/internal/logger"
	"github.com/stuchain/cuepoint/internal/playlist"
	"github.com/stuchain/cuepoint/internal/resolver"
	"github.com/stuchain/cuepoint/internal/store"
	"github.com/stuchain/cuepoint/internal/tagging"
)

// Resolver is the resolution surface the worker drives. Satisfied by
// *resolver.Resolver.
type Resolver interface {
	Resolve(ctx context.Context, q domain.TrackQuery, ctrl resolver.Controller, progress resolver.ProgressFunc) domain.ResolutionResult
}

type Worker struct {
	db       *store.DB
	resolver Resolver
	client   *httpclient.Client
	cfg      *config.Config
	log      *logger.Logger

	mu      sync.Mutex
	cancels map[string]*atomic.Bool

	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
}

func New(db *store.DB, res Resolver, client *httpclient.Client, cfg *config.Config, log *logger.Logger) *Worker {
	if log == nil {
		log = logger.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Worker{
		db:       db,
		resolver: res,
		client:   client,
		cfg:      cfg,
		log:      log.WithComponent("worker"),
		cancels:  map[string]*atomic.Bool{},
		ctx:      ctx,
		cancel:   cancel,
	}
}

func (w *Worker) Start() {
	w.log.Info("starting worker")

	if err := w.db.ResetStuckJobs(); err != nil {
		w.log.Error("failed to reset stuck jobs", "error", err)
	}

	w.wg.Add(1)
	go w.poll()
}

func (w *Worker) Stop() {
	w.log.Info("stopping worker")
	w.cancel()
	w.wg.Wait()
}

// CancelJob trips the cancel flag of a running job. The store row is the
// caller's responsibility; jobs still queued never reach the worker again
// once their status changes.
func (w *Worker) CancelJob(id string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if flag, ok := w.cancels[id]; ok {
		flag.Store(true)
	}
}

func (w *Worker) poll() {
	defer w.wg.Done()
	ticker := time.NewTicker(constants.DefaultPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.ctx.Done():
			return
		case <-ticker.C:
			job, err := w.db.NextQueuedJob()
			if err != nil {
				w.log.Error("failed to poll for jobs", "error", err)
				continue
			}
			if job == nil {
				continue
			}
			w.runJob(w.ctx, job)
		}
	}
}

func (w *Worker) runJob(ctx context.Context, job *domain.Job) {
	log := w.log.WithJob(job.ID)
	defer func() {
		if r := recover(); r != nil {
			log.Error("panic while running job", "panic", r)
			_ = w.db.UpdateJobError(job.ID, fmt.Sprintf("panic: %v", r))
		}
	}()

	flag := &atomic.Bool{}
	w.mu.Lock()
	w.cancels[job.ID] = flag
	w.mu.Unlock()
	defer func() {
		w.mu.Lock()
		delete(w.cancels, job.ID)
		w.mu.Unlock()
	}()

	log.Info("running job", "playlist", job.PlaylistName)

	if err := w.db.UpdateJobStatus(job.ID, domain.JobStatusParsing, 0); err != nil {
		log.Error("failed to update job status", "error", err)
		return
	}

	pl, err := playlist.Parse(job.PlaylistPath)
	if err != nil {
		log.Error("failed to parse playlist", "error", err)
		_ = w.db.UpdateJobError(job.ID, fmt.Sprintf("parse playlist: %v", err))
		return
	}
	if len(pl.Entries) == 0 {
		log.Warn("playlist has no tracks")
		_ = w.db.UpdateJobError(job.ID, "playlist has no tracks")
		return
	}

	if err := w.db.UpdateJobStatus(job.ID, domain.JobStatusResolving, 0); err != nil {
		log.Error("failed to update job status", "error", err)
		return
	}
	_ = w.db.UpdateJobProgress(job.ID, 0, len(pl.Entries), 0, 0)

	var done, matched, unmatched atomic.Int64
	total := len(pl.Entries)

	entries := make(chan playlist.Entry)
	feed := func(ctx context.Context, _ chan error) {
		defer close(entries)
		for _, e := range pl.Entries {
			if flag.Load() || ctx.Err() != nil {
				return
			}
			select {
			case entries <- e:
			case <-ctx.Done():
				return
			}
		}
	}
	work := func(ctx context.Context, _ chan error) {
		for entry := range entries {
			if w.resolveTrack(ctx, job, entry, flag, log) {
				matched.Add(1)
			} else {
				unmatched.Add(1)
			}

			d := done.Add(1)
			progress := float64(d) / float64(total) * 100
			_ = w.db.UpdateJobProgress(job.ID, progress, total,
				int(matched.Load()), int(unmatched.Load()))
		}
	}

	workers := w.cfg.Resolver.TrackWorkers
	if workers < 1 {
		workers = 1
	}
	jobs := make([]nursery.ConcurrentJob, 0, workers+1)
	jobs = append(jobs, feed)
	for i := 0; i < workers; i++ {
		jobs = append(jobs, work)
	}
	if err := nursery.RunConcurrentlyWithContext(ctx, jobs...); err != nil {
		log.Error("resolution pool failed", "error", err)
	}

	switch {
	case flag.Load():
		log.Info("job cancelled", "resolved", done.Load(), "total", total)
		_ = w.db.UpdateJobStatus(job.ID, domain.JobStatusCancelled,
			float64(done.Load())/float64(total)*100)
	case ctx.Err() != nil:
		// Shutdown mid-job: leave it for the stuck-job reset on next start.
		log.Info("job interrupted by shutdown")
	default:
		log.Info("job completed", "matched", matched.Load(), "unmatched", unmatched.Load())
		_ = w.db.UpdateJobStatus(job.ID, domain.JobStatusCompleted, 100)
		_ = w.db.UpdateJobProgress(job.ID, 100, total, int(matched.Load()), int(unmatched.Load()))
	}
}

// trackController gives each track its own clock while sharing the job's
// cancel flag.
type trackController struct {
	start time.Time
	flag  *atomic.Bool
}

func (c trackController) Cancelled() bool        { return c.flag.Load() }
func (c trackController) Elapsed() time.Duration { return time.Since(c.start) }

// resolveTrack runs one entry end to end and reports whether it matched.
func (w *Worker) resolveTrack(ctx context.Context, job *domain.Job, entry playlist.Entry, flag *atomic.Bool, log *logger.Logger) bool {
	tlog := log.WithTrack(entry.Position, entry.Title)
	start := time.Now()

	q := domain.TrackQuery{
		Title:      entry.Title,
		ArtistText: entry.Artist,
		YearHint:   entry.Year,
		KeyHint:    entry.Key,
		TitleOnly:  job.TitleOnly || entry.Artist == "",
	}
	ctrl := trackController{start: start, flag: flag}

	res := w.resolver.Resolve(ctx, q, ctrl, nil)

	tr := &domain.TrackResult{
		JobID:          job.ID,
		Position:       entry.Position,
		Title:          entry.Title,
		Artist:         entry.Artist,
		Location:       entry.Location,
		YearHint:       entry.Year,
		KeyHint:        entry.Key,
		Status:         domain.TrackStatusUnmatched,
		LastQueryIndex: res.LastQueryIndex,
		QueriesRun:     len(res.QueryAudit),
		CandidateCount: len(res.Candidates),
		ElapsedMS:      time.Since(start).Milliseconds(),
		CreatedAt:      time.Now(),
	}
	if res.Matched() {
		tr.Status = domain.TrackStatusMatched
		best := res.Best
		tr.BestURL = nullString(best.URL)
		tr.BestTitle = nullString(best.Title)
		tr.BestArtists = nullString(best.Artists)
		tr.BestKey = nullString(best.Key)
		tr.BestYear = nullInt64(int64(best.ReleaseYear))
		tr.BestBPM = nullInt64(int64(best.BPM))
		tr.BestLabel = nullString(best.Label)
		tr.BestGenre = nullString(best.Genre)
		tr.BestScore = nullFloat64(best.Score)
	}

	if err := w.db.SaveTrackResult(tr, res.Candidates, res.QueryAudit); err != nil {
		tlog.Error("failed to save track result", "error", err)
		return res.Matched()
	}

	if res.Matched() {
		tlog.Info("track matched", "url", res.Best.URL, "score", res.Best.Score)
		if job.WriteTags {
			w.writeBackTags(ctx, entry, res.Best, tlog)
		}
	} else {
		tlog.Info("track unmatched", "queries", len(res.QueryAudit), "candidates", len(res.Candidates))
	}
	return res.Matched()
}

// writeBackTags best-effort: a tagging failure never fails the track.
func (w *Worker) writeBackTags(ctx context.Context, entry playlist.Entry, winner *domain.CandidateRecord, log *logger.Logger) {
	if entry.Location == "" {
		return
	}
	if _, err := os.Stat(entry.Location); err != nil {
		log.Warn("skipping tag write, file not found", "path", entry.Location)
		return
	}

	var art *tagging.Artwork
	if winner.ArtworkURL != "" {
		a, err := tagging.DownloadArtwork(ctx, w.client, winner.ArtworkURL)
		if err != nil {
			log.Warn("failed to download artwork", "error", err)
		} else {
			art = a
		}
	}

	if err := tagging.WriteTags(entry.Location, winner, art); err != nil {
		log.Warn("failed to write tags", "path", entry.Location, "error", err)
		return
	}
	log.Info("tags written", "path", entry.Location)
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullInt64(v int64) sql.NullInt64 {
	return sql.NullInt64{Int64: v, Valid: v != 0}
}

func nullFloat64(v float64) sql.NullFloat64 {
	return sql.NullFloat64{Float64: v, Valid: true}
}
