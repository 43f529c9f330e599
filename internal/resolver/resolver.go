// Package resolver matches one playlist track against the catalog: it
// derives search queries, walks them in confidence order, scores every
// fetched candidate and keeps a full audit trail of what it tried.
package resolver

import (
	"context"
	"time"

	"github.com/arunsworld/nursery"

	"github.com/stuchain/cuepoint/internal/config"
	"github.com/stuchain/cuepoint/internal/domain"
	"github.com/stuchain/cuepoint/internal/logger"
	"github.com/stuchain/cuepoint/internal/mixparse"
	"github.com/stuchain/cuepoint/internal/querygen"
)

// Progress is emitted after each evaluated query.
type Progress struct {
	QueryIndex int
	QueryText  string
	Candidates int // running total across queries
	BestScore  float64
	Matched    bool
}

// ProgressFunc receives Progress events. Called from the resolving
// goroutine; keep it cheap.
type ProgressFunc func(Progress)

// Resolver runs track resolutions against a catalog provider. Safe for
// concurrent use: all per-resolution state lives on the stack of Resolve.
type Resolver struct {
	provider Provider
	cfg      config.ResolverConfig
	log      *logger.Logger
}

func New(provider Provider, cfg config.ResolverConfig, log *logger.Logger) *Resolver {
	if log == nil {
		log = logger.Default()
	}
	return &Resolver{
		provider: provider,
		cfg:      cfg,
		log:      log.WithComponent("resolver"),
	}
}

// Resolve runs the full query ladder for one track. It never fails: search
// errors, unparseable pages and empty inputs all degrade to a result with
// fewer (or no) candidates, with failures recorded in the audit trail.
// ctrl may be nil (wall clock only); progress may be nil.
func (r *Resolver) Resolve(ctx context.Context, q domain.TrackQuery, ctrl Controller, progress ProgressFunc) domain.ResolutionResult {
	if ctrl == nil {
		ctrl = NewClock()
	}
	res := domain.ResolutionResult{LastQueryIndex: -1}

	var flags domain.MixFlags
	if q.Mix != nil {
		flags = *q.Mix
	} else {
		flags = mixparse.ParseMixFlags(q.Title)
	}
	phrases := q.GenericPhrases
	if phrases == nil {
		phrases = mixparse.ExtractGenericPhrases(q.Title)
	}

	queries := q.Queries
	if len(queries) == 0 {
		queries = querygen.Make(q.Title, q.ArtistText, flags, phrases, q.TitleOnly, querygen.Options{
			MaxQueries:        r.cfg.MaxQueriesPerTrack,
			TitleGramMax:      r.cfg.TitleGramMax,
			MaxComboQueries:   r.cfg.MaxComboQueries,
			TitleComboMaxLen:  r.cfg.TitleComboMaxLen,
			CrossNGramsArtist: r.cfg.CrossNGramsArtist,
			ReverseOrder:      r.cfg.ReverseOrderQueries,
		})
	}
	if len(queries) == 0 {
		r.log.Debug("no queries generated", "title", q.Title, "artist", q.ArtistText)
		return res
	}

	seen := make(map[string]struct{})
	bestPos := -1

	for qi, sq := range queries {
		if r.stopped(ctx, ctrl) {
			break
		}

		qStart := time.Now()
		entry := domain.QueryAuditEntry{QueryIndex: qi, QueryText: sq.Text, QueryType: sq.Type}

		outcome, err := r.provider.Search(ctx, sq.Text, r.resultCap(sq.Type))
		if err != nil {
			entry.Error = err.Error()
			entry.ElapsedMS = time.Since(qStart).Milliseconds()
			res.QueryAudit = append(res.QueryAudit, entry)
			res.LastQueryIndex = qi
			r.log.Warn("search failed", "query", sq.Text, "error", err)
			continue
		}
		entry.CacheHit = outcome.CacheHit

		interrupted := r.evaluateQuery(ctx, ctrl, q, flags, sq, qi, outcome.URLs, seen, &res, &bestPos, &entry)
		entry.ElapsedMS = time.Since(qStart).Milliseconds()
		res.QueryAudit = append(res.QueryAudit, entry)
		res.LastQueryIndex = qi

		if progress != nil {
			ev := Progress{
				QueryIndex: qi,
				QueryText:  sq.Text,
				Candidates: len(res.Candidates),
				Matched:    bestPos >= 0,
			}
			if bestPos >= 0 {
				ev.BestScore = res.Candidates[bestPos].Score
			}
			progress(ev)
		}

		if interrupted {
			break
		}
		if qi+1 >= r.cfg.EarlyExitMinQueries && bestPos >= 0 && res.Candidates[bestPos].Score >= r.cfg.EarlyExitScore {
			r.log.Debug("early exit", "query_index", qi, "score", res.Candidates[bestPos].Score)
			break
		}
	}

	if bestPos >= 0 {
		res.Candidates[bestPos].IsWinner = true
		winner := res.Candidates[bestPos]
		res.Best = &winner
	}
	return res
}

// evaluateQuery fetches and scores the candidates of one search. It reports
// whether the resolution was interrupted while working through them.
func (r *Resolver) evaluateQuery(ctx context.Context, ctrl Controller, q domain.TrackQuery, flags domain.MixFlags,
	sq domain.SearchQuery, qi int, urls []string, seen map[string]struct{},
	res *domain.ResolutionResult, bestPos *int, entry *domain.QueryAuditEntry) bool {

	// URL-level dedup across the whole resolution: a track surfaced by an
	// earlier query is never fetched or scored twice.
	items := make([]fetchItem, 0, len(urls))
	for ci, u := range urls {
		if _, dup := seen[u]; dup {
			continue
		}
		seen[u] = struct{}{}
		items = append(items, fetchItem{url: u, index: ci})
	}

	fetched := r.fetchDetails(ctx, ctrl, items)

	for i, item := range items {
		f := fetched[i]
		if f == nil {
			continue
		}

		cand := scoreCandidate(r.cfg, q, flags, f.fields)
		cand.URL = item.url
		cand.QueryIndex = qi
		cand.QueryText = sq.Text
		cand.CandidateIndex = item.index
		cand.ElapsedMS = f.elapsed.Milliseconds()
		applyGuards(r.cfg, q, flags, &cand)

		res.Candidates = append(res.Candidates, cand)
		entry.CandidateCount++

		// Ties keep the earlier candidate: strictly greater only.
		if cand.GuardOK && cand.Score >= r.cfg.MinAcceptScore {
			if *bestPos < 0 || cand.Score > res.Candidates[*bestPos].Score {
				*bestPos = len(res.Candidates) - 1
			}
		}
	}

	return r.stopped(ctx, ctrl)
}

type fetchItem struct {
	url   string
	index int
}

type fetchedDetail struct {
	fields  *domain.RawFields
	elapsed time.Duration
}

// fetchDetails loads track pages for the given items, preserving order via
// slice slots. A nil slot means the fetch failed, returned no fields, or
// was skipped because the resolution stopped. With DetailFetchWorkers > 1
// fetches run on a bounded pool; scoring stays sequential either way.
func (r *Resolver) fetchDetails(ctx context.Context, ctrl Controller, items []fetchItem) []*fetchedDetail {
	out := make([]*fetchedDetail, len(items))
	if len(items) == 0 {
		return out
	}

	workers := r.cfg.DetailFetchWorkers
	if workers <= 1 {
		for i, item := range items {
			if r.stopped(ctx, ctrl) {
				break
			}
			out[i] = r.fetchOne(ctx, item.url)
		}
		return out
	}

	jobs := make(chan int)
	feed := func(ctx context.Context, _ chan error) {
		defer close(jobs)
		for i := range items {
			if r.stopped(ctx, ctrl) {
				return
			}
			select {
			case jobs <- i:
			case <-ctx.Done():
				return
			}
		}
	}
	work := func(ctx context.Context, _ chan error) {
		for i := range jobs {
			out[i] = r.fetchOne(ctx, items[i].url)
		}
	}
	workerJobs := make([]nursery.ConcurrentJob, 0, workers+1)
	workerJobs = append(workerJobs, feed)
	for n := 0; n < workers; n++ {
		workerJobs = append(workerJobs, work)
	}
	_ = nursery.RunConcurrentlyWithContext(ctx, workerJobs...)
	return out
}

func (r *Resolver) fetchOne(ctx context.Context, url string) *fetchedDetail {
	start := time.Now()
	d, err := r.provider.FetchTrack(ctx, url)
	if err != nil || d == nil || d.Fields == nil {
		r.log.Debug("candidate fetch failed", "url", url, "error", err)
		return nil
	}
	return &fetchedDetail{fields: d.Fields, elapsed: time.Since(start)}
}

// resultCap picks the per-query search result cap. Confident query shapes
// get a moderate cap, quoted phrases a small one, broad sweeps the largest.
func (r *Resolver) resultCap(t domain.QueryType) int {
	var limit int
	switch t {
	case domain.QueryTypePriority, domain.QueryTypeRemix:
		limit = r.cfg.ResultCapMed
	case domain.QueryTypeExactPhrase:
		limit = r.cfg.ResultCapLow
	default:
		limit = r.cfg.ResultCapHigh
	}
	if r.cfg.MaxSearchResults > 0 && limit > r.cfg.MaxSearchResults {
		limit = r.cfg.MaxSearchResults
	}
	return limit
}

func (r *Resolver) stopped(ctx context.Context, ctrl Controller) bool {
	if ctx.Err() != nil {
		return true
	}
	if ctrl.Cancelled() {
		return true
	}
	if r.cfg.PerTrackBudget > 0 && ctrl.Elapsed() > r.cfg.PerTrackBudget {
		return true
	}
	return false
}
