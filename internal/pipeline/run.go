// Package pipeline composes scoring, anonymization, filtering, sorting and summarizing into a single query.
package pipeline

import (
	"context"
	"fmt"
	"runtime"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/candidate-ranker/internal/analytics"
	"github.com/jonathan/candidate-ranker/internal/anonymize"
	"github.com/jonathan/candidate-ranker/internal/matching"
	"github.com/jonathan/candidate-ranker/internal/ranking"
	"github.com/jonathan/candidate-ranker/internal/types"
)

// chunkSize is the number of records enriched per worker task.
const chunkSize = 256

// anonymousName is shown for candidates without a name.
const anonymousName = "Anonymous"

// ProgressEvent represents a stage completing during a query
type ProgressEvent struct {
	Stage string `json:"stage"`
	Count int    `json:"count"`
}

// ProgressCallback is called when a query stage completes
type ProgressCallback func(event ProgressEvent)

// Query stages reported through ProgressCallback
const (
	StageEnrich    = "enrich"
	StageFilter    = "filter"
	StageSort      = "sort"
	StageSummarize = "summarize"
)

// Options configures an Engine. Zero values select deterministic scoring, sequential labels,
// no enrichment store and a no-op logger.
type Options struct {
	Scorer     *ranking.Scorer
	Labeler    anonymize.Labeler
	Store      EnrichmentStore
	Logger     *zap.Logger
	Workers    int
	OnProgress ProgressCallback
}

// Engine runs candidate queries. It holds no per-query state and is safe for concurrent use
// as long as its Scorer's jitter is.
type Engine struct {
	scorer     *ranking.Scorer
	labeler    anonymize.Labeler
	store      EnrichmentStore
	logger     *zap.Logger
	workers    int
	onProgress ProgressCallback
}

// NewEngine creates an Engine from opts.
func NewEngine(opts Options) *Engine {
	e := &Engine{
		scorer:     opts.Scorer,
		labeler:    opts.Labeler,
		store:      opts.Store,
		logger:     opts.Logger,
		workers:    opts.Workers,
		onProgress: opts.OnProgress,
	}
	if e.scorer == nil {
		e.scorer = ranking.NewScorer(nil)
	}
	if e.labeler == nil {
		e.labeler = anonymize.Sequential{}
	}
	if e.logger == nil {
		e.logger = zap.NewNop()
	}
	if e.workers <= 0 {
		e.workers = runtime.GOMAXPROCS(0)
	}
	e.logger = e.logger.Named("pipeline")
	return e
}

// Query runs the full query over records. It never fails.
// Build criteria from types.DefaultCriteria; zero-valued ranges are applied as given.
func (e *Engine) Query(records []types.CandidateRecord, criteria types.QueryCriteria) types.ResultSet {
	rs, err := e.QueryContext(context.Background(), records, criteria)
	if err != nil {
		// only cancellation can fail, and Background is never cancelled
		e.logger.Warn("query failed", zap.Error(err))
	}
	return rs
}

// QueryContext enriches every record, filters, sorts and summarizes.
// Criteria are used as given, so callers start from types.DefaultCriteria.
// The only error is ctx being cancelled while enrichment is in progress.
func (e *Engine) QueryContext(ctx context.Context, records []types.CandidateRecord, criteria types.QueryCriteria) (types.ResultSet, error) {
	enriched, err := e.Enrich(ctx, records, criteria.Anonymize)
	if err != nil {
		return types.ResultSet{}, err
	}
	e.emit(StageEnrich, len(enriched))

	results := matching.Filter(enriched, &criteria)
	e.emit(StageFilter, len(results))

	ranking.Sort(results, criteria.SortKey, criteria.SortDirection)
	e.emit(StageSort, len(results))

	summary := analytics.Summarize(results, records)
	e.emit(StageSummarize, summary.Total)

	e.logger.Debug("query complete",
		zap.Int("records", len(records)),
		zap.Int("results", len(results)),
		zap.String("sort_key", string(criteria.SortKey)),
		zap.String("sort_direction", string(criteria.SortDirection)),
	)

	return types.ResultSet{Candidates: results, Summary: summary}, nil
}

// Enrich derives the overall score, label, formatted experience and display name of every record,
// preserving input order. Records are split into chunks enriched concurrently.
func (e *Engine) Enrich(ctx context.Context, records []types.CandidateRecord, anonymized bool) ([]types.EnrichedCandidate, error) {
	out := make([]types.EnrichedCandidate, len(records))
	if len(records) == 0 {
		return out, nil
	}

	cached := e.lookup(ctx, records)

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)

	for start := 0; start < len(records); start += chunkSize {
		end := min(start+chunkSize, len(records))
		g.Go(func() error {
			for i := start; i < end; i++ {
				if err := gCtx.Err(); err != nil {
					return err
				}
				rec := &records[i]
				if c, ok := cached[e.cacheKey(rec)]; ok {
					c.CandidateRecord = *rec
					out[i] = c
				} else {
					out[i] = e.enrichOne(rec)
				}
				out[i].AnonymizedLabel = e.labeler.Label(rec.ID)
				out[i].DisplayName = displayName(&out[i], anonymized)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("enrichment cancelled: %w", err)
	}

	e.save(ctx, records, out, cached)
	return out, nil
}

// EnrichOne enriches a single record.
func (e *Engine) EnrichOne(rec types.CandidateRecord, anonymized bool) types.EnrichedCandidate {
	c := e.enrichOne(&rec)
	c.AnonymizedLabel = e.labeler.Label(rec.ID)
	c.DisplayName = displayName(&c, anonymized)
	return c
}

func (e *Engine) enrichOne(rec *types.CandidateRecord) types.EnrichedCandidate {
	score := e.scorer.Score(rec)
	return types.EnrichedCandidate{
		CandidateRecord:     *rec,
		OverallScore:        score,
		FormattedExperience: ranking.FormatExperience(rec.ExperienceYears),
		ScoreLabel:          ranking.ScoreLabel(score),
	}
}

func displayName(c *types.EnrichedCandidate, anonymized bool) string {
	if anonymized {
		return c.AnonymizedLabel
	}
	if c.Name == "" {
		return anonymousName
	}
	return c.Name
}

func (e *Engine) emit(stage string, count int) {
	if e.onProgress != nil {
		e.onProgress(ProgressEvent{Stage: stage, Count: count})
	}
}
