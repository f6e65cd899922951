package rank

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"slices"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/recall/core"
	"github.com/poiesic/recall/lexical"
	"github.com/poiesic/recall/semantic"
	"github.com/poiesic/recall/temporal"
)

// Tasks per worker when splitting candidates into scoring chunks.
const chunksPerWorker = 4

// Ranker fuses lexical, semantic and temporal signals into a ranked result
// list. A Ranker is safe for concurrent use until Release is called.
type Ranker struct {
	cfg      *Config
	resolver *temporal.Resolver
	pool     *ants.Pool
	monitor  Monitor
	logger   *slog.Logger
}

// Option configures a Ranker.
type Option func(*Ranker) error

// WithConfig replaces the default scoring configuration.
func WithConfig(cfg *Config) Option {
	return func(r *Ranker) error {
		if cfg == nil {
			return fmt.Errorf("%w: config is nil", ErrInvalidConfig)
		}
		c := *cfg
		c.SemanticBands = slices.Clone(cfg.SemanticBands)
		r.cfg = &c
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(r *Ranker) error {
		if logger == nil {
			logger = slog.Default()
		}
		r.logger = logger
		return nil
	}
}

// WithMonitor sets the monitor used when Rank is called without one.
func WithMonitor(m Monitor) Option {
	return func(r *Ranker) error {
		if m == nil {
			m = &noopMonitor{}
		}
		r.monitor = m
		return nil
	}
}

// NewRanker creates a Ranker with its scoring pool.
func NewRanker(opts ...Option) (*Ranker, error) {
	r := &Ranker{
		cfg:     DefaultConfig(),
		monitor: &noopMonitor{},
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}
	if err := r.cfg.Validate(); err != nil {
		return nil, err
	}

	loc, err := r.cfg.Location()
	if err != nil {
		return nil, err
	}
	resolver, err := temporal.NewResolver(temporal.WithLocation(loc), temporal.WithLogger(r.logger))
	if err != nil {
		return nil, err
	}
	r.resolver = resolver

	workers := r.cfg.Workers
	if workers == 0 {
		workers = runtime.NumCPU()
	}
	pool, err := ants.NewPool(workers)
	if err != nil {
		return nil, err
	}
	r.pool = pool
	r.logger = r.logger.With("component", "ranker")
	return r, nil
}

// Config returns a copy of the ranker's configuration.
func (r *Ranker) Config() Config {
	c := *r.cfg
	c.SemanticBands = slices.Clone(r.cfg.SemanticBands)
	return c
}

// Resolver returns the temporal resolver the ranker uses.
func (r *Ranker) Resolver() *temporal.Resolver {
	return r.resolver
}

// Release stops the scoring pool. The ranker cannot be used afterwards.
func (r *Ranker) Release() {
	if r.pool != nil {
		r.pool.Release()
	}
}

// Rank scores candidates against q as of now and returns the included
// results, best first. Output is deterministic for identical inputs.
//
// Invalid queries, malformed candidates and embedding dimension mismatches
// fail before any scoring. If ctx ends or Config.Timeout elapses mid-scoring
// the error wraps core.ErrResourceBudgetExceeded; results scored so far are
// returned only when q.AllowPartial is set.
func (r *Ranker) Rank(ctx context.Context, q *core.Query, candidates []*core.Document, now time.Time) ([]*core.ScoredResult, error) {
	return r.RankWithMonitor(ctx, q, candidates, now, nil)
}

// RankWithMonitor is Rank with per-call monitoring. A nil monitor uses the
// ranker's default.
func (r *Ranker) RankWithMonitor(ctx context.Context, q *core.Query, candidates []*core.Document, now time.Time, monitor Monitor) ([]*core.ScoredResult, error) {
	if monitor == nil {
		monitor = r.monitor
	}
	monitor.Start(q, len(candidates))
	results, err := r.rank(ctx, q, candidates, now, monitor)
	monitor.Finish(results, err)
	return results, err
}

func (r *Ranker) rank(ctx context.Context, q *core.Query, candidates []*core.Document, now time.Time, monitor Monitor) ([]*core.ScoredResult, error) {
	// 1. Contract violations fail fast.
	if err := core.ValidateQuery(q); err != nil {
		return nil, err
	}
	for _, doc := range candidates {
		if err := core.ValidateDocument(doc); err != nil {
			return nil, err
		}
		if err := core.ValidateEmbeddingDimensions(q.Embedding, doc); err != nil {
			return nil, err
		}
	}

	// 2. Resolve the time range once; every scoring task shares it.
	textRange := r.resolver.Resolve(q.Text, now)
	rng := textRange
	if q.DateFilter != nil {
		rng = *q.DateFilter
		rng.Start, rng.End = rng.Start.UTC(), rng.End.UTC()
	}
	monitor.AfterTemporalResolution(rng)

	// 3. Filters.
	filtered := r.filter(q, rng, candidates)
	monitor.AfterFiltering(len(filtered))

	// 4. Parallel scoring.
	lexQuery := lexical.NewQuery(temporal.StripExpression(q.Text, textRange))
	sc := &scorer{
		cfg:      r.cfg,
		lexQuery: lexQuery,
		semQuery: semantic.Input{Terms: lexQuery.Terms(), Embedding: q.Embedding},
		rng:      rng,
	}
	scored, scoreErr := r.scoreAll(ctx, sc, filtered)
	if scoreErr != nil && (!errors.Is(scoreErr, core.ErrResourceBudgetExceeded) || !q.AllowPartial) {
		return nil, scoreErr
	}

	// 5. Threshold, order, limit.
	results := make([]*core.ScoredResult, 0, len(scored))
	for i, res := range scored {
		if res == nil {
			continue
		}
		if res.Confidence > r.cfg.InclusionThreshold {
			results = append(results, res)
		} else {
			monitor.Excluded(filtered[i], res.Confidence)
		}
	}
	slices.SortFunc(results, compareResults)
	if q.Limit > 0 && len(results) > q.Limit {
		for _, res := range results[q.Limit:] {
			monitor.Excluded(res.Document, res.Confidence)
		}
		results = results[:q.Limit]
	}
	for _, res := range results {
		monitor.Included(res)
	}

	r.logger.Debug("ranked candidates",
		"candidates", len(candidates),
		"filtered", len(filtered),
		"included", len(results),
		"range", rng.Kind.String(),
		"rule", rng.Rule)
	return results, scoreErr
}

// filter applies the source-type filter and the date bounds. An explicit
// DateFilter always excludes out-of-range documents; a range resolved from
// the query text does so only in TemporalHard mode.
func (r *Ranker) filter(q *core.Query, rng core.TimeRange, candidates []*core.Document) []*core.Document {
	hard := rng.IsResolved() && (q.DateFilter != nil || q.TemporalMode == core.TemporalHard)
	if len(q.SourceTypes) == 0 && !hard {
		return candidates
	}
	out := make([]*core.Document, 0, len(candidates))
	for _, doc := range candidates {
		if len(q.SourceTypes) > 0 && !slices.Contains(q.SourceTypes, doc.SourceType) {
			continue
		}
		if hard && !rng.Contains(doc.Timestamp) {
			continue
		}
		out = append(out, doc)
	}
	return out
}

// scoreAll scores docs on the pool. The returned slice is index-aligned with
// docs; entries left nil were not scored before cancellation.
func (r *Ranker) scoreAll(ctx context.Context, sc *scorer, docs []*core.Document) ([]*core.ScoredResult, error) {
	if r.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.cfg.Timeout)
		defer cancel()
	}

	results := make([]*core.ScoredResult, len(docs))
	errs := make([]error, len(docs))
	chunk := max(1, len(docs)/(r.pool.Cap()*chunksPerWorker))

	var (
		wg        sync.WaitGroup
		submitErr error
	)
	for start := 0; start < len(docs); start += chunk {
		if ctx.Err() != nil {
			break
		}
		end := min(start+chunk, len(docs))
		wg.Add(1)
		err := r.pool.Submit(func() {
			defer wg.Done()
			for i := start; i < end; i++ {
				if ctx.Err() != nil {
					return
				}
				results[i], errs[i] = sc.score(docs[i])
			}
		})
		if err != nil {
			wg.Done()
			if errors.Is(err, ants.ErrPoolClosed) {
				err = ErrRankerReleased
			}
			submitErr = err
			break
		}
	}
	wg.Wait()

	if submitErr != nil {
		return nil, submitErr
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	scored := 0
	for _, res := range results {
		if res != nil {
			scored++
		}
	}
	if scored < len(docs) {
		cause := ctx.Err()
		if cause == nil {
			cause = context.Canceled
		}
		r.logger.Warn("ranking stopped before all candidates were scored",
			"scored", scored, "candidates", len(docs), "err", cause)
		return results, fmt.Errorf("%w: scored %d of %d candidates: %w",
			core.ErrResourceBudgetExceeded, scored, len(docs), cause)
	}
	return results, nil
}

// compareResults orders by confidence, then recency, then ID.
func compareResults(a, b *core.ScoredResult) int {
	if c := cmp.Compare(b.Confidence, a.Confidence); c != 0 {
		return c
	}
	if c := b.Document.Timestamp.Compare(a.Document.Timestamp); c != 0 {
		return c
	}
	return cmp.Compare(a.Document.Id, b.Document.Id)
}
