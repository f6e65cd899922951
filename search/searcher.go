package search

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/poiesic/recall/ai"
	"github.com/poiesic/recall/core"
	"github.com/poiesic/recall/metrics"
	"github.com/poiesic/recall/rank"
	"github.com/poiesic/recall/storage"
)

const (
	// DefaultCandidateLimit caps how many recent or similar documents are
	// fetched per query.
	DefaultCandidateLimit = 1000

	// DefaultMinSimilarity is the cosine floor for vector candidates.
	DefaultMinSimilarity = 0.5
)

// Searcher provides hybrid lexical, semantic and temporal search over
// stored documents.
type Searcher struct {
	repository     storage.DocumentRepository
	embedder       ai.Embedder
	ranker         *rank.Ranker
	ownsRanker     bool
	rankConfig     *rank.Config
	metrics        *metrics.Metrics
	candidateLimit int
	minSimilarity  float64
	now            func() time.Time
	logger         *slog.Logger
}

// Option configures a Searcher.
type Option func(*Searcher) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Searcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// WithEmbedder sets the embedder used for query text. Without one, queries
// rank on term overlap only.
func WithEmbedder(embedder ai.Embedder) Option {
	return func(s *Searcher) error {
		s.embedder = embedder
		return nil
	}
}

// WithRanker sets the ranker. The caller keeps ownership and must release
// it. By default the searcher creates and owns a ranker.
func WithRanker(ranker *rank.Ranker) Option {
	return func(s *Searcher) error {
		s.ranker = ranker
		return nil
	}
}

// WithRankConfig sets the configuration of the ranker the searcher creates.
// It is ignored when WithRanker is used.
func WithRankConfig(cfg *rank.Config) Option {
	return func(s *Searcher) error {
		s.rankConfig = cfg
		return nil
	}
}

// WithMetrics records ranking and query embedding outcomes.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Searcher) error {
		s.metrics = m
		return nil
	}
}

// WithCandidateLimit caps recent and similar candidate fetches.
// Zero fetches every stored document.
func WithCandidateLimit(n int) Option {
	return func(s *Searcher) error {
		if n < 0 {
			return ErrInvalidCandidateLimit
		}
		s.candidateLimit = n
		return nil
	}
}

// WithMinSimilarity sets the cosine floor for vector candidates.
func WithMinSimilarity(threshold float64) Option {
	return func(s *Searcher) error {
		if threshold < -1 || threshold > 1 {
			return fmt.Errorf("min similarity %v outside [-1, 1]", threshold)
		}
		s.minSimilarity = threshold
		return nil
	}
}

// WithClock sets the reference time source for relative expressions.
func WithClock(now func() time.Time) Option {
	return func(s *Searcher) error {
		if now != nil {
			s.now = now
		}
		return nil
	}
}

// NewSearcher creates a new searcher.
func NewSearcher(repository storage.DocumentRepository, opts ...Option) (*Searcher, error) {
	if repository == nil {
		return nil, ErrRepositoryRequired
	}

	s := &Searcher{
		repository:     repository,
		candidateLimit: DefaultCandidateLimit,
		minSimilarity:  DefaultMinSimilarity,
		now:            time.Now,
		logger:         slog.Default(),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	s.logger = s.logger.With("component", "searcher")

	if s.ranker == nil {
		rankOpts := []rank.Option{rank.WithLogger(s.logger)}
		if s.rankConfig != nil {
			rankOpts = append(rankOpts, rank.WithConfig(s.rankConfig))
		}
		ranker, err := rank.NewRanker(rankOpts...)
		if err != nil {
			return nil, err
		}
		s.ranker = ranker
		s.ownsRanker = true
	}

	return s, nil
}

// Ranker returns the ranker used for scoring.
func (s *Searcher) Ranker() *rank.Ranker {
	return s.ranker
}

// Close releases the ranker if the searcher created it.
func (s *Searcher) Close() {
	if s.ownsRanker {
		s.ranker.Release()
	}
}

// SearchText runs a plain text query returning at most limit results.
func (s *Searcher) SearchText(ctx context.Context, text string, limit int) ([]*core.ScoredResult, error) {
	return s.Search(ctx, &core.Query{Text: text, Limit: limit})
}

// Search runs q against the repository. q is not modified.
func (s *Searcher) Search(ctx context.Context, q *core.Query) ([]*core.ScoredResult, error) {
	return s.SearchWithMonitor(ctx, q, nil)
}

// SearchWithMonitor searches with monitoring.
// The monitor receives callbacks at each stage of the search process.
func (s *Searcher) SearchWithMonitor(ctx context.Context, q *core.Query, monitor Monitor) ([]*core.ScoredResult, error) {
	if err := core.ValidateQuery(q); err != nil {
		return nil, err
	}
	if monitor == nil {
		monitor = &noopMonitor{}
	}

	now := s.now()
	query := *q

	// 1. Embed the query. Failure degrades to term overlap.
	if len(query.Embedding) == 0 {
		query.Embedding = s.embedQuery(ctx, query.Text, monitor)
	}

	// 2. Gather candidates.
	candidates, err := s.candidates(ctx, &query, now)
	if err != nil {
		s.logger.Error("error retrieving candidates", "err", err)
		return nil, err
	}
	monitor.AfterCandidateRetrieval(candidates)

	// 3. Rank.
	var rm rank.Monitor = monitor
	if s.metrics != nil {
		rm = &multiMonitor{Monitor: monitor, extra: s.metrics.NewRankMonitor()}
	}
	results, err := s.ranker.RankWithMonitor(ctx, &query, candidates, now, rm)
	if err != nil {
		s.logger.Error("ranking failed", "query", query.Text, "candidates", len(candidates), "err", err)
		return results, err
	}

	s.logger.Debug("search complete", "query", query.Text, "candidates", len(candidates), "results", len(results))
	return results, nil
}

func (s *Searcher) embedQuery(ctx context.Context, text string, monitor Monitor) []float32 {
	if s.embedder == nil || strings.TrimSpace(text) == "" {
		return nil
	}

	embedding, err := s.embedder.EmbedText(ctx, text)
	if s.metrics != nil {
		s.metrics.ObserveEmbedding(err)
	}
	monitor.AfterQueryEmbedding(embedding, err)
	if err != nil {
		s.logger.Warn("query embedding failed, falling back to term overlap", "query", text, "err", err)
		return nil
	}
	return embedding
}

// candidates fetches documents the ranker should consider. An explicit date
// filter, a hard temporal range or source types narrow the scan in storage;
// the ranker applies the same filters again.
func (s *Searcher) candidates(ctx context.Context, q *core.Query, now time.Time) ([]*core.Document, error) {
	rng := core.TimeRange{}
	switch {
	case q.DateFilter != nil:
		rng = *q.DateFilter
	case q.TemporalMode == core.TemporalHard:
		rng = s.ranker.Resolver().Resolve(q.Text, now)
	}

	var (
		docs []*core.Document
		err  error
	)
	switch {
	case rng.IsResolved():
		docs, err = s.repository.GetDocumentsByDateRange(ctx, rng.Start, rng.End)
	case len(q.SourceTypes) > 0:
		docs, err = s.repository.GetDocumentsBySourceType(ctx, q.SourceTypes...)
	default:
		docs, err = s.repository.GetRecentDocuments(ctx, s.candidateLimit)
	}
	if err != nil {
		return nil, err
	}

	if len(q.Embedding) == 0 {
		return docs, nil
	}

	similar, err := s.repository.FindSimilar(ctx, q.Embedding, s.minSimilarity, s.candidateLimit)
	if err != nil {
		return nil, err
	}
	seen := make(map[core.ID]struct{}, len(docs)+len(similar))
	for _, doc := range docs {
		seen[doc.Id] = struct{}{}
	}
	for _, match := range similar {
		if _, ok := seen[match.Document.Id]; ok {
			continue
		}
		seen[match.Document.Id] = struct{}{}
		docs = append(docs, match.Document)
	}
	return docs, nil
}
