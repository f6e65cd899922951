// Package metrics exposes Prometheus instrumentation for ranking and
// embedding.
package metrics

import (
	"errors"
	"time"

	"github.com/poiesic/recall/core"
	"github.com/poiesic/recall/rank"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "recall"

// Rank outcome labels.
const (
	StatusOK      = "ok"
	StatusPartial = "partial"
	StatusError   = "error"
)

// Metrics holds the collectors registered for one process.
type Metrics struct {
	RankTotal          *prometheus.CounterVec
	RankDuration       prometheus.Histogram
	RankCandidates     prometheus.Histogram
	RankResults        prometheus.Histogram
	RankExcludedTotal  prometheus.Counter
	ResultConfidence   prometheus.Histogram
	TemporalRangeTotal *prometheus.CounterVec
	EmbeddingTotal     *prometheus.CounterVec
	EmbeddingCache     *prometheus.CounterVec
}

// New creates the collectors and registers them with reg. A nil reg uses
// prometheus.DefaultRegisterer.
func New(reg prometheus.Registerer) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &Metrics{
		RankTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "rank_requests_total",
				Help:      "Total number of rank calls",
			},
			[]string{"status"},
		),
		RankDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "rank_duration_seconds",
				Help:      "Rank call duration in seconds",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
			},
		),
		RankCandidates: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "rank_candidates",
				Help:      "Candidates submitted per rank call",
				Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
			},
		),
		RankResults: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "rank_results",
				Help:      "Results returned per rank call",
				Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
			},
		),
		RankExcludedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "rank_excluded_total",
				Help:      "Candidates scored at or below the inclusion threshold",
			},
		),
		ResultConfidence: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "result_confidence",
				Help:      "Confidence of returned results",
				Buckets:   prometheus.LinearBuckets(0.1, 0.1, 10),
			},
		),
		TemporalRangeTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "temporal_ranges_total",
				Help:      "Query time ranges by kind",
			},
			[]string{"kind"},
		),
		EmbeddingTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "embedding_requests_total",
				Help:      "Total number of embedding requests",
			},
			[]string{"status"},
		),
		EmbeddingCache: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "embedding_cache_total",
				Help:      "Embedding cache hits and misses",
			},
			[]string{"result"}, // "hit" / "miss"
		),
	}

	for _, c := range []prometheus.Collector{
		m.RankTotal,
		m.RankDuration,
		m.RankCandidates,
		m.RankResults,
		m.RankExcludedTotal,
		m.ResultConfidence,
		m.TemporalRangeTotal,
		m.EmbeddingTotal,
		m.EmbeddingCache,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// ObserveEmbedding counts an embedding request by outcome.
func (m *Metrics) ObserveEmbedding(err error) {
	status := StatusOK
	if err != nil {
		status = StatusError
	}
	m.EmbeddingTotal.WithLabelValues(status).Inc()
}

// NewRankMonitor returns a rank.Monitor for a single rank call.
func (m *Metrics) NewRankMonitor() rank.Monitor {
	return &rankMonitor{metrics: m, now: time.Now}
}

type rankMonitor struct {
	metrics *Metrics
	now     func() time.Time
	start   time.Time
}

var _ rank.Monitor = (*rankMonitor)(nil)

func (r *rankMonitor) Start(_ *core.Query, candidates int) {
	r.start = r.now()
	r.metrics.RankCandidates.Observe(float64(candidates))
}

func (r *rankMonitor) AfterTemporalResolution(rng core.TimeRange) {
	r.metrics.TemporalRangeTotal.WithLabelValues(rng.Kind.String()).Inc()
}

func (r *rankMonitor) AfterFiltering(_ int) {}

func (r *rankMonitor) Included(result *core.ScoredResult) {
	r.metrics.ResultConfidence.Observe(result.Confidence)
}

func (r *rankMonitor) Excluded(_ *core.Document, _ float64) {
	r.metrics.RankExcludedTotal.Inc()
}

func (r *rankMonitor) Finish(results []*core.ScoredResult, err error) {
	status := StatusOK
	switch {
	case err != nil && results != nil && errors.Is(err, core.ErrResourceBudgetExceeded):
		status = StatusPartial
	case err != nil:
		status = StatusError
	}
	r.metrics.RankTotal.WithLabelValues(status).Inc()
	r.metrics.RankResults.Observe(float64(len(results)))
	r.metrics.RankDuration.Observe(r.now().Sub(r.start).Seconds())
}
