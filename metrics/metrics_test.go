package metrics

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/poiesic/recall/core"
	"github.com/poiesic/recall/rank"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMetrics(t *testing.T) *Metrics {
	t.Helper()
	m, err := New(prometheus.NewRegistry())
	require.NoError(t, err)
	return m
}

func TestNew_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := New(reg)
	require.NoError(t, err)

	_, err = New(reg)
	var are prometheus.AlreadyRegisteredError
	assert.True(t, errors.As(err, &are), "second registration should fail, got %v", err)
}

func TestRankMonitor_WithRanker(t *testing.T) {
	m := newTestMetrics(t)
	r, err := rank.NewRanker()
	require.NoError(t, err)
	defer r.Release()

	now := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
	docs := []*core.Document{
		{Id: 1, Body: "quarterly budget review", SourceType: core.SourceTypeText, Timestamp: now.Add(-24 * time.Hour)},
		{Id: 2, Body: "quarterly budget review", SourceType: core.SourceTypeText, Timestamp: now.Add(-48 * time.Hour)},
		{Id: 3, Body: "garden planting schedule", SourceType: core.SourceTypeText, Timestamp: now},
	}

	results, err := r.RankWithMonitor(context.Background(), &core.Query{Text: "budget review this week"}, docs, now, m.NewRankMonitor())
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.RankTotal.WithLabelValues(StatusOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RankExcludedTotal))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.TemporalRangeTotal.WithLabelValues("resolved")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.RankDuration))
	assert.Equal(t, 1, testutil.CollectAndCount(m.ResultConfidence))
}

func TestRankMonitor_Status(t *testing.T) {
	budget := fmt.Errorf("%w: deadline", core.ErrResourceBudgetExceeded)

	tests := []struct {
		name    string
		results []*core.ScoredResult
		err     error
		want    string
	}{
		{name: "success", results: []*core.ScoredResult{}, want: StatusOK},
		{name: "partial", results: []*core.ScoredResult{}, err: budget, want: StatusPartial},
		{name: "budget without results", err: budget, want: StatusError},
		{name: "input error", err: core.ErrInvalidQuery, want: StatusError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestMetrics(t)
			mon := m.NewRankMonitor()
			mon.Start(&core.Query{}, 0)
			mon.Finish(tt.results, tt.err)

			assert.Equal(t, 1.0, testutil.ToFloat64(m.RankTotal.WithLabelValues(tt.want)))
		})
	}
}

func TestObserveEmbedding(t *testing.T) {
	m := newTestMetrics(t)

	m.ObserveEmbedding(nil)
	m.ObserveEmbedding(nil)
	m.ObserveEmbedding(errors.New("connection refused"))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.EmbeddingTotal.WithLabelValues(StatusOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.EmbeddingTotal.WithLabelValues(StatusError)))
}
