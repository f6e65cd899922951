package rank

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/poiesic/recall/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Monday.
var testNow = time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)

func newTestRanker(t *testing.T, opts ...Option) *Ranker {
	t.Helper()
	r, err := NewRanker(opts...)
	require.NoError(t, err)
	t.Cleanup(r.Release)
	return r
}

func newDoc(id core.ID, title, body string, ts time.Time) *core.Document {
	return &core.Document{
		Id:         id,
		Title:      title,
		Body:       body,
		SourceType: core.SourceTypeText,
		Timestamp:  ts,
	}
}

func resultIDs(results []*core.ScoredResult) []core.ID {
	ids := make([]core.ID, len(results))
	for i, r := range results {
		ids[i] = r.Document.Id
	}
	return ids
}

func mlCorpus() []*core.Document {
	return []*core.Document{
		newDoc(1, "Reading group", "An introduction to machine learning and neural networks", time.Date(2024, 1, 9, 14, 0, 0, 0, time.UTC)),
		newDoc(2, "Old notes", "An introduction to machine learning and neural networks", time.Date(2023, 6, 1, 9, 0, 0, 0, time.UTC)),
		newDoc(3, "Dinner", "Cooking pasta with fresh tomatoes", time.Date(2024, 1, 10, 19, 0, 0, 0, time.UTC)),
		newDoc(4, "Machine learning", "Gradient descent tips and tricks", time.Date(2024, 1, 11, 8, 0, 0, 0, time.UTC)),
	}
}

func TestRank_TemporalQuery(t *testing.T) {
	r := newTestRanker(t)

	results, err := r.Rank(context.Background(), &core.Query{Text: "machine learning last week"}, mlCorpus(), testNow)
	require.NoError(t, err)

	assert.Equal(t, []core.ID{1, 2, 4}, resultIDs(results))

	recent := results[0]
	assert.True(t, recent.Signals.ExactPhrase)
	assert.Equal(t, 1.0, recent.Signals.Coverage)
	assert.Equal(t, 2, recent.Signals.TotalTerms)
	assert.False(t, recent.Signals.TitleOnly)
	assert.Equal(t, core.SemanticTermOverlap, recent.Signals.SemanticMethod)
	assert.GreaterOrEqual(t, recent.Signals.Temporal, 0.7)
	assert.Greater(t, recent.Confidence, recent.ContentRelevance, "in-range documents get a boost")

	old := results[1]
	assert.Equal(t, recent.ContentRelevance, old.ContentRelevance)
	assert.Less(t, old.Signals.Temporal, 0.5)
	assert.Equal(t, old.ContentRelevance, old.Confidence, "out-of-range documents are not penalized")

	titleOnly := results[2]
	assert.True(t, titleOnly.Signals.TitleOnly)
	assert.Less(t, titleOnly.Confidence, old.Confidence)

	for _, res := range results {
		assert.GreaterOrEqual(t, res.Confidence, 0.0)
		assert.LessOrEqual(t, res.Confidence, 1.0)
		assert.Greater(t, res.Confidence, DefaultConfig().InclusionThreshold)
	}
}

func TestRank_RecentNotesOutrankUnrelated(t *testing.T) {
	r := newTestRanker(t)

	for _, now := range []time.Time{
		testNow,
		time.Date(2024, 1, 19, 10, 0, 0, 0, time.UTC),
	} {
		t.Run(now.Weekday().String(), func(t *testing.T) {
			docs := []*core.Document{
				newDoc(1, "ML Notes", "Covered machine learning algorithms today", now.AddDate(0, 0, -3)),
				newDoc(2, "Groceries", "Buy eggs, milk and coffee beans", now.AddDate(0, 0, -40)),
			}
			results, err := r.Rank(context.Background(), &core.Query{Text: "machine learning last week"}, docs, now)
			require.NoError(t, err)
			require.NotEmpty(t, results)

			assert.Equal(t, core.ID(1), results[0].Document.Id)
			assert.Greater(t, results[0].Confidence, DefaultConfig().InclusionThreshold)
			for _, res := range results[1:] {
				assert.Less(t, res.Confidence, results[0].Confidence)
			}
		})
	}
}

func TestRank_Deterministic(t *testing.T) {
	r := newTestRanker(t, WithConfig(NewConfig(WithWorkers(4))))
	q := &core.Query{Text: "machine learning last week"}

	var docs []*core.Document
	for i := range 200 {
		body := fmt.Sprintf("entry %d about machine learning", i)
		if i%3 == 0 {
			body = fmt.Sprintf("entry %d about gardening", i)
		}
		docs = append(docs, newDoc(core.ID(i+1), "log", body, testNow.Add(-time.Duration(i)*time.Hour)))
	}

	first, err := r.Rank(context.Background(), q, docs, testNow)
	require.NoError(t, err)
	second, err := r.Rank(context.Background(), q, docs, testNow)
	require.NoError(t, err)

	require.NotEmpty(t, first)
	assert.Equal(t, resultIDs(first), resultIDs(second))
	for i := range first {
		assert.Equal(t, first[i].Confidence, second[i].Confidence)
	}
}

func TestRank_Ordering(t *testing.T) {
	r := newTestRanker(t)
	ts := testNow.Add(-48 * time.Hour)

	docs := []*core.Document{
		newDoc(30, "", "weekly planning meeting", ts),
		newDoc(10, "", "weekly planning meeting", ts),
		newDoc(20, "", "weekly planning meeting", ts.Add(time.Hour)),
	}

	results, err := r.Rank(context.Background(), &core.Query{Text: "planning meeting"}, docs, testNow)
	require.NoError(t, err)

	// Equal confidence: newest first, then lowest ID.
	assert.Equal(t, []core.ID{20, 10, 30}, resultIDs(results))
}

func TestRank_Embeddings(t *testing.T) {
	r := newTestRanker(t)

	docs := []*core.Document{
		newDoc(1, "", "vector databases", testNow),
		newDoc(2, "", "vector databases", testNow),
	}
	docs[0].Vector = []float32{1, 0, 0}
	docs[1].Vector = []float32{0, 1, 0}

	q := &core.Query{Text: "similarity search", Embedding: []float32{1, 0, 0}}
	results, err := r.Rank(context.Background(), q, docs, testNow)
	require.NoError(t, err)

	require.Len(t, results, 1)
	assert.Equal(t, core.ID(1), results[0].Document.Id)
	assert.Equal(t, core.SemanticCosine, results[0].Signals.SemanticMethod)
	assert.InDelta(t, 1.0, results[0].Signals.Semantic, 1e-9)
	assert.Equal(t, 40.0, results[0].Signals.Points.Semantic)
}

func TestRank_InputErrors(t *testing.T) {
	r := newTestRanker(t)
	valid := newDoc(1, "", "body", testNow)

	t.Run("dimension mismatch", func(t *testing.T) {
		bad := newDoc(2, "", "body", testNow)
		bad.Vector = []float32{1, 2}
		q := &core.Query{Text: "body", Embedding: []float32{1, 2, 3}}

		results, err := r.Rank(context.Background(), q, []*core.Document{valid, bad}, testNow)
		assert.Nil(t, results)
		assert.ErrorIs(t, err, core.ErrDimensionMismatch)
		assert.ErrorIs(t, err, core.ErrInvalidDocument)
	})

	t.Run("missing timestamp", func(t *testing.T) {
		bad := newDoc(2, "", "body", time.Time{})
		_, err := r.Rank(context.Background(), &core.Query{Text: "body"}, []*core.Document{valid, bad}, testNow)
		assert.ErrorIs(t, err, core.ErrMissingTimestamp)
	})

	t.Run("nil document", func(t *testing.T) {
		_, err := r.Rank(context.Background(), &core.Query{Text: "body"}, []*core.Document{nil}, testNow)
		assert.ErrorIs(t, err, core.ErrInvalidDocument)
	})

	t.Run("nil query", func(t *testing.T) {
		_, err := r.Rank(context.Background(), nil, []*core.Document{valid}, testNow)
		assert.ErrorIs(t, err, core.ErrInvalidQuery)
	})
}

func TestRank_DegenerateInputs(t *testing.T) {
	r := newTestRanker(t)

	t.Run("no candidates", func(t *testing.T) {
		results, err := r.Rank(context.Background(), &core.Query{Text: "anything"}, nil, testNow)
		require.NoError(t, err)
		assert.Empty(t, results)
	})

	t.Run("empty document", func(t *testing.T) {
		results, err := r.Rank(context.Background(), &core.Query{Text: "anything at all"}, []*core.Document{newDoc(1, "", "", testNow)}, testNow)
		require.NoError(t, err)
		assert.Empty(t, results)
	})

	t.Run("zero magnitude embedding", func(t *testing.T) {
		doc := newDoc(1, "", "unrelated words", testNow)
		doc.Vector = []float32{0, 0}
		q := &core.Query{Text: "query", Embedding: []float32{1, 1}}
		results, err := r.Rank(context.Background(), q, []*core.Document{doc}, testNow)
		require.NoError(t, err)
		assert.Empty(t, results)
	})

	t.Run("unresolved context is neutral", func(t *testing.T) {
		docs := []*core.Document{
			newDoc(1, "", "budget review meeting notes", testNow.Add(-time.Hour)),
			newDoc(2, "", "budget review meeting notes", testNow.Add(-400*24*time.Hour)),
		}
		results, err := r.Rank(context.Background(), &core.Query{Text: "budget review before the meeting"}, docs, testNow)
		require.NoError(t, err)
		require.Len(t, results, 2)
		for _, res := range results {
			assert.Equal(t, 0.5, res.Signals.Temporal)
		}
		assert.Equal(t, results[0].Confidence, results[1].Confidence)
	})
}

func TestRank_Filters(t *testing.T) {
	r := newTestRanker(t)

	t.Run("hard temporal mode drops out of range", func(t *testing.T) {
		q := &core.Query{Text: "machine learning last week", TemporalMode: core.TemporalHard}
		results, err := r.Rank(context.Background(), q, mlCorpus(), testNow)
		require.NoError(t, err)
		assert.Equal(t, []core.ID{1, 4}, resultIDs(results))
	})

	t.Run("hard mode without a range keeps everything", func(t *testing.T) {
		q := &core.Query{Text: "machine learning", TemporalMode: core.TemporalHard}
		results, err := r.Rank(context.Background(), q, mlCorpus(), testNow)
		require.NoError(t, err)
		assert.Len(t, results, 3)
	})

	t.Run("source types", func(t *testing.T) {
		docs := mlCorpus()
		docs[1].SourceType = core.SourceTypePDF
		q := &core.Query{Text: "machine learning", SourceTypes: []core.SourceType{core.SourceTypePDF}}
		results, err := r.Rank(context.Background(), q, docs, testNow)
		require.NoError(t, err)
		assert.Equal(t, []core.ID{2}, resultIDs(results))
	})

	t.Run("date filter overrides text", func(t *testing.T) {
		june := core.NewTimeRange(
			time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC),
			time.Date(2023, 6, 30, 23, 59, 59, 0, time.UTC))
		q := &core.Query{Text: "machine learning", DateFilter: &june, TemporalMode: core.TemporalHard}
		results, err := r.Rank(context.Background(), q, mlCorpus(), testNow)
		require.NoError(t, err)
		require.Equal(t, []core.ID{2}, resultIDs(results))
		assert.InDelta(t, 1.0, results[0].Signals.Temporal, 0.01)
	})

	t.Run("explicit date filter excludes out of range in soft mode", func(t *testing.T) {
		january := core.NewTimeRange(
			time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			time.Date(2024, 1, 31, 23, 59, 59, 0, time.UTC))
		docs := []*core.Document{
			newDoc(1, "", "machine learning notes", time.Date(2023, 3, 10, 9, 0, 0, 0, time.UTC)),
			newDoc(2, "", "machine learning notes", time.Date(2024, 1, 12, 9, 0, 0, 0, time.UTC)),
		}
		q := &core.Query{Text: "machine learning notes", DateFilter: &january}
		results, err := r.Rank(context.Background(), q, docs, testNow)
		require.NoError(t, err)
		assert.Equal(t, []core.ID{2}, resultIDs(results))
	})

	t.Run("limit", func(t *testing.T) {
		q := &core.Query{Text: "machine learning last week", Limit: 2}
		results, err := r.Rank(context.Background(), q, mlCorpus(), testNow)
		require.NoError(t, err)
		assert.Equal(t, []core.ID{1, 2}, resultIDs(results))
	})
}

func TestRank_Cancellation(t *testing.T) {
	r := newTestRanker(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	t.Run("without partial results", func(t *testing.T) {
		results, err := r.Rank(ctx, &core.Query{Text: "machine learning"}, mlCorpus(), testNow)
		assert.Nil(t, results)
		assert.ErrorIs(t, err, core.ErrResourceBudgetExceeded)
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("with partial results", func(t *testing.T) {
		q := &core.Query{Text: "machine learning", AllowPartial: true}
		results, err := r.Rank(ctx, q, mlCorpus(), testNow)
		assert.ErrorIs(t, err, core.ErrResourceBudgetExceeded)
		assert.NotNil(t, results)
	})
}

func TestRank_Released(t *testing.T) {
	r, err := NewRanker()
	require.NoError(t, err)
	r.Release()

	_, err = r.Rank(context.Background(), &core.Query{Text: "machine learning"}, mlCorpus(), testNow)
	assert.ErrorIs(t, err, ErrRankerReleased)
}

func TestRank_Timezone(t *testing.T) {
	r := newTestRanker(t, WithConfig(NewConfig(WithTimezone("America/New_York"))))
	// 2024-01-15 03:00 UTC is still Sunday the 14th in New York.
	now := time.Date(2024, 1, 15, 3, 0, 0, 0, time.UTC)
	doc := newDoc(1, "", "standup notes", time.Date(2024, 1, 14, 20, 0, 0, 0, time.UTC))

	results, err := r.Rank(context.Background(), &core.Query{Text: "standup notes today"}, []*core.Document{doc}, now)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.GreaterOrEqual(t, results[0].Signals.Temporal, 0.7)
}

func TestNewRanker_InvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Normalizer = 0

	_, err := NewRanker(WithConfig(cfg))
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = NewRanker(WithConfig(nil))
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

type recordingMonitor struct {
	mu       sync.Mutex
	calls    []string
	rng      core.TimeRange
	included []core.ID
	excluded []core.ID
	err      error
}

func (m *recordingMonitor) record(s string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, s)
}

func (m *recordingMonitor) Start(_ *core.Query, n int) { m.record(fmt.Sprintf("start:%d", n)) }
func (m *recordingMonitor) AfterTemporalResolution(rng core.TimeRange) {
	m.rng = rng
	m.record("temporal")
}
func (m *recordingMonitor) AfterFiltering(n int) { m.record(fmt.Sprintf("filtered:%d", n)) }
func (m *recordingMonitor) Included(res *core.ScoredResult) {
	m.included = append(m.included, res.Document.Id)
}
func (m *recordingMonitor) Excluded(doc *core.Document, _ float64) {
	m.excluded = append(m.excluded, doc.Id)
}
func (m *recordingMonitor) Finish(_ []*core.ScoredResult, err error) {
	m.err = err
	m.record("finish")
}

func TestRankWithMonitor(t *testing.T) {
	r := newTestRanker(t)
	mon := &recordingMonitor{}

	q := &core.Query{Text: "machine learning last week", TemporalMode: core.TemporalHard}
	_, err := r.RankWithMonitor(context.Background(), q, mlCorpus(), testNow, mon)
	require.NoError(t, err)

	assert.Equal(t, []string{"start:4", "temporal", "filtered:3", "finish"}, mon.calls)
	assert.Equal(t, core.RangeResolved, mon.rng.Kind)
	assert.Equal(t, "named_period", mon.rng.Rule)
	assert.Equal(t, []core.ID{1, 4}, mon.included)
	assert.Equal(t, []core.ID{3}, mon.excluded)
	assert.NoError(t, mon.err)
}

func TestRankWithMonitor_LimitReportsExcluded(t *testing.T) {
	r := newTestRanker(t)
	mon := &recordingMonitor{}

	q := &core.Query{Text: "machine learning last week", Limit: 1}
	results, err := r.RankWithMonitor(context.Background(), q, mlCorpus(), testNow, mon)
	require.NoError(t, err)

	assert.Equal(t, []core.ID{1}, resultIDs(results))
	assert.Equal(t, []core.ID{1}, mon.included)
	assert.ElementsMatch(t, []core.ID{3, 2, 4}, mon.excluded)
}

func TestRankWithMonitor_ReportsErrors(t *testing.T) {
	mon := &recordingMonitor{}
	r := newTestRanker(t, WithMonitor(mon))

	_, err := r.Rank(context.Background(), nil, nil, testNow)
	require.Error(t, err)
	assert.Equal(t, []string{"start:0", "finish"}, mon.calls)
	assert.ErrorIs(t, mon.err, core.ErrInvalidQuery)
}
