package temporal

import (
	"math"
	"testing"
	"time"

	"github.com/poiesic/recall/core"
	"github.com/stretchr/testify/assert"
)

func TestScore(t *testing.T) {
	start := time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC).Add(-time.Nanosecond)
	rng := core.NewTimeRange(start, end)
	mid := start.Add(end.Sub(start) / 2)

	tests := []struct {
		name  string
		ts    time.Time
		rng   core.TimeRange
		want  float64
		delta float64
	}{
		{name: "no range is neutral", ts: start, rng: core.TimeRange{}, want: 0.5},
		{
			name: "unresolved context is neutral",
			ts:   start,
			rng:  core.TimeRange{Kind: core.RangeUnresolvedContext, Expression: "before the meeting"},
			want: 0.5,
		},
		{name: "at start", ts: start, rng: rng, want: 1.0},
		{name: "at end", ts: end, rng: rng, want: 0.7},
		{name: "middle", ts: mid, rng: rng, want: 0.85, delta: 1e-6},
		{name: "one half-life after", ts: end.Add(DefaultHalfLife), rng: rng, want: 0.5 * math.Exp(-1), delta: 1e-9},
		{name: "one day before", ts: start.Add(-24 * time.Hour), rng: rng, want: 0.5 * math.Exp(-1.0/30), delta: 1e-9},
		{name: "sixty days out is floored", ts: end.Add(60 * 24 * time.Hour), rng: rng, want: 0.1},
		{name: "centuries out is floored", ts: start.AddDate(-300, 0, 0), rng: rng, want: 0.1},
		{name: "zero-length range", ts: start, rng: core.NewTimeRange(start, start), want: 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Score(tt.ts, tt.rng, DefaultHalfLife)
			assert.InDelta(t, tt.want, got, tt.delta+1e-12)
			assert.GreaterOrEqual(t, got, 0.0)
			assert.LessOrEqual(t, got, 1.0)
		})
	}
}

func TestScore_EndIsHighScore(t *testing.T) {
	now := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	rng := Resolve("last week", now)
	assert.GreaterOrEqual(t, Score(rng.End, rng, DefaultHalfLife), 0.7)
}

func TestScore_HalfLife(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rng := core.NewTimeRange(start, start.Add(24*time.Hour))
	ts := rng.End.Add(10 * 24 * time.Hour)

	short := Score(ts, rng, 5*24*time.Hour)
	long := Score(ts, rng, 90*24*time.Hour)
	assert.Less(t, short, long)

	// Non-positive half-life falls back to the default.
	assert.Equal(t, Score(ts, rng, DefaultHalfLife), Score(ts, rng, 0))
}
