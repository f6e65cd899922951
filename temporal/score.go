package temporal

import (
	"math"
	"time"

	"github.com/poiesic/recall/core"
)

const (
	// DefaultHalfLife is the decay constant for documents outside a range.
	DefaultHalfLife = 30 * 24 * time.Hour

	// NeutralScore is returned when there is no usable range.
	NeutralScore = 0.5

	// MinOutOfRangeScore keeps old documents discoverable.
	MinOutOfRangeScore = 0.1

	// InRangeSpread is how far the in-range score falls from start to end.
	InRangeSpread = 0.3
)

// Score rates how well ts fits rng, in [0, 1].
//
// Without a resolved range the score is NeutralScore. Inside the range it is
// 1 - InRangeSpread*position, where position is the fractional offset from
// Start to End, so the earliest document scores 1.0 and one at End scores 0.7.
// Outside the range it decays as 0.5*exp(-distance/halfLife) from the nearer
// bound, never dropping below MinOutOfRangeScore. A non-positive halfLife
// selects DefaultHalfLife.
func Score(ts time.Time, rng core.TimeRange, halfLife time.Duration) float64 {
	if !rng.IsResolved() {
		return NeutralScore
	}
	if halfLife <= 0 {
		halfLife = DefaultHalfLife
	}

	if rng.Contains(ts) {
		span := rng.End.Sub(rng.Start)
		if span <= 0 {
			return 1.0
		}
		position := float64(ts.Sub(rng.Start)) / float64(span)
		return min(1.0, 1.0-InRangeSpread*position)
	}

	var distance time.Duration
	if ts.Before(rng.Start) {
		distance = rng.Start.Sub(ts)
	} else {
		distance = ts.Sub(rng.End)
	}
	decayed := NeutralScore * math.Exp(-distance.Seconds()/halfLife.Seconds())
	return max(MinOutOfRangeScore, decayed)
}
