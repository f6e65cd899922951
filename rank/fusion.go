package rank

import "github.com/poiesic/recall/core"

// CoverageMultiplier returns the penalty applied to partial coverage.
func (c *Config) CoverageMultiplier(coverage float64) float64 {
	switch {
	case coverage < c.LowCoverage:
		return c.LowCoverageFactor
	case coverage < c.PartialCoverage:
		return c.PartialCoverageFactor
	default:
		return 1.0
	}
}

// SemanticPoints maps a similarity to its band's points.
func (c *Config) SemanticPoints(similarity float64) float64 {
	for _, band := range c.SemanticBands {
		if similarity > band.Above {
			return band.Points
		}
	}
	return 0
}

// ContentPoints combines the content signals into points and a relevance in
// [0, 1].
func (c *Config) ContentPoints(exact bool, coverage, similarity float64, titleOnly bool) (core.Points, float64) {
	var p core.Points
	if exact {
		p.ExactPhrase = c.ExactPhrasePoints
	}
	coverage = max(0, min(1, coverage))
	p.Coverage = c.CoveragePoints * coverage * c.CoverageMultiplier(coverage)
	if titleOnly {
		p.ExactPhrase *= c.TitleOnlyFactor
		p.Coverage *= c.TitleOnlyFactor
	}
	p.Semantic = c.SemanticPoints(similarity)
	p.Total = p.ExactPhrase + p.Coverage + p.Semantic

	relevance := max(0, min(1, p.Total/c.Normalizer))
	return p, relevance
}

// TemporalMultiplier is 1.0 up to TemporalBoostThreshold and rises linearly
// to TemporalBoostMax at a temporal relevance of 1.0.
func (c *Config) TemporalMultiplier(temporal float64) float64 {
	if temporal <= c.TemporalBoostThreshold {
		return 1.0
	}
	frac := (min(temporal, 1.0) - c.TemporalBoostThreshold) / (1.0 - c.TemporalBoostThreshold)
	return 1.0 + (c.TemporalBoostMax-1.0)*frac
}

// Confidence applies the temporal multiplier to content relevance, clamped
// to [0, 1].
func (c *Config) Confidence(relevance, temporal float64) float64 {
	return max(0, min(1, relevance*c.TemporalMultiplier(temporal)))
}
