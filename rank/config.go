package rank

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"gopkg.in/yaml.v3"
)

// SemanticBand awards Points when similarity is strictly above Above.
type SemanticBand struct {
	Above  float64 `yaml:"above"`
	Points float64 `yaml:"points"`
}

// Config holds every tunable of the fusion ranker. The defaults are the
// empirically chosen values the scoring was calibrated with; change them only
// with evidence.
type Config struct {
	// ExactPhrasePoints is awarded when the whole query appears verbatim.
	ExactPhrasePoints float64 `yaml:"exact_phrase_points"`

	// CoveragePoints is the maximum awarded for meaningful-term coverage.
	CoveragePoints float64 `yaml:"coverage_points"`

	// Coverage below LowCoverage is multiplied by LowCoverageFactor; coverage
	// below PartialCoverage by PartialCoverageFactor.
	LowCoverage           float64 `yaml:"low_coverage"`
	LowCoverageFactor     float64 `yaml:"low_coverage_factor"`
	PartialCoverage       float64 `yaml:"partial_coverage"`
	PartialCoverageFactor float64 `yaml:"partial_coverage_factor"`

	// SemanticBands are checked highest first; the first band exceeded wins.
	SemanticBands []SemanticBand `yaml:"semantic_bands"`

	// TitleOnlyFactor scales phrase and coverage points when every match is
	// in the title rather than the body.
	TitleOnlyFactor float64 `yaml:"title_only_factor"`

	// Normalizer is the realistic maximum point total.
	Normalizer float64 `yaml:"normalizer"`

	// Temporal relevance above TemporalBoostThreshold ramps the confidence
	// multiplier linearly up to TemporalBoostMax at relevance 1.0.
	TemporalBoostThreshold float64 `yaml:"temporal_boost_threshold"`
	TemporalBoostMax       float64 `yaml:"temporal_boost_max"`

	// InclusionThreshold is the confidence a result must exceed.
	InclusionThreshold float64 `yaml:"inclusion_threshold"`

	// HalfLife is the temporal decay constant for out-of-range documents.
	HalfLife time.Duration `yaml:"half_life"`

	// Timezone names the location calendar periods resolve in.
	Timezone string `yaml:"timezone"`

	// ExcerptLength is the number of runes kept for result excerpts.
	ExcerptLength int `yaml:"excerpt_length"`

	// Workers is the scoring pool size. Zero means runtime.NumCPU().
	Workers int `yaml:"workers"`

	// Timeout bounds a single Rank call. Zero means no limit beyond the
	// caller's context.
	Timeout time.Duration `yaml:"timeout"`
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithInclusionThreshold sets the minimum confidence for a result.
func WithInclusionThreshold(threshold float64) ConfigOption {
	return func(c *Config) {
		c.InclusionThreshold = threshold
	}
}

// WithHalfLife sets the temporal decay constant.
func WithHalfLife(d time.Duration) ConfigOption {
	return func(c *Config) {
		c.HalfLife = d
	}
}

// WithTimezone sets the location used to resolve calendar periods.
func WithTimezone(name string) ConfigOption {
	return func(c *Config) {
		c.Timezone = name
	}
}

// WithWorkers sets the scoring pool size.
func WithWorkers(n int) ConfigOption {
	return func(c *Config) {
		c.Workers = n
	}
}

// WithTimeout bounds each Rank call.
func WithTimeout(d time.Duration) ConfigOption {
	return func(c *Config) {
		c.Timeout = d
	}
}

// WithExcerptLength sets the excerpt size in runes.
func WithExcerptLength(n int) ConfigOption {
	return func(c *Config) {
		c.ExcerptLength = n
	}
}

// DefaultConfig returns the calibrated scoring constants.
func DefaultConfig() *Config {
	return &Config{
		ExactPhrasePoints:     80,
		CoveragePoints:        40,
		LowCoverage:           0.3,
		LowCoverageFactor:     0.3,
		PartialCoverage:       0.5,
		PartialCoverageFactor: 0.6,
		SemanticBands: []SemanticBand{
			{Above: 0.8, Points: 40},
			{Above: 0.7, Points: 25},
			{Above: 0.5, Points: 12},
		},
		TitleOnlyFactor:        0.5,
		Normalizer:             150,
		TemporalBoostThreshold: 0.7,
		TemporalBoostMax:       1.1,
		InclusionThreshold:     0.15,
		HalfLife:               30 * 24 * time.Hour,
		Timezone:               "UTC",
		ExcerptLength:          400,
	}
}

// NewConfig creates a Config with the default values and applies the provided options.
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// LoadConfig reads a YAML file over the defaults. ${VAR} references are
// expanded from the environment before parsing.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("failed to read rank config %s: %w", path, err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse rank config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Location returns the configured timezone.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.UTC, nil
	}
	return time.LoadLocation(c.Timezone)
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}

	check(c.ExactPhrasePoints >= 0, "exact_phrase_points must be non-negative")
	check(c.CoveragePoints >= 0, "coverage_points must be non-negative")
	check(c.LowCoverage >= 0 && c.LowCoverage <= c.PartialCoverage && c.PartialCoverage <= 1,
		"coverage thresholds must satisfy 0 <= low_coverage <= partial_coverage <= 1")
	check(c.LowCoverageFactor >= 0 && c.LowCoverageFactor <= c.PartialCoverageFactor && c.PartialCoverageFactor <= 1,
		"coverage factors must satisfy 0 <= low_coverage_factor <= partial_coverage_factor <= 1")
	check(slices.IsSortedFunc(c.SemanticBands, func(a, b SemanticBand) int {
		switch {
		case a.Above > b.Above:
			return -1
		case a.Above < b.Above:
			return 1
		}
		return 0
	}), "semantic_bands must be ordered by descending threshold")
	for i := 1; i < len(c.SemanticBands); i++ {
		check(c.SemanticBands[i].Points <= c.SemanticBands[i-1].Points,
			"semantic_bands points must not increase as thresholds fall")
	}
	check(c.TitleOnlyFactor >= 0 && c.TitleOnlyFactor <= 1, "title_only_factor must be in [0, 1]")
	check(c.Normalizer > 0, "normalizer must be positive")
	check(c.TemporalBoostThreshold >= 0 && c.TemporalBoostThreshold < 1, "temporal_boost_threshold must be in [0, 1)")
	check(c.TemporalBoostMax >= 1, "temporal_boost_max must be at least 1")
	check(c.InclusionThreshold >= 0 && c.InclusionThreshold < 1, "inclusion_threshold must be in [0, 1)")
	check(c.HalfLife > 0, "half_life must be positive")
	check(c.ExcerptLength >= 0, "excerpt_length must be non-negative")
	check(c.Workers >= 0, "workers must be non-negative")
	check(c.Timeout >= 0, "timeout must be non-negative")
	if _, err := c.Location(); err != nil {
		errs = append(errs, fmt.Errorf("timezone: %w", err))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}
