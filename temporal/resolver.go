package temporal

import (
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/poiesic/recall/core"
)

const (
	monthPattern  = `(january|february|march|april|may|june|july|august|september|october|november|december|jan|feb|mar|apr|jun|jul|aug|sept|sep|oct|nov|dec)`
	countPattern  = `(\d{1,4}|an|a|one|two|three|four|five|six|seven|eight|nine|ten|eleven|twelve)`
	unitPattern   = `(day|week|month|year)s?`
	anchorPattern = `(?:the|my|our|that|this|his|her|their|your)`
)

// Years outside [minYear, now+1] are read as plain numbers.
const minYear = 1900

type resolveFunc func(m []string, now time.Time) (start, end time.Time, ok bool)

type rule struct {
	name    string
	pattern *regexp.Regexp
	resolve resolveFunc // nil marks a context-dependent rule
}

// Rules in priority order: absolute dates, named relative periods, generic
// offsets, then context-dependent phrases. The first rule that matches wins.
var rules = []rule{
	{name: "month_year", pattern: regexp.MustCompile(`(?i)\bin\s+` + monthPattern + `\s+(\d{4})\b`), resolve: resolveMonthYear},
	{name: "month_day", pattern: regexp.MustCompile(`(?i)\bon\s+` + monthPattern + `\s+(\d{1,2})(?:st|nd|rd|th)?\b`), resolve: resolveMonthDay},
	{name: "month", pattern: regexp.MustCompile(`(?i)\bin\s+` + monthPattern + `\b`), resolve: resolveMonth},
	{name: "year", pattern: regexp.MustCompile(`(?i)\bin\s+(\d{4})\b`), resolve: resolveYear},

	{name: "today", pattern: regexp.MustCompile(`(?i)\btoday\b`), resolve: resolveToday},
	{name: "yesterday", pattern: regexp.MustCompile(`(?i)\byesterday\b`), resolve: resolveYesterday},
	{name: "named_period", pattern: regexp.MustCompile(`(?i)\b(this|last)\s+(week|month|year)\b`), resolve: resolveNamedPeriod},

	{name: "trailing_offset", pattern: regexp.MustCompile(`(?i)\b(?:last|past)\s+(?:` + countPattern + `\s+)?` + unitPattern + `\b`), resolve: resolveTrailing},
	{name: "ago_offset", pattern: regexp.MustCompile(`(?i)\b` + countPattern + `\s+` + unitPattern + `\s+ago\b`), resolve: resolveAgo},

	{name: "context", pattern: regexp.MustCompile(`(?i)\b(?:before|after|during|since|until)\s+(?:` + anchorPattern + `\s+)?[a-z]\w*`)},
}

// Resolver converts time phrases in query text into time ranges.
// A Resolver is immutable and safe for concurrent use.
type Resolver struct {
	location *time.Location
	logger   *slog.Logger
}

// Option configures a Resolver.
type Option func(*Resolver) error

// WithLocation sets the timezone calendar periods are computed in.
// Default is UTC.
func WithLocation(loc *time.Location) Option {
	return func(r *Resolver) error {
		if loc == nil {
			return ErrNilLocation
		}
		r.location = loc
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) error {
		if logger == nil {
			logger = slog.Default()
		}
		r.logger = logger
		return nil
	}
}

// NewResolver creates a Resolver.
func NewResolver(opts ...Option) (*Resolver, error) {
	r := &Resolver{
		location: time.UTC,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}
	r.logger = r.logger.With("component", "temporal-resolver")
	return r, nil
}

var defaultResolver = &Resolver{location: time.UTC, logger: slog.Default()}

// Resolve resolves text against now in UTC.
func Resolve(text string, now time.Time) core.TimeRange {
	return defaultResolver.Resolve(text, now)
}

// Resolve finds the highest-priority time phrase in text and converts it to
// a range relative to now. Text without a recognized phrase yields RangeNone.
func (r *Resolver) Resolve(text string, now time.Time) core.TimeRange {
	local := now.In(r.location)

	for _, rl := range rules {
		loc := rl.pattern.FindStringSubmatchIndex(text)
		if loc == nil {
			continue
		}
		expr := text[loc[0]:loc[1]]

		if rl.resolve == nil {
			r.logger.Debug("temporal expression needs external context", "expression", expr)
			return core.TimeRange{Kind: core.RangeUnresolvedContext, Expression: expr, Rule: rl.name}
		}

		start, end, ok := rl.resolve(submatches(text, loc), local)
		if !ok {
			r.logger.Debug("temporal expression did not resolve", "expression", expr, "rule", rl.name)
			continue
		}
		return core.TimeRange{
			Kind:       core.RangeResolved,
			Start:      start.UTC(),
			End:        end.UTC(),
			Expression: expr,
			Rule:       rl.name,
		}
	}
	return core.TimeRange{Kind: core.RangeNone}
}

// StripExpression removes a resolved range's phrase from text so that
// content matching sees only the topical words.
func StripExpression(text string, rng core.TimeRange) string {
	if !rng.IsResolved() || rng.Expression == "" {
		return text
	}
	idx := strings.Index(text, rng.Expression)
	if idx < 0 {
		return text
	}
	stripped := text[:idx] + " " + text[idx+len(rng.Expression):]
	return strings.Join(strings.Fields(stripped), " ")
}

func submatches(text string, loc []int) []string {
	m := make([]string, len(loc)/2)
	for i := range m {
		if loc[2*i] >= 0 {
			m[i] = strings.ToLower(text[loc[2*i]:loc[2*i+1]])
		}
	}
	return m
}

func parseYear(s string, now time.Time) (int, bool) {
	year, err := strconv.Atoi(s)
	if err != nil || year < minYear || year > now.Year()+1 {
		return 0, false
	}
	return year, true
}

// parseCount reads a count; an omitted count ("past week") is one.
func parseCount(s string) (int, bool) {
	if s == "" {
		return 1, true
	}
	if n, ok := numberWords[s]; ok {
		return n, true
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

func resolveMonthYear(m []string, now time.Time) (time.Time, time.Time, bool) {
	month := monthNames[m[1]]
	year, ok := parseYear(m[2], now)
	if !ok {
		return time.Time{}, time.Time{}, false
	}
	start, end := period(time.Date(year, month, 1, 0, 0, 0, 0, now.Location()), unitMonth)
	return start, end, true
}

// resolveMonthDay picks the most recent occurrence of the day that does not
// start after now, skipping years where the date does not exist.
func resolveMonthDay(m []string, now time.Time) (time.Time, time.Time, bool) {
	month := monthNames[m[1]]
	day, err := strconv.Atoi(m[2])
	if err != nil || day < 1 || day > 31 {
		return time.Time{}, time.Time{}, false
	}
	for year := now.Year(); year > now.Year()-8; year-- {
		d := time.Date(year, month, day, 0, 0, 0, 0, now.Location())
		if d.Month() != month || d.After(now) {
			continue
		}
		start, end := period(d, unitDay)
		return start, end, true
	}
	return time.Time{}, time.Time{}, false
}

// resolveMonth picks the most recent occurrence of the month that has begun.
func resolveMonth(m []string, now time.Time) (time.Time, time.Time, bool) {
	month := monthNames[m[1]]
	year := now.Year()
	if month > now.Month() {
		year--
	}
	start, end := period(time.Date(year, month, 1, 0, 0, 0, 0, now.Location()), unitMonth)
	return start, end, true
}

func resolveYear(m []string, now time.Time) (time.Time, time.Time, bool) {
	year, ok := parseYear(m[1], now)
	if !ok {
		return time.Time{}, time.Time{}, false
	}
	start, end := period(time.Date(year, time.January, 1, 0, 0, 0, 0, now.Location()), unitYear)
	return start, end, true
}

func resolveToday(_ []string, now time.Time) (time.Time, time.Time, bool) {
	return startOfDay(now), now, true
}

func resolveYesterday(_ []string, now time.Time) (time.Time, time.Time, bool) {
	start, end := period(now.AddDate(0, 0, -1), unitDay)
	return start, end, true
}

// resolveNamedPeriod handles "this" (period start up to now) and "last"
// (the whole previous period).
func resolveNamedPeriod(m []string, now time.Time) (time.Time, time.Time, bool) {
	unit := m[2]
	if m[1] == "this" {
		start, _ := period(now, unit)
		return start, now, true
	}
	start, end := period(shift(now, unit, 1), unit)
	return start, end, true
}

func resolveTrailing(m []string, now time.Time) (time.Time, time.Time, bool) {
	n, ok := parseCount(m[1])
	if !ok {
		return time.Time{}, time.Time{}, false
	}
	return shift(now, m[2], n), now, true
}

func resolveAgo(m []string, now time.Time) (time.Time, time.Time, bool) {
	n, ok := parseCount(m[1])
	if !ok {
		return time.Time{}, time.Time{}, false
	}
	start, end := period(shift(now, m[2], n), m[2])
	return start, end, true
}
