package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/poiesic/recall/core"
)

var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	time.DateOnly,
}

// parseTime accepts RFC 3339 or a local date with optional minutes. An
// empty string yields the zero time.
func parseTime(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid time %q: use RFC 3339 or YYYY-MM-DD", s)
}

// dateFilter turns --after/--before into an inclusive range. A date-only
// --before covers that whole day. Nil means no filter.
func dateFilter(after, before string, loc *time.Location) (*core.TimeRange, error) {
	if after == "" && before == "" {
		return nil, nil
	}

	start := time.Unix(0, 0)
	if after != "" {
		t, err := parseTime(after, loc)
		if err != nil {
			return nil, err
		}
		start = t
	}

	end := time.Date(9999, 12, 31, 23, 59, 59, 0, time.UTC)
	if before != "" {
		t, err := parseTime(before, loc)
		if err != nil {
			return nil, err
		}
		end = t
		if _, err := time.ParseInLocation(time.DateOnly, strings.TrimSpace(before), loc); err == nil {
			end = t.AddDate(0, 0, 1).Add(-time.Nanosecond)
		}
	}

	rng := core.NewTimeRange(start, end)
	if err := core.ValidateTimeRange(rng); err != nil {
		return nil, err
	}
	return &rng, nil
}

// parseMetadata reads key=value pairs.
func parseMetadata(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	meta := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid metadata %q: want key=value", pair)
		}
		meta[key] = strings.TrimSpace(value)
	}
	return meta, nil
}

func parseSourceTypes(names []string) ([]core.SourceType, error) {
	types := make([]core.SourceType, 0, len(names))
	for _, name := range names {
		st, err := core.ParseSourceType(name)
		if err != nil {
			return nil, err
		}
		types = append(types, st)
	}
	return types, nil
}
