package core

import (
	"fmt"
	"slices"
	"strings"
)

// ValidateDocument checks the fields the ranking engine depends on.
// Empty titles and bodies are allowed; they score as degenerate input.
func ValidateDocument(doc *Document) error {
	if doc == nil {
		return fmt.Errorf("%w: document is nil", ErrInvalidDocument)
	}

	if doc.Id == 0 {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, ErrMissingID)
	}

	if doc.Timestamp.IsZero() {
		return fmt.Errorf("%w: %w (id %d)", ErrInvalidDocument, ErrMissingTimestamp, doc.Id)
	}

	if err := ValidateSourceType(doc.SourceType); err != nil {
		return fmt.Errorf("%w: %w (id %d)", ErrInvalidDocument, err, doc.Id)
	}

	return nil
}

// ValidateSourceType checks that st is one of SourceTypes.
func ValidateSourceType(st SourceType) error {
	if !slices.Contains(SourceTypes, st) {
		return fmt.Errorf("%w: %q", ErrInvalidSourceType, string(st))
	}
	return nil
}

// ParseSourceType converts a user-supplied name to a SourceType.
func ParseSourceType(s string) (SourceType, error) {
	st := SourceType(strings.ToLower(strings.TrimSpace(s)))
	if err := ValidateSourceType(st); err != nil {
		return "", err
	}
	return st, nil
}

// ValidateTimeRange checks that a resolved range is well ordered.
func ValidateTimeRange(r TimeRange) error {
	if r.Kind != RangeResolved {
		return nil
	}
	if r.Start.After(r.End) {
		return fmt.Errorf("%w: start %s is after end %s", ErrInvalidTimeRange,
			r.Start.Format("2006-01-02T15:04:05Z07:00"), r.End.Format("2006-01-02T15:04:05Z07:00"))
	}
	return nil
}

// ValidateQuery checks a query's filters. Empty text is valid.
func ValidateQuery(q *Query) error {
	if q == nil {
		return fmt.Errorf("%w: query is nil", ErrInvalidQuery)
	}
	if q.DateFilter != nil {
		if err := ValidateTimeRange(*q.DateFilter); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidQuery, err)
		}
	}
	for _, st := range q.SourceTypes {
		if err := ValidateSourceType(st); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidQuery, err)
		}
	}
	if q.Limit < 0 {
		return fmt.Errorf("%w: negative limit %d", ErrInvalidQuery, q.Limit)
	}
	return nil
}

// ValidateEmbeddingDimensions fails when a document embedding cannot be
// compared with the query embedding. Missing embeddings on either side are
// not an error.
func ValidateEmbeddingDimensions(query []float32, doc *Document) error {
	if len(query) == 0 || len(doc.Vector) == 0 {
		return nil
	}
	if len(query) != len(doc.Vector) {
		return fmt.Errorf("%w: document %d: %w", ErrInvalidDocument, doc.Id,
			NewDimensionMismatch(len(query), len(doc.Vector)))
	}
	return nil
}
