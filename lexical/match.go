package lexical

import (
	"strings"
	"unicode/utf8"
)

// MinPhraseRunes is the shortest normalized query that can count as an
// exact phrase match. Shorter queries ("it", "ai ml") match too much
// incidental text.
const MinPhraseRunes = 7

// Score is the lexical signal for one document.
type Score struct {
	ExactPhrase  bool
	Coverage     float64 // matched / total meaningful terms, in [0, 1]
	MatchedTerms int
	TotalTerms   int
}

// Query is a pre-processed query, reusable across documents.
type Query struct {
	phrase string
	terms  []string
}

// NewQuery prepares text for matching.
func NewQuery(text string) Query {
	return Query{
		phrase: normalizePhrase(text),
		terms:  Terms(text),
	}
}

// Phrase returns the normalized query string used for exact matching.
func (q Query) Phrase() string { return q.phrase }

// Terms returns the meaningful query terms.
func (q Query) Terms() []string { return q.terms }

// Match scores doc against the query.
//
// An empty document has zero coverage and no exact phrase. A query with no
// meaningful terms has full coverage. Terms match as substrings of the
// lower-cased document, so "algorithm" matches "algorithms".
func (q Query) Match(doc string) Score {
	s := Score{TotalTerms: len(q.terms)}
	if strings.TrimSpace(doc) == "" {
		return s
	}

	lowered := normalizePhrase(doc)
	if utf8.RuneCountInString(q.phrase) >= MinPhraseRunes && strings.Contains(lowered, q.phrase) {
		s.ExactPhrase = true
	}

	if len(q.terms) == 0 {
		s.Coverage = 1.0
		return s
	}
	for _, term := range q.terms {
		if strings.Contains(lowered, term) {
			s.MatchedTerms++
		}
	}
	s.Coverage = float64(s.MatchedTerms) / float64(len(q.terms))
	return s
}

// Match is a convenience for scoring a single query/document pair.
func Match(query, doc string) Score {
	return NewQuery(query).Match(doc)
}
