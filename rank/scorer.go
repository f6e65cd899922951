package rank

import (
	"github.com/poiesic/recall/core"
	"github.com/poiesic/recall/lexical"
	"github.com/poiesic/recall/semantic"
	"github.com/poiesic/recall/temporal"
)

// scorer holds the per-query state shared read-only by scoring tasks.
type scorer struct {
	cfg      *Config
	lexQuery lexical.Query
	semQuery semantic.Input
	rng      core.TimeRange
}

func (s *scorer) score(doc *core.Document) (*core.ScoredResult, error) {
	full := doc.Title + "\n" + doc.Body

	body := s.lexQuery.Match(doc.Body)
	title := s.lexQuery.Match(doc.Title)
	combined := s.lexQuery.Match(full)

	exact := body.ExactPhrase || title.ExactPhrase
	titleOnly := !body.ExactPhrase && body.MatchedTerms == 0 &&
		(title.ExactPhrase || combined.MatchedTerms > 0)

	sim, method, err := semantic.Similarity(s.semQuery, semantic.Input{
		Terms:     lexical.Terms(full),
		Embedding: doc.Vector,
	})
	if err != nil {
		return nil, err
	}

	temporalScore := temporal.Score(doc.Timestamp, s.rng, s.cfg.HalfLife)
	points, relevance := s.cfg.ContentPoints(exact, combined.Coverage, sim, titleOnly)

	return &core.ScoredResult{
		Document:         doc,
		Excerpt:          excerpt(doc.Title, doc.Body, s.cfg.ExcerptLength),
		Confidence:       s.cfg.Confidence(relevance, temporalScore),
		ContentRelevance: relevance,
		Signals: core.Signals{
			ExactPhrase:    exact,
			Coverage:       combined.Coverage,
			MatchedTerms:   combined.MatchedTerms,
			TotalTerms:     combined.TotalTerms,
			Semantic:       sim,
			SemanticMethod: method,
			Temporal:       temporalScore,
			TitleOnly:      titleOnly,
			Points:         points,
		},
	}, nil
}
