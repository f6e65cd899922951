// Package rank fuses lexical, semantic and temporal signals into a single
// confidence per candidate document and returns the ranked, thresholded
// result list.
//
// Points are awarded per signal (exact phrase, term coverage with a penalty
// for partial coverage, banded semantic similarity), scaled down when matches
// come only from the title, and normalized into a content relevance in
// [0, 1]. Temporal relevance then acts as a small multiplicative boost.
// Candidates are scored in parallel on a worker pool after the query's time
// range has been resolved once.
//
// Basic usage:
//
//	r, err := rank.NewRanker(rank.WithConfig(cfg))
//	if err != nil {
//	    return err
//	}
//	defer r.Release()
//
//	results, err := r.Rank(ctx, &core.Query{Text: "machine learning last week"}, docs, time.Now())
package rank
