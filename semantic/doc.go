// Package semantic measures meaning-level similarity between a query and a
// document.
//
// Two strategies implement Scorer: CosineScorer compares embedding vectors,
// and TermOverlapScorer falls back to a Jaccard ratio over meaningful terms
// when either side has no embedding. Select picks the strategy per pair.
package semantic
