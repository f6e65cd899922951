package semantic

import (
	"math"

	"github.com/poiesic/recall/core"
	"github.com/poiesic/recall/lexical"
)

// Input is one side of a similarity comparison.
type Input struct {
	Terms     []string  // meaningful terms, as produced by lexical.Terms
	Embedding []float32 // optional
}

// TextInput builds an Input from raw text and an optional embedding.
func TextInput(text string, embedding []float32) Input {
	return Input{Terms: lexical.Terms(text), Embedding: embedding}
}

// Scorer computes a similarity between a query and a document.
type Scorer interface {
	Similarity(q, d Input) (float64, error)
	Method() core.SemanticMethod
}

// CosineScorer compares embeddings. Results lie in [-1, 1].
type CosineScorer struct{}

var _ Scorer = CosineScorer{}

// Similarity returns the cosine of the two embeddings. Mismatched
// dimensions yield a *core.DimensionMismatchError.
func (CosineScorer) Similarity(q, d Input) (float64, error) {
	return Cosine(q.Embedding, d.Embedding)
}

// Method reports core.SemanticCosine.
func (CosineScorer) Method() core.SemanticMethod { return core.SemanticCosine }

// TermOverlapScorer compares term sets. Results lie in [0, 1].
type TermOverlapScorer struct{}

var _ Scorer = TermOverlapScorer{}

// Similarity returns the Jaccard overlap of the two term sets. It never
// fails.
func (TermOverlapScorer) Similarity(q, d Input) (float64, error) {
	return TermOverlap(q.Terms, d.Terms), nil
}

// Method reports core.SemanticTermOverlap.
func (TermOverlapScorer) Method() core.SemanticMethod { return core.SemanticTermOverlap }

// Select returns CosineScorer when both sides carry an embedding and
// TermOverlapScorer otherwise.
func Select(q, d Input) Scorer {
	if len(q.Embedding) > 0 && len(d.Embedding) > 0 {
		return CosineScorer{}
	}
	return TermOverlapScorer{}
}

// Similarity scores a pair with the strategy chosen by Select.
func Similarity(q, d Input) (float64, core.SemanticMethod, error) {
	s := Select(q, d)
	sim, err := s.Similarity(q, d)
	return sim, s.Method(), err
}

// Cosine returns the cosine similarity of a and b.
//
// A zero-magnitude vector yields 0. Vectors of different length are a caller
// error and return a *core.DimensionMismatchError.
func Cosine(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, core.NewDimensionMismatch(len(a), len(b))
	}

	var dot, magA, magB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		magA += x * x
		magB += y * y
	}
	if magA == 0 || magB == 0 {
		return 0, nil
	}

	sim := dot / (math.Sqrt(magA) * math.Sqrt(magB))
	if math.IsNaN(sim) {
		return 0, nil
	}
	// Rounding can push identical vectors just past 1.
	return max(-1, min(1, sim)), nil
}

// TermOverlap returns |a ∩ b| / |a ∪ b| over distinct terms.
// Two empty sets have no overlap.
func TermOverlap(a, b []string) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}
	setA := make(map[string]struct{}, len(a))
	for _, t := range a {
		setA[t] = struct{}{}
	}
	setB := make(map[string]struct{}, len(b))
	for _, t := range b {
		setB[t] = struct{}{}
	}

	intersection := 0
	for t := range setA {
		if _, ok := setB[t]; ok {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}
