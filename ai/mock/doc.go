// Package mock provides test double implementations of AI service interfaces.
//
// MockEmbedder produces deterministic unit vectors derived from the input
// text, so identical text always embeds identically and tests run without
// an embedding service. Behavior can be overridden per test:
//
//	embedder := mock.NewMockEmbedder()
//	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
//	    return nil, errors.New("service unavailable")
//	}
//
//	provider := mock.NewMockProviderWithEmbedder(embedder)
//	count := embedder.CallCount()
package mock
