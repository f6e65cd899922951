package openai

import (
	"context"
	"log/slog"

	"github.com/poiesic/recall/ai"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/openai"
)

// Embedder implements ai.Embedder using OpenAI-compatible embedding APIs.
type Embedder struct {
	embedder      embeddings.Embedder
	maxInputChars int
	logger        *slog.Logger
}

// newEmbedder is an internal constructor that returns the concrete type.
// Used by Provider to manage the instance.
func newEmbedder(config *ai.Config) (*Embedder, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	client, err := openai.New(
		openai.WithBaseURL(config.EmbeddingHost),
		openai.WithToken(config.APIToken),
		openai.WithEmbeddingModel(config.EmbeddingModel),
	)
	if err != nil {
		return nil, err
	}

	// Wrap in langchaingo embedder
	embedder, err := embeddings.NewEmbedder(client, embeddings.WithStripNewLines(true))
	if err != nil {
		return nil, err
	}

	return &Embedder{
		embedder:      embedder,
		maxInputChars: config.MaxInputChars,
		logger:        slog.Default().With("component", "openai-embedder"),
	}, nil
}

// NewEmbedder creates a new embedder using the provided configuration.
//
// Returns ai.Embedder interface to enforce abstraction.
func NewEmbedder(config *ai.Config) (ai.Embedder, error) {
	return newEmbedder(config)
}

// EmbedText generates a vector embedding for a single text string.
// Blank text yields a nil vector without calling the service.
func (e *Embedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.EmbedTexts(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedTexts generates vector embeddings for multiple text strings in a batch.
// Each text is trimmed and truncated to the configured input limit; blank
// texts get a nil vector and are not sent.
func (e *Embedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	result := make([][]float32, len(texts))

	var (
		batch   []string
		indexes []int
	)
	for i, text := range texts {
		prepared := ai.PrepareText(text, e.maxInputChars)
		if prepared == "" {
			continue
		}
		batch = append(batch, prepared)
		indexes = append(indexes, i)
	}
	if len(batch) == 0 {
		e.logger.Debug("no embeddable text in batch", "count", len(texts))
		return result, nil
	}

	e.logger.Debug("generating embeddings for texts", "count", len(batch))
	vectors, err := e.embedder.EmbedDocuments(ctx, batch)
	if err != nil {
		e.logger.Error("failed to generate embeddings", "count", len(batch), "err", err)
		return nil, err
	}
	if len(vectors) != len(batch) {
		e.logger.Warn("embedder returned unexpected result count", "want", len(batch), "got", len(vectors))
		return nil, ErrUnexpectedResponse
	}

	for j, i := range indexes {
		result[i] = vectors[j]
	}
	return result, nil
}
