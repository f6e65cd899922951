package reembed

import (
	"context"
	"fmt"
	"time"

	"github.com/poiesic/recall/ai"
	"github.com/poiesic/recall/core"
	"github.com/poiesic/recall/storage"
)

// BatchProcessor handles embedding generation for batches of documents.
type BatchProcessor struct {
	repo           storage.DocumentRepository
	embedder       ai.Embedder
	maxInputChars  int
	maxRetries     int
	retryBaseDelay time.Duration
}

// NewBatchProcessor creates a new batch processor.
// maxRetries: maximum number of attempts for embedding API calls
// retryBaseDelay: base delay for exponential backoff
func NewBatchProcessor(repo storage.DocumentRepository, embedder ai.Embedder, maxInputChars, maxRetries int, retryBaseDelay time.Duration) *BatchProcessor {
	if maxInputChars <= 0 {
		maxInputChars = ai.DefaultMaxInputChars
	}
	return &BatchProcessor{
		repo:           repo,
		embedder:       embedder,
		maxInputChars:  maxInputChars,
		maxRetries:     maxRetries,
		retryBaseDelay: retryBaseDelay,
	}
}

// Process generates embeddings for a batch of documents and updates them in
// the database. Vectors are normalized to unit length. Blank documents are
// left untouched. It returns the number of documents updated.
func (bp *BatchProcessor) Process(ctx context.Context, docs []*core.Document) (int, error) {
	var (
		pending []*core.Document
		texts   []string
	)
	for _, doc := range docs {
		text := ai.PrepareText(ai.DocumentText(doc.Title, doc.Body), bp.maxInputChars)
		if text == "" {
			continue
		}
		pending = append(pending, doc)
		texts = append(texts, text)
	}
	if len(pending) == 0 {
		return 0, nil
	}

	var embeddings [][]float32
	err := RetryWithBackoff(ctx, func() error {
		var err error
		embeddings, err = bp.embedder.EmbedTexts(ctx, texts)
		return err
	}, bp.maxRetries, bp.retryBaseDelay)
	if err != nil {
		return 0, fmt.Errorf("failed to generate embeddings after %d attempts: %w", bp.maxRetries, err)
	}

	if len(embeddings) != len(pending) {
		return 0, fmt.Errorf("embedding count mismatch: expected %d, got %d", len(pending), len(embeddings))
	}

	for i := range pending {
		pending[i].Vector = NormalizeVector(embeddings[i])
	}

	if _, err := bp.repo.UpdateDocuments(ctx, pending...); err != nil {
		return 0, fmt.Errorf("failed to update documents: %w", err)
	}
	return len(pending), nil
}
