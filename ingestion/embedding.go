package ingestion

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/poiesic/recall/ai"
	"github.com/poiesic/recall/core"
	"github.com/poiesic/recall/storage"
)

type embeddingProcessor struct {
	repository    storage.DocumentRepository
	embedder      ai.Embedder
	maxInputChars int
	logger        *slog.Logger
}

var _ processor = (*embeddingProcessor)(nil)

func newEmbeddingProcessor(repository storage.DocumentRepository, embedder ai.Embedder, maxInputChars int, logger *slog.Logger) (processor, error) {
	if repository == nil {
		return nil, ErrRepositoryRequired
	}
	if embedder == nil {
		return nil, fmt.Errorf("embedder required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &embeddingProcessor{
		repository:    repository,
		embedder:      embedder,
		maxInputChars: maxInputChars,
		logger:        logger.With("processor", "embeddings"),
	}, nil
}

func (ep *embeddingProcessor) process(ctx context.Context, ids ...core.ID) error {
	ep.logger.Info("processing documents for embeddings", "documents", len(ids))

	slices.Sort(ids)

	docs, err := ep.repository.GetDocuments(ctx, ids...)
	if err != nil {
		ep.logger.Error("error retrieving documents", "err", err)
		return err
	}

	// Blank documents have nothing to embed.
	var (
		pending []*core.Document
		texts   []string
	)
	for _, doc := range docs {
		text := ai.PrepareText(ai.DocumentText(doc.Title, doc.Body), ep.maxInputChars)
		if text == "" {
			ep.logger.Debug("skipping empty document", "id", doc.Id)
			continue
		}
		pending = append(pending, doc)
		texts = append(texts, text)
	}
	if len(pending) == 0 {
		return nil
	}

	ep.logger.Debug("generating embeddings for documents", "documents", len(texts))
	embeddings, err := ep.embedder.EmbedTexts(ctx, texts)
	if err != nil {
		ep.logger.Error("error generating embeddings", "err", err)
		return err
	}

	if len(embeddings) != len(pending) {
		return fmt.Errorf("embedding result mismatch. expected %d, received %d", len(pending), len(embeddings))
	}

	updates := make([]*core.Document, 0, len(pending))
	for i, doc := range pending {
		if len(embeddings[i]) == 0 {
			continue
		}
		doc.Vector = embeddings[i]
		updates = append(updates, doc)
	}
	if len(updates) == 0 {
		return nil
	}

	_, err = ep.repository.UpdateDocuments(ctx, updates...)
	return err
}
