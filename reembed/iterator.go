package reembed

import (
	"context"

	"github.com/poiesic/recall/core"
	"github.com/poiesic/recall/storage"
)

const (
	// DefaultBatchSize is the default number of documents processed per batch
	DefaultBatchSize = 100
)

// DocumentIterator streams stored documents in batches.
type DocumentIterator struct {
	repo      storage.DocumentRepository
	batchSize int
	filter    func(*core.Document) bool
}

// NewDocumentIterator creates a new document iterator.
// batchSize: number of documents per batch; non-positive selects DefaultBatchSize
// filter: optional predicate; documents it rejects are skipped
func NewDocumentIterator(repo storage.DocumentRepository, batchSize int, filter func(*core.Document) bool) *DocumentIterator {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &DocumentIterator{
		repo:      repo,
		batchSize: batchSize,
		filter:    filter,
	}
}

// ForEach calls fn for each batch of documents.
// Iteration stops on first error from fn or when all documents are processed.
// Context cancellation is checked between batches.
//
// fn runs after the read transaction that produced the batch has finished,
// so it may write to the repository.
func (it *DocumentIterator) ForEach(ctx context.Context, fn func([]*core.Document) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var all []*core.Document
	err := it.repo.ForEachDocument(ctx, func(doc *core.Document) error {
		if it.filter == nil || it.filter(doc) {
			all = append(all, doc)
		}
		return nil
	})
	if err != nil {
		return err
	}

	for i := 0; i < len(all); i += it.batchSize {
		end := min(i+it.batchSize, len(all))
		if err := fn(all[i:end]); err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
	}
	return nil
}

// Count returns the number of documents ForEach would visit.
func (it *DocumentIterator) Count(ctx context.Context) (int, error) {
	n := 0
	err := it.repo.ForEachDocument(ctx, func(doc *core.Document) error {
		if it.filter == nil || it.filter(doc) {
			n++
		}
		return nil
	})
	return n, err
}
