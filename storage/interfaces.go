package storage

import (
	"context"
	"time"

	"github.com/poiesic/recall/core"
)

// SimilarDocument is a document paired with its embedding similarity.
type SimilarDocument struct {
	Document   *core.Document
	Similarity float64
}

// DocumentRepository provides operations for managing documents.
// Implementations must be thread-safe and support concurrent access.
type DocumentRepository interface {
	// AddDocuments adds one or more documents to storage.
	// For documents with ID=0, derives the ID from title and body.
	// Sets InsertedAt timestamp if not already set.
	// Returns the documents with IDs and timestamps populated.
	AddDocuments(ctx context.Context, docs ...*core.Document) ([]*core.Document, error)

	// UpdateDocuments updates existing documents.
	// Updates the UpdatedAt timestamp automatically.
	// Returns ErrNotFound if any document doesn't exist.
	UpdateDocuments(ctx context.Context, docs ...*core.Document) ([]*core.Document, error)

	// DeleteDocuments removes documents by their IDs.
	// Also removes associated indices.
	// Returns ErrNotFound if any document doesn't exist.
	DeleteDocuments(ctx context.Context, ids ...core.ID) error

	// GetDocument retrieves a single document by ID.
	// Returns ErrNotFound if the document doesn't exist.
	GetDocument(ctx context.Context, id core.ID) (*core.Document, error)

	// GetDocuments retrieves multiple documents by their IDs.
	// Returns only the documents that exist (no error for missing documents).
	GetDocuments(ctx context.Context, ids ...core.ID) ([]*core.Document, error)

	// GetDocumentsByDateRange retrieves documents within a time range.
	// Both bounds are inclusive. Results are ordered by timestamp.
	GetDocumentsByDateRange(ctx context.Context, start, end time.Time) ([]*core.Document, error)

	// GetDocumentsBySourceType retrieves all documents of the given source types.
	GetDocumentsBySourceType(ctx context.Context, types ...core.SourceType) ([]*core.Document, error)

	// GetRecentDocuments retrieves the N most recent documents, ordered by timestamp descending.
	// A limit of zero returns every document.
	GetRecentDocuments(ctx context.Context, limit int) ([]*core.Document, error)

	// FindSimilar returns documents whose embedding has cosine similarity
	// >= minSimilarity with vector, highest first, up to limit results.
	// Documents without embeddings or with a different dimension are skipped.
	FindSimilar(ctx context.Context, vector []float32, minSimilarity float64, limit int) ([]*SimilarDocument, error)

	// ForEachDocument calls fn for every stored document in key order.
	// Iteration stops at the first error returned by fn.
	ForEachDocument(ctx context.Context, fn func(*core.Document) error) error

	// Close closes the storage backend and releases resources.
	Close() error
}
