package badger

import (
	"bytes"
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/recall/core"
	"github.com/poiesic/recall/semantic"
	"github.com/poiesic/recall/storage"
)

// DocumentRepository implements storage.DocumentRepository for BadgerDB.
type DocumentRepository struct {
	backend     *Backend
	logger      *slog.Logger
	ownsBackend bool
}

var _ storage.DocumentRepository = (*DocumentRepository)(nil)

// RepositoryOption configures a DocumentRepository.
type RepositoryOption func(*DocumentRepository)

// WithOwnedBackend makes Close also close the backend.
func WithOwnedBackend() RepositoryOption {
	return func(r *DocumentRepository) {
		r.ownsBackend = true
	}
}

// NewDocumentRepository creates a new DocumentRepository.
func NewDocumentRepository(backend *Backend, opts ...RepositoryOption) (*DocumentRepository, error) {
	if backend == nil {
		return nil, errors.New("backend is required")
	}
	r := &DocumentRepository{
		backend: backend,
		logger:  backend.logger.With("component", "document-repository"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// NewRepository opens a file-backed repository at path.
func NewRepository(path string, opts ...BackendOption) (storage.DocumentRepository, error) {
	backend, err := OpenBackend(path, false, opts...)
	if err != nil {
		return nil, err
	}
	return NewDocumentRepository(backend, WithOwnedBackend())
}

// Close releases the backend if the repository owns it.
func (r *DocumentRepository) Close() error {
	if r.ownsBackend {
		return r.backend.Close()
	}
	return nil
}

// AddDocuments adds one or more documents to storage. Re-adding a document
// with the same ID replaces it and keeps its original InsertedAt.
func (r *DocumentRepository) AddDocuments(ctx context.Context, docs ...*core.Document) ([]*core.Document, error) {
	err := r.backend.WithTxContext(ctx, func(tx *badger.Txn) error {
		now := time.Now().UTC().Truncate(time.Microsecond)
		for _, doc := range docs {
			if doc == nil {
				return fmt.Errorf("%w: document is nil", core.ErrInvalidDocument)
			}
			if doc.Id == 0 {
				doc.Id = core.DocumentID(doc.Title, doc.Body)
			}
			if doc.Timestamp.IsZero() {
				doc.Timestamp = now
			}
			if err := core.ValidateDocument(doc); err != nil {
				return err
			}

			key := makeDocumentKey(doc.Id)
			old, err := readDocument(tx, key)
			if err != nil {
				return err
			}
			if old != nil {
				if err := deleteIndexes(tx, old); err != nil {
					return err
				}
				doc.InsertedAt = old.InsertedAt
				doc.UpdatedAt = now
				// Unchanged text keeps its embedding.
				if len(doc.Vector) == 0 && old.Title == doc.Title && old.Body == doc.Body {
					doc.Vector = old.Vector
				}
			} else {
				doc.InsertedAt = now
				doc.UpdatedAt = now
			}

			if err := writeDocument(tx, doc); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return nil, err
	}

	r.logger.Debug("added documents", "count", len(docs))
	return docs, nil
}

// UpdateDocuments updates existing documents.
func (r *DocumentRepository) UpdateDocuments(ctx context.Context, docs ...*core.Document) ([]*core.Document, error) {
	err := r.backend.WithTxContext(ctx, func(tx *badger.Txn) error {
		for _, doc := range docs {
			if err := core.ValidateDocument(doc); err != nil {
				return err
			}
			key := makeDocumentKey(doc.Id)

			// Read old document to detect index changes
			old, err := readDocument(tx, key)
			if err != nil {
				return err
			}
			if old == nil {
				return fmt.Errorf("%w: document %d", storage.ErrNotFound, doc.Id)
			}

			doc.InsertedAt = old.InsertedAt
			doc.UpdatedAt = time.Now().UTC().Truncate(time.Microsecond)

			if !old.Timestamp.Equal(doc.Timestamp) || old.SourceType != doc.SourceType {
				if err := deleteIndexes(tx, old); err != nil {
					return err
				}
			}
			if err := writeDocument(tx, doc); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return nil, err
	}
	return docs, nil
}

// DeleteDocuments removes documents by their IDs.
func (r *DocumentRepository) DeleteDocuments(ctx context.Context, ids ...core.ID) error {
	return r.backend.WithTxContext(ctx, func(tx *badger.Txn) error {
		for _, id := range ids {
			key := makeDocumentKey(id)

			doc, err := readDocument(tx, key)
			if err != nil {
				return err
			}
			if doc == nil {
				return fmt.Errorf("%w: document %d", storage.ErrNotFound, id)
			}

			if err := deleteIndexes(tx, doc); err != nil {
				return err
			}
			if err := tx.Delete(key); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// GetDocument retrieves a single document by ID.
func (r *DocumentRepository) GetDocument(ctx context.Context, id core.ID) (*core.Document, error) {
	var result *core.Document
	err := r.backend.WithTxContext(ctx, func(tx *badger.Txn) error {
		var err error
		result, err = readDocument(tx, makeDocumentKey(id))
		if err != nil {
			return err
		}
		if result == nil {
			return fmt.Errorf("%w: document %d", storage.ErrNotFound, id)
		}
		return nil
	}, false)
	return result, err
}

// GetDocuments retrieves multiple documents by their IDs.
func (r *DocumentRepository) GetDocuments(ctx context.Context, ids ...core.ID) ([]*core.Document, error) {
	var result []*core.Document
	err := r.backend.WithTxContext(ctx, func(tx *badger.Txn) error {
		for _, id := range ids {
			doc, err := readDocument(tx, makeDocumentKey(id))
			if err != nil {
				return err
			}
			if doc != nil {
				result = append(result, doc)
			}
		}
		return nil
	}, false)
	return result, err
}

// GetDocumentsByDateRange retrieves documents with start <= Timestamp <= end.
func (r *DocumentRepository) GetDocumentsByDateRange(ctx context.Context, start, end time.Time) ([]*core.Document, error) {
	if end.Before(start) {
		return nil, fmt.Errorf("%w: end %s is before start %s", storage.ErrInvalidQuery, end, start)
	}

	var results []*core.Document
	err := r.backend.WithTxContext(ctx, func(tx *badger.Txn) error {
		startKey := makePartialDateKey(start)
		// Keys are stored at microsecond precision; the first key past end
		// starts one microsecond later.
		endKey := makePartialDateKey(time.UnixMicro(end.UnixMicro() + 1))
		iter := tx.NewIterator(badger.DefaultIteratorOptions)
		defer iter.Close()

		for iter.Seek(startKey); iter.Valid(); iter.Next() {
			if bytes.Compare(iter.Item().Key(), endKey) >= 0 {
				break
			}
			doc, err := r.resolveIndexEntry(tx, iter.Item())
			if err != nil {
				return err
			}
			if doc != nil {
				results = append(results, doc)
			}
		}
		return nil
	}, false)

	return results, err
}

// GetDocumentsBySourceType retrieves every document of the given source types.
func (r *DocumentRepository) GetDocumentsBySourceType(ctx context.Context, types ...core.SourceType) ([]*core.Document, error) {
	var results []*core.Document
	err := r.backend.WithTxContext(ctx, func(tx *badger.Txn) error {
		for _, st := range types {
			if err := core.ValidateSourceType(st); err != nil {
				return err
			}
			opts := badger.DefaultIteratorOptions
			opts.Prefix = makePartialSourceKey(st)
			iter := tx.NewIterator(opts)
			for iter.Rewind(); iter.Valid(); iter.Next() {
				doc, err := r.resolveIndexEntry(tx, iter.Item())
				if err != nil {
					iter.Close()
					return err
				}
				if doc != nil {
					results = append(results, doc)
				}
			}
			iter.Close()
		}
		return nil
	}, false)
	return results, err
}

// GetRecentDocuments retrieves the N most recent documents, newest first.
func (r *DocumentRepository) GetRecentDocuments(ctx context.Context, limit int) ([]*core.Document, error) {
	var results []*core.Document
	err := r.backend.WithTxContext(ctx, func(tx *badger.Txn) error {
		// Use reverse iterator to get most recent documents first
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		iter := tx.NewIterator(opts)
		defer iter.Close()

		startKey := makePartialDateKey(time.Date(9999, 12, 31, 23, 59, 59, 999999999, time.UTC))
		prefix := []byte(documentDatePrefix + ":")

		for iter.Seek(startKey); iter.Valid(); iter.Next() {
			if limit > 0 && len(results) >= limit {
				break
			}
			if !bytes.HasPrefix(iter.Item().Key(), prefix) {
				break
			}
			doc, err := r.resolveIndexEntry(tx, iter.Item())
			if err != nil {
				return err
			}
			if doc != nil {
				results = append(results, doc)
			}
		}
		return nil
	}, false)

	return results, err
}

// FindSimilar scans stored embeddings for documents close to vector.
func (r *DocumentRepository) FindSimilar(ctx context.Context, vector []float32, minSimilarity float64, limit int) ([]*storage.SimilarDocument, error) {
	if len(vector) == 0 {
		return nil, nil
	}

	var results []*storage.SimilarDocument
	err := r.ForEachDocument(ctx, func(doc *core.Document) error {
		if len(doc.Vector) != len(vector) {
			return nil
		}
		sim, err := semantic.Cosine(vector, doc.Vector)
		if err != nil {
			return err
		}
		if sim >= minSimilarity {
			results = append(results, &storage.SimilarDocument{Document: doc, Similarity: sim})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slices.SortFunc(results, func(a, b *storage.SimilarDocument) int {
		if c := cmp.Compare(b.Similarity, a.Similarity); c != 0 {
			return c
		}
		return cmp.Compare(a.Document.Id, b.Document.Id)
	})

	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// ForEachDocument calls fn for every stored document.
func (r *DocumentRepository) ForEachDocument(ctx context.Context, fn func(*core.Document) error) error {
	return r.backend.WithTxContext(ctx, func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(documentPrefix + ":")
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			var doc *core.Document
			err := iter.Item().Value(func(val []byte) error {
				var err error
				doc, err = storage.UnmarshalDocument(val)
				return err
			})
			if err != nil {
				return err
			}
			if err := fn(doc); err != nil {
				return err
			}
		}
		return nil
	}, false)
}

// Helper methods

// resolveIndexEntry follows an index entry to the document it references.
func (r *DocumentRepository) resolveIndexEntry(tx *badger.Txn, item *badger.Item) (*core.Document, error) {
	var id core.ID
	if err := item.Value(func(val []byte) error {
		var err error
		id, err = storage.UnmarshalID(val)
		return err
	}); err != nil {
		return nil, err
	}
	doc, err := readDocument(tx, makeDocumentKey(id))
	if err != nil {
		return nil, err
	}
	if doc == nil {
		r.logger.Warn("index entry references missing document", "id", id)
	}
	return doc, nil
}

// readDocument reads a document from the transaction. A missing key yields nil.
func readDocument(tx *badger.Txn, key []byte) (*core.Document, error) {
	item, err := tx.Get(key)
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, err
	}

	var doc *core.Document
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		doc, unmarshalErr = storage.UnmarshalDocument(val)
		return unmarshalErr
	})
	return doc, err
}

// writeDocument stores the primary record and its index entries.
func writeDocument(tx *badger.Txn, doc *core.Document) error {
	if err := tx.Set(makeDocumentKey(doc.Id), storage.MarshalDocument(doc)); err != nil {
		return err
	}
	idValue := storage.MarshalID(doc.Id)
	if err := tx.Set(makeDateKey(doc.Timestamp, doc.Id), idValue); err != nil {
		return err
	}
	return tx.Set(makeSourceKey(doc.SourceType, doc.Id), idValue)
}

// deleteIndexes removes the index entries for a stored document.
func deleteIndexes(tx *badger.Txn, doc *core.Document) error {
	if err := tx.Delete(makeDateKey(doc.Timestamp, doc.Id)); err != nil {
		return err
	}
	return tx.Delete(makeSourceKey(doc.SourceType, doc.Id))
}
