package reembed

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/poiesic/recall/ai"
	"github.com/poiesic/recall/core"
	"github.com/poiesic/recall/storage"
)

// Config holds configuration for the reembedding operation.
type Config struct {
	// BatchSize is the number of documents to process in each batch
	BatchSize int

	// ReportInterval is how often to report progress (number of documents)
	ReportInterval int

	// MaxRetries is the maximum number of attempts for failed operations
	MaxRetries int

	// RetryDelay is the base delay for exponential backoff
	RetryDelay time.Duration

	// MaxInputChars caps the text sent per document
	MaxInputChars int

	// MissingOnly restricts the run to documents without an embedding
	MissingOnly bool
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		BatchSize:      100,
		ReportInterval: 100,
		MaxRetries:     3,
		RetryDelay:     1 * time.Second,
		MaxInputChars:  ai.DefaultMaxInputChars,
	}
}

// Reembedder orchestrates the reembedding of all documents in a database.
type Reembedder struct {
	config    *Config
	progress  io.Writer
	processor *BatchProcessor
	iterator  *DocumentIterator
	logger    *slog.Logger
}

// NewReembedder creates a new reembedder.
// progress: where to write progress output (typically os.Stderr)
func NewReembedder(repo storage.DocumentRepository, embedder ai.Embedder, config *Config, progress io.Writer) (*Reembedder, error) {
	if repo == nil {
		return nil, fmt.Errorf("document repository required")
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	if config == nil {
		config = DefaultConfig()
	}
	if progress == nil {
		progress = io.Discard
	}

	var filter func(*core.Document) bool
	if config.MissingOnly {
		filter = func(doc *core.Document) bool { return len(doc.Vector) == 0 }
	}

	return &Reembedder{
		config:    config,
		progress:  progress,
		processor: NewBatchProcessor(repo, embedder, config.MaxInputChars, config.MaxRetries, config.RetryDelay),
		iterator:  NewDocumentIterator(repo, config.BatchSize, filter),
		logger:    slog.Default().With("component", "reembedder"),
	}, nil
}

// Run executes the reembedding operation and returns the number of
// documents that received a new embedding.
// Progress is reported to the configured writer.
func (r *Reembedder) Run(ctx context.Context) (int, error) {
	total, err := r.iterator.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count documents: %w", err)
	}
	if total == 0 {
		fmt.Fprintf(r.progress, "No documents to embed (0 documents)\n")
		return 0, nil
	}

	fmt.Fprintf(r.progress, "Starting reembedding of %d documents (batch size: %d)\n",
		total, r.iterator.batchSize)

	tracker := NewProgressTracker(r.progress, total, r.config.ReportInterval)
	tracker.Start()

	embedded := 0
	err = r.iterator.ForEach(ctx, func(docs []*core.Document) error {
		n, err := r.processor.Process(ctx, docs)
		if err != nil {
			return fmt.Errorf("failed to process batch: %w", err)
		}
		embedded += n
		tracker.Increment(len(docs))
		return nil
	})
	if err != nil {
		r.logger.Error("reembedding stopped", "embedded", embedded, "total", total, "err", err)
		return embedded, err
	}

	tracker.Finish()

	elapsed := tracker.Elapsed()
	fmt.Fprintf(r.progress, "Reembedding complete. Embedded %d of %d documents in %v (%.1f documents/sec)\n",
		embedded, total, elapsed.Round(time.Millisecond), float64(total)/elapsed.Seconds())
	return embedded, nil
}
