// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package ingestion

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"runtime"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/recall/ai"
	"github.com/poiesic/recall/core"
	"github.com/poiesic/recall/storage"
)

// DefaultBatchSize is the number of documents sent per embedding request.
const DefaultBatchSize = 32

type Pipeline struct {
	repository    storage.DocumentRepository
	embeddingPool *ants.Pool
	embeddingProc processor
	batchSize     int
	maxInputChars int
	pending       sync.WaitGroup
	logger        *slog.Logger
}

type Option func(*Pipeline) error

func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}

		// Release old pool
		if p.embeddingPool != nil {
			p.embeddingPool.Release()
		}

		embeddingPool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		p.embeddingPool = embeddingPool
		return nil
	}
}

// WithBatchSize sets how many documents are embedded per request.
func WithBatchSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}
		p.batchSize = size
		return nil
	}
}

// WithMaxInputChars sets the embedding input limit in runes.
// Default is ai.DefaultMaxInputChars.
func WithMaxInputChars(n int) Option {
	return func(p *Pipeline) error {
		if n < 1 {
			return fmt.Errorf("max input chars must be positive, got %d", n)
		}
		p.maxInputChars = n
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// NewPipeline creates a new ingestion pipeline. A nil provider stores
// documents without embeddings; they are ranked with the term-overlap proxy.
func NewPipeline(
	repository storage.DocumentRepository,
	provider ai.AIProvider,
	opts ...Option,
) (*Pipeline, error) {
	if repository == nil {
		return nil, ErrRepositoryRequired
	}

	// Default pool size
	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}

	embeddingPool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	// Create pipeline with defaults
	p := &Pipeline{
		repository:    repository,
		embeddingPool: embeddingPool,
		batchSize:     DefaultBatchSize,
		maxInputChars: ai.DefaultMaxInputChars,
		logger:        slog.Default(),
	}

	// Apply options (may override defaults)
	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}
	p.logger = p.logger.With("component", "ingestion")

	if provider != nil {
		embeddingProc, err := newEmbeddingProcessor(repository, provider.Embedder(), p.maxInputChars, p.logger)
		if err != nil {
			p.Release()
			return nil, err
		}
		p.embeddingProc = embeddingProc
	} else {
		p.logger.Info("no AI provider configured; documents will not be embedded")
	}

	return p, nil
}

// IngestOptions holds defaults applied to documents that leave a field unset.
type IngestOptions struct {
	SourceType core.SourceType   // Used when a document has no source type
	Metadata   map[string]string // Merged into each document; document keys win
	Timestamp  time.Time         // Used when a document has no timestamp (current time if zero)
}

// Ingest stores documents and queues them for embedding.
// Documents that already carry a vector are not re-embedded.
// Errors during async processing are logged but do not fail the ingestion.
func (p *Pipeline) Ingest(ctx context.Context, docs []*core.Document, opts *IngestOptions) ([]*core.Document, error) {
	if opts == nil {
		opts = &IngestOptions{}
	}
	if len(docs) == 0 {
		return nil, nil
	}

	for _, doc := range docs {
		if doc == nil {
			return nil, fmt.Errorf("%w: document is nil", core.ErrInvalidDocument)
		}
		if doc.SourceType == "" {
			doc.SourceType = opts.SourceType
		}
		if doc.Timestamp.IsZero() {
			doc.Timestamp = opts.Timestamp
		}
		if len(opts.Metadata) > 0 {
			merged := maps.Clone(opts.Metadata)
			maps.Copy(merged, doc.Metadata)
			doc.Metadata = merged
		}
	}

	added, err := p.repository.AddDocuments(ctx, docs...)
	if err != nil {
		return nil, err
	}

	if p.embeddingProc == nil {
		return added, nil
	}

	var ids []core.ID
	for _, doc := range added {
		if len(doc.Vector) == 0 {
			ids = append(ids, doc.Id)
		}
	}
	for start := 0; start < len(ids); start += p.batchSize {
		end := min(start+p.batchSize, len(ids))
		if err := p.submit(ids[start:end]); err != nil {
			return added, err
		}
	}
	return added, nil
}

// IngestText stores a single document built from title and body.
func (p *Pipeline) IngestText(ctx context.Context, sourceType core.SourceType, title, body string, opts *IngestOptions) (*core.Document, error) {
	added, err := p.Ingest(ctx, []*core.Document{{Title: title, Body: body, SourceType: sourceType}}, opts)
	if err != nil {
		return nil, err
	}
	return added[0], nil
}

func (p *Pipeline) submit(ids []core.ID) error {
	batch := append([]core.ID(nil), ids...)
	p.pending.Add(1)
	err := p.embeddingPool.Submit(func() {
		defer p.pending.Done()
		if err := p.embeddingProc.process(context.Background(), batch...); err != nil {
			p.logger.Error("error processing embeddings", "documents", len(batch), "err", err)
		}
	})
	if err != nil {
		p.pending.Done()
		if p.embeddingPool.IsClosed() {
			return ErrPipelineReleased
		}
		return fmt.Errorf("queue embedding batch: %w", err)
	}
	return nil
}

// Wait blocks until all queued embedding work has finished.
func (p *Pipeline) Wait() {
	p.pending.Wait()
}

// Release releases resources including worker pools.
// The pipeline should not be used after calling Release.
func (p *Pipeline) Release() {
	if p.embeddingPool != nil {
		p.embeddingPool.Release()
	}
}
