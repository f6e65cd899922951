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


package recall

import (
	"errors"
	"io"
	"log/slog"

	"github.com/poiesic/recall/ai"
	"github.com/poiesic/recall/ai/openai"
	"github.com/poiesic/recall/ingestion"
	"github.com/poiesic/recall/metrics"
	"github.com/poiesic/recall/rank"
	"github.com/poiesic/recall/reembed"
	"github.com/poiesic/recall/search"
	"github.com/poiesic/recall/storage"
	"github.com/poiesic/recall/storage/badger"
	"github.com/prometheus/client_golang/prometheus"
)

// Database ties a document store to an embedding provider and hands out
// ingestion pipelines, searchers and reembedders that share them.
type Database struct {
	repository storage.DocumentRepository
	provider   ai.AIProvider
	embedder   ai.Embedder
	aiConfig   *ai.Config
	rankConfig *rank.Config
	metrics    *metrics.Metrics
	logger     *slog.Logger
}

// DatabaseOption configures a Database.
type DatabaseOption func(*databaseOptions)

type databaseOptions struct {
	aiConfig   *ai.Config
	provider   ai.AIProvider
	rankConfig *rank.Config
	registerer prometheus.Registerer
	inMemory   bool
	logger     *slog.Logger
}

// WithAIConfig sets the embedding service configuration.
func WithAIConfig(config *ai.Config) DatabaseOption {
	return func(o *databaseOptions) {
		o.aiConfig = config
	}
}

// WithAIProvider uses provider instead of an OpenAI-compatible one built
// from the AI config. The database closes it.
func WithAIProvider(provider ai.AIProvider) DatabaseOption {
	return func(o *databaseOptions) {
		o.provider = provider
	}
}

// WithRankConfig sets the scoring configuration for searchers.
func WithRankConfig(config *rank.Config) DatabaseOption {
	return func(o *databaseOptions) {
		o.rankConfig = config
	}
}

// WithMetrics registers Prometheus collectors with reg.
func WithMetrics(reg prometheus.Registerer) DatabaseOption {
	return func(o *databaseOptions) {
		o.registerer = reg
	}
}

// InMemory keeps all data in memory; the path is ignored.
func InMemory() DatabaseOption {
	return func(o *databaseOptions) {
		o.inMemory = true
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) DatabaseOption {
	return func(o *databaseOptions) {
		o.logger = logger
	}
}

// NewDatabase opens (or creates) the database at filePath.
func NewDatabase(filePath string, opts ...DatabaseOption) (*Database, error) {
	// Apply options
	options := &databaseOptions{
		aiConfig: ai.DefaultConfig(), // Default if not provided
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(options)
	}
	if options.aiConfig == nil {
		options.aiConfig = ai.DefaultConfig()
	}
	if options.logger == nil {
		options.logger = slog.Default()
	}
	if options.rankConfig == nil {
		options.rankConfig = rank.DefaultConfig()
	}
	if err := options.rankConfig.Validate(); err != nil {
		return nil, err
	}

	var m *metrics.Metrics
	if options.registerer != nil {
		var err error
		m, err = metrics.New(options.registerer)
		if err != nil {
			return nil, err
		}
	}

	// Open backend
	backend, err := badger.OpenBackend(filePath, options.inMemory, badger.WithBackendLogger(options.logger))
	if err != nil {
		return nil, err
	}

	// Create document repository
	repository, err := badger.NewDocumentRepository(backend, badger.WithOwnedBackend())
	if err != nil {
		backend.Close()
		return nil, err
	}

	// Create AI provider with configured settings
	provider := options.provider
	if provider == nil {
		provider, err = openai.NewProvider(options.aiConfig)
		if err != nil {
			repository.Close()
			return nil, err
		}
	}

	embedder := provider.Embedder()
	if options.aiConfig.CacheTTL > 0 {
		cacheOpts := []ai.CacheOption{ai.WithCacheLogger(options.logger)}
		if m != nil {
			cacheOpts = append(cacheOpts, ai.WithCacheCounter(m.EmbeddingCache))
		}
		embedder = ai.NewCachingEmbedder(embedder, options.aiConfig.CacheTTL, cacheOpts...)
	}

	return &Database{
		repository: repository,
		provider:   provider,
		embedder:   embedder,
		aiConfig:   options.aiConfig,
		rankConfig: options.rankConfig,
		metrics:    m,
		logger:     options.logger.With("component", "database"),
	}, nil
}

// Close closes the AI provider and the repository.
func (db *Database) Close() error {
	var errs []error

	// Close AI provider first
	if err := db.provider.Close(); err != nil {
		db.logger.Error("error closing AI provider", "err", err)
		errs = append(errs, err)
	}

	if err := db.repository.Close(); err != nil {
		db.logger.Error("error closing document repository", "err", err)
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (db *Database) Repository() storage.DocumentRepository {
	return db.repository
}

// Metrics returns the collectors, or nil when metrics are disabled.
func (db *Database) Metrics() *metrics.Metrics {
	return db.metrics
}

func (db *Database) NewIngestionPipeline(opts ...ingestion.Option) (*ingestion.Pipeline, error) {
	defaults := []ingestion.Option{
		ingestion.WithMaxInputChars(db.aiConfig.MaxInputChars),
		ingestion.WithLogger(db.logger),
	}
	return ingestion.NewPipeline(db.repository, db.provider, append(defaults, opts...)...)
}

// NewSearcher creates a searcher using the cached query embedder. The
// caller must Close it.
func (db *Database) NewSearcher(opts ...search.Option) (*search.Searcher, error) {
	defaults := []search.Option{
		search.WithEmbedder(db.embedder),
		search.WithRankConfig(db.rankConfig),
		search.WithLogger(db.logger),
	}
	if db.metrics != nil {
		defaults = append(defaults, search.WithMetrics(db.metrics))
	}
	return search.NewSearcher(db.repository, append(defaults, opts...)...)
}

// NewReembedder creates a reembedder writing progress to progress. A nil
// config uses reembed.DefaultConfig with the database's input limit.
func (db *Database) NewReembedder(config *reembed.Config, progress io.Writer) (*reembed.Reembedder, error) {
	if config == nil {
		config = reembed.DefaultConfig()
		config.MaxInputChars = db.aiConfig.MaxInputChars
	}
	return reembed.NewReembedder(db.repository, db.provider.Embedder(), config, progress)
}
