// Package ingestion provides pipeline orchestration for adding documents.
//
// The Pipeline type manages the ingestion workflow, including:
//   - Applying defaults and adding documents to storage
//   - Generating embeddings asynchronously on a worker pool
//
// Documents are searchable as soon as Ingest returns; embeddings arrive
// later. Errors during async processing are logged but do not fail the
// ingestion operation. Wait blocks until queued embedding work is done.
package ingestion
