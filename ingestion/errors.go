package ingestion

import "errors"

var (
	// ErrRepositoryRequired is returned when a document repository is not provided.
	ErrRepositoryRequired = errors.New("document repository required")

	// ErrPipelineReleased is returned when documents are ingested after Release.
	ErrPipelineReleased = errors.New("pipeline released")
)
