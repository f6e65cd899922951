// Package reembed regenerates embeddings for every stored document, for
// example after switching embedding models. Work proceeds in batches with
// retry and exponential backoff, and progress is written to an io.Writer.
package reembed
