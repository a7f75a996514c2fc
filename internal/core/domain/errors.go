package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrCapabilityNotFound indicates an unknown capability name. Always
	// surfaced to the gateway caller.
	ErrCapabilityNotFound = errors.New("capability not found")

	// ErrNotIndexed indicates retrieval or chat was attempted before the
	// index job completed. Retryable, not a failure.
	ErrNotIndexed = errors.New("document not indexed yet")

	// ErrCompletionUnavailable indicates the completion provider is not
	// configured or unreachable. Fatal for the fast path; background paths
	// log and swallow it.
	ErrCompletionUnavailable = errors.New("completion service unavailable")

	// ErrEmbeddingUnavailable indicates the embedding provider is not
	// configured. Indexing and semantic search are disabled without it.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrVectorStoreUnavailable indicates the vector index is not
	// configured.
	ErrVectorStoreUnavailable = errors.New("vector store unavailable")

	// ErrStreamClosed indicates a token stream was consumed after
	// cancellation or completion.
	ErrStreamClosed = errors.New("token stream closed")
)
