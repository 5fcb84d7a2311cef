package domain

import "errors"

var (
	// ErrInvalidQuery signals a search request with neither query text nor keywords.
	ErrInvalidQuery = errors.New("invalid query")
	// ErrDocumentNotFound signals a missing document.
	ErrDocumentNotFound = errors.New("document not found")
	// ErrEmptyBatch signals an ingestion batch with no valid documents.
	ErrEmptyBatch = errors.New("empty document batch")
	// ErrEmptyDocument signals a document with missing or empty text.
	ErrEmptyDocument = errors.New("document text is required")
	// ErrEmbeddingUnavailable signals an embedding backend failure.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")
	// ErrBackendUnavailable signals a vector store backend failure.
	ErrBackendUnavailable = errors.New("vector store unavailable")
	// ErrNoSearchBranch signals that no retrieval branch could serve the request.
	ErrNoSearchBranch = errors.New("no usable search branch")
)
