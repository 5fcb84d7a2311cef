package domain

// RawDocument is a caller-submitted document before normalization.
// DocumentID and Metadata are optional.
type RawDocument struct {
	Text       string
	DocumentID string
	Metadata   map[string]any
}

// IngestionDocument is a normalized document ready for submission to the
// document store: a resolved identifier and metadata that carries it.
type IngestionDocument struct {
	Text       string
	DocumentID string
	Metadata   map[string]any
}

// IngestReceipt reports the outcome of a batch submission.
type IngestReceipt struct {
	Success       bool
	Message       string
	DocumentCount int
	ChunkCount    int
}

// DocumentChunk is a stored sub-unit of a document as returned by the store.
type DocumentChunk struct {
	Text     string
	Metadata map[string]any
	ChunkID  string
}

// StoredDocument is a document retrieved from the store with its chunks.
type StoredDocument struct {
	Metadata map[string]any
	Chunks   []DocumentChunk
}

// DocumentSummary is one row of a document listing.
type DocumentSummary struct {
	ID         string
	Metadata   map[string]any
	ChunkCount int
	Preview    string
}

// DocumentPage is a paginated document listing.
type DocumentPage struct {
	Documents []DocumentSummary
	Total     int
	Page      int
	Limit     int
	Pages     int
}
