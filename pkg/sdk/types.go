package notectx

// SearchRequest holds the search parameters. At least one of Query or
// Keywords must be set; Mode is inferred from the populated fields when
// empty.
type SearchRequest struct {
	Query    string         `json:"query,omitempty"`
	Keywords string         `json:"keywords,omitempty"`
	Mode     string         `json:"mode,omitempty"` // hybrid, semantic, keyword
	Limit    int            `json:"limit,omitempty"`
	Filters  map[string]any `json:"filters,omitempty"`
}

// SearchResult is one search hit.
type SearchResult struct {
	Text          string         `json:"text"`
	Score         float64        `json:"score"`
	SemanticScore float64        `json:"semantic_score"`
	KeywordScore  float64        `json:"keyword_score"`
	Metadata      map[string]any `json:"metadata,omitempty"`
	Highlighted   string         `json:"highlighted,omitempty"`
}

// SearchResponse is the full search outcome.
type SearchResponse struct {
	Query       string         `json:"query"`
	Results     []SearchResult `json:"results"`
	Total       int            `json:"total"`
	QueryTimeMS float64        `json:"query_time_ms"`
}

// Document is a document submitted for ingestion. DocumentID is optional;
// the service generates one when empty.
type Document struct {
	Text       string         `json:"text"`
	DocumentID string         `json:"document_id,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

// IngestResult reports the outcome of a batch submission.
type IngestResult struct {
	Success       bool     `json:"success"`
	Message       string   `json:"message"`
	DocumentCount int      `json:"document_count"`
	ChunkCount    int      `json:"chunk_count"`
	DocumentIDs   []string `json:"document_ids"`
}

// DocumentChunk is a stored sub-unit of a document.
type DocumentChunk struct {
	Text     string         `json:"text"`
	Metadata map[string]any `json:"metadata,omitempty"`
	ChunkID  string         `json:"chunk_id"`
}

// StoredDocument is a document with its chunks as returned by the service.
type StoredDocument struct {
	Metadata map[string]any  `json:"metadata"`
	Chunks   []DocumentChunk `json:"chunks"`
}

// DocumentSummary is one row of a document listing.
type DocumentSummary struct {
	ID         string         `json:"id"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	ChunkCount int            `json:"chunk_count"`
	Preview    string         `json:"preview"`
}

// DocumentList is a paginated document listing.
type DocumentList struct {
	Documents []DocumentSummary `json:"documents"`
	Total     int               `json:"total"`
	Page      int               `json:"page"`
	Limit     int               `json:"limit"`
	Pages     int               `json:"pages"`
}

// ListOptions holds pagination parameters for ListDocuments. Zero values
// use the server defaults.
type ListOptions struct {
	Page   int
	Limit  int
	Filter string
}

// HealthStatus represents the aggregated system health.
type HealthStatus struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}
