package domain

import "context"

// Embedder is the shared text vectorization contract between layers.
type Embedder interface {
	Embed(ctx context.Context, text string) (EmbeddingResult, error)
}

// HealthChecker verifies embedding provider availability.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// EmbeddingResult carries the query embedding vector. The vector is produced
// once per request and consumed by exactly one vector search call.
type EmbeddingResult struct {
	Embedding []float32
}

// EmbeddedChunk is a document chunk with its embedding, produced by the
// embedding backend and handed to the vector store unchanged.
type EmbeddedChunk struct {
	Text      string
	Metadata  map[string]any
	Embedding []float32
	ChunkID   int
}
