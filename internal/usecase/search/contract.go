package search

import (
	"context"

	"github.com/clinika/notectx/internal/domain"
)

// VectorSearcher runs nearest-neighbor search against the vector index backend.
type VectorSearcher interface {
	SearchVector(
		ctx context.Context, vector []float32, k int, filters map[string]any,
	) (domain.SearchPage, error)
}

// KeywordSearcher runs lexical search against the keyword index backend.
type KeywordSearcher interface {
	SearchKeyword(
		ctx context.Context, keywords string, limit int, filters map[string]any,
	) (domain.SearchPage, error)
}

// Embedder vectorizes query text into an embedding.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}
