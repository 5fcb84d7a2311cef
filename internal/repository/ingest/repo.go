// Package ingest composes the embedding and vector store backends into the
// document submission pipeline.
package ingest

import (
	"context"
	"fmt"

	"github.com/clinika/notectx/internal/domain"
)

// embedder is the consumer interface for the document embedding step.
type embedder interface {
	EmbedDocuments(ctx context.Context, docs []domain.IngestionDocument, chunk bool) ([]domain.EmbeddedChunk, error)
}

// store is the consumer interface for the chunk storage step.
type store interface {
	AddChunks(ctx context.Context, chunks []domain.EmbeddedChunk) error
}

// Repo implements usecase/ingest.DocumentStore as a two-step pipeline:
// embed and chunk the batch, then hand the chunks to the vector store.
type Repo struct {
	embedder embedder
	store    store
}

// New creates an ingest pipeline repository.
func New(e embedder, s store) *Repo {
	return &Repo{embedder: e, store: s}
}

// IngestBatch embeds the documents and stores the resulting chunks.
func (r *Repo) IngestBatch(ctx context.Context, docs []domain.IngestionDocument) (domain.IngestReceipt, error) {
	chunks, err := r.embedder.EmbedDocuments(ctx, docs, true)
	if err != nil {
		return domain.IngestReceipt{}, fmt.Errorf("embed documents: %w", err)
	}

	if err := r.store.AddChunks(ctx, chunks); err != nil {
		return domain.IngestReceipt{}, fmt.Errorf("store chunks: %w", err)
	}

	return domain.IngestReceipt{
		Success:       true,
		Message:       fmt.Sprintf("Successfully processed %d documents into %d chunks", len(docs), len(chunks)),
		DocumentCount: len(docs),
		ChunkCount:    len(chunks),
	}, nil
}
