package ingest

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/clinika/notectx/internal/domain"
)

type mockEmbedder struct {
	chunks    []domain.EmbeddedChunk
	err       error
	lastChunk bool
	calls     int
}

func (m *mockEmbedder) EmbedDocuments(_ context.Context, _ []domain.IngestionDocument, chunk bool) ([]domain.EmbeddedChunk, error) {
	m.calls++
	m.lastChunk = chunk
	return m.chunks, m.err
}

type mockStore struct {
	err        error
	calls      int
	lastChunks []domain.EmbeddedChunk
}

func (m *mockStore) AddChunks(_ context.Context, chunks []domain.EmbeddedChunk) error {
	m.calls++
	m.lastChunks = chunks
	return m.err
}

func TestIngestBatch(t *testing.T) {
	emb := &mockEmbedder{chunks: []domain.EmbeddedChunk{
		{Text: "first", ChunkID: 0, Embedding: []float32{0.1}},
		{Text: "second", ChunkID: 1, Embedding: []float32{0.2}},
		{Text: "third", ChunkID: 0, Embedding: []float32{0.3}},
	}}
	st := &mockStore{}
	repo := New(emb, st)

	docs := []domain.IngestionDocument{
		{Text: "note one", DocumentID: "doc-1"},
		{Text: "note two", DocumentID: "doc-2"},
	}
	receipt, err := repo.IngestBatch(context.Background(), docs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !receipt.Success {
		t.Error("expected a successful receipt")
	}
	if receipt.DocumentCount != 2 || receipt.ChunkCount != 3 {
		t.Errorf("unexpected counts: %+v", receipt)
	}
	if !strings.Contains(receipt.Message, "2 documents") || !strings.Contains(receipt.Message, "3 chunks") {
		t.Errorf("unexpected message %q", receipt.Message)
	}
	if !emb.lastChunk {
		t.Error("expected chunking to be requested")
	}
	if len(st.lastChunks) != 3 {
		t.Errorf("expected all chunks forwarded, got %d", len(st.lastChunks))
	}
}

func TestIngestBatch_EmbeddingFailure(t *testing.T) {
	emb := &mockEmbedder{err: domain.ErrEmbeddingUnavailable}
	st := &mockStore{}
	repo := New(emb, st)

	_, err := repo.IngestBatch(context.Background(), []domain.IngestionDocument{{Text: "x", DocumentID: "d"}})
	if !errors.Is(err, domain.ErrEmbeddingUnavailable) {
		t.Fatalf("expected ErrEmbeddingUnavailable, got %v", err)
	}
	if st.calls != 0 {
		t.Error("store must not be called when embedding fails")
	}
}

func TestIngestBatch_StoreFailure(t *testing.T) {
	emb := &mockEmbedder{chunks: []domain.EmbeddedChunk{{Text: "a"}}}
	st := &mockStore{err: domain.ErrBackendUnavailable}
	repo := New(emb, st)

	_, err := repo.IngestBatch(context.Background(), []domain.IngestionDocument{{Text: "x", DocumentID: "d"}})
	if !errors.Is(err, domain.ErrBackendUnavailable) {
		t.Fatalf("expected ErrBackendUnavailable, got %v", err)
	}
}
