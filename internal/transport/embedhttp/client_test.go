package embedhttp

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/clinika/notectx/internal/domain"
)

func TestEmbed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/embed/text" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Method != http.MethodPost {
			t.Errorf("unexpected method %s", r.Method)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("unexpected auth header %q", got)
		}

		var req embedTextRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Text != "patient with diabetes" {
			t.Errorf("unexpected text %q", req.Text)
		}

		_ = json.NewEncoder(w).Encode(embedTextResponse{
			Embedding: []float32{0.1, 0.2, 0.3},
			Success:   true,
		})
	}))
	defer srv.Close()

	client := New(Config{BaseURL: srv.URL, APIKey: "test-key"})

	result, err := client.Embed(context.Background(), "patient with diabetes")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Embedding) != 3 {
		t.Errorf("expected 3 dimensions, got %d", len(result.Embedding))
	}
}

func TestEmbed_BackendError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := New(Config{BaseURL: srv.URL})

	_, err := client.Embed(context.Background(), "query")
	if !errors.Is(err, domain.ErrEmbeddingUnavailable) {
		t.Fatalf("expected ErrEmbeddingUnavailable, got %v", err)
	}
}

func TestEmbed_UnsuccessfulBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(embedTextResponse{Success: false})
	}))
	defer srv.Close()

	client := New(Config{BaseURL: srv.URL})

	_, err := client.Embed(context.Background(), "query")
	if !errors.Is(err, domain.ErrEmbeddingUnavailable) {
		t.Fatalf("expected ErrEmbeddingUnavailable, got %v", err)
	}
}

func TestEmbedDocuments(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/embed/documents" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}

		var req embedDocumentsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if !req.Chunk {
			t.Error("expected chunk=true")
		}
		if len(req.Documents) != 1 || req.Documents[0].DocID != "doc-1" {
			t.Errorf("unexpected documents %+v", req.Documents)
		}

		_ = json.NewEncoder(w).Encode(embedDocumentsResponse{
			Chunks: []embeddedChunk{
				{Text: "first chunk", Metadata: map[string]any{"doc_id": "doc-1"}, Embedding: []float32{0.1}, ChunkID: 0},
				{Text: "second chunk", Metadata: map[string]any{"doc_id": "doc-1"}, Embedding: []float32{0.2}, ChunkID: 1},
			},
			Success: true,
			Message: "embedded 2 chunks",
		})
	}))
	defer srv.Close()

	client := New(Config{BaseURL: srv.URL})

	chunks, err := client.EmbedDocuments(context.Background(), []domain.IngestionDocument{
		{Text: "note text", DocumentID: "doc-1", Metadata: map[string]any{"doc_id": "doc-1"}},
	}, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}
	if chunks[1].ChunkID != 1 {
		t.Errorf("expected chunk id 1, got %d", chunks[1].ChunkID)
	}
}

func TestEmbedDocuments_RejectedBatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(embedDocumentsResponse{Success: false, Message: "tokenizer failure"})
	}))
	defer srv.Close()

	client := New(Config{BaseURL: srv.URL})

	_, err := client.EmbedDocuments(context.Background(), []domain.IngestionDocument{{Text: "x", DocumentID: "d"}}, true)
	if !errors.Is(err, domain.ErrEmbeddingUnavailable) {
		t.Fatalf("expected ErrEmbeddingUnavailable, got %v", err)
	}
}

func TestHealthCheck(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/health" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := New(Config{BaseURL: srv.URL})
	if err := client.HealthCheck(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestHealthCheck_Down(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := New(Config{BaseURL: srv.URL})
	if err := client.HealthCheck(context.Background()); err == nil {
		t.Fatal("expected an error for unhealthy backend")
	}
}

func TestEmbed_ContextTimeout(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-block
	}))
	defer srv.Close()
	defer close(block)

	client := New(Config{BaseURL: srv.URL, Timeout: 50 * time.Millisecond})

	_, err := client.Embed(context.Background(), "query")
	if !errors.Is(err, domain.ErrEmbeddingUnavailable) {
		t.Fatalf("expected ErrEmbeddingUnavailable on timeout, got %v", err)
	}
}
