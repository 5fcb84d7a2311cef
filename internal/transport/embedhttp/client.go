// Package embedhttp is the HTTP client for the embedding service.
package embedhttp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/clinika/notectx/internal/domain"
	"github.com/clinika/notectx/internal/metrics"
)

const serviceName = "embedding"

// Config holds the embedding service connection settings.
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// Client calls the embedding service over HTTP.
type Client struct {
	baseURL    string
	apiKey     string
	timeout    time.Duration
	httpClient *http.Client
}

// New creates an embedding service client.
func New(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		timeout:    timeout,
		httpClient: &http.Client{},
	}
}

type embedTextRequest struct {
	Text string `json:"text"`
}

type embedTextResponse struct {
	Embedding []float32 `json:"embedding"`
	Success   bool      `json:"success"`
}

type embedDocument struct {
	Text     string         `json:"text"`
	DocID    string         `json:"doc_id"`
	Metadata map[string]any `json:"metadata"`
}

type embedDocumentsRequest struct {
	Documents []embedDocument `json:"documents"`
	Chunk     bool            `json:"chunk"`
}

type embeddedChunk struct {
	Text      string         `json:"text"`
	Metadata  map[string]any `json:"metadata"`
	Embedding []float32      `json:"embedding"`
	ChunkID   int            `json:"chunk_id"`
}

type embedDocumentsResponse struct {
	Chunks  []embeddedChunk `json:"chunks"`
	Success bool            `json:"success"`
	Message string          `json:"message"`
}

// Embed implements domain.Embedder for single query texts.
func (c *Client) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	start := time.Now()

	var resp embedTextResponse
	err := c.post(ctx, "/embed/text", embedTextRequest{Text: text}, &resp)

	metrics.ObserveBackend(serviceName, "embed_text", time.Since(start).Seconds(), err)

	if err != nil {
		return domain.EmbeddingResult{}, err
	}
	if !resp.Success || len(resp.Embedding) == 0 {
		return domain.EmbeddingResult{}, fmt.Errorf("empty embedding response: %w", domain.ErrEmbeddingUnavailable)
	}
	return domain.EmbeddingResult{Embedding: resp.Embedding}, nil
}

// EmbedDocuments submits a document batch for chunking and embedding.
func (c *Client) EmbedDocuments(ctx context.Context, docs []domain.IngestionDocument, chunk bool) ([]domain.EmbeddedChunk, error) {
	body := embedDocumentsRequest{
		Documents: make([]embedDocument, 0, len(docs)),
		Chunk:     chunk,
	}
	for _, d := range docs {
		body.Documents = append(body.Documents, embedDocument{
			Text:     d.Text,
			DocID:    d.DocumentID,
			Metadata: d.Metadata,
		})
	}

	start := time.Now()

	var resp embedDocumentsResponse
	err := c.post(ctx, "/embed/documents", body, &resp)

	metrics.ObserveBackend(serviceName, "embed_documents", time.Since(start).Seconds(), err)

	if err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, fmt.Errorf("embedding service rejected batch: %s: %w", resp.Message, domain.ErrEmbeddingUnavailable)
	}

	chunks := make([]domain.EmbeddedChunk, 0, len(resp.Chunks))
	for _, ch := range resp.Chunks {
		chunks = append(chunks, domain.EmbeddedChunk{
			Text:      ch.Text,
			Metadata:  ch.Metadata,
			Embedding: ch.Embedding,
			ChunkID:   ch.ChunkID,
		})
	}
	return chunks, nil
}

// HealthCheck verifies the embedding service is reachable.
func (c *Client) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", http.NoBody)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("embedding service health: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("embedding service health: status %d", resp.StatusCode)
	}
	return nil
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshaling request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("embedding service request: %w: %v", domain.ErrEmbeddingUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("embedding service status %d: %s: %w", resp.StatusCode, detail, domain.ErrEmbeddingUnavailable)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w: %v", domain.ErrEmbeddingUnavailable, err)
	}
	return nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
}
