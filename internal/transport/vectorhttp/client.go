// Package vectorhttp is the HTTP client for the vector store service.
package vectorhttp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/clinika/notectx/internal/domain"
	"github.com/clinika/notectx/internal/metrics"
)

const serviceName = "vector_store"

// Config holds the vector store connection settings.
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// Client calls the vector store service over HTTP.
type Client struct {
	baseURL    string
	apiKey     string
	timeout    time.Duration
	httpClient *http.Client
}

// New creates a vector store client.
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

type vectorSearchRequest struct {
	Embedding []float32      `json:"embedding"`
	K         int            `json:"k"`
	Filters   map[string]any `json:"filters,omitempty"`
}

type keywordSearchRequest struct {
	Keywords string         `json:"keywords"`
	Limit    int            `json:"limit"`
	Filters  map[string]any `json:"filters,omitempty"`
}

type searchResult struct {
	Text     string         `json:"text"`
	Score    float64        `json:"score"`
	Metadata map[string]any `json:"metadata"`
	ChunkID  string         `json:"chunk_id"`
}

type searchResponse struct {
	Results      []searchResult `json:"results"`
	TotalMatches int            `json:"total_matches"`
	QueryTimeMS  float64        `json:"query_time_ms"`
}

type storeChunk struct {
	Text      string         `json:"text"`
	Metadata  map[string]any `json:"metadata"`
	Embedding []float32      `json:"embedding"`
	ChunkID   int            `json:"chunk_id"`
}

type addChunksRequest struct {
	Chunks []storeChunk `json:"chunks"`
}

type apiResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type documentPayload struct {
	Metadata map[string]any `json:"metadata"`
	Chunks   []chunkPayload `json:"chunks"`
}

type chunkPayload struct {
	Text     string         `json:"text"`
	Metadata map[string]any `json:"metadata"`
	ChunkID  json.Number    `json:"chunk_id"`
}

type documentListPayload struct {
	Documents []documentSummaryPayload `json:"documents"`
	Total     int                      `json:"total"`
	Page      int                      `json:"page"`
	Limit     int                      `json:"limit"`
	Pages     int                      `json:"pages"`
}

type documentSummaryPayload struct {
	ID         string         `json:"id"`
	Metadata   map[string]any `json:"metadata"`
	ChunkCount int            `json:"chunk_count"`
	Preview    string         `json:"preview"`
}

// SearchVector performs similarity search with a precomputed embedding.
func (c *Client) SearchVector(ctx context.Context, vector []float32, k int, filters map[string]any) (domain.SearchPage, error) {
	start := time.Now()

	var resp searchResponse
	err := c.post(ctx, "/vectors/search", vectorSearchRequest{Embedding: vector, K: k, Filters: filters}, &resp)

	metrics.ObserveBackend(serviceName, "vector_search", time.Since(start).Seconds(), err)

	if err != nil {
		return domain.SearchPage{}, err
	}
	return toSearchPage(resp), nil
}

// SearchKeyword performs exact keyword matching against stored chunk text.
func (c *Client) SearchKeyword(ctx context.Context, keywords string, limit int, filters map[string]any) (domain.SearchPage, error) {
	start := time.Now()

	var resp searchResponse
	err := c.post(ctx, "/vectors/keyword-search", keywordSearchRequest{Keywords: keywords, Limit: limit, Filters: filters}, &resp)

	metrics.ObserveBackend(serviceName, "keyword_search", time.Since(start).Seconds(), err)

	if err != nil {
		return domain.SearchPage{}, err
	}
	return toSearchPage(resp), nil
}

// AddChunks stores embedded chunks in the vector index.
func (c *Client) AddChunks(ctx context.Context, chunks []domain.EmbeddedChunk) error {
	body := addChunksRequest{Chunks: make([]storeChunk, 0, len(chunks))}
	for _, ch := range chunks {
		body.Chunks = append(body.Chunks, storeChunk{
			Text:      ch.Text,
			Metadata:  ch.Metadata,
			Embedding: ch.Embedding,
			ChunkID:   ch.ChunkID,
		})
	}

	start := time.Now()

	var resp apiResponse
	err := c.post(ctx, "/vectors/add", body, &resp)

	metrics.ObserveBackend(serviceName, "add_chunks", time.Since(start).Seconds(), err)

	if err != nil {
		return err
	}
	if !resp.Success {
		return fmt.Errorf("vector store rejected chunks: %s: %w", resp.Message, domain.ErrBackendUnavailable)
	}
	return nil
}

// Get retrieves a document with all of its chunks.
func (c *Client) Get(ctx context.Context, id string) (domain.StoredDocument, error) {
	start := time.Now()

	var resp apiResponse
	err := c.get(ctx, "/vectors/document/"+url.PathEscape(id), &resp)

	metrics.ObserveBackend(serviceName, "get_document", time.Since(start).Seconds(), err)

	if err != nil {
		return domain.StoredDocument{}, err
	}
	if !resp.Success {
		return domain.StoredDocument{}, fmt.Errorf("%w: %s", domain.ErrDocumentNotFound, id)
	}

	var data struct {
		Document documentPayload `json:"document"`
	}
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		return domain.StoredDocument{}, fmt.Errorf("decoding document: %w: %v", domain.ErrBackendUnavailable, err)
	}

	doc := domain.StoredDocument{
		Metadata: data.Document.Metadata,
		Chunks:   make([]domain.DocumentChunk, 0, len(data.Document.Chunks)),
	}
	for _, ch := range data.Document.Chunks {
		doc.Chunks = append(doc.Chunks, domain.DocumentChunk{
			Text:     ch.Text,
			Metadata: ch.Metadata,
			ChunkID:  ch.ChunkID.String(),
		})
	}
	return doc, nil
}

// Delete removes a document and its chunks from the store.
func (c *Client) Delete(ctx context.Context, id string) error {
	start := time.Now()

	var resp apiResponse
	err := c.del(ctx, "/vectors/document/"+url.PathEscape(id), &resp)

	metrics.ObserveBackend(serviceName, "delete_document", time.Since(start).Seconds(), err)

	if err != nil {
		return err
	}
	if !resp.Success {
		return fmt.Errorf("%w: %s", domain.ErrDocumentNotFound, id)
	}
	return nil
}

// List returns a page of document summaries.
func (c *Client) List(ctx context.Context, page, limit int, filter string) (domain.DocumentPage, error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("limit", strconv.Itoa(limit))
	if filter != "" {
		q.Set("filter", filter)
	}

	start := time.Now()

	var resp apiResponse
	err := c.get(ctx, "/vectors/documents?"+q.Encode(), &resp)

	metrics.ObserveBackend(serviceName, "list_documents", time.Since(start).Seconds(), err)

	if err != nil {
		return domain.DocumentPage{}, err
	}
	if !resp.Success {
		return domain.DocumentPage{}, fmt.Errorf("vector store listing failed: %s: %w", resp.Message, domain.ErrBackendUnavailable)
	}

	var data documentListPayload
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		return domain.DocumentPage{}, fmt.Errorf("decoding listing: %w: %v", domain.ErrBackendUnavailable, err)
	}

	result := domain.DocumentPage{
		Documents: make([]domain.DocumentSummary, 0, len(data.Documents)),
		Total:     data.Total,
		Page:      data.Page,
		Limit:     data.Limit,
		Pages:     data.Pages,
	}
	for _, d := range data.Documents {
		result.Documents = append(result.Documents, domain.DocumentSummary{
			ID:         d.ID,
			Metadata:   d.Metadata,
			ChunkCount: d.ChunkCount,
			Preview:    d.Preview,
		})
	}
	return result, nil
}

// HealthCheck verifies the vector store is reachable.
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
		return fmt.Errorf("vector store health: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("vector store health: status %d", resp.StatusCode)
	}
	return nil
}

func toSearchPage(resp searchResponse) domain.SearchPage {
	page := domain.SearchPage{
		Candidates:   make([]domain.Candidate, 0, len(resp.Results)),
		TotalMatches: resp.TotalMatches,
		QueryTimeMS:  resp.QueryTimeMS,
	}
	for _, r := range resp.Results {
		page.Candidates = append(page.Candidates, domain.Candidate{
			Text:     r.Text,
			Score:    r.Score,
			Metadata: r.Metadata,
			ChunkID:  r.ChunkID,
		})
	}
	return page
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshaling request: %w", err)
	}
	return c.do(ctx, http.MethodPost, path, bytes.NewReader(payload), out)
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) del(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodDelete, path, nil, out)
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if body == nil {
		body = http.NoBody
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("vector store request: %w: %v", domain.ErrBackendUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("vector store status %d: %s: %w", resp.StatusCode, detail, domain.ErrBackendUnavailable)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w: %v", domain.ErrBackendUnavailable, err)
	}
	return nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
}
