package notectx

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const defaultTimeout = 30 * time.Second

// Client is the notectx SDK entry point.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// Option customizes the Client.
type Option func(*Client)

// WithAPIKey sets the Bearer token sent with every request.
func WithAPIKey(key string) Option {
	return func(c *Client) { c.apiKey = key }
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout sets the per-request timeout on the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// New creates a notectx API client.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Search runs a search request against the note index.
func (c *Client) Search(ctx context.Context, req SearchRequest) (SearchResponse, error) {
	var resp SearchResponse
	if err := c.do(ctx, http.MethodPost, "/api/v1/search", req, &resp); err != nil {
		return SearchResponse{}, err
	}
	return resp, nil
}

// IngestDocuments submits a batch of documents for chunking, embedding, and
// indexing.
func (c *Client) IngestDocuments(ctx context.Context, docs []Document) (IngestResult, error) {
	body := struct {
		Documents []Document `json:"documents"`
	}{Documents: docs}

	var resp IngestResult
	if err := c.do(ctx, http.MethodPost, "/api/v1/documents", body, &resp); err != nil {
		return IngestResult{}, err
	}
	return resp, nil
}

// GetDocument retrieves a document with its chunks by ID.
func (c *Client) GetDocument(ctx context.Context, id string) (StoredDocument, error) {
	var resp StoredDocument
	if err := c.do(ctx, http.MethodGet, "/api/v1/documents/"+url.PathEscape(id), nil, &resp); err != nil {
		return StoredDocument{}, err
	}
	return resp, nil
}

// DeleteDocument removes a document and its chunks.
func (c *Client) DeleteDocument(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/v1/documents/"+url.PathEscape(id), nil, nil)
}

// ListDocuments returns a page of document summaries.
func (c *Client) ListDocuments(ctx context.Context, opts ListOptions) (DocumentList, error) {
	q := url.Values{}
	if opts.Page > 0 {
		q.Set("page", strconv.Itoa(opts.Page))
	}
	if opts.Limit > 0 {
		q.Set("limit", strconv.Itoa(opts.Limit))
	}
	if opts.Filter != "" {
		q.Set("filter", opts.Filter)
	}

	path := "/api/v1/documents"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var resp DocumentList
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return DocumentList{}, err
	}
	return resp, nil
}

// Health checks the health of the service and its backends. A degraded
// report is returned without an error.
func (c *Client) Health(ctx context.Context) (HealthStatus, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/health", nil)
	if err != nil {
		return HealthStatus{}, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return HealthStatus{}, fmt.Errorf("notectx: health request: %w", err)
	}
	defer resp.Body.Close()

	// 503 still carries a health report body.
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusServiceUnavailable {
		return HealthStatus{}, statusError(resp.StatusCode, "")
	}

	var status HealthStatus
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return HealthStatus{}, fmt.Errorf("notectx: decode health response: %w", err)
	}
	return status, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("notectx: marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := c.newRequest(ctx, method, path, reader)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("notectx: request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		var apiErr struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		}
		_ = json.NewDecoder(io.LimitReader(resp.Body, 4096)).Decode(&apiErr)
		return statusError(resp.StatusCode, apiErr.Message)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("notectx: decode response: %w", err)
	}
	return nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	if body == nil {
		body = http.NoBody
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("notectx: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	return req, nil
}

func statusError(status int, message string) error {
	var sentinel error
	switch status {
	case http.StatusBadRequest:
		sentinel = ErrInvalidRequest
	case http.StatusUnauthorized:
		sentinel = ErrUnauthorized
	case http.StatusNotFound:
		sentinel = ErrDocumentNotFound
	case http.StatusBadGateway, http.StatusServiceUnavailable:
		sentinel = ErrBackendUnavailable
	default:
		sentinel = ErrServer
	}
	if message != "" {
		return fmt.Errorf("%w: %s", sentinel, message)
	}
	return fmt.Errorf("%w: status %d", sentinel, status)
}
