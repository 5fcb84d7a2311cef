// Package chi is the HTTP API surface: routing, request decoding, and the
// mapping from domain errors to status codes.
package chi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/clinika/notectx/internal/domain"
	"github.com/clinika/notectx/internal/domain/search/mode"
	"github.com/clinika/notectx/internal/domain/search/request"
	"github.com/clinika/notectx/internal/metrics"
	documentuc "github.com/clinika/notectx/internal/usecase/document"
	healthuc "github.com/clinika/notectx/internal/usecase/health"
	ingestuc "github.com/clinika/notectx/internal/usecase/ingest"
	searchuc "github.com/clinika/notectx/internal/usecase/search"
)

// Error codes returned in the response body alongside the HTTP status.
const (
	codeBadRequest         = "bad_request"
	codeValidationFailed   = "validation_failed"
	codeDocumentNotFound   = "document_not_found"
	codeBackendUnavailable = "backend_unavailable"
	codeInternalError      = "internal_error"
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server exposes the search, ingest, document, and health services over HTTP.
type Server struct {
	search        *searchuc.Service
	ingest        *ingestuc.Service
	documents     *documentuc.Service
	health        *healthuc.Service
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	search *searchuc.Service,
	ingest *ingestuc.Service,
	documents *documentuc.Service,
	health *healthuc.Service,
	logger *zap.Logger,
) *Server {
	s := &Server{
		search:    search,
		ingest:    ingest,
		documents: documents,
		health:    health,
		logger:    logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrInvalidQuery, http.StatusBadRequest, codeValidationFailed),
		sentinelHandler(domain.ErrEmptyBatch, http.StatusBadRequest, codeValidationFailed),
		sentinelHandler(domain.ErrEmptyDocument, http.StatusBadRequest, codeValidationFailed),
		sentinelHandler(domain.ErrDocumentNotFound, http.StatusNotFound, codeDocumentNotFound),
		sentinelHandler(domain.ErrEmbeddingUnavailable, http.StatusBadGateway, codeBackendUnavailable),
		sentinelHandler(domain.ErrBackendUnavailable, http.StatusBadGateway, codeBackendUnavailable),
		sentinelHandler(domain.ErrNoSearchBranch, http.StatusBadGateway, codeBackendUnavailable),
	}
	return s
}

// RegisterRoutes mounts all API routes on the router.
func (s *Server) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/search", s.SearchNotes)
		r.Post("/documents", s.IngestDocuments)
		r.Get("/documents", s.ListDocuments)
		r.Get("/documents/{id}", s.GetDocument)
		r.Delete("/documents/{id}", s.DeleteDocument)
	})
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
}

type searchRequest struct {
	Query    string         `json:"query"`
	Keywords string         `json:"keywords"`
	Mode     string         `json:"mode"`
	Limit    int            `json:"limit"`
	Filters  map[string]any `json:"filters"`
}

type searchResultItem struct {
	Text          string         `json:"text"`
	Score         float64        `json:"score"`
	SemanticScore float64        `json:"semantic_score"`
	KeywordScore  float64        `json:"keyword_score"`
	Metadata      map[string]any `json:"metadata,omitempty"`
	Highlighted   string         `json:"highlighted,omitempty"`
}

type searchResponse struct {
	Query       string             `json:"query"`
	Results     []searchResultItem `json:"results"`
	Total       int                `json:"total"`
	QueryTimeMS float64            `json:"query_time_ms"`
}

// SearchNotes handles POST /api/v1/search.
func (s *Server) SearchNotes(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	searchReq, err := request.New(req.Query, req.Keywords, mode.Mode(req.Mode), req.Limit, req.Filters)
	if err != nil {
		metrics.SearchRequestsTotal.WithLabelValues("invalid", "rejected").Inc()
		s.handleDomainError(w, err)
		return
	}

	resp, err := s.search.Search(r.Context(), &searchReq)
	if err != nil {
		metrics.SearchRequestsTotal.WithLabelValues(string(searchReq.Mode()), "error").Inc()
		s.handleDomainError(w, err)
		return
	}
	metrics.SearchRequestsTotal.WithLabelValues(string(searchReq.Mode()), "ok").Inc()

	items := make([]searchResultItem, len(resp.Results))
	for i, res := range resp.Results {
		items[i] = searchResultItem{
			Text:          res.Text,
			Score:         res.Score,
			SemanticScore: res.SemanticScore,
			KeywordScore:  res.KeywordScore,
			Metadata:      res.Metadata,
			Highlighted:   res.Highlighted,
		}
	}

	writeJSON(w, http.StatusOK, searchResponse{
		Query:       resp.Query,
		Results:     items,
		Total:       resp.Total,
		QueryTimeMS: resp.QueryTimeMS,
	})
}

type ingestDocument struct {
	Text       string         `json:"text"`
	DocumentID string         `json:"document_id"`
	Metadata   map[string]any `json:"metadata"`
}

type ingestRequest struct {
	Documents []ingestDocument `json:"documents"`
}

type ingestResponse struct {
	Success       bool     `json:"success"`
	Message       string   `json:"message"`
	DocumentCount int      `json:"document_count"`
	ChunkCount    int      `json:"chunk_count"`
	DocumentIDs   []string `json:"document_ids"`
}

// IngestDocuments handles POST /api/v1/documents.
func (s *Server) IngestDocuments(w http.ResponseWriter, r *http.Request) {
	var req ingestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	docs := make([]domain.RawDocument, 0, len(req.Documents))
	for _, d := range req.Documents {
		docs = append(docs, domain.RawDocument{
			Text:       d.Text,
			DocumentID: d.DocumentID,
			Metadata:   d.Metadata,
		})
	}

	receipt, ids, err := s.ingest.Ingest(r.Context(), docs)
	if err != nil {
		metrics.IngestedDocumentsTotal.WithLabelValues("error").Add(float64(len(docs)))
		s.handleDomainError(w, err)
		return
	}
	metrics.IngestedDocumentsTotal.WithLabelValues("ok").Add(float64(receipt.DocumentCount))

	writeJSON(w, http.StatusOK, ingestResponse{
		Success:       receipt.Success,
		Message:       receipt.Message,
		DocumentCount: receipt.DocumentCount,
		ChunkCount:    receipt.ChunkCount,
		DocumentIDs:   ids,
	})
}

type documentChunkItem struct {
	Text     string         `json:"text"`
	Metadata map[string]any `json:"metadata,omitempty"`
	ChunkID  string         `json:"chunk_id"`
}

type documentResponse struct {
	Metadata map[string]any      `json:"metadata"`
	Chunks   []documentChunkItem `json:"chunks"`
}

// GetDocument handles GET /api/v1/documents/{id}.
func (s *Server) GetDocument(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	doc, err := s.documents.Get(r.Context(), id)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	chunks := make([]documentChunkItem, len(doc.Chunks))
	for i, ch := range doc.Chunks {
		chunks[i] = documentChunkItem{
			Text:     ch.Text,
			Metadata: ch.Metadata,
			ChunkID:  ch.ChunkID,
		}
	}

	writeJSON(w, http.StatusOK, documentResponse{
		Metadata: doc.Metadata,
		Chunks:   chunks,
	})
}

// DeleteDocument handles DELETE /api/v1/documents/{id}.
func (s *Server) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := s.documents.Delete(r.Context(), id); err != nil {
		s.handleDomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type documentSummaryItem struct {
	ID         string         `json:"id"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	ChunkCount int            `json:"chunk_count"`
	Preview    string         `json:"preview"`
}

type documentListResponse struct {
	Documents []documentSummaryItem `json:"documents"`
	Total     int                   `json:"total"`
	Page      int                   `json:"page"`
	Limit     int                   `json:"limit"`
	Pages     int                   `json:"pages"`
}

// ListDocuments handles GET /api/v1/documents.
func (s *Server) ListDocuments(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page := queryInt(q.Get("page"))
	limit := queryInt(q.Get("limit"))
	filter := q.Get("filter")

	result, err := s.documents.List(r.Context(), page, limit, filter)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	docs := make([]documentSummaryItem, len(result.Documents))
	for i, d := range result.Documents {
		docs[i] = documentSummaryItem{
			ID:         d.ID,
			Metadata:   d.Metadata,
			ChunkCount: d.ChunkCount,
			Preview:    d.Preview,
		}
	}

	writeJSON(w, http.StatusOK, documentListResponse{
		Documents: docs,
		Total:     result.Total,
		Page:      result.Page,
		Limit:     result.Limit,
		Pages:     result.Pages,
	})
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, healthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func queryInt(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrInvalidQuery,
		domain.ErrEmptyBatch,
		domain.ErrEmptyDocument,
		domain.ErrDocumentNotFound,
		domain.ErrEmbeddingUnavailable,
		domain.ErrBackendUnavailable,
		domain.ErrNoSearchBranch,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}
