package search

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/clinika/notectx/internal/domain"
	"github.com/clinika/notectx/internal/domain/search/mode"
	"github.com/clinika/notectx/internal/domain/search/request"
	"github.com/clinika/notectx/internal/logger"
)

// overfetchFactor multiplies the limit on hybrid branch calls so fusion has
// enough material to re-rank before truncating.
const overfetchFactor = 2

// Result is a caller-facing search hit.
type Result struct {
	Text          string
	Score         float64
	SemanticScore float64
	KeywordScore  float64
	Metadata      map[string]any
	Highlighted   string
}

// Response is the full search outcome returned to the transport layer.
type Response struct {
	Query       string
	Results     []Result
	Total       int
	QueryTimeMS float64
}

// Service coordinates query fan-out across the embedding, vector, and keyword
// backends, fuses candidates in hybrid mode, and presents the final list.
// All state is per-request; a single Service is safe for concurrent use.
type Service struct {
	vectors  VectorSearcher
	keywords KeywordSearcher
	embed    Embedder
	weights  Weights
}

// New creates a search service with default fusion weights.
func New(vectors VectorSearcher, keywords KeywordSearcher, embed Embedder) *Service {
	return &Service{
		vectors:  vectors,
		keywords: keywords,
		embed:    embed,
		weights:  DefaultWeights(),
	}
}

// WithWeights overrides the fusion weights.
func (s *Service) WithWeights(w Weights) *Service {
	s.weights = w
	return s
}

// Search executes the request in its mode and presents the ordered results.
func (s *Service) Search(ctx context.Context, req *request.Request) (Response, error) {
	switch req.Mode() {
	case mode.Semantic:
		return s.searchSemantic(ctx, req)
	case mode.Keyword:
		return s.searchKeyword(ctx, req)
	case mode.Hybrid:
		return s.searchHybrid(ctx, req)
	default:
		return Response{}, fmt.Errorf("%w: unsupported search mode %q", domain.ErrInvalidQuery, req.Mode())
	}
}

// searchSemantic embeds the query and runs a single vector search. A backend
// failure fails the whole request in this mode.
func (s *Service) searchSemantic(ctx context.Context, req *request.Request) (Response, error) {
	embResult, err := s.embed.Embed(ctx, req.Query())
	if err != nil {
		return Response{}, fmt.Errorf("vectorize query: %w", err)
	}

	page, err := s.vectors.SearchVector(ctx, embResult.Embedding, req.Limit(), req.Filters())
	if err != nil {
		return Response{}, fmt.Errorf("vector search: %w", err)
	}

	return s.presentRaw(req, page, mode.Semantic), nil
}

// searchKeyword runs a single keyword search. A backend failure fails the
// whole request in this mode.
func (s *Service) searchKeyword(ctx context.Context, req *request.Request) (Response, error) {
	page, err := s.keywords.SearchKeyword(ctx, req.Keywords(), req.Limit(), req.Filters())
	if err != nil {
		return Response{}, fmt.Errorf("keyword search: %w", err)
	}

	return s.presentRaw(req, page, mode.Keyword), nil
}

// branchOutcome is one retrieval branch's settled result: a page or an error,
// or neither when the branch was not requested.
type branchOutcome struct {
	page      domain.SearchPage
	err       error
	attempted bool
}

// searchHybrid runs the embed->vector chain and the keyword search as
// independent branches, joins both, and fuses the candidate lists. A failed
// branch degrades to an empty list; the request errors only when both
// branches were attempted and both failed.
func (s *Service) searchHybrid(ctx context.Context, req *request.Request) (Response, error) {
	k := req.Limit() * overfetchFactor

	var semantic, keyword branchOutcome
	var wg sync.WaitGroup

	if req.Query() != "" {
		semantic.attempted = true
		wg.Add(1)
		go func() {
			defer wg.Done()
			embResult, err := s.embed.Embed(ctx, req.Query())
			if err != nil {
				semantic.err = fmt.Errorf("vectorize query: %w", err)
				return
			}
			page, err := s.vectors.SearchVector(ctx, embResult.Embedding, k, req.Filters())
			if err != nil {
				semantic.err = fmt.Errorf("vector search: %w", err)
				return
			}
			semantic.page = page
		}()
	}

	if req.Keywords() != "" {
		keyword.attempted = true
		wg.Add(1)
		go func() {
			defer wg.Done()
			page, err := s.keywords.SearchKeyword(ctx, req.Keywords(), k, req.Filters())
			if err != nil {
				keyword.err = fmt.Errorf("keyword search: %w", err)
				return
			}
			keyword.page = page
		}()
	}

	// Join point: both branches settle before fusion, the first to finish
	// never short-circuits the other.
	wg.Wait()

	if semantic.attempted && keyword.attempted && semantic.err != nil && keyword.err != nil {
		return Response{}, fmt.Errorf("%w: semantic: %v; keyword: %v",
			domain.ErrNoSearchBranch, semantic.err, keyword.err)
	}

	log := logger.FromContext(ctx)
	if semantic.err != nil {
		log.Warn("semantic branch degraded", zap.Error(semantic.err))
	}
	if keyword.err != nil {
		log.Warn("keyword branch degraded", zap.Error(keyword.err))
	}

	fused := fuseWeighted(semantic.page.Candidates, keyword.page.Candidates, s.weights, req.Limit())

	results := make([]Result, len(fused))
	for i, f := range fused {
		results[i] = Result{
			Text:          f.Text,
			Score:         f.CombinedScore,
			SemanticScore: f.SemanticScore,
			KeywordScore:  f.KeywordScore,
			Metadata:      f.Metadata,
			Highlighted:   highlightTerms(f.Text, req.HighlightText()),
		}
	}

	queryTime := semantic.page.QueryTimeMS
	if queryTime == 0 {
		queryTime = keyword.page.QueryTimeMS
	}

	return Response{
		Query:       req.HighlightText(),
		Results:     results,
		Total:       len(results),
		QueryTimeMS: queryTime,
	}, nil
}

// presentRaw converts a single backend page to a caller-facing response
// without fusion. The constituent score for the executed branch mirrors the
// backend score.
func (s *Service) presentRaw(req *request.Request, page domain.SearchPage, m mode.Mode) Response {
	results := make([]Result, len(page.Candidates))
	for i, c := range page.Candidates {
		r := Result{
			Text:        c.Text,
			Score:       c.Score,
			Metadata:    c.Metadata,
			Highlighted: highlightTerms(c.Text, req.HighlightText()),
		}
		if m == mode.Semantic {
			r.SemanticScore = c.Score
		} else {
			r.KeywordScore = c.Score
		}
		results[i] = r
	}

	total := page.TotalMatches
	if total == 0 {
		total = len(results)
	}

	return Response{
		Query:       req.HighlightText(),
		Results:     results,
		Total:       total,
		QueryTimeMS: page.QueryTimeMS,
	}
}
