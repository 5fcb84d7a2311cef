// Package document proxies document retrieval, deletion, and listing to the
// backing store.
package document

import (
	"context"
	"fmt"

	"github.com/clinika/notectx/internal/domain"
)

// Service handles document passthrough operations.
type Service struct {
	repo            Repository
	defaultPageSize int
	maxPageSize     int
}

// New creates a document service.
func New(repo Repository) *Service {
	return &Service{
		repo:            repo,
		defaultPageSize: 20,
		maxPageSize:     100,
	}
}

// WithPagination configures page size limits.
func (s *Service) WithPagination(defaultPageSize, maxPageSize int) *Service {
	if defaultPageSize > 0 {
		s.defaultPageSize = defaultPageSize
	}
	if maxPageSize > 0 {
		s.maxPageSize = maxPageSize
	}
	return s
}

// Get retrieves a document with its chunks by ID.
func (s *Service) Get(ctx context.Context, id string) (domain.StoredDocument, error) {
	if id == "" {
		return domain.StoredDocument{}, fmt.Errorf("%w: id is required", domain.ErrDocumentNotFound)
	}
	doc, err := s.repo.Get(ctx, id)
	if err != nil {
		return domain.StoredDocument{}, fmt.Errorf("get document: %w", err)
	}
	return doc, nil
}

// Delete removes a document and its chunks.
func (s *Service) Delete(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("%w: id is required", domain.ErrDocumentNotFound)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	return nil
}

// List returns a page of document summaries, optionally filtered.
func (s *Service) List(ctx context.Context, page, limit int, filter string) (domain.DocumentPage, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = s.defaultPageSize
	}
	if limit > s.maxPageSize {
		limit = s.maxPageSize
	}

	result, err := s.repo.List(ctx, page, limit, filter)
	if err != nil {
		return domain.DocumentPage{}, fmt.Errorf("list documents: %w", err)
	}
	return result, nil
}
