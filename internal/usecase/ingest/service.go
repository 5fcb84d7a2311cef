// Package ingest normalizes caller-submitted documents and hands them to the
// document store for indexing.
package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/clinika/notectx/internal/domain"
)

// DefaultMaxBatchSize caps how many documents one ingestion request may carry.
const DefaultMaxBatchSize = 100

// Service normalizes raw documents into store-ready batches: it resolves
// canonical document identifiers, merges them into metadata, and submits the
// batch. The normalization step performs no I/O.
type Service struct {
	store        DocumentStore
	maxBatchSize int
	now          func() time.Time
}

// New creates an ingestion service.
func New(store DocumentStore) *Service {
	return &Service{
		store:        store,
		maxBatchSize: DefaultMaxBatchSize,
		now:          time.Now,
	}
}

// WithMaxBatchSize overrides the batch size cap.
func (s *Service) WithMaxBatchSize(n int) *Service {
	if n > 0 {
		s.maxBatchSize = n
	}
	return s
}

// Normalize validates the batch and resolves document identifiers without
// touching any backend. Every returned document carries its identifier both
// in the DocumentID field and under the doc_id metadata key.
func (s *Service) Normalize(docs []domain.RawDocument) ([]domain.IngestionDocument, error) {
	if len(docs) == 0 {
		return nil, fmt.Errorf("%w: batch contains no documents", domain.ErrEmptyBatch)
	}
	if len(docs) > s.maxBatchSize {
		return nil, fmt.Errorf("%w: batch exceeds %d documents", domain.ErrEmptyBatch, s.maxBatchSize)
	}

	normalized := make([]domain.IngestionDocument, len(docs))
	for i, raw := range docs {
		if raw.Text == "" {
			return nil, fmt.Errorf("%w: document %d", domain.ErrEmptyDocument, i)
		}

		id := raw.DocumentID
		if id == "" {
			id = newDocumentID(s.now())
		}

		// Copy metadata so the caller's map is never mutated.
		metadata := make(map[string]any, len(raw.Metadata)+1)
		for k, v := range raw.Metadata {
			metadata[k] = v
		}
		metadata[domain.MetadataDocID] = id

		normalized[i] = domain.IngestionDocument{
			Text:       raw.Text,
			DocumentID: id,
			Metadata:   metadata,
		}
	}
	return normalized, nil
}

// Ingest normalizes the batch and submits it to the document store. Returns
// the store receipt and the resolved identifiers in input order.
func (s *Service) Ingest(
	ctx context.Context, docs []domain.RawDocument,
) (domain.IngestReceipt, []string, error) {
	normalized, err := s.Normalize(docs)
	if err != nil {
		return domain.IngestReceipt{}, nil, err
	}

	receipt, err := s.store.IngestBatch(ctx, normalized)
	if err != nil {
		return domain.IngestReceipt{}, nil, fmt.Errorf("ingest batch: %w", err)
	}

	ids := make([]string, len(normalized))
	for i, doc := range normalized {
		ids[i] = doc.DocumentID
	}
	return receipt, ids, nil
}
