package ingest

import (
	"context"

	"github.com/clinika/notectx/internal/domain"
)

// DocumentStore accepts normalized document batches for indexing.
type DocumentStore interface {
	IngestBatch(ctx context.Context, docs []domain.IngestionDocument) (domain.IngestReceipt, error)
}
