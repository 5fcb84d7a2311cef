package document

import (
	"context"

	"github.com/clinika/notectx/internal/domain"
)

// Repository defines the document store contract for passthrough operations.
type Repository interface {
	Get(ctx context.Context, id string) (domain.StoredDocument, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, page, limit int, filter string) (domain.DocumentPage, error)
}
