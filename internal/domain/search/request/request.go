// Package request holds the validated search query value type.
package request

import (
	"fmt"

	"github.com/clinika/notectx/internal/domain"
	"github.com/clinika/notectx/internal/domain/search/mode"
)

// Search parameter limits.
const (
	// MaxQueryLength is the maximum allowed search query length.
	MaxQueryLength = 4096
	DefaultLimit   = 5
	MaxLimit       = 100
)

// Request is a validated search query. At least one of the semantic query or
// the keyword string is always present.
type Request struct {
	query      string
	keywords   string
	searchMode mode.Mode
	limit      int
	filters    map[string]any
}

// New validates and normalizes search parameters.
// When mode is empty it is derived from the populated inputs: both present
// means hybrid, otherwise the single populated branch. Defaults: limit=5.
func New(
	query, keywords string,
	m mode.Mode,
	limit int,
	filters map[string]any,
) (Request, error) {
	if query == "" && keywords == "" {
		return Request{}, fmt.Errorf("%w: query or keywords is required", domain.ErrInvalidQuery)
	}
	if len(query) > MaxQueryLength {
		return Request{}, fmt.Errorf("%w: query too long (max %d chars)", domain.ErrInvalidQuery, MaxQueryLength)
	}
	if len(keywords) > MaxQueryLength {
		return Request{}, fmt.Errorf("%w: keywords too long (max %d chars)", domain.ErrInvalidQuery, MaxQueryLength)
	}
	if m == "" {
		switch {
		case query != "" && keywords != "":
			m = mode.Hybrid
		case query != "":
			m = mode.Semantic
		default:
			m = mode.Keyword
		}
	}
	if !m.IsValid() {
		return Request{}, fmt.Errorf("%w: invalid search mode %q", domain.ErrInvalidQuery, m)
	}
	if m == mode.Semantic && query == "" {
		return Request{}, fmt.Errorf("%w: semantic mode requires a query", domain.ErrInvalidQuery)
	}
	if m == mode.Keyword && keywords == "" {
		return Request{}, fmt.Errorf("%w: keyword mode requires keywords", domain.ErrInvalidQuery)
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	return Request{
		query:      query,
		keywords:   keywords,
		searchMode: m,
		limit:      limit,
		filters:    filters,
	}, nil
}

// Query returns the semantic query text (may be empty in keyword mode).
func (r *Request) Query() string { return r.query }

// Keywords returns the keyword string (may be empty in semantic mode).
func (r *Request) Keywords() string { return r.keywords }

// Mode returns the search strategy.
func (r *Request) Mode() mode.Mode { return r.searchMode }

// Limit returns the maximum results to return.
func (r *Request) Limit() int { return r.limit }

// Filters returns the opaque filter constraints passed through to backends.
func (r *Request) Filters() map[string]any { return r.filters }

// HighlightText returns the text used for highlighting: the semantic query,
// or the keyword string when no semantic query was supplied.
func (r *Request) HighlightText() string {
	if r.query != "" {
		return r.query
	}
	return r.keywords
}
