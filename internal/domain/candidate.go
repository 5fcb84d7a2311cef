package domain

// MetadataDocID is the metadata key under which the document identifier travels.
// Both backends and the ingestion path agree on this key, so the identity of a
// candidate can always be recovered from metadata alone.
const MetadataDocID = "doc_id"

// Candidate is a single retrieval hit from one backend. Scores are on the
// backend's own scale; fusion assumes comparable nominal ranges and does not
// rescale. ChunkID may be empty — some backends only carry the document
// identifier inside metadata.
type Candidate struct {
	Text     string
	Score    float64
	Metadata map[string]any
	ChunkID  string
}

// Identity returns the canonical identity key for the candidate: the chunk
// identifier if present, else the doc_id metadata field. Returns ok=false when
// neither is available; the caller must assign a fallback key so the candidate
// survives fusion as an unmatched entry instead of being dropped.
func (c *Candidate) Identity() (key string, ok bool) {
	if c.ChunkID != "" {
		return c.ChunkID, true
	}
	if c.Metadata != nil {
		if id, found := c.Metadata[MetadataDocID]; found {
			if s, isString := id.(string); isString && s != "" {
				return s, true
			}
		}
	}
	return "", false
}

// SearchPage is one backend's candidate list plus optional response metadata.
type SearchPage struct {
	Candidates   []Candidate
	TotalMatches int
	QueryTimeMS  float64
}

// FusedResult is a candidate after score fusion. Constituent scores are zero
// when the candidate was absent from that branch.
type FusedResult struct {
	Key           string
	CombinedScore float64
	SemanticScore float64
	KeywordScore  float64
	Text          string
	Metadata      map[string]any
}
