package search

import (
	"fmt"
	"sort"

	"github.com/clinika/notectx/internal/domain"
)

// Default fusion weights. They need not sum to exactly 1, but must be
// non-negative and sum to at most 1.
const (
	DefaultSemanticWeight = 0.7
	DefaultKeywordWeight  = 0.3
)

// Weights holds the linear score-fusion coefficients.
type Weights struct {
	Semantic float64
	Keyword  float64
}

// DefaultWeights returns the standard 0.7/0.3 fusion weighting.
func DefaultWeights() Weights {
	return Weights{Semantic: DefaultSemanticWeight, Keyword: DefaultKeywordWeight}
}

// Validate checks that both weights are non-negative and sum to at most 1.
func (w Weights) Validate() error {
	if w.Semantic < 0 || w.Keyword < 0 {
		return fmt.Errorf("fusion weights must be non-negative, got %v/%v", w.Semantic, w.Keyword)
	}
	if w.Semantic+w.Keyword > 1 {
		return fmt.Errorf("fusion weights must sum to at most 1, got %v", w.Semantic+w.Keyword)
	}
	return nil
}

// fuseWeighted merges semantic and keyword candidate lists keyed by identity
// into a single list scored by combined = semantic*Wsem + keyword*Wkw.
// Candidates sharing an identity key collapse into one entry; a candidate
// present in only one list keeps the other constituent score at zero.
// The result is sorted by combined score descending with ties broken by
// first-seen input order, then truncated to limit. Backend scores are assumed
// to share a nominal range; no rescaling happens here.
func fuseWeighted(semantic, keyword []domain.Candidate, w Weights, limit int) []domain.FusedResult {
	if limit <= 0 {
		return nil
	}

	fused := make([]domain.FusedResult, 0, len(semantic)+len(keyword))
	index := make(map[string]int, len(semantic)+len(keyword))

	for i := range semantic {
		c := &semantic[i]
		key := identityOrFallback(c, "semantic", i)
		if _, exists := index[key]; exists {
			continue
		}
		index[key] = len(fused)
		fused = append(fused, domain.FusedResult{
			Key:           key,
			SemanticScore: c.Score,
			CombinedScore: c.Score * w.Semantic,
			Text:          c.Text,
			Metadata:      c.Metadata,
		})
	}

	for i := range keyword {
		c := &keyword[i]
		key := identityOrFallback(c, "keyword", i)
		if pos, exists := index[key]; exists {
			entry := &fused[pos]
			entry.KeywordScore = c.Score
			entry.CombinedScore = entry.SemanticScore*w.Semantic + c.Score*w.Keyword
			continue
		}
		index[key] = len(fused)
		fused = append(fused, domain.FusedResult{
			Key:           key,
			KeywordScore:  c.Score,
			CombinedScore: c.Score * w.Keyword,
			Text:          c.Text,
			Metadata:      c.Metadata,
		})
	}

	// Stable sort preserves first-seen order across equal scores.
	sort.SliceStable(fused, func(i, j int) bool {
		return fused[i].CombinedScore > fused[j].CombinedScore
	})

	if len(fused) > limit {
		fused = fused[:limit]
	}
	return fused
}

// identityOrFallback resolves the candidate's identity key, assigning a
// branch+position key when the candidate carries neither a chunk nor a
// document identifier. The NUL prefix keeps the fallback out of the space of
// real identifiers, so a malformed candidate never merges with another.
func identityOrFallback(c *domain.Candidate, branch string, pos int) string {
	if key, ok := c.Identity(); ok {
		return key
	}
	return fmt.Sprintf("\x00%s:%d", branch, pos)
}
