package ingest

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// idSuffixLen is how much of the UUID goes into a generated identifier.
// 8 hex characters keep the ID short while the UUID entropy makes collisions
// vanishingly unlikely even under concurrent ingestion.
const idSuffixLen = 8

// newDocumentID generates a document identifier with a human-inspectable UTC
// timestamp prefix and a random suffix.
func newDocumentID(now time.Time) string {
	return fmt.Sprintf("doc-%s-%s", now.UTC().Format("20060102150405"), uuid.NewString()[:idSuffixLen])
}
