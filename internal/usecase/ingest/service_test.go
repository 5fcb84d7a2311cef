package ingest

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/clinika/notectx/internal/domain"
)

type mockStore struct {
	receipt  domain.IngestReceipt
	err      error
	calls    int
	lastDocs []domain.IngestionDocument
}

func (m *mockStore) IngestBatch(
	_ context.Context, docs []domain.IngestionDocument,
) (domain.IngestReceipt, error) {
	m.calls++
	m.lastDocs = docs
	return m.receipt, m.err
}

func TestNormalize_GeneratesIdentifier(t *testing.T) {
	svc := New(&mockStore{})

	docs, err := svc.Normalize([]domain.RawDocument{{Text: "hello"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(docs) != 1 {
		t.Fatalf("expected 1 document, got %d", len(docs))
	}

	doc := docs[0]
	if doc.DocumentID == "" {
		t.Fatal("expected a generated document id")
	}
	if !strings.HasPrefix(doc.DocumentID, "doc-") {
		t.Errorf("expected doc- prefix, got %q", doc.DocumentID)
	}
	if doc.Metadata[domain.MetadataDocID] != doc.DocumentID {
		t.Errorf("metadata doc_id %v must match resolved id %q",
			doc.Metadata[domain.MetadataDocID], doc.DocumentID)
	}
}

func TestNormalize_GeneratedIdentifiersDiffer(t *testing.T) {
	svc := New(&mockStore{})
	docs, err := svc.Normalize([]domain.RawDocument{{Text: "a"}, {Text: "b"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if docs[0].DocumentID == docs[1].DocumentID {
		t.Errorf("generated ids must differ, both %q", docs[0].DocumentID)
	}
}

func TestNormalize_IDCarriesTimestampPrefix(t *testing.T) {
	svc := New(&mockStore{})
	svc.now = func() time.Time {
		return time.Date(2026, 3, 14, 15, 9, 26, 0, time.UTC)
	}

	docs, err := svc.Normalize([]domain.RawDocument{{Text: "hello"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(docs[0].DocumentID, "doc-20260314150926-") {
		t.Errorf("expected timestamp prefix, got %q", docs[0].DocumentID)
	}
}

func TestNormalize_KeepsCallerIdentifier(t *testing.T) {
	svc := New(&mockStore{})

	docs, err := svc.Normalize([]domain.RawDocument{{
		Text:       "note text",
		DocumentID: "ehr-note-42",
		Metadata:   map[string]any{"note_type": "progress_note"},
	}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	doc := docs[0]
	if doc.DocumentID != "ehr-note-42" {
		t.Errorf("caller id must be kept, got %q", doc.DocumentID)
	}
	if doc.Metadata[domain.MetadataDocID] != "ehr-note-42" {
		t.Errorf("metadata doc_id must carry caller id, got %v", doc.Metadata[domain.MetadataDocID])
	}
	if doc.Metadata["note_type"] != "progress_note" {
		t.Error("caller metadata must be preserved")
	}
}

func TestNormalize_DoesNotMutateCallerMetadata(t *testing.T) {
	caller := map[string]any{"note_type": "consultation"}
	svc := New(&mockStore{})

	if _, err := svc.Normalize([]domain.RawDocument{{Text: "t", Metadata: caller}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, leaked := caller[domain.MetadataDocID]; leaked {
		t.Error("normalizer must not write into the caller's metadata map")
	}
}

func TestNormalize_EmptyTextRejected(t *testing.T) {
	svc := New(&mockStore{})

	_, err := svc.Normalize([]domain.RawDocument{
		{Text: "fine"},
		{Text: ""},
	})
	if !errors.Is(err, domain.ErrEmptyDocument) {
		t.Fatalf("expected ErrEmptyDocument, got %v", err)
	}
}

func TestIngest_EmptyBatchRejectedBeforeBackendCall(t *testing.T) {
	store := &mockStore{}
	svc := New(store)

	_, _, err := svc.Ingest(context.Background(), nil)
	if !errors.Is(err, domain.ErrEmptyBatch) {
		t.Fatalf("expected ErrEmptyBatch, got %v", err)
	}
	if store.calls != 0 {
		t.Errorf("store must not be called for an invalid batch, got %d calls", store.calls)
	}
}

func TestIngest_OversizedBatchRejected(t *testing.T) {
	store := &mockStore{}
	svc := New(store).WithMaxBatchSize(2)

	batch := []domain.RawDocument{{Text: "a"}, {Text: "b"}, {Text: "c"}}
	if _, _, err := svc.Ingest(context.Background(), batch); err == nil {
		t.Fatal("expected oversized batch to be rejected")
	}
	if store.calls != 0 {
		t.Error("store must not be called for an oversized batch")
	}
}

func TestIngest_ReturnsResolvedIDsInOrder(t *testing.T) {
	store := &mockStore{receipt: domain.IngestReceipt{Success: true, DocumentCount: 2}}
	svc := New(store)

	receipt, ids, err := svc.Ingest(context.Background(), []domain.RawDocument{
		{Text: "first", DocumentID: "id-1"},
		{Text: "second"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !receipt.Success {
		t.Error("expected success receipt")
	}
	if len(ids) != 2 || ids[0] != "id-1" || ids[1] == "" {
		t.Fatalf("unexpected ids %v", ids)
	}
	if store.lastDocs[1].DocumentID != ids[1] {
		t.Error("returned id must match the submitted document")
	}
}

func TestIngest_StoreFailureSurfaced(t *testing.T) {
	store := &mockStore{err: domain.ErrBackendUnavailable}
	svc := New(store)

	_, _, err := svc.Ingest(context.Background(), []domain.RawDocument{{Text: "t"}})
	if !errors.Is(err, domain.ErrBackendUnavailable) {
		t.Fatalf("expected store error surfaced, got %v", err)
	}
}
