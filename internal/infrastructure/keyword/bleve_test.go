package keyword

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/ekipteam/ekip/internal/core/domain"
)

func newTestIndex(t *testing.T) *Index {
	t.Helper()
	idx, err := NewIndex(filepath.Join(t.TempDir(), "keyword.bleve"))
	if err != nil {
		t.Fatalf("NewIndex: %v", err)
	}
	t.Cleanup(func() { idx.Close() })
	return idx
}

func TestSearchReturnsUnfilteredHitsWithFields(t *testing.T) {
	idx := newTestIndex(t)
	ctx := context.Background()

	public := &domain.Document{
		ID: "d1", Title: "Employee Handbook", Department: "HR",
		Classification: domain.ClassificationPublic,
	}
	restricted := &domain.Document{
		ID: "d2", Title: "Salary Bands", Department: "HR",
		Classification: domain.ClassificationRestricted,
	}
	if err := idx.ReplaceDocument(ctx, public, []string{"vacation policy for employees"}); err != nil {
		t.Fatalf("ReplaceDocument: %v", err)
	}
	if err := idx.ReplaceDocument(ctx, restricted, []string{"vacation payout salary rules"}); err != nil {
		t.Fatalf("ReplaceDocument: %v", err)
	}

	hits, err := idx.Search(ctx, "vacation", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(hits) != 2 {
		t.Fatalf("expected both chunks regardless of classification, got %d", len(hits))
	}

	byDoc := map[string]domain.Candidate{}
	for _, hit := range hits {
		byDoc[hit.DocID] = hit
	}
	got, ok := byDoc["d2"]
	if !ok {
		t.Fatalf("restricted chunk missing from raw hits")
	}
	if got.Classification != domain.ClassificationRestricted || got.Department != "HR" {
		t.Fatalf("unexpected candidate: %+v", got)
	}
	if got.ChunkIndex != 0 || got.Source != domain.SourceKeyword {
		t.Fatalf("unexpected candidate: %+v", got)
	}
	if got.Score <= 0 {
		t.Fatalf("expected positive score, got %f", got.Score)
	}
}

func TestSearchOverFetchesTwiceTheLimit(t *testing.T) {
	idx := newTestIndex(t)
	ctx := context.Background()

	for _, doc := range []*domain.Document{
		{ID: "a", Title: "A", Department: "HR", Classification: domain.ClassificationPublic},
		{ID: "b", Title: "B", Department: "HR", Classification: domain.ClassificationPublic},
		{ID: "c", Title: "C", Department: "HR", Classification: domain.ClassificationPublic},
	} {
		chunks := []string{"onboarding checklist one", "onboarding checklist two"}
		if err := idx.ReplaceDocument(ctx, doc, chunks); err != nil {
			t.Fatalf("ReplaceDocument: %v", err)
		}
	}

	hits, err := idx.Search(ctx, "onboarding", 2)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(hits) != 4 {
		t.Fatalf("expected 4 hits (2x limit), got %d", len(hits))
	}
}

func TestReplaceDocumentDropsStaleChunks(t *testing.T) {
	idx := newTestIndex(t)
	ctx := context.Background()

	doc := &domain.Document{
		ID: "d1", Title: "Runbook", Department: "Engineering",
		Classification: domain.ClassificationPublic,
	}
	if err := idx.ReplaceDocument(ctx, doc, []string{
		"deployment steps", "rollback obsoleteword instructions",
	}); err != nil {
		t.Fatalf("ReplaceDocument: %v", err)
	}

	if err := idx.ReplaceDocument(ctx, doc, []string{"deployment steps revised"}); err != nil {
		t.Fatalf("ReplaceDocument: %v", err)
	}

	hits, err := idx.Search(ctx, "obsoleteword", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(hits) != 0 {
		t.Fatalf("stale chunk still indexed: %+v", hits)
	}

	hits, err = idx.Search(ctx, "deployment", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(hits) != 1 {
		t.Fatalf("expected 1 fresh chunk, got %d", len(hits))
	}
}

func TestSearchMatchesTitleField(t *testing.T) {
	idx := newTestIndex(t)
	ctx := context.Background()

	doc := &domain.Document{
		ID: "d3", Title: "Quarterly Compensation Review", Department: "HR",
		Classification: domain.ClassificationRestricted,
	}
	if err := idx.ReplaceDocument(ctx, doc, []string{"details inside"}); err != nil {
		t.Fatalf("ReplaceDocument: %v", err)
	}

	hits, err := idx.Search(ctx, "compensation", 5)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(hits) != 1 || hits[0].DocID != "d3" {
		t.Fatalf("title match failed: %+v", hits)
	}
}

func TestSearchHonorsCanceledContext(t *testing.T) {
	idx := newTestIndex(t)

	doc := &domain.Document{
		ID: "d4", Title: "Onboarding Guide", Department: "HR",
		Classification: domain.ClassificationPublic,
	}
	if err := idx.ReplaceDocument(context.Background(), doc, []string{"first week checklist"}); err != nil {
		t.Fatalf("ReplaceDocument: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := idx.Search(ctx, "checklist", 5); err == nil {
		t.Fatalf("expected error from canceled context")
	}
}

func TestNewIndexHoldsExclusiveLock(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keyword.bleve")
	first, err := NewIndex(path)
	if err != nil {
		t.Fatalf("NewIndex: %v", err)
	}
	t.Cleanup(func() { first.Close() })

	opened := make(chan struct{})
	go func() {
		second, err := NewIndex(path)
		if err == nil {
			second.Close()
		}
		close(opened)
	}()

	// A second open on the same directory must not succeed while the
	// first holds it; exactly one process may own the index.
	select {
	case <-opened:
		t.Fatalf("second open succeeded while the index was held")
	case <-time.After(200 * time.Millisecond):
	}
}
