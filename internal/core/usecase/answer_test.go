package usecase

import (
	"errors"
	"strings"
	"testing"

	"github.com/ekipteam/ekip/internal/core/domain"
)

func TestMapCitationsDropsOutOfRangeMarkers(t *testing.T) {
	candidates := []domain.Candidate{
		{DocID: "d-1", DocTitle: "One", Text: "first"},
		{DocID: "d-2", DocTitle: "Two", Text: "second"},
		{DocID: "d-3", DocTitle: "Three", Text: "third"},
	}

	citations := mapCitations("See [2] and also [99].", candidates)
	if len(citations) != 1 {
		t.Fatalf("expected exactly 1 citation, got %d", len(citations))
	}
	if citations[0].Marker != 2 || citations[0].DocID != "d-2" {
		t.Fatalf("marker 2 should map to candidate index 1, got %+v", citations[0])
	}
}

func TestMapCitationsDeduplicatesAndSorts(t *testing.T) {
	candidates := []domain.Candidate{
		{DocID: "d-1", DocTitle: "One"},
		{DocID: "d-2", DocTitle: "Two"},
		{DocID: "d-3", DocTitle: "Three"},
	}

	citations := mapCitations("[3] then [1], then [3] again and [1].", candidates)
	if len(citations) != 2 {
		t.Fatalf("expected 2 citations, got %d", len(citations))
	}
	if citations[0].Marker != 1 || citations[1].Marker != 3 {
		t.Fatalf("expected ascending markers [1 3], got [%d %d]", citations[0].Marker, citations[1].Marker)
	}
}

func TestMapCitationsTruncatesPreview(t *testing.T) {
	long := strings.Repeat("x", 1000)
	citations := mapCitations("[1]", []domain.Candidate{{DocID: "d-1", Text: long}})
	if len(citations) != 1 {
		t.Fatalf("expected 1 citation, got %d", len(citations))
	}
	if got := len([]rune(citations[0].ChunkText)); got != citationPreviewChars {
		t.Fatalf("preview length = %d, want %d", got, citationPreviewChars)
	}
}

func TestBuildAnswerPromptNumbersAndTruncatesSources(t *testing.T) {
	long := strings.Repeat("a", 2000)
	candidates := []domain.Candidate{
		{DocTitle: "Handbook", Department: "HR", Text: long},
		{DocTitle: "Runbook", Department: "Engineering", Text: "short text"},
	}

	prompt := buildAnswerPrompt("what is the policy?", candidates)
	if !strings.Contains(prompt, "[1] (Handbook — HR dept): ") {
		t.Fatalf("prompt missing numbered first source:\n%s", prompt)
	}
	if !strings.Contains(prompt, "[2] (Runbook — Engineering dept): short text") {
		t.Fatalf("prompt missing second source:\n%s", prompt)
	}
	if strings.Contains(prompt, strings.Repeat("a", sourceTextChars+1)) {
		t.Fatalf("source text was not truncated to %d chars", sourceTextChars)
	}
	if !strings.Contains(prompt, "what is the policy?") {
		t.Fatalf("prompt missing the question")
	}
}

func TestFallbackAnswerShowsTopCandidate(t *testing.T) {
	candidates := []domain.Candidate{
		{DocTitle: "Sales Playbook", Text: "the playbook content"},
		{DocTitle: "Other", Text: "other"},
	}

	answer := fallbackAnswer(candidates, errors.New("model exploded"))
	if !strings.Contains(answer, "model exploded") {
		t.Fatalf("fallback answer missing error message:\n%s", answer)
	}
	if !strings.Contains(answer, "Sales Playbook") || !strings.Contains(answer, "the playbook content") {
		t.Fatalf("fallback answer missing top candidate:\n%s", answer)
	}
	if !strings.Contains(answer, "2 relevant passages") {
		t.Fatalf("fallback answer missing passage count:\n%s", answer)
	}
}

func TestRerankByCrossScoreOrdersAndTruncates(t *testing.T) {
	candidates := []domain.Candidate{
		{DocID: "a", ChunkIndex: 0},
		{DocID: "b", ChunkIndex: 0},
		{DocID: "c", ChunkIndex: 0},
	}
	scores := []float64{0.1, 0.9, 0.5}

	out := rerankByCrossScore(candidates, scores, 2)
	if len(out) != 2 {
		t.Fatalf("expected truncation to 2, got %d", len(out))
	}
	if out[0].DocID != "b" || out[1].DocID != "c" {
		t.Fatalf("unexpected rerank order: %s, %s", out[0].DocID, out[1].DocID)
	}
	if out[0].RerankScore != 0.9 {
		t.Fatalf("rerank score not attached: %+v", out[0])
	}
}
