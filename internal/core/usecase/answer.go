package usecase

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/ekipteam/ekip/internal/core/domain"
)

const (
	sourceTextChars      = 600
	citationPreviewChars = 300
	fallbackErrorChars   = 200
	fallbackTextChars    = 500
)

const noDocumentsAnswer = "I couldn't find any relevant documents to answer your question."

const answerPromptTemplate = `You are an internal knowledge base assistant.
Answer the question ONLY using the context provided below.
If the context does not contain enough information to answer, say "I don't have enough information to answer this question based on the available documents."

Include citations like [1], [2] referring to the numbered sources below.
Be concise but thorough. Use bullet points where appropriate.

Question: %s

Sources:
%s

Answer:`

var citationMarkerPattern = regexp.MustCompile(`\[(\d+)\]`)

func buildAnswerPrompt(question string, candidates []domain.Candidate) string {
	lines := make([]string, 0, len(candidates))
	for i, c := range candidates {
		lines = append(lines, fmt.Sprintf(
			"[%d] (%s — %s dept): %s",
			i+1, c.DocTitle, c.Department, truncateRunes(c.Text, sourceTextChars),
		))
	}
	return fmt.Sprintf(answerPromptTemplate, question, strings.Join(lines, "\n\n"))
}

// fallbackAnswer is returned when the language model call fails. The request
// still succeeds: the caller gets the failure note plus the top passage.
func fallbackAnswer(candidates []domain.Candidate, err error) string {
	top := candidates[0]
	return fmt.Sprintf(
		"[LLM unavailable — showing search results only]\n\n"+
			"I found %d relevant passages but couldn't generate an AI summary. Error: %s\n\n"+
			"Top result from '%s':\n%s",
		len(candidates),
		truncateRunes(err.Error(), fallbackErrorChars),
		top.DocTitle,
		truncateRunes(top.Text, fallbackTextChars),
	)
}

// mapCitations extracts every [N] marker from the answer, deduplicates and
// sorts them, and maps each 1-based marker to its candidate. Markers outside
// the candidate range are silently dropped.
func mapCitations(answer string, candidates []domain.Candidate) []domain.Citation {
	seen := make(map[int]struct{})
	markers := make([]int, 0, 8)
	for _, match := range citationMarkerPattern.FindAllStringSubmatch(answer, -1) {
		n, err := strconv.Atoi(match[1])
		if err != nil {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		markers = append(markers, n)
	}
	sort.Ints(markers)

	citations := make([]domain.Citation, 0, len(markers))
	for _, marker := range markers {
		idx := marker - 1
		if idx < 0 || idx >= len(candidates) {
			continue
		}
		c := candidates[idx]
		citations = append(citations, domain.Citation{
			Marker:     marker,
			DocTitle:   c.DocTitle,
			DocID:      c.DocID,
			Department: c.Department,
			ChunkText:  truncateRunes(c.Text, citationPreviewChars),
		})
	}
	return citations
}
