package usecase

import (
	"sort"

	"github.com/ekipteam/ekip/internal/core/domain"
)

const defaultRerankTopN = 8

// rerankByCrossScore attaches cross-encoder scores to candidates and returns
// them sorted descending, truncated to topN. scores must align with
// candidates by position.
func rerankByCrossScore(candidates []domain.Candidate, scores []float64, topN int) []domain.Candidate {
	if topN <= 0 {
		topN = defaultRerankTopN
	}
	out := make([]domain.Candidate, len(candidates))
	copy(out, candidates)
	for i := range out {
		out[i].RerankScore = scores[i]
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].RerankScore > out[j].RerankScore
	})
	return trimCandidates(out, topN)
}
