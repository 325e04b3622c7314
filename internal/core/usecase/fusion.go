package usecase

import (
	"fmt"
	"sort"

	"github.com/ekipteam/ekip/internal/core/domain"
)

const (
	defaultRRFK  = 60
	defaultAlpha = 0.7

	// Fallback merge key width when a backend record carries no chunk index.
	fuseKeyPrefixChars = 50
)

// normalizeScores min-max scales each backend's raw scores to [0,1] in place.
// A zero score range normalizes every member to 1.0; an empty list is a no-op.
// The normalized value is only a display fallback: fusion overwrites Score
// with the fused score and never reads the normalized one.
func normalizeScores(list []domain.Candidate) []domain.Candidate {
	if len(list) == 0 {
		return list
	}
	minScore, maxScore := list[0].Score, list[0].Score
	for _, c := range list[1:] {
		if c.Score < minScore {
			minScore = c.Score
		}
		if c.Score > maxScore {
			maxScore = c.Score
		}
	}
	scoreRange := maxScore - minScore
	for i := range list {
		if scoreRange > 0 {
			list[i].Score = (list[i].Score - minScore) / scoreRange
		} else {
			list[i].Score = 1.0
		}
	}
	return list
}

// fuseCandidatesRRF merges the two already-filtered backend lists with
// reciprocal rank fusion: each item contributes 1/(k+rank) per list it
// appears in, rank 0-based, and the fused score is
// alpha*vec + (1-alpha)*keyword. Items missing from a backend contribute 0
// for it. Duplicates are merged by (doc id, chunk index); ties keep
// first-seen order, vector members first.
func fuseCandidatesRRF(vector, keyword []domain.Candidate, alpha float64, k int) []domain.Candidate {
	if k <= 0 {
		k = defaultRRFK
	}
	if alpha <= 0 || alpha > 1 {
		alpha = defaultAlpha
	}

	index := make(map[string]int, len(vector)+len(keyword))
	fused := make([]domain.Candidate, 0, len(vector)+len(keyword))

	addList := func(list []domain.Candidate, fromVector bool) {
		for rank, c := range list {
			key := fuseKey(c)
			i, ok := index[key]
			if !ok {
				i = len(fused)
				index[key] = i
				fused = append(fused, c)
			}
			contribution := 1.0 / float64(k+rank)
			if fromVector {
				fused[i].VecRRF = contribution
			} else {
				fused[i].KeywordRRF = contribution
			}
		}
	}

	addList(vector, true)
	addList(keyword, false)

	for i := range fused {
		fused[i].Fused = alpha*fused[i].VecRRF + (1-alpha)*fused[i].KeywordRRF
		fused[i].Score = fused[i].Fused
	}

	sort.SliceStable(fused, func(i, j int) bool {
		return fused[i].Fused > fused[j].Fused
	})
	return fused
}

// fuseKey identifies the same passage across backends. Records without a
// chunk index fall back to the text prefix, which can mismerge distinct
// chunks sharing a prefix; both backends populate ChunkIndex so the fallback
// is a safety net only.
func fuseKey(c domain.Candidate) string {
	if c.ChunkIndex >= 0 {
		return fmt.Sprintf("%s:%d", c.DocID, c.ChunkIndex)
	}
	return c.DocID + "|" + truncateRunes(c.Text, fuseKeyPrefixChars)
}

func narrowByDepartment(list []domain.Candidate, department string) []domain.Candidate {
	out := make([]domain.Candidate, 0, len(list))
	for _, c := range list {
		if c.Department == department {
			out = append(out, c)
		}
	}
	return out
}

func trimCandidates(list []domain.Candidate, limit int) []domain.Candidate {
	if limit <= 0 || len(list) <= limit {
		return list
	}
	return list[:limit]
}

func truncateRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
