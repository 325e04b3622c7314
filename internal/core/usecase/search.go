package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/ekipteam/ekip/internal/core/domain"
	"github.com/ekipteam/ekip/internal/core/ports"
)

// SearchConfig carries the tuning knobs of the retrieval pipeline.
// Zero values fall back to the defaults below.
type SearchConfig struct {
	TopK           int
	Alpha          float64
	RRFK           int
	RerankTopN     int
	BackendTimeout time.Duration
	LLMTimeout     time.Duration
}

func (c SearchConfig) normalize() SearchConfig {
	out := c
	if out.TopK <= 0 {
		out.TopK = 20
	}
	if out.Alpha <= 0 || out.Alpha > 1 {
		out.Alpha = defaultAlpha
	}
	if out.RRFK <= 0 {
		out.RRFK = defaultRRFK
	}
	if out.RerankTopN <= 0 {
		out.RerankTopN = defaultRerankTopN
	}
	if out.BackendTimeout <= 0 {
		out.BackendTimeout = 10 * time.Second
	}
	if out.LLMTimeout <= 0 {
		out.LLMTimeout = 60 * time.Second
	}
	return out
}

type SearchUseCase struct {
	embedder     ports.Embedder
	vector       ports.VectorStore
	keyword      ports.KeywordIndex
	crossEncoder ports.CrossEncoder
	llm          ports.LLM
	audit        ports.AuditLog
	cfg          SearchConfig
}

func NewSearchUseCase(
	embedder ports.Embedder,
	vector ports.VectorStore,
	keyword ports.KeywordIndex,
	crossEncoder ports.CrossEncoder,
	llm ports.LLM,
	audit ports.AuditLog,
	cfg SearchConfig,
) *SearchUseCase {
	return &SearchUseCase{
		embedder:     embedder,
		vector:       vector,
		keyword:      keyword,
		crossEncoder: crossEncoder,
		llm:          llm,
		audit:        audit,
		cfg:          cfg.normalize(),
	}
}

// Search runs the permission-aware hybrid pipeline: both backends queried
// concurrently with the applicable filter, keyword hits post-filtered, lists
// normalized and fused with RRF, the fused head reranked, and a grounded
// answer composed. Backend failures degrade to empty lists; only invalid
// input is an error here.
func (uc *SearchUseCase) Search(
	ctx context.Context,
	user domain.UserContext,
	query, departmentFilter string,
) (*domain.SearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "search", errors.New("query is required"))
	}
	start := time.Now()

	filter := vectorAccessFilter(user)

	var (
		wg      sync.WaitGroup
		vecHits []domain.Candidate
		kwHits  []domain.Candidate
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		vecHits = uc.vectorCandidates(ctx, query, filter)
	}()
	go func() {
		defer wg.Done()
		kwHits = uc.keywordCandidates(ctx, query)
	}()
	wg.Wait()

	kwHits = filterKeywordHits(kwHits, user, departmentFilter, uc.cfg.TopK)

	vecHits = normalizeScores(vecHits)
	kwHits = normalizeScores(kwHits)

	fused := fuseCandidatesRRF(vecHits, kwHits, uc.cfg.Alpha, uc.cfg.RRFK)
	if departmentFilter != "" {
		fused = narrowByDepartment(fused, departmentFilter)
	}
	fused = trimCandidates(fused, uc.cfg.TopK)

	ranked := uc.rerankCandidates(ctx, query, fused)

	answerText, citations, fallback := uc.composeAnswer(ctx, query, ranked)

	uc.recordAudit(ctx, user, query, ranked)

	return &domain.SearchResult{
		Answer:      answerText,
		Citations:   citations,
		LatencyMs:   time.Since(start).Milliseconds(),
		ChunksFound: len(fused),
		Fallback:    fallback,
	}, nil
}

// vectorCandidates embeds the query (once per request, no cache) and runs the
// natively filtered vector search. Any failure degrades to zero candidates.
func (uc *SearchUseCase) vectorCandidates(ctx context.Context, query string, filter *domain.AccessFilter) []domain.Candidate {
	callCtx, cancel := context.WithTimeout(ctx, uc.cfg.BackendTimeout)
	defer cancel()

	queryVector, err := uc.embedder.EmbedQuery(callCtx, query)
	if err != nil {
		slog.Warn("search_backend_degraded", "backend", domain.SourceVector, "stage", "embed_query", "error", err)
		return nil
	}

	hits, err := uc.vector.Search(callCtx, queryVector, filter, uc.cfg.TopK)
	if err != nil {
		slog.Warn("search_backend_degraded", "backend", domain.SourceVector, "stage", "search", "error", err)
		return nil
	}
	return hits
}

// keywordCandidates returns raw over-fetched keyword hits; the caller must
// post-filter them before use.
func (uc *SearchUseCase) keywordCandidates(ctx context.Context, query string) []domain.Candidate {
	callCtx, cancel := context.WithTimeout(ctx, uc.cfg.BackendTimeout)
	defer cancel()

	hits, err := uc.keyword.Search(callCtx, query, uc.cfg.TopK)
	if err != nil {
		slog.Warn("search_backend_degraded", "backend", domain.SourceKeyword, "stage", "search", "error", err)
		return nil
	}
	return hits
}

// rerankCandidates runs one batched cross-encoder call over the fused head.
// An empty input short-circuits without touching the model; a model failure
// keeps the fused ordering, truncated to the rerank window.
func (uc *SearchUseCase) rerankCandidates(ctx context.Context, query string, candidates []domain.Candidate) []domain.Candidate {
	if len(candidates) == 0 {
		return candidates
	}

	callCtx, cancel := context.WithTimeout(ctx, uc.cfg.BackendTimeout)
	defer cancel()

	passages := make([]string, len(candidates))
	for i, c := range candidates {
		passages[i] = c.Text
	}

	scores, err := uc.crossEncoder.Predict(callCtx, query, passages)
	if err != nil || len(scores) != len(candidates) {
		slog.Warn("search_backend_degraded", "backend", "reranker", "error", err, "scores", len(scores))
		return trimCandidates(candidates, uc.cfg.RerankTopN)
	}
	return rerankByCrossScore(candidates, scores, uc.cfg.RerankTopN)
}

// composeAnswer builds the grounded prompt and invokes the language model.
// An empty candidate list returns the fixed no-documents answer without a
// model call; a model failure degrades to the fallback answer.
func (uc *SearchUseCase) composeAnswer(ctx context.Context, question string, ranked []domain.Candidate) (string, []domain.Citation, bool) {
	if len(ranked) == 0 {
		return noDocumentsAnswer, []domain.Citation{}, false
	}

	callCtx, cancel := context.WithTimeout(ctx, uc.cfg.LLMTimeout)
	defer cancel()

	answerText, err := uc.llm.Generate(callCtx, buildAnswerPrompt(question, ranked))
	if err != nil {
		slog.Warn("answer_generation_fallback", "error", err)
		answerText = fallbackAnswer(ranked, err)
		return answerText, mapCitations(answerText, ranked), true
	}
	return answerText, mapCitations(answerText, ranked), false
}

func (uc *SearchUseCase) recordAudit(ctx context.Context, user domain.UserContext, query string, ranked []domain.Candidate) {
	seen := make(map[string]struct{}, len(ranked))
	docIDs := make([]string, 0, len(ranked))
	for _, c := range ranked {
		if _, ok := seen[c.DocID]; ok {
			continue
		}
		seen[c.DocID] = struct{}{}
		docIDs = append(docIDs, c.DocID)
	}

	err := uc.audit.Record(ctx, domain.AuditEntry{
		UserID:    user.UserID,
		QueryText: query,
		DocIDs:    docIDs,
		Timestamp: time.Now().UTC(),
		Allowed:   true,
	})
	if err != nil {
		slog.Warn("audit_record_failed", "user_id", user.UserID, "error", err)
	}
}
