package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ekipteam/ekip/internal/core/domain"
	"github.com/ekipteam/ekip/internal/core/ports"
)

type ProcessDocumentUseCase struct {
	repo     ports.DocumentRepository
	parser   ports.DocumentParser
	chunker  ports.Chunker
	embedder ports.Embedder
	vector   ports.VectorStore
	keyword  ports.KeywordIndex
}

func NewProcessDocumentUseCase(
	repo ports.DocumentRepository,
	parser ports.DocumentParser,
	chunker ports.Chunker,
	embedder ports.Embedder,
	vector ports.VectorStore,
	keyword ports.KeywordIndex,
) *ProcessDocumentUseCase {
	return &ProcessDocumentUseCase{
		repo:     repo,
		parser:   parser,
		chunker:  chunker,
		embedder: embedder,
		vector:   vector,
		keyword:  keyword,
	}
}

// ProcessByID runs parse -> chunk -> embed -> index for one registered
// document. Unparseable or empty documents are logged and skipped so the
// batch continues; embedding and indexing failures are returned to the queue
// for redelivery.
func (uc *ProcessDocumentUseCase) ProcessByID(ctx context.Context, documentID string) error {
	doc, err := uc.repo.GetByID(ctx, documentID)
	if err != nil {
		return fmt.Errorf("fetch document by id: %w", err)
	}

	segments, err := uc.parser.Parse(ctx, doc.FilePath)
	if err != nil {
		slog.Warn("document_skipped", "doc_id", doc.ID, "title", doc.Title, "error", err)
		return nil
	}
	if len(segments) == 0 {
		slog.Warn("document_skipped", "doc_id", doc.ID, "title", doc.Title, "reason", "no text extracted")
		return nil
	}

	chunks := uc.chunker.Split(joinSegments(segments))
	if len(chunks) == 0 {
		slog.Warn("document_skipped", "doc_id", doc.ID, "title", doc.Title, "reason", "no chunks produced")
		return nil
	}

	vectors, err := uc.embedder.Embed(ctx, chunks)
	if err != nil {
		return fmt.Errorf("embed chunks: %w", err)
	}
	if len(vectors) != len(chunks) {
		return fmt.Errorf("embedder returned %d vectors for %d chunks", len(vectors), len(chunks))
	}

	if err := uc.vector.ReplaceDocument(ctx, doc, chunks, vectors); err != nil {
		return fmt.Errorf("index chunks in vector store: %w", err)
	}
	if err := uc.keyword.ReplaceDocument(ctx, doc, chunks); err != nil {
		return fmt.Errorf("index chunks in keyword index: %w", err)
	}

	slog.Info("document_indexed",
		"doc_id", doc.ID,
		"title", doc.Title,
		"segments", len(segments),
		"chunks", len(chunks),
	)
	return nil
}

func joinSegments(segments []domain.Segment) string {
	parts := make([]string, 0, len(segments))
	for _, s := range segments {
		if t := strings.TrimSpace(s.Text); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, "\n\n")
}
