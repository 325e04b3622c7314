package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ekipteam/ekip/internal/core/domain"
	"github.com/ekipteam/ekip/internal/core/ports"
)

type IngestUseCase struct {
	repo  ports.DocumentRepository
	queue ports.MessageQueue
}

func NewIngestUseCase(repo ports.DocumentRepository, queue ports.MessageQueue) *IngestUseCase {
	return &IngestUseCase{repo: repo, queue: queue}
}

// LoadManifest decodes the ingestion manifest from r.
func LoadManifest(r io.Reader) ([]domain.ManifestEntry, error) {
	var entries []domain.ManifestEntry
	if err := json.NewDecoder(r).Decode(&entries); err != nil {
		return nil, fmt.Errorf("decode manifest: %w", err)
	}
	if len(entries) == 0 {
		return nil, domain.WrapError(domain.ErrInvalidInput, "load manifest", errors.New("manifest is empty"))
	}
	return entries, nil
}

// Register stores metadata for one manifest entry and queues it for
// indexing. Re-ingesting a known title reuses the existing document id so the
// index backends replace rather than duplicate its chunks.
func (uc *IngestUseCase) Register(ctx context.Context, entry domain.ManifestEntry) (*domain.Document, error) {
	if err := validateManifestEntry(entry); err != nil {
		return nil, err
	}

	doc, err := uc.repo.GetByTitle(ctx, entry.Title)
	switch {
	case err == nil:
		// Existing document: keep its id, replace index entries downstream.
	case domain.IsKind(err, domain.ErrNotFound):
		doc = &domain.Document{
			ID:             uuid.NewString(),
			Title:          entry.Title,
			Department:     entry.Department,
			Classification: entry.Classification,
			FilePath:       entry.Path,
			CreatedAt:      time.Now().UTC(),
		}
		if err := uc.repo.Create(ctx, doc); err != nil {
			return nil, fmt.Errorf("create document metadata: %w", err)
		}
	default:
		return nil, fmt.Errorf("lookup document by title: %w", err)
	}

	if err := uc.queue.PublishDocumentIngested(ctx, doc.ID); err != nil {
		return nil, fmt.Errorf("publish ingestion event: %w", err)
	}
	return doc, nil
}

func validateManifestEntry(entry domain.ManifestEntry) error {
	if strings.TrimSpace(entry.Path) == "" || strings.TrimSpace(entry.Title) == "" {
		return domain.WrapError(domain.ErrInvalidInput, "register document", errors.New("path and title are required"))
	}
	if !entry.Classification.Valid() {
		return domain.WrapError(domain.ErrInvalidInput, "register document",
			fmt.Errorf("unknown classification %q", entry.Classification))
	}
	return nil
}
