package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ekipteam/ekip/internal/core/domain"
)

type DocumentRepository struct {
	db *sql.DB
}

func NewDocumentRepository(db *sql.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

func (r *DocumentRepository) Create(ctx context.Context, doc *domain.Document) error {
	const query = `
INSERT INTO documents (doc_id, title, department, classification, file_path, created_at)
VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.db.ExecContext(ctx, query,
		doc.ID, doc.Title, doc.Department, string(doc.Classification), doc.FilePath, doc.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert document %s: %w", doc.ID, err)
	}
	return nil
}

func (r *DocumentRepository) GetByID(ctx context.Context, docID string) (*domain.Document, error) {
	const query = `
SELECT doc_id, title, department, classification, file_path, created_at
FROM documents
WHERE doc_id = $1`

	return r.scanOne(r.db.QueryRowContext(ctx, query, docID), "get document by id", docID)
}

func (r *DocumentRepository) GetByTitle(ctx context.Context, title string) (*domain.Document, error) {
	const query = `
SELECT doc_id, title, department, classification, file_path, created_at
FROM documents
WHERE title = $1`

	return r.scanOne(r.db.QueryRowContext(ctx, query, title), "get document by title", title)
}

func (r *DocumentRepository) scanOne(row *sql.Row, operation, key string) (*domain.Document, error) {
	var doc domain.Document
	var classification string
	err := row.Scan(&doc.ID, &doc.Title, &doc.Department, &classification, &doc.FilePath, &doc.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.WrapError(domain.ErrNotFound, operation,
			fmt.Errorf("%q", key))
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", operation, err)
	}
	doc.Classification = domain.Classification(classification)
	return &doc, nil
}
