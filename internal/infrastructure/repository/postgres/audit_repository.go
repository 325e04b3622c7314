package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/ekipteam/ekip/internal/core/domain"
)

type AuditRepository struct {
	db *sql.DB
}

func NewAuditRepository(db *sql.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

func (r *AuditRepository) Record(ctx context.Context, entry domain.AuditEntry) error {
	const query = `
INSERT INTO access_audit_log (user_id, query_text, doc_ids, allowed, created_at)
VALUES ($1, $2, $3, $4, $5)`

	_, err := r.db.ExecContext(ctx, query,
		entry.UserID,
		entry.QueryText,
		strings.Join(entry.DocIDs, ","),
		entry.Allowed,
		entry.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}
