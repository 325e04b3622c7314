package ports

import (
	"context"

	"github.com/ekipteam/ekip/internal/core/domain"
)

// SearchService is the inbound contract for permission-aware hybrid search.
type SearchService interface {
	Search(ctx context.Context, user domain.UserContext, query, departmentFilter string) (*domain.SearchResult, error)
}

// Authenticator is the inbound contract for login and credential checks.
type Authenticator interface {
	Login(ctx context.Context, email string) (string, *domain.UserContext, error)
	Authenticate(ctx context.Context, token string) (*domain.UserContext, error)
}

// DocumentRegistrar records manifest entries and queues them for indexing.
type DocumentRegistrar interface {
	Register(ctx context.Context, entry domain.ManifestEntry) (*domain.Document, error)
}

// DocumentProcessor is the inbound contract for asynchronous indexing.
type DocumentProcessor interface {
	ProcessByID(ctx context.Context, documentID string) error
}
