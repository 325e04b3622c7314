package ports

import (
	"context"
	"io"

	"github.com/ekipteam/ekip/internal/core/domain"
)

// UserRepository reads user identity and role membership.
type UserRepository interface {
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetContext(ctx context.Context, userID string) (*domain.UserContext, error)
}

// DocumentRepository persists document metadata.
type DocumentRepository interface {
	Create(ctx context.Context, doc *domain.Document) error
	GetByID(ctx context.Context, id string) (*domain.Document, error)
	GetByTitle(ctx context.Context, title string) (*domain.Document, error)
}

// AuditLog appends one compliance record per search.
type AuditLog interface {
	Record(ctx context.Context, entry domain.AuditEntry) error
}

// MessageQueue publishes/consumes ingestion events.
type MessageQueue interface {
	PublishDocumentIngested(ctx context.Context, documentID string) error
	SubscribeDocumentIngested(ctx context.Context, handler func(context.Context, string) error) error
}

// ObjectStorage reads source documents from the corpus directory.
type ObjectStorage interface {
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

// DocumentParser turns a stored source file into text segments.
// Unrecognized formats return domain.ErrUnsupportedFormat.
type DocumentParser interface {
	Parse(ctx context.Context, filePath string) ([]domain.Segment, error)
}

// Chunker splits extracted text into overlapping passages.
type Chunker interface {
	Split(text string) []string
}

// Embedder builds fixed-dimension vectors for chunks and query text.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// VectorStore indexes chunk vectors and performs filtered semantic search.
// ReplaceDocument removes any previously indexed chunks for the document
// before writing the new ones.
type VectorStore interface {
	ReplaceDocument(ctx context.Context, doc *domain.Document, chunks []string, vectors [][]float32) error
	Search(ctx context.Context, queryVector []float32, filter *domain.AccessFilter, limit int) ([]domain.Candidate, error)
}

// KeywordIndex performs BM25-family lexical search. The backend cannot
// express role filters, so Search over-fetches and returns raw hits; callers
// must post-filter before use.
type KeywordIndex interface {
	ReplaceDocument(ctx context.Context, doc *domain.Document, chunks []string) error
	Search(ctx context.Context, queryText string, limit int) ([]domain.Candidate, error)
}

// CrossEncoder scores (query, passage) pairs jointly, one batched call.
type CrossEncoder interface {
	Predict(ctx context.Context, query string, passages []string) ([]float64, error)
}

// LLM generates the final answer text from a grounded prompt.
type LLM interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// AuthTokens issues and verifies bearer credentials.
type AuthTokens interface {
	Sign(userID string) (string, error)
	Verify(token string) (string, error)
}
