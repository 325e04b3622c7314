// Package bootstrap wires configuration into per-process dependency
// graphs. Each command constructs only the backends it runs: the API
// owns the keyword index (bleve holds an exclusive lock on its
// directory) together with the queue consumer that writes to it, and
// the ingest command only needs the document store and the queue
// producer.
package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/ekipteam/ekip/internal/config"
	"github.com/ekipteam/ekip/internal/core/ports"
	"github.com/ekipteam/ekip/internal/core/usecase"
	"github.com/ekipteam/ekip/internal/infrastructure/chunking"
	"github.com/ekipteam/ekip/internal/infrastructure/inference"
	"github.com/ekipteam/ekip/internal/infrastructure/keyword"
	openaillm "github.com/ekipteam/ekip/internal/infrastructure/llm/openai"
	"github.com/ekipteam/ekip/internal/infrastructure/parser"
	natsqueue "github.com/ekipteam/ekip/internal/infrastructure/queue/nats"
	"github.com/ekipteam/ekip/internal/infrastructure/repository/postgres"
	"github.com/ekipteam/ekip/internal/infrastructure/resilience"
	"github.com/ekipteam/ekip/internal/infrastructure/storage/localfs"
	"github.com/ekipteam/ekip/internal/infrastructure/token"
	"github.com/ekipteam/ekip/internal/infrastructure/vector/qdrant"
	"github.com/ekipteam/ekip/internal/observability/metrics"
)

// API is the graph of the api process: auth, search, and the indexing
// consumer that handles document-ingested events.
type API struct {
	Config  config.Config
	Metrics *metrics.Set

	Queue ports.MessageQueue

	AuthUC    ports.Authenticator
	SearchUC  ports.SearchService
	ProcessUC ports.DocumentProcessor

	closeFn func()
}

// Ingest is the graph of the ingest command: manifest registration and
// event publishing only. No index, model, or LLM clients are built, so
// it runs while the api process is serving.
type Ingest struct {
	Config config.Config

	IngestUC ports.DocumentRegistrar

	closeFn func()
}

func NewAPI(ctx context.Context, cfg config.Config) (*API, error) {
	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := postgres.EnsureSchema(ctx, db); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	users := postgres.NewUserRepository(db)
	documents := postgres.NewDocumentRepository(db)
	audit := postgres.NewAuditRepository(db)

	modelExecutor := resilience.NewExecutor(resilience.ModelPolicy())

	tokens, err := token.NewManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTTTL)
	if err != nil {
		return nil, err
	}

	llm, err := openaillm.New(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.OpenAIModel, modelExecutor)
	if err != nil {
		return nil, err
	}

	storage, err := localfs.New(cfg.CorpusPath)
	if err != nil {
		return nil, fmt.Errorf("init corpus storage: %w", err)
	}

	keywordIndex, err := keyword.NewIndex(cfg.BlevePath)
	if err != nil {
		return nil, fmt.Errorf("init keyword index: %w", err)
	}

	queue, err := natsqueue.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, natsqueue.Options{
		Executor: resilience.NewExecutor(resilience.QueuePolicy()),
	})
	if err != nil {
		_ = keywordIndex.Close()
		return nil, fmt.Errorf("init message queue: %w", err)
	}

	inferenceClient := inference.New(cfg.InferenceURL, modelExecutor)
	vectorStore := qdrant.New(cfg.QdrantURL, cfg.QdrantCollection)
	chunker := chunking.NewSplitter(cfg.ChunkMaxWords, cfg.ChunkOverlapWords)
	docParser := parser.New(storage)

	searchUC := usecase.NewSearchUseCase(
		inferenceClient, vectorStore, keywordIndex, inferenceClient, llm, audit,
		usecase.SearchConfig{
			TopK:           cfg.SearchTopK,
			Alpha:          cfg.SearchAlpha,
			RRFK:           cfg.SearchRRFK,
			RerankTopN:     cfg.SearchRerankTopN,
			BackendTimeout: time.Duration(cfg.BackendTimeoutSec) * time.Second,
			LLMTimeout:     time.Duration(cfg.LLMTimeoutSec) * time.Second,
		},
	)

	return &API{
		Config:  cfg,
		Metrics: metrics.New(),

		Queue: queue,

		AuthUC:   usecase.NewAuthUseCase(users, tokens),
		SearchUC: searchUC,
		ProcessUC: usecase.NewProcessDocumentUseCase(
			documents, docParser, chunker, inferenceClient, vectorStore, keywordIndex,
		),

		closeFn: func() {
			queue.Close()
			_ = keywordIndex.Close()
			_ = db.Close()
		},
	}, nil
}

func NewIngest(ctx context.Context, cfg config.Config) (*Ingest, error) {
	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := postgres.EnsureSchema(ctx, db); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	documents := postgres.NewDocumentRepository(db)

	queue, err := natsqueue.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, natsqueue.Options{
		Executor: resilience.NewExecutor(resilience.QueuePolicy()),
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init message queue: %w", err)
	}

	return &Ingest{
		Config:   cfg,
		IngestUC: usecase.NewIngestUseCase(documents, queue),

		closeFn: func() {
			queue.Close()
			_ = db.Close()
		},
	}, nil
}

func (a *API) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}

func (i *Ingest) Close() {
	if i.closeFn != nil {
		i.closeFn()
	}
}
