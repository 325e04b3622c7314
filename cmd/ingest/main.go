// Command ingest registers every manifest entry and queues it for the
// indexing consumer in the api process. Re-running it on the same
// manifest is safe: known titles keep their document ids and are
// simply re-queued.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/ekipteam/ekip/internal/bootstrap"
	"github.com/ekipteam/ekip/internal/config"
	"github.com/ekipteam/ekip/internal/core/usecase"
	"github.com/ekipteam/ekip/internal/observability/logging"
)

func main() {
	cfg := config.Load()
	logging.Setup(cfg.LogLevel, "ingest")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.NewIngest(ctx, cfg)
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}
	defer app.Close()

	manifest, err := os.Open(cfg.ManifestPath)
	if err != nil {
		log.Fatalf("open manifest: %v", err)
	}
	entries, err := usecase.LoadManifest(manifest)
	manifest.Close()
	if err != nil {
		log.Fatalf("load manifest: %v", err)
	}

	registered := 0
	for _, entry := range entries {
		doc, err := app.IngestUC.Register(ctx, entry)
		if err != nil {
			log.Printf("register %q: %v", entry.Title, err)
			continue
		}
		registered++
		log.Printf("queued %q as %s", doc.Title, doc.ID)
	}
	log.Printf("ingest finished: %d/%d entries queued", registered, len(entries))
}
