package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpadapter "github.com/ekipteam/ekip/internal/adapters/http"
	"github.com/ekipteam/ekip/internal/bootstrap"
	"github.com/ekipteam/ekip/internal/config"
	"github.com/ekipteam/ekip/internal/observability/logging"
)

func main() {
	cfg := config.Load()
	logging.Setup(cfg.LogLevel, "api")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.NewAPI(ctx, cfg)
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}
	defer app.Close()

	// The api process owns the keyword index, so the indexing consumer
	// runs here alongside the HTTP surface.
	go func() {
		log.Printf("indexer subscribed to %s", cfg.NATSSubject)
		err := app.Queue.SubscribeDocumentIngested(ctx, func(handlerCtx context.Context, documentID string) error {
			processCtx, cancel := context.WithTimeout(handlerCtx, 5*time.Minute)
			defer cancel()

			if err := app.ProcessUC.ProcessByID(processCtx, documentID); err != nil {
				app.Metrics.DocumentFailed()
				return err
			}
			app.Metrics.DocumentProcessed()
			return nil
		})
		if err != nil {
			log.Printf("indexer subscribe error: %v", err)
			stop()
		}
	}()

	router := httpadapter.NewRouter(app.AuthUC, app.SearchUC, app.Metrics, httpadapter.Config{
		RateLimitRPS:   cfg.RateLimitRPS,
		RateLimitBurst: cfg.RateLimitBurst,
	})
	server := &http.Server{
		Addr:         ":" + cfg.APIPort,
		Handler:      router.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("api listening on :%s", cfg.APIPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("api server error: %v", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("api shutdown error: %v", err)
	}
}
