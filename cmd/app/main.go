// File: cmd/app/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"imagegen-service/internal/config"
	"imagegen-service/internal/domain/ports/adapter"
	aiAdapters "imagegen-service/internal/infra/adapters/ai"
	"imagegen-service/internal/infra/api"
	"imagegen-service/internal/infra/logging"
	"imagegen-service/internal/infra/metrics"
	"imagegen-service/internal/infra/store"
	"imagegen-service/internal/infra/worker"
	"imagegen-service/internal/usecase"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (noop provider fallback)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.Runtime.Dev {
		log.Printf("[DEV MODE] Enabled")
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)

	// ---- Image provider (Gemini -> OpenAI -> noop in dev) ----
	var gen adapter.ImageGenAdapter
	if cfg.AI.GeminiKey != "" {
		gen, err = aiAdapters.NewGeminiAdapter(ctx, cfg.AI.GeminiKey, cfg.AI.GeminiURL)
		if err != nil {
			log.Fatalf("gemini adapter: %v", err)
		}
		log.Printf("image provider: Gemini/Imagen default_model=%s", cfg.AI.DefaultModel)
	} else if cfg.AI.OpenAIKey != "" {
		gen, err = aiAdapters.NewOpenAIAdapter(cfg.AI.OpenAIKey)
		if err != nil {
			log.Fatalf("openai adapter: %v", err)
		}
		log.Printf("image provider: OpenAI gpt-image-1 default_model=%s", cfg.AI.DefaultModel)
	} else if cfg.Runtime.Dev {
		gen = aiAdapters.NewNoopAdapter()
		log.Printf("image provider: noop (dev mode)")
	} else {
		log.Fatalf("no image provider configured: set ai.gemini_key or ai.openai_key in %s", *cfgPath)
	}

	// ---- Stores ----
	jobStore := store.NewJobStore()
	batchStore := store.NewBatchStore()

	// ---- Worker pool ----
	pool := worker.NewPool(cfg.Worker.Workers)
	pool.Start(ctx)

	// ---- Use cases ----
	jobUC := usecase.NewJobUseCase(jobStore, gen, pool, cfg.AI.DefaultModel, logger)
	batchUC := usecase.NewBatchUseCase(batchStore, jobUC, logger)
	saveUC := usecase.NewSaveUseCase(jobStore, batchStore, logger)

	// ---- HTTP ----
	metrics.MustRegister()
	srv := api.NewServer(jobUC, batchUC, saveUC, logger)
	server := &http.Server{Addr: fmt.Sprintf(":%d", cfg.Server.Port), Handler: srv.Router()}
	go func() {
		log.Printf("http listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("http server error: %v", err)
		}
	}()

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc
	log.Println("shutdown requested")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = server.Shutdown(shutdownCtx)
	cancel()
	pool.Stop()
}
