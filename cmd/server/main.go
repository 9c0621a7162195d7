package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/dgallion1/docquery/internal/api"
	"github.com/dgallion1/docquery/internal/chunker"
	"github.com/dgallion1/docquery/internal/config"
	"github.com/dgallion1/docquery/internal/document"
	"github.com/dgallion1/docquery/internal/embedder"
	"github.com/dgallion1/docquery/internal/llm"
	"github.com/dgallion1/docquery/internal/pipeline"
	"github.com/dgallion1/docquery/internal/vectorstore"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	// Optional .env for local development.
	_ = godotenv.Load()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ch, err := chunker.New(cfg.ChunkSize, cfg.ChunkOverlap)
	if err != nil {
		log.Error("invalid chunking configuration", "error", err)
		os.Exit(1)
	}

	// Initialize clients.
	fetcher := document.NewFetcher(cfg.RequestTimeout, cfg.MaxDownloadMB<<20)
	emb := embedder.NewClient(cfg.EmbeddingBaseURL, cfg.EmbeddingAPIKey, cfg.EmbeddingModel, cfg.EmbeddingDimension, cfg.RequestTimeout)
	store := vectorstore.NewClient(cfg.QdrantURL, cfg.QdrantAPIKey, cfg.CollectionName, cfg.EmbeddingDimension, log)
	llmClient := llm.NewClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModel, cfg.LLMMaxTokens, cfg.RequestTimeout)

	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	if err := emb.Ping(startupCtx); err != nil {
		log.Error("embedding model check failed", "model", cfg.EmbeddingModel, "error", err)
		os.Exit(1)
	}
	if err := store.EnsureCollection(startupCtx); err != nil {
		log.Error("vector index unavailable", "url", cfg.QdrantURL, "error", err)
		os.Exit(1)
	}

	// Initialize pipeline and HTTP server.
	p := pipeline.New(cfg, fetcher, ch, emb, store, llmClient, log)
	srv := api.NewServer(p, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 300 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)

		llmClient.Close()
		emb.Close()
		store.Close()
		fetcher.Close()
	}()

	log.Info("starting docquery",
		"port", cfg.Port,
		"embedding_model", cfg.EmbeddingModel,
		"llm_model", cfg.LLMModel,
		"collection", cfg.CollectionName,
	)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
