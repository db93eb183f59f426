// Package main boots the Inkdrift journaling service and wires application
// dependencies.
package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/inkdrift/inkdrift/internal/config"
	"github.com/inkdrift/inkdrift/internal/handler"
	"github.com/inkdrift/inkdrift/internal/memory"
	"github.com/inkdrift/inkdrift/internal/models"
	"github.com/inkdrift/inkdrift/internal/profile"
	"github.com/inkdrift/inkdrift/internal/question"
	"github.com/inkdrift/inkdrift/internal/storage"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(logger)

	cfg := config.Load()
	slog.Info("configuration loaded",
		"question_model", cfg.QuestionModel,
		"patch_model", cfg.PatchModel,
		"embedding_model", cfg.EmbeddingModel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := storage.NewStore(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer store.Close()

	chatModel, err := models.NewOpenAIModel(cfg.XAIAPIKey, cfg.QuestionModel, "")
	if err != nil {
		log.Fatalf("failed to create question model: %v", err)
	}

	embedder, err := memory.NewGenAIEmbedder(ctx, cfg.GoogleAPIKey, cfg.EmbeddingModel)
	if err != nil {
		log.Fatalf("failed to create embedder: %v", err)
	}
	recall := memory.NewService(embedder, store.Sessions, cfg.TopK, cfg.SimilarityThreshold)
	archiver := memory.NewArchiver(store.Sessions, recall)

	picker := question.NewFallbackPicker(rand.New(rand.NewSource(time.Now().UnixNano())))
	questionService := question.NewService(chatModel, picker)

	extractor, err := profile.NewPatchExtractor(ctx, cfg.GoogleAPIKey, cfg.PatchModel)
	if err != nil {
		log.Fatalf("failed to create patch extractor: %v", err)
	}
	merger := profile.NewMerger(store.MeDb, extractor)

	mux := handler.NewMux(
		handler.NewQuestionHandler(questionService, recall),
		handler.NewProfileMemoryHandler(merger, archiver),
		handler.NewHistoryHandler(store.Questions),
	)

	server := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", cfg.ListenAddr)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server failed: %v", err)
		}
	case <-ctx.Done():
		slog.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("graceful shutdown failed", "error", err.Error())
		}
	}
}
