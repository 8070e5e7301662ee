package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"campusbot/internal/api"
	"campusbot/internal/api/handlers"
	"campusbot/internal/embedding"
	"campusbot/internal/index"
	"campusbot/internal/repository"
	"campusbot/internal/repository/memory"
	"campusbot/internal/service"
	"campusbot/pkg/config"
	"campusbot/pkg/logger"
	"campusbot/pkg/postgres"

	"go.uber.org/zap"
)

// @title Campusbot API
// @version 1.0
// @description Campus store support chatbot: knowledge-base retrieval with session-scoped conversation state

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api/v1

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize global logger
	if err := logger.Init(cfg.Logger.Level); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	appLogger := logger.Get()
	appLogger.Info("Starting campusbot service")

	// Initialize database
	ctx := context.Background()
	db, err := postgres.NewPool(ctx, &cfg.Database, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// Load chunk artifacts and build every index up front; no request
	// path ever rebuilds an index
	chunkRepo := repository.NewChunkRepository(db, appLogger)
	chunks, err := chunkRepo.ListAll(ctx)
	if err != nil {
		appLogger.Fatal("Failed to load chunks", zap.Error(err))
	}
	registry, err := index.BuildRegistry(chunks, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to build index registry", zap.Error(err))
	}

	// Initialize services
	embedder := embedding.NewOllamaEmbedder(&cfg.Ollama, appLogger)
	retrievalService := service.NewRetrievalService(registry, embedder, &cfg.Retrieval, appLogger)

	generator, err := newGenerator(ctx, cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize generator", zap.Error(err))
	}

	sessionStore := memory.NewSessionStore(cfg.Session.Timeout, cfg.Session.SweepInterval, appLogger)
	chatService := service.NewChatService(retrievalService, generator, sessionStore, &cfg.Session, appLogger)

	// Initialize handlers and router
	chatHandler := handlers.NewChatHandler(chatService, sessionStore, appLogger)
	app := api.SetupRouter(chatHandler)

	// Start server
	go func() {
		addr := ":" + cfg.Server.Port
		appLogger.Info("Server starting", zap.String("address", addr))
		if err := app.Listen(addr); err != nil {
			appLogger.Fatal("Server failed", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server")
	if err := app.Shutdown(); err != nil {
		appLogger.Error("Server shutdown error", zap.Error(err))
	}
}

func newGenerator(ctx context.Context, cfg *config.Config, appLogger *zap.Logger) (service.Generator, error) {
	switch cfg.Generator.Provider {
	case "gigachat":
		appLogger.Info("Using GigaChat generator", zap.String("model", cfg.GigaChat.Model))
		return service.NewGigaChatGenerator(ctx, &cfg.GigaChat, appLogger)
	case "ollama":
		appLogger.Info("Using Ollama generator", zap.String("model", cfg.Ollama.ChatModel))
		return service.NewOllamaGenerator(&cfg.Ollama, appLogger), nil
	default:
		return nil, fmt.Errorf("unknown generator provider %q", cfg.Generator.Provider)
	}
}
