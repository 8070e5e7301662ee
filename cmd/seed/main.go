package main

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"campusbot/internal/embedding"
	"campusbot/internal/models"
	"campusbot/internal/repository"
	"campusbot/pkg/config"
	"campusbot/pkg/logger"
	"campusbot/pkg/postgres"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Seeds the chunks table from text artifacts:
//
//	data/faqs/*.txt          -> collection "faqs"
//	data/instructions/*.txt  -> collection "instructions"
//
// Instruction files named after a platform (cengage_login.txt,
// mcgraw_hill_access.txt) get that platform tag and end up in the
// platform-specific index at load time.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Init(cfg.Logger.Level); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()
	appLogger := logger.Get()

	ctx := context.Background()
	db, err := postgres.NewPool(ctx, &cfg.Database, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	chunkRepo := repository.NewChunkRepository(db, appLogger)
	embedder := embedding.NewOllamaEmbedder(&cfg.Ollama, appLogger)

	appLogger.Info("Starting knowledge base seeding",
		zap.String("data_dir", cfg.Seed.DataDir),
		zap.String("chunk_mode", cfg.Seed.ChunkMode),
	)

	collections := []struct {
		dir        string
		collection models.Collection
	}{
		{filepath.Join(cfg.Seed.DataDir, "faqs"), models.CollectionFAQs},
		{filepath.Join(cfg.Seed.DataDir, "instructions"), models.CollectionInstructions},
	}

	for _, c := range collections {
		if err := seedCollection(ctx, chunkRepo, embedder, c.dir, c.collection, cfg.Seed.ChunkMode, appLogger); err != nil {
			appLogger.Fatal("Failed to seed collection",
				zap.String("collection", string(c.collection)),
				zap.Error(err),
			)
		}
	}

	appLogger.Info("Knowledge base seeding completed")
}

func seedCollection(
	ctx context.Context,
	repo *repository.ChunkRepository,
	embedder embedding.Embedder,
	dir string,
	collection models.Collection,
	chunkMode string,
	appLogger *zap.Logger,
) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}

	var fileNames []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(strings.ToLower(entry.Name()), ".txt") {
			fileNames = append(fileNames, entry.Name())
		}
	}
	sort.Strings(fileNames)

	// Reseed the whole collection so positions stay stable
	if err := repo.DeleteCollection(ctx, collection); err != nil {
		return err
	}

	position := 0
	for _, name := range fileNames {
		raw, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return err
		}

		platform := models.PlatformNone
		if collection == models.CollectionInstructions {
			platform = platformFromFileName(name)
		}

		for _, text := range splitChunks(string(raw), chunkMode) {
			vector, err := embedder.Embed(ctx, text)
			if err != nil {
				return err
			}

			chunk := &models.Chunk{
				ID:         uuid.New(),
				Collection: collection,
				Platform:   platform,
				Text:       text,
				Embedding:  vector,
				Position:   position,
				CreatedAt:  time.Now(),
			}
			if err := repo.Create(ctx, chunk); err != nil {
				return err
			}
			position++
		}

		appLogger.Info("Seeded file",
			zap.String("file", name),
			zap.String("collection", string(collection)),
			zap.String("platform", string(platform)),
		)
	}

	appLogger.Info("Collection seeded",
		zap.String("collection", string(collection)),
		zap.Int("chunks", position),
	)
	return nil
}

// splitChunks honors the configured granularity: "file" keeps each file
// as one chunk, "section" splits on blank lines.
func splitChunks(text, mode string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if mode != "section" {
		return []string{text}
	}

	var chunks []string
	for _, section := range strings.Split(text, "\n\n") {
		section = strings.TrimSpace(section)
		if section != "" {
			chunks = append(chunks, section)
		}
	}
	return chunks
}

func platformFromFileName(name string) models.Platform {
	normalized := strings.ToLower(name)
	prefixes := map[string]models.Platform{
		"cengage":     models.PlatformCengage,
		"mcgraw_hill": models.PlatformMcGrawHill,
		"mcgraw":      models.PlatformMcGrawHill,
		"pearson":     models.PlatformPearson,
		"bedford":     models.PlatformBedford,
		"simucase":    models.PlatformSimucase,
		"wiley":       models.PlatformWiley,
		"sage":        models.PlatformSage,
		"macmillan":   models.PlatformMacmillan,
		"zybooks":     models.PlatformZyBooks,
		"clifton":     models.PlatformClifton,
	}
	for prefix, platform := range prefixes {
		if strings.HasPrefix(normalized, prefix) {
			return platform
		}
	}
	return models.PlatformNone
}
