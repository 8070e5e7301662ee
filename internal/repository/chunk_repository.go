package repository

import (
	"context"
	"fmt"

	"campusbot/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type ChunkRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewChunkRepository(db *pgxpool.Pool, logger *zap.Logger) *ChunkRepository {
	return &ChunkRepository{
		db:     db,
		logger: logger,
	}
}

func (r *ChunkRepository) Create(ctx context.Context, chunk *models.Chunk) error {
	embeddingArray := pgtype.FlatArray[float32](chunk.Embedding)

	query := squirrel.Insert("chunks").
		Columns("id", "collection", "platform", "text", "embedding", "position", "created_at").
		Values(chunk.ID, chunk.Collection, chunk.Platform, chunk.Text, embeddingArray, chunk.Position, chunk.CreatedAt).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

// DeleteCollection removes every chunk of one collection, used before
// reseeding so artifacts stay versioned by seed run.
func (r *ChunkRepository) DeleteCollection(ctx context.Context, collection models.Collection) error {
	query := squirrel.Delete("chunks").
		Where(squirrel.Eq{"collection": collection}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

// ListAll loads every chunk with its embedding, ordered so index positions
// are stable across restarts.
func (r *ChunkRepository) ListAll(ctx context.Context) ([]models.Chunk, error) {
	query := squirrel.Select("id", "collection", "platform", "text", "embedding", "position", "created_at").
		From("chunks").
		OrderBy("collection", "platform", "position").
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to load chunks: %w", err)
	}
	defer rows.Close()

	var chunks []models.Chunk
	for rows.Next() {
		var chunk models.Chunk
		var embeddingData pgtype.FlatArray[float32]

		if err := rows.Scan(
			&chunk.ID, &chunk.Collection, &chunk.Platform, &chunk.Text,
			&embeddingData, &chunk.Position, &chunk.CreatedAt,
		); err != nil {
			return nil, err
		}

		chunk.Embedding = []float32(embeddingData)
		chunks = append(chunks, chunk)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	r.logger.Info("Loaded chunks from database", zap.Int("count", len(chunks)))
	return chunks, nil
}
