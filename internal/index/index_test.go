package index

import (
	"testing"

	"campusbot/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func chunk(collection models.Collection, platform models.Platform, text string, embedding []float32) models.Chunk {
	return models.Chunk{
		Collection: collection,
		Platform:   platform,
		Text:       text,
		Embedding:  embedding,
	}
}

func TestBuildRejectsDimensionMismatch(t *testing.T) {
	_, err := Build("faqs", []models.Chunk{
		chunk(models.CollectionFAQs, models.PlatformNone, "a", []float32{1, 0}),
		chunk(models.CollectionFAQs, models.PlatformNone, "b", []float32{1, 0, 0}),
	})
	require.Error(t, err)
}

func TestBuildRejectsMissingEmbedding(t *testing.T) {
	_, err := Build("faqs", []models.Chunk{
		chunk(models.CollectionFAQs, models.PlatformNone, "a", nil),
	})
	require.Error(t, err)
}

func TestSearchRanksByInnerProduct(t *testing.T) {
	idx, err := Build("faqs", []models.Chunk{
		chunk(models.CollectionFAQs, models.PlatformNone, "first", []float32{1, 0, 0}),
		chunk(models.CollectionFAQs, models.PlatformNone, "second", []float32{0, 1, 0}),
		chunk(models.CollectionFAQs, models.PlatformNone, "third", []float32{0, 0, 1}),
	})
	require.NoError(t, err)

	hits, err := idx.Search([]float32{0, 1, 0}, 2)
	require.NoError(t, err)
	require.Len(t, hits, 2)

	assert.Equal(t, "second", hits[0].Chunk.Text)
	assert.Equal(t, 1, hits[0].Ordinal)
	assert.InDelta(t, 1.0, hits[0].Score, 1e-9)
	assert.Greater(t, hits[0].Score, hits[1].Score)
}

func TestSearchIsIdempotent(t *testing.T) {
	idx, err := Build("faqs", []models.Chunk{
		chunk(models.CollectionFAQs, models.PlatformNone, "alpha", []float32{0.8, 0.6}),
		chunk(models.CollectionFAQs, models.PlatformNone, "beta", []float32{0.6, 0.8}),
	})
	require.NoError(t, err)

	query := []float32{1, 0}
	first, err := idx.Search(query, 1)
	require.NoError(t, err)
	second, err := idx.Search(query, 1)
	require.NoError(t, err)

	assert.Equal(t, first[0].Ordinal, second[0].Ordinal)
	assert.Equal(t, first[0].Score, second[0].Score)
}

func TestSearchEmptyIndex(t *testing.T) {
	idx, err := Build("faqs", nil)
	require.NoError(t, err)

	_, err = idx.Search([]float32{1, 0}, 1)
	assert.ErrorIs(t, err, ErrEmptyIndex)
}

func TestRegistryBuildsPlatformIndices(t *testing.T) {
	registry, err := BuildRegistry([]models.Chunk{
		chunk(models.CollectionFAQs, models.PlatformNone, "faq", []float32{1, 0}),
		chunk(models.CollectionInstructions, models.PlatformNone, "general", []float32{0, 1}),
		chunk(models.CollectionInstructions, models.PlatformMcGrawHill, "mcgraw steps", []float32{1, 0}),
	}, zap.NewNop())
	require.NoError(t, err)

	assert.Equal(t, 1, registry.FAQs().Len())
	// The platform chunk belongs to the general index too
	assert.Equal(t, 2, registry.Instructions(models.PlatformNone).Len())

	mcgraw := registry.Instructions(models.PlatformMcGrawHill)
	assert.Equal(t, "instructions:MCGRAW_HILL", mcgraw.Name())
	assert.Equal(t, 1, mcgraw.Len())
}

func TestRegistryFallsBackWhenPlatformIndexMissing(t *testing.T) {
	registry, err := BuildRegistry([]models.Chunk{
		chunk(models.CollectionFAQs, models.PlatformNone, "faq", []float32{1, 0}),
		chunk(models.CollectionInstructions, models.PlatformNone, "general", []float32{0, 1}),
	}, zap.NewNop())
	require.NoError(t, err)

	idx := registry.Instructions(models.PlatformCengage)
	assert.Equal(t, "instructions", idx.Name())
}
