package service

import (
	"context"
	"errors"
	"testing"

	"campusbot/internal/index"
	"campusbot/internal/models"
	"campusbot/pkg/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeEmbedder returns a canned vector per query and counts calls.
type fakeEmbedder struct {
	calls    int
	vectors  map[string][]float32
	fallback []float32
	err      error
}

func (f *fakeEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if v, ok := f.vectors[text]; ok {
		return v, nil
	}
	return f.fallback, nil
}

const returnPolicyChunk = `Our return policy lasts 30 days from purchase with a receipt.
Article link: "https://store.example.edu/help/returns"`

func testRegistry(t *testing.T) *index.Registry {
	t.Helper()
	registry, err := index.BuildRegistry([]models.Chunk{
		{Collection: models.CollectionFAQs, Text: returnPolicyChunk, Embedding: []float32{1, 0, 0}},
		{Collection: models.CollectionFAQs, Text: "We price match major retailers on new textbooks.", Embedding: []float32{0, 1, 0}},
		{Collection: models.CollectionInstructions, Text: "General eTextbook access goes through VitalSource in Blackboard.", Embedding: []float32{0, 0, 1}},
		{Collection: models.CollectionInstructions, Platform: models.PlatformMcGrawHill,
			Text: "Open Blackboard, click McGraw Hill Connect, then Launch.", Embedding: []float32{1, 0, 0}},
	}, zap.NewNop())
	require.NoError(t, err)
	return registry
}

func newTestRetrievalService(t *testing.T, embedder *fakeEmbedder, floor float64) *RetrievalService {
	t.Helper()
	return NewRetrievalService(testRegistry(t), embedder, &config.RetrievalConfig{
		TopK:            1,
		ConfidenceFloor: floor,
	}, zap.NewNop())
}

func TestRetrieveEmbedsQueryExactlyOnce(t *testing.T) {
	embedder := &fakeEmbedder{fallback: []float32{1, 0, 0}}
	svc := newTestRetrievalService(t, embedder, 0.1)

	result, err := svc.Retrieve(context.Background(), "What is your return policy?", models.CollectionAuto, models.PlatformNone)
	require.NoError(t, err)

	assert.Equal(t, 1, embedder.calls)
	assert.Equal(t, "FAQ_SOURCE_0", result.SourceID)
	assert.InDelta(t, 1.0, result.Score, 1e-9)
}

func TestRetrieveExtractsArticleLink(t *testing.T) {
	embedder := &fakeEmbedder{
		vectors: map[string][]float32{
			"return policy": {1, 0, 0},
			"price match":   {0, 1, 0},
		},
	}
	svc := newTestRetrievalService(t, embedder, 0.1)

	withLink, err := svc.Retrieve(context.Background(), "return policy", models.CollectionFAQs, models.PlatformNone)
	require.NoError(t, err)
	assert.Equal(t, "https://store.example.edu/help/returns", withLink.ArticleLink)
	assert.Contains(t, withLink.Context, "return policy lasts 30 days")

	withoutLink, err := svc.Retrieve(context.Background(), "price match", models.CollectionFAQs, models.PlatformNone)
	require.NoError(t, err)
	assert.Empty(t, withoutLink.ArticleLink)
}

func TestRetrieveUsesPlatformIndex(t *testing.T) {
	embedder := &fakeEmbedder{fallback: []float32{1, 0, 0}}
	svc := newTestRetrievalService(t, embedder, 0.1)

	result, err := svc.Retrieve(context.Background(),
		"I can't access my McGraw Hill Connect homework",
		models.CollectionInstructions, models.PlatformMcGrawHill)
	require.NoError(t, err)

	assert.Equal(t, "INSTR_MCGRAW_SOURCE_0", result.SourceID)
	assert.Contains(t, result.Context, "McGraw Hill Connect")
	assert.Equal(t, 1, embedder.calls)
}

func TestRetrieveFallsBackToGeneralInstructions(t *testing.T) {
	embedder := &fakeEmbedder{fallback: []float32{0, 0, 1}}
	svc := newTestRetrievalService(t, embedder, 0.1)

	// No Wiley index exists, so the general instructions index answers and
	// the source is cited as general.
	result, err := svc.Retrieve(context.Background(), "wiley access steps",
		models.CollectionInstructions, models.PlatformWiley)
	require.NoError(t, err)

	assert.Equal(t, "INSTR_GENERAL_SOURCE_0", result.SourceID)
	assert.Contains(t, result.Context, "VitalSource")
}

func TestRetrieveConfidenceFloor(t *testing.T) {
	embedder := &fakeEmbedder{
		vectors: map[string][]float32{
			"at floor":    {0.5, 0, 0},
			"below floor": {0.4, 0, 0},
		},
	}
	svc := newTestRetrievalService(t, embedder, 0.5)

	// A score exactly at the floor still counts as a match.
	result, err := svc.Retrieve(context.Background(), "at floor", models.CollectionFAQs, models.PlatformNone)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, result.Score, 1e-9)

	_, err = svc.Retrieve(context.Background(), "below floor", models.CollectionFAQs, models.PlatformNone)
	assert.ErrorIs(t, err, ErrNoMatch)
}

func TestRetrieveEmptyIndexMeansNoMatch(t *testing.T) {
	registry, err := index.BuildRegistry([]models.Chunk{
		{Collection: models.CollectionInstructions, Text: "only instructions here", Embedding: []float32{1, 0}},
	}, zap.NewNop())
	require.NoError(t, err)

	embedder := &fakeEmbedder{fallback: []float32{1, 0}}
	svc := NewRetrievalService(registry, embedder, &config.RetrievalConfig{TopK: 1, ConfidenceFloor: 0.1}, zap.NewNop())

	_, err = svc.Retrieve(context.Background(), "anything", models.CollectionFAQs, models.PlatformNone)
	assert.ErrorIs(t, err, ErrNoMatch)
}

func TestRetrieveEmbedFailureIsAnError(t *testing.T) {
	embedder := &fakeEmbedder{err: errors.New("embedding backend down")}
	svc := newTestRetrievalService(t, embedder, 0.1)

	_, err := svc.Retrieve(context.Background(), "return policy", models.CollectionFAQs, models.PlatformNone)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoMatch)
}

func TestRetrieveIsDeterministic(t *testing.T) {
	embedder := &fakeEmbedder{fallback: []float32{0.8, 0.6, 0}}
	svc := newTestRetrievalService(t, embedder, 0.1)

	first, err := svc.Retrieve(context.Background(), "same query", models.CollectionFAQs, models.PlatformNone)
	require.NoError(t, err)
	second, err := svc.Retrieve(context.Background(), "same query", models.CollectionFAQs, models.PlatformNone)
	require.NoError(t, err)

	assert.Equal(t, first.SourceID, second.SourceID)
	assert.Equal(t, first.Score, second.Score)
	assert.Equal(t, first.Context, second.Context)
}
