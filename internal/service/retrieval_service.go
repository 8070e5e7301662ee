package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"campusbot/internal/embedding"
	"campusbot/internal/index"
	"campusbot/internal/models"
	"campusbot/pkg/config"

	"go.uber.org/zap"
)

// ErrNoMatch means no sufficiently confident chunk exists for the query.
// It is a valid outcome, not a failure: callers fall back to a
// generation-only reply.
var ErrNoMatch = errors.New("no confident retrieval match")

var articleLinkPattern = regexp.MustCompile(`Article link:\s*"?([^"\n]+)"?`)

// RetrievalService routes a query to the right prebuilt index, embeds it
// once, and extracts the best match. It holds no per-request mutable
// state; the registry is read-only after load.
type RetrievalService struct {
	registry *index.Registry
	embedder embedding.Embedder
	config   *config.RetrievalConfig
	logger   *zap.Logger
}

func NewRetrievalService(registry *index.Registry, embedder embedding.Embedder, cfg *config.RetrievalConfig, logger *zap.Logger) *RetrievalService {
	return &RetrievalService{
		registry: registry,
		embedder: embedder,
		config:   cfg,
		logger:   logger,
	}
}

// Retrieve embeds the query once, searches the selected index, and returns
// the single best match with score and source metadata.
func (s *RetrievalService) Retrieve(ctx context.Context, query string, collection models.Collection, platform models.Platform) (*models.RetrievalResult, error) {
	if collection == models.CollectionAuto {
		collection = ClassifyCollection(query)
	}

	var (
		idx          *index.Index
		sourcePrefix string
	)
	switch collection {
	case models.CollectionInstructions:
		idx = s.registry.Instructions(platform)
		sourcePrefix = instructionSourcePrefix(idx, platform)
	default:
		idx = s.registry.FAQs()
		sourcePrefix = "FAQ"
	}

	vector, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	k := s.config.TopK
	if k <= 0 {
		k = 1
	}
	hits, err := idx.Search(vector, k)
	if err != nil {
		if errors.Is(err, index.ErrEmptyIndex) {
			return nil, ErrNoMatch
		}
		return nil, fmt.Errorf("index search failed: %w", err)
	}

	best := hits[0]
	if best.Score < s.config.ConfidenceFloor {
		s.logger.Debug("Best match below confidence floor",
			zap.String("index", idx.Name()),
			zap.Float64("score", best.Score),
			zap.Float64("floor", s.config.ConfidenceFloor),
		)
		return nil, ErrNoMatch
	}

	return &models.RetrievalResult{
		Context:     best.Chunk.Text,
		Score:       best.Score,
		SourceID:    fmt.Sprintf("%s_SOURCE_%d", sourcePrefix, best.Ordinal),
		ArticleLink: extractArticleLink(best.Chunk.Text),
	}, nil
}

// instructionSourcePrefix names the source for citation. Platform-specific
// matches carry the platform's first name segment (INSTR_MCGRAW,
// INSTR_CENGAGE); fallback matches are INSTR_GENERAL.
func instructionSourcePrefix(idx *index.Index, platform models.Platform) string {
	if platform == models.PlatformNone || idx.Name() == "instructions" {
		return "INSTR_GENERAL"
	}
	name, _, _ := strings.Cut(string(platform), "_")
	return "INSTR_" + name
}

// extractArticleLink parses the embedded article-link marker out of chunk
// text. An absent marker is not an error, only a missing optional field.
func extractArticleLink(chunkText string) string {
	match := articleLinkPattern.FindStringSubmatch(chunkText)
	if match == nil {
		return ""
	}
	return strings.TrimSpace(match[1])
}
