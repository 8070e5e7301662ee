package index

import (
	"fmt"

	"campusbot/internal/models"

	"go.uber.org/zap"
)

// Registry owns the full set of prebuilt indices: one per collection plus
// one per platform tag under the instructions collection. All indices are
// built once at load time; no request path ever rebuilds or re-embeds a
// filtered subset.
type Registry struct {
	faqs         *Index
	instructions *Index
	platforms    map[models.Platform]*Index
	logger       *zap.Logger
}

// BuildRegistry partitions the loaded chunks by (collection, platform) and
// builds every index up front.
func BuildRegistry(chunks []models.Chunk, logger *zap.Logger) (*Registry, error) {
	var faqChunks, instrChunks []models.Chunk
	byPlatform := make(map[models.Platform][]models.Chunk)

	for _, c := range chunks {
		switch c.Collection {
		case models.CollectionFAQs:
			faqChunks = append(faqChunks, c)
		case models.CollectionInstructions:
			instrChunks = append(instrChunks, c)
			if c.Platform != models.PlatformNone {
				byPlatform[c.Platform] = append(byPlatform[c.Platform], c)
			}
		default:
			return nil, fmt.Errorf("chunk %s: unknown collection %q", c.ID, c.Collection)
		}
	}

	r := &Registry{
		platforms: make(map[models.Platform]*Index, len(byPlatform)),
		logger:    logger,
	}

	var err error
	if r.faqs, err = Build("faqs", faqChunks); err != nil {
		return nil, err
	}
	if r.instructions, err = Build("instructions", instrChunks); err != nil {
		return nil, err
	}
	for platform, subset := range byPlatform {
		idx, err := Build("instructions:"+string(platform), subset)
		if err != nil {
			return nil, err
		}
		r.platforms[platform] = idx
		logger.Info("Built platform-specific instruction index",
			zap.String("platform", string(platform)),
			zap.Int("chunks", idx.Len()),
		)
	}

	logger.Info("Index registry ready",
		zap.Int("faq_chunks", r.faqs.Len()),
		zap.Int("instruction_chunks", r.instructions.Len()),
		zap.Int("platform_indices", len(r.platforms)),
	)
	return r, nil
}

// FAQs returns the global FAQ index.
func (r *Registry) FAQs() *Index { return r.faqs }

// Instructions returns the instruction index for the given platform,
// falling back to the full instructions index when no platform-specific
// index exists. A missing platform index is a log-level concern only.
func (r *Registry) Instructions(platform models.Platform) *Index {
	if platform == models.PlatformNone {
		return r.instructions
	}
	if idx, ok := r.platforms[platform]; ok {
		return idx
	}
	r.logger.Warn("Platform index not found, using general instructions index",
		zap.String("platform", string(platform)),
	)
	return r.instructions
}
