package index

import (
	"errors"
	"fmt"
	"sort"

	"campusbot/internal/models"
)

var (
	// ErrEmptyIndex is returned when a search runs against an index with
	// no chunks.
	ErrEmptyIndex = errors.New("index is empty")
)

// Hit is one search result: the matched chunk's ordinal within the index
// and its inner-product similarity score.
type Hit struct {
	Ordinal int
	Score   float64
	Chunk   models.Chunk
}

// Index is an immutable nearest-neighbor structure over precomputed,
// normalized embedding vectors with parallel chunk text. Built once at
// startup; safe for concurrent lock-free reads afterwards.
type Index struct {
	name      string
	dimension int
	chunks    []models.Chunk
	vectors   [][]float32
}

// Build constructs an index from chunks carrying their embeddings. Every
// chunk must have an embedding of the same dimension.
func Build(name string, chunks []models.Chunk) (*Index, error) {
	idx := &Index{name: name}
	for i, c := range chunks {
		if len(c.Embedding) == 0 {
			return nil, fmt.Errorf("index %s: chunk %d has no embedding", name, i)
		}
		if idx.dimension == 0 {
			idx.dimension = len(c.Embedding)
		}
		if len(c.Embedding) != idx.dimension {
			return nil, fmt.Errorf("index %s: chunk %d dimension %d, want %d",
				name, i, len(c.Embedding), idx.dimension)
		}
		c.Position = i
		idx.chunks = append(idx.chunks, c)
		idx.vectors = append(idx.vectors, c.Embedding)
	}
	return idx, nil
}

func (idx *Index) Name() string { return idx.name }

func (idx *Index) Len() int { return len(idx.chunks) }

func (idx *Index) Dimension() int { return idx.dimension }

// Search returns the top-k chunks by inner product against a normalized
// query vector. Scores are cosine similarities, higher is better.
func (idx *Index) Search(query []float32, k int) ([]Hit, error) {
	if len(idx.chunks) == 0 {
		return nil, ErrEmptyIndex
	}
	if len(query) != idx.dimension {
		return nil, fmt.Errorf("index %s: query dimension %d, want %d",
			idx.name, len(query), idx.dimension)
	}
	if k <= 0 {
		k = 1
	}

	hits := make([]Hit, len(idx.vectors))
	for i, v := range idx.vectors {
		hits[i] = Hit{Ordinal: i, Score: dot(v, query), Chunk: idx.chunks[i]}
	}
	sort.Slice(hits, func(a, b int) bool { return hits[a].Score > hits[b].Score })

	if k > len(hits) {
		k = len(hits)
	}
	return hits[:k], nil
}

func dot(a, b []float32) float64 {
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}
