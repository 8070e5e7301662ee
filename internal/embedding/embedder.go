package embedding

import (
	"context"
	"math"
)

// Embedder maps text to a fixed-dimension normalized vector. The retrieval
// router relies on output vectors being L2-normalized so that inner-product
// scores behave as cosine similarities.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Normalize scales v to unit L2 norm in place and returns it. A zero
// vector is returned unchanged.
func Normalize(v []float32) []float32 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return v
	}
	norm := float32(math.Sqrt(sum))
	for i := range v {
		v[i] /= norm
	}
	return v
}
