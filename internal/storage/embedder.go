package storage

import (
	"context"
	"math"

	"chromamcp/pkg/utils"

	"github.com/cespare/xxhash/v2"
)

const DefaultHashDimensions = 384

// HashEmbedder is a local bag-of-words embedder that needs no model or
// network. Tokens are hashed into a fixed number of buckets and the count
// vector is L2 normalised, so cosine similarity between two embeddings is
// always within [0, 1]. Distinct tokens can share a bucket, and texts made
// only of such tokens then score as identical; more dimensions make that
// rarer.
type HashEmbedder struct {
	dimensions int
}

func NewHashEmbedder(dimensions int) *HashEmbedder {
	if dimensions <= 0 {
		dimensions = DefaultHashDimensions
	}
	return &HashEmbedder{dimensions: dimensions}
}

func (e *HashEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tokens := utils.Tokenize(text)
	if len(tokens) == 0 {
		// text without letters or digits is hashed as a whole
		tokens = []string{text}
	}

	vec := make([]float32, e.dimensions)
	for _, token := range tokens {
		vec[xxhash.Sum64String(token)%uint64(e.dimensions)]++
	}

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	norm = math.Sqrt(norm)
	for i := range vec {
		vec[i] = float32(float64(vec[i]) / norm)
	}

	return vec, nil
}
