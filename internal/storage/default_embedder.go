package storage

import (
	"context"
	"fmt"

	defaultef "github.com/amikos-tech/chroma-go/pkg/embeddings/default_ef"
)

// DefaultEmbedder runs Chroma's default all-MiniLM-L6-v2 model locally. The
// ONNX runtime, tokenizer library and model are downloaded to
// ~/.cache/chroma on first use.
type DefaultEmbedder struct {
	ef    *defaultef.DefaultEmbeddingFunction
	close func() error
}

func NewDefaultEmbedder() (*DefaultEmbedder, error) {
	ef, closeFn, err := defaultef.NewDefaultEmbeddingFunction()
	if err != nil {
		return nil, fmt.Errorf("failed to load default embedding function: %w", err)
	}
	return &DefaultEmbedder{ef: ef, close: closeFn}, nil
}

func (e *DefaultEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	emb, err := e.ef.EmbedQuery(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("default embedding failed: %w", err)
	}

	vec := emb.ContentAsFloat32()
	if len(vec) == 0 {
		return nil, fmt.Errorf("no embeddings returned")
	}
	return vec, nil
}

func (e *DefaultEmbedder) Close() error {
	return e.close()
}
