package storage

import (
	"context"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const defaultGoogleEmbeddingModel = "text-embedding-004"

type GoogleEmbedder struct {
	client *genai.Client
	model  *genai.EmbeddingModel
}

func NewGoogleEmbedder(ctx context.Context, apiKey, model string) (*GoogleEmbedder, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("google API key is required")
	}
	if model == "" {
		model = defaultGoogleEmbeddingModel
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create google client: %w", err)
	}

	return &GoogleEmbedder{
		client: client,
		model:  client.EmbeddingModel(model),
	}, nil
}

func (e *GoogleEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	rsp, err := e.model.EmbedContent(ctx, genai.Text(text))
	if err != nil {
		return nil, fmt.Errorf("google embedding failed: %w", err)
	}

	if rsp == nil || rsp.Embedding == nil || len(rsp.Embedding.Values) == 0 {
		return nil, fmt.Errorf("no embeddings returned")
	}

	return rsp.Embedding.Values, nil
}

func (e *GoogleEmbedder) Close() error {
	return e.client.Close()
}
