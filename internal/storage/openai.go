package storage

import (
	"context"
	"fmt"

	"github.com/sashabaranov/go-openai"
)

// OpenAIClientInterface defines the interface for OpenAI client operations
type OpenAIClientInterface interface {
	CreateEmbeddings(ctx context.Context, request openai.EmbeddingRequestConverter) (openai.EmbeddingResponse, error)
}

type OpenAIEmbedder struct {
	client OpenAIClientInterface
	model  openai.EmbeddingModel
}

func NewOpenAIEmbedder(apiKey, baseURL, model string) (*OpenAIEmbedder, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("openai API key is required")
	}

	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}

	return NewOpenAIEmbedderWithClient(openai.NewClientWithConfig(cfg), model), nil
}

func NewOpenAIEmbedderWithClient(client OpenAIClientInterface, model string) *OpenAIEmbedder {
	if model == "" {
		model = string(openai.SmallEmbedding3)
	}
	return &OpenAIEmbedder{
		client: client,
		model:  openai.EmbeddingModel(model),
	}
}

func (oc *OpenAIEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := oc.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Model: oc.model,
		Input: []string{text},
	})
	if err != nil {
		return nil, fmt.Errorf("openai embedding failed: %w", err)
	}

	if len(resp.Data) == 0 || len(resp.Data[0].Embedding) == 0 {
		return nil, fmt.Errorf("no embeddings returned")
	}

	return resp.Data[0].Embedding, nil
}
