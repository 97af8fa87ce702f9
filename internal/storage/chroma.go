package storage

import (
	"context"
	"fmt"

	"chromamcp/internal/models"
	"chromamcp/pkg/utils"

	chroma "github.com/amikos-tech/chroma-go/pkg/api/v2"
	"github.com/amikos-tech/chroma-go/pkg/embeddings"
	"github.com/go-logr/logr"
)

// ChromaStore keeps documents in a collection on a Chroma server. Embeddings
// are computed client side with the configured Embedder.
type ChromaStore struct {
	client     chroma.Client
	collection chroma.Collection
	logger     logr.Logger
}

func NewChromaStore(ctx context.Context, baseURL, name string, embedder Embedder, logger logr.Logger) (*ChromaStore, error) {
	client, err := chroma.NewHTTPClient(chroma.WithBaseURL(baseURL))
	if err != nil {
		return nil, fmt.Errorf("failed to create chroma client: %w", err)
	}

	collection, err := client.GetOrCreateCollection(ctx, name,
		chroma.WithEmbeddingFunctionCreate(&chromaEmbeddingFunction{embedder: embedder}),
		chroma.WithCollectionMetadataCreate(
			chroma.NewMetadata(chroma.NewStringAttribute("hnsw:space", "cosine")),
		),
	)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to get collection %s: %w", name, err)
	}

	logger.V(1).Info("Connected to chroma collection", "url", baseURL, "collection", name)

	return &ChromaStore{
		client:     client,
		collection: collection,
		logger:     logger,
	}, nil
}

func (cs *ChromaStore) Add(ctx context.Context, doc models.Document) error {
	existing, err := cs.collection.Get(ctx, chroma.WithIDsGet(chroma.DocumentID(doc.ID)))
	if err != nil {
		return fmt.Errorf("failed to check document: %w", err)
	}
	if len(existing.GetIDs()) > 0 {
		return fmt.Errorf("%w: %s", models.ErrDuplicateDocument, doc.ID)
	}

	opts := []chroma.CollectionAddOption{
		chroma.WithIDs(chroma.DocumentID(doc.ID)),
		chroma.WithTexts(doc.Content),
	}
	// chroma rejects empty metadata objects
	if attrs := chromaAttributes(doc.Metadata); len(attrs) > 0 {
		opts = append(opts, chroma.WithMetadatas(chroma.NewDocumentMetadata(attrs...)))
	}

	if err := cs.collection.Add(ctx, opts...); err != nil {
		return fmt.Errorf("failed to store document: %w", err)
	}

	cs.logger.V(1).Info("Stored document", "id", doc.ID)
	return nil
}

func chromaAttributes(metadata map[string]any) []*chroma.MetaAttribute {
	flat := utils.FlattenMetadata(metadata)
	attrs := make([]*chroma.MetaAttribute, 0, len(flat))
	for key, value := range flat {
		switch v := value.(type) {
		case string:
			attrs = append(attrs, chroma.NewStringAttribute(key, v))
		case bool:
			attrs = append(attrs, chroma.NewBoolAttribute(key, v))
		case float64:
			if v == float64(int64(v)) {
				attrs = append(attrs, chroma.NewIntAttribute(key, int64(v)))
			} else {
				attrs = append(attrs, chroma.NewFloatAttribute(key, v))
			}
		}
	}
	return attrs
}

func (cs *ChromaStore) Query(ctx context.Context, text string, n int) ([]models.SearchResult, error) {
	if n < 1 {
		return nil, nil
	}

	qr, err := cs.collection.Query(ctx,
		chroma.WithQueryTexts(text),
		chroma.WithNResults(n),
	)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	idGroups := qr.GetIDGroups()
	distanceGroups := qr.GetDistancesGroups()
	if len(idGroups) == 0 || len(distanceGroups) == 0 {
		return nil, nil
	}

	ids, distances := idGroups[0], distanceGroups[0]
	results := make([]models.SearchResult, 0, len(ids))
	for i, id := range ids {
		if i >= len(distances) {
			break
		}
		results = append(results, models.SearchResult{
			ID:       string(id),
			Distance: float64(distances[i]),
		})
	}

	cs.logger.V(1).Info("Query complete", "matches", len(results))
	return results, nil
}

func (cs *ChromaStore) Close() error {
	return cs.client.Close()
}

// chromaEmbeddingFunction adapts an Embedder to chroma's embedding function.
type chromaEmbeddingFunction struct {
	embedder Embedder
}

func (f *chromaEmbeddingFunction) EmbedDocuments(ctx context.Context, texts []string) ([]embeddings.Embedding, error) {
	out := make([]embeddings.Embedding, 0, len(texts))
	for _, text := range texts {
		emb, err := f.EmbedQuery(ctx, text)
		if err != nil {
			return nil, err
		}
		out = append(out, emb)
	}
	return out, nil
}

func (f *chromaEmbeddingFunction) EmbedQuery(ctx context.Context, text string) (embeddings.Embedding, error) {
	vec, err := f.embedder.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	return embeddings.NewEmbeddingFromFloat32(vec), nil
}

var _ Collection = (*ChromaStore)(nil)
