package storage

import (
	"context"
	"fmt"

	"chromamcp/internal/models"
	"chromamcp/pkg/utils"

	"github.com/go-logr/logr"
	"github.com/pinecone-io/go-pinecone/pinecone"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	// contentKey holds the document text inside vector metadata.
	contentKey = "chroma:document"

	// pineconeMaxTopK is the largest top_k a query accepts.
	pineconeMaxTopK = 10000
)

// PineconeStore keeps one collection per namespace of a cosine-metric index.
type PineconeStore struct {
	client    *pinecone.Client
	hostUrl   string
	namespace string
	embedder  Embedder
	logger    logr.Logger
}

func NewPineconeStore(apiKey, hostUrl, namespace string, embedder Embedder, logger logr.Logger) (*PineconeStore, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("pinecone API key is required")
	}
	if hostUrl == "" {
		return nil, fmt.Errorf("pinecone host is required")
	}

	client, err := pinecone.NewClient(
		pinecone.NewClientParams{
			ApiKey: apiKey,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create pinecone client: %w", err)
	}

	return &PineconeStore{
		client:    client,
		hostUrl:   hostUrl,
		namespace: namespace,
		embedder:  embedder,
		logger:    logger,
	}, nil
}

func (ps *PineconeStore) index() (*pinecone.IndexConnection, error) {
	index, err := ps.client.Index(pinecone.NewIndexConnParams{
		Host:      ps.hostUrl,
		Namespace: ps.namespace,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get index: %w", err)
	}
	return index, nil
}

func (ps *PineconeStore) Add(ctx context.Context, doc models.Document) error {
	metadata, err := pineconeMetadata(doc)
	if err != nil {
		return err
	}

	index, err := ps.index()
	if err != nil {
		return err
	}
	defer index.Close()

	existing, err := index.FetchVectors(ctx, []string{doc.ID})
	if err != nil {
		return fmt.Errorf("failed to check document: %w", err)
	}
	if _, ok := existing.Vectors[doc.ID]; ok {
		return fmt.Errorf("%w: %s", models.ErrDuplicateDocument, doc.ID)
	}

	embedding, err := ps.embedder.Embed(ctx, doc.Content)
	if err != nil {
		return fmt.Errorf("failed to embed document: %w", err)
	}

	if _, err := index.UpsertVectors(ctx, []*pinecone.Vector{
		{
			Id:       doc.ID,
			Values:   embedding,
			Metadata: metadata,
		},
	}); err != nil {
		return fmt.Errorf("failed to store document: %w", err)
	}

	ps.logger.V(1).Info("Stored document", "id", doc.ID, "namespace", ps.namespace)
	return nil
}

func pineconeMetadata(doc models.Document) (*structpb.Struct, error) {
	if _, ok := doc.Metadata[contentKey]; ok {
		return nil, fmt.Errorf("%w: metadata key %q is reserved", models.ErrInvalidArgument, contentKey)
	}

	fields := utils.FlattenMetadata(doc.Metadata)
	fields[contentKey] = doc.Content

	metadata, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, fmt.Errorf("failed to create metadata: %w", err)
	}
	return metadata, nil
}

func (ps *PineconeStore) Query(ctx context.Context, text string, n int) ([]models.SearchResult, error) {
	if n < 1 {
		return nil, nil
	}

	embedding, err := ps.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	index, err := ps.index()
	if err != nil {
		return nil, err
	}
	defer index.Close()

	queryResp, err := index.QueryByVectorValues(ctx, &pinecone.QueryByVectorValuesRequest{
		Vector: embedding,
		TopK:   pineconeTopK(n),
	})
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	results := pineconeResults(queryResp.Matches)
	ps.logger.V(1).Info("Query complete", "matches", len(results))
	return results, nil
}

func pineconeTopK(n int) uint32 {
	if n > pineconeMaxTopK {
		return pineconeMaxTopK
	}
	return uint32(n)
}

// pineconeResults converts cosine scores into distances, skipping empty
// matches.
func pineconeResults(matches []*pinecone.ScoredVector) []models.SearchResult {
	results := make([]models.SearchResult, 0, len(matches))
	for _, match := range matches {
		if match == nil || match.Vector == nil {
			continue
		}
		results = append(results, models.SearchResult{
			ID:       match.Vector.Id,
			Distance: 1 - float64(match.Score),
		})
	}
	return results
}

func (ps *PineconeStore) Close() error {
	return nil
}

var _ Collection = (*PineconeStore)(nil)
