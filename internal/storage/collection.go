package storage

import (
	"context"

	"chromamcp/internal/models"
)

// Collection is a named set of documents with its own embedding function.
// Implementations reject ids that are already stored with
// models.ErrDuplicateDocument.
type Collection interface {
	Add(ctx context.Context, doc models.Document) error
	// Query returns up to n results ordered by ascending distance.
	Query(ctx context.Context, text string, n int) ([]models.SearchResult, error)
	Close() error
}

// Embedder maps text to a vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}
