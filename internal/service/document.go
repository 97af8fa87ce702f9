package service

import (
	"context"
	"fmt"
	"strings"

	"chromamcp/internal/models"
	"chromamcp/internal/storage"

	"github.com/go-logr/logr"
)

type DocumentService struct {
	collection storage.Collection
	maxResults int
	logger     logr.Logger
}

// NewDocumentService wires the document operations to a collection. A
// maxResults of zero or less leaves num_results uncapped.
func NewDocumentService(collection storage.Collection, maxResults int, logger logr.Logger) *DocumentService {
	return &DocumentService{
		collection: collection,
		maxResults: maxResults,
		logger:     logger,
	}
}

func (ds *DocumentService) AddDocument(ctx context.Context, req *models.AddDocumentRequest) (string, error) {
	if err := req.Validate(); err != nil {
		return "", err
	}

	if err := ds.collection.Add(ctx, req.Document()); err != nil {
		return "", err
	}

	ds.logger.Info("Added document", "id", req.DocumentID)
	return fmt.Sprintf("Added document '%s' successfully", req.DocumentID), nil
}

func (ds *DocumentService) SearchSimilar(ctx context.Context, req *models.SearchRequest) (string, error) {
	if err := req.Validate(); err != nil {
		return "", err
	}

	n := req.NumResults
	if ds.maxResults > 0 && n > ds.maxResults {
		ds.logger.V(1).Info("Capping num_results", "requested", n, "max", ds.maxResults)
		n = ds.maxResults
	}

	results, err := ds.collection.Query(ctx, req.Query, n)
	if err != nil {
		return "", err
	}

	ds.logger.V(1).Info("Search complete", "query", req.Query, "matches", len(results))
	return FormatResults(results), nil
}

// FormatResults renders matches in rank order, one per line, under a fixed
// header. Similarity is rounded to two decimals.
func FormatResults(results []models.SearchResult) string {
	var sb strings.Builder
	sb.WriteString("Similar documents:")
	for i, r := range results {
		fmt.Fprintf(&sb, "\n%d. Document '%s' (similarity: %.2f)", i+1, r.ID, r.Similarity())
	}
	return sb.String()
}
