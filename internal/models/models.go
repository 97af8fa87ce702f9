package models

import (
	"encoding/json"
	"fmt"
)

const DefaultNumResults = 5

// Document represents a text document stored in a collection
type Document struct {
	ID       string         `json:"id"`
	Content  string         `json:"content"`
	Metadata map[string]any `json:"metadata"`
}

// SearchResult represents a single match returned by a collection query
type SearchResult struct {
	ID       string  `json:"id"`
	Distance float64 `json:"distance"`
}

// Similarity converts the backend distance into the reported score
func (r SearchResult) Similarity() float64 {
	return 1 - r.Distance
}

// AddDocumentRequest represents the arguments of the add_document tool
type AddDocumentRequest struct {
	DocumentID string         `json:"document_id" jsonschema:"description=Unique identifier of the document"`
	Content    string         `json:"content" jsonschema:"description=Text content of the document"`
	Metadata   map[string]any `json:"metadata,omitempty" jsonschema:"description=Arbitrary key/value metadata"`
}

func (r *AddDocumentRequest) Validate() error {
	if r.DocumentID == "" || r.Content == "" {
		return fmt.Errorf("%w: missing document_id or content", ErrInvalidArgument)
	}
	return nil
}

// Document builds the stored document, defaulting metadata to an empty map
func (r *AddDocumentRequest) Document() Document {
	metadata := r.Metadata
	if metadata == nil {
		metadata = map[string]any{}
	}
	return Document{
		ID:       r.DocumentID,
		Content:  r.Content,
		Metadata: metadata,
	}
}

// SearchRequest represents the arguments of the search_similar tool
type SearchRequest struct {
	Query      string `json:"query" jsonschema:"description=Text to search for"`
	NumResults int    `json:"num_results,omitempty" jsonschema:"minimum=1,default=5,description=Number of results to return"`
}

func (r *SearchRequest) Validate() error {
	if r.Query == "" {
		return fmt.Errorf("%w: missing query", ErrInvalidArgument)
	}
	if r.NumResults < 1 {
		return fmt.Errorf("%w: num_results must be at least 1, got %d", ErrInvalidArgument, r.NumResults)
	}
	return nil
}

// DecodeArguments decodes a raw tool arguments object into one of the typed
// request variants. A missing or empty arguments object is rejected. Only
// keys matching a field name exactly are decoded; unknown keys are ignored.
func DecodeArguments(args map[string]any, dst any) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: missing arguments", ErrInvalidArgument)
	}

	raw, err := json.Marshal(exactArguments(args, dst))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}

	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}

	return nil
}

// ServerInfo represents MCP server information
type ServerInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// APIResponse represents a standard API response
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data"`
	Message string      `json:"message"`
}
