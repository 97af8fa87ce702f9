package models

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddDocumentRequest_Validate(t *testing.T) {
	tests := []struct {
		name        string
		args        map[string]any
		expectError bool
	}{
		{
			name:        "Valid request",
			args:        map[string]any{"document_id": "doc1", "content": "hello world"},
			expectError: false,
		},
		{
			name:        "Empty document id",
			args:        map[string]any{"document_id": "", "content": "hello world"},
			expectError: true,
		},
		{
			name:        "Missing content",
			args:        map[string]any{"document_id": "doc1"},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req AddDocumentRequest
			require.NoError(t, DecodeArguments(tt.args, &req))

			err := req.Validate()
			if tt.expectError {
				assert.True(t, errors.Is(err, ErrInvalidArgument), "got %v", err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestAddDocumentRequest_DocumentDefaultsMetadata(t *testing.T) {
	req := AddDocumentRequest{DocumentID: "doc1", Content: "hello"}

	doc := req.Document()

	assert.Equal(t, "doc1", doc.ID)
	assert.Equal(t, "hello", doc.Content)
	assert.NotNil(t, doc.Metadata)
	assert.Empty(t, doc.Metadata)
}

func TestSearchRequest_Defaults(t *testing.T) {
	req := SearchRequest{NumResults: DefaultNumResults}
	require.NoError(t, DecodeArguments(map[string]any{"query": "hello"}, &req))

	assert.Equal(t, 5, req.NumResults)
	assert.NoError(t, req.Validate())
}

func TestSearchRequest_Validate(t *testing.T) {
	tests := []struct {
		name string
		req  SearchRequest
	}{
		{name: "Missing query", req: SearchRequest{NumResults: 5}},
		{name: "Zero results", req: SearchRequest{Query: "hello", NumResults: 0}},
		{name: "Negative results", req: SearchRequest{Query: "hello", NumResults: -2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.req.Validate(), ErrInvalidArgument)
		})
	}
}

func TestDecodeArguments(t *testing.T) {
	t.Run("Nil arguments", func(t *testing.T) {
		var req SearchRequest
		assert.ErrorIs(t, DecodeArguments(nil, &req), ErrInvalidArgument)
	})

	t.Run("Empty arguments", func(t *testing.T) {
		var req SearchRequest
		assert.ErrorIs(t, DecodeArguments(map[string]any{}, &req), ErrInvalidArgument)
	})

	t.Run("Wrong field type", func(t *testing.T) {
		var req SearchRequest
		err := DecodeArguments(map[string]any{"query": "hello", "num_results": "two"}, &req)
		assert.ErrorIs(t, err, ErrInvalidArgument)
	})

	t.Run("Keys must match exactly", func(t *testing.T) {
		req := SearchRequest{NumResults: DefaultNumResults}
		require.NoError(t, DecodeArguments(map[string]any{"QUERY": "hi", "Num_Results": 2}, &req))
		assert.Empty(t, req.Query)
		assert.Equal(t, DefaultNumResults, req.NumResults)
		assert.ErrorIs(t, req.Validate(), ErrInvalidArgument)
	})

	t.Run("Unknown keys ignored", func(t *testing.T) {
		var req AddDocumentRequest
		require.NoError(t, DecodeArguments(map[string]any{"document_id": "d1", "content": "x", "extra": true}, &req))
		assert.Equal(t, "d1", req.DocumentID)
		assert.NoError(t, req.Validate())
	})

	t.Run("Fractional count", func(t *testing.T) {
		var req SearchRequest
		err := DecodeArguments(map[string]any{"query": "hello", "num_results": 2.5}, &req)
		assert.ErrorIs(t, err, ErrInvalidArgument)
	})
}

func TestSearchResult_Similarity(t *testing.T) {
	assert.InDelta(t, 0.75, SearchResult{ID: "a", Distance: 0.25}.Similarity(), 1e-9)
}
