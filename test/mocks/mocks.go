package mocks

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"chromamcp/internal/models"
)

// MockCollection provides an in-memory collection. Distance is the share of
// query words missing from the document, so results are predictable in tests.
type MockCollection struct {
	err       error
	docs      []models.Document
	LastQuery string
	LastN     int
	Closed    bool
}

func NewMockCollection() *MockCollection {
	return &MockCollection{}
}

func (m *MockCollection) SetError(err error) {
	m.err = err
}

func (m *MockCollection) Documents() []models.Document {
	return m.docs
}

func (m *MockCollection) Add(ctx context.Context, doc models.Document) error {
	if m.err != nil {
		return m.err
	}
	for _, d := range m.docs {
		if d.ID == doc.ID {
			return fmt.Errorf("%w: %s", models.ErrDuplicateDocument, doc.ID)
		}
	}
	m.docs = append(m.docs, doc)
	return nil
}

func (m *MockCollection) Query(ctx context.Context, text string, n int) ([]models.SearchResult, error) {
	m.LastQuery = text
	m.LastN = n
	if m.err != nil {
		return nil, m.err
	}

	words := strings.Fields(strings.ToLower(text))
	results := make([]models.SearchResult, 0, len(m.docs))
	for _, d := range m.docs {
		content := strings.ToLower(d.Content)
		missing := 0
		for _, w := range words {
			if !strings.Contains(content, w) {
				missing++
			}
		}
		distance := 1.0
		if len(words) > 0 {
			distance = float64(missing) / float64(len(words))
		}
		results = append(results, models.SearchResult{ID: d.ID, Distance: distance})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Distance < results[j].Distance
	})
	if len(results) > n {
		results = results[:n]
	}
	return results, nil
}

func (m *MockCollection) Close() error {
	m.Closed = true
	return nil
}

// MockEmbedder returns a fixed vector
type MockEmbedder struct {
	err error
}

func NewMockEmbedder() *MockEmbedder {
	return &MockEmbedder{}
}

func (m *MockEmbedder) SetError(err error) {
	m.err = err
}

func (m *MockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if m.err != nil {
		return nil, m.err
	}
	if text == "" {
		return nil, fmt.Errorf("empty text")
	}
	return []float32{0.1, 0.2, 0.3}, nil
}
