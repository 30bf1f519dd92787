package images

import (
	"context"
)

// MockProvider implements Provider for testing purposes
type MockProvider struct {
	name string
	// ResultsFor maps query to the candidates returned for it; queries not
	// present return an empty page.
	ResultsFor map[string][]Image
	// Err, when set, is returned by every Search call.
	Err error
	// Queries records every query issued, in order.
	Queries []string
}

// NewMockProvider creates a new mock image search provider
func NewMockProvider() *MockProvider {
	return &MockProvider{
		name:       "Mock",
		ResultsFor: map[string][]Image{},
	}
}

// GetName returns the name of this provider
func (m *MockProvider) GetName() string {
	return m.name
}

// Search returns the configured results for a query and records the call
func (m *MockProvider) Search(ctx context.Context, query string, perPage int) ([]Image, error) {
	m.Queries = append(m.Queries, query)

	if m.Err != nil {
		return nil, m.Err
	}

	results := m.ResultsFor[query]
	if perPage > 0 && len(results) > perPage {
		results = results[:perPage]
	}
	return results, nil
}
