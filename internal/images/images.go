// Package images turns keywords into an illustrating image URL. Lookup runs
// a widening-then-generic query sequence against a pluggable search provider.
package images

import (
	"context"
	"fmt"
)

// Provider defines the interface for image search providers
type Provider interface {
	// Search returns a page of candidate images for a query
	Search(ctx context.Context, query string, perPage int) ([]Image, error)

	// GetName returns the name of the search provider
	GetName() string
}

// Image represents one search candidate. Every provider guarantees at least
// a medium-size URL.
type Image struct {
	URL          string `json:"url"`
	Alt          string `json:"alt"`
	Photographer string `json:"photographer"`
}

// ProviderType represents the type of image search provider
type ProviderType string

const (
	ProviderTypePexels ProviderType = "pexels"
	ProviderTypeMock   ProviderType = "mock"
)

// NewProvider creates an image search provider of the specified type.
func NewProvider(providerType ProviderType, apiKey string) (Provider, error) {
	switch providerType {
	case ProviderTypePexels:
		if apiKey == "" {
			return nil, fmt.Errorf("pexels provider requires an API key")
		}
		return NewPexelsProvider(apiKey), nil
	case ProviderTypeMock:
		return NewMockProvider(), nil
	default:
		return nil, fmt.Errorf("unsupported image provider %q", providerType)
	}
}
