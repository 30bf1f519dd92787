package images

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"autopress/internal/logger"
)

const pexelsBaseURL = "https://api.pexels.com/v1/search"

// PexelsProvider implements Provider using the Pexels photo search API
type PexelsProvider struct {
	apiKey    string
	baseURL   string
	client    *http.Client
	rateLimit time.Duration
	lastCall  time.Time
}

// NewPexelsProvider creates a new Pexels image search provider
func NewPexelsProvider(apiKey string) *PexelsProvider {
	return &PexelsProvider{
		apiKey:  apiKey,
		baseURL: pexelsBaseURL,
		client: &http.Client{
			Timeout: 15 * time.Second,
		},
		rateLimit: 500 * time.Millisecond,
	}
}

// GetName returns the name of this provider
func (p *PexelsProvider) GetName() string {
	return "Pexels"
}

// Search performs an image search using the Pexels API
func (p *PexelsProvider) Search(ctx context.Context, query string, perPage int) ([]Image, error) {
	// Respect rate limiting
	if elapsed := time.Since(p.lastCall); elapsed < p.rateLimit {
		time.Sleep(p.rateLimit - elapsed)
	}
	p.lastCall = time.Now()

	if perPage <= 0 {
		perPage = 5
	}

	params := url.Values{}
	params.Set("query", query)
	params.Set("per_page", strconv.Itoa(perPage))

	fullURL := p.baseURL + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create Pexels request: %w", err)
	}
	req.Header.Set("Authorization", p.apiKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute Pexels request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("Pexels request failed with status: %d", resp.StatusCode)
	}

	var apiResponse struct {
		Photos []struct {
			Alt          string `json:"alt"`
			Photographer string `json:"photographer"`
			Src          struct {
				Medium string `json:"medium"`
				Large  string `json:"large"`
			} `json:"src"`
		} `json:"photos"`
		TotalResults int `json:"total_results"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&apiResponse); err != nil {
		return nil, fmt.Errorf("failed to parse Pexels response: %w", err)
	}

	var results []Image
	for _, photo := range apiResponse.Photos {
		imageURL := photo.Src.Medium
		if imageURL == "" {
			imageURL = photo.Src.Large
		}
		if imageURL == "" {
			continue
		}
		results = append(results, Image{
			URL:          imageURL,
			Alt:          photo.Alt,
			Photographer: photo.Photographer,
		})
	}

	logger.Debug("Pexels search completed", "query", query, "results_found", len(results))

	return results, nil
}
