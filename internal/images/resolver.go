package images

import (
	"context"
	"math/rand"
	"sort"
	"strings"
	"time"

	"autopress/internal/logger"
)

// maxCandidates bounds the random pick to the top of the result page, biasing
// toward relevance without always taking the same top hit.
const maxCandidates = 5

// defaultCategory is the generic fallback query when no lookup entry matches.
const defaultCategory = "colorful abstract"

// genericCategories maps specific terms to a generic search category for the
// final fallback query. The longest matching key wins on substring
// containment.
var genericCategories = map[string]string{
	"artificial intelligence": "futuristic technology",
	"machine learning":        "futuristic technology",
	"smart home":              "modern technology",
	"cybersecurity":           "computer security",
	"software":                "computer code",
	"programming":             "computer code",
	"crypto":                  "finance money",
	"investing":               "finance money",
	"budget":                  "finance money",
	"recipe":                  "food cooking",
	"cooking":                 "food cooking",
	"garden":                  "nature plants",
	"travel":                  "landscape adventure",
	"fitness":                 "healthy lifestyle",
	"health":                  "healthy lifestyle",
	"business":                "office workspace",
	"marketing":               "office workspace",
	"education":               "books learning",
	"music":                   "musical instruments",
	"car":                     "automotive road",
}

// Resolver turns keywords into an image URL via a widening query ladder.
type Resolver struct {
	provider Provider
	pageSize int
	rng      *rand.Rand
}

// NewResolver creates a resolver over the given provider.
func NewResolver(provider Provider, pageSize int) *Resolver {
	if pageSize <= 0 {
		pageSize = maxCandidates
	}
	return &Resolver{
		provider: provider,
		pageSize: pageSize,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// NewResolverWithRand creates a resolver with a caller-supplied random
// source. Intended for tests.
func NewResolverWithRand(provider Provider, pageSize int, rng *rand.Rand) *Resolver {
	r := NewResolver(provider, pageSize)
	r.rng = rng
	return r
}

// Resolve tries each query in the ladder in order and returns the first hit,
// then falls back to one generic-category query. Returns "" when nothing is
// found; lookup faults are logged, never raised.
func (r *Resolver) Resolve(ctx context.Context, keywords []string) string {
	if len(keywords) == 0 {
		return ""
	}

	for _, query := range QueryLadder(keywords) {
		if url := r.searchOnce(ctx, query); url != "" {
			return url
		}
	}

	generic := GenericCategory(keywords[0])
	logger.Debug("image lookup falling back to generic category", "category", generic)
	return r.searchOnce(ctx, generic)
}

// QueryLadder builds the ordered search queries: all keywords joined, the
// first two, the first alone. Coinciding rungs are issued once.
func QueryLadder(keywords []string) []string {
	var ladder []string
	add := func(q string) {
		q = strings.TrimSpace(q)
		if q == "" {
			return
		}
		for _, seen := range ladder {
			if seen == q {
				return
			}
		}
		ladder = append(ladder, q)
	}

	add(strings.Join(keywords, " "))
	if len(keywords) >= 2 {
		add(strings.Join(keywords[:2], " "))
	}
	add(keywords[0])

	return ladder
}

// GenericCategory maps a keyword to its generic fallback query. The longest
// lookup key contained in the keyword wins.
func GenericCategory(keyword string) string {
	keyword = strings.ToLower(keyword)

	keys := make([]string, 0, len(genericCategories))
	for k := range genericCategories {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return len(keys[i]) > len(keys[j]) })

	for _, k := range keys {
		if strings.Contains(keyword, k) {
			return genericCategories[k]
		}
	}
	return defaultCategory
}

// searchOnce issues a single query and picks uniformly at random among the
// first candidates. Transport errors and empty pages yield "".
func (r *Resolver) searchOnce(ctx context.Context, query string) string {
	results, err := r.provider.Search(ctx, query, r.pageSize)
	if err != nil {
		logger.Warn("image search failed", "query", query, "error", err.Error())
		return ""
	}
	if len(results) == 0 {
		return ""
	}

	n := len(results)
	if n > maxCandidates {
		n = maxCandidates
	}
	chosen := results[r.rng.Intn(n)]

	return stripQuerySuffix(chosen.URL)
}

// stripQuerySuffix drops any query-string suffix from an image URL.
func stripQuerySuffix(url string) string {
	if i := strings.Index(url, "?"); i >= 0 {
		return url[:i]
	}
	return url
}
