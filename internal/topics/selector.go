// Package topics picks the subject each pipeline run writes about. Selection
// prefers fresh feed entries, falls back to AI-generated subjects, and never
// hands back a title the tracking store has already seen.
package topics

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"sort"
	"strings"

	"autopress/internal/core"
	"autopress/internal/logger"
)

// FeedSource fetches entries from a single feed URL.
type FeedSource interface {
	Fetch(ctx context.Context, url string) ([]core.FeedEntry, error)
}

// TextService is the slice of the generation client subject invention needs.
type TextService interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// SubjectStore reserves titles so concurrent runs cannot pick the same one.
type SubjectStore interface {
	ReserveSubject(title string, origin core.Origin) (bool, error)
	IsSubjectUsed(title string) (bool, error)
}

// Selector chooses the next subject to write about.
type Selector struct {
	feeds      FeedSource
	service    TextService
	store      SubjectStore
	feedURLs   []string
	threshold  float64
	maxRetries int
	weights    map[string]float64
	rng        *rand.Rand
}

// Options configures a Selector.
type Options struct {
	FeedURLs []string
	// RandomThreshold is the probability of skipping feeds entirely.
	RandomThreshold float64
	// MaxGenerationRetries caps regeneration on title collisions.
	MaxGenerationRetries int
	// Weights maps content type name to sampling weight.
	Weights map[string]float64
}

// NewSelector creates a subject selector.
func NewSelector(feeds FeedSource, service TextService, store SubjectStore, opts Options) *Selector {
	return NewSelectorWithRand(feeds, service, store, opts, rand.New(rand.NewSource(rand.Int63())))
}

// NewSelectorWithRand creates a selector with an injected random source.
func NewSelectorWithRand(feeds FeedSource, service TextService, store SubjectStore, opts Options, rng *rand.Rand) *Selector {
	if opts.MaxGenerationRetries < 1 {
		opts.MaxGenerationRetries = 3
	}
	return &Selector{
		feeds:      feeds,
		service:    service,
		store:      store,
		feedURLs:   opts.FeedURLs,
		threshold:  opts.RandomThreshold,
		maxRetries: opts.MaxGenerationRetries,
		weights:    opts.Weights,
		rng:        rng,
	}
}

// Select returns a reserved, never-before-used subject, or nil with an error
// when neither feeds nor generation could produce one.
func (s *Selector) Select(ctx context.Context) (*core.Subject, error) {
	if s.rng.Float64() >= s.threshold {
		if subject := s.selectFromFeeds(ctx); subject != nil {
			return subject, nil
		}
	} else {
		logger.Debug("random threshold hit, skipping feed lookup")
	}

	return s.generateSubject(ctx)
}

// selectFromFeeds gathers entries across all configured feeds, drops the
// already-used ones, and reserves a uniformly-picked survivor. A feed that
// fails to fetch is logged and skipped.
func (s *Selector) selectFromFeeds(ctx context.Context) *core.Subject {
	if s.feeds == nil || len(s.feedURLs) == 0 {
		return nil
	}

	var candidates []core.FeedEntry
	for _, url := range s.feedURLs {
		entries, err := s.feeds.Fetch(ctx, url)
		if err != nil {
			logger.Warn("feed fetch failed, skipping", "url", url, "error", err.Error())
			continue
		}
		candidates = append(candidates, entries...)
	}

	fresh := make([]core.FeedEntry, 0, len(candidates))
	for _, entry := range candidates {
		if entry.Title == "" {
			continue
		}
		used, err := s.store.IsSubjectUsed(entry.Title)
		if err != nil {
			logger.Warn("used-subject lookup failed", "title", entry.Title, "error", err.Error())
			continue
		}
		if !used {
			fresh = append(fresh, entry)
		}
	}

	for len(fresh) > 0 {
		i := s.rng.Intn(len(fresh))
		entry := fresh[i]

		reserved, err := s.store.ReserveSubject(entry.Title, core.OriginFeed)
		if err != nil {
			logger.Warn("subject reservation failed", "title", entry.Title, "error", err.Error())
			return nil
		}
		if reserved {
			return &core.Subject{
				Title:       entry.Title,
				Description: entry.Description,
				Origin:      core.OriginFeed,
				ContentType: core.ContentTypeNews,
				SourceLink:  entry.Link,
			}
		}

		// Lost the race for this title, try another
		fresh = append(fresh[:i], fresh[i+1:]...)
	}

	return nil
}

// generateSubject asks the text service to invent a subject, retrying on
// title collisions up to the configured cap.
func (s *Selector) generateSubject(ctx context.Context) (*core.Subject, error) {
	if s.service == nil {
		return nil, fmt.Errorf("no text service configured for subject generation")
	}

	contentType := s.sampleContentType()

	for attempt := 1; attempt <= s.maxRetries; attempt++ {
		candidate, err := s.inventSubject(ctx, contentType)
		if err != nil {
			return nil, err
		}
		if candidate == nil {
			logger.Warn("subject generation returned nothing usable", "attempt", attempt)
			continue
		}

		reserved, err := s.store.ReserveSubject(candidate.Title, core.OriginGenerated)
		if err != nil {
			return nil, fmt.Errorf("reserving generated subject: %w", err)
		}
		if reserved {
			return candidate, nil
		}
		logger.Info("generated subject already used, retrying", "title", candidate.Title, "attempt", attempt)
	}

	return nil, fmt.Errorf("no unused subject after %d generation attempts", s.maxRetries)
}

// subjectPayload is the JSON shape the generation prompt asks for.
type subjectPayload struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

func (s *Selector) inventSubject(ctx context.Context, contentType core.ContentType) (*core.Subject, error) {
	prompt := fmt.Sprintf(`Invent one article topic suited to a %s piece for a general-interest technology and lifestyle blog.
Respond with a JSON object of the form {"title": "...", "description": "..."} and nothing else. The title must be specific and under 80 characters; the description is a one-sentence angle.`, contentType)

	raw, err := s.service.GenerateText(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("subject generation failed: %w", err)
	}

	payload := parseSubjectPayload(raw)
	if payload == nil || strings.TrimSpace(payload.Title) == "" {
		return nil, nil
	}

	return &core.Subject{
		Title:       strings.TrimSpace(payload.Title),
		Description: strings.TrimSpace(payload.Description),
		Origin:      core.OriginGenerated,
		ContentType: contentType,
	}, nil
}

// parseSubjectPayload tolerates code-fenced responses the same way the
// article parser does.
func parseSubjectPayload(raw string) *subjectPayload {
	raw = strings.TrimSpace(raw)

	var payload subjectPayload
	if err := json.Unmarshal([]byte(raw), &payload); err == nil {
		return &payload
	}

	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return nil
	}
	if err := json.Unmarshal([]byte(raw[start:end+1]), &payload); err != nil {
		return nil
	}
	return &payload
}

// sampleContentType draws a content type proportionally to its weight.
// Unknown names in the weight map are ignored; an empty or all-zero map
// degrades to the generic article type.
func (s *Selector) sampleContentType() core.ContentType {
	known := make(map[core.ContentType]bool)
	for _, ct := range core.ContentTypes() {
		known[ct] = true
	}

	names := make([]string, 0, len(s.weights))
	var total float64
	for name, weight := range s.weights {
		if weight <= 0 || !known[core.ContentType(name)] {
			continue
		}
		names = append(names, name)
		total += weight
	}
	if total == 0 {
		return core.ContentTypeArticle
	}
	// Map iteration order is random; sort for a reproducible draw
	sort.Strings(names)

	target := s.rng.Float64() * total
	var cumulative float64
	for _, name := range names {
		cumulative += s.weights[name]
		if target < cumulative {
			return core.ContentType(name)
		}
	}
	return core.ContentType(names[len(names)-1])
}
