package pipeline

import (
	"context"

	"autopress/internal/core"
)

// TopicSelector picks and reserves the subject a run writes about.
type TopicSelector interface {
	Select(ctx context.Context) (*core.Subject, error)
}

// Generator writes a publish-ready article for a subject.
type Generator interface {
	Generate(ctx context.Context, subject *core.Subject) (*core.GeneratedArticle, error)
}

// KeywordExtractor derives labels from a finished article. It never fails;
// extraction degrades through fallbacks instead.
type KeywordExtractor interface {
	Extract(ctx context.Context, article *core.GeneratedArticle) []string
}

// ImageResolver finds a header image for the keywords. An empty result means
// publish without one.
type ImageResolver interface {
	Resolve(ctx context.Context, keywords []string) string
}

// Publisher pushes the article to the blog platform and returns its URL.
type Publisher interface {
	Publish(ctx context.Context, article *core.GeneratedArticle, imageURL string, keywords []string) (string, error)
}

// Tracker records subject usage and run outcomes.
type Tracker interface {
	MarkSubjectPublished(title string, origin core.Origin) error
	ReleaseSubject(title string) error
	AppendRun(outcome core.PublishOutcome) error
}
