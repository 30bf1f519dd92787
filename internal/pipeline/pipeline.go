// Package pipeline orchestrates a single unattended run: pick a subject,
// write the article, derive keywords, find an image, publish, and record the
// outcome. Every run ends in exactly one recorded outcome, whatever fails
// along the way.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"autopress/internal/core"
	"autopress/internal/logger"
)

// Pipeline wires the run stages together.
type Pipeline struct {
	selector  TopicSelector
	generator Generator
	keywords  KeywordExtractor
	images    ImageResolver
	publisher Publisher
	tracker   Tracker
}

// New creates a pipeline. All stages are required except images, which may
// be nil to publish without header images.
func New(selector TopicSelector, generator Generator, keywords KeywordExtractor, images ImageResolver, publisher Publisher, tracker Tracker) *Pipeline {
	return &Pipeline{
		selector:  selector,
		generator: generator,
		keywords:  keywords,
		images:    images,
		publisher: publisher,
		tracker:   tracker,
	}
}

// RunOnce executes one full unattended run. The returned outcome is also
// appended to the run log; a panic anywhere in the run is recovered into an
// error outcome rather than crashing the process.
func (p *Pipeline) RunOnce(ctx context.Context) core.PublishOutcome {
	return p.run(ctx, nil)
}

// RunWithSubject executes a run for an externally requested subject,
// bypassing topic selection. The subject is not reserved up front; it is
// recorded as used only if publishing succeeds.
func (p *Pipeline) RunWithSubject(ctx context.Context, subject *core.Subject) core.PublishOutcome {
	return p.run(ctx, subject)
}

func (p *Pipeline) run(ctx context.Context, subject *core.Subject) (outcome core.PublishOutcome) {
	runID := uuid.New().String()
	logger.Info("pipeline run starting", "run_id", runID)

	defer func() {
		if r := recover(); r != nil {
			logger.Error("pipeline run panicked", fmt.Errorf("%v", r), "run_id", runID)
			outcome = p.finish(core.PublishOutcome{
				RunID:  runID,
				Status: core.StatusError,
				Note:   fmt.Sprintf("internal error: %v", r),
			}, subject)
		}
	}()

	if subject == nil {
		selected, err := p.selector.Select(ctx)
		if err != nil {
			return p.finish(core.PublishOutcome{
				RunID:  runID,
				Status: core.StatusFailed,
				Note:   fmt.Sprintf("subject selection: %v", err),
			}, nil)
		}
		if selected == nil {
			return p.finish(core.PublishOutcome{
				RunID:  runID,
				Status: core.StatusFailed,
				Note:   "no subject selected",
			}, nil)
		}
		subject = selected
	}
	logger.Info("subject selected", "run_id", runID, "title", subject.Title, "origin", subject.Origin)

	article, err := p.generator.Generate(ctx, subject)
	if err != nil || article == nil {
		note := "generation produced no article"
		if err != nil {
			note = fmt.Sprintf("generation: %v", err)
		}
		return p.finish(core.PublishOutcome{
			RunID:  runID,
			Status: core.StatusFailed,
			Title:  subject.Title,
			Note:   note,
		}, subject)
	}

	keywords := p.keywords.Extract(ctx, article)

	var imageURL string
	if p.images != nil {
		imageURL = p.images.Resolve(ctx, keywords)
	}

	url, err := p.publisher.Publish(ctx, article, imageURL, keywords)
	if err != nil {
		return p.finish(core.PublishOutcome{
			RunID:    runID,
			Status:   core.StatusFailed,
			Title:    article.Title,
			Keywords: keywords,
			Note:     fmt.Sprintf("publish: %v", err),
		}, subject)
	}

	if err := p.tracker.MarkSubjectPublished(subject.Title, subject.Origin); err != nil {
		logger.Warn("recording published subject failed", "run_id", runID, "title", subject.Title, "error", err.Error())
	}

	logger.Info("pipeline run published", "run_id", runID, "title", article.Title, "url", url)
	return p.finish(core.PublishOutcome{
		RunID:    runID,
		Status:   core.StatusPublished,
		Title:    article.Title,
		URL:      url,
		Keywords: keywords,
	}, nil)
}

// finish releases a failed run's reservation, stamps the outcome, and appends
// it to the run log. Every run path ends here exactly once.
func (p *Pipeline) finish(outcome core.PublishOutcome, failedSubject *core.Subject) core.PublishOutcome {
	if failedSubject != nil && failedSubject.Origin != core.OriginExternalRequest {
		if err := p.tracker.ReleaseSubject(failedSubject.Title); err != nil {
			logger.Warn("releasing subject reservation failed", "title", failedSubject.Title, "error", err.Error())
		}
	}

	outcome.Timestamp = time.Now().UTC()
	if err := p.tracker.AppendRun(outcome); err != nil {
		logger.Error("appending run outcome failed", err, "run_id", outcome.RunID)
	}
	return outcome
}
