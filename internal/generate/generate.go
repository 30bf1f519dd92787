// Package generate builds article prose for a subject via the external text
// service, running the structured-payload fallback chain when the service
// misbehaves.
package generate

import (
	"context"
	"fmt"
	"strings"

	"autopress/internal/core"
	"autopress/internal/format"
	"autopress/internal/llm"
	"autopress/internal/logger"
	"autopress/internal/sanitize"
)

// placeholderMarker flags generated content the model left unfinished.
const placeholderMarker = "Insert"

// partialExcerptLimit bounds how much defective content is fed back into the
// rewrite prompt.
const partialExcerptLimit = 4000

// minFallbackLength is the non-emptiness check applied to cleaned raw text.
const minFallbackLength = 10

// TextService is the slice of the generation client article writing needs.
type TextService interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// Generator produces publish-ready articles for subjects.
type Generator struct {
	service   TextService
	wordCount int
}

// NewGenerator creates an article generator targeting the given word count.
func NewGenerator(service TextService, wordCount int) *Generator {
	if wordCount <= 0 {
		wordCount = 800
	}
	return &Generator{
		service:   service,
		wordCount: wordCount,
	}
}

// Generate writes an article for a subject. It returns nil when the service
// yields nothing usable after the full fallback chain.
func (g *Generator) Generate(ctx context.Context, subject *core.Subject) (*core.GeneratedArticle, error) {
	if subject == nil || subject.Title == "" {
		return nil, fmt.Errorf("subject with a title is required")
	}

	raw, err := g.service.GenerateText(ctx, g.articlePrompt(subject))
	if err != nil {
		return nil, fmt.Errorf("text service failed: %w", err)
	}

	payload := llm.ParseArticlePayload(raw)
	if payload == nil {
		return nil, fmt.Errorf("no structured payload in response")
	}

	if payload.Content == "" {
		logger.Warn("payload missing content field, escalating to fallback generator", "subject", subject.Title)
		return g.generateFallback(ctx, subject, "")
	}

	if strings.Contains(payload.Content, placeholderMarker) {
		logger.Warn("payload contains placeholder content, escalating to rewrite fallback", "subject", subject.Title)
		return g.generateFallback(ctx, subject, payload.Content)
	}

	title := payload.Title
	if title == "" {
		title = subject.Title
	}

	body := format.Format(sanitize.CleanMarkdown(payload.Content), subject.Title)

	return &core.GeneratedArticle{
		Title:        title,
		BodyHTML:     body,
		SubjectTitle: subject.Title,
	}, nil
}

// generateFallback requests raw text instead of a structured payload. When
// partial content is given the prompt asks for a rewrite of it; otherwise
// the article is written from scratch.
func (g *Generator) generateFallback(ctx context.Context, subject *core.Subject, partial string) (*core.GeneratedArticle, error) {
	var prompt string
	if partial != "" {
		if len(partial) > partialExcerptLimit {
			partial = partial[:partialExcerptLimit]
		}
		prompt = fmt.Sprintf(`Rewrite the following draft into a complete article about "%s".
Replace every placeholder or bracketed insertion with real content. %s
Write plain prose paragraphs separated by blank lines. Do not return JSON and do not use code fences.

Draft:
%s`, subject.Title, synopsisLine(subject), partial)
	} else {
		prompt = fmt.Sprintf(`Write a %d-word %s article titled "%s". %s
Write plain prose paragraphs separated by blank lines. Do not return JSON and do not use code fences.`,
			g.wordCount, styleName(subject.ContentType), subject.Title, synopsisLine(subject))
	}

	raw, err := g.service.GenerateText(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("fallback generation failed: %w", err)
	}

	cleaned := sanitize.CleanJSONResidue(raw)
	if len(strings.TrimSpace(cleaned)) < minFallbackLength {
		return nil, fmt.Errorf("fallback produced no usable content")
	}

	body := format.Format(sanitize.CleanMarkdown(cleaned), subject.Title)

	return &core.GeneratedArticle{
		Title:        subject.Title,
		BodyHTML:     body,
		SubjectTitle: subject.Title,
	}, nil
}

// articlePrompt builds the primary structured-payload prompt.
func (g *Generator) articlePrompt(subject *core.Subject) string {
	return fmt.Sprintf(`Write a %d-word %s article titled "%s". %s

Requirements:
- Do not use placeholder text such as "[Insert example here]"; write complete, specific content.
- Do not use markdown emphasis like *italic* or **bold**; use semantic tags such as <strong> and <em> instead.
- Structure the body with paragraphs, and headings or lists where they help.

Respond with a JSON object of the form {"title": "...", "content": "..."} and nothing else. Do not wrap the JSON in code fences.`,
		g.wordCount, styleName(subject.ContentType), subject.Title, synopsisLine(subject))
}

func synopsisLine(subject *core.Subject) string {
	if subject.Description == "" {
		return ""
	}
	return fmt.Sprintf("Angle: %s.", strings.TrimSuffix(subject.Description, "."))
}

// styleName maps a content type to the wording used in prompts.
func styleName(ct core.ContentType) string {
	switch ct {
	case core.ContentTypeHowTo:
		return "practical step-by-step how-to"
	case core.ContentTypeListicle:
		return "numbered list-style"
	case core.ContentTypeOpinion:
		return "opinion"
	case core.ContentTypeIndustryInsight:
		return "industry analysis"
	case core.ContentTypeTutorial:
		return "hands-on tutorial"
	case core.ContentTypeReview:
		return "balanced review"
	case core.ContentTypeNews:
		return "news-style"
	default:
		return "informative"
	}
}
