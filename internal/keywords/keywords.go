// Package keywords derives short label terms from a generated article. The
// AI-assisted path degrades to title-derived terms; extraction never fails
// and always yields between 1 and 5 entries.
package keywords

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"

	"autopress/internal/core"
	"autopress/internal/logger"
)

// maxKeywords caps the label set attached to a published article.
const maxKeywords = 5

// excerptLength bounds the body excerpt sent to the extraction service.
const excerptLength = 1000

var stopWords = map[string]bool{
	"with": true, "that": true, "this": true, "from": true,
	"what": true, "when": true, "where": true, "which": true, "while": true,
}

// TextService is the slice of the generation client keyword extraction needs.
type TextService interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// Extractor derives keywords from generated articles.
type Extractor struct {
	service TextService
}

// NewExtractor creates a keyword extractor. A nil service skips the
// AI-assisted path entirely.
func NewExtractor(service TextService) *Extractor {
	return &Extractor{service: service}
}

// Extract returns 1-5 keywords for an article, best guess first. Service
// faults degrade to title-derived terms; Extract never raises.
func (e *Extractor) Extract(ctx context.Context, article *core.GeneratedArticle) []string {
	if article == nil {
		return []string{"article"}
	}

	if e.service != nil {
		if kws := e.extractWithService(ctx, article); len(kws) > 0 {
			return kws
		}
	}

	return FromTitle(article.Title)
}

// extractWithService asks the text service for comma-separated SEO terms.
func (e *Extractor) extractWithService(ctx context.Context, article *core.GeneratedArticle) []string {
	excerpt := bodyText(article.BodyHTML)
	if len(excerpt) > excerptLength {
		// Walk back to a rune boundary so a multi-byte character is never
		// split at the cut
		cut := excerptLength
		for cut > 0 && !utf8.RuneStart(excerpt[cut]) {
			cut--
		}
		excerpt = excerpt[:cut]
	}

	prompt := fmt.Sprintf(`Extract 3-5 SEO keywords for the following article.
Return only the keywords as a comma-separated list, nothing else.

Title: %s

Article excerpt:
%s`, article.Title, excerpt)

	response, err := e.service.GenerateText(ctx, prompt)
	if err != nil {
		logger.Warn("keyword extraction service failed, using title fallback", "error", err.Error())
		return nil
	}

	return parseKeywordList(response)
}

// parseKeywordList splits a comma-separated response into clean terms.
func parseKeywordList(response string) []string {
	var keywords []string
	for _, part := range strings.Split(response, ",") {
		kw := strings.Trim(strings.TrimSpace(part), `"'`)
		kw = strings.TrimSpace(strings.TrimSuffix(kw, "."))
		if kw == "" || strings.ContainsAny(kw, "\n{}") {
			continue
		}
		keywords = append(keywords, kw)
		if len(keywords) == maxKeywords {
			break
		}
	}
	return keywords
}

// FromTitle derives keywords from a title alone: lower-cased words with
// punctuation stripped, stop-words and short words dropped, first-seen order
// kept. Degrades to the first qualifying words when filtering leaves nothing.
func FromTitle(title string) []string {
	words := titleWords(title)

	var keywords []string
	seen := map[string]bool{}
	for _, w := range words {
		if len(w) <= 3 || stopWords[w] || seen[w] {
			continue
		}
		seen[w] = true
		keywords = append(keywords, w)
		if len(keywords) == maxKeywords {
			break
		}
	}

	if len(keywords) > 0 {
		return keywords
	}

	// Total failure: first 3 longer words with no stop-word filtering
	for _, w := range words {
		if len(w) > 3 {
			keywords = append(keywords, w)
			if len(keywords) == 3 {
				break
			}
		}
	}
	if len(keywords) > 0 {
		return keywords
	}

	// Nothing qualifies at all; publish with whatever fragments exist
	if len(words) > 0 {
		n := len(words)
		if n > 3 {
			n = 3
		}
		return words[:n]
	}
	return []string{"article"}
}

// titleWords lower-cases a title, strips punctuation, and splits on
// whitespace.
func titleWords(title string) []string {
	var b strings.Builder
	for _, r := range strings.ToLower(title) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == ' ' || r == '\t' {
			b.WriteRune(r)
		} else {
			b.WriteByte(' ')
		}
	}
	return strings.Fields(b.String())
}

// bodyText strips markup from article body HTML for excerpting.
func bodyText(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return html
	}
	return strings.TrimSpace(doc.Text())
}
