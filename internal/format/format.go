// Package format turns raw or lightly-marked generated text into block-level
// markup. It is the pipeline's last line of defense against publishing
// nothing: Format never fails and never returns empty content.
package format

import (
	"fmt"
	"regexp"
	"strings"
)

// MinContentLength is the threshold below which formatted content is replaced
// with the emergency notice.
const MinContentLength = 10

// Trailer is the fixed disclosure paragraph appended to every article.
const Trailer = `<p><i>This article was created and published automatically as part of an ongoing automated publishing series.</i></p>`

var orderedItemRe = regexp.MustCompile(`^\d+\.\s+`)

// Format converts text into block markup and appends the disclosure trailer.
// Text that already begins with a markup tag passes through unchanged. Text
// shorter than MinContentLength after formatting is replaced with a
// two-paragraph notice referencing the subject title.
func Format(text, subjectTitle string) string {
	text = strings.TrimSpace(text)

	var formatted string
	if strings.HasPrefix(text, "<") {
		formatted = text
	} else {
		formatted = formatBlocks(text)
	}

	if len(formatted) < MinContentLength {
		formatted = emergencyNotice(subjectTitle)
	}

	return formatted + "\n" + Trailer
}

// formatBlocks splits text on blank-line boundaries and classifies each
// block by its leading marker.
func formatBlocks(text string) string {
	blocks := splitBlocks(text)

	var out []string
	for _, block := range blocks {
		out = append(out, formatBlock(block))
	}

	return strings.Join(out, "\n")
}

func splitBlocks(text string) []string {
	raw := regexp.MustCompile(`\n\s*\n`).Split(text, -1)

	var blocks []string
	for _, b := range raw {
		b = strings.TrimSpace(b)
		if b != "" {
			blocks = append(blocks, b)
		}
	}
	return blocks
}

func formatBlock(block string) string {
	switch {
	case strings.HasPrefix(block, "<"):
		// Already markup, e.g. a heading the sanitizer produced
		return block
	case strings.HasPrefix(block, "### "):
		return "<h3>" + strings.TrimSpace(strings.TrimPrefix(block, "### ")) + "</h3>"
	case strings.HasPrefix(block, "## "):
		return "<h2>" + strings.TrimSpace(strings.TrimPrefix(block, "## ")) + "</h2>"
	case strings.HasPrefix(block, "# "):
		return "<h1>" + strings.TrimSpace(strings.TrimPrefix(block, "# ")) + "</h1>"
	case strings.HasPrefix(block, "- "):
		return listBlock(block, "- ", "ul")
	case orderedItemRe.MatchString(block):
		return orderedListBlock(block)
	default:
		return "<p>" + strings.ReplaceAll(block, "\n", " ") + "</p>"
	}
}

func listBlock(block, marker, tag string) string {
	var items []string
	for _, line := range strings.Split(block, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimPrefix(line, marker)
		line = strings.TrimSpace(line)
		if line != "" {
			items = append(items, "<li>"+line+"</li>")
		}
	}
	return "<" + tag + ">" + strings.Join(items, "") + "</" + tag + ">"
}

func orderedListBlock(block string) string {
	var items []string
	for _, line := range strings.Split(block, "\n") {
		line = strings.TrimSpace(orderedItemRe.ReplaceAllString(strings.TrimSpace(line), ""))
		if line != "" {
			items = append(items, "<li>"+line+"</li>")
		}
	}
	return "<ol>" + strings.Join(items, "") + "</ol>"
}

// emergencyNotice is published when generation produced nothing usable.
func emergencyNotice(subjectTitle string) string {
	if subjectTitle == "" {
		subjectTitle = "this topic"
	}
	return fmt.Sprintf(
		"<p>We are working on an in-depth article about %s. The full content will be available here shortly.</p>\n<p>Check back soon for our complete coverage of %s and related topics.</p>",
		subjectTitle, subjectTitle,
	)
}
