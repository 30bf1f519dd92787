// Package sanitize strips generation artifacts from model output before it
// is formatted into block markup. Pure transforms, no I/O.
package sanitize

import (
	"regexp"
	"strings"
)

var (
	fenceOpenRe  = regexp.MustCompile("(?m)^```[a-zA-Z]*[ \t]*$")
	boldRe       = regexp.MustCompile(`\*\*([^*\n]+)\*\*`)
	italicRe     = regexp.MustCompile(`(^|[^*\w])\*([^*\n]+)\*`)
	jsonFieldRe  = regexp.MustCompile(`(?m)^\s*"(?:title|content)"\s*:\s*`)
	danglingWrap = regexp.MustCompile(`(?s)^\s*[{\[]\s*|\s*[}\]]\s*$`)
)

// CleanMarkdown converts markdown emphasis artifacts left in model output
// into semantic tags and drops code-fence markers. Block-level structure
// (headings, lists) is left alone; the content formatter owns that.
func CleanMarkdown(text string) string {
	if text == "" {
		return ""
	}

	text = fenceOpenRe.ReplaceAllString(text, "")
	text = boldRe.ReplaceAllString(text, "<strong>$1</strong>")
	text = italicRe.ReplaceAllString(text, "$1<em>$2</em>")

	return strings.TrimSpace(text)
}

// CleanJSONResidue removes leftover JSON structure that leaks through when
// the model echoes the payload shape it was told not to use: code fences,
// stray field syntax, wrapping braces, and escaped quote/newline sequences.
func CleanJSONResidue(text string) string {
	if text == "" {
		return ""
	}

	text = fenceOpenRe.ReplaceAllString(text, "")
	text = strings.ReplaceAll(text, "```", "")
	text = danglingWrap.ReplaceAllString(text, "")
	text = jsonFieldRe.ReplaceAllString(text, "")

	// Escaped sequences surviving a half-parsed payload
	text = strings.ReplaceAll(text, `\"`, `"`)
	text = strings.ReplaceAll(text, `\n`, "\n")
	text = strings.ReplaceAll(text, `\t`, "\t")

	// A payload echoed as one quoted string keeps its outer quotes
	text = strings.TrimSpace(text)
	if len(text) >= 2 && strings.HasPrefix(text, `"`) && strings.HasSuffix(text, `"`) {
		text = text[1 : len(text)-1]
	}

	return strings.TrimSpace(text)
}
