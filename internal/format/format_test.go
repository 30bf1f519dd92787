package format

import (
	"strings"
	"testing"
)

func TestFormat_Paragraphs(t *testing.T) {
	got := Format("First paragraph of prose.\n\nSecond paragraph of prose.", "Topic")
	if !strings.Contains(got, "<p>First paragraph of prose.</p>") {
		t.Errorf("first paragraph not wrapped: %q", got)
	}
	if !strings.Contains(got, "<p>Second paragraph of prose.</p>") {
		t.Errorf("second paragraph not wrapped: %q", got)
	}
}

func TestFormat_Headings(t *testing.T) {
	input := "# Top\n\n## Section\n\n### Subsection"
	got := Format(input, "Topic")
	for _, want := range []string{"<h1>Top</h1>", "<h2>Section</h2>", "<h3>Subsection</h3>"} {
		if !strings.Contains(got, want) {
			t.Errorf("missing %q in %q", want, got)
		}
	}
}

func TestFormat_UnorderedList(t *testing.T) {
	got := Format("- first\n- second\n- third", "Topic")
	want := "<ul><li>first</li><li>second</li><li>third</li></ul>"
	if !strings.Contains(got, want) {
		t.Errorf("missing %q in %q", want, got)
	}
}

func TestFormat_OrderedList(t *testing.T) {
	got := Format("1. first\n2. second\n10. tenth", "Topic")
	want := "<ol><li>first</li><li>second</li><li>tenth</li></ol>"
	if !strings.Contains(got, want) {
		t.Errorf("missing %q in %q", want, got)
	}
}

func TestFormat_MultilineParagraphCollapses(t *testing.T) {
	got := Format("A sentence\nwrapped across\nthree lines.", "Topic")
	if !strings.Contains(got, "<p>A sentence wrapped across three lines.</p>") {
		t.Errorf("line breaks not collapsed: %q", got)
	}
}

func TestFormat_MarkupPassesThrough(t *testing.T) {
	input := "<h2>Handwritten</h2>\n<p>Already formatted body.</p>"
	got := Format(input, "Topic")
	if !strings.HasPrefix(got, input) {
		t.Errorf("markup input altered: %q", got)
	}
}

// Format(x) for any non-empty input always ends with the disclosure trailer.
func TestFormat_AlwaysEndsWithTrailer(t *testing.T) {
	inputs := []string{
		"Plain paragraph of sensible length.",
		"# Heading only",
		"- one\n- two",
		"<p>Markup input</p>",
		"",
		"   ",
		"short",
	}
	for _, input := range inputs {
		got := Format(input, "Topic")
		if !strings.HasSuffix(got, Trailer) {
			t.Errorf("Format(%q) missing trailer suffix: %q", input, got)
		}
		if len(got) < MinContentLength {
			t.Errorf("Format(%q) shorter than minimum: %q", input, got)
		}
	}
}

func TestFormat_EmptyInputGetsEmergencyNotice(t *testing.T) {
	got := Format("", "Quantum Computing")
	if !strings.Contains(got, "in-depth article about Quantum Computing") {
		t.Errorf("emergency notice missing subject: %q", got)
	}
	if !strings.Contains(got, "Check back soon") {
		t.Errorf("second notice paragraph missing: %q", got)
	}
	if !strings.HasSuffix(got, Trailer) {
		t.Errorf("notice missing trailer: %q", got)
	}
}

func TestFormat_EmptyInputEmptyTitle(t *testing.T) {
	got := Format("", "")
	if !strings.Contains(got, "this topic") {
		t.Errorf("expected generic subject fallback: %q", got)
	}
}

func TestFormat_ShortInputReplaced(t *testing.T) {
	got := Format("ok", "Robotics")
	if strings.Contains(got, "<p>ok</p>") {
		t.Errorf("under-threshold content should be replaced: %q", got)
	}
	if !strings.Contains(got, "Robotics") {
		t.Errorf("notice missing subject: %q", got)
	}
}
