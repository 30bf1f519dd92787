package feeds

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

const rssDoc = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Example Blog</title>
    <item>
      <title>First Post</title>
      <link>https://example.com/first</link>
      <description>The first post.</description>
    </item>
    <item>
      <title>Second Post</title>
      <link>https://example.com/second</link>
      <description>The second post.</description>
    </item>
  </channel>
</rss>`

const atomDoc = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <title>Example Feed</title>
  <entry>
    <title>Atom Entry</title>
    <link rel="alternate" href="https://example.org/entry"/>
    <summary>An atom entry.</summary>
  </entry>
</feed>`

func TestParse_RSS(t *testing.T) {
	entries, err := Parse([]byte(rssDoc))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Title != "First Post" {
		t.Errorf("unexpected title: %q", entries[0].Title)
	}
	if entries[0].Link != "https://example.com/first" {
		t.Errorf("unexpected link: %q", entries[0].Link)
	}
	if entries[1].Description != "The second post." {
		t.Errorf("unexpected description: %q", entries[1].Description)
	}
}

func TestParse_Atom(t *testing.T) {
	entries, err := Parse([]byte(atomDoc))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].Title != "Atom Entry" {
		t.Errorf("unexpected title: %q", entries[0].Title)
	}
	if entries[0].Link != "https://example.org/entry" {
		t.Errorf("unexpected link: %q", entries[0].Link)
	}
	if entries[0].Description != "An atom entry." {
		t.Errorf("unexpected description: %q", entries[0].Description)
	}
}

func TestParse_UnknownRoot(t *testing.T) {
	_, err := Parse([]byte(`<html><body>not a feed</body></html>`))
	if err == nil {
		t.Error("expected error for unknown root element")
	}
}

func TestParse_Malformed(t *testing.T) {
	_, err := Parse([]byte(`<<<not xml`))
	if err == nil {
		t.Error("expected error for malformed document")
	}
}

func TestFetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ua := r.Header.Get("User-Agent"); ua != "Autopress/1.0" {
			t.Errorf("unexpected User-Agent: %q", ua)
		}
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(rssDoc))
	}))
	defer server.Close()

	m := NewManager("", 5*time.Second)
	entries, err := m.Fetch(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if len(entries) != 2 {
		t.Errorf("expected 2 entries, got %d", len(entries))
	}
}

func TestFetch_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	m := NewManager("", 5*time.Second)
	if _, err := m.Fetch(context.Background(), server.URL); err == nil {
		t.Error("expected error for 500 response")
	}
}
