// Package feeds fetches and parses subject feeds. Two wire shapes are
// tolerated: the RSS channel/item shape and the Atom entry-element shape.
// The parser is selected by the root element name and both shapes normalize
// to core.FeedEntry.
package feeds

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"time"

	"autopress/internal/core"
)

// RSS represents the channel/item wire shape.
type RSS struct {
	XMLName xml.Name `xml:"rss"`
	Channel Channel  `xml:"channel"`
}

// Channel represents an RSS channel
type Channel struct {
	Title string    `xml:"title"`
	Items []RSSItem `xml:"item"`
}

// RSSItem represents an RSS item
type RSSItem struct {
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	Description string `xml:"description"`
}

// Atom represents the entry-element wire shape.
type Atom struct {
	XMLName xml.Name    `xml:"feed"`
	Title   string      `xml:"title"`
	Entries []AtomEntry `xml:"entry"`
}

// AtomEntry represents an Atom entry
type AtomEntry struct {
	Title   string     `xml:"title"`
	Link    []AtomLink `xml:"link"`
	Summary string     `xml:"summary"`
}

// AtomLink represents an Atom link element
type AtomLink struct {
	Href string `xml:"href,attr"`
	Rel  string `xml:"rel,attr"`
}

// Manager fetches and parses subject feeds.
type Manager struct {
	client    *http.Client
	userAgent string
}

// NewManager creates a new feed manager.
func NewManager(userAgent string, timeout time.Duration) *Manager {
	if userAgent == "" {
		userAgent = "Autopress/1.0"
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Manager{
		client:    &http.Client{Timeout: timeout},
		userAgent: userAgent,
	}
}

// Fetch retrieves a feed and returns its normalized entries.
func (m *Manager) Fetch(ctx context.Context, feedURL string) ([]core.FeedEntry, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", m.userAgent)

	resp, err := m.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("feed returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read feed body: %w", err)
	}

	return Parse(body)
}

// Parse decodes a feed document, selecting the parser by root element name.
func Parse(body []byte) ([]core.FeedEntry, error) {
	root, err := rootElement(body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	switch root {
	case "rss":
		var rss RSS
		if err := xml.Unmarshal(body, &rss); err != nil {
			return nil, fmt.Errorf("failed to parse RSS feed: %w", err)
		}
		return normalizeRSS(rss), nil
	case "feed":
		var atom Atom
		if err := xml.Unmarshal(body, &atom); err != nil {
			return nil, fmt.Errorf("failed to parse Atom feed: %w", err)
		}
		return normalizeAtom(atom), nil
	default:
		return nil, fmt.Errorf("unsupported feed root element %q", root)
	}
}

// rootElement returns the local name of the document's first start element.
func rootElement(body []byte) (string, error) {
	decoder := xml.NewDecoder(bytes.NewReader(body))
	for {
		tok, err := decoder.Token()
		if err != nil {
			return "", err
		}
		if start, ok := tok.(xml.StartElement); ok {
			return start.Name.Local, nil
		}
	}
}

func normalizeRSS(rss RSS) []core.FeedEntry {
	entries := make([]core.FeedEntry, 0, len(rss.Channel.Items))
	for _, item := range rss.Channel.Items {
		entries = append(entries, core.FeedEntry{
			Title:       item.Title,
			Description: item.Description,
			Link:        item.Link,
		})
	}
	return entries
}

func normalizeAtom(atom Atom) []core.FeedEntry {
	entries := make([]core.FeedEntry, 0, len(atom.Entries))
	for _, entry := range atom.Entries {
		var link string
		for _, l := range entry.Link {
			if l.Rel == "" || l.Rel == "alternate" {
				link = l.Href
				break
			}
		}
		entries = append(entries, core.FeedEntry{
			Title:       entry.Title,
			Description: entry.Summary,
			Link:        link,
		})
	}
	return entries
}
