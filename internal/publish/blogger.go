// Package publish pushes finished articles to the blog platform.
package publish

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"autopress/internal/config"
	"autopress/internal/core"
	"autopress/internal/logger"
)

const defaultBaseURL = "https://www.googleapis.com/blogger/v3"

// Blogger publishes posts through the Blogger REST API.
type Blogger struct {
	blogID      string
	accessToken string
	baseURL     string
	client      *http.Client
}

// NewBlogger creates a Blogger publisher. Blog ID and access token are
// required; a missing credential is a configuration fault, not a runtime one.
func NewBlogger(cfg config.BloggerConfig) (*Blogger, error) {
	if cfg.BlogID == "" {
		return nil, fmt.Errorf("blogger blog ID is required (set BLOGGER_BLOG_ID)")
	}
	if cfg.AccessToken == "" {
		return nil, fmt.Errorf("blogger access token is required (set BLOGGER_ACCESS_TOKEN)")
	}

	timeout := 30 * time.Second
	if cfg.Timeout != "" {
		if d, err := time.ParseDuration(cfg.Timeout); err == nil {
			timeout = d
		}
	}

	baseURL := cfg.Endpoint
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	return &Blogger{
		blogID:      cfg.BlogID,
		accessToken: cfg.AccessToken,
		baseURL:     baseURL,
		client:      &http.Client{Timeout: timeout},
	}, nil
}

type postRequest struct {
	Kind    string   `json:"kind"`
	Title   string   `json:"title"`
	Content string   `json:"content"`
	Labels  []string `json:"labels,omitempty"`
}

type postResponse struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// Publish creates a post for the article and returns its public URL. When an
// image URL is given the body is prefixed with a linked header image.
func (b *Blogger) Publish(ctx context.Context, article *core.GeneratedArticle, imageURL string, keywords []string) (string, error) {
	if article == nil {
		return "", fmt.Errorf("article is required")
	}

	content := article.BodyHTML
	if imageURL != "" {
		content = headerImageBlock(imageURL, article.Title) + "\n" + content
	}

	body, err := json.Marshal(postRequest{
		Kind:    "blogger#post",
		Title:   article.Title,
		Content: content,
		Labels:  keywords,
	})
	if err != nil {
		return "", fmt.Errorf("encoding post: %w", err)
	}

	endpoint := fmt.Sprintf("%s/blogs/%s/posts/", b.baseURL, b.blogID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating post request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+b.accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("posting to blogger: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("blogger API returned status %d: %s", resp.StatusCode, string(snippet))
	}

	var post postResponse
	if err := json.NewDecoder(resp.Body).Decode(&post); err != nil {
		return "", fmt.Errorf("decoding blogger response: %w", err)
	}

	logger.Info("post published", "post_id", post.ID, "url", post.URL)
	return post.URL, nil
}

// headerImageBlock wraps the image in a link so readers can open it full size.
func headerImageBlock(imageURL, alt string) string {
	return fmt.Sprintf(
		`<a href=%q><img src=%q alt=%q style="max-width:100%%;height:auto;"/></a>`,
		imageURL, imageURL, alt,
	)
}
