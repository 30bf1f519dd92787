package publish

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"autopress/internal/config"
	"autopress/internal/core"
)

func testArticle() *core.GeneratedArticle {
	return &core.GeneratedArticle{
		Title:        "Smart Homes Made Simple",
		BodyHTML:     "<p>Body content.</p>",
		SubjectTitle: "How to Build a Smart Home System",
	}
}

func newTestBlogger(serverURL string) *Blogger {
	return &Blogger{
		blogID:      "12345",
		accessToken: "test-token",
		baseURL:     serverURL,
		client:      &http.Client{Timeout: 5 * time.Second},
	}
}

func TestNewBlogger_MissingBlogID(t *testing.T) {
	_, err := NewBlogger(config.BloggerConfig{AccessToken: "tok"})
	if err == nil {
		t.Fatal("expected error for missing blog ID")
	}
}

func TestNewBlogger_MissingToken(t *testing.T) {
	_, err := NewBlogger(config.BloggerConfig{BlogID: "12345"})
	if err == nil {
		t.Fatal("expected error for missing access token")
	}
}

func TestNewBlogger_EndpointOverride(t *testing.T) {
	b, err := NewBlogger(config.BloggerConfig{
		BlogID:      "12345",
		AccessToken: "tok",
		Endpoint:    "http://localhost:9999/blogger",
	})
	if err != nil {
		t.Fatalf("NewBlogger failed: %v", err)
	}
	if b.baseURL != "http://localhost:9999/blogger" {
		t.Errorf("endpoint override ignored, got %q", b.baseURL)
	}
}

func TestNewBlogger_DefaultEndpoint(t *testing.T) {
	b, err := NewBlogger(config.BloggerConfig{BlogID: "12345", AccessToken: "tok"})
	if err != nil {
		t.Fatalf("NewBlogger failed: %v", err)
	}
	if b.baseURL != defaultBaseURL {
		t.Errorf("unexpected default endpoint %q", b.baseURL)
	}
}

func TestPublish(t *testing.T) {
	var gotReq postRequest
	var gotAuth, gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decoding request: %v", err)
		}
		json.NewEncoder(w).Encode(postResponse{ID: "p1", URL: "https://blog.example.com/2026/08/smart-homes.html"})
	}))
	defer server.Close()

	b := newTestBlogger(server.URL)
	url, err := b.Publish(context.Background(), testArticle(), "", []string{"smart", "home"})
	if err != nil {
		t.Fatalf("Publish failed: %v", err)
	}
	if url != "https://blog.example.com/2026/08/smart-homes.html" {
		t.Errorf("unexpected URL %q", url)
	}
	if gotAuth != "Bearer test-token" {
		t.Errorf("unexpected Authorization header %q", gotAuth)
	}
	if gotPath != "/blogs/12345/posts/" {
		t.Errorf("unexpected path %q", gotPath)
	}
	if gotReq.Kind != "blogger#post" {
		t.Errorf("unexpected kind %q", gotReq.Kind)
	}
	if gotReq.Title != "Smart Homes Made Simple" {
		t.Errorf("unexpected title %q", gotReq.Title)
	}
	if gotReq.Content != "<p>Body content.</p>" {
		t.Errorf("unexpected content %q", gotReq.Content)
	}
	if len(gotReq.Labels) != 2 || gotReq.Labels[0] != "smart" {
		t.Errorf("unexpected labels %v", gotReq.Labels)
	}
}

func TestPublish_PrependsHeaderImage(t *testing.T) {
	var gotReq postRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&gotReq)
		json.NewEncoder(w).Encode(postResponse{URL: "https://blog.example.com/p"})
	}))
	defer server.Close()

	b := newTestBlogger(server.URL)
	if _, err := b.Publish(context.Background(), testArticle(), "https://images.example.com/photo.jpg", nil); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}
	if !strings.HasPrefix(gotReq.Content, `<a href="https://images.example.com/photo.jpg">`) {
		t.Errorf("content not prefixed with linked image: %q", gotReq.Content)
	}
	if !strings.Contains(gotReq.Content, `<img src="https://images.example.com/photo.jpg"`) {
		t.Errorf("img tag missing: %q", gotReq.Content)
	}
	if !strings.Contains(gotReq.Content, `alt="Smart Homes Made Simple"`) {
		t.Errorf("alt text missing: %q", gotReq.Content)
	}
	if !strings.HasSuffix(gotReq.Content, "<p>Body content.</p>") {
		t.Errorf("article body lost: %q", gotReq.Content)
	}
}

func TestPublish_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": {"message": "invalid credentials"}}`, http.StatusUnauthorized)
	}))
	defer server.Close()

	b := newTestBlogger(server.URL)
	_, err := b.Publish(context.Background(), testArticle(), "", nil)
	if err == nil {
		t.Fatal("expected error on API failure")
	}
	if !strings.Contains(err.Error(), "401") {
		t.Errorf("error should carry the status code: %v", err)
	}
}

func TestPublish_NilArticle(t *testing.T) {
	b := newTestBlogger("http://unused")
	if _, err := b.Publish(context.Background(), nil, "", nil); err == nil {
		t.Fatal("expected error for nil article")
	}
}
