// Package llm wraps the Gemini API for text generation. The adapter
// tolerates code-fence-wrapped and partially-malformed JSON payloads,
// extracting the first well-formed object by brace matching when a direct
// parse fails.
package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"autopress/internal/config"
)

// DefaultModel is the default Gemini model to use for generation.
const DefaultModel = "gemini-2.5-flash"

// Client represents a client for interacting with the Gemini API.
type Client struct {
	modelName string
	gClient   *genai.Client
}

// ArticlePayload is the structured {title, content} shape the generation
// service is asked to return.
type ArticlePayload struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// NewClient creates a new LLM client from configuration.
func NewClient(cfg config.GeminiConfig) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required. Set GEMINI_API_KEY or ai.gemini.api_key in the config file")
	}

	modelName := cfg.Model
	if modelName == "" {
		modelName = DefaultModel
	}

	ctx := context.Background()
	gClient, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &Client{
		modelName: modelName,
		gClient:   gClient,
	}, nil
}

// GenerateText sends a prompt and returns the raw text response.
func (c *Client) GenerateText(ctx context.Context, prompt string) (string, error) {
	contents := []*genai.Content{{
		Parts: []*genai.Part{{Text: prompt}},
		Role:  "user",
	}}

	resp, err := c.gClient.Models.GenerateContent(ctx, c.modelName, contents, nil)
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("empty response from model")
	}

	return text, nil
}

// ModelName returns the model this client generates with.
func (c *Client) ModelName() string {
	return c.modelName
}

// ParseArticlePayload extracts a structured {title, content} payload from a
// raw model response. A direct parse is attempted first; failing that, code
// fences are stripped and the first well-formed JSON object found by brace
// matching is parsed. Returns nil when no structured payload is present.
func ParseArticlePayload(raw string) *ArticlePayload {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	var payload ArticlePayload
	if err := json.Unmarshal([]byte(raw), &payload); err == nil {
		if payload.Title != "" || payload.Content != "" {
			return &payload
		}
	}

	cleaned := stripCodeFences(raw)
	for _, candidate := range jsonObjectCandidates(cleaned) {
		var p ArticlePayload
		if err := json.Unmarshal([]byte(candidate), &p); err == nil {
			if p.Title != "" || p.Content != "" {
				return &p
			}
		}
	}

	return nil
}

// stripCodeFences removes ```json / ``` markers wrapping a payload.
func stripCodeFences(s string) string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") {
			continue
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}

// jsonObjectCandidates returns every balanced top-level {...} span in s, in
// order of appearance. Brace depth is tracked outside of string literals so
// braces inside content do not end a candidate early.
func jsonObjectCandidates(s string) []string {
	var candidates []string

	depth := 0
	start := -1
	inString := false
	escaped := false

	for i := 0; i < len(s); i++ {
		ch := s[i]

		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}

		switch ch {
		case '"':
			if depth > 0 {
				inString = true
			}
		case '{':
			if depth == 0 {
				start = i
			}
			depth++
		case '}':
			if depth > 0 {
				depth--
				if depth == 0 && start >= 0 {
					candidates = append(candidates, s[start:i+1])
					start = -1
				}
			}
		}
	}

	return candidates
}
