package posts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"lightbox/internal/config"
	"lightbox/internal/services"
)

// Payload is the assembled post handed to the API once every upload
// succeeded.
type Payload struct {
	OwnerID     string   `json:"owner_id"`
	Text        string   `json:"text"`
	ImageURLs   []string `json:"image_urls,omitempty"`
	VideoURLs   []string `json:"video_urls,omitempty"`
	AspectRatio string   `json:"aspect_ratio,omitempty"`
	Category    string   `json:"category,omitempty"`
}

// Post is the API's view of a created or updated post.
type Post struct {
	ID string `json:"id"`
}

// Client creates and updates posts.
type Client interface {
	Create(ctx context.Context, payload Payload) (Post, error)
	Update(ctx context.Context, postID string, payload Payload) (Post, error)
}

// HTTPDoer describes the HTTP client used by the posts service.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// HTTPClient is the production posts client.
type HTTPClient struct {
	baseURL string
	token   string
	client  HTTPDoer
}

// NewFromConfig builds a client from the posts config section.
func NewFromConfig(cfg *config.Config) *HTTPClient {
	return New(cfg.Posts.BaseURL, cfg.Posts.Token,
		services.NewHTTPClient(cfg.Posts.TimeoutSeconds, 30*time.Second))
}

// New constructs a client against an explicit endpoint.
func New(baseURL, token string, client HTTPDoer) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		token:   strings.TrimSpace(token),
		client:  client,
	}
}

// Create publishes a new post.
func (c *HTTPClient) Create(ctx context.Context, payload Payload) (Post, error) {
	return c.send(ctx, http.MethodPost, "/v1/posts", payload)
}

// Update replaces the content of an existing post.
func (c *HTTPClient) Update(ctx context.Context, postID string, payload Payload) (Post, error) {
	if strings.TrimSpace(postID) == "" {
		return Post{}, fmt.Errorf("post ID is empty")
	}
	return c.send(ctx, http.MethodPut, "/v1/posts/"+url.PathEscape(postID), payload)
}

type postResponse struct {
	Post  Post   `json:"post"`
	Error string `json:"error"`
}

func (c *HTTPClient) send(ctx context.Context, method, path string, payload Payload) (Post, error) {
	if c.baseURL == "" {
		return Post{}, fmt.Errorf("posts base URL is not configured")
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return Post{}, fmt.Errorf("encode post payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return Post{}, fmt.Errorf("build post request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", services.UserAgent)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return Post{}, fmt.Errorf("%s post: %w", strings.ToLower(method), err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Post{}, fmt.Errorf("read post response: %w", err)
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return Post{}, fmt.Errorf("posts API returned %d: %s", resp.StatusCode, services.ErrorSnippet(raw))
	}

	var decoded postResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return Post{}, fmt.Errorf("decode post response: %w", err)
	}
	if decoded.Error != "" {
		return Post{}, fmt.Errorf("posts API rejected payload: %s", decoded.Error)
	}
	return decoded.Post, nil
}
