package uploader

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"lightbox/internal/config"
	"lightbox/internal/services"
)

// Kind tells the upload API how to route and validate the file.
type Kind string

const (
	KindImage Kind = "image"
	KindVideo Kind = "video"
)

// Client uploads one local file on behalf of an account.
type Client interface {
	Upload(ctx context.Context, filePath, ownerID string, kind Kind) (string, error)
}

// HTTPDoer describes the HTTP client used by the uploader.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// HTTPClient is the production uploader backed by the configured API.
type HTTPClient struct {
	baseURL string
	token   string
	client  HTTPDoer
}

// NewFromConfig builds an uploader from the uploader config section.
func NewFromConfig(cfg *config.Config) *HTTPClient {
	return New(cfg.Uploader.BaseURL, cfg.Uploader.Token,
		services.NewHTTPClient(cfg.Uploader.TimeoutSeconds, 120*time.Second))
}

// New constructs an uploader against an explicit endpoint, primarily for
// tests injecting a stub HTTPDoer.
func New(baseURL, token string, client HTTPDoer) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		token:   strings.TrimSpace(token),
		client:  client,
	}
}

type uploadResponse struct {
	URL   string `json:"url"`
	Error string `json:"error"`
}

// Upload posts the file as multipart form data and returns the remote URL
// the API stored it under.
func (c *HTTPClient) Upload(ctx context.Context, filePath, ownerID string, kind Kind) (string, error) {
	if c.baseURL == "" {
		return "", fmt.Errorf("uploader base URL is not configured")
	}

	file, err := os.Open(filePath)
	if err != nil {
		return "", fmt.Errorf("open upload source: %w", err)
	}
	defer file.Close()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	if err := writer.WriteField("owner_id", ownerID); err != nil {
		return "", fmt.Errorf("write owner field: %w", err)
	}
	if err := writer.WriteField("kind", string(kind)); err != nil {
		return "", fmt.Errorf("write kind field: %w", err)
	}
	part, err := writer.CreateFormFile("file", filepath.Base(filePath))
	if err != nil {
		return "", fmt.Errorf("create file part: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return "", fmt.Errorf("read upload source: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("finish multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/uploads", &body)
	if err != nil {
		return "", fmt.Errorf("build upload request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("User-Agent", services.UserAgent)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", filepath.Base(filePath), err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("read upload response: %w", err)
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return "", fmt.Errorf("upload API returned %d: %s", resp.StatusCode, services.ErrorSnippet(payload))
	}

	var decoded uploadResponse
	if err := json.Unmarshal(payload, &decoded); err != nil {
		return "", fmt.Errorf("decode upload response: %w", err)
	}
	if decoded.Error != "" {
		return "", fmt.Errorf("upload API rejected file: %s", decoded.Error)
	}
	if strings.TrimSpace(decoded.URL) == "" {
		return "", fmt.Errorf("upload API returned no URL")
	}
	return decoded.URL, nil
}
