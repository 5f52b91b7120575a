package eligibility

import (
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

// Client answers the two posting-eligibility questions the publish
// orchestrator asks before any upload starts.
type Client interface {
	VerificationStatus(ctx context.Context, ownerID string) (bool, error)
	MembershipStatus(ctx context.Context, ownerID string) (bool, error)
}

// HTTPDoer describes the HTTP client used by the eligibility service.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// HTTPClient queries the configured eligibility API.
type HTTPClient struct {
	baseURL string
	token   string
	client  HTTPDoer
}

// NewFromConfig builds a client from the eligibility config section.
func NewFromConfig(cfg *config.Config) *HTTPClient {
	return New(cfg.Eligibility.BaseURL, cfg.Eligibility.Token,
		services.NewHTTPClient(cfg.Eligibility.TimeoutSeconds, 15*time.Second))
}

// New constructs a client against an explicit endpoint.
func New(baseURL, token string, client HTTPDoer) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		token:   strings.TrimSpace(token),
		client:  client,
	}
}

// VerificationStatus reports whether the account passed identity
// verification.
func (c *HTTPClient) VerificationStatus(ctx context.Context, ownerID string) (bool, error) {
	var decoded struct {
		Verified bool `json:"verified"`
	}
	if err := c.get(ctx, ownerID, "verification", &decoded); err != nil {
		return false, err
	}
	return decoded.Verified, nil
}

// MembershipStatus reports whether the account's membership is active.
// The orchestrator only consults it for non-exempt account categories.
func (c *HTTPClient) MembershipStatus(ctx context.Context, ownerID string) (bool, error) {
	var decoded struct {
		Active bool `json:"active"`
	}
	if err := c.get(ctx, ownerID, "membership", &decoded); err != nil {
		return false, err
	}
	return decoded.Active, nil
}

func (c *HTTPClient) get(ctx context.Context, ownerID, resource string, out any) error {
	if c.baseURL == "" {
		return fmt.Errorf("eligibility base URL is not configured")
	}
	endpoint := fmt.Sprintf("%s/v1/accounts/%s/%s", c.baseURL, url.PathEscape(ownerID), resource)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build %s request: %w", resource, err)
	}
	req.Header.Set("User-Agent", services.UserAgent)
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("query %s status: %w", resource, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("read %s response: %w", resource, err)
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("eligibility API returned %d for %s: %s", resp.StatusCode, resource, services.ErrorSnippet(payload))
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("decode %s response: %w", resource, err)
	}
	return nil
}
