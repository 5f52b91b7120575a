package services

import (
	"net/http"
	"strings"
	"time"
)

// UserAgent identifies lightbox to the collaborator APIs.
const UserAgent = "Lightbox-Go/0.1.0"

// NewHTTPClient builds a client honoring a configured timeout in seconds,
// falling back when the value is unset or nonsense.
func NewHTTPClient(timeoutSeconds int, fallback time.Duration) *http.Client {
	timeout := time.Duration(timeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = fallback
	}
	return &http.Client{Timeout: timeout}
}

// ErrorSnippet condenses a response body for inclusion in error messages.
func ErrorSnippet(body []byte) string {
	snippet := strings.TrimSpace(string(body))
	if len(snippet) > 300 {
		snippet = snippet[:300] + "..."
	}
	if snippet == "" {
		snippet = "empty response body"
	}
	return snippet
}
