package publish

import (
	"fmt"
	"net/url"
	"strings"

	"lightbox/internal/fileutil"
)

// ValidateVideoReference checks a video reference before upload. Accepted
// forms are a well-formed http(s) URL or a local file reference (file://
// URI or absolute path). Anything else is rejected so an upload never
// starts against a reference the API would bounce.
func ValidateVideoReference(ref string) error {
	trimmed := strings.TrimSpace(ref)
	if trimmed == "" {
		return fmt.Errorf("video reference is empty")
	}
	if _, ok := fileutil.PathFromFileURI(trimmed); ok {
		return nil
	}
	parsed, err := url.Parse(trimmed)
	if err != nil {
		return fmt.Errorf("video reference %q is not a valid URL: %w", trimmed, err)
	}
	if (parsed.Scheme == "http" || parsed.Scheme == "https") && parsed.Host != "" {
		return nil
	}
	return fmt.Errorf("video reference %q is neither a remote URL nor a local file", trimmed)
}
