package catalog

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

// MediaType classifies an asset as a still image or a video clip.
type MediaType string

const (
	MediaTypeImage MediaType = "image"
	MediaTypeVideo MediaType = "video"
)

// ParseMediaType normalizes user input into a MediaType. Empty input is
// allowed and means "all types" in listing calls.
func ParseMediaType(input string) (MediaType, error) {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "":
		return "", nil
	case "image", "images", "photo", "photos":
		return MediaTypeImage, nil
	case "video", "videos", "clip", "clips":
		return MediaTypeVideo, nil
	default:
		return "", fmt.Errorf("unknown media type %q", input)
	}
}

// Asset is one selectable file in the media store. Identity is ID; the
// remaining fields are a snapshot taken at scan time.
type Asset struct {
	ID              string
	URI             string
	Path            string
	Title           string
	MediaType       MediaType
	Width           int
	Height          int
	DurationSeconds float64
	SizeBytes       int64
	ModifiedAt      time.Time
}

// AssetID derives the stable identity of a file from its path, size, and
// modification time. Rewriting a file in place therefore changes its
// identity, and stale selections fail loudly instead of cropping the
// wrong pixels.
func AssetID(path string, size int64, modTime time.Time) string {
	sum := sha256.Sum256(fmt.Appendf(nil, "%s|%d|%d", path, size, modTime.UnixNano()))
	return hex.EncodeToString(sum[:8])
}
