package session

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"lightbox/internal/catalog"
	"lightbox/internal/geometry"
)

// SelectedAsset is the snapshot of a catalog asset captured when the user
// picked it. The snapshot survives catalog rescans; a stale snapshot fails
// during processing instead of silently cropping different pixels.
type SelectedAsset struct {
	AssetID         string            `json:"asset_id"`
	URI             string            `json:"uri"`
	Path            string            `json:"path,omitempty"`
	Title           string            `json:"title,omitempty"`
	MediaType       catalog.MediaType `json:"media_type"`
	Width           int               `json:"width"`
	Height          int               `json:"height"`
	DurationSeconds float64           `json:"duration_seconds,omitempty"`
	SizeBytes       int64             `json:"size_bytes,omitempty"`
}

// SelectedAssetFromCatalog snapshots a catalog asset for persistence.
func SelectedAssetFromCatalog(asset catalog.Asset) SelectedAsset {
	return SelectedAsset{
		AssetID:         asset.ID,
		URI:             asset.URI,
		Path:            asset.Path,
		Title:           asset.Title,
		MediaType:       asset.MediaType,
		Width:           asset.Width,
		Height:          asset.Height,
		DurationSeconds: asset.DurationSeconds,
		SizeBytes:       asset.SizeBytes,
	}
}

// Selection decodes the persisted selection snapshot. An empty column
// decodes to an empty selection.
func (s *Session) Selection() ([]SelectedAsset, error) {
	if strings.TrimSpace(s.SelectionJSON) == "" {
		return nil, nil
	}
	var assets []SelectedAsset
	if err := json.Unmarshal([]byte(s.SelectionJSON), &assets); err != nil {
		return nil, fmt.Errorf("decode selection: %w", err)
	}
	return assets, nil
}

// SetSelection encodes and stores the selection snapshot.
func (s *Session) SetSelection(assets []SelectedAsset) error {
	if len(assets) == 0 {
		s.SelectionJSON = ""
		return nil
	}
	data, err := json.Marshal(assets)
	if err != nil {
		return fmt.Errorf("encode selection: %w", err)
	}
	s.SelectionJSON = string(data)
	return nil
}

// Offsets decodes the persisted per-asset pan offsets.
func (s *Session) Offsets() (map[string]geometry.Offset, error) {
	if strings.TrimSpace(s.OffsetsJSON) == "" {
		return map[string]geometry.Offset{}, nil
	}
	offsets := make(map[string]geometry.Offset)
	if err := json.Unmarshal([]byte(s.OffsetsJSON), &offsets); err != nil {
		return nil, fmt.Errorf("decode offsets: %w", err)
	}
	return offsets, nil
}

// SetOffsets encodes and stores the per-asset pan offsets.
func (s *Session) SetOffsets(offsets map[string]geometry.Offset) error {
	if len(offsets) == 0 {
		s.OffsetsJSON = ""
		return nil
	}
	data, err := json.Marshal(offsets)
	if err != nil {
		return fmt.Errorf("encode offsets: %w", err)
	}
	s.OffsetsJSON = string(data)
	return nil
}

// ProcessedMedia is one output of the processing pipeline staged for
// upload. Remote entries carry a URI and no local path; they pass through
// upload untouched.
type ProcessedMedia struct {
	AssetID         string            `json:"asset_id"`
	Path            string            `json:"path,omitempty"`
	URI             string            `json:"uri,omitempty"`
	MediaType       catalog.MediaType `json:"media_type"`
	Width           int               `json:"width,omitempty"`
	Height          int               `json:"height,omitempty"`
	SizeBytes       int64             `json:"size_bytes,omitempty"`
	DurationSeconds float64           `json:"duration_seconds,omitempty"`
}

// Remote reports whether the entry references media that already lives
// outside the local store.
func (p ProcessedMedia) Remote() bool {
	return p.Path == "" && p.URI != ""
}

// Processed decodes the persisted processing outputs.
func (s *Session) Processed() ([]ProcessedMedia, error) {
	if strings.TrimSpace(s.ProcessedJSON) == "" {
		return nil, nil
	}
	var media []ProcessedMedia
	if err := json.Unmarshal([]byte(s.ProcessedJSON), &media); err != nil {
		return nil, fmt.Errorf("decode processed media: %w", err)
	}
	return media, nil
}

// SetProcessed encodes and stores the processing outputs.
func (s *Session) SetProcessed(media []ProcessedMedia) error {
	if len(media) == 0 {
		s.ProcessedJSON = ""
		return nil
	}
	data, err := json.Marshal(media)
	if err != nil {
		return fmt.Errorf("encode processed media: %w", err)
	}
	s.ProcessedJSON = string(data)
	return nil
}

// DraftSeed is the snapshot of the post a session started from. Editing
// an existing post seeds it with the remote state; a new post has an
// empty seed. Close confirmation compares the current draft against it.
type DraftSeed struct {
	Text      string   `json:"text,omitempty"`
	ImageURIs []string `json:"image_uris,omitempty"`
	VideoURIs []string `json:"video_uris,omitempty"`
}

// IsZero reports whether the seed describes an empty post.
func (d DraftSeed) IsZero() bool {
	return d.Text == "" && len(d.ImageURIs) == 0 && len(d.VideoURIs) == 0
}

// Seed decodes the persisted draft seed.
func (s *Session) Seed() (DraftSeed, error) {
	if strings.TrimSpace(s.SeedJSON) == "" {
		return DraftSeed{}, nil
	}
	var seed DraftSeed
	if err := json.Unmarshal([]byte(s.SeedJSON), &seed); err != nil {
		return DraftSeed{}, fmt.Errorf("decode draft seed: %w", err)
	}
	return seed, nil
}

// SetSeed encodes and stores the draft seed.
func (s *Session) SetSeed(seed DraftSeed) error {
	if seed.IsZero() {
		s.SeedJSON = ""
		return nil
	}
	data, err := json.Marshal(seed)
	if err != nil {
		return fmt.Errorf("encode draft seed: %w", err)
	}
	s.SeedJSON = string(data)
	return nil
}

// StagingRoot returns the per-session staging directory rooted at base.
// Processing outputs land here and discard removes the whole directory.
func (s Session) StagingRoot(base string) string {
	base = strings.TrimSpace(base)
	if base == "" {
		return ""
	}
	return filepath.Join(base, fmt.Sprintf("session-%d", s.ID))
}
