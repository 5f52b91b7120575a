package catalog

import (
	"context"
	"sync"
	"time"

	"log/slog"

	"lightbox/internal/config"
	"lightbox/internal/logging"
	"lightbox/internal/media/ffprobe"
)

// Prober inspects a video file and reports its streams and container format.
type Prober interface {
	Inspect(ctx context.Context, path string) (ffprobe.Result, error)
}

type ffprobeProber struct {
	binary string
}

func (p ffprobeProber) Inspect(ctx context.Context, path string) (ffprobe.Result, error) {
	return ffprobe.Inspect(ctx, p.binary, path)
}

// Catalog maintains an in-memory index of the media store. Scans rebuild the
// index from the filesystem; reads are served from the last completed scan.
type Catalog struct {
	cfg    *config.Config
	logger *slog.Logger
	prober Prober

	mu       sync.RWMutex
	assets   []Asset
	byID     map[string]Asset
	lastScan time.Time
}

// New creates a catalog over the configured media store using ffprobe for
// video inspection.
func New(cfg *config.Config, logger *slog.Logger) *Catalog {
	return NewWithProber(cfg, logger, ffprobeProber{binary: cfg.FFprobeBinary()})
}

// NewWithProber creates a catalog with an injected video prober.
func NewWithProber(cfg *config.Config, logger *slog.Logger, prober Prober) *Catalog {
	return &Catalog{
		cfg:    cfg,
		logger: logging.NewComponentLogger(logger, "catalog"),
		prober: prober,
		byID:   make(map[string]Asset),
	}
}

// Page is one cursor-bounded slice of the catalog listing.
type Page struct {
	Assets     []Asset
	NextCursor string
	HasMore    bool
}

// List returns indexed assets newest first, optionally filtered by media
// type. The cursor is the ID of the last asset from the previous page; an
// empty or unknown cursor starts from the top. A non-positive page size
// falls back to the configured default.
func (c *Catalog) List(mediaType MediaType, cursor string, pageSize int) Page {
	if pageSize <= 0 {
		pageSize = c.cfg.Catalog.PageSize
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	filtered := make([]Asset, 0, len(c.assets))
	for _, asset := range c.assets {
		if mediaType != "" && asset.MediaType != mediaType {
			continue
		}
		filtered = append(filtered, asset)
	}

	start := 0
	if cursor != "" {
		for i, asset := range filtered {
			if asset.ID == cursor {
				start = i + 1
				break
			}
		}
	}

	end := start + pageSize
	if end > len(filtered) {
		end = len(filtered)
	}

	page := Page{Assets: append([]Asset(nil), filtered[start:end]...)}
	if end < len(filtered) {
		page.HasMore = true
		page.NextCursor = filtered[end-1].ID
	}
	return page
}

// Get returns the indexed asset with the given ID.
func (c *Catalog) Get(id string) (Asset, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	asset, ok := c.byID[id]
	return asset, ok
}

// Stats summarizes the current index for status reporting.
type Stats struct {
	Images   int
	Videos   int
	LastScan time.Time
}

// Stats reports counts from the last completed scan.
func (c *Catalog) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	stats := Stats{LastScan: c.lastScan}
	for _, asset := range c.assets {
		if asset.MediaType == MediaTypeVideo {
			stats.Videos++
		} else {
			stats.Images++
		}
	}
	return stats
}
