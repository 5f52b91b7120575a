package catalog

import (
	"context"
	"fmt"
	"image"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"

	"lightbox/internal/fileutil"
	"lightbox/internal/logging"
	"lightbox/internal/services"
	"lightbox/internal/textutil"
)

var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

var videoExtensions = map[string]bool{
	".mp4":  true,
	".mov":  true,
	".m4v":  true,
	".webm": true,
	".mkv":  true,
}

// SupportedExtension reports whether files with the given extension
// (including the leading dot, any case) are indexed by scans.
func SupportedExtension(ext string) bool {
	ext = strings.ToLower(ext)
	return imageExtensions[ext] || videoExtensions[ext]
}

// ScanSummary reports what a media store walk found.
type ScanSummary struct {
	Images  int
	Videos  int
	Skipped int
	Took    time.Duration
}

// Scan walks the media store and replaces the index with what it finds.
// Files that cannot be identified are skipped and counted, never fatal.
// Hidden directories and unsupported extensions are ignored silently.
func (c *Catalog) Scan(ctx context.Context) (ScanSummary, error) {
	logger := logging.WithContext(ctx, c.logger)
	root := c.cfg.Paths.MediaStoreDir
	started := time.Now()

	if info, err := os.Stat(root); err != nil || !info.IsDir() {
		return ScanSummary{}, services.Wrap(services.ErrConfiguration, "catalog", "scan",
			fmt.Sprintf("Media store %s is not accessible. Check paths.media_store_dir in the config file", root), err)
	}

	var (
		assets  []Asset
		summary ScanSummary
	)
	walkErr := filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			if entry != nil && entry.IsDir() {
				logger.Warn("skipping unreadable directory", logging.String("path", path), logging.Error(err))
				return fs.SkipDir
			}
			summary.Skipped++
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if entry.IsDir() {
			if path != root && strings.HasPrefix(entry.Name(), ".") {
				return fs.SkipDir
			}
			return nil
		}
		if !SupportedExtension(filepath.Ext(entry.Name())) {
			return nil
		}
		info, err := entry.Info()
		if err != nil {
			summary.Skipped++
			return nil
		}
		asset, err := c.readAsset(ctx, path, info)
		if err != nil {
			summary.Skipped++
			logger.Debug("asset skipped", logging.String("path", path), logging.Error(err))
			return nil
		}
		if asset.MediaType == MediaTypeVideo {
			summary.Videos++
		} else {
			summary.Images++
		}
		assets = append(assets, asset)
		return nil
	})
	if walkErr != nil {
		return ScanSummary{}, services.Wrap(services.ErrTransient, "catalog", "scan", "Media store walk failed", walkErr)
	}

	sortAssets(assets)

	c.mu.Lock()
	c.assets = assets
	c.byID = make(map[string]Asset, len(assets))
	for _, asset := range assets {
		c.byID[asset.ID] = asset
	}
	c.lastScan = time.Now()
	c.mu.Unlock()

	summary.Took = time.Since(started)
	logger.Info("media store scanned",
		logging.Int("image_count", summary.Images),
		logging.Int("video_count", summary.Videos),
		logging.Int("skipped", summary.Skipped),
		logging.Duration("scan_duration", summary.Took))
	return summary, nil
}

// readAsset identifies a single file. Images are decoded header-only in
// process; videos go through the prober.
func (c *Catalog) readAsset(ctx context.Context, path string, info fs.FileInfo) (Asset, error) {
	asset := Asset{
		ID:         AssetID(path, info.Size(), info.ModTime()),
		URI:        fileutil.FileURI(path),
		Path:       path,
		Title:      textutil.DisplayTitle(path),
		SizeBytes:  info.Size(),
		ModifiedAt: info.ModTime(),
	}

	ext := strings.ToLower(filepath.Ext(path))
	switch {
	case imageExtensions[ext]:
		width, height, err := imageDimensions(path)
		if err != nil {
			return Asset{}, err
		}
		asset.MediaType = MediaTypeImage
		asset.Width = width
		asset.Height = height
	case videoExtensions[ext]:
		result, err := c.prober.Inspect(ctx, path)
		if err != nil {
			return Asset{}, err
		}
		width, height, ok := result.VideoDimensions()
		if !ok {
			return Asset{}, fmt.Errorf("no video stream in %s", filepath.Base(path))
		}
		asset.MediaType = MediaTypeVideo
		asset.Width = width
		asset.Height = height
		asset.DurationSeconds = result.DurationSeconds()
	default:
		return Asset{}, fmt.Errorf("unsupported extension %q", ext)
	}

	if asset.Width <= 0 || asset.Height <= 0 {
		return Asset{}, fmt.Errorf("degenerate dimensions %dx%d in %s", asset.Width, asset.Height, filepath.Base(path))
	}
	return asset, nil
}

func imageDimensions(path string) (int, int, error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, 0, err
	}
	defer file.Close()

	cfg, _, err := image.DecodeConfig(file)
	if err != nil {
		return 0, 0, fmt.Errorf("decode image header: %w", err)
	}
	return cfg.Width, cfg.Height, nil
}

// sortAssets orders newest first with path as a stable tiebreak.
func sortAssets(assets []Asset) {
	sort.Slice(assets, func(i, j int) bool {
		if !assets[i].ModifiedAt.Equal(assets[j].ModifiedAt) {
			return assets[i].ModifiedAt.After(assets[j].ModifiedAt)
		}
		return assets[i].Path < assets[j].Path
	})
}
