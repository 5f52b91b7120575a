package catalog

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"lightbox/internal/fileutil"
	"lightbox/internal/logging"
	"lightbox/internal/services"
	"lightbox/internal/textutil"
)

const importSubdir = "imports"

// Import copies a file from outside the store into the imports area with
// size and checksum verification, then indexes it immediately. The source
// file is left untouched.
func (c *Catalog) Import(ctx context.Context, sourcePath string) (Asset, error) {
	logger := logging.WithContext(ctx, c.logger)

	if !SupportedExtension(filepath.Ext(sourcePath)) {
		return Asset{}, services.Wrap(services.ErrValidation, "catalog", "import",
			fmt.Sprintf("Unsupported file type %q. Images (jpg, png, gif, webp) and videos (mp4, mov, m4v, webm, mkv) can be imported", filepath.Ext(sourcePath)), nil)
	}

	name := textutil.SanitizeFileName(filepath.Base(sourcePath))
	if name == "" {
		return Asset{}, services.Wrap(services.ErrValidation, "catalog", "import",
			"Source file name is empty after sanitization. Rename the file and retry", nil)
	}

	importDir := filepath.Join(c.cfg.Paths.MediaStoreDir, importSubdir)
	if err := fileutil.EnsureDir(importDir); err != nil {
		return Asset{}, services.Wrap(services.ErrConfiguration, "catalog", "import",
			"Cannot create the imports directory. Check paths.media_store_dir permissions", err)
	}

	destPath := filepath.Join(importDir, name)
	if _, err := os.Stat(destPath); err == nil {
		return Asset{}, services.Wrap(services.ErrValidation, "catalog", "import",
			fmt.Sprintf("%s already exists in the media store. Rename the source file and retry", name), nil)
	}

	if err := fileutil.CopyFileVerified(sourcePath, destPath); err != nil {
		return Asset{}, services.Wrap(services.ErrTransient, "catalog", "import", "Copy into the media store failed", err)
	}

	info, err := os.Stat(destPath)
	if err != nil {
		return Asset{}, services.Wrap(services.ErrTransient, "catalog", "import", "Imported file vanished before indexing", err)
	}
	asset, err := c.readAsset(ctx, destPath, info)
	if err != nil {
		_ = os.Remove(destPath)
		return Asset{}, services.Wrap(services.ErrValidation, "catalog", "import", "Imported file could not be identified", err)
	}

	c.mu.Lock()
	c.assets = append(c.assets, asset)
	sortAssets(c.assets)
	c.byID[asset.ID] = asset
	c.mu.Unlock()

	logger.Info("asset imported",
		logging.String(logging.FieldAssetID, asset.ID),
		logging.String("path", destPath),
		logging.String("media_type", string(asset.MediaType)))
	return asset, nil
}
