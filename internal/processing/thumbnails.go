package processing

import (
	"context"
	"fmt"
	"math"
	"path/filepath"

	"lightbox/internal/fileutil"
	"lightbox/internal/media/ffmpeg"
	"lightbox/internal/session"
	"lightbox/internal/trim"
)

// Thumbnailer renders timeline-strip frames for the trim surface.
// Failures stay per-frame; the strip degrades instead of aborting.
type Thumbnailer struct {
	client ffmpeg.Client
	dir    string
}

// NewThumbnailer builds a generator writing frames into dir.
func NewThumbnailer(client ffmpeg.Client, dir string) *Thumbnailer {
	return &Thumbnailer{client: client, dir: dir}
}

// Thumbnailer returns a frame generator scoped to the session's staging
// directory.
func (p *Pipeline) Thumbnailer(sess *session.Session) *Thumbnailer {
	return NewThumbnailer(p.compressor, sess.StagingRoot(p.cfg.Paths.StagingDir))
}

// Thumbnail extracts one frame and returns its file URI. Offsets are
// encoded into the name so concurrent strip slots never collide.
func (t *Thumbnailer) Thumbnail(ctx context.Context, assetURI string, offsetSeconds float64) (string, error) {
	path, ok := fileutil.PathFromFileURI(assetURI)
	if !ok {
		return "", fmt.Errorf("unsupported asset uri %q", assetURI)
	}
	if err := fileutil.EnsureDir(t.dir); err != nil {
		return "", fmt.Errorf("thumbnail dir: %w", err)
	}
	out := filepath.Join(t.dir, fmt.Sprintf("thumb-%dms.jpg", int(math.Round(offsetSeconds*1000))))
	if err := t.client.ExtractFrame(ctx, path, out, offsetSeconds); err != nil {
		return "", err
	}
	return fileutil.FileURI(out), nil
}

var _ trim.ThumbnailGenerator = (*Thumbnailer)(nil)
