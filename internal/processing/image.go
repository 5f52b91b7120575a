package processing

import (
	"fmt"
	"image"
	"image/jpeg"
	"os"
	"path/filepath"

	"golang.org/x/image/draw"

	// Register decoders for the catalog's supported image formats.
	_ "image/gif"
	_ "image/png"

	_ "golang.org/x/image/webp"

	"lightbox/internal/fileutil"
	"lightbox/internal/geometry"
	"lightbox/internal/services"
	"lightbox/internal/session"
)

// processImage cuts the persisted crop rectangle out of the source and
// resizes it to the ratio's output resolution, in that order. Geometry
// runs against the decoded pixel dimensions, not the selection snapshot,
// so a re-exported source cannot shift the crop.
func (p *Pipeline) processImage(asset session.SelectedAsset, ratio geometry.AspectRatio, offset geometry.Offset, stagingDir string) (session.ProcessedMedia, error) {
	f, err := os.Open(asset.Path)
	if err != nil {
		return session.ProcessedMedia{}, skipAsset("open source: %v", err)
	}
	src, _, err := image.Decode(f)
	f.Close()
	if err != nil {
		return session.ProcessedMedia{}, skipAsset("decode source: %v", err)
	}

	bounds := src.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width <= 0 || height <= 0 {
		return session.ProcessedMedia{}, skipAsset("degenerate dimensions %dx%d", width, height)
	}

	frame := geometry.OutputFrame(ratio)
	render := geometry.ScaledDimensions(width, height, ratio, frame)
	rect := geometry.CropRect(width, height, ratio, offset, render)
	if rect.Empty() {
		return session.ProcessedMedia{}, skipAsset("empty crop rectangle")
	}
	srcRect := image.Rect(rect.X, rect.Y, rect.X+rect.Width, rect.Y+rect.Height).Add(bounds.Min)

	out := image.NewRGBA(image.Rect(0, 0, ratio.OutputWidth, ratio.OutputHeight))
	draw.CatmullRom.Scale(out, out.Bounds(), src, srcRect, draw.Src, nil)

	outPath := filepath.Join(stagingDir, fmt.Sprintf("%s-%s.jpg", asset.AssetID, ratio.Kind))
	dst, err := os.Create(outPath)
	if err != nil {
		return session.ProcessedMedia{}, services.Wrap(services.ErrTransient, "processing", "render", "Processed image could not be written", err)
	}
	if err := jpeg.Encode(dst, out, &jpeg.Options{Quality: p.cfg.Media.JPEGQuality}); err != nil {
		dst.Close()
		_ = os.Remove(outPath)
		return session.ProcessedMedia{}, services.Wrap(services.ErrTransient, "processing", "render", "Processed image could not be encoded", err)
	}
	if err := dst.Close(); err != nil {
		_ = os.Remove(outPath)
		return session.ProcessedMedia{}, services.Wrap(services.ErrTransient, "processing", "render", "Processed image could not be written", err)
	}

	size, err := fileutil.FileSize(outPath)
	if err != nil {
		return session.ProcessedMedia{}, services.Wrap(services.ErrTransient, "processing", "render", "Processed image vanished after write", err)
	}

	return session.ProcessedMedia{
		AssetID:   asset.AssetID,
		Path:      outPath,
		URI:       fileutil.FileURI(outPath),
		MediaType: asset.MediaType,
		Width:     ratio.OutputWidth,
		Height:    ratio.OutputHeight,
		SizeBytes: size,
	}, nil
}
