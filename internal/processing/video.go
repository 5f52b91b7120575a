package processing

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"

	"lightbox/internal/fileutil"
	"lightbox/internal/logging"
	"lightbox/internal/media/ffmpeg"
	"lightbox/internal/services"
	"lightbox/internal/session"
)

// processVideo compresses the selected clip for upload. Compression
// always runs; the two failure branches differ deliberately. A failed
// compression falls back to the untouched original when that fits the
// size limit. A compression that succeeds but still exceeds the limit
// fails outright, with no fallback to the larger original.
func (p *Pipeline) processVideo(ctx context.Context, asset session.SelectedAsset, trimStart float64, stagingDir string, progress Progress) (session.ProcessedMedia, error) {
	limit := p.cfg.SizeLimitBytes()
	clipCap := p.cfg.Media.VideoClipSeconds

	req := ffmpeg.CompressRequest{
		InputPath:           asset.Path,
		OutputPath:          filepath.Join(stagingDir, asset.AssetID+"-clip.mp4"),
		MaxDimension:        p.cfg.Media.CompressMaxDimension,
		DurationHintSeconds: asset.DurationSeconds,
	}
	outDuration := asset.DurationSeconds
	if asset.DurationSeconds > clipCap {
		req.StartSeconds = trimStart
		req.ClipSeconds = clipCap
		req.DurationHintSeconds = clipCap
		outDuration = clipCap
	}

	sampler := logging.NewProgressSampler(10)
	result, err := p.compressor.Compress(ctx, req, func(update ffmpeg.ProgressUpdate) {
		message := "Compressing video"
		if update.Speed != "" {
			message = fmt.Sprintf("Compressing video (%s)", update.Speed)
		}
		report(progress, update.Percent, message)
		if sampler.ShouldLog(update.Percent, "compress", message) {
			p.logger.Debug("compression progress",
				logging.String(logging.FieldAssetID, asset.AssetID),
				logging.Float64("percent", update.Percent),
				logging.String("speed", update.Speed))
		}
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return session.ProcessedMedia{}, ctxErr
		}
		originalSize, statErr := fileutil.FileSize(asset.Path)
		if statErr != nil {
			return session.ProcessedMedia{}, services.Wrap(services.ErrExternalTool, "processing", "compress", "Video compression failed", err)
		}
		if originalSize > limit {
			return session.ProcessedMedia{}, services.Wrap(services.ErrMediaTooLarge, "processing", "compress",
				fmt.Sprintf("Video is %s and compression failed; the upload limit is %s. Trim a shorter clip and retry",
					humanize.IBytes(uint64(originalSize)), humanize.IBytes(uint64(limit))), err)
		}
		p.logger.Warn("video compression failed, uploading original",
			logging.String(logging.FieldAssetID, asset.AssetID),
			logging.Int64("size_bytes", originalSize),
			logging.Error(err))
		return session.ProcessedMedia{
			AssetID:         asset.AssetID,
			Path:            asset.Path,
			URI:             asset.URI,
			MediaType:       asset.MediaType,
			Width:           asset.Width,
			Height:          asset.Height,
			SizeBytes:       originalSize,
			DurationSeconds: asset.DurationSeconds,
		}, nil
	}

	if result.CompressedBytes > limit {
		_ = os.Remove(result.OutputPath)
		return session.ProcessedMedia{}, services.Wrap(services.ErrMediaTooLarge, "processing", "compress",
			fmt.Sprintf("Compressed video is %s, above the %s limit. Trim a shorter clip and retry",
				humanize.IBytes(uint64(result.CompressedBytes)), humanize.IBytes(uint64(limit))), nil)
	}

	width, height := fitWithin(asset.Width, asset.Height, p.cfg.Media.CompressMaxDimension)
	p.logger.Info("video compressed",
		logging.String(logging.FieldAssetID, asset.AssetID),
		logging.Int64("original_bytes", result.OriginalBytes),
		logging.Int64("compressed_bytes", result.CompressedBytes),
		logging.Float64("clip_seconds", outDuration))
	return session.ProcessedMedia{
		AssetID:         asset.AssetID,
		Path:            result.OutputPath,
		URI:             fileutil.FileURI(result.OutputPath),
		MediaType:       asset.MediaType,
		Width:           width,
		Height:          height,
		SizeBytes:       result.CompressedBytes,
		DurationSeconds: outDuration,
	}, nil
}

// fitWithin mirrors the encoder's downscale: the longer edge is capped at
// maxDimension, aspect is preserved, and both edges round to even pixels.
func fitWithin(width, height, maxDimension int) (int, int) {
	if width <= 0 || height <= 0 || maxDimension <= 0 {
		return width, height
	}
	longer := width
	if height > longer {
		longer = height
	}
	if longer <= maxDimension {
		return width, height
	}
	scale := float64(maxDimension) / float64(longer)
	return evenRound(float64(width) * scale), evenRound(float64(height) * scale)
}

func evenRound(v float64) int {
	return int(math.Round(v/2)) * 2
}
