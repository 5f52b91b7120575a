package processing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"lightbox/internal/catalog"
	"lightbox/internal/config"
	"lightbox/internal/fileutil"
	"lightbox/internal/geometry"
	"lightbox/internal/logging"
	"lightbox/internal/media/ffmpeg"
	"lightbox/internal/services"
	"lightbox/internal/session"
)

// Progress receives user-visible processing updates. Percent is -1 when
// the pipeline cannot estimate completion.
type Progress func(percent float64, message string)

// Result carries the batch output of one finalize run. Skipped lists
// asset ids that could not be rendered; the rest of the batch proceeds
// without them.
type Result struct {
	Media   []session.ProcessedMedia
	Skipped []string
}

// errSkipAsset marks per-asset failures that degrade the batch instead
// of aborting it.
var errSkipAsset = errors.New("skip asset")

func skipAsset(format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), errSkipAsset)
}

// Pipeline turns a session's selection into upload-ready files.
type Pipeline struct {
	cfg        *config.Config
	logger     *slog.Logger
	compressor ffmpeg.Client
}

// New builds a pipeline around the configured ffmpeg binary.
func New(cfg *config.Config, logger *slog.Logger) *Pipeline {
	return NewWithClient(cfg, logger, ffmpeg.NewCLI(ffmpeg.WithBinary(cfg.FFmpegBinary())))
}

// NewWithClient injects a compressor, primarily for tests.
func NewWithClient(cfg *config.Config, logger *slog.Logger, client ffmpeg.Client) *Pipeline {
	return &Pipeline{
		cfg:        cfg,
		logger:     logging.NewComponentLogger(logger, "processing"),
		compressor: client,
	}
}

// ProcessSelection renders every selected asset into the session's
// staging directory, in selection order. Image assets whose file or
// geometry is unusable are skipped and reported in the result; any video
// failure aborts the batch so the draft stays untouched.
func (p *Pipeline) ProcessSelection(ctx context.Context, sess *session.Session, progress Progress) (Result, error) {
	selection, err := sess.Selection()
	if err != nil {
		return Result{}, services.Wrap(services.ErrState, "processing", "selection", "Stored selection could not be decoded", err)
	}
	if len(selection) == 0 {
		return Result{}, nil
	}

	offsets, err := sess.Offsets()
	if err != nil {
		return Result{}, services.Wrap(services.ErrState, "processing", "offsets", "Stored pan offsets could not be decoded", err)
	}
	ratio, ok := geometry.RatioByKind(geometry.RatioKind(sess.RatioKind))
	if !ok {
		return Result{}, services.Wrap(services.ErrState, "processing", "ratio", fmt.Sprintf("Unknown aspect ratio %q", sess.RatioKind), nil)
	}

	stagingDir := sess.StagingRoot(p.cfg.Paths.StagingDir)
	if stagingDir == "" {
		return Result{}, services.Wrap(services.ErrConfiguration, "processing", "staging", "Staging directory is not configured. Set paths.staging_dir in the config file", nil)
	}
	if err := fileutil.EnsureDir(stagingDir); err != nil {
		return Result{}, services.Wrap(services.ErrConfiguration, "processing", "staging", fmt.Sprintf("Staging directory %s is not writable", stagingDir), err)
	}

	var res Result
	total := len(selection)
	for i, asset := range selection {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		switch asset.MediaType {
		case catalog.MediaTypeVideo:
			media, err := p.processVideo(ctx, asset, sess.TrimStartSeconds, stagingDir, progress)
			if err != nil {
				return Result{}, err
			}
			res.Media = append(res.Media, media)
		default:
			report(progress, float64(i)/float64(total)*100, fmt.Sprintf("Processing image %d of %d", i+1, total))
			media, err := p.processImage(asset, ratio, offsets[asset.AssetID], stagingDir)
			if errors.Is(err, errSkipAsset) {
				p.logger.Warn("image asset skipped",
					logging.String(logging.FieldAssetID, asset.AssetID),
					logging.String("reason", err.Error()))
				res.Skipped = append(res.Skipped, asset.AssetID)
				continue
			}
			if err != nil {
				return Result{}, err
			}
			res.Media = append(res.Media, media)
		}
	}

	report(progress, 100, "Media ready")
	p.logger.Info("selection processed",
		logging.Int64(logging.FieldSessionID, sess.ID),
		logging.Int("media_count", len(res.Media)),
		logging.Int("skipped_count", len(res.Skipped)))
	return res, nil
}

func report(progress Progress, percent float64, message string) {
	if progress != nil {
		progress(percent, message)
	}
}
