package ffmpeg

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"os/exec"
	"strconv"
	"strings"
)

var commandContext = exec.CommandContext

// ProgressUpdate captures one ffmpeg progress block.
type ProgressUpdate struct {
	// Percent is derived from the request's duration hint and is -1 when
	// no hint was given.
	Percent        float64
	OutTimeSeconds float64
	Speed          string
}

// CompressRequest describes a single trim-and-compress run.
type CompressRequest struct {
	InputPath  string
	OutputPath string

	// StartSeconds and ClipSeconds bound the trim window. A zero
	// ClipSeconds keeps everything from StartSeconds to the end.
	StartSeconds float64
	ClipSeconds  float64

	// MaxDimension caps the longer edge of the output. Smaller sources
	// are never upscaled. Zero skips scaling entirely.
	MaxDimension int

	// DurationHintSeconds is the expected output duration, used only for
	// percent math. Zero disables percentages.
	DurationHintSeconds float64
}

// CompressResult reports the produced file and the size delta.
type CompressResult struct {
	OutputPath      string
	OriginalBytes   int64
	CompressedBytes int64
}

// Client defines the ffmpeg behaviour the processing pipeline uses.
type Client interface {
	Compress(ctx context.Context, req CompressRequest, progress func(ProgressUpdate)) (CompressResult, error)
	ExtractFrame(ctx context.Context, inputPath, outputPath string, offsetSeconds float64) error
}

// Option configures the CLI client.
type Option func(*CLI)

// WithBinary overrides the default binary name.
func WithBinary(binary string) Option {
	return func(c *CLI) {
		if binary != "" {
			c.binary = binary
		}
	}
}

// CLI wraps the ffmpeg command-line tool.
type CLI struct {
	binary string
}

// NewCLI constructs a CLI client using defaults.
func NewCLI(opts ...Option) *CLI {
	cli := &CLI{binary: "ffmpeg"}
	for _, opt := range opts {
		opt(cli)
	}
	return cli
}

// Compress re-encodes a video clip to H.264/AAC, trimming and downscaling
// per the request, and reports progress parsed from -progress output.
func (c *CLI) Compress(ctx context.Context, req CompressRequest, progress func(ProgressUpdate)) (CompressResult, error) {
	if req.InputPath == "" {
		return CompressResult{}, errors.New("input path required")
	}
	if req.OutputPath == "" {
		return CompressResult{}, errors.New("output path required")
	}

	source, err := os.Stat(req.InputPath)
	if err != nil {
		return CompressResult{}, fmt.Errorf("stat input: %w", err)
	}

	args := []string{"-hide_banner", "-loglevel", "error", "-nostats", "-progress", "pipe:1"}
	if req.StartSeconds > 0 {
		args = append(args, "-ss", formatSeconds(req.StartSeconds))
	}
	if req.ClipSeconds > 0 {
		args = append(args, "-t", formatSeconds(req.ClipSeconds))
	}
	args = append(args, "-i", req.InputPath)
	if req.MaxDimension > 0 {
		args = append(args, "-vf", scaleFilter(req.MaxDimension))
	}
	args = append(args,
		"-c:v", "libx264",
		"-preset", "veryfast",
		"-crf", "28",
		"-pix_fmt", "yuv420p",
		"-c:a", "aac",
		"-b:a", "128k",
		"-movflags", "+faststart",
		"-y", req.OutputPath,
	)

	cmd := commandContext(ctx, c.binary, args...) //nolint:gosec
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return CompressResult{}, fmt.Errorf("stdout pipe: %w", err)
	}
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Start(); err != nil {
		return CompressResult{}, fmt.Errorf("start ffmpeg: %w", err)
	}

	pending := ProgressUpdate{Percent: -1}
	scanner := bufio.NewScanner(stdout)
	for scanner.Scan() {
		key, value, ok := strings.Cut(scanner.Text(), "=")
		if !ok {
			continue
		}
		switch key {
		case "out_time_us":
			if us, parseErr := strconv.ParseInt(value, 10, 64); parseErr == nil {
				pending.OutTimeSeconds = float64(us) / 1e6
			}
		case "speed":
			pending.Speed = value
		case "progress":
			if req.DurationHintSeconds > 0 {
				pct := pending.OutTimeSeconds / req.DurationHintSeconds * 100
				pending.Percent = math.Min(100, math.Max(0, pct))
			}
			if progress != nil {
				progress(pending)
			}
			pending = ProgressUpdate{Percent: -1}
		}
	}
	if err := scanner.Err(); err != nil {
		return CompressResult{}, fmt.Errorf("read ffmpeg output: %w", err)
	}

	if err := cmd.Wait(); err != nil {
		if msg := lastLine(stderr.String()); msg != "" {
			return CompressResult{}, fmt.Errorf("ffmpeg compress failed: %w: %s", err, msg)
		}
		return CompressResult{}, fmt.Errorf("ffmpeg compress failed: %w", err)
	}

	produced, err := os.Stat(req.OutputPath)
	if err != nil {
		return CompressResult{}, fmt.Errorf("ffmpeg produced no output: %w", err)
	}

	return CompressResult{
		OutputPath:      req.OutputPath,
		OriginalBytes:   source.Size(),
		CompressedBytes: produced.Size(),
	}, nil
}

// ExtractFrame captures a single frame at the given offset as a JPEG.
func (c *CLI) ExtractFrame(ctx context.Context, inputPath, outputPath string, offsetSeconds float64) error {
	if inputPath == "" {
		return errors.New("input path required")
	}
	if outputPath == "" {
		return errors.New("output path required")
	}
	if offsetSeconds < 0 {
		offsetSeconds = 0
	}

	args := []string{
		"-hide_banner", "-loglevel", "error",
		"-ss", formatSeconds(offsetSeconds),
		"-i", inputPath,
		"-frames:v", "1",
		"-q:v", "3",
		"-y", outputPath,
	}
	cmd := commandContext(ctx, c.binary, args...) //nolint:gosec
	output, err := cmd.CombinedOutput()
	if err != nil {
		if msg := lastLine(string(output)); msg != "" {
			return fmt.Errorf("ffmpeg frame extract failed: %w: %s", err, msg)
		}
		return fmt.Errorf("ffmpeg frame extract failed: %w", err)
	}
	if _, err := os.Stat(outputPath); err != nil {
		return fmt.Errorf("ffmpeg produced no frame: %w", err)
	}
	return nil
}

// scaleFilter caps both edges at maxDimension while preserving aspect.
// min() keeps smaller sources at their native size, and the even-pixel
// constraint satisfies yuv420p.
func scaleFilter(maxDimension int) string {
	d := strconv.Itoa(maxDimension)
	return "scale='min(" + d + ",iw)':'min(" + d + ",ih)':force_original_aspect_ratio=decrease:force_divisible_by=2"
}

func formatSeconds(v float64) string {
	return strconv.FormatFloat(v, 'f', 3, 64)
}

func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if line := strings.TrimSpace(lines[i]); line != "" {
			return line
		}
	}
	return ""
}

var _ Client = (*CLI)(nil)
