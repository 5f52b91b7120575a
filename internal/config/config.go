package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory and bind address configuration.
type Paths struct {
	MediaStoreDir string `toml:"media_store_dir"`
	StagingDir    string `toml:"staging_dir"`
	StateDir      string `toml:"state_dir"`
	LogDir        string `toml:"log_dir"`
	APIBind       string `toml:"api_bind"`
	APIToken      string `toml:"api_token"`
}

// Account identifies the account the engine composes and publishes for.
type Account struct {
	ID string `toml:"id"`
}

// Uploader contains configuration for the media upload API.
type Uploader struct {
	BaseURL        string `toml:"base_url"`
	Token          string `toml:"token"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Eligibility contains configuration for the posting-eligibility API.
type Eligibility struct {
	BaseURL          string   `toml:"base_url"`
	Token            string   `toml:"token"`
	TimeoutSeconds   int      `toml:"timeout_seconds"`
	ExemptCategories []string `toml:"exempt_categories"`
}

// Posts contains configuration for the post create/update API.
type Posts struct {
	BaseURL        string `toml:"base_url"`
	Token          string `toml:"token"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Media contains processing pipeline knobs.
type Media struct {
	JPEGQuality          int     `toml:"jpeg_quality"`
	VideoClipSeconds     float64 `toml:"video_clip_seconds"`
	CompressMaxDimension int     `toml:"compress_max_dimension"`
	SizeLimitMiB         int     `toml:"size_limit_mib"`
	ThumbnailCount       int     `toml:"thumbnail_count"`
	TrimMinSelectionPx   float64 `toml:"trim_min_selection_px"`
	FFmpegBinary         string  `toml:"ffmpeg_binary"`
	FFprobeBinary        string  `toml:"ffprobe_binary"`
}

// Catalog contains configuration for the asset catalog scanner.
type Catalog struct {
	PageSize      int  `toml:"page_size"`
	WatchDevices  bool `toml:"watch_devices"`
	SettleSeconds int  `toml:"settle_seconds"`
}

// Notifications contains configuration for ntfy push notifications.
type Notifications struct {
	NtfyTopic      string `toml:"ntfy_topic"`
	RequestTimeout int    `toml:"request_timeout"`
	Publish        bool   `toml:"publish"`
	Errors         bool   `toml:"errors"`
}

// Workflow contains configuration for daemon timing and housekeeping.
type Workflow struct {
	SessionRetentionDays int `toml:"session_retention_days"`
	MaintenanceInterval  int `toml:"maintenance_interval"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format        string `toml:"format"`
	Level         string `toml:"level"`
	RetentionDays int    `toml:"retention_days"`
}

// Config encapsulates all configuration values for lightbox.
//
// Configuration sections by subsystem:
//   - Paths: media store, staging, state, and log directories plus API bind
//   - Account: the account the engine acts for
//   - Uploader: media upload API endpoint and credentials
//   - Eligibility: posting-eligibility API endpoint and exemption rules
//   - Posts: post create/update API endpoint and credentials
//   - Media: processing knobs (quality, clip cap, size limit, thumbnails)
//   - Catalog: asset scanner paging and device watching
//   - Notifications: ntfy push notification settings
//   - Workflow: session retention and maintenance cadence
//   - Logging: log format, level, and retention
type Config struct {
	Paths         Paths         `toml:"paths"`
	Account       Account       `toml:"account"`
	Uploader      Uploader      `toml:"uploader"`
	Eligibility   Eligibility   `toml:"eligibility"`
	Posts         Posts         `toml:"posts"`
	Media         Media         `toml:"media"`
	Catalog       Catalog       `toml:"catalog"`
	Notifications Notifications `toml:"notifications"`
	Workflow      Workflow      `toml:"workflow"`
	Logging       Logging       `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/lightbox/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	loadDotenv()

	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath("~/.config/lightbox/config.toml")
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("lightbox.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates required directories for daemon operation.
// MediaStoreDir is created on a best-effort basis so the daemon can run when
// external storage is temporarily unavailable.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.StagingDir, c.Paths.StateDir, c.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	if strings.TrimSpace(c.Paths.MediaStoreDir) != "" {
		// Best-effort to avoid failing config load when storage is offline.
		_ = os.MkdirAll(c.Paths.MediaStoreDir, 0o755)
	}
	return nil
}

// DatabasePath returns the location of the session store database.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.Paths.StateDir, "lightbox.db")
}

// LockPath returns the location of the daemon single-instance lock file.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.StateDir, "lightboxd.lock")
}

// SocketPath returns the location of the daemon IPC socket.
func (c *Config) SocketPath() string {
	return filepath.Join(c.Paths.StateDir, "lightboxd.sock")
}

// SizeLimitBytes returns the hard media size limit in bytes.
func (c *Config) SizeLimitBytes() int64 {
	return int64(c.Media.SizeLimitMiB) * 1024 * 1024
}

// FFmpegBinary returns the ffmpeg executable used for video processing,
// honoring the configured override.
func (c *Config) FFmpegBinary() string {
	if binary := strings.TrimSpace(c.Media.FFmpegBinary); binary != "" {
		return binary
	}
	return "ffmpeg"
}

// FFprobeBinary returns the ffprobe executable used for media inspection,
// honoring the configured override.
func (c *Config) FFprobeBinary() string {
	if binary := strings.TrimSpace(c.Media.FFprobeBinary); binary != "" {
		return binary
	}
	return "ffprobe"
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	sample := sampleConfig

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sample), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
