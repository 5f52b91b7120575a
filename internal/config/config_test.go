package config_test

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"lightbox/internal/config"
)

func TestLoadDefaultConfigUsesEnvAccountIDAndExpandsPaths(t *testing.T) {
	t.Setenv("LIGHTBOX_ACCOUNT_ID", "acct-1")
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantStaging := filepath.Join(tempHome, ".local", "share", "lightbox", "staging")
	if cfg.Paths.StagingDir != wantStaging {
		t.Fatalf("unexpected staging dir: got %q want %q", cfg.Paths.StagingDir, wantStaging)
	}
	if cfg.Paths.MediaStoreDir != filepath.Join(tempHome, "media") {
		t.Fatalf("unexpected media store dir: %q", cfg.Paths.MediaStoreDir)
	}
	if cfg.Paths.APIBind != "127.0.0.1:7718" {
		t.Fatalf("unexpected api bind: %q", cfg.Paths.APIBind)
	}
	if cfg.Account.ID != "acct-1" {
		t.Fatalf("expected account id from env, got %q", cfg.Account.ID)
	}
	if cfg.Uploader.BaseURL != config.Default().Uploader.BaseURL {
		t.Fatalf("unexpected uploader base url: %q", cfg.Uploader.BaseURL)
	}
	if cfg.Media.JPEGQuality != 80 {
		t.Fatalf("unexpected jpeg quality: %d", cfg.Media.JPEGQuality)
	}
	if cfg.Media.VideoClipSeconds != 15 {
		t.Fatalf("unexpected clip seconds: %v", cfg.Media.VideoClipSeconds)
	}
	if cfg.SizeLimitBytes() != 100*1024*1024 {
		t.Fatalf("unexpected size limit: %d", cfg.SizeLimitBytes())
	}
	if !cfg.Catalog.WatchDevices {
		t.Fatal("expected device watching enabled by default")
	}
	if cfg.Notifications.NtfyTopic != "" {
		t.Fatalf("expected empty ntfy topic by default, got %q", cfg.Notifications.NtfyTopic)
	}
	if cfg.DatabasePath() != filepath.Join(cfg.Paths.StateDir, "lightbox.db") {
		t.Fatalf("unexpected database path: %q", cfg.DatabasePath())
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}

	for _, dir := range []string{cfg.Paths.StagingDir, cfg.Paths.StateDir, cfg.Paths.LogDir, cfg.Paths.MediaStoreDir} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("expected directory %q to exist: %v", dir, err)
		}
		if !info.IsDir() {
			t.Fatalf("expected %q to be directory", dir)
		}
	}
}

func TestLoadCustomPath(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "lightbox.toml")

	type payload struct {
		Account struct {
			ID string `toml:"id"`
		} `toml:"account"`
		Uploader struct {
			BaseURL string `toml:"base_url"`
			Token   string `toml:"token"`
		} `toml:"uploader"`
		Media struct {
			JPEGQuality  int `toml:"jpeg_quality"`
			SizeLimitMiB int `toml:"size_limit_mib"`
		} `toml:"media"`
	}
	custom := payload{}
	custom.Account.ID = "acct-42"
	custom.Uploader.BaseURL = "https://example.com/upload"
	custom.Uploader.Token = "file-token"
	custom.Media.JPEGQuality = 90
	custom.Media.SizeLimitMiB = 50
	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal custom config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write custom config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected exists to be true")
	}
	if resolved != configPath {
		t.Fatalf("unexpected resolved path: got %q want %q", resolved, configPath)
	}
	if cfg.Account.ID != "acct-42" {
		t.Fatalf("expected account id from file, got %q", cfg.Account.ID)
	}
	if cfg.Uploader.BaseURL != "https://example.com/upload" {
		t.Fatalf("expected uploader base url override, got %q", cfg.Uploader.BaseURL)
	}
	if cfg.Uploader.Token != "file-token" {
		t.Fatalf("expected uploader token from file, got %q", cfg.Uploader.Token)
	}
	if cfg.Media.JPEGQuality != 90 {
		t.Fatalf("expected jpeg quality 90, got %d", cfg.Media.JPEGQuality)
	}
	if cfg.SizeLimitBytes() != 50*1024*1024 {
		t.Fatalf("expected 50 MiB size limit, got %d", cfg.SizeLimitBytes())
	}
}

func TestEnvFallbackFillsMissingSecrets(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "lightbox.toml")

	type payload struct {
		Account struct {
			ID string `toml:"id"`
		} `toml:"account"`
		Uploader struct {
			Token string `toml:"token"`
		} `toml:"uploader"`
	}
	custom := payload{}
	custom.Account.ID = "acct-1"
	custom.Uploader.Token = "file-token"
	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal custom config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write custom config: %v", err)
	}

	t.Setenv("LIGHTBOX_UPLOAD_TOKEN", "env-upload")
	t.Setenv("LIGHTBOX_POSTS_TOKEN", "env-posts")
	t.Setenv("LIGHTBOX_NTFY_TOPIC", "env-topic")

	cfg, _, _, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	// File value wins; env only fills what the file leaves empty.
	if cfg.Uploader.Token != "file-token" {
		t.Errorf("expected uploader token from file, got %q", cfg.Uploader.Token)
	}
	if cfg.Posts.Token != "env-posts" {
		t.Errorf("expected posts token from env, got %q", cfg.Posts.Token)
	}
	if cfg.Notifications.NtfyTopic != "env-topic" {
		t.Errorf("expected ntfy topic from env, got %q", cfg.Notifications.NtfyTopic)
	}
}

func TestCreateSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(contents), "[account]") {
		t.Fatalf("sample config missing account section: %s", contents)
	}

	// Validate it decodes
	var cfg config.Config
	if err := toml.Unmarshal(contents, &cfg); err != nil {
		t.Fatalf("unmarshal sample: %v", err)
	}

	if runtime.GOOS != "windows" {
		if !strings.Contains(cfg.Paths.StagingDir, "lightbox") {
			t.Fatalf("expected staging dir to contain lightbox, got %q", cfg.Paths.StagingDir)
		}
	}
	if cfg.Media.JPEGQuality != 80 {
		t.Fatalf("expected sample jpeg quality 80, got %d", cfg.Media.JPEGQuality)
	}
	if cfg.Paths.APIBind != "127.0.0.1:7718" {
		t.Fatalf("expected sample api bind default, got %q", cfg.Paths.APIBind)
	}
}

func TestValidateDetectsInvalidValues(t *testing.T) {
	cfg := config.Default()
	cfg.Account.ID = "acct"
	cfg.Media.JPEGQuality = 101
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for jpeg quality out of range")
	}

	cfg = config.Default()
	cfg.Account.ID = "acct"
	cfg.Uploader.BaseURL = "ftp://example.com"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for non-http uploader url")
	}

	cfg = config.Default()
	cfg.Account.ID = "acct"
	cfg.Posts.BaseURL = "not a url ::"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for malformed posts url")
	}

	cfg = config.Default()
	cfg.Account.ID = "acct"
	cfg.Catalog.PageSize = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for zero page size")
	}

	cfg = config.Default()
	cfg.Account.ID = "acct"
	cfg.Workflow.MaintenanceInterval = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for zero maintenance interval")
	}

	cfg = config.Default()
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing account id")
	}
}
