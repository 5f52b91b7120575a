package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeAccount()
	c.normalizeUploader()
	c.normalizeEligibility()
	c.normalizePosts()
	c.normalizeMedia()
	c.normalizeCatalog()
	c.normalizeNotifications()
	c.normalizeWorkflow()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.MediaStoreDir, err = expandPath(c.Paths.MediaStoreDir); err != nil {
		return fmt.Errorf("paths.media_store_dir: %w", err)
	}
	if c.Paths.StagingDir, err = expandPath(c.Paths.StagingDir); err != nil {
		return fmt.Errorf("paths.staging_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	c.Paths.APIBind = strings.TrimSpace(c.Paths.APIBind)
	if c.Paths.APIBind == "" {
		c.Paths.APIBind = defaultAPIBind
	}
	c.Paths.APIToken = strings.TrimSpace(c.Paths.APIToken)
	return nil
}

func (c *Config) normalizeAccount() {
	c.Account.ID = strings.TrimSpace(c.Account.ID)
	if c.Account.ID == "" {
		if value, ok := os.LookupEnv("LIGHTBOX_ACCOUNT_ID"); ok {
			c.Account.ID = strings.TrimSpace(value)
		}
	}
}

func (c *Config) normalizeUploader() {
	c.Uploader.BaseURL = strings.TrimSpace(c.Uploader.BaseURL)
	if c.Uploader.BaseURL == "" {
		c.Uploader.BaseURL = defaultUploaderBaseURL
	}
	c.Uploader.Token = strings.TrimSpace(c.Uploader.Token)
	if c.Uploader.Token == "" {
		if value, ok := os.LookupEnv("LIGHTBOX_UPLOAD_TOKEN"); ok {
			c.Uploader.Token = strings.TrimSpace(value)
		}
	}
	if c.Uploader.TimeoutSeconds <= 0 {
		c.Uploader.TimeoutSeconds = defaultServiceTimeoutSeconds
	}
}

func (c *Config) normalizeEligibility() {
	c.Eligibility.BaseURL = strings.TrimSpace(c.Eligibility.BaseURL)
	if c.Eligibility.BaseURL == "" {
		c.Eligibility.BaseURL = defaultEligibilityBaseURL
	}
	c.Eligibility.Token = strings.TrimSpace(c.Eligibility.Token)
	if c.Eligibility.Token == "" {
		if value, ok := os.LookupEnv("LIGHTBOX_ELIGIBILITY_TOKEN"); ok {
			c.Eligibility.Token = strings.TrimSpace(value)
		}
	}
	if c.Eligibility.TimeoutSeconds <= 0 {
		c.Eligibility.TimeoutSeconds = defaultServiceTimeoutSeconds
	}
	if len(c.Eligibility.ExemptCategories) == 0 {
		c.Eligibility.ExemptCategories = []string{"internal", "test"}
		return
	}
	categories := make([]string, 0, len(c.Eligibility.ExemptCategories))
	seen := make(map[string]struct{}, len(c.Eligibility.ExemptCategories))
	for _, category := range c.Eligibility.ExemptCategories {
		normalized := strings.ToLower(strings.TrimSpace(category))
		if normalized == "" {
			continue
		}
		if _, exists := seen[normalized]; exists {
			continue
		}
		seen[normalized] = struct{}{}
		categories = append(categories, normalized)
	}
	c.Eligibility.ExemptCategories = categories
}

func (c *Config) normalizePosts() {
	c.Posts.BaseURL = strings.TrimSpace(c.Posts.BaseURL)
	if c.Posts.BaseURL == "" {
		c.Posts.BaseURL = defaultPostsBaseURL
	}
	c.Posts.Token = strings.TrimSpace(c.Posts.Token)
	if c.Posts.Token == "" {
		if value, ok := os.LookupEnv("LIGHTBOX_POSTS_TOKEN"); ok {
			c.Posts.Token = strings.TrimSpace(value)
		}
	}
	if c.Posts.TimeoutSeconds <= 0 {
		c.Posts.TimeoutSeconds = defaultServiceTimeoutSeconds
	}
}

func (c *Config) normalizeMedia() {
	if c.Media.JPEGQuality <= 0 {
		c.Media.JPEGQuality = defaultJPEGQuality
	}
	if c.Media.VideoClipSeconds <= 0 {
		c.Media.VideoClipSeconds = defaultVideoClipSeconds
	}
	if c.Media.CompressMaxDimension <= 0 {
		c.Media.CompressMaxDimension = defaultCompressMaxDimension
	}
	if c.Media.SizeLimitMiB <= 0 {
		c.Media.SizeLimitMiB = defaultSizeLimitMiB
	}
	if c.Media.ThumbnailCount <= 0 {
		c.Media.ThumbnailCount = defaultThumbnailCount
	}
	if c.Media.TrimMinSelectionPx <= 0 {
		c.Media.TrimMinSelectionPx = defaultTrimMinSelectionPx
	}
}

func (c *Config) normalizeCatalog() {
	if c.Catalog.PageSize <= 0 {
		c.Catalog.PageSize = defaultCatalogPageSize
	}
	if c.Catalog.SettleSeconds < 0 {
		c.Catalog.SettleSeconds = defaultCatalogSettleSeconds
	}
}

func (c *Config) normalizeNotifications() {
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.NtfyTopic == "" {
		if value, ok := os.LookupEnv("LIGHTBOX_NTFY_TOPIC"); ok {
			c.Notifications.NtfyTopic = strings.TrimSpace(value)
		}
	}
	if c.Notifications.RequestTimeout <= 0 {
		c.Notifications.RequestTimeout = defaultNotifyRequestTimeout
	}
}

func (c *Config) normalizeWorkflow() {
	if c.Workflow.SessionRetentionDays < 0 {
		c.Workflow.SessionRetentionDays = 0
	}
	if c.Workflow.MaintenanceInterval <= 0 {
		c.Workflow.MaintenanceInterval = defaultMaintenanceInterval
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.RetentionDays < 0 {
		c.Logging.RetentionDays = 0
	}
}
