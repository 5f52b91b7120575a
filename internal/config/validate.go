package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateAccount(); err != nil {
		return err
	}
	if err := c.validateServices(); err != nil {
		return err
	}
	if err := c.validateMedia(); err != nil {
		return err
	}
	if err := c.validateCatalog(); err != nil {
		return err
	}
	if err := c.validateWorkflow(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateAccount() error {
	if c.Account.ID == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/lightbox/config.toml"
		}
		return fmt.Errorf("account.id is required. Set LIGHTBOX_ACCOUNT_ID env var or edit %s (create with 'lightbox config init')", defaultPath)
	}
	return nil
}

func (c *Config) validateServices() error {
	endpoints := []struct {
		key   string
		value string
	}{
		{"uploader.base_url", c.Uploader.BaseURL},
		{"eligibility.base_url", c.Eligibility.BaseURL},
		{"posts.base_url", c.Posts.BaseURL},
	}
	for _, endpoint := range endpoints {
		if strings.TrimSpace(endpoint.value) == "" {
			return fmt.Errorf("%s must be set", endpoint.key)
		}
		parsed, err := url.Parse(endpoint.value)
		if err != nil {
			return fmt.Errorf("%s is not a valid URL: %w", endpoint.key, err)
		}
		if parsed.Scheme != "http" && parsed.Scheme != "https" {
			return fmt.Errorf("%s must use http or https", endpoint.key)
		}
		if parsed.Host == "" {
			return fmt.Errorf("%s must include a host", endpoint.key)
		}
	}
	return ensurePositiveMap(map[string]int{
		"uploader.timeout_seconds":      c.Uploader.TimeoutSeconds,
		"eligibility.timeout_seconds":   c.Eligibility.TimeoutSeconds,
		"posts.timeout_seconds":         c.Posts.TimeoutSeconds,
		"notifications.request_timeout": c.Notifications.RequestTimeout,
	})
}

func (c *Config) validateMedia() error {
	if c.Media.JPEGQuality < 1 || c.Media.JPEGQuality > 100 {
		return errors.New("media.jpeg_quality must be between 1 and 100")
	}
	if c.Media.VideoClipSeconds <= 0 {
		return errors.New("media.video_clip_seconds must be positive")
	}
	if c.Media.CompressMaxDimension <= 0 {
		return errors.New("media.compress_max_dimension must be positive")
	}
	if c.Media.SizeLimitMiB <= 0 {
		return errors.New("media.size_limit_mib must be positive")
	}
	if c.Media.ThumbnailCount < 1 {
		return errors.New("media.thumbnail_count must be >= 1")
	}
	if c.Media.TrimMinSelectionPx <= 0 {
		return errors.New("media.trim_min_selection_px must be positive")
	}
	return nil
}

func (c *Config) validateCatalog() error {
	if c.Catalog.PageSize < 1 {
		return errors.New("catalog.page_size must be >= 1")
	}
	if c.Catalog.SettleSeconds < 0 {
		return errors.New("catalog.settle_seconds must be >= 0")
	}
	return nil
}

func (c *Config) validateWorkflow() error {
	if c.Workflow.SessionRetentionDays < 0 {
		return errors.New("workflow.session_retention_days must be >= 0")
	}
	if c.Workflow.MaintenanceInterval <= 0 {
		return errors.New("workflow.maintenance_interval must be positive (seconds)")
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
