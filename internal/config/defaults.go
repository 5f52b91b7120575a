package config

const (
	defaultMediaStoreDir         = "~/media"
	defaultStagingDir            = "~/.local/share/lightbox/staging"
	defaultStateDir              = "~/.local/share/lightbox/state"
	defaultLogDir                = "~/.local/share/lightbox/logs"
	defaultLogRetentionDays      = 60
	defaultAPIBind               = "127.0.0.1:7718"
	defaultLogFormat             = "console"
	defaultLogLevel              = "info"
	defaultUploaderBaseURL       = "https://api.lightbox.social/v1/media"
	defaultEligibilityBaseURL    = "https://api.lightbox.social/v1/eligibility"
	defaultPostsBaseURL          = "https://api.lightbox.social/v1/posts"
	defaultServiceTimeoutSeconds = 60
	defaultJPEGQuality           = 80
	defaultVideoClipSeconds      = 15
	defaultCompressMaxDimension  = 1280
	defaultSizeLimitMiB          = 100
	defaultThumbnailCount        = 8
	defaultTrimMinSelectionPx    = 80
	defaultCatalogPageSize       = 60
	defaultCatalogSettleSeconds  = 2
	defaultNotifyRequestTimeout  = 10
	defaultSessionRetentionDays  = 30
	defaultMaintenanceInterval   = 3600
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			MediaStoreDir: defaultMediaStoreDir,
			StagingDir:    defaultStagingDir,
			StateDir:      defaultStateDir,
			LogDir:        defaultLogDir,
			APIBind:       defaultAPIBind,
		},
		Uploader: Uploader{
			BaseURL:        defaultUploaderBaseURL,
			TimeoutSeconds: defaultServiceTimeoutSeconds,
		},
		Eligibility: Eligibility{
			BaseURL:          defaultEligibilityBaseURL,
			TimeoutSeconds:   defaultServiceTimeoutSeconds,
			ExemptCategories: []string{"internal", "test"},
		},
		Posts: Posts{
			BaseURL:        defaultPostsBaseURL,
			TimeoutSeconds: defaultServiceTimeoutSeconds,
		},
		Media: Media{
			JPEGQuality:          defaultJPEGQuality,
			VideoClipSeconds:     defaultVideoClipSeconds,
			CompressMaxDimension: defaultCompressMaxDimension,
			SizeLimitMiB:         defaultSizeLimitMiB,
			ThumbnailCount:       defaultThumbnailCount,
			TrimMinSelectionPx:   defaultTrimMinSelectionPx,
		},
		Catalog: Catalog{
			PageSize:      defaultCatalogPageSize,
			WatchDevices:  true,
			SettleSeconds: defaultCatalogSettleSeconds,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyRequestTimeout,
			Publish:        true,
			Errors:         true,
		},
		Workflow: Workflow{
			SessionRetentionDays: defaultSessionRetentionDays,
			MaintenanceInterval:  defaultMaintenanceInterval,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
	}
}
