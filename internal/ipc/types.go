package ipc

import "lightbox/internal/api"

// StartRequest triggers daemon service startup.
type StartRequest struct{}

// StartResponse indicates whether the daemon was started.
type StartResponse struct {
	Started bool   `json:"started"`
	Message string `json:"message"`
}

// StopRequest stops the daemon services.
type StopRequest struct{}

// StopResponse indicates stop result.
type StopResponse struct {
	Stopped bool `json:"stopped"`
}

// StatusRequest fetches daemon status.
type StatusRequest struct{}

// Session mirrors the HTTP API session DTO for IPC callers.
type Session = api.Session

// CatalogAsset mirrors the HTTP API asset DTO for IPC callers.
type CatalogAsset = api.CatalogAsset

// DependencyStatus describes availability of an external tool.
type DependencyStatus = api.DependencyStatus

// CheckResult mirrors a preflight check outcome.
type CheckResult = api.CheckResult

// StatusResponse represents combined daemon status information.
type StatusResponse struct {
	Running      bool               `json:"running"`
	PID          int                `json:"pid"`
	DatabasePath string             `json:"database_path"`
	LockPath     string             `json:"lock_path"`
	SessionStats map[string]int     `json:"session_stats"`
	Catalog      api.CatalogStats   `json:"catalog"`
	Dependencies []DependencyStatus `json:"dependencies"`
	Checks       []CheckResult      `json:"checks"`
}

// SessionListRequest filters session listing by status.
type SessionListRequest struct {
	Statuses []string `json:"statuses"`
}

// SessionListResponse contains session entries, newest first.
type SessionListResponse struct {
	Sessions []Session `json:"sessions"`
}

// SessionDescribeRequest fetches a single session by id.
type SessionDescribeRequest struct {
	ID int64 `json:"id"`
}

// SessionDescribeResponse contains a single session.
type SessionDescribeResponse struct {
	Session Session `json:"session"`
}

// SessionDiscardRequest removes a draft session and its staging output.
type SessionDiscardRequest struct {
	ID int64 `json:"id"`
}

// SessionDiscardResponse reports whether a session was removed.
type SessionDiscardResponse struct {
	Removed bool `json:"removed"`
}

// ClearPublishedRequest removes published sessions.
type ClearPublishedRequest struct{}

// ClearPublishedResponse reports number of removed sessions.
type ClearPublishedResponse struct {
	Removed int64 `json:"removed"`
}

// SessionResetRequest returns stuck publishing sessions to drafts.
type SessionResetRequest struct{}

// SessionResetResponse reports number of sessions reset.
type SessionResetResponse struct {
	Updated int64 `json:"updated"`
}

// PublishRequest starts the publish sequence for a draft session.
type PublishRequest struct {
	ID int64 `json:"id"`
}

// PublishResponse reports whether the publish was accepted.
type PublishResponse struct {
	Started bool   `json:"started"`
	Message string `json:"message"`
}

// SessionHealthRequest fetches aggregate diagnostics.
type SessionHealthRequest struct{}

// SessionHealthResponse reports session health information.
type SessionHealthResponse struct {
	Total          int `json:"total"`
	Drafts         int `json:"drafts"`
	Publishing     int `json:"publishing"`
	Published      int `json:"published"`
	NeedsAttention int `json:"needs_attention"`
}

// DatabaseHealthRequest fetches detailed database diagnostics.
type DatabaseHealthRequest struct{}

// DatabaseHealthResponse reports database health information.
type DatabaseHealthResponse struct {
	DBPath           string   `json:"db_path"`
	DatabaseExists   bool     `json:"database_exists"`
	DatabaseReadable bool     `json:"database_readable"`
	SchemaVersion    string   `json:"schema_version"`
	TableExists      bool     `json:"table_exists"`
	ColumnsPresent   []string `json:"columns_present"`
	MissingColumns   []string `json:"missing_columns"`
	IntegrityCheck   bool     `json:"integrity_check"`
	TotalSessions    int      `json:"total_sessions"`
	Error            string   `json:"error"`
}

// CatalogListRequest pages through indexed assets.
type CatalogListRequest struct {
	MediaType string `json:"media_type"`
	Cursor    string `json:"cursor"`
	PageSize  int    `json:"page_size"`
}

// CatalogListResponse contains a page of catalog assets.
type CatalogListResponse struct {
	Assets     []CatalogAsset `json:"assets"`
	NextCursor string         `json:"next_cursor"`
	HasMore    bool           `json:"has_more"`
}

// CatalogScanRequest triggers a media store rescan.
type CatalogScanRequest struct{}

// CatalogScanResponse reports the rescan outcome.
type CatalogScanResponse struct {
	Images     int   `json:"images"`
	Videos     int   `json:"videos"`
	Skipped    int   `json:"skipped"`
	TookMillis int64 `json:"took_millis"`
}

// CatalogStatsRequest fetches catalog index statistics.
type CatalogStatsRequest struct{}

// CatalogStatsResponse reports catalog index statistics.
type CatalogStatsResponse struct {
	Images   int    `json:"images"`
	Videos   int    `json:"videos"`
	LastScan string `json:"last_scan"`
}

// CatalogImportRequest copies an outside file into the media store.
type CatalogImportRequest struct {
	Path string `json:"path"`
}

// CatalogImportResponse contains the imported asset.
type CatalogImportResponse struct {
	Asset CatalogAsset `json:"asset"`
}

// TestNotificationRequest triggers a notification test.
type TestNotificationRequest struct{}

// TestNotificationResponse reports notification test outcome.
type TestNotificationResponse struct {
	Sent    bool   `json:"sent"`
	Message string `json:"message"`
}
