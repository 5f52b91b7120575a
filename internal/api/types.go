package api

// dateTimeFormat is used for RFC3339 timestamps in API payloads.
const dateTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// Session describes a composition session in a transport-friendly format.
type Session struct {
	ID              int64           `json:"id"`
	Mode            string          `json:"mode"`
	Status          string          `json:"status"`
	DraftText       string          `json:"draftText"`
	Category        string          `json:"category,omitempty"`
	RatioKind       string          `json:"ratioKind"`
	RatioLabel      string          `json:"ratioLabel"`
	ImageCount      int             `json:"imageCount"`
	VideoCount      int             `json:"videoCount"`
	Progress        SessionProgress `json:"progress"`
	PostID          string          `json:"postId,omitempty"`
	ErrorMessage    string          `json:"errorMessage,omitempty"`
	NeedsAttention  bool            `json:"needsAttention"`
	AttentionReason string          `json:"attentionReason,omitempty"`
	CreatedAt       string          `json:"createdAt,omitempty"`
	UpdatedAt       string          `json:"updatedAt,omitempty"`
	PublishedAt     string          `json:"publishedAt,omitempty"`
}

// SessionProgress captures publish progress for a session.
type SessionProgress struct {
	Stage   string  `json:"stage"`
	Percent float64 `json:"percent"`
	Message string  `json:"message"`
}

// CatalogAsset describes an indexed media asset.
type CatalogAsset struct {
	ID              string  `json:"id"`
	URI             string  `json:"uri"`
	Title           string  `json:"title"`
	MediaType       string  `json:"mediaType"`
	Width           int     `json:"width"`
	Height          int     `json:"height"`
	DurationSeconds float64 `json:"durationSeconds,omitempty"`
	SizeBytes       int64   `json:"sizeBytes"`
	ModifiedAt      string  `json:"modifiedAt,omitempty"`
}

// CatalogStats summarizes the indexed media store.
type CatalogStats struct {
	Images   int    `json:"images"`
	Videos   int    `json:"videos"`
	LastScan string `json:"lastScan,omitempty"`
}

// ScanSummary reports the outcome of a catalog rescan.
type ScanSummary struct {
	Images     int   `json:"images"`
	Videos     int   `json:"videos"`
	Skipped    int   `json:"skipped"`
	TookMillis int64 `json:"tookMillis"`
}

// DependencyStatus captures availability of an external tool.
type DependencyStatus struct {
	Name        string `json:"name"`
	Command     string `json:"command"`
	Description string `json:"description"`
	Optional    bool   `json:"optional"`
	Available   bool   `json:"available"`
	Detail      string `json:"detail,omitempty"`
}

// CheckResult mirrors a preflight check outcome.
type CheckResult struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail,omitempty"`
}

// DaemonStatus aggregates daemon runtime information for API consumers.
type DaemonStatus struct {
	Running      bool               `json:"running"`
	PID          int                `json:"pid"`
	DatabasePath string             `json:"databasePath"`
	LockFilePath string             `json:"lockFilePath"`
	SessionStats map[string]int     `json:"sessionStats"`
	Catalog      CatalogStats       `json:"catalog"`
	Dependencies []DependencyStatus `json:"dependencies"`
	Checks       []CheckResult      `json:"checks"`
}

// SessionListResponse wraps a collection of sessions for API responses.
type SessionListResponse struct {
	Sessions []Session `json:"sessions"`
}

// SessionResponse wraps a single session.
type SessionResponse struct {
	Session Session `json:"session"`
}

// CatalogListResponse wraps a page of catalog assets.
type CatalogListResponse struct {
	Assets     []CatalogAsset `json:"assets"`
	NextCursor string         `json:"nextCursor,omitempty"`
	HasMore    bool           `json:"hasMore"`
}
