package session

import (
	"strings"
	"time"

	"lightbox/internal/services"
)

// Mode is the modal editing state of a composition session. Exactly one
// mode is active at a time; the composer enforces the legal transitions.
type Mode string

const (
	ModeCompose    Mode = "compose"
	ModeGallery    Mode = "gallery"
	ModeCrop       Mode = "crop"
	ModeVideoCrop  Mode = "video_crop"
	ModeVideoTrim  Mode = "video_trim"
	ModePublishing Mode = "publishing"
)

var allModes = []Mode{
	ModeCompose,
	ModeGallery,
	ModeCrop,
	ModeVideoCrop,
	ModeVideoTrim,
	ModePublishing,
}

var modeSet = func() map[Mode]struct{} {
	set := make(map[Mode]struct{}, len(allModes))
	for _, mode := range allModes {
		set[mode] = struct{}{}
	}
	return set
}()

// AllModes returns the ordered list of known modes.
func AllModes() []Mode {
	cp := make([]Mode, len(allModes))
	copy(cp, allModes)
	return cp
}

// ParseMode converts a string into a known Mode.
func ParseMode(value string) (Mode, bool) {
	normalized := Mode(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := modeSet[normalized]
	return normalized, ok
}

// Status represents the lifecycle of a session independent of its modal
// editing state.
type Status string

const (
	StatusDraft      Status = "draft"
	StatusPublishing Status = "publishing"
	StatusPublished  Status = "published"
)

var allStatuses = []Status{
	StatusDraft,
	StatusPublishing,
	StatusPublished,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

// AllStatuses returns the ordered list of known statuses.
func AllStatuses() []Status {
	cp := make([]Status, len(allStatuses))
	copy(cp, allStatuses)
	return cp
}

// ParseStatus converts a string into a known Status.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := statusSet[normalized]
	return normalized, ok
}

// InterruptedPublishMessage is the error message set when in-flight
// publishes are reset because the daemon stopped underneath them.
const InterruptedPublishMessage = "Publish interrupted by daemon restart"

// HealthSummary describes aggregated session counts per lifecycle state.
type HealthSummary struct {
	Total          int
	Drafts         int
	Publishing     int
	Published      int
	NeedsAttention int
}

// DatabaseHealth captures diagnostic information about the session database.
type DatabaseHealth struct {
	DBPath           string
	DatabaseExists   bool
	DatabaseReadable bool
	SchemaVersion    string
	TableExists      bool
	ColumnsPresent   []string
	MissingColumns   []string
	IntegrityCheck   bool
	TotalSessions    int
	Error            string
}

// Session represents a composition session persisted in SQLite.
type Session struct {
	ID               int64
	Mode             Mode
	Status           Status
	DraftText        string
	Category         string
	RatioKind        string
	SelectionJSON    string
	OffsetsJSON      string
	TrimStartSeconds float64
	ProcessedJSON    string
	SeedJSON         string
	PostID           string
	ErrorMessage     string
	NeedsAttention   bool
	AttentionReason  string
	ProgressStage    string
	ProgressPercent  float64
	ProgressMessage  string
	LastHeartbeat    *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
	PublishedAt      *time.Time
}

// IsPublishing reports whether the session has an in-flight publish.
func (s Session) IsPublishing() bool {
	return s.Status == StatusPublishing
}

// IsEditable reports whether a session can still be modified. Published
// sessions are terminal.
func (s Session) IsEditable() bool {
	return s.Status == StatusDraft
}

// InitProgress resets progress fields for a new publish attempt.
// ErrorMessage and the attention flag are cleared so a retry starts clean.
func (s *Session) InitProgress(stage, message string) {
	s.ProgressStage = stage
	s.ProgressMessage = message
	s.ProgressPercent = 0
	s.ErrorMessage = ""
	s.NeedsAttention = false
	s.AttentionReason = ""
}

// SetProgress updates all three progress fields atomically.
func (s *Session) SetProgress(stage, message string, percent float64) {
	s.ProgressStage = stage
	s.ProgressMessage = message
	s.ProgressPercent = percent
}

// SetProgressComplete sets progress to 100% with the given stage and message.
func (s *Session) SetProgressComplete(stage, message string) {
	s.SetProgress(stage, message, 100)
}

// SetPublishFailed returns the session to an editable draft after a failed
// publish. The draft and selection survive untouched; the attention flag is
// raised only for failures the user must fix before retrying.
func (s *Session) SetPublishFailed(err error) {
	s.Status = StatusDraft
	s.Mode = ModeCompose
	s.LastHeartbeat = nil
	s.ProgressStage = "Failed"
	s.ProgressPercent = 0
	if err != nil {
		s.ErrorMessage = err.Error()
		s.ProgressMessage = err.Error()
	}
	if services.NeedsAttention(err) {
		s.NeedsAttention = true
		s.AttentionReason = s.ErrorMessage
	}
}

// MarkPublished finalizes a successful publish.
func (s *Session) MarkPublished(postID string) {
	now := time.Now().UTC()
	s.Status = StatusPublished
	s.Mode = ModeCompose
	s.PostID = postID
	s.PublishedAt = &now
	s.LastHeartbeat = nil
	s.ErrorMessage = ""
	s.NeedsAttention = false
	s.AttentionReason = ""
	s.SetProgressComplete("Published", "Post created")
}
