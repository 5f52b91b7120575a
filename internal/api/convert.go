package api

import (
	"time"

	"lightbox/internal/catalog"
	"lightbox/internal/deps"
	"lightbox/internal/preflight"
	"lightbox/internal/publish"
	"lightbox/internal/session"
)

// FromSession converts a session record to its API representation.
func FromSession(sess *session.Session) Session {
	if sess == nil {
		return Session{}
	}

	dto := Session{
		ID:         sess.ID,
		Mode:       string(sess.Mode),
		Status:     string(sess.Status),
		DraftText:  sess.DraftText,
		Category:   sess.Category,
		RatioKind:  sess.RatioKind,
		RatioLabel: publish.RatioLabel(sess.RatioKind),
		Progress: SessionProgress{
			Stage:   sess.ProgressStage,
			Percent: sess.ProgressPercent,
			Message: sess.ProgressMessage,
		},
		PostID:          sess.PostID,
		ErrorMessage:    sess.ErrorMessage,
		NeedsAttention:  sess.NeedsAttention,
		AttentionReason: sess.AttentionReason,
	}

	// Count failures decode as zero media; the session row stays renderable.
	if media, err := sess.Processed(); err == nil {
		for _, entry := range media {
			switch entry.MediaType {
			case catalog.MediaTypeImage:
				dto.ImageCount++
			case catalog.MediaTypeVideo:
				dto.VideoCount++
			}
		}
	}

	if !sess.CreatedAt.IsZero() {
		dto.CreatedAt = sess.CreatedAt.UTC().Format(dateTimeFormat)
	}
	if !sess.UpdatedAt.IsZero() {
		dto.UpdatedAt = sess.UpdatedAt.UTC().Format(dateTimeFormat)
	}
	if sess.PublishedAt != nil && !sess.PublishedAt.IsZero() {
		dto.PublishedAt = sess.PublishedAt.UTC().Format(dateTimeFormat)
	}
	return dto
}

// FromSessions converts a slice of session records into API DTOs.
func FromSessions(sessions []*session.Session) []Session {
	if len(sessions) == 0 {
		return nil
	}
	out := make([]Session, 0, len(sessions))
	for _, sess := range sessions {
		out = append(out, FromSession(sess))
	}
	return out
}

// MergeSessionStats converts typed status counts into a string-keyed map.
// Known statuses always appear so consumers render stable tables.
func MergeSessionStats(stats map[session.Status]int) map[string]int {
	merged := make(map[string]int, len(session.AllStatuses()))
	for _, status := range session.AllStatuses() {
		merged[string(status)] = 0
	}
	for status, count := range stats {
		merged[string(status)] = count
	}
	return merged
}

// FromAsset converts a catalog asset to its API representation.
func FromAsset(asset catalog.Asset) CatalogAsset {
	dto := CatalogAsset{
		ID:              asset.ID,
		URI:             asset.URI,
		Title:           asset.Title,
		MediaType:       string(asset.MediaType),
		Width:           asset.Width,
		Height:          asset.Height,
		DurationSeconds: asset.DurationSeconds,
		SizeBytes:       asset.SizeBytes,
	}
	if !asset.ModifiedAt.IsZero() {
		dto.ModifiedAt = asset.ModifiedAt.UTC().Format(dateTimeFormat)
	}
	return dto
}

// FromAssets converts a slice of catalog assets into API DTOs.
func FromAssets(assets []catalog.Asset) []CatalogAsset {
	if len(assets) == 0 {
		return nil
	}
	out := make([]CatalogAsset, 0, len(assets))
	for _, asset := range assets {
		out = append(out, FromAsset(asset))
	}
	return out
}

// FromCatalogPage converts a catalog page into a list response.
func FromCatalogPage(page catalog.Page) CatalogListResponse {
	return CatalogListResponse{
		Assets:     FromAssets(page.Assets),
		NextCursor: page.NextCursor,
		HasMore:    page.HasMore,
	}
}

// FromCatalogStats converts catalog scan statistics.
func FromCatalogStats(stats catalog.Stats) CatalogStats {
	dto := CatalogStats{
		Images: stats.Images,
		Videos: stats.Videos,
	}
	if !stats.LastScan.IsZero() {
		dto.LastScan = stats.LastScan.UTC().Format(dateTimeFormat)
	}
	return dto
}

// FromScanSummary converts a rescan outcome.
func FromScanSummary(summary catalog.ScanSummary) ScanSummary {
	return ScanSummary{
		Images:     summary.Images,
		Videos:     summary.Videos,
		Skipped:    summary.Skipped,
		TookMillis: summary.Took.Milliseconds(),
	}
}

// FromDependencyStatuses converts external tool availability reports.
func FromDependencyStatuses(statuses []deps.Status) []DependencyStatus {
	if len(statuses) == 0 {
		return nil
	}
	out := make([]DependencyStatus, 0, len(statuses))
	for _, status := range statuses {
		out = append(out, DependencyStatus{
			Name:        status.Name,
			Command:     status.Command,
			Description: status.Description,
			Optional:    status.Optional,
			Available:   status.Available,
			Detail:      status.Detail,
		})
	}
	return out
}

// FromCheckResults converts preflight check outcomes.
func FromCheckResults(results []preflight.Result) []CheckResult {
	if len(results) == 0 {
		return nil
	}
	out := make([]CheckResult, 0, len(results))
	for _, result := range results {
		out = append(out, CheckResult{
			Name:   result.Name,
			Passed: result.Passed,
			Detail: result.Detail,
		})
	}
	return out
}

// ParseSessionTime parses an API timestamp back into a time.Time.
// Unparseable values yield the zero time.
func ParseSessionTime(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t
	}
	return time.Time{}
}
