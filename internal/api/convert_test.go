package api_test

import (
	"testing"
	"time"

	"lightbox/internal/api"
	"lightbox/internal/catalog"
	"lightbox/internal/session"
)

func TestFromSessionCountsProcessedMedia(t *testing.T) {
	sess := &session.Session{
		ID:        7,
		Mode:      session.ModeCompose,
		Status:    session.StatusDraft,
		DraftText: "hello",
		RatioKind: "square",
		CreatedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	if err := sess.SetProcessed([]session.ProcessedMedia{
		{AssetID: "a", Path: "/tmp/a.jpg", MediaType: catalog.MediaTypeImage},
		{AssetID: "b", Path: "/tmp/b.jpg", MediaType: catalog.MediaTypeImage},
		{AssetID: "c", Path: "/tmp/c.mp4", MediaType: catalog.MediaTypeVideo},
	}); err != nil {
		t.Fatal(err)
	}

	dto := api.FromSession(sess)
	if dto.ID != 7 || dto.Mode != "compose" || dto.Status != "draft" {
		t.Fatalf("unexpected identity fields: %+v", dto)
	}
	if dto.ImageCount != 2 || dto.VideoCount != 1 {
		t.Fatalf("expected 2 images and 1 video, got %d/%d", dto.ImageCount, dto.VideoCount)
	}
	if dto.RatioLabel != "1:1" {
		t.Fatalf("expected ratio label 1:1, got %q", dto.RatioLabel)
	}
	if dto.CreatedAt == "" {
		t.Fatal("expected formatted CreatedAt")
	}
	if dto.PublishedAt != "" {
		t.Fatal("expected empty PublishedAt for a draft")
	}
}

func TestFromSessionNil(t *testing.T) {
	if dto := api.FromSession(nil); dto.ID != 0 {
		t.Fatalf("expected zero DTO, got %+v", dto)
	}
}

func TestMergeSessionStatsIncludesAllStatuses(t *testing.T) {
	merged := api.MergeSessionStats(map[session.Status]int{
		session.StatusDraft: 3,
	})
	if merged["draft"] != 3 {
		t.Fatalf("expected draft count 3, got %d", merged["draft"])
	}
	for _, status := range session.AllStatuses() {
		if _, ok := merged[string(status)]; !ok {
			t.Fatalf("status %s missing from merged stats", status)
		}
	}
}

func TestFromAssetFormatsTimestamps(t *testing.T) {
	asset := catalog.Asset{
		ID:         "abc",
		URI:        "file:///media/cat.jpg",
		Title:      "Cat",
		MediaType:  catalog.MediaTypeImage,
		Width:      800,
		Height:     600,
		SizeBytes:  1234,
		ModifiedAt: time.Date(2026, 1, 15, 8, 30, 0, 0, time.UTC),
	}
	dto := api.FromAsset(asset)
	if dto.MediaType != "image" {
		t.Fatalf("unexpected media type %q", dto.MediaType)
	}
	if dto.ModifiedAt != "2026-01-15T08:30:00.000Z" {
		t.Fatalf("unexpected modified timestamp %q", dto.ModifiedAt)
	}
}

func TestSortSessionsNewestFirst(t *testing.T) {
	sessions := []api.Session{
		{ID: 1, CreatedAt: "2026-01-01T00:00:00.000Z"},
		{ID: 3, CreatedAt: "2026-01-03T00:00:00.000Z"},
		{ID: 2, CreatedAt: "2026-01-03T00:00:00.000Z"},
	}
	sorted := api.SortSessionsNewestFirst(sessions)
	if sorted[0].ID != 3 || sorted[1].ID != 2 || sorted[2].ID != 1 {
		t.Fatalf("unexpected order: %d, %d, %d", sorted[0].ID, sorted[1].ID, sorted[2].ID)
	}
	if sessions[0].ID != 1 {
		t.Fatal("input slice was mutated")
	}
}

func TestParseSessionTimeInvalid(t *testing.T) {
	if !api.ParseSessionTime("not-a-time").IsZero() {
		t.Fatal("expected zero time for invalid input")
	}
}
