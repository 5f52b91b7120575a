package main

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"lightbox/internal/api"
)

func buildSessionStatusRows(stats map[string]int) [][]string {
	if len(stats) == 0 {
		return nil
	}
	keys := make([]string, 0, len(stats))
	for key := range stats {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	rows := make([][]string, 0, len(keys))
	for _, key := range keys {
		rows = append(rows, []string{formatStatusLabel(key), fmt.Sprintf("%d", stats[key])})
	}
	return rows
}

func buildSessionListRows(sessions []api.Session) [][]string {
	if len(sessions) == 0 {
		return nil
	}
	sorted := api.SortSessionsNewestFirst(sessions)

	rows := make([][]string, 0, len(sorted))
	for _, sess := range sorted {
		rows = append(rows, []string{
			fmt.Sprintf("%d", sess.ID),
			formatStatusLabel(sess.Mode),
			formatStatusLabel(sess.Status),
			sess.RatioLabel,
			formatMediaCounts(sess.ImageCount, sess.VideoCount),
			formatDisplayTime(sess.CreatedAt),
		})
	}
	return rows
}

func buildAssetRows(assets []api.CatalogAsset) [][]string {
	if len(assets) == 0 {
		return nil
	}
	rows := make([][]string, 0, len(assets))
	for _, asset := range assets {
		dims := fmt.Sprintf("%dx%d", asset.Width, asset.Height)
		duration := "-"
		if asset.DurationSeconds > 0 {
			duration = formatDuration(asset.DurationSeconds)
		}
		rows = append(rows, []string{
			formatAssetID(asset.ID),
			asset.Title,
			asset.MediaType,
			dims,
			duration,
			humanize.IBytes(uint64(asset.SizeBytes)),
			formatDisplayTime(asset.ModifiedAt),
		})
	}
	return rows
}

func formatMediaCounts(images, videos int) string {
	switch {
	case images > 0 && videos > 0:
		return fmt.Sprintf("%d img, %d vid", images, videos)
	case videos > 0:
		return fmt.Sprintf("%d vid", videos)
	case images > 0:
		return fmt.Sprintf("%d img", images)
	default:
		return "-"
	}
}

func formatDuration(seconds float64) string {
	d := time.Duration(seconds * float64(time.Second)).Round(time.Second)
	minutes := int(d.Minutes())
	secs := int(d.Seconds()) % 60
	return fmt.Sprintf("%d:%02d", minutes, secs)
}

func formatStatusLabel(status string) string {
	status = strings.TrimSpace(status)
	if status == "" {
		return ""
	}
	parts := strings.Split(status, "_")
	for i, part := range parts {
		lower := strings.ToLower(part)
		if lower == "" {
			continue
		}
		parts[i] = strings.ToUpper(lower[:1]) + lower[1:]
	}
	return strings.Join(parts, " ")
}

func formatDisplayTime(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	if t := api.ParseSessionTime(value); !t.IsZero() {
		return t.UTC().Format("2006-01-02 15:04")
	}
	return value
}

func formatAssetID(id string) string {
	id = strings.TrimSpace(id)
	if len(id) > 12 {
		return id[:12]
	}
	if id == "" {
		return "-"
	}
	return id
}
