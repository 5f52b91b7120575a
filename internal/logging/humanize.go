package logging

import (
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
)

func formatBytes(value int64) string {
	if value < 0 {
		return strconv.FormatInt(value, 10) + " B"
	}
	return humanize.IBytes(uint64(value))
}

func formatDurationHuman(d time.Duration) string {
	if d < 0 {
		d = -d
	}
	if d < time.Second {
		return d.String()
	}
	return d.Truncate(time.Second).String()
}

func formatPercent(value float64) string {
	return strconv.FormatFloat(value, 'f', 1, 64) + "%"
}
