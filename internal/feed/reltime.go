package feed

import (
	"fmt"
	"time"
)

// interval holds a descending threshold for relative-time bucketing.
type interval struct {
	seconds int64
	label   string
}

var intervals = []interval{
	{31536000, "year"},
	{2592000, "month"},
	{604800, "week"},
	{86400, "day"},
	{3600, "hour"},
	{60, "minute"},
}

// RelativeTime formats t relative to now as a human-readable English string:
// "just now" under a minute, "yesterday" for exactly one day, otherwise
// "{n} {unit}{s} ago" with the largest unit that fits.
func RelativeTime(t, now time.Time) string {
	diff := int64(now.Sub(t).Seconds())

	if diff < 60 {
		return "just now"
	}

	for _, iv := range intervals {
		count := diff / iv.seconds
		if count >= 1 {
			if iv.label == "day" && count == 1 {
				return "yesterday"
			}
			plural := ""
			if count > 1 {
				plural = "s"
			}
			return fmt.Sprintf("%d %s%s ago", count, iv.label, plural)
		}
	}

	return "just now"
}
