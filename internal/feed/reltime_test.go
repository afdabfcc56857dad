package feed

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRelativeTime(t *testing.T) {
	now := time.Date(2026, time.March, 14, 19, 30, 0, 0, time.UTC)

	tests := []struct {
		name string
		diff time.Duration
		want string
	}{
		{"zero", 0, "just now"},
		{"under a minute", 59 * time.Second, "just now"},
		{"exactly a minute", 60 * time.Second, "1 minute ago"},
		{"minutes plural", 5 * time.Minute, "5 minutes ago"},
		{"one hour", time.Hour, "1 hour ago"},
		{"hours plural", 3 * time.Hour, "3 hours ago"},
		{"one day is yesterday", 86400 * time.Second, "yesterday"},
		{"two days", 172800 * time.Second, "2 days ago"},
		{"one week", 604800 * time.Second, "1 week ago"},
		{"one month", 2592000 * time.Second, "1 month ago"},
		{"one year", 31536000 * time.Second, "1 year ago"},
		{"two years", 2 * 31536000 * time.Second, "2 years ago"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, RelativeTime(now.Add(-tc.diff), now))
		})
	}
}

func TestRelativeTimeFutureTimestamp(t *testing.T) {
	now := time.Date(2026, time.March, 14, 19, 30, 0, 0, time.UTC)
	// Clock skew can put created_at slightly ahead of generation time.
	assert.Equal(t, "just now", RelativeTime(now.Add(30*time.Second), now))
}
