package sanitize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestYouTubeEmbedURL(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want string
	}{
		{"short link", "https://youtu.be/abc123", "https://www.youtube-nocookie.com/embed/abc123"},
		{"watch link", "https://www.youtube.com/watch?v=dQw4w9WgXcQ", "https://www.youtube-nocookie.com/embed/dQw4w9WgXcQ"},
		{"watch without www", "https://youtube.com/watch?v=x_Y-9z", "https://www.youtube-nocookie.com/embed/x_Y-9z"},
		{"existing embed", "https://www.youtube.com/embed/abc123", "https://www.youtube-nocookie.com/embed/abc123"},
		{"watch wins over embed shape", "https://youtube.com/watch?v=first", "https://www.youtube-nocookie.com/embed/first"},
		{"trailing params ignored", "https://www.youtube.com/watch?v=abc123&t=30s", "https://www.youtube-nocookie.com/embed/abc123"},
		{"no match", "https://www.nhl.com/video/123", ""},
		{"empty", "", ""},
		{"bare id", "abc123", ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, YouTubeEmbedURL(tc.url))
		})
	}
}
