package sanitize

import "regexp"

// Video ID extraction patterns, tried in priority order.
var youtubePatterns = []*regexp.Regexp{
	regexp.MustCompile(`youtube\.com/watch\?v=([A-Za-z0-9_-]+)`),
	regexp.MustCompile(`youtu\.be/([A-Za-z0-9_-]+)`),
	regexp.MustCompile(`youtube\.com/embed/([A-Za-z0-9_-]+)`),
}

// YouTubeEmbedURL derives a privacy-respecting nocookie embed URL from a raw
// YouTube URL. It recognizes watch?v=, youtu.be/ and embed/ shapes and
// returns the empty string when none match. Domain and protocol validation
// are the caller's job (URL with ContextYouTube); this only extracts the ID.
func YouTubeEmbedURL(rawURL string) string {
	for _, pattern := range youtubePatterns {
		if m := pattern.FindStringSubmatch(rawURL); m != nil {
			return "https://www.youtube-nocookie.com/embed/" + m[1]
		}
	}
	return ""
}
