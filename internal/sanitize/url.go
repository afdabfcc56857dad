package sanitize

import (
	"net/url"
	"strings"
)

// Validation contexts for URL. Each context pins a domain allowlist.
const (
	ContextGeneral = "general"
	ContextNHLGoal = "nhl_goal"
	ContextYouTube = "youtube"
)

// MaxURLLen is the URL length cap; longer input is rejected, not truncated.
const MaxURLLen = 1000

var contextDomains = map[string][]string{
	ContextNHLGoal: {"nhl.com", "www.nhl.com"},
	ContextYouTube: {
		"youtube.com", "www.youtube.com",
		"youtu.be", "youtube-nocookie.com", "www.youtube-nocookie.com",
	},
}

// URL validates raw against the protocol and domain rules for the given
// context and returns the trimmed URL unchanged on success, or the empty
// string on rejection. All contexts require HTTPS; nhl_goal and youtube
// additionally restrict the host to their domain allowlists.
func URL(raw, context string) string {
	u := strings.TrimSpace(raw)
	if u == "" || len(u) > MaxURLLen {
		return ""
	}

	if !hasPrefixFold(u, "https://") {
		return ""
	}

	parsed, err := url.Parse(u)
	if err != nil || parsed.Scheme == "" || parsed.Hostname() == "" {
		return ""
	}

	domains, restricted := contextDomains[context]
	if !restricted {
		// General context: any structurally valid HTTPS URL.
		return u
	}

	host := strings.ToLower(parsed.Hostname())
	for _, domain := range domains {
		// Exact label match, or a proper dot-prefixed subdomain. A bare
		// suffix match would let evilnhl.com impersonate nhl.com.
		if host == domain || strings.HasSuffix(host, "."+domain) {
			return u
		}
	}

	return ""
}
