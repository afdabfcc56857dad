// Package feed shapes the published game-day document and writes it
// atomically to the public snapshot path.
package feed

// Document statuses surfaced to the trigger caller.
const (
	StatusLive       = "live"
	StatusNoLiveGame = "no_live_game"
)

// CacheControl is advertised in every document so the consuming client
// never caches a stale snapshot.
const CacheControl = "no-store"

// NoLiveDocument is the minimal snapshot published when no game is live.
type NoLiveDocument struct {
	Status       string `json:"status"`
	CacheControl string `json:"cache_control"`
	GeneratedAt  string `json:"generated_at"`
}

// Document is the full snapshot published while a game is live.
type Document struct {
	CacheControl string        `json:"cache_control"`
	GeneratedAt  string        `json:"generated_at"`
	Game         GameInfo      `json:"game"`
	Updates      []UpdateEntry `json:"updates"`
}

// GameInfo carries the live game's public state. Lineups are emitted
// verbatim, internal newlines included; no parsing is performed.
type GameInfo struct {
	Title       string `json:"title"`
	HomeTeam    string `json:"home_team"`
	AwayTeam    string `json:"away_team"`
	Score       Score  `json:"score"`
	HomeLineup  string `json:"home_lineup"`
	AwayLineup  string `json:"away_lineup"`
	LastUpdated string `json:"last_updated"`
}

// Score is the current score pair.
type Score struct {
	Home int `json:"home"`
	Away int `json:"away"`
}

// UpdateEntry is one shaped update in publication (oldest-first) order.
// Exactly one of HTML/URL is set, per the update type; EmbedURL accompanies
// URL for youtube updates when an embed URL could be derived.
type UpdateEntry struct {
	ID           int64  `json:"id"`
	Type         string `json:"type"`
	CreatedAt    string `json:"created_at"`
	RelativeTime string `json:"relative_time"`
	HTML         string `json:"html,omitempty"`
	URL          string `json:"url,omitempty"`
	EmbedURL     string `json:"embed_url,omitempty"`
}
