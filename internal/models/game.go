package models

import (
	"fmt"
	"strings"
	"time"
)

// Field limits enforced at ingestion, mirrored by the schema.
const (
	MaxTitleLen = 255
	MaxTeamLen  = 100
	MinScore    = 0
	MaxScore    = 99
)

// Game represents a row in the 'games' table. At most one game system-wide
// has IsLive set; the store's SetLive transition enforces that.
type Game struct {
	ID             int64     `db:"id" json:"id"`
	Title          string    `db:"title" json:"title"`
	HomeTeam       string    `db:"home_team" json:"home_team"`
	AwayTeam       string    `db:"away_team" json:"away_team"`
	ScoreHome      int       `db:"score_home" json:"score_home"`
	ScoreAway      int       `db:"score_away" json:"score_away"`
	HomeLineupText string    `db:"home_lineup_text" json:"home_lineup_text"`
	AwayLineupText string    `db:"away_lineup_text" json:"away_lineup_text"`
	IsLive         bool      `db:"is_live" json:"is_live"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// NewGame creates a Game with default values.
func NewGame() *Game {
	now := time.Now().UTC()
	return &Game{
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// NormalizeLineups converts CRLF/CR line endings to LF and trims trailing
// whitespace from both lineup texts. Internal newlines are preserved
// verbatim; the public feed emits lineups with no parsing performed.
func (g *Game) NormalizeLineups() {
	g.HomeLineupText = normalizeLineup(g.HomeLineupText)
	g.AwayLineupText = normalizeLineup(g.AwayLineupText)
}

func normalizeLineup(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	return strings.TrimRight(s, " \t\n")
}

// Validate checks required fields, length limits, and score ranges.
func (g *Game) Validate() error {
	if strings.TrimSpace(g.Title) == "" {
		return fmt.Errorf("game title is required")
	}
	if strings.TrimSpace(g.HomeTeam) == "" {
		return fmt.Errorf("home team is required")
	}
	if strings.TrimSpace(g.AwayTeam) == "" {
		return fmt.Errorf("away team is required")
	}
	if len(g.Title) > MaxTitleLen {
		return fmt.Errorf("title is too long (max %d characters)", MaxTitleLen)
	}
	if len(g.HomeTeam) > MaxTeamLen {
		return fmt.Errorf("home team name is too long (max %d characters)", MaxTeamLen)
	}
	if len(g.AwayTeam) > MaxTeamLen {
		return fmt.Errorf("away team name is too long (max %d characters)", MaxTeamLen)
	}
	if g.ScoreHome < MinScore || g.ScoreHome > MaxScore {
		return fmt.Errorf("home team score must be between %d and %d", MinScore, MaxScore)
	}
	if g.ScoreAway < MinScore || g.ScoreAway > MaxScore {
		return fmt.Errorf("away team score must be between %d and %d", MinScore, MaxScore)
	}
	return nil
}
