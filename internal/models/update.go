package models

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// Update types. HTML updates carry sanitized markup in Content; goal and
// video updates carry a validated URL.
const (
	UpdateTypeHTML    = "html"
	UpdateTypeNHLGoal = "nhl_goal"
	UpdateTypeYouTube = "youtube"
)

// GameUpdate represents a row in the 'game_updates' table. Updates are
// immutable after creation except for deletion.
type GameUpdate struct {
	ID        int64          `db:"id" json:"id"`
	GameID    int64          `db:"game_id" json:"game_id"`
	Type      string         `db:"type" json:"type"`
	Content   sql.NullString `db:"content" json:"content"`
	URL       sql.NullString `db:"url" json:"url"`
	CreatedAt time.Time      `db:"created_at" json:"created_at"`
}

// MarshalJSON renders content and url as plain nullable strings instead of
// the sql.NullString wire shape.
func (u GameUpdate) MarshalJSON() ([]byte, error) {
	type wire struct {
		ID        int64     `json:"id"`
		GameID    int64     `json:"game_id"`
		Type      string    `json:"type"`
		Content   *string   `json:"content,omitempty"`
		URL       *string   `json:"url,omitempty"`
		CreatedAt time.Time `json:"created_at"`
	}

	out := wire{
		ID:        u.ID,
		GameID:    u.GameID,
		Type:      u.Type,
		CreatedAt: u.CreatedAt,
	}
	if u.Content.Valid {
		out.Content = &u.Content.String
	}
	if u.URL.Valid {
		out.URL = &u.URL.String
	}
	return json.Marshal(out)
}

// NewHTMLUpdate creates an html update carrying already-sanitized markup.
func NewHTMLUpdate(gameID int64, sanitized string) *GameUpdate {
	return &GameUpdate{
		GameID:    gameID,
		Type:      UpdateTypeHTML,
		Content:   sql.NullString{String: sanitized, Valid: true},
		CreatedAt: time.Now().UTC(),
	}
}

// NewLinkUpdate creates an nhl_goal or youtube update carrying an
// already-validated URL.
func NewLinkUpdate(gameID int64, updateType, validatedURL string) *GameUpdate {
	return &GameUpdate{
		GameID:    gameID,
		Type:      updateType,
		URL:       sql.NullString{String: validatedURL, Valid: true},
		CreatedAt: time.Now().UTC(),
	}
}

// ValidType reports whether t is one of the known update types.
func ValidType(t string) bool {
	switch t {
	case UpdateTypeHTML, UpdateTypeNHLGoal, UpdateTypeYouTube:
		return true
	}
	return false
}

// Validate enforces the exactly-one-of-content/url invariant as determined
// by the update type.
func (u *GameUpdate) Validate() error {
	if !ValidType(u.Type) {
		return fmt.Errorf("invalid update type: %q", u.Type)
	}
	if u.GameID <= 0 {
		return fmt.Errorf("update must belong to a game")
	}
	switch u.Type {
	case UpdateTypeHTML:
		if !u.Content.Valid || u.Content.String == "" {
			return fmt.Errorf("html update requires content")
		}
		if u.URL.Valid {
			return fmt.Errorf("html update must not carry a url")
		}
	default:
		if !u.URL.Valid || u.URL.String == "" {
			return fmt.Errorf("%s update requires a url", u.Type)
		}
		if u.Content.Valid {
			return fmt.Errorf("%s update must not carry content", u.Type)
		}
	}
	return nil
}
