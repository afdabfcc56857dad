// Package store provides relational persistence for games and their
// updates. The GameStore interface is the seam the feed generator and admin
// handlers depend on; tests substitute an in-memory fake.
package store

import (
	"context"
	"errors"
	"time"

	"gameday/publisher/internal/models"
)

// Sentinel errors surfaced to callers as rejection reasons.
var (
	// ErrNotFound indicates the requested game or update does not exist.
	ErrNotFound = errors.New("not found")

	// ErrNotLive indicates an unset-live request against a game that is
	// not currently live.
	ErrNotLive = errors.New("game is not currently live")
)

// GameStore defines persistence operations for games and updates.
type GameStore interface {
	// GetGame fetches a game by ID; ErrNotFound if absent.
	GetGame(ctx context.Context, id int64) (*models.Game, error)

	// GetLiveGame returns the single live game, or (nil, nil) when no
	// game is live. The at-most-one-live invariant makes this well-defined.
	GetLiveGame(ctx context.Context) (*models.Game, error)

	// ListGames returns all games, newest first.
	ListGames(ctx context.Context) ([]models.Game, error)

	// CreateGame inserts a new game and assigns its ID.
	CreateGame(ctx context.Context, g *models.Game) error

	// SaveGame persists mutable fields of an existing game and bumps its
	// updated_at timestamp. ErrNotFound if the game does not exist.
	SaveGame(ctx context.Context, g *models.Game) error

	// SetLive atomically clears the live flag on every game and sets it on
	// the given game, all in one transaction. Any failure rolls back fully,
	// leaving the prior live game untouched.
	SetLive(ctx context.Context, id int64) error

	// UnsetLive clears the live flag on the given game. ErrNotLive if the
	// game exists but is not live; ErrNotFound if it does not exist.
	UnsetLive(ctx context.Context, id int64) error

	// AddUpdate inserts a new update and assigns its ID. The update's
	// content/url must already be sanitized/validated.
	AddUpdate(ctx context.Context, u *models.GameUpdate) error

	// GetUpdate fetches an update by ID scoped to a game; ErrNotFound if
	// absent or owned by a different game.
	GetUpdate(ctx context.Context, id, gameID int64) (*models.GameUpdate, error)

	// DeleteUpdate removes an update; ErrNotFound if absent.
	DeleteUpdate(ctx context.Context, id int64) error

	// ListUpdatesAsc returns every update for a game oldest-first, the
	// publication order for the feed.
	ListUpdatesAsc(ctx context.Context, gameID int64) ([]models.GameUpdate, error)

	// ListUpdatesPage returns a newest-first page of updates for the admin
	// view. A nil cursor fetches the first page.
	ListUpdatesPage(ctx context.Context, gameID int64, limit int, before *time.Time, beforeID *int64) ([]models.GameUpdate, error)

	// CountGames and CountUpdates back the dashboard totals.
	CountGames(ctx context.Context) (int64, error)
	CountUpdates(ctx context.Context) (int64, error)
}
