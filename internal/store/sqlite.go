package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"gameday/publisher/internal/database"
	"gameday/publisher/internal/models"
)

// sqlxStore implements GameStore using sqlx over SQLite.
type sqlxStore struct {
	db *database.DB
}

// New creates a GameStore backed by the given database connection.
func New(db *database.DB) GameStore {
	return &sqlxStore{db: db}
}

func (s *sqlxStore) GetGame(ctx context.Context, id int64) (*models.Game, error) {
	var g models.Game
	err := s.db.GetContext(ctx, &g, `SELECT * FROM games WHERE id = ?`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch game %d: %w", id, err)
	}
	return &g, nil
}

func (s *sqlxStore) GetLiveGame(ctx context.Context) (*models.Game, error) {
	var g models.Game
	err := s.db.GetContext(ctx, &g, `SELECT * FROM games WHERE is_live = 1 LIMIT 1`)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch live game: %w", err)
	}
	return &g, nil
}

func (s *sqlxStore) ListGames(ctx context.Context) ([]models.Game, error) {
	games := []models.Game{}
	err := s.db.SelectContext(ctx, &games, `SELECT * FROM games ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list games: %w", err)
	}
	return games, nil
}

func (s *sqlxStore) CreateGame(ctx context.Context, g *models.Game) error {
	now := time.Now().UTC()
	g.CreatedAt = now
	g.UpdatedAt = now

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO games (title, home_team, away_team, score_home, score_away,
		                   home_lineup_text, away_lineup_text, is_live, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, 0, ?, ?)`,
		g.Title, g.HomeTeam, g.AwayTeam, g.ScoreHome, g.ScoreAway,
		g.HomeLineupText, g.AwayLineupText, g.CreatedAt, g.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create game: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read new game id: %w", err)
	}
	g.ID = id
	return nil
}

func (s *sqlxStore) SaveGame(ctx context.Context, g *models.Game) error {
	g.UpdatedAt = time.Now().UTC()

	res, err := s.db.ExecContext(ctx, `
		UPDATE games
		SET title = ?, home_team = ?, away_team = ?, score_home = ?, score_away = ?,
		    home_lineup_text = ?, away_lineup_text = ?, updated_at = ?
		WHERE id = ?`,
		g.Title, g.HomeTeam, g.AwayTeam, g.ScoreHome, g.ScoreAway,
		g.HomeLineupText, g.AwayLineupText, g.UpdatedAt, g.ID)
	if err != nil {
		return fmt.Errorf("failed to save game %d: %w", g.ID, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected for game %d: %w", g.ID, err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// SetLive clears every live flag and sets the target's flag inside a single
// transaction. Partial application (all cleared, none set) would break the
// live-game invariant, so any failure rolls back fully.
func (s *sqlxStore) SetLive(ctx context.Context, id int64) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin set-live transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `UPDATE games SET is_live = 0 WHERE is_live = 1`); err != nil {
		return fmt.Errorf("failed to clear live flags: %w", err)
	}

	res, err := tx.ExecContext(ctx,
		`UPDATE games SET is_live = 1, updated_at = ? WHERE id = ?`,
		time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to set game %d live: %w", id, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected setting game %d live: %w", id, err)
	}
	if affected == 0 {
		return ErrNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit set-live transaction: %w", err)
	}

	log.Info().Int64("game_id", id).Msg("Game is now live")
	return nil
}

func (s *sqlxStore) UnsetLive(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE games SET is_live = 0, updated_at = ? WHERE id = ? AND is_live = 1`,
		time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to unset game %d live: %w", id, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected unsetting game %d live: %w", id, err)
	}
	if affected == 0 {
		// Distinguish a missing game from one that simply is not live.
		if _, err := s.GetGame(ctx, id); err != nil {
			return err
		}
		return ErrNotLive
	}

	log.Info().Int64("game_id", id).Msg("Game is no longer live")
	return nil
}

func (s *sqlxStore) AddUpdate(ctx context.Context, u *models.GameUpdate) error {
	if err := u.Validate(); err != nil {
		return err
	}

	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO game_updates (game_id, type, content, url, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		u.GameID, u.Type, u.Content, u.URL, u.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert update: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read new update id: %w", err)
	}
	u.ID = id
	return nil
}

func (s *sqlxStore) GetUpdate(ctx context.Context, id, gameID int64) (*models.GameUpdate, error) {
	var u models.GameUpdate
	err := s.db.GetContext(ctx, &u,
		`SELECT * FROM game_updates WHERE id = ? AND game_id = ?`, id, gameID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch update %d: %w", id, err)
	}
	return &u, nil
}

func (s *sqlxStore) DeleteUpdate(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM game_updates WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete update %d: %w", id, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected deleting update %d: %w", id, err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *sqlxStore) ListUpdatesAsc(ctx context.Context, gameID int64) ([]models.GameUpdate, error) {
	updates := []models.GameUpdate{}
	err := s.db.SelectContext(ctx, &updates, `
		SELECT * FROM game_updates WHERE game_id = ?
		ORDER BY created_at ASC, id ASC`, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to list updates for game %d: %w", gameID, err)
	}
	return updates, nil
}

func (s *sqlxStore) ListUpdatesPage(ctx context.Context, gameID int64, limit int, before *time.Time, beforeID *int64) ([]models.GameUpdate, error) {
	updates := []models.GameUpdate{}

	// Consistent ordering is required for cursor pagination. The admin view
	// reads newest-first, the opposite of feed publication order.
	const baseQuery = `SELECT * FROM game_updates WHERE game_id = ?`
	const orderBy = ` ORDER BY created_at DESC, id DESC LIMIT ?`

	var query string
	var args []any

	if before != nil && beforeID != nil {
		query = baseQuery + ` AND ((created_at < ?) OR (created_at = ? AND id < ?))` + orderBy
		args = append(args, gameID, before.UTC(), before.UTC(), *beforeID, limit)
	} else {
		query = baseQuery + orderBy
		args = append(args, gameID, limit)
	}

	err := s.db.SelectContext(ctx, &updates, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to page updates for game %d: %w", gameID, err)
	}
	return updates, nil
}

func (s *sqlxStore) CountGames(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM games`); err != nil {
		return 0, fmt.Errorf("failed to count games: %w", err)
	}
	return n, nil
}

func (s *sqlxStore) CountUpdates(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM game_updates`); err != nil {
		return 0, fmt.Errorf("failed to count updates: %w", err)
	}
	return n, nil
}
