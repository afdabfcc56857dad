package api

import (
	"encoding/csv"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/hlog"

	"gameday/publisher/internal/models"
	"gameday/publisher/internal/store"
)

type gameRequest struct {
	Title          string `json:"title"`
	HomeTeam       string `json:"home_team"`
	AwayTeam       string `json:"away_team"`
	ScoreHome      int    `json:"score_home"`
	ScoreAway      int    `json:"score_away"`
	HomeLineupText string `json:"home_lineup_text"`
	AwayLineupText string `json:"away_lineup_text"`
}

func (req *gameRequest) apply(g *models.Game) {
	g.Title = req.Title
	g.HomeTeam = req.HomeTeam
	g.AwayTeam = req.AwayTeam
	g.ScoreHome = req.ScoreHome
	g.ScoreAway = req.ScoreAway
	g.HomeLineupText = req.HomeLineupText
	g.AwayLineupText = req.AwayLineupText
	g.NormalizeLineups()
}

func gameID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "gameID"), 10, 64)
	return id, err == nil && id > 0
}

// Dashboard returns the live game, its most recent updates, and totals.
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := hlog.FromRequest(r)

	liveGame, err := h.store.GetLiveGame(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Failed to fetch live game")
		writeError(w, r, http.StatusInternalServerError, "Internal server error")
		return
	}

	recent := []models.GameUpdate{}
	if liveGame != nil {
		recent, err = h.store.ListUpdatesPage(ctx, liveGame.ID, 5, nil, nil)
		if err != nil {
			log.Error().Err(err).Msg("Failed to fetch recent updates")
			writeError(w, r, http.StatusInternalServerError, "Internal server error")
			return
		}
	}

	totalGames, err := h.store.CountGames(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Failed to count games")
		writeError(w, r, http.StatusInternalServerError, "Internal server error")
		return
	}
	totalUpdates, err := h.store.CountUpdates(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Failed to count updates")
		writeError(w, r, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, r, http.StatusOK, map[string]any{
		"live_game":      liveGame,
		"recent_updates": recent,
		"total_games":    totalGames,
		"total_updates":  totalUpdates,
	})
}

// ListGames returns all games, newest first.
func (h *Handler) ListGames(w http.ResponseWriter, r *http.Request) {
	games, err := h.store.ListGames(r.Context())
	if err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("Failed to list games")
		writeError(w, r, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"games": games})
}

// GetGame returns one game by ID.
func (h *Handler) GetGame(w http.ResponseWriter, r *http.Request) {
	id, ok := gameID(r)
	if !ok {
		writeError(w, r, http.StatusBadRequest, "Invalid game ID")
		return
	}

	game, err := h.store.GetGame(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, r, http.StatusNotFound, "Game not found.")
			return
		}
		hlog.FromRequest(r).Error().Err(err).Int64("game_id", id).Msg("Failed to fetch game")
		writeError(w, r, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, r, http.StatusOK, game)
}

// CreateGame creates a new game from validated input.
func (h *Handler) CreateGame(w http.ResponseWriter, r *http.Request) {
	var req gameRequest
	if !decodeBody(w, r, &req) {
		return
	}

	game := models.NewGame()
	req.apply(game)

	if err := game.Validate(); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.store.CreateGame(r.Context(), game); err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("Failed to create game")
		writeError(w, r, http.StatusInternalServerError, "Internal server error")
		return
	}

	hlog.FromRequest(r).Info().Int64("game_id", game.ID).Str("title", game.Title).Msg("Game created")
	writeJSON(w, r, http.StatusCreated, game)
}

// SaveGame updates an existing game's fields.
func (h *Handler) SaveGame(w http.ResponseWriter, r *http.Request) {
	id, ok := gameID(r)
	if !ok {
		writeError(w, r, http.StatusBadRequest, "Invalid game ID")
		return
	}

	var req gameRequest
	if !decodeBody(w, r, &req) {
		return
	}

	game, err := h.store.GetGame(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, r, http.StatusNotFound, "Game not found.")
			return
		}
		hlog.FromRequest(r).Error().Err(err).Int64("game_id", id).Msg("Failed to fetch game")
		writeError(w, r, http.StatusInternalServerError, "Internal server error")
		return
	}

	req.apply(game)
	if err := game.Validate(); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.store.SaveGame(r.Context(), game); err != nil {
		hlog.FromRequest(r).Error().Err(err).Int64("game_id", id).Msg("Failed to save game")
		writeError(w, r, http.StatusInternalServerError, "Internal server error")
		return
	}

	hlog.FromRequest(r).Info().Int64("game_id", id).Msg("Game updated")
	writeJSON(w, r, http.StatusOK, game)
}

// SetLive marks a game as the single live game.
func (h *Handler) SetLive(w http.ResponseWriter, r *http.Request) {
	id, ok := gameID(r)
	if !ok {
		writeError(w, r, http.StatusBadRequest, "Invalid game ID")
		return
	}

	if err := h.store.SetLive(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, r, http.StatusNotFound, "Game not found.")
			return
		}
		hlog.FromRequest(r).Error().Err(err).Int64("game_id", id).Msg("Failed to set game live")
		writeError(w, r, http.StatusInternalServerError, "Failed to set game live")
		return
	}

	writeJSON(w, r, http.StatusOK, map[string]bool{"ok": true})
}

// UnsetLive clears the live flag; rejected when the game is not live.
func (h *Handler) UnsetLive(w http.ResponseWriter, r *http.Request) {
	id, ok := gameID(r)
	if !ok {
		writeError(w, r, http.StatusBadRequest, "Invalid game ID")
		return
	}

	if err := h.store.UnsetLive(r.Context(), id); err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			writeError(w, r, http.StatusNotFound, "Game not found.")
		case errors.Is(err, store.ErrNotLive):
			writeError(w, r, http.StatusConflict, "Game is not currently live.")
		default:
			hlog.FromRequest(r).Error().Err(err).Int64("game_id", id).Msg("Failed to unset game live")
			writeError(w, r, http.StatusInternalServerError, "Failed to unset game live")
		}
		return
	}

	writeJSON(w, r, http.StatusOK, map[string]bool{"ok": true})
}

// ExportGames writes all games as a CSV attachment.
func (h *Handler) ExportGames(w http.ResponseWriter, r *http.Request) {
	log := hlog.FromRequest(r)

	games, err := h.store.ListGames(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to query games for export")
		writeError(w, r, http.StatusInternalServerError, "Internal server error")
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", "attachment; filename=games.csv")

	csvWriter := csv.NewWriter(w)

	header := []string{"id", "title", "home_team", "away_team", "score_home", "score_away", "is_live", "created_at"}
	if err := csvWriter.Write(header); err != nil {
		log.Error().Err(err).Msg("Failed to write CSV header")
		return
	}

	for _, g := range games {
		record := []string{
			strconv.FormatInt(g.ID, 10),
			g.Title,
			g.HomeTeam,
			g.AwayTeam,
			strconv.Itoa(g.ScoreHome),
			strconv.Itoa(g.ScoreAway),
			strconv.FormatBool(g.IsLive),
			g.CreatedAt.Format(time.RFC3339),
		}
		if err := csvWriter.Write(record); err != nil {
			log.Error().Err(err).Msg("Failed to write CSV record")
			return
		}
	}

	csvWriter.Flush()
	if err := csvWriter.Error(); err != nil {
		log.Error().Err(err).Msg("Error flushing CSV data")
		return
	}

	log.Info().Int("game_count", len(games)).Msg("Exported games as CSV")
}
