package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/hlog"

	"gameday/publisher/internal/models"
	"gameday/publisher/internal/sanitize"
	"gameday/publisher/internal/server/pagination"
	"gameday/publisher/internal/store"
)

const defaultUpdatesLimit = 100
const maxUpdatesLimit = 1000

type addUpdateRequest struct {
	Type    string `json:"type"`
	Content string `json:"content"`
	URL     string `json:"url"`
}

// updatesResponse is the paginated admin listing, newest first.
type updatesResponse struct {
	Updates    []models.GameUpdate `json:"updates"`
	NextCursor *string             `json:"next_cursor,omitempty"`
}

// AddUpdate ingests one update for a game. Sanitization and URL validation
// happen here, once; the feed generator republishes stored values as-is.
func (h *Handler) AddUpdate(w http.ResponseWriter, r *http.Request) {
	log := hlog.FromRequest(r)

	id, ok := gameID(r)
	if !ok {
		writeError(w, r, http.StatusBadRequest, "Invalid game ID")
		return
	}

	game, err := h.store.GetGame(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, r, http.StatusNotFound, "Create or select a game first before adding updates.")
			return
		}
		log.Error().Err(err).Int64("game_id", id).Msg("Failed to fetch game")
		writeError(w, r, http.StatusInternalServerError, "Internal server error")
		return
	}

	var req addUpdateRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if !models.ValidType(req.Type) {
		writeError(w, r, http.StatusBadRequest, "Invalid update type.")
		return
	}

	var update *models.GameUpdate
	switch req.Type {
	case models.UpdateTypeHTML:
		if strings.TrimSpace(req.Content) == "" {
			writeError(w, r, http.StatusBadRequest, "HTML content is required.")
			return
		}
		sanitized := sanitize.HTML(req.Content)
		if sanitized == "" {
			writeError(w, r, http.StatusBadRequest, "HTML content is invalid or too long (max 1000 characters).")
			return
		}
		update = models.NewHTMLUpdate(game.ID, sanitized)

	case models.UpdateTypeNHLGoal:
		if strings.TrimSpace(req.URL) == "" {
			writeError(w, r, http.StatusBadRequest, "NHL goal URL is required.")
			return
		}
		validated := sanitize.URL(req.URL, sanitize.ContextNHLGoal)
		if validated == "" {
			writeError(w, r, http.StatusBadRequest, "Invalid NHL URL. Must be HTTPS and from nhl.com domain.")
			return
		}
		update = models.NewLinkUpdate(game.ID, models.UpdateTypeNHLGoal, validated)

	case models.UpdateTypeYouTube:
		if strings.TrimSpace(req.URL) == "" {
			writeError(w, r, http.StatusBadRequest, "YouTube URL is required.")
			return
		}
		validated := sanitize.URL(req.URL, sanitize.ContextYouTube)
		if validated == "" {
			writeError(w, r, http.StatusBadRequest, "Invalid YouTube URL. Must be HTTPS and from an allowed YouTube domain.")
			return
		}
		update = models.NewLinkUpdate(game.ID, models.UpdateTypeYouTube, validated)
	}

	if err := h.store.AddUpdate(r.Context(), update); err != nil {
		log.Error().Err(err).Int64("game_id", game.ID).Msg("Failed to insert update")
		writeError(w, r, http.StatusInternalServerError, "Internal server error")
		return
	}

	log.Info().
		Int64("game_id", game.ID).
		Int64("update_id", update.ID).
		Str("type", update.Type).
		Msg("Update added")

	writeJSON(w, r, http.StatusCreated, update)
}

// ListUpdates returns a newest-first page of a game's updates with an
// opaque cursor for the next page.
func (h *Handler) ListUpdates(w http.ResponseWriter, r *http.Request) {
	log := hlog.FromRequest(r)

	id, ok := gameID(r)
	if !ok {
		writeError(w, r, http.StatusBadRequest, "Invalid game ID")
		return
	}

	query := r.URL.Query()

	limit := defaultUpdatesLimit
	if limitStr := query.Get("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed <= 0 || parsed > maxUpdatesLimit {
			log.Warn().Err(err).Str("limit", limitStr).Msg("Invalid 'limit' parameter value")
			writeError(w, r, http.StatusBadRequest, "Invalid 'limit' parameter")
			return
		}
		limit = parsed
	}

	var updates []models.GameUpdate
	if cursorStr := query.Get("cursor"); cursorStr != "" {
		ts, cid, err := pagination.DecodeCursor(cursorStr)
		if err != nil {
			log.Warn().Err(err).Str("cursor", cursorStr).Msg("Invalid 'cursor' parameter")
			writeError(w, r, http.StatusBadRequest, "Invalid 'cursor' parameter")
			return
		}
		updates, err = h.store.ListUpdatesPage(r.Context(), id, limit+1, &ts, &cid)
		if err != nil {
			log.Error().Err(err).Int64("game_id", id).Msg("Failed to page updates")
			writeError(w, r, http.StatusInternalServerError, "Internal server error")
			return
		}
	} else {
		var err error
		updates, err = h.store.ListUpdatesPage(r.Context(), id, limit+1, nil, nil)
		if err != nil {
			log.Error().Err(err).Int64("game_id", id).Msg("Failed to page updates")
			writeError(w, r, http.StatusInternalServerError, "Internal server error")
			return
		}
	}

	var nextCursor *string
	if len(updates) > limit {
		updates = updates[:limit]
		last := updates[len(updates)-1]
		cursor := pagination.EncodeCursor(last.CreatedAt.UTC(), last.ID)
		nextCursor = &cursor
	}

	writeJSON(w, r, http.StatusOK, updatesResponse{Updates: updates, NextCursor: nextCursor})
}

// DeleteUpdate removes one update after verifying it belongs to the game.
func (h *Handler) DeleteUpdate(w http.ResponseWriter, r *http.Request) {
	log := hlog.FromRequest(r)

	id, ok := gameID(r)
	if !ok {
		writeError(w, r, http.StatusBadRequest, "Invalid game ID")
		return
	}

	updateID, err := strconv.ParseInt(chi.URLParam(r, "updateID"), 10, 64)
	if err != nil || updateID <= 0 {
		writeError(w, r, http.StatusBadRequest, "Invalid update ID.")
		return
	}

	// Ownership check keeps one game's updates safe from another's form.
	if _, err := h.store.GetUpdate(r.Context(), updateID, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, r, http.StatusNotFound, "Update not found for this game.")
			return
		}
		log.Error().Err(err).Int64("update_id", updateID).Msg("Failed to fetch update")
		writeError(w, r, http.StatusInternalServerError, "Internal server error")
		return
	}

	if err := h.store.DeleteUpdate(r.Context(), updateID); err != nil {
		log.Error().Err(err).Int64("update_id", updateID).Msg("Failed to delete update")
		writeError(w, r, http.StatusInternalServerError, "Internal server error")
		return
	}

	log.Info().Int64("game_id", id).Int64("update_id", updateID).Msg("Update deleted")
	writeJSON(w, r, http.StatusOK, map[string]bool{"ok": true})
}
