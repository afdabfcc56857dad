package api

import (
	"net/http"

	"github.com/rs/zerolog/hlog"
)

type generateResponse struct {
	OK          bool   `json:"ok"`
	Status      string `json:"status"`
	GeneratedAt string `json:"generated_at"`
	UpdateCount int    `json:"update_count"`
}

// Generate runs one feed generation cycle on demand, instead of waiting for
// the scheduled trigger. A failed run leaves the previous snapshot in place.
func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	log := hlog.FromRequest(r)

	result, err := h.generator.Run(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("Manual feed generation failed")
		writeError(w, r, http.StatusInternalServerError, "Failed to update JSON feed. The previous snapshot remains published.")
		return
	}

	log.Info().
		Str("status", result.Status).
		Int("updates", result.UpdateCount).
		Msg("Manual feed generation completed")

	writeJSON(w, r, http.StatusOK, generateResponse{
		OK:          true,
		Status:      result.Status,
		GeneratedAt: result.GeneratedAt,
		UpdateCount: result.UpdateCount,
	})
}
