// Package server wires the admin API into an HTTP server with structured
// request logging and graceful shutdown.
package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"

	"gameday/publisher/internal/auth"
	"gameday/publisher/internal/config"
	"gameday/publisher/internal/feed"
	"gameday/publisher/internal/server/api"
	"gameday/publisher/internal/store"
)

// NewRouter builds the admin API router. Login and health are open;
// everything else sits behind the session and CSRF middleware.
func NewRouter(st store.GameStore, sessions *auth.Manager, creds auth.Credentials, gen *feed.Generator) http.Handler {
	h := api.NewHandler(st, sessions, creds, gen)

	r := chi.NewRouter()

	r.Get("/health", healthCheckHandler)
	r.Post("/admin/login", h.Login)

	r.Route("/admin", func(r chi.Router) {
		r.Use(h.RequireSession)
		r.Use(h.RequireCSRF)

		r.Post("/logout", h.Logout)
		r.Get("/dashboard", h.Dashboard)

		r.Get("/games", h.ListGames)
		r.Post("/games", h.CreateGame)
		r.Get("/games/export", h.ExportGames)
		r.Get("/games/{gameID}", h.GetGame)
		r.Put("/games/{gameID}", h.SaveGame)
		r.Post("/games/{gameID}/live", h.SetLive)
		r.Delete("/games/{gameID}/live", h.UnsetLive)

		r.Get("/games/{gameID}/updates", h.ListUpdates)
		r.Post("/games/{gameID}/updates", h.AddUpdate)
		r.Delete("/games/{gameID}/updates/{updateID}", h.DeleteUpdate)

		r.Post("/generate", h.Generate)
	})

	return r
}

// RunServer starts the HTTP server with graceful shutdown support.
// It sets up routes, middleware, and handles OS signals for clean termination.
func RunServer(cfg *config.Config, st store.GameStore, gen *feed.Generator, logger zerolog.Logger) error {
	logger = logger.With().Str("service", "gameday-admin").Logger()

	sessions := auth.NewManager(cfg.SessionTTL, cfg.SessionRotation)
	creds := auth.Credentials{User: cfg.AdminUser, Pass: cfg.AdminPass}
	if creds.User == "" || creds.Pass == "" {
		logger.Warn().Msg("Admin credentials not configured; all logins will be rejected")
	}

	mux := NewRouter(st, sessions, creds, gen)

	// Set up middleware chain for logging and request tracking
	h := hlog.NewHandler(logger)(mux)
	h = hlog.MethodHandler("method")(h)
	h = hlog.URLHandler("url")(h)
	h = hlog.RemoteAddrHandler("remote_addr")(h)
	h = hlog.UserAgentHandler("user_agent")(h)
	h = hlog.RequestIDHandler("req_id", "Request-Id")(h)
	h = hlog.AccessHandler(func(r *http.Request, status, size int, duration time.Duration) {
		idReq, _ := hlog.IDFromRequest(r)

		hlog.FromRequest(r).Info().
			Str("method", r.Method).
			Stringer("url", r.URL).
			Int("status", status).
			Int("size", size).
			Dur("duration", duration).
			Str("req_id", idReq.String()).
			Msg("HTTP Request")
	})(h)
	h = noCacheHandler(h)

	listenAddr := cfg.ListenAddr()
	httpServer := &http.Server{
		Addr:              listenAddr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info().Str("address", listenAddr).Msg("Admin server starting")
		err := httpServer.ListenAndServe()
		if !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		logger.Fatal().Err(err).Msg("Server failed to start")

	case sig := <-shutdown:
		logger.Info().Str("signal", sig.String()).Msg("Shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("HTTP server shutdown error")
			if err := httpServer.Close(); err != nil {
				logger.Error().Err(err).Msg("HTTP server force close error")
			}
		} else {
			logger.Info().Msg("HTTP server shutdown complete.")
		}
		if err := <-serverErr; err != nil {
			logger.Error().Err(err).Msg("ListenAndServe error during shutdown")
		}
	}

	logger.Info().Msg("Server exiting.")
	return nil
}

// noCacheHandler keeps admin responses out of intermediary caches.
func noCacheHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
		w.Header().Set("Pragma", "no-cache")
		w.Header().Set("Expires", "0")
		next.ServeHTTP(w, r)
	})
}

// healthCheckHandler responds to health check requests with a simple 200 OK.
// This endpoint is used by monitoring systems to verify the service is operational.
func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	log := hlog.FromRequest(r)
	log.Debug().Msg("Health check request received")

	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("OK")); err != nil {
		log.Error().Err(err).Msg("Error writing health check response")
	}
}
