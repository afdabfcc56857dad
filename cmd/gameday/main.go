package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"gameday/publisher/internal/config"
	"gameday/publisher/internal/database"
	"gameday/publisher/internal/feed"
	"gameday/publisher/internal/server"
	"gameday/publisher/internal/store"
)

func init() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "2006-01-02 15:04:05"})
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
}

func main() {
	config.LoadDotEnv("")
	cfg := config.DefaultConfig()

	serveCmd := flag.NewFlagSet("serve", flag.ExitOnError)
	serveCmd.StringVar(&cfg.DBPath, "db", config.GetEnvString("GAMEDAY_DB_PATH", config.DefaultDBPath),
		"Path to the SQLite database file (env: GAMEDAY_DB_PATH)")
	serveCmd.StringVar(&cfg.OutputPath, "out", config.GetEnvString("GAMEDAY_OUTPUT_PATH", config.DefaultOutputPath),
		"Path for the published JSON feed (env: GAMEDAY_OUTPUT_PATH)")
	serveCmd.StringVar(&cfg.ServerHost, "host", config.GetEnvString("GAMEDAY_HOST", config.DefaultServerHost),
		"Host to bind the server to (env: GAMEDAY_HOST)")
	serveCmd.IntVar(&cfg.ServerPort, "port", config.GetEnvInt("GAMEDAY_PORT", config.DefaultServerPort),
		"Port to listen on (env: GAMEDAY_PORT)")

	var serveLogLevelStr string
	serveCmd.StringVar(&serveLogLevelStr, "log-level", config.GetEnvString("GAMEDAY_LOG_LEVEL", config.DefaultLogLevel),
		"Log level: debug, info, warn, error (env: GAMEDAY_LOG_LEVEL)")

	generateCmd := flag.NewFlagSet("generate", flag.ExitOnError)
	generateCmd.StringVar(&cfg.DBPath, "db", config.GetEnvString("GAMEDAY_DB_PATH", config.DefaultDBPath),
		"Path to the SQLite database file (env: GAMEDAY_DB_PATH)")
	generateCmd.StringVar(&cfg.OutputPath, "out", config.GetEnvString("GAMEDAY_OUTPUT_PATH", config.DefaultOutputPath),
		"Path for the published JSON feed (env: GAMEDAY_OUTPUT_PATH)")

	var intervalMinutes int
	generateCmd.IntVar(&intervalMinutes, "interval", config.GetEnvInt("GAMEDAY_INTERVAL", config.DefaultInterval),
		"Interval in minutes between generation runs, 0 for one-shot mode (env: GAMEDAY_INTERVAL)")

	generateCmd.BoolVar(&cfg.DBReadOnly, "readonly", config.GetEnvBool("GAMEDAY_DB_READONLY", false),
		"Open the database read-only; requires an already-migrated database (env: GAMEDAY_DB_READONLY)")

	var generateLogLevelStr string
	generateCmd.StringVar(&generateLogLevelStr, "log-level", config.GetEnvString("GAMEDAY_LOG_LEVEL", config.DefaultLogLevel),
		"Log level: debug, info, warn, error (env: GAMEDAY_LOG_LEVEL)")

	if len(os.Args) < 2 {
		fmt.Println("Usage: gameday [command] [options]")
		fmt.Println("Commands: serve, generate")
		fmt.Println("\nFor command-specific options, use: gameday [command] -h")
		os.Exit(1)
	}

	switch os.Args[1] {
	case "serve":
		serveCmd.Parse(os.Args[2:])

		if level, err := zerolog.ParseLevel(serveLogLevelStr); err == nil {
			cfg.LogLevel = level
		}
		zerolog.SetGlobalLevel(cfg.LogLevel)

		if err := runServe(cfg); err != nil {
			log.Error().Err(err).Msg("Server failed")
			os.Exit(1)
		}

	case "generate":
		generateCmd.Parse(os.Args[2:])

		if level, err := zerolog.ParseLevel(generateLogLevelStr); err == nil {
			cfg.LogLevel = level
		}
		cfg.Interval = time.Duration(intervalMinutes) * time.Minute
		zerolog.SetGlobalLevel(cfg.LogLevel)

		if err := runGenerate(cfg); err != nil {
			log.Error().Err(err).Msg("Feed generation failed")
			os.Exit(1)
		}

	case "-h", "--help", "help":
		fmt.Println("Usage: gameday [command] [options]")
		fmt.Println("Commands: serve, generate")
		fmt.Println("\nFor command-specific options, use: gameday [command] -h")
		os.Exit(0)

	default:
		log.Error().Str("command", os.Args[1]).Msg("Unknown command")
		fmt.Println("Available commands: serve, generate")
		fmt.Println("\nFor command-specific options, use: gameday [command] -h")
		os.Exit(1)
	}
}

// runServe starts the admin API server backed by a read-write store.
func runServe(cfg *config.Config) error {
	dbCfg := database.NewConfig(cfg.DBPath)
	db, err := database.NewDB(dbCfg)
	if err != nil {
		log.Error().Err(err).Str("path", cfg.DBPath).Msg("Failed to initialize database")
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	st := store.New(db)
	gen := feed.NewGenerator(st, cfg.OutputPath)

	return server.RunServer(cfg, st, gen, log.Logger)
}

// runGenerate executes the feed generator either once or periodically based
// on configuration. A failed run leaves the previous snapshot published and
// the loop keeps ticking.
func runGenerate(cfg *config.Config) error {
	if cfg.Interval <= 0 {
		log.Info().Msg("Running in one-shot mode")
	} else {
		log.Info().Int64("interval_minutes", int64(cfg.Interval.Minutes())).Msg("Running in periodic mode")
	}

	dbCfg := database.NewConfig(cfg.DBPath)
	dbCfg.ReadOnly = cfg.DBReadOnly
	db, err := database.NewDB(dbCfg)
	if err != nil {
		log.Error().Err(err).Str("path", cfg.DBPath).Msg("Failed to initialize database")
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	gen := feed.NewGenerator(store.New(db), cfg.OutputPath)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-shutdown
		log.Info().Str("signal", sig.String()).Msg("Shutdown signal received")
		cancel()
	}()

	if err := runGenerationCycle(ctx, gen); err != nil {
		if errors.Is(err, context.Canceled) {
			log.Info().Msg("Generation canceled by shutdown signal")
			return nil
		}
		return err
	}

	if cfg.Interval <= 0 {
		log.Info().Msg("One-shot generation completed, exiting")
		return nil
	}

	ticker := time.NewTicker(cfg.Interval)
	defer ticker.Stop()

	log.Info().
		Dur("interval", cfg.Interval).
		Time("next_run", time.Now().Add(cfg.Interval)).
		Msg("Waiting for next generation cycle")

	for {
		select {
		case <-ticker.C:
			if err := runGenerationCycle(ctx, gen); err != nil {
				if errors.Is(err, context.Canceled) {
					log.Info().Msg("Generation canceled by shutdown signal")
					return nil
				}
				// The previous snapshot stays published; keep ticking.
				log.Error().Err(err).Msg("Generation cycle failed")
			}

			log.Info().
				Time("next_run", time.Now().Add(cfg.Interval)).
				Msg("Waiting for next generation cycle")

		case <-ctx.Done():
			log.Info().Msg("Shutting down periodic generation")
			return nil
		}
	}
}

// runGenerationCycle executes a single feed generation run with a bounded
// timeout and reports the outcome on stdout for the trigger caller.
func runGenerationCycle(ctx context.Context, gen *feed.Generator) error {
	runCtx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()

	startTime := time.Now()
	result, err := gen.Run(runCtx)
	if err != nil {
		return err
	}

	log.Info().
		Dur("duration", time.Since(startTime)).
		Str("status", result.Status).
		Int("updates", result.UpdateCount).
		Msg("Generation cycle finished")

	fmt.Printf("JSON feed updated successfully: %s\n", result.OutputPath)
	fmt.Printf("Generated at: %s\n", result.GeneratedAt)
	if result.Status == feed.StatusLive {
		fmt.Println("Status: Live game active")
		fmt.Printf("Updates: %d\n", result.UpdateCount)
	} else {
		fmt.Println("Status: No live game")
	}

	return nil
}
