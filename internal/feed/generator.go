package feed

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"gameday/publisher/internal/models"
	"gameday/publisher/internal/sanitize"
	"gameday/publisher/internal/store"
)

// Generator snapshots the live game's state into the public JSON document.
// It is idempotent: each run reads the store and publishes a complete
// document, or aborts leaving the previous snapshot as the published state.
type Generator struct {
	store      store.GameStore
	writer     *SnapshotWriter
	outputPath string
	now        func() time.Time
}

// Result summarizes a generation run for the trigger caller.
type Result struct {
	Status      string `json:"status"`
	GeneratedAt string `json:"generated_at"`
	UpdateCount int    `json:"update_count"`
	OutputPath  string `json:"output_path"`
}

// NewGenerator creates a Generator writing snapshots to outputPath.
func NewGenerator(st store.GameStore, outputPath string) *Generator {
	return &Generator{
		store:      st,
		writer:     NewSnapshotWriter(),
		outputPath: outputPath,
		now:        time.Now,
	}
}

// WithClock substitutes the generation clock, for tests.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

// Run executes one generation cycle: read the live game and its updates,
// shape the document, publish it atomically. Any read failure aborts the
// run without writing; the previous snapshot stays published.
func (g *Generator) Run(ctx context.Context) (*Result, error) {
	now := g.now()
	generatedAt := now.Format(time.RFC3339)

	liveGame, err := g.store.GetLiveGame(ctx)
	if err != nil {
		return nil, fmt.Errorf("generation aborted: %w", err)
	}

	if liveGame == nil {
		doc := NoLiveDocument{
			Status:       StatusNoLiveGame,
			CacheControl: CacheControl,
			GeneratedAt:  generatedAt,
		}
		if err := g.writer.Write(g.outputPath, doc); err != nil {
			return nil, fmt.Errorf("failed to publish snapshot: %w", err)
		}

		log.Info().Str("path", g.outputPath).Msg("Published no-live-game snapshot")
		return &Result{
			Status:      StatusNoLiveGame,
			GeneratedAt: generatedAt,
			OutputPath:  g.outputPath,
		}, nil
	}

	updates, err := g.store.ListUpdatesAsc(ctx, liveGame.ID)
	if err != nil {
		return nil, fmt.Errorf("generation aborted: %w", err)
	}

	entries := make([]UpdateEntry, 0, len(updates))
	for _, u := range updates {
		entries = append(entries, shapeUpdate(u, now))
	}

	doc := Document{
		CacheControl: CacheControl,
		GeneratedAt:  generatedAt,
		Game: GameInfo{
			Title:    liveGame.Title,
			HomeTeam: liveGame.HomeTeam,
			AwayTeam: liveGame.AwayTeam,
			Score: Score{
				Home: liveGame.ScoreHome,
				Away: liveGame.ScoreAway,
			},
			HomeLineup:  liveGame.HomeLineupText,
			AwayLineup:  liveGame.AwayLineupText,
			LastUpdated: liveGame.UpdatedAt.Format(time.RFC3339),
		},
		Updates: entries,
	}

	if err := g.writer.Write(g.outputPath, doc); err != nil {
		return nil, fmt.Errorf("failed to publish snapshot: %w", err)
	}

	log.Info().
		Str("path", g.outputPath).
		Int64("game_id", liveGame.ID).
		Int("updates", len(entries)).
		Msg("Published live game snapshot")

	return &Result{
		Status:      StatusLive,
		GeneratedAt: generatedAt,
		UpdateCount: len(entries),
		OutputPath:  g.outputPath,
	}, nil
}

// shapeUpdate converts a stored update into its published form. Content was
// sanitized and URLs validated at ingestion; they are emitted as-is. A
// youtube update additionally carries an embed URL when one can be derived;
// failure to derive is silently omitted, not an error.
func shapeUpdate(u models.GameUpdate, now time.Time) UpdateEntry {
	entry := UpdateEntry{
		ID:           u.ID,
		Type:         u.Type,
		CreatedAt:    u.CreatedAt.Format(time.RFC3339),
		RelativeTime: RelativeTime(u.CreatedAt, now),
	}

	switch u.Type {
	case models.UpdateTypeHTML:
		entry.HTML = u.Content.String
	case models.UpdateTypeNHLGoal:
		entry.URL = u.URL.String
	case models.UpdateTypeYouTube:
		entry.URL = u.URL.String
		if embed := sanitize.YouTubeEmbedURL(u.URL.String); embed != "" {
			entry.EmbedURL = embed
		}
	}

	return entry
}
