package feed

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gameday/publisher/internal/models"
	"gameday/publisher/internal/store"
)

// fakeStore is an in-memory GameStore for generator tests. Only the read
// paths the generator exercises are meaningful; write paths append to the
// in-memory state.
type fakeStore struct {
	live    *models.Game
	updates []models.GameUpdate

	liveErr    error
	updatesErr error
}

func (f *fakeStore) GetLiveGame(ctx context.Context) (*models.Game, error) {
	if f.liveErr != nil {
		return nil, f.liveErr
	}
	return f.live, nil
}

func (f *fakeStore) ListUpdatesAsc(ctx context.Context, gameID int64) ([]models.GameUpdate, error) {
	if f.updatesErr != nil {
		return nil, f.updatesErr
	}
	return f.updates, nil
}

func (f *fakeStore) GetGame(ctx context.Context, id int64) (*models.Game, error) {
	if f.live != nil && f.live.ID == id {
		return f.live, nil
	}
	return nil, store.ErrNotFound
}

func (f *fakeStore) ListGames(ctx context.Context) ([]models.Game, error) { return nil, nil }
func (f *fakeStore) CreateGame(ctx context.Context, g *models.Game) error { return nil }
func (f *fakeStore) SaveGame(ctx context.Context, g *models.Game) error   { return nil }
func (f *fakeStore) SetLive(ctx context.Context, id int64) error          { return nil }
func (f *fakeStore) UnsetLive(ctx context.Context, id int64) error        { return nil }
func (f *fakeStore) AddUpdate(ctx context.Context, u *models.GameUpdate) error {
	f.updates = append(f.updates, *u)
	return nil
}
func (f *fakeStore) GetUpdate(ctx context.Context, id, gameID int64) (*models.GameUpdate, error) {
	return nil, store.ErrNotFound
}
func (f *fakeStore) DeleteUpdate(ctx context.Context, id int64) error { return nil }
func (f *fakeStore) ListUpdatesPage(ctx context.Context, gameID int64, limit int, before *time.Time, beforeID *int64) ([]models.GameUpdate, error) {
	return nil, nil
}
func (f *fakeStore) CountGames(ctx context.Context) (int64, error)   { return 0, nil }
func (f *fakeStore) CountUpdates(ctx context.Context) (int64, error) { return 0, nil }

var genNow = time.Date(2026, time.March, 14, 19, 30, 0, 0, time.UTC)

func newTestGenerator(t *testing.T, st store.GameStore) (*Generator, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "current.json")
	gen := NewGenerator(st, path).WithClock(func() time.Time { return genNow })
	return gen, path
}

func readDoc(t *testing.T, path string) map[string]any {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	return doc
}

func TestGeneratorNoLiveGame(t *testing.T) {
	gen, path := newTestGenerator(t, &fakeStore{})

	res, err := gen.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StatusNoLiveGame, res.Status)

	doc := readDoc(t, path)
	assert.Equal(t, "no_live_game", doc["status"])
	assert.Equal(t, "no-store", doc["cache_control"])
	assert.Equal(t, "2026-03-14T19:30:00Z", doc["generated_at"])
	assert.NotContains(t, doc, "game")
	assert.NotContains(t, doc, "updates")
}

func TestGeneratorLiveGame(t *testing.T) {
	game := &models.Game{
		ID:             7,
		Title:          "Devils vs Rangers",
		HomeTeam:       "Devils",
		AwayTeam:       "Rangers",
		ScoreHome:      2,
		ScoreAway:      1,
		HomeLineupText: "Line 1: Hughes - Hischier - Bratt\nLine 2: Meier",
		AwayLineupText: "Line 1: Panarin",
		IsLive:         true,
		UpdatedAt:      genNow.Add(-5 * time.Minute),
	}
	st := &fakeStore{
		live: game,
		updates: []models.GameUpdate{
			{
				ID: 1, GameID: 7, Type: models.UpdateTypeHTML,
				Content:   sql.NullString{String: "<strong>Goal!</strong>", Valid: true},
				CreatedAt: genNow.Add(-10 * time.Minute),
			},
			{
				ID: 2, GameID: 7, Type: models.UpdateTypeNHLGoal,
				URL:       sql.NullString{String: "https://www.nhl.com/video/123", Valid: true},
				CreatedAt: genNow.Add(-4 * time.Minute),
			},
			{
				ID: 3, GameID: 7, Type: models.UpdateTypeYouTube,
				URL:       sql.NullString{String: "https://youtu.be/abc123", Valid: true},
				CreatedAt: genNow.Add(-30 * time.Second),
			},
		},
	}

	gen, path := newTestGenerator(t, st)

	res, err := gen.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StatusLive, res.Status)
	assert.Equal(t, 3, res.UpdateCount)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var doc Document
	require.NoError(t, json.Unmarshal(data, &doc))

	assert.Equal(t, "no-store", doc.CacheControl)
	assert.Equal(t, "Devils vs Rangers", doc.Game.Title)
	assert.Equal(t, "Devils", doc.Game.HomeTeam)
	assert.Equal(t, "Rangers", doc.Game.AwayTeam)
	assert.Equal(t, Score{Home: 2, Away: 1}, doc.Game.Score)
	// Lineups verbatim, newlines intact.
	assert.Equal(t, "Line 1: Hughes - Hischier - Bratt\nLine 2: Meier", doc.Game.HomeLineup)
	assert.Equal(t, "2026-03-14T19:25:00Z", doc.Game.LastUpdated)

	require.Len(t, doc.Updates, 3)

	html := doc.Updates[0]
	assert.Equal(t, "html", html.Type)
	assert.Equal(t, "<strong>Goal!</strong>", html.HTML)
	assert.Empty(t, html.URL)
	assert.Equal(t, "10 minutes ago", html.RelativeTime)

	goal := doc.Updates[1]
	assert.Equal(t, "nhl_goal", goal.Type)
	assert.Equal(t, "https://www.nhl.com/video/123", goal.URL)
	assert.Empty(t, goal.EmbedURL)

	video := doc.Updates[2]
	assert.Equal(t, "youtube", video.Type)
	assert.Equal(t, "https://youtu.be/abc123", video.URL)
	assert.Equal(t, "https://www.youtube-nocookie.com/embed/abc123", video.EmbedURL)
	assert.Equal(t, "just now", video.RelativeTime)

	// Raw markup arrives as-is: no re-sanitization, no entity escaping.
	assert.Contains(t, string(data), "<strong>Goal!</strong>")
}

func TestGeneratorLiveGameNoUpdates(t *testing.T) {
	st := &fakeStore{live: &models.Game{ID: 1, Title: "T", HomeTeam: "H", AwayTeam: "A", UpdatedAt: genNow}}
	gen, path := newTestGenerator(t, st)

	_, err := gen.Run(context.Background())
	require.NoError(t, err)

	// A live game with no updates still publishes an empty updates array.
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"updates": []`)
}

func TestGeneratorAbortsWithoutWriting(t *testing.T) {
	st := &fakeStore{live: &models.Game{ID: 1, Title: "T", HomeTeam: "H", AwayTeam: "A", UpdatedAt: genNow}}
	gen, path := newTestGenerator(t, st)

	// Publish a good snapshot first.
	_, err := gen.Run(context.Background())
	require.NoError(t, err)
	before, err := os.ReadFile(path)
	require.NoError(t, err)

	// Now a read failure: the run must abort and the previous snapshot
	// must remain published, byte for byte.
	st.updatesErr = errors.New("store unreachable")
	_, err = gen.Run(context.Background())
	require.Error(t, err)

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, before, after)

	st.updatesErr = nil
	st.liveErr = errors.New("store unreachable")
	_, err = gen.Run(context.Background())
	require.Error(t, err)

	after, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}
